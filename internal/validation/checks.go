package validation

import (
	"bytes"
	"io"
	"os"
)

var parquetMagic = []byte("PAR1")

// checkTrajectory verifies the parquet file exists, is non-empty, and
// carries the parquet magic at both ends. Column data stays untouched;
// this is a container check, not a decode.
func checkTrajectory(path string) string {
	if path == "" {
		return "trajectory_missing"
	}
	f, err := os.Open(path)
	if err != nil {
		return "trajectory_missing"
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil || info.Size() == 0 {
		return "trajectory_empty"
	}
	if info.Size() < int64(2*len(parquetMagic)) {
		return "trajectory_truncated"
	}

	head := make([]byte, len(parquetMagic))
	if _, err := io.ReadFull(f, head); err != nil || !bytes.Equal(head, parquetMagic) {
		return "trajectory_bad_magic"
	}
	tail := make([]byte, len(parquetMagic))
	if _, err := f.ReadAt(tail, info.Size()-int64(len(tail))); err != nil || !bytes.Equal(tail, parquetMagic) {
		return "trajectory_truncated"
	}
	return ""
}
