package fingerprint

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeBytes(t *testing.T, path string, size int, fill byte) {
	t.Helper()
	buf := make([]byte, size)
	for i := range buf {
		buf[i] = fill
	}
	if err := os.WriteFile(path, buf, 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestFileDeterministic(t *testing.T) {
	path := filepath.Join(t.TempDir(), "episode_000000.parquet")
	writeBytes(t, path, 4096, 0x41)

	first, err := File(path, false)
	if err != nil {
		t.Fatalf("File: %v", err)
	}
	second, err := File(path, false)
	if err != nil {
		t.Fatalf("File: %v", err)
	}
	if first != second {
		t.Fatalf("fingerprints differ for unchanged file: %+v vs %+v", first, second)
	}
	if first.Size != 4096 {
		t.Fatalf("size = %d, want 4096", first.Size)
	}
}

func TestFileTailSampleDetectsTruncation(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.mp4")
	b := filepath.Join(dir, "b.mp4")

	// Identical heads, different tails: only the tail sample can tell
	// these apart.
	size := 3 * SampleBytes
	writeBytes(t, a, size, 0x00)
	writeBytes(t, b, size, 0x00)
	f, err := os.OpenFile(b, os.O_WRONLY, 0)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := f.WriteAt([]byte{0xFF}, int64(size-1)); err != nil {
		t.Fatal(err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}

	pa, err := File(a, false)
	if err != nil {
		t.Fatal(err)
	}
	pb, err := File(b, false)
	if err != nil {
		t.Fatal(err)
	}
	if pa.Digest == pb.Digest {
		t.Fatal("tail change did not alter the digest")
	}
}

func TestFileFullHashCoversMiddle(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.bin")
	b := filepath.Join(dir, "b.bin")

	size := 4 * SampleBytes
	writeBytes(t, a, size, 0x00)
	writeBytes(t, b, size, 0x00)
	f, err := os.OpenFile(b, os.O_WRONLY, 0)
	if err != nil {
		t.Fatal(err)
	}
	// Flip a byte in the middle, outside both samples.
	if _, err := f.WriteAt([]byte{0xFF}, int64(2*SampleBytes)); err != nil {
		t.Fatal(err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}

	quickA, err := File(a, false)
	if err != nil {
		t.Fatal(err)
	}
	quickB, err := File(b, false)
	if err != nil {
		t.Fatal(err)
	}
	if quickA.Digest != quickB.Digest {
		t.Fatal("quick digests should not see the middle byte")
	}

	fullA, err := File(a, true)
	if err != nil {
		t.Fatal(err)
	}
	fullB, err := File(b, true)
	if err != nil {
		t.Fatal(err)
	}
	if fullA.Digest == fullB.Digest {
		t.Fatal("full hash missed a middle change")
	}
}

func TestCombineOrderIndependent(t *testing.T) {
	a := Part{Size: 10, MTimeNS: 1, Digest: "aa"}
	b := Part{Size: 20, MTimeNS: 2, Digest: "bb"}

	left := Combine(map[string]Part{"parquet": a, "front": b})
	right := Combine(map[string]Part{"front": b, "parquet": a})
	if left != right {
		t.Fatal("combined fingerprint depends on insertion order")
	}

	changed := Combine(map[string]Part{"parquet": a, "front": {Size: 20, MTimeNS: 3, Digest: "bb"}})
	if changed == left {
		t.Fatal("changed part did not change the combined fingerprint")
	}

	dropped := Combine(map[string]Part{"parquet": a})
	if dropped == left {
		t.Fatal("dropped part did not change the combined fingerprint")
	}
}

func TestIsStableSmallFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "small.parquet")
	writeBytes(t, path, 128, 0x42)

	checker := StabilityChecker{MinBytes: 1024, Pause: time.Millisecond}
	if !checker.IsStable(path) {
		t.Fatal("small file should be stable immediately")
	}
}

func TestIsStableMissingFile(t *testing.T) {
	checker := StabilityChecker{MinBytes: 1, Pause: time.Millisecond}
	if checker.IsStable(filepath.Join(t.TempDir(), "gone.mp4")) {
		t.Fatal("missing file reported stable")
	}
}

func TestIsStableDetectsGrowth(t *testing.T) {
	path := filepath.Join(t.TempDir(), "growing.mp4")
	writeBytes(t, path, 2048, 0x00)

	checker := StabilityChecker{MinBytes: 1, Pause: 50 * time.Millisecond}

	done := make(chan struct{})
	go func() {
		defer close(done)
		time.Sleep(10 * time.Millisecond)
		f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0)
		if err != nil {
			return
		}
		defer f.Close()
		_, _ = f.Write([]byte("more"))
	}()

	stable := checker.IsStable(path)
	<-done
	if stable {
		t.Fatal("growing file reported stable")
	}
}
