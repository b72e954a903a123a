package materialize

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"
)

// Split names one dataset partition.
type Split string

const (
	SplitTrain Split = "train"
	SplitVal   Split = "val"
	SplitTest  Split = "test"
)

// Splits returns the partitions in presentation order.
func Splits() []Split {
	return []Split{SplitTrain, SplitVal, SplitTest}
}

// Ratios holds the partition proportions. They must sum to one; config
// validation enforces that before a run starts.
type Ratios struct {
	Train float64
	Val   float64
	Test  float64
}

// Assign maps an episode to its partition. The episode key is hashed with
// the seed and projected onto the unit interval, so assignment depends only
// on (seed, chunk, episode) and never on scan order or dataset size.
func Assign(seed int64, chunk string, episode int, ratios Ratios) Split {
	h := sha256.Sum256([]byte(fmt.Sprintf("%d:%s:%d", seed, chunk, episode)))
	u := binary.BigEndian.Uint64(h[:8])
	point := float64(u) / float64(1<<63) / 2

	switch {
	case point < ratios.Train:
		return SplitTrain
	case point < ratios.Train+ratios.Val:
		return SplitVal
	default:
		return SplitTest
	}
}
