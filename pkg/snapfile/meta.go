// Package snapfile reads and writes point-in-time page snapshots.
//
// A snapshot file holds a set of fixed-size pages captured from one
// timeline at one log position, plus metadata linking it to the snapshot
// it incrementally extends. Files are written once via SnapWriter, never
// mutated afterwards, and read back via SnapFile. Chains of incremental
// snapshots can be consolidated into a single file with Squash.
package snapfile

import (
	"encoding/hex"
	"fmt"

	"github.com/downfa11-org/snapstore/pkg/lsn"
	"github.com/google/uuid"
)

// Timeline identifies the logical stream a chain of snapshots belongs to.
type Timeline [16]byte

// NewTimeline returns a fresh random timeline identifier.
func NewTimeline() Timeline {
	return Timeline(uuid.New())
}

// ParseTimeline parses the 32-character hex form produced by String.
func ParseTimeline(s string) (Timeline, error) {
	var t Timeline
	raw, err := hex.DecodeString(s)
	if err != nil {
		return t, fmt.Errorf("invalid timeline %q: %w", s, err)
	}
	if len(raw) != len(t) {
		return t, fmt.Errorf("invalid timeline %q: want %d hex bytes, got %d", s, len(t), len(raw))
	}
	copy(t[:], raw)
	return t, nil
}

func (t Timeline) String() string {
	return hex.EncodeToString(t[:])
}

// Predecessor names the snapshot a given snapshot incrementally extends.
type Predecessor struct {
	Timeline Timeline
	Lsn      lsn.Lsn
}

// SnapMeta is the identity of one snapshot: which timeline it belongs to,
// the position it was captured at, and the snapshot it extends (nil for a
// base snapshot). It is constructed once at write time and persisted
// verbatim in the file.
type SnapMeta struct {
	Timeline    Timeline
	Lsn         lsn.Lsn
	Predecessor *Predecessor
}

// NewSnapMeta builds the identity for a new snapshot. If previous is
// non-nil its timeline and lsn are captured as the predecessor reference.
func NewSnapMeta(previous *SnapMeta, timeline Timeline, l lsn.Lsn) SnapMeta {
	var pred *Predecessor
	if previous != nil {
		pred = &Predecessor{
			Timeline: previous.Timeline,
			Lsn:      previous.Lsn,
		}
	}
	return SnapMeta{
		Timeline:    timeline,
		Lsn:         l,
		Predecessor: pred,
	}
}

// Filename derives the on-disk name for this snapshot:
// <hex timeline>_<hex predecessor lsn, 0 for a base>_<hex lsn>.zdb.
// The predecessor lsn is embedded so chain order can be recovered from
// directory listings alone.
func (m SnapMeta) Filename() string {
	var predLsn lsn.Lsn
	if m.Predecessor != nil {
		predLsn = m.Predecessor.Lsn
	}
	return fmt.Sprintf("%s_%x_%x.zdb", m.Timeline, uint64(predLsn), uint64(m.Lsn))
}
