// Package lsn defines the log sequence number used to order snapshots.
package lsn

import (
	"fmt"
	"strconv"
	"strings"
)

// Lsn is a position in the write-ahead stream a snapshot was captured at.
// Lsns on one timeline are strictly increasing.
type Lsn uint64

// String renders the conventional hi/lo form, e.g. "16/B374D848".
func (l Lsn) String() string {
	return fmt.Sprintf("%X/%X", uint64(l)>>32, uint64(l)&0xFFFFFFFF)
}

// Hex renders the bare lowercase hex form used inside filenames.
func (l Lsn) Hex() string {
	return strconv.FormatUint(uint64(l), 16)
}

// Parse accepts either the "hi/lo" form or plain hex.
func Parse(s string) (Lsn, error) {
	if hi, lo, ok := strings.Cut(s, "/"); ok {
		h, err := strconv.ParseUint(hi, 16, 32)
		if err != nil {
			return 0, fmt.Errorf("invalid lsn %q: %w", s, err)
		}
		l, err := strconv.ParseUint(lo, 16, 32)
		if err != nil {
			return 0, fmt.Errorf("invalid lsn %q: %w", s, err)
		}
		return Lsn(h<<32 | l), nil
	}
	v, err := strconv.ParseUint(s, 16, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid lsn %q: %w", s, err)
	}
	return Lsn(v), nil
}
