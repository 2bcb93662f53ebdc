// Package book implements a chaptered single-file container.
//
// A book is a flat file holding named chapters. Chapters are written
// sequentially, one at a time, and read back by name with random access.
// The file is self-describing: a fixed header carries a container magic
// number plus a caller-supplied 64-bit tag, and a table of contents at the
// tail records the extent of every chapter. The table of contents is
// protected by an XXH3-64 checksum so truncated or overwritten files are
// rejected at open time.
//
// File layout:
//
//	header:  container magic (8) | caller tag (8) | format version (4)
//	body:    chapter payloads, concatenated in write order
//	toc:     entry count (4), then per entry:
//	         name length (2) | name | offset (8) | size (8)
//	footer:  toc offset (8) | toc size (8) | toc xxh3 (8) |
//	         format version (4) | container magic (8)
//
// All integers are big-endian.
package book

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

const (
	// containerMagic spells "BOOKFMT1".
	containerMagic uint64 = 0x424F4F4B464D5431

	formatVersion uint32 = 1

	headerSize = 8 + 8 + 4
	footerSize = 8 + 8 + 8 + 4 + 8
)

var (
	// ErrBadMagic means the file is not a book at all.
	ErrBadMagic = errors.New("bad container magic")
	// ErrBadFormat means the file claims to be a book but its structure
	// does not hold up (truncated, checksum mismatch, bogus extents).
	ErrBadFormat = errors.New("malformed book file")
	// ErrChapterExists is returned when a chapter name is reused.
	ErrChapterExists = errors.New("chapter already exists")
	// ErrChapterOpen is returned when a new chapter is started while the
	// previous one has not been closed.
	ErrChapterOpen = errors.New("previous chapter still open")
	// ErrClosed is returned on use after Close.
	ErrClosed = errors.New("book is closed")
)

type tocEntry struct {
	name   string
	offset uint64
	size   uint64
}

func encodeTOC(entries []tocEntry) ([]byte, error) {
	var size = 4
	for _, e := range entries {
		if len(e.name) > math.MaxUint16 {
			return nil, fmt.Errorf("chapter name too long (%d bytes)", len(e.name))
		}
		size += 2 + len(e.name) + 8 + 8
	}

	buf := make([]byte, size)
	binary.BigEndian.PutUint32(buf, uint32(len(entries)))
	pos := 4
	for _, e := range entries {
		binary.BigEndian.PutUint16(buf[pos:], uint16(len(e.name)))
		pos += 2
		copy(buf[pos:], e.name)
		pos += len(e.name)
		binary.BigEndian.PutUint64(buf[pos:], e.offset)
		pos += 8
		binary.BigEndian.PutUint64(buf[pos:], e.size)
		pos += 8
	}
	return buf, nil
}

func decodeTOC(buf []byte) ([]tocEntry, error) {
	if len(buf) < 4 {
		return nil, fmt.Errorf("%w: short table of contents", ErrBadFormat)
	}
	count := binary.BigEndian.Uint32(buf)
	entries := make([]tocEntry, 0, count)
	pos := 4
	for i := uint32(0); i < count; i++ {
		if pos+2 > len(buf) {
			return nil, fmt.Errorf("%w: truncated toc entry", ErrBadFormat)
		}
		nameLen := int(binary.BigEndian.Uint16(buf[pos:]))
		pos += 2
		if pos+nameLen+16 > len(buf) {
			return nil, fmt.Errorf("%w: truncated toc entry", ErrBadFormat)
		}
		name := string(buf[pos : pos+nameLen])
		pos += nameLen
		offset := binary.BigEndian.Uint64(buf[pos:])
		size := binary.BigEndian.Uint64(buf[pos+8:])
		pos += 16
		entries = append(entries, tocEntry{name: name, offset: offset, size: size})
	}
	if pos != len(buf) {
		return nil, fmt.Errorf("%w: trailing bytes after toc", ErrBadFormat)
	}
	return entries, nil
}
