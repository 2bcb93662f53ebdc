package book

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/zeebo/xxh3"
	"golang.org/x/exp/mmap"
)

// Book is a read-only view of a finalized book file. Chapter reads go
// through a memory mapping, so concurrent readers of one Book are safe.
type Book struct {
	path     string
	mapper   *mmap.ReaderAt
	tag      uint64
	chapters map[string]tocEntry
}

// Open maps the file at path and validates its structure: container magic
// in both header and footer, and the table-of-contents checksum.
func Open(path string) (*Book, error) {
	mapper, err := mmap.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open book %s: %w", path, err)
	}

	b, err := load(path, mapper)
	if err != nil {
		mapper.Close()
		return nil, err
	}
	return b, nil
}

func load(path string, mapper *mmap.ReaderAt) (*Book, error) {
	size := int64(mapper.Len())
	if size < headerSize+footerSize {
		return nil, fmt.Errorf("book %s: %w: file too small (%d bytes)", path, ErrBadFormat, size)
	}

	var header [headerSize]byte
	if _, err := mapper.ReadAt(header[:], 0); err != nil {
		return nil, fmt.Errorf("read book header %s: %w", path, err)
	}
	if binary.BigEndian.Uint64(header[0:]) != containerMagic {
		return nil, fmt.Errorf("book %s: %w", path, ErrBadMagic)
	}
	tag := binary.BigEndian.Uint64(header[8:])
	if v := binary.BigEndian.Uint32(header[16:]); v != formatVersion {
		return nil, fmt.Errorf("book %s: %w: unsupported version %d", path, ErrBadFormat, v)
	}

	var footer [footerSize]byte
	if _, err := mapper.ReadAt(footer[:], size-footerSize); err != nil {
		return nil, fmt.Errorf("read book footer %s: %w", path, err)
	}
	if binary.BigEndian.Uint64(footer[28:]) != containerMagic {
		return nil, fmt.Errorf("book %s: %w", path, ErrBadMagic)
	}
	tocOffset := binary.BigEndian.Uint64(footer[0:])
	tocSize := binary.BigEndian.Uint64(footer[8:])
	tocSum := binary.BigEndian.Uint64(footer[16:])

	bodyEnd := uint64(size - footerSize)
	if tocOffset < headerSize || tocOffset > bodyEnd || tocSize > bodyEnd-tocOffset {
		return nil, fmt.Errorf("book %s: %w: toc extent out of bounds", path, ErrBadFormat)
	}

	toc := make([]byte, tocSize)
	if _, err := mapper.ReadAt(toc, int64(tocOffset)); err != nil {
		return nil, fmt.Errorf("read book toc %s: %w", path, err)
	}
	if xxh3.Hash(toc) != tocSum {
		return nil, fmt.Errorf("book %s: %w: toc checksum mismatch", path, ErrBadFormat)
	}

	entries, err := decodeTOC(toc)
	if err != nil {
		return nil, fmt.Errorf("book %s: %w", path, err)
	}

	chapters := make(map[string]tocEntry, len(entries))
	for _, e := range entries {
		if e.offset < headerSize || e.offset > tocOffset || e.size > tocOffset-e.offset {
			return nil, fmt.Errorf("book %s: %w: chapter %q extent out of bounds", path, ErrBadFormat, e.name)
		}
		if _, dup := chapters[e.name]; dup {
			return nil, fmt.Errorf("book %s: %w: duplicate chapter %q", path, ErrBadFormat, e.name)
		}
		chapters[e.name] = e
	}

	return &Book{path: path, mapper: mapper, tag: tag, chapters: chapters}, nil
}

// Tag returns the caller-supplied tag the book was created with.
func (b *Book) Tag() uint64 {
	return b.tag
}

// Path returns the file path the book was opened from.
func (b *Book) Path() string {
	return b.path
}

// Chapters returns the names of all chapters in the book.
func (b *Book) Chapters() []string {
	names := make([]string, 0, len(b.chapters))
	for name := range b.chapters {
		names = append(names, name)
	}
	return names
}

// Chapter returns a reader for the named chapter. The second return value
// reports whether the chapter exists; a missing chapter is not an error.
func (b *Book) Chapter(name string) (*ChapterReader, bool) {
	e, ok := b.chapters[name]
	if !ok {
		return nil, false
	}
	return &ChapterReader{
		mapper: b.mapper,
		name:   e.name,
		base:   int64(e.offset),
		size:   int64(e.size),
	}, true
}

// Close unmaps the file. Chapter readers obtained from this book must not
// be used afterwards.
func (b *Book) Close() error {
	return b.mapper.Close()
}

// ChapterReader provides random access to one chapter's payload. It
// implements io.Reader, io.ReaderAt and io.Seeker over the chapter extent;
// reads never cross into neighboring chapters.
type ChapterReader struct {
	mapper *mmap.ReaderAt
	name   string
	base   int64
	size   int64
	pos    int64
}

// Name returns the chapter name.
func (cr *ChapterReader) Name() string {
	return cr.name
}

// Size returns the chapter payload size in bytes.
func (cr *ChapterReader) Size() int64 {
	return cr.size
}

// ReadAt reads from the chapter at the given offset. A read reaching past
// the end of the chapter returns the available bytes and io.EOF.
func (cr *ChapterReader) ReadAt(p []byte, off int64) (int, error) {
	if off < 0 {
		return 0, fmt.Errorf("chapter %q: negative offset %d", cr.name, off)
	}
	if off >= cr.size {
		return 0, io.EOF
	}
	n := len(p)
	if int64(n) > cr.size-off {
		n = int(cr.size - off)
	}
	read, err := cr.mapper.ReadAt(p[:n], cr.base+off)
	if err != nil && err != io.EOF {
		return read, fmt.Errorf("read chapter %q: %w", cr.name, err)
	}
	if read < len(p) {
		return read, io.EOF
	}
	return read, nil
}

func (cr *ChapterReader) Read(p []byte) (int, error) {
	n, err := cr.ReadAt(p, cr.pos)
	cr.pos += int64(n)
	return n, err
}

func (cr *ChapterReader) Seek(offset int64, whence int) (int64, error) {
	var next int64
	switch whence {
	case io.SeekStart:
		next = offset
	case io.SeekCurrent:
		next = cr.pos + offset
	case io.SeekEnd:
		next = cr.size + offset
	default:
		return 0, fmt.Errorf("chapter %q: invalid whence %d", cr.name, whence)
	}
	if next < 0 {
		return 0, fmt.Errorf("chapter %q: negative seek position %d", cr.name, next)
	}
	cr.pos = next
	return next, nil
}
