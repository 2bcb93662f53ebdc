package book

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"os"

	"github.com/zeebo/xxh3"
)

// Writer builds a new book file. Chapters are written strictly one after
// another; the table of contents and footer land on Close.
type Writer struct {
	path string
	file *os.File
	buf  *bufio.Writer

	tag    uint64
	offset uint64
	toc    []tocEntry
	open   *ChapterWriter
	closed bool
}

// NewWriter creates the file at path and writes the book header. The tag is
// an arbitrary caller value identifying what kind of book this is; readers
// check it against their own expectation.
func NewWriter(path string, tag uint64) (*Writer, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("create book %s: %w", path, err)
	}
	adviseSequential(f)

	w := &Writer{
		path: path,
		file: f,
		buf:  bufio.NewWriter(f),
		tag:  tag,
	}

	var header [headerSize]byte
	binary.BigEndian.PutUint64(header[0:], containerMagic)
	binary.BigEndian.PutUint64(header[8:], tag)
	binary.BigEndian.PutUint32(header[16:], formatVersion)
	if _, err := w.buf.Write(header[:]); err != nil {
		f.Close()
		return nil, fmt.Errorf("write book header %s: %w", path, err)
	}
	w.offset = headerSize
	return w, nil
}

// Path returns the file path this writer was created with.
func (w *Writer) Path() string {
	return w.path
}

// NewChapter starts a chapter with the given name. Only one chapter may be
// open at a time, and names must be unique within the book.
func (w *Writer) NewChapter(name string) (*ChapterWriter, error) {
	if w.closed {
		return nil, ErrClosed
	}
	if w.open != nil {
		return nil, fmt.Errorf("%w: chapter %q", ErrChapterOpen, w.open.name)
	}
	for _, e := range w.toc {
		if e.name == name {
			return nil, fmt.Errorf("%w: %q", ErrChapterExists, name)
		}
	}
	cw := &ChapterWriter{book: w, name: name, start: w.offset}
	w.open = cw
	return cw, nil
}

// Abort closes the underlying file without writing a table of contents.
// The on-disk result will be rejected by Open.
func (w *Writer) Abort() error {
	if w.closed {
		return ErrClosed
	}
	w.closed = true
	return w.file.Close()
}

// Close finalizes the book: the table of contents and footer are written,
// buffers are flushed and the file is synced to stable storage.
func (w *Writer) Close() error {
	if w.closed {
		return ErrClosed
	}
	if w.open != nil {
		return fmt.Errorf("%w: chapter %q", ErrChapterOpen, w.open.name)
	}
	w.closed = true

	toc, err := encodeTOC(w.toc)
	if err != nil {
		w.file.Close()
		return fmt.Errorf("book %s: %w", w.path, err)
	}
	tocOffset := w.offset
	if _, err := w.buf.Write(toc); err != nil {
		w.file.Close()
		return fmt.Errorf("write toc %s: %w", w.path, err)
	}

	var footer [footerSize]byte
	binary.BigEndian.PutUint64(footer[0:], tocOffset)
	binary.BigEndian.PutUint64(footer[8:], uint64(len(toc)))
	binary.BigEndian.PutUint64(footer[16:], xxh3.Hash(toc))
	binary.BigEndian.PutUint32(footer[24:], formatVersion)
	binary.BigEndian.PutUint64(footer[28:], containerMagic)
	if _, err := w.buf.Write(footer[:]); err != nil {
		w.file.Close()
		return fmt.Errorf("write footer %s: %w", w.path, err)
	}

	if err := w.buf.Flush(); err != nil {
		w.file.Close()
		return fmt.Errorf("flush book %s: %w", w.path, err)
	}
	if err := syncFile(w.file); err != nil {
		w.file.Close()
		return fmt.Errorf("sync book %s: %w", w.path, err)
	}
	if err := w.file.Close(); err != nil {
		return fmt.Errorf("close book %s: %w", w.path, err)
	}
	return nil
}

// ChapterWriter appends payload bytes to one open chapter. It implements
// io.Writer; Close seals the chapter and records its extent in the table of
// contents.
type ChapterWriter struct {
	book   *Writer
	name   string
	start  uint64
	size   uint64
	closed bool
}

func (cw *ChapterWriter) Write(p []byte) (int, error) {
	if cw.closed {
		return 0, fmt.Errorf("chapter %q: %w", cw.name, ErrClosed)
	}
	n, err := cw.book.buf.Write(p)
	cw.size += uint64(n)
	cw.book.offset += uint64(n)
	if err != nil {
		return n, fmt.Errorf("write chapter %q: %w", cw.name, err)
	}
	return n, nil
}

// Close seals the chapter and flushes its bytes to the file, so sealed
// chapters survive even if later writes never happen. The book writer may
// then open the next chapter.
func (cw *ChapterWriter) Close() error {
	if cw.closed {
		return fmt.Errorf("chapter %q: %w", cw.name, ErrClosed)
	}
	cw.closed = true
	cw.book.toc = append(cw.book.toc, tocEntry{name: cw.name, offset: cw.start, size: cw.size})
	cw.book.open = nil
	if err := cw.book.buf.Flush(); err != nil {
		return fmt.Errorf("flush chapter %q: %w", cw.name, err)
	}
	return nil
}
