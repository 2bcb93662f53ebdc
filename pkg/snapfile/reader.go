package snapfile

import (
	"errors"
	"fmt"
	"io"

	"github.com/downfa11-org/snapstore/pkg/book"
	"github.com/downfa11-org/snapstore/pkg/codec"
	"github.com/downfa11-org/snapstore/pkg/metrics"
	"github.com/downfa11-org/snapstore/util"
)

// SnapFile is a read-only view of one finalized snapshot file. The page
// index is loaded eagerly at open time; pages and metadata are read on
// demand. A SnapFile assumes exclusive, stable access to the underlying
// file for its lifetime.
type SnapFile struct {
	path  string
	book  *book.Book
	index *pageIndex
}

// OpenSnapFile opens the file at path, verifies it is a snapshot book and
// loads its page index. Any path is accepted regardless of naming.
func OpenSnapFile(path string) (*SnapFile, error) {
	b, err := book.Open(path)
	if err != nil {
		if errors.Is(err, book.ErrBadMagic) {
			return nil, fmt.Errorf("snapfile %s: %w", path, ErrBadMagic)
		}
		return nil, fmt.Errorf("snapfile %s: %w", path, err)
	}
	sf, err := load(path, b)
	if err != nil {
		b.Close()
		return nil, err
	}
	metrics.SnapshotsOpened.Inc()
	util.Debug("opened snapfile %s with %d pages", path, sf.PageCount())
	return sf, nil
}

func load(path string, b *book.Book) (*SnapFile, error) {
	if b.Tag() != snapFileTag {
		return nil, fmt.Errorf("snapfile %s: %w: tag %#x", path, ErrBadMagic, b.Tag())
	}

	cr, ok := b.Chapter(chapterPageIndex)
	if !ok {
		return nil, fmt.Errorf("snapfile %s: %w: %s", path, ErrMissingChapter, chapterPageIndex)
	}
	var wire indexV1
	if err := codec.Decode(cr, indexSchemaVersion, &wire); err != nil {
		return nil, fmt.Errorf("snapfile %s: %w: page index: %v", path, ErrBadFormat, err)
	}

	return &SnapFile{path: path, book: b, index: indexFromWire(wire)}, nil
}

// Path returns the path the snapshot was opened from.
func (sf *SnapFile) Path() string {
	return sf.path
}

// ReadMeta decodes the snapshot's identity chapter.
func (sf *SnapFile) ReadMeta() (SnapMeta, error) {
	cr, ok := sf.book.Chapter(chapterSnapMeta)
	if !ok {
		return SnapMeta{}, fmt.Errorf("snapfile %s: %w: %s", sf.path, ErrMissingChapter, chapterSnapMeta)
	}
	var wire metaV1
	if err := codec.Decode(cr, metaSchemaVersion, &wire); err != nil {
		return SnapMeta{}, fmt.Errorf("snapfile %s: %w: metadata: %v", sf.path, ErrBadFormat, err)
	}
	meta, err := metaFromWire(wire)
	if err != nil {
		return SnapMeta{}, fmt.Errorf("snapfile %s: %w", sf.path, err)
	}
	return meta, nil
}

// PageCount returns the number of pages stored in this snapshot.
func (sf *SnapFile) PageCount() int {
	return sf.index.count()
}

// HasPage reports whether the given page number is stored in this file.
func (sf *SnapFile) HasPage(pageNum uint64) bool {
	_, ok := sf.index.lookup(pageNum)
	return ok
}

// ReadPage returns the page data for pageNum, or (nil, nil) if this file
// does not store that page. A short read is reported as ErrTruncatedPage.
func (sf *SnapFile) ReadPage(pageNum uint64) (*Page, error) {
	loc, ok := sf.index.lookup(pageNum)
	if !ok {
		return nil, nil
	}
	return sf.readAt(loc)
}

func (sf *SnapFile) readAt(loc pageLocation) (*Page, error) {
	cr, ok := sf.book.Chapter(chapterPages)
	if !ok {
		return nil, fmt.Errorf("snapfile %s: %w: %s", sf.path, ErrMissingChapter, chapterPages)
	}

	page := new(Page)
	n, err := cr.ReadAt(page[:], loc.byteOffset())
	if n != PageSize {
		metrics.CorruptionTotal.Inc()
		return nil, fmt.Errorf("snapfile %s: %w: got %d bytes at offset %d", sf.path, ErrTruncatedPage, n, loc.byteOffset())
	}
	if err != nil && err != io.EOF {
		return nil, fmt.Errorf("snapfile %s: %w", sf.path, err)
	}
	metrics.PagesRead.Inc()
	return page, nil
}

// AllPages returns an iterator over every page in ascending page-number
// order. Pages are read lazily; a read failure on one page does not stop
// the caller from advancing past it.
func (sf *SnapFile) AllPages() *PageIter {
	return &PageIter{sf: sf, nums: sf.index.pageNumbers(), pos: -1}
}

// Close releases the underlying file mapping.
func (sf *SnapFile) Close() error {
	return sf.book.Close()
}

// PageIter walks a snapshot's pages in ascending page-number order.
//
//	it := sf.AllPages()
//	for it.Next() {
//		page, err := it.Page()
//		...
//	}
type PageIter struct {
	sf   *SnapFile
	nums []uint64
	pos  int
}

// Next advances the iterator and reports whether a current entry exists.
func (it *PageIter) Next() bool {
	if it.pos+1 >= len(it.nums) {
		return false
	}
	it.pos++
	return true
}

// PageNum returns the current entry's page number.
func (it *PageIter) PageNum() uint64 {
	return it.nums[it.pos]
}

// Page reads the current entry's data. Each call performs the read, so an
// I/O error affects only this entry.
func (it *PageIter) Page() (*Page, error) {
	loc, _ := it.sf.index.lookup(it.nums[it.pos])
	return it.sf.readAt(loc)
}
