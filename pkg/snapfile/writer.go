package snapfile

import (
	"fmt"
	"path/filepath"

	"github.com/downfa11-org/snapstore/pkg/book"
	"github.com/downfa11-org/snapstore/pkg/codec"
	"github.com/downfa11-org/snapstore/pkg/metrics"
	"github.com/downfa11-org/snapstore/util"
)

// SnapWriter creates one new snapshot file. Pages are appended through
// WritePage and the file becomes durable and readable only after Finish.
// A writer must only be used from one goroutine: ordinal assignment and
// chapter appends are strictly sequential.
type SnapWriter struct {
	bw       *book.Writer
	pages    *book.ChapterWriter
	index    *pageIndex
	meta     SnapMeta
	next     pageLocation
	finished bool
}

// NewSnapWriter creates a snapshot file in dir, named after meta. The
// identity chapter is written and sealed immediately so it is durable even
// if page writing fails later; the pages chapter is left open for appends.
func NewSnapWriter(dir string, meta SnapMeta) (*SnapWriter, error) {
	path := filepath.Join(dir, meta.Filename())
	bw, err := book.NewWriter(path, snapFileTag)
	if err != nil {
		return nil, err
	}

	cw, err := bw.NewChapter(chapterSnapMeta)
	if err != nil {
		bw.Abort()
		return nil, fmt.Errorf("snapfile %s: %w", path, err)
	}
	if err := codec.Encode(cw, metaSchemaVersion, metaToWire(meta)); err != nil {
		bw.Abort()
		return nil, fmt.Errorf("snapfile %s: write metadata: %w", path, err)
	}
	if err := cw.Close(); err != nil {
		bw.Abort()
		return nil, fmt.Errorf("snapfile %s: %w", path, err)
	}

	pages, err := bw.NewChapter(chapterPages)
	if err != nil {
		bw.Abort()
		return nil, fmt.Errorf("snapfile %s: %w", path, err)
	}

	metrics.SnapshotsCreated.Inc()
	util.Debug("created snapfile %s", path)
	return &SnapWriter{
		bw:    bw,
		pages: pages,
		index: newPageIndex(),
		meta:  meta,
	}, nil
}

// Path returns the path of the file being written.
func (w *SnapWriter) Path() string {
	return w.bw.Path()
}

// WritePage appends one page and records it in the index. Pages may arrive
// in any page-number order; ordinals follow call order. Writing a page
// number twice is rejected with ErrDuplicatePage and leaves the writer
// usable for other pages.
func (w *SnapWriter) WritePage(pageNum uint64, data []byte) error {
	if w.finished {
		return ErrWriterFinished
	}
	if len(data) != PageSize {
		return fmt.Errorf("page %d: %w: got %d", pageNum, ErrPageSize, len(data))
	}
	if _, dup := w.index.lookup(pageNum); dup {
		return fmt.Errorf("page %d: %w", pageNum, ErrDuplicatePage)
	}

	if _, err := w.pages.Write(data); err != nil {
		return fmt.Errorf("snapfile %s: page %d: %w", w.Path(), pageNum, err)
	}
	w.index.insert(pageNum, w.next)
	w.next++
	metrics.PagesWritten.Inc()
	return nil
}

// Finish seals the pages chapter, writes the page index and closes the
// file. It returns the identity supplied at creation so callers can derive
// the filename or chain the next snapshot. The writer must not be used
// afterwards.
func (w *SnapWriter) Finish() (SnapMeta, error) {
	if w.finished {
		return SnapMeta{}, ErrWriterFinished
	}
	w.finished = true

	if err := w.pages.Close(); err != nil {
		return SnapMeta{}, fmt.Errorf("snapfile %s: %w", w.Path(), err)
	}

	cw, err := w.bw.NewChapter(chapterPageIndex)
	if err != nil {
		return SnapMeta{}, fmt.Errorf("snapfile %s: %w", w.Path(), err)
	}
	if err := codec.Encode(cw, indexSchemaVersion, indexToWire(w.index)); err != nil {
		return SnapMeta{}, fmt.Errorf("snapfile %s: write page index: %w", w.Path(), err)
	}
	if err := cw.Close(); err != nil {
		return SnapMeta{}, fmt.Errorf("snapfile %s: %w", w.Path(), err)
	}

	if err := w.bw.Close(); err != nil {
		return SnapMeta{}, err
	}

	metrics.LastSnapshotPages.Set(float64(w.index.count()))
	util.Debug("finished snapfile %s with %d pages", w.Path(), w.index.count())
	return w.meta, nil
}
