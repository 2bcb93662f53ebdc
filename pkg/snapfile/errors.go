package snapfile

import (
	"errors"
	"fmt"
)

var (
	// ErrBadMagic means the file is not a snapshot file: either not a
	// book container at all, or a book carrying a foreign tag.
	ErrBadMagic = errors.New("not a snapshot file")

	// ErrMissingChapter means a required chapter is absent. The file is
	// unusable.
	ErrMissingChapter = errors.New("missing required chapter")

	// ErrBadFormat covers malformed encoded content inside an otherwise
	// well-framed file.
	ErrBadFormat = errors.New("malformed snapshot file")

	// ErrTruncatedPage means a page read returned fewer than PageSize
	// bytes. The file should be treated as corrupt.
	ErrTruncatedPage = errors.New("truncated page read")

	// ErrDuplicatePage is returned when the same page number is written
	// twice through one writer. The offending write is rejected; the
	// writer stays usable for other pages.
	ErrDuplicatePage = errors.New("page already written")

	// ErrPageSize is returned when WritePage is handed a buffer that is
	// not exactly PageSize bytes.
	ErrPageSize = errors.New("page data must be exactly 8192 bytes")

	// ErrWriterFinished is returned on use of a writer after Finish.
	ErrWriterFinished = errors.New("snapshot writer already finished")

	// ErrEmptyChain is returned by Squash for a zero-length chain.
	ErrEmptyChain = errors.New("empty snapshot chain")

	// ErrBrokenChain is returned by Squash when the supplied snapshots do
	// not form an unbroken predecessor chain on a single timeline.
	ErrBrokenChain = errors.New("broken snapshot chain")
)

func errBadTimelineLen(n int) error {
	return fmt.Errorf("%w: timeline is %d bytes, want 16", ErrBadFormat, n)
}
