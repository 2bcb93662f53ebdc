package snapfile

import "github.com/downfa11-org/snapstore/pkg/lsn"

// On-disk constants and wire schemas. The container tag distinguishes
// snapshot books from any other use of the book format; chapter names and
// schema versions pin the layout readers must understand.

// snapFileTag spells "ZDBSNAP1".
const snapFileTag uint64 = 0x5A4442534E415031

const (
	chapterSnapMeta  = "snap_meta"
	chapterPages     = "pages"
	chapterPageIndex = "page_index"
)

const (
	metaSchemaVersion  uint32 = 1
	indexSchemaVersion uint32 = 1
)

type predecessorV1 struct {
	Timeline []byte `codec:"timeline"`
	Lsn      uint64 `codec:"lsn"`
}

type metaV1 struct {
	Timeline    []byte         `codec:"timeline"`
	Lsn         uint64         `codec:"lsn"`
	Predecessor *predecessorV1 `codec:"predecessor"`
}

type indexV1 struct {
	Pages map[uint64]uint64 `codec:"pages"`
}

func metaToWire(m SnapMeta) metaV1 {
	w := metaV1{
		Timeline: append([]byte(nil), m.Timeline[:]...),
		Lsn:      uint64(m.Lsn),
	}
	if m.Predecessor != nil {
		w.Predecessor = &predecessorV1{
			Timeline: append([]byte(nil), m.Predecessor.Timeline[:]...),
			Lsn:      uint64(m.Predecessor.Lsn),
		}
	}
	return w
}

func metaFromWire(w metaV1) (SnapMeta, error) {
	var m SnapMeta
	if len(w.Timeline) != len(m.Timeline) {
		return m, errBadTimelineLen(len(w.Timeline))
	}
	copy(m.Timeline[:], w.Timeline)
	m.Lsn = lsn.Lsn(w.Lsn)
	if w.Predecessor != nil {
		var pred Predecessor
		if len(w.Predecessor.Timeline) != len(pred.Timeline) {
			return m, errBadTimelineLen(len(w.Predecessor.Timeline))
		}
		copy(pred.Timeline[:], w.Predecessor.Timeline)
		pred.Lsn = lsn.Lsn(w.Predecessor.Lsn)
		m.Predecessor = &pred
	}
	return m, nil
}

func indexToWire(ix *pageIndex) indexV1 {
	pages := make(map[uint64]uint64, len(ix.m))
	for num, loc := range ix.m {
		pages[num] = uint64(loc)
	}
	return indexV1{Pages: pages}
}

func indexFromWire(w indexV1) *pageIndex {
	ix := newPageIndex()
	for num, loc := range w.Pages {
		ix.m[num] = pageLocation(loc)
	}
	return ix
}
