package snapfile

import "sort"

// pageLocation is the zero-based ordinal a page was assigned at write
// time. Ordinals are dense and follow write order, so the byte offset of a
// page inside the pages chapter is simply ordinal * PageSize.
type pageLocation uint64

func (l pageLocation) byteOffset() int64 {
	return int64(l) * PageSize
}

// pageIndex maps page numbers to their locations. It is built while
// writing, serialized once at finish time, and immutable after load.
type pageIndex struct {
	m map[uint64]pageLocation
}

func newPageIndex() *pageIndex {
	return &pageIndex{m: make(map[uint64]pageLocation)}
}

func (ix *pageIndex) lookup(pageNum uint64) (pageLocation, bool) {
	loc, ok := ix.m[pageNum]
	return loc, ok
}

func (ix *pageIndex) count() int {
	return len(ix.m)
}

// insert records a page location. It reports false if the page number is
// already present, in which case the index is unchanged.
func (ix *pageIndex) insert(pageNum uint64, loc pageLocation) bool {
	if _, dup := ix.m[pageNum]; dup {
		return false
	}
	ix.m[pageNum] = loc
	return true
}

// pageNumbers returns all indexed page numbers in ascending order.
func (ix *pageIndex) pageNumbers() []uint64 {
	nums := make([]uint64, 0, len(ix.m))
	for n := range ix.m {
		nums = append(nums, n)
	}
	sort.Slice(nums, func(i, j int) bool { return nums[i] < nums[j] })
	return nums
}
