package snapfile

import (
	"fmt"
	"sort"
	"time"

	"github.com/downfa11-org/snapstore/pkg/metrics"
	"github.com/downfa11-org/snapstore/util"
)

// Squash consolidates a chain of snapshots into one new file in dir.
//
// The chain must be ordered base first: chain[i] for i > 0 names
// chain[i-1]'s identity as its predecessor, all on one timeline. Where two
// snapshots store the same page number the later one wins, matching the
// semantics of an incremental chain. The output snapshot takes the base's
// predecessor and the last snapshot's lsn, so it slots into the chain
// exactly where the base was.
//
// The inputs are left untouched; deleting the superseded files is the
// caller's decision.
func Squash(dir string, chain []*SnapFile) (SnapMeta, error) {
	if len(chain) == 0 {
		return SnapMeta{}, ErrEmptyChain
	}
	start := time.Now()

	metas := make([]SnapMeta, len(chain))
	for i, sf := range chain {
		meta, err := sf.ReadMeta()
		if err != nil {
			return SnapMeta{}, err
		}
		metas[i] = meta
	}
	if err := validateChain(chain, metas); err != nil {
		return SnapMeta{}, err
	}

	// Later snapshots win on conflicting page numbers.
	winners := make(map[uint64]int)
	for i, sf := range chain {
		for _, num := range sf.index.pageNumbers() {
			winners[num] = i
		}
	}

	nums := make([]uint64, 0, len(winners))
	for num := range winners {
		nums = append(nums, num)
	}
	sort.Slice(nums, func(i, j int) bool { return nums[i] < nums[j] })

	out := SnapMeta{
		Timeline:    metas[0].Timeline,
		Lsn:         metas[len(metas)-1].Lsn,
		Predecessor: metas[0].Predecessor,
	}
	w, err := NewSnapWriter(dir, out)
	if err != nil {
		return SnapMeta{}, err
	}

	for _, num := range nums {
		src := chain[winners[num]]
		page, err := src.ReadPage(num)
		if err != nil {
			return SnapMeta{}, err
		}
		if page == nil {
			return SnapMeta{}, fmt.Errorf("snapfile %s: %w: page %d vanished from index", src.path, ErrBadFormat, num)
		}
		if err := w.WritePage(num, page[:]); err != nil {
			return SnapMeta{}, err
		}
	}

	meta, err := w.Finish()
	if err != nil {
		return SnapMeta{}, err
	}

	metrics.SquashTotal.Inc()
	metrics.SquashDuration.Observe(time.Since(start).Seconds())
	util.Info("squashed %d snapshots into %s (%d pages)", len(chain), meta.Filename(), len(nums))
	return meta, nil
}

// validateChain rejects chains whose predecessor linkage is broken:
// snapshots out of order, on mixed timelines, or with missing links.
func validateChain(chain []*SnapFile, metas []SnapMeta) error {
	for i := 1; i < len(metas); i++ {
		prev, cur := metas[i-1], metas[i]
		if cur.Timeline != metas[0].Timeline {
			return fmt.Errorf("%w: %s is on timeline %s, chain is on %s",
				ErrBrokenChain, chain[i].path, cur.Timeline, metas[0].Timeline)
		}
		if cur.Predecessor == nil {
			return fmt.Errorf("%w: %s has no predecessor but follows %s",
				ErrBrokenChain, chain[i].path, chain[i-1].path)
		}
		if cur.Predecessor.Timeline != prev.Timeline || cur.Predecessor.Lsn != prev.Lsn {
			return fmt.Errorf("%w: %s does not extend %s",
				ErrBrokenChain, chain[i].path, chain[i-1].path)
		}
	}
	return nil
}
