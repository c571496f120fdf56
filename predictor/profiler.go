package predictor

import (
	"sort"

	"github.com/sarchlab/akita/v4/sim"
)

// BranchStats counts predictions and mispredictions for one static branch.
type BranchStats struct {
	Address        uint64
	Predictions    uint64
	Mispredictions uint64
}

// BranchProfiler is a hook that accumulates per-address statistics.
type BranchProfiler struct {
	branches map[uint64]*BranchStats
}

// NewBranchProfiler creates an empty profiler. Attach it with
// Engine.AcceptHook.
func NewBranchProfiler() *BranchProfiler {
	return &BranchProfiler{branches: make(map[uint64]*BranchStats)}
}

// Func implements sim.Hook.
func (bp *BranchProfiler) Func(ctx sim.HookCtx) {
	if ctx.Pos != HookPosPredict {
		return
	}

	p, ok := ctx.Item.(Prediction)
	if !ok {
		return
	}

	s := bp.branches[p.Address]
	if s == nil {
		s = &BranchStats{Address: p.Address}
		bp.branches[p.Address] = s
	}
	s.Predictions++
	if p.Mispredicted {
		s.Mispredictions++
	}
}

// NumBranches returns the number of distinct branch addresses seen.
func (bp *BranchProfiler) NumBranches() int {
	return len(bp.branches)
}

// Lookup returns the statistics for addr.
func (bp *BranchProfiler) Lookup(addr uint64) (BranchStats, bool) {
	s, ok := bp.branches[addr]
	if !ok {
		return BranchStats{}, false
	}
	return *s, true
}

// Top returns up to n branches ordered by misprediction count, highest
// first. Ties are broken by ascending address.
func (bp *BranchProfiler) Top(n int) []BranchStats {
	all := make([]BranchStats, 0, len(bp.branches))
	for _, s := range bp.branches {
		all = append(all, *s)
	}

	sort.Slice(all, func(i, j int) bool {
		if all[i].Mispredictions != all[j].Mispredictions {
			return all[i].Mispredictions > all[j].Mispredictions
		}
		return all[i].Address < all[j].Address
	})

	if n >= 0 && n < len(all) {
		all = all[:n]
	}
	return all
}
