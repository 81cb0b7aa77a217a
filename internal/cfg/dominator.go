package cfg

import "github.com/bits-and-blooms/bitset"

// ComputeDominators fills in Idom and Dominates on every block cfg.Entry
// can reach, using the naive O(V·(V+E)) construction — not Lengauer-Tarjan:
// for each candidate dominator d, remove d from the graph and see which
// blocks become unreachable from entry. Reachable-block membership is
// tracked with a bitset.BitSet per block.
//
// Unreachable blocks (and any block when cfg.Entry is nil) are left with
// a nil Idom and an empty Dominates: unreachable blocks have no dominator.
func ComputeDominators(cfg *ControlFlowGraph) {
	reachable := cfg.ReversePostOrder(nil)
	for _, blk := range cfg.Blocks {
		blk.Idom = nil
		blk.Dominates = nil
	}
	if len(reachable) == 0 {
		return
	}

	n := uint(len(reachable))

	// domSets[i] is the bitset, over reachable's index space, of blocks
	// that dominate reachable[i].
	domSets := make([]*bitset.BitSet, n)
	for i := range domSets {
		domSets[i] = bitset.New(n)
	}

	// Removing cfg.Entry itself disconnects the whole graph (Reachable
	// special-cases ignore==Entry to the empty set), so this loop does not
	// need to special-case d==cfg.Entry: entry's candidacy falls out of the
	// same "what becomes unreachable without d" test as every other block,
	// and correctly dominates everything reachable.
	for dIdx, d := range reachable {
		without := cfg.Reachable(d)
		for bIdx, blk := range reachable {
			if !without[blk] {
				domSets[bIdx].Set(uint(dIdx))
			}
		}
	}
	for i := range reachable {
		domSets[i].Set(uint(i)) // every block dominates itself
	}

	domCount := make([]uint, n)
	for i := range reachable {
		domCount[i] = domSets[i].Count()
	}

	for bIdx, blk := range reachable {
		if blk == cfg.Entry {
			continue
		}
		idomIdx := -1
		var best uint
		for dIdx := range reachable {
			if uint(dIdx) == uint(bIdx) || !domSets[bIdx].Test(uint(dIdx)) {
				continue
			}
			if idomIdx == -1 || domCount[dIdx] > best {
				idomIdx, best = dIdx, domCount[dIdx]
			}
		}
		if idomIdx >= 0 {
			blk.Idom = reachable[idomIdx]
			reachable[idomIdx].Dominates = append(reachable[idomIdx].Dominates, blk)
		}
	}
}
