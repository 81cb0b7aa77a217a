package liveness

import (
	"github.com/bits-and-blooms/bitset"

	"ssair/internal/cfg"
	"ssair/internal/ir"
	"ssair/internal/loopnest"
)

// Result is what LivenessAnalyzer.Run materializes for a function: the
// linear order it computed (and the CFG/loop forest it was built from),
// retained so a RegisterAllocator can walk values in ascending interval
// order without rebuilding anything.
type Result struct {
	Graph  *cfg.ControlFlowGraph
	Forest *loopnest.Forest
	Order  []*ir.BasicBlock
}

// Analyzer is the LivenessAnalyzer. It has no configuration of its own.
type Analyzer struct{}

func NewAnalyzer() *Analyzer { return &Analyzer{} }

// Run builds the linear order, assigns per-instruction linear/live
// numbers, computes every produced Value's live interval, and reports
// ok=false without mutating anything further if fn's loop forest contains
// an irreducible loop: liveness only runs when the loop tree is free of
// irreducible loops.
func (a *Analyzer) Run(fn *ir.Function) (*Result, bool) {
	graph := cfg.Build(fn)
	forest := loopnest.Build(graph)
	if forest.HasIrreducibleLoops() {
		return nil, false
	}

	order := BuildLinearOrder(graph, forest)
	assignNumbers(order)
	computeIntervals(order, forest)

	return &Result{Graph: graph, Forest: forest, Order: order}, true
}

// assignNumbers walks order assigning the linear and live numbers:
// block.LiveRangeStart/cursor advance by 2 per block boundary and per
// non-Phi instruction; Phis share their block's start live number;
// LinearNumber is simply dense and ascending.
func assignNumbers(order []*ir.BasicBlock) {
	cursor := uint64(0)
	linear := 0
	for _, blk := range order {
		blk.LiveRangeStart = cursor
		cursor += 2
		for inst := blk.Head; inst != nil; inst = inst.Next {
			inst.LinearNumber = linear
			linear++
			if inst.IsPhi() {
				inst.LiveNumber = blk.LiveRangeStart
			} else {
				inst.LiveNumber = cursor
				cursor += 2
			}
		}
		blk.LiveRangeEnd = cursor
	}
}

// indexProducedValues assigns each Value that has a producing instruction
// a dense index into the bitset-backed liveset/interval arrays; constants
// and arguments never get one — liveness only tracks produced values.
func indexProducedValues(order []*ir.BasicBlock) (map[*ir.Value]uint, []*ir.Value) {
	index := make(map[*ir.Value]uint)
	var values []*ir.Value
	for _, blk := range order {
		for inst := blk.Head; inst != nil; inst = inst.Next {
			if inst.Out != nil && inst.Out.HasProducer() {
				if _, ok := index[inst.Out]; !ok {
					index[inst.Out] = uint(len(values))
					values = append(values, inst.Out)
				}
			}
		}
	}
	return index, values
}

// computeIntervals implements the live-interval calculation: a single
// reverse-linear-order walk maintaining a per-block liveset (bitset-backed,
// in the style of classic GEN/KILL live-variable dataflow), with a
// loop-header closure step standing in for the full fixed-point
// propagation a single backward pass cannot give a back edge directly.
func computeIntervals(order []*ir.BasicBlock, forest *loopnest.Forest) {
	index, values := indexProducedValues(order)
	n := uint(len(values))
	if n == 0 {
		return
	}
	intervals := make([]ir.LiveInterval, n)

	// liveIn[blk] is the liveset at blk's entry, needed by blk's
	// predecessors once they are processed (always true for any non-
	// back edge, since the linear order guarantees a back-edge target's
	// position precedes its latch's — see order.go's canBeVisited).
	liveIn := make(map[*ir.BasicBlock]*bitset.BitSet, len(order))

	for i := len(order) - 1; i >= 0; i-- {
		blk := order[i]
		live := bitset.New(n)

		// Step 1: union of successor livesets, plus — for every
		// successor Phi whose real input for this predecessor is
		// produced in blk — that producer: a phi-semantics shortcut
		// for the back-edge case, where the header's own liveIn is
		// not yet available.
		for _, succ := range blk.Successors() {
			if in, ok := liveIn[succ]; ok {
				live.InPlaceUnion(in)
			}
			for _, phi := range succ.Phis() {
				realIn := phi.PhiInputFor(blk)
				if realIn != nil && realIn.HasProducer() && realIn.Producer.Block == blk {
					if idx, ok := index[realIn]; ok {
						live.Set(idx)
					}
				}
			}
		}

		// Step 2: extend every liveset member's interval by blk's live
		// range before any per-instruction refinement.
		blkRange := ir.LiveInterval{Start: blk.LiveRangeStart, End: blk.LiveRangeEnd}
		for idx, ok := live.NextSet(0); ok; idx, ok = live.NextSet(idx + 1) {
			intervals[idx] = intervals[idx].Union(blkRange)
		}

		// Step 3: walk the block's non-Phi instructions back to front.
		for inst := blk.Tail; inst != nil && !inst.IsPhi(); inst = inst.Prev {
			if inst.Out != nil && inst.Out.HasProducer() {
				if idx, ok := index[inst.Out]; ok {
					iv := intervals[idx]
					iv.Start = inst.LiveNumber
					if iv.End < iv.Start+2 {
						iv.End = iv.Start + 2
					}
					intervals[idx] = iv
					live.Clear(idx)
				}
			}
			for _, op := range inst.GetOperands() {
				if op == nil || !op.HasProducer() {
					continue
				}
				idx, ok := index[op]
				if !ok {
					continue
				}
				live.Set(idx)
				intervals[idx] = intervals[idx].Union(ir.LiveInterval{
					Start: blk.LiveRangeStart,
					End:   inst.LiveNumber,
				})
			}
		}

		// Step 4: remove the block's own Phi outputs from the liveset.
		for _, phi := range blk.Phis() {
			if phi.Out != nil {
				if idx, ok := index[phi.Out]; ok {
					live.Clear(idx)
				}
			}
		}

		// Step 5: loop-header closure — extend every still-live
		// instruction's interval over the whole loop's live range.
		if loop := forest.LoopOf(blk); loop != nil && !loop.IsRoot && loop.Header == blk {
			var maxLatchEnd uint64
			for _, latch := range loop.Latches {
				if latch.LiveRangeEnd > maxLatchEnd {
					maxLatchEnd = latch.LiveRangeEnd
				}
			}
			closure := ir.LiveInterval{Start: blk.LiveRangeStart, End: maxLatchEnd}
			for idx, ok := live.NextSet(0); ok; idx, ok = live.NextSet(idx + 1) {
				intervals[idx] = intervals[idx].Union(closure)
			}
		}

		liveIn[blk] = live
	}

	for idx, v := range values {
		v.Interval = intervals[idx]
	}
}
