package loopnest

import (
	"ssair/internal/cfg"
	"ssair/internal/ir"
)

// Forest is the result of LoopAnalyzer.Build: every discovered Loop plus
// the synthetic Root and a per-block lookup. Built via an explicit work-stack over reachability rather than
// recursion, following the same back-edge/dominance based algorithm
// laid out for loop-nest construction.
type Forest struct {
	Root        *Loop
	blockLoop   map[*ir.BasicBlock]*Loop
	irreducible bool
}

// HasIrreducibleLoops reports whether any discovered loop is irreducible;
// downstream analyses (LivenessAnalyzer) refuse to run when this is true.
func (f *Forest) HasIrreducibleLoops() bool { return f.irreducible }

// LoopOf returns the innermost loop owning b, or the root loop if b
// belongs to no discovered loop. Returns nil only if b is unknown to this
// Forest.
func (f *Forest) LoopOf(b *ir.BasicBlock) *Loop {
	if l, ok := f.blockLoop[b]; ok {
		return l
	}
	return nil
}

// dfsFrame is one level of the explicit-stack DFS used for back-edge
// collection, mirroring cfg.ControlFlowGraph.ReversePostOrder.s
// blockAndIndex-style frame: an explicit stack instead of recursion.
type dfsFrame struct {
	blk     *ir.BasicBlock
	succIdx int
}

// Build runs the three-step loop-forest construction: back-edge collection (Grey/Black DFS), reducible/irreducible
// loop population (reverse-DFS over predecessors from latches, Green
// marker), and synthetic root-loop synthesis. ComputeDominators is invoked
// internally so callers only need a built ControlFlowGraph, matching
// LivenessAnalyzer's "transitively builds the loop tree" contract.
func Build(g *cfg.ControlFlowGraph) *Forest {
	cfg.ComputeDominators(g)

	f := &Forest{blockLoop: make(map[*ir.BasicBlock]*Loop)}
	if g.Entry == nil {
		f.Root = &Loop{IsRoot: true}
		return f
	}

	headerLatches, headerOrder := findBackEdges(g.Entry)

	allLoops := make([]*Loop, 0, len(headerOrder))

	// Loops are populated in reverse-RPO order of their headers: an inner
	// header comes after its enclosing header in RPO, so inner loops are
	// populated before the outer loops that contain them. The DFS discovery
	// order alone does not give this (an outer header's back edge can be
	// found before an inner one's), so headerOrder is rebuilt from the RPO.
	rpo := g.ReversePostOrder(nil)
	headerOrder = headerOrder[:0]
	for i := len(rpo) - 1; i >= 0; i-- {
		if _, ok := headerLatches[rpo[i]]; ok {
			headerOrder = append(headerOrder, rpo[i])
		}
	}
	for _, header := range headerOrder {
		latches := headerLatches[header]
		reducible := true
		for _, latch := range latches {
			if !cfg.Dominates(header, latch) {
				reducible = false
				break
			}
		}

		loop := &Loop{Header: header, Latches: latches, Reducible: reducible}
		allLoops = append(allLoops, loop)
		if !reducible {
			f.irreducible = true
		}

		if reducible {
			f.populateReducible(loop, header, latches)
		} else {
			// Irreducible loop: body is exactly {header} U {latches};
			// inner structure is not explored.
			f.claim(loop, header)
			for _, latch := range latches {
				f.claim(loop, latch)
			}
		}
	}

	// Step 3: synthetic root loop. Every block still without a loop
	// becomes a root member; every loop still lacking an outer becomes a
	// direct child of the root.
	root := &Loop{IsRoot: true}
	for _, blk := range g.Blocks {
		if f.blockLoop[blk] == nil {
			f.claim(root, blk)
		}
	}
	for _, l := range allLoops {
		if l.Outer == nil {
			l.Outer = root
			root.Inner = append(root.Inner, l)
		}
	}
	f.Root = root

	for blk, l := range f.blockLoop {
		blk.Loop = l
	}
	return f
}

// claim assigns b to loop's direct membership if b is not yet owned by any
// loop; if b already belongs to another loop, that loop's outermost
// ancestor is linked as an inner loop of loop instead.
func (f *Forest) claim(loop *Loop, b *ir.BasicBlock) {
	existing, owned := f.blockLoop[b]
	if !owned {
		f.blockLoop[b] = loop
		loop.Blocks = append(loop.Blocks, b)
		return
	}
	if existing == loop {
		return
	}
	outer := existing
	for outer.Outer != nil {
		outer = outer.Outer
	}
	if outer == loop {
		return
	}
	for _, already := range loop.Inner {
		if already == outer {
			return
		}
	}
	outer.Outer = loop
	loop.Inner = append(loop.Inner, outer)
}

// populateReducible implements the reducible case: a
// reverse-DFS over predecessors seeded at each latch, with header
// pre-marked Green so the search stops there.
func (f *Forest) populateReducible(loop *Loop, header *ir.BasicBlock, latches []*ir.BasicBlock) {
	green := map[*ir.BasicBlock]bool{header: true}
	f.claim(loop, header)

	var stack []*ir.BasicBlock
	for _, latch := range latches {
		f.claim(loop, latch)
		if !green[latch] {
			green[latch] = true
			stack = append(stack, latch)
		}
	}

	for len(stack) > 0 {
		v := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, pred := range v.Predecessors {
			if green[pred] {
				continue
			}
			green[pred] = true
			f.claim(loop, pred)
			stack = append(stack, pred)
		}
	}
}

// findBackEdges runs an explicit-stack DFS from entry, classifying an edge
// to a still-on-stack (Grey) block as a back edge: its target becomes a
// loop header, its source a latch. headerOrder
// records headers in first-discovery order.
func findBackEdges(entry *ir.BasicBlock) (map[*ir.BasicBlock][]*ir.BasicBlock, []*ir.BasicBlock) {
	grey := map[*ir.BasicBlock]bool{entry: true}
	black := map[*ir.BasicBlock]bool{}
	headerLatches := make(map[*ir.BasicBlock][]*ir.BasicBlock)
	var headerOrder []*ir.BasicBlock

	stack := []dfsFrame{{blk: entry}}
	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		succs := top.blk.Successors()
		if top.succIdx < len(succs) {
			next := succs[top.succIdx]
			top.succIdx++
			if grey[next] {
				if _, ok := headerLatches[next]; !ok {
					headerOrder = append(headerOrder, next)
				}
				headerLatches[next] = append(headerLatches[next], top.blk)
				continue
			}
			if black[next] {
				continue
			}
			grey[next] = true
			stack = append(stack, dfsFrame{blk: next})
			continue
		}
		black[top.blk] = true
		stack = stack[:len(stack)-1]
	}
	return headerLatches, headerOrder
}
