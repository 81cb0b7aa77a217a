// Package liveness builds the linear block order and the live-interval
// analysis: a total order over a function's blocks consistent with
// dominance and loop contiguity, followed by per-instruction linear/live
// numbering and live-interval computation.
package liveness

import (
	"ssair/internal/cfg"
	"ssair/internal/ir"
	"ssair/internal/loopnest"
)

// walker holds the transient state of the structured linear-order walk:
// the accumulated order and the Black marker, kept as traversal-scoped
// maps rather than persistent node flags so independent traversals can't
// collide.
type walker struct {
	forest *loopnest.Forest
	black  map[*ir.BasicBlock]bool
	order  []*ir.BasicBlock
}

// BuildLinearOrder produces the linear order: every block appears after
// its immediate dominator, and the blocks of a loop form a contiguous run
// with inner loops nested inside that run. forest must already be built
// over g (loopnest.Build also computes dominators).
func BuildLinearOrder(g *cfg.ControlFlowGraph, forest *loopnest.Forest) []*ir.BasicBlock {
	if g.Entry == nil {
		return nil
	}
	w := &walker{forest: forest, black: make(map[*ir.BasicBlock]bool)}

	root := forest.Root
	var pending []*ir.BasicBlock
	if loop := forest.LoopOf(g.Entry); loop != nil && !loop.IsRoot && loop.Header == g.Entry {
		pending = w.visitLoop(loop, root)
	} else {
		pending = w.visitPlain(g.Entry, root)
	}
	// "continue with true exits in linear-order fashion": whatever
	// escaped the entry's own (loop or plain) scope belongs to the
	// top-level root scope; drain it the same way a loop drains its own
	// exit set.
	w.drain(pending, root)

	// A disconnected function (blocks the structured walk's dominance-
	// gated visitation never reaches, e.g. blocks with no path from entry)
	// is a caller bug the IR tolerates rather than rejects; append any
	// leftovers in declaration order rather than silently dropping them.
	for _, blk := range g.Blocks {
		if !w.black[blk] {
			w.visitBlock(blk)
		}
	}
	return w.order
}

func (w *walker) visitBlock(b *ir.BasicBlock) {
	w.black[b] = true
	w.order = append(w.order, b)
}

// canBeVisited reports whether every predecessor required to have already
// been ordered has been: all predecessors for a plain block, all
// non-latch predecessors for a loop header (so a header never waits on
// its own back edge).
func (w *walker) canBeVisited(b *ir.BasicBlock) bool {
	loop := w.forest.LoopOf(b)
	isHeader := loop != nil && !loop.IsRoot && loop.Header == b
	for _, pred := range b.Predecessors {
		if isHeader && loop.IsLatch(pred) {
			continue
		}
		if !w.black[pred] {
			return false
		}
	}
	return true
}

// inScope reports whether b belongs directly to scope, or is the header
// of a loop nested (at any depth) within scope — the two cases a
// within-scope walk is allowed to step into without deferring to the
// exit set.
func (w *walker) inScope(b *ir.BasicBlock, scope *loopnest.Loop) bool {
	loop := w.forest.LoopOf(b)
	if loop == scope {
		return true
	}
	return loop != nil && loop.Header == b && isDescendantLoop(loop, scope)
}

func isDescendantLoop(l, ancestor *loopnest.Loop) bool {
	for cur := l; cur != nil; cur = cur.Outer {
		if cur == ancestor {
			return true
		}
	}
	return false
}

// orderedSet is an insertion-ordered, duplicate-free block collection —
// used for the deferred "exit set" a loop walk accumulates, where
// visitation order must stay deterministic.
type orderedSet struct {
	order []*ir.BasicBlock
	seen  map[*ir.BasicBlock]bool
}

func newOrderedSet() *orderedSet { return &orderedSet{seen: make(map[*ir.BasicBlock]bool)} }

func (s *orderedSet) add(b *ir.BasicBlock) {
	if s.seen[b] {
		return
	}
	s.seen[b] = true
	s.order = append(s.order, b)
}

func (s *orderedSet) remove(b *ir.BasicBlock) {
	if !s.seen[b] {
		return
	}
	delete(s.seen, b)
	for i, x := range s.order {
		if x == b {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

func (s *orderedSet) snapshot() []*ir.BasicBlock {
	return append([]*ir.BasicBlock(nil), s.order...)
}

// tryVisit attempts to step into b from within scope: blocks outside scope
// are deferred into exits; blocks inside scope are visited immediately if
// ready, otherwise left untouched (a later drain pass, or another path,
// will pick them up once ready).
func (w *walker) tryVisit(b *ir.BasicBlock, scope *loopnest.Loop, exits *orderedSet) {
	if b == nil || w.black[b] {
		return
	}
	if !w.inScope(b, scope) {
		exits.add(b)
		return
	}
	if w.canBeVisited(b) {
		for _, e := range w.visit(b, scope) {
			exits.add(e)
		}
	}
}

// visit dispatches to visitLoop when b is entering a loop nested within
// scope (including scope's own immediate loop, when scope itself is a
// loop and b is its header reached from outside — not expected in
// practice since visitLoop is always entered directly), or to visitPlain
// otherwise.
func (w *walker) visit(b *ir.BasicBlock, scope *loopnest.Loop) []*ir.BasicBlock {
	loop := w.forest.LoopOf(b)
	if loop != scope && loop != nil && !loop.IsRoot && loop.Header == b {
		return w.visitLoop(loop, scope)
	}
	return w.visitPlain(b, scope)
}

// visitPlain implements the non-header walk: mark Black, append, try the
// false-successor first then the true-successor, then retry the
// false-successor once the true-successor may have unblocked it. It is
// also used, verbatim, for a loop header's own successor ordering — a
// header prefers the successor currently visitable (false-successor
// first, then true) the same way.
func (w *walker) visitPlain(b *ir.BasicBlock, scope *loopnest.Loop) []*ir.BasicBlock {
	w.visitBlock(b)
	exits := newOrderedSet()
	w.tryVisit(b.FalseSucc, scope, exits)
	w.tryVisit(b.TrueSucc, scope, exits)
	w.tryVisit(b.FalseSucc, scope, exits)
	return exits.snapshot()
}

// visitLoop recursively visits loop's body starting at its header, then
// drains the deferred exit set (nested-inner-loop exits first, then exits
// that turn out to still belong to loop itself) until both categories are
// exhausted. Whatever remains escapes loop's scope and is returned to the
// caller (parentScope) to continue "in linear-order fashion".
func (w *walker) visitLoop(loop *loopnest.Loop, parentScope *loopnest.Loop) []*ir.BasicBlock {
	_ = parentScope
	pending := w.visitPlain(loop.Header, loop)
	return w.drain(pending, loop)
}

// drain repeatedly resolves scope's deferred exit set: first any exit
// that is the header of a nested inner loop, then any exit that turns out
// to already belong to scope itself, until neither category makes
// further progress. What is left afterward is scope's set of true exits.
func (w *walker) drain(initial []*ir.BasicBlock, scope *loopnest.Loop) []*ir.BasicBlock {
	pending := newOrderedSet()
	for _, b := range initial {
		pending.add(b)
	}
	for {
		progressed := false

		for _, exitBlk := range pending.snapshot() {
			loop := w.forest.LoopOf(exitBlk)
			if loop != nil && loop != scope && loop.Header == exitBlk &&
				isDescendantLoop(loop, scope) && w.canBeVisited(exitBlk) {
				pending.remove(exitBlk)
				for _, e := range w.visitLoop(loop, scope) {
					pending.add(e)
				}
				progressed = true
			}
		}

		for _, exitBlk := range pending.snapshot() {
			if w.forest.LoopOf(exitBlk) == scope && w.canBeVisited(exitBlk) {
				pending.remove(exitBlk)
				for _, e := range w.visitPlain(exitBlk, scope) {
					pending.add(e)
				}
				progressed = true
			}
		}

		if !progressed {
			break
		}
	}
	return pending.snapshot()
}
