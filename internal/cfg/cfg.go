// Package cfg builds the control-flow view of a function (reachability,
// reverse postorder, dominator tree) on top of the ir package's owned
// BasicBlock graph.
package cfg

import "ssair/internal/ir"

// ControlFlowGraph is a thin view over a Function's block list: its entry
// plus every block the Function owns, reachable or not (unreachable
// blocks are a caller bug the IR tolerates rather than rejects).
type ControlFlowGraph struct {
	Entry  *ir.BasicBlock
	Blocks []*ir.BasicBlock
}

// Build wraps fn's existing block graph; it does not copy or mutate it.
func Build(fn *ir.Function) *ControlFlowGraph {
	return &ControlFlowGraph{
		Entry:  fn.Entry,
		Blocks: append([]*ir.BasicBlock(nil), fn.Blocks...),
	}
}

type frame struct {
	blk     *ir.BasicBlock
	succIdx int
}

// ReversePostOrder walks the graph from cfg.Entry with an explicit
// work-stack instead of recursion, optionally treating ignore as absent
// from the graph. Unreachable blocks (including ignore itself) are
// omitted.
func (cfg *ControlFlowGraph) ReversePostOrder(ignore *ir.BasicBlock) []*ir.BasicBlock {
	if cfg.Entry == nil || cfg.Entry == ignore {
		return nil
	}

	black := map[*ir.BasicBlock]bool{cfg.Entry: true}
	var postorder []*ir.BasicBlock
	stack := []frame{{blk: cfg.Entry}}

	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		succs := top.blk.Successors()
		if top.succIdx < len(succs) {
			next := succs[top.succIdx]
			top.succIdx++
			if next == ignore || black[next] {
				continue
			}
			black[next] = true
			stack = append(stack, frame{blk: next})
			continue
		}
		postorder = append(postorder, top.blk)
		stack = stack[:len(stack)-1]
	}

	rpo := make([]*ir.BasicBlock, len(postorder))
	for i, blk := range postorder {
		rpo[len(postorder)-1-i] = blk
	}
	return rpo
}

// Reachable returns the set of blocks reachable from cfg.Entry, optionally
// with ignore treated as removed from the graph. Used by dominator
// construction's "does removing this block disconnect X" test.
func (cfg *ControlFlowGraph) Reachable(ignore *ir.BasicBlock) map[*ir.BasicBlock]bool {
	set := make(map[*ir.BasicBlock]bool)
	for _, blk := range cfg.ReversePostOrder(ignore) {
		set[blk] = true
	}
	return set
}

// Dominates reports whether a dominates b by walking b's Idom chain, which
// ComputeDominators must have already populated.
func Dominates(a, b *ir.BasicBlock) bool {
	for cur := b; cur != nil; cur = cur.Idom {
		if cur == a {
			return true
		}
	}
	return false
}
