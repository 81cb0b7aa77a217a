package passes

import (
	"ssair/internal/cfg"
	"ssair/internal/ir"
)

// CheckElimination implements dominance-ordered NullCheck/BoundsCheck
// deduplication: walking the function in
// reverse-post-order, every check whose pointer (and, for BoundsCheck, base
// pointer) matches an earlier check it is dominated by is redundant and is
// removed.
type CheckElimination struct{}

func (p *CheckElimination) Name() string { return "check-elimination" }

func (p *CheckElimination) Description() string {
	return "remove NullCheck/BoundsCheck instructions dominated by an earlier equivalent check"
}

func (p *CheckElimination) Apply(b *ir.Builder, fn *ir.Function) bool {
	graph := cfg.Build(fn)
	cfg.ComputeDominators(graph)
	order := graph.ReversePostOrder(nil)

	changed := false
	changed = eliminateDuplicates(b, order, isNullCheck, sameNullCheckKey) || changed
	changed = eliminateDuplicates(b, order, isBoundsCheck, sameBoundsCheckKey) || changed
	return changed
}

func isNullCheck(inst *ir.Instruction) bool    { return inst.Op == ir.OpNullCheck }
func isBoundsCheck(inst *ir.Instruction) bool  { return inst.Op == ir.OpBoundsCheck }
func sameNullCheckKey(a, b *ir.Instruction) bool {
	return a.In[0] == b.In[0]
}
func sameBoundsCheckKey(a, b *ir.Instruction) bool {
	return a.In[0] == b.In[0] && a.In[1] == b.In[1]
}

// eliminateDuplicates walks order (block-level reverse-post-order) and,
// within it, every block's instructions head-to-tail — a traversal in
// which an instruction that dominates another (their parents are equal
// and the current one appears earlier, or the current one's parent
// dominates the other's parent) always precedes it. For each matching
// pair it removes the later, dominated instruction.
func eliminateDuplicates(b *ir.Builder, order []*ir.BasicBlock, match func(*ir.Instruction) bool, sameKey func(a, bb *ir.Instruction) bool) bool {
	var seq []*ir.Instruction
	for _, blk := range order {
		for inst := blk.Head; inst != nil; inst = inst.Next {
			if match(inst) {
				seq = append(seq, inst)
			}
		}
	}

	removed := make(map[*ir.Instruction]bool, len(seq))
	changed := false
	for i, cur := range seq {
		if removed[cur] {
			continue
		}
		for j := i + 1; j < len(seq); j++ {
			other := seq[j]
			if removed[other] || !sameKey(cur, other) {
				continue
			}
			if instDominates(cur, other) {
				b.RemoveInstruction(other)
				removed[other] = true
				changed = true
			}
		}
	}
	return changed
}

// instDominates reports whether cur dominates other, given that cur
// precedes other in the block-RPO-then-in-block-order traversal
// eliminateDuplicates builds seq from: same block means cur is earlier by
// construction; otherwise fall back to block dominance.
func instDominates(cur, other *ir.Instruction) bool {
	if cur.Block == other.Block {
		return true
	}
	return cfg.Dominates(cur.Block, other.Block)
}
