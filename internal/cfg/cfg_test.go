package cfg_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"ssair/internal/cfg"
	"ssair/internal/ir"
)

// buildDiamond builds entry -> (left, right) -> join -> ret, the textbook
// shape used throughout spec.md §4.2's worked examples.
func buildDiamond(b *ir.Builder) *ir.Function {
	fn := b.NewFunction("diamond", ir.Int32, []string{"c"}, []ir.Type{ir.Int32})
	entry := b.NewBlock("entry", fn)
	left := b.NewBlock("left", fn)
	right := b.NewBlock("right", fn)
	join := b.NewBlock("join", fn)

	zero := b.GetOrCreateConst(ir.Int32, 0)
	b.NewBranch(ir.OpBeq, entry, fn.Params[0].Value, zero, left, right)
	b.NewJump(left, join)
	b.NewJump(right, join)
	b.NewRet(join, zero)
	return fn
}

func TestReversePostOrderVisitsEveryReachableBlockOnce(t *testing.T) {
	b := ir.NewBuilder()
	fn := buildDiamond(b)
	graph := cfg.Build(fn)

	rpo := graph.ReversePostOrder(nil)
	require.Len(t, rpo, 4)
	require.Equal(t, fn.Entry, rpo[0])

	seen := make(map[*ir.BasicBlock]bool)
	for _, blk := range rpo {
		require.False(t, seen[blk], "block visited twice")
		seen[blk] = true
	}
}

func TestReversePostOrderCanIgnoreABlock(t *testing.T) {
	b := ir.NewBuilder()
	fn := buildDiamond(b)
	graph := cfg.Build(fn)

	var left *ir.BasicBlock
	for _, blk := range fn.Blocks {
		if blk.Label == "left" {
			left = blk
		}
	}
	require.NotNil(t, left)

	rpo := graph.ReversePostOrder(left)
	for _, blk := range rpo {
		require.NotEqual(t, left, blk)
	}
	require.Len(t, rpo, 3)
}

func TestComputeDominatorsDiamondShape(t *testing.T) {
	b := ir.NewBuilder()
	fn := buildDiamond(b)
	graph := cfg.Build(fn)
	cfg.ComputeDominators(graph)

	var left, right, join *ir.BasicBlock
	for _, blk := range fn.Blocks {
		switch blk.Label {
		case "left":
			left = blk
		case "right":
			right = blk
		case "join":
			join = blk
		}
	}

	require.Nil(t, fn.Entry.Idom)
	require.Equal(t, fn.Entry, left.Idom)
	require.Equal(t, fn.Entry, right.Idom)
	require.Equal(t, fn.Entry, join.Idom, "join is dominated by entry, not by left or right")

	require.True(t, cfg.Dominates(fn.Entry, join))
	require.False(t, cfg.Dominates(left, join))
	require.False(t, cfg.Dominates(right, join))
}

func TestComputeDominatorsLinearChain(t *testing.T) {
	b := ir.NewBuilder()
	fn := b.NewFunction("chain", ir.Void, nil, nil)
	a := b.NewBlock("a", fn)
	c := b.NewBlock("c", fn)
	d := b.NewBlock("d", fn)
	b.NewJump(a, c)
	b.NewJump(c, d)
	b.NewRet(d, nil)

	graph := cfg.Build(fn)
	cfg.ComputeDominators(graph)

	require.True(t, cfg.Dominates(a, d))
	require.True(t, cfg.Dominates(c, d))
	require.Equal(t, c, d.Idom)
	require.Equal(t, a, c.Idom)
}
