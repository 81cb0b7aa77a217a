package loopnest_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"ssair/internal/cfg"
	"ssair/internal/ir"
	"ssair/internal/loopnest"
)

// buildTwoLoopCfg builds the nine-block CFG from spec.md §8 scenario 4:
// A->B; B->C,E; C->D; E->D,F; D->G; F->B,H; G->C,I; H->G,I. It is expected
// to produce two loops: header B reducible with latch F, header C
// irreducible with latch G.
func buildTwoLoopCfg(b *ir.Builder) (*ir.Function, map[string]*ir.BasicBlock) {
	fn := b.NewFunction("twoLoops", ir.Void, nil, nil)
	names := []string{"A", "B", "C", "D", "E", "F", "G", "H", "I"}
	blocks := make(map[string]*ir.BasicBlock, len(names))
	for _, n := range names {
		blocks[n] = b.NewBlock(n, fn)
	}
	zero := b.GetOrCreateConst(ir.Int32, 0)
	p := func(n string) *ir.BasicBlock { return blocks[n] }

	b.NewJump(p("A"), p("B"))
	b.NewBranch(ir.OpBeq, p("B"), zero, zero, p("C"), p("E"))
	b.NewJump(p("C"), p("D"))
	b.NewBranch(ir.OpBeq, p("E"), zero, zero, p("D"), p("F"))
	b.NewJump(p("D"), p("G"))
	b.NewBranch(ir.OpBeq, p("F"), zero, zero, p("B"), p("H"))
	b.NewBranch(ir.OpBeq, p("G"), zero, zero, p("C"), p("I"))
	b.NewBranch(ir.OpBeq, p("H"), zero, zero, p("G"), p("I"))
	b.NewRet(p("I"), nil)

	return fn, blocks
}

func TestLoopAnalyzerDetectsReducibleAndIrreducibleLoops(t *testing.T) {
	b := ir.NewBuilder()
	fn, blocks := buildTwoLoopCfg(b)
	graph := cfg.Build(fn)
	forest := loopnest.Build(graph)

	require.True(t, forest.HasIrreducibleLoops())

	loopB := forest.LoopOf(blocks["B"])
	require.NotNil(t, loopB)
	require.False(t, loopB.IsRoot)
	require.Equal(t, blocks["B"], loopB.Header)
	require.True(t, loopB.Reducible)
	require.True(t, loopB.IsLatch(blocks["F"]))

	loopC := forest.LoopOf(blocks["C"])
	require.NotNil(t, loopC)
	require.Equal(t, blocks["C"], loopC.Header)
	require.False(t, loopC.Reducible)
	require.True(t, loopC.IsLatch(blocks["G"]))

	require.NotEqual(t, loopB, loopC)
}

func TestLoopAnalyzerRootLoopCollectsUnownedBlocks(t *testing.T) {
	b := ir.NewBuilder()
	fn, blocks := buildTwoLoopCfg(b)
	graph := cfg.Build(fn)
	forest := loopnest.Build(graph)

	require.NotNil(t, forest.Root)
	require.True(t, forest.Root.IsRoot)
	require.Equal(t, forest.Root, forest.LoopOf(blocks["A"]), "A belongs to no discovered loop, so it is owned directly by root")
}

func TestLoopAnalyzerAcyclicFunctionHasNoLoops(t *testing.T) {
	b := ir.NewBuilder()
	fn := b.NewFunction("straight", ir.Void, nil, nil)
	a := b.NewBlock("a", fn)
	c := b.NewBlock("c", fn)
	b.NewJump(a, c)
	b.NewRet(c, nil)

	graph := cfg.Build(fn)
	forest := loopnest.Build(graph)

	require.False(t, forest.HasIrreducibleLoops())
	require.Equal(t, forest.Root, forest.LoopOf(a))
	require.Equal(t, forest.Root, forest.LoopOf(c))
}
