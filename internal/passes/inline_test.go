package passes_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"ssair/internal/ir"
	"ssair/internal/passes"
)

// TestStaticInliningSingleReturnSplicesCallee reproduces the original
// source's static_inlining_pass.simple fixture: a one-block callee with no
// predecessors on its entry (Foo: `v0 = Mv ui64 0; Ret ui64 v0`) splices
// directly into the caller's call block, and its Ret becomes an Mv feeding
// the call's output Value.
func TestStaticInliningSingleReturnSplicesCallee(t *testing.T) {
	b := ir.NewBuilder()

	foo := b.NewFunction("Foo", ir.UInt64, nil, nil)
	fooBB := b.NewBlock("Foo_BB_1", foo)
	zero := b.GetOrCreateConst(ir.UInt64, 0)
	fooMv := b.NewMv(fooBB, ir.UInt64, zero)
	b.NewRet(fooBB, fooMv.Out)

	bar := b.NewFunction("Bar", ir.UInt64, nil, nil)
	barBB := b.NewBlock("Bar_BB_1", bar)
	call := b.NewCall(barBB, foo, nil, ir.UInt64)
	b.NewRet(barBB, call.Out)

	inline := passes.NewStaticInlining(passes.DefaultInlineThreshold)
	changed := inline.Apply(b, bar)
	require.True(t, changed)

	insts := barBB.Instructions()
	require.Len(t, insts, 3)

	require.Equal(t, ir.OpMv, insts[0].Op)
	require.True(t, insts[0].In[0].IsConst)
	require.Equal(t, uint64(0), insts[0].In[0].Payload)

	require.Equal(t, ir.OpMv, insts[1].Op)
	require.Equal(t, insts[0].Out, insts[1].In[0])

	require.Equal(t, ir.OpRet, insts[2].Op)
	require.Equal(t, insts[1].Out, insts[2].In[0])

	require.Len(t, bar.Blocks, 1)
}

// TestStaticInliningMultipleReturnsMergeWithPhi reproduces spec.md §8
// scenario 7: inlining a callee with two Ret blocks returning distinct
// constants produces a post-call block with a Phi merging them into the
// caller's output Value, preceded by the two ex-Ret Jumps.
func TestStaticInliningMultipleReturnsMergeWithPhi(t *testing.T) {
	b := ir.NewBuilder()

	callee := b.NewFunction("Choose", ir.Int32, []string{"c"}, []ir.Type{ir.Int32})
	c := callee.Params[0].Value
	entry := b.NewBlock("Choose_BB_1", callee)
	left := b.NewBlock("Choose_BB_2", callee)
	right := b.NewBlock("Choose_BB_3", callee)

	zero := b.GetOrCreateConst(ir.Int32, 0)
	ten := b.GetOrCreateConst(ir.Int32, ir.ConstFromInt64(ir.Int32, 10))
	twenty := b.GetOrCreateConst(ir.Int32, ir.ConstFromInt64(ir.Int32, 20))

	b.NewBranch(ir.OpBeq, entry, c, zero, left, right)
	b.NewRet(left, ten)
	b.NewRet(right, twenty)

	caller := b.NewFunction("Main", ir.Int32, nil, nil)
	callerBB := b.NewBlock("Main_BB_1", caller)
	arg := b.GetOrCreateConst(ir.Int32, ir.ConstFromInt64(ir.Int32, 1))
	call := b.NewCall(callerBB, callee, []*ir.Value{arg}, ir.Int32)
	b.NewRet(callerBB, call.Out)

	inline := passes.NewStaticInlining(passes.DefaultInlineThreshold)
	changed := inline.Apply(b, caller)
	require.True(t, changed)

	require.Len(t, caller.Blocks, 4)

	// The callee itself is left intact; its cloned blocks now live in caller.
	var inlinedLeft, inlinedRight *ir.BasicBlock
	for _, blk := range caller.Blocks {
		switch blk.Label {
		case left.Label:
			inlinedLeft = blk
		case right.Label:
			inlinedRight = blk
		}
	}
	require.NotNil(t, inlinedLeft)
	require.NotNil(t, inlinedRight)

	leftTerm := inlinedLeft.Terminator()
	require.Equal(t, ir.OpJump, leftTerm.Op)
	rightTerm := inlinedRight.Terminator()
	require.Equal(t, ir.OpJump, rightTerm.Op)
	require.Equal(t, leftTerm.TrueTarget, rightTerm.TrueTarget)

	post := leftTerm.TrueTarget
	require.NotNil(t, post)
	phis := post.Phis()
	require.Len(t, phis, 1)
	phi := phis[0]
	require.Equal(t, call.Out, phi.Out)
	require.ElementsMatch(t, []*ir.Value{ten, twenty}, phi.PhiInputs)

	term := post.Terminator()
	require.Equal(t, ir.OpRet, term.Op)
	require.Equal(t, phi.Out, term.In[0])
}

// TestStaticInliningSkipsCalleesAboveThreshold ensures a callee larger
// than the threshold is left uninlined.
func TestStaticInliningSkipsCalleesAboveThreshold(t *testing.T) {
	b := ir.NewBuilder()

	big := b.NewFunction("Big", ir.Int32, nil, nil)
	bigBB := b.NewBlock("Big_BB_1", big)
	acc := b.GetOrCreateConst(ir.Int32, 0)
	for i := 0; i < 12; i++ {
		one := b.GetOrCreateConst(ir.Int32, ir.ConstFromInt64(ir.Int32, 1))
		add := b.NewArith(ir.OpAdd, bigBB, ir.Int32, acc, one)
		acc = add.Out
	}
	b.NewRet(bigBB, acc)

	caller := b.NewFunction("Main", ir.Int32, nil, nil)
	callerBB := b.NewBlock("Main_BB_1", caller)
	call := b.NewCall(callerBB, big, nil, ir.Int32)
	b.NewRet(callerBB, call.Out)

	inline := passes.NewStaticInlining(1)
	changed := inline.Apply(b, caller)
	require.False(t, changed)

	insts := callerBB.Instructions()
	require.Equal(t, ir.OpCall, insts[0].Op)
}

// TestStaticInliningSkipsSelfRecursion confirms the in-progress marker
// prevents infinite recursive inlining of a self-recursive callee.
func TestStaticInliningSkipsSelfRecursion(t *testing.T) {
	b := ir.NewBuilder()

	fn := b.NewFunction("Rec", ir.Int32, []string{"n"}, []ir.Type{ir.Int32})
	n := fn.Params[0].Value
	blk := b.NewBlock("Rec_BB_1", fn)
	call := b.NewCall(blk, fn, []*ir.Value{n}, ir.Int32)
	b.NewRet(blk, call.Out)

	inline := passes.NewStaticInlining(passes.DefaultInlineThreshold)
	require.NotPanics(t, func() {
		inline.Apply(b, fn)
	})

	insts := blk.Instructions()
	require.Equal(t, ir.OpCall, insts[0].Op)
}
