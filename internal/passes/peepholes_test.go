package passes_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"ssair/internal/ir"
	"ssair/internal/passes"
)

// TestPeepholesAddSelfBecomesShl reproduces spec.md §8 scenario 2: `v1 =
// Add ui64 v0, v0` becomes `v1 = Shl ui64 v0, 1`.
func TestPeepholesAddSelfBecomesShl(t *testing.T) {
	b := ir.NewBuilder()
	fn := b.NewFunction("scenario2", ir.UInt64, nil, nil)
	blk := b.NewBlock("BB_1", fn)

	c2718 := b.GetOrCreateConst(ir.UInt64, 2718)
	mv0 := b.NewMv(blk, ir.UInt64, c2718)
	add := b.NewArith(ir.OpAdd, blk, ir.UInt64, mv0.Out, mv0.Out)
	b.NewRet(blk, add.Out)

	pp := &passes.Peepholes{}
	changed := pp.Apply(b, fn)
	require.True(t, changed)

	require.Equal(t, ir.OpShl, add.Op)
	require.Equal(t, mv0.Out, add.In[0])
	require.NotNil(t, add.In[1])
	require.True(t, add.In[1].IsConst)
	require.Equal(t, uint64(1), add.In[1].Payload)
}

func TestPeepholesAddZeroBecomesMv(t *testing.T) {
	b := ir.NewBuilder()
	fn := b.NewFunction("addzero", ir.Int32, []string{"x"}, []ir.Type{ir.Int32})
	x := fn.Params[0].Value
	blk := b.NewBlock("BB_1", fn)

	zero := b.GetOrCreateConst(ir.Int32, 0)
	add := b.NewArith(ir.OpAdd, blk, ir.Int32, x, zero)
	b.NewRet(blk, add.Out)

	pp := &passes.Peepholes{}
	require.True(t, pp.Apply(b, fn))

	require.Equal(t, ir.OpMv, add.Op)
	require.Equal(t, x, add.In[0])
}

func TestPeepholesAndZeroAndAndSelf(t *testing.T) {
	b := ir.NewBuilder()
	fn := b.NewFunction("ands", ir.UInt32, []string{"x"}, []ir.Type{ir.UInt32})
	x := fn.Params[0].Value
	blk := b.NewBlock("BB_1", fn)

	zero := b.GetOrCreateConst(ir.UInt32, 0)
	andZero := b.NewArith(ir.OpAnd, blk, ir.UInt32, x, zero)
	andSelf := b.NewArith(ir.OpAnd, blk, ir.UInt32, x, x)
	b.NewRet(blk, andSelf.Out)

	pp := &passes.Peepholes{}
	require.True(t, pp.Apply(b, fn))

	require.Equal(t, ir.OpMv, andZero.Op)
	require.True(t, andZero.In[0].IsConst)
	require.Equal(t, uint64(0), andZero.In[0].Payload)

	require.Equal(t, ir.OpMv, andSelf.Op)
	require.Equal(t, x, andSelf.In[0])
}

func TestPeepholesAshrZeroBecomesMv(t *testing.T) {
	b := ir.NewBuilder()
	fn := b.NewFunction("ashrzero", ir.Int64, []string{"x"}, []ir.Type{ir.Int64})
	x := fn.Params[0].Value
	blk := b.NewBlock("BB_1", fn)

	zero := b.GetOrCreateConst(ir.Int64, 0)
	ashr := b.NewArith(ir.OpAshr, blk, ir.Int64, x, zero)
	b.NewRet(blk, ashr.Out)

	pp := &passes.Peepholes{}
	require.True(t, pp.Apply(b, fn))
	require.Equal(t, ir.OpMv, ashr.Op)
	require.Equal(t, x, ashr.In[0])
}

// TestPeepholesAshrShlCollapsesToMask reproduces the original source's
// PeepholesPass.cpp header comment: Ashr i64 v1, n then Shl i64 v2, n (v2
// being the Ashr's output) collapses into a single And against the
// complement of the low-n-bits mask, dropping the Ashr.
func TestPeepholesAshrShlCollapsesToMask(t *testing.T) {
	b := ir.NewBuilder()
	fn := b.NewFunction("mask", ir.Int64, []string{"x"}, []ir.Type{ir.Int64})
	x := fn.Params[0].Value
	blk := b.NewBlock("BB_1", fn)

	four := b.GetOrCreateConst(ir.Int64, ir.ConstFromInt64(ir.Int64, 4))
	ashr := b.NewArith(ir.OpAshr, blk, ir.Int64, x, four)
	shl := b.NewArith(ir.OpShl, blk, ir.Int64, ashr.Out, four)
	b.NewRet(blk, shl.Out)

	pp := &passes.Peepholes{}
	require.True(t, pp.Apply(b, fn))

	require.Equal(t, ir.OpAnd, shl.Op)
	require.Equal(t, x, shl.In[0])
	require.True(t, shl.In[1].IsConst)
	require.Equal(t, ^(uint64(1)<<4-1), shl.In[1].Payload)

	insts := blk.Instructions()
	for _, inst := range insts {
		require.NotEqual(t, ir.OpAshr, inst.Op)
	}
}

func TestPeepholesAshrShlWideShiftCollapsesToZero(t *testing.T) {
	b := ir.NewBuilder()
	fn := b.NewFunction("maskwide", ir.Int32, []string{"x"}, []ir.Type{ir.Int32})
	x := fn.Params[0].Value
	blk := b.NewBlock("BB_1", fn)

	wide := b.GetOrCreateConst(ir.Int32, ir.ConstFromInt64(ir.Int32, 32))
	ashr := b.NewArith(ir.OpAshr, blk, ir.Int32, x, wide)
	shl := b.NewArith(ir.OpShl, blk, ir.Int32, ashr.Out, wide)
	b.NewRet(blk, shl.Out)

	pp := &passes.Peepholes{}
	require.True(t, pp.Apply(b, fn))

	require.Equal(t, ir.OpMv, shl.Op)
	require.True(t, shl.In[0].IsConst)
	require.Equal(t, uint64(0), shl.In[0].Payload)
}
