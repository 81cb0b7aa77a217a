package passes

import "ssair/internal/ir"

// Peepholes implements a single-block pattern table of local algebraic
// rewrites. Five of the seven rows rewrite one instruction in place; the
// two Ashr/Shl rows span two instructions (an Ashr feeding a Shl by the
// same amount) and are handled separately by collapseShiftMask.
//
// The "Ashr T v2, n; Shl T v2, n" row names both instructions' shift
// operand v2, which cannot be literal (the Shl's shifted operand must be
// the Ashr's *output*, not its input, or the pattern never fires) — read
// as the Ashr's output feeding the Shl's input, with "and drop the Shl"
// describing that the Shl instruction is the one rewritten in place (its
// Out identity is what the rest of the function already references), and
// the now-unused Ashr is removed once it has no other users.
type Peepholes struct{}

func (p *Peepholes) Name() string { return "peepholes" }

func (p *Peepholes) Description() string {
	return "local single- and double-instruction simplifications"
}

func (p *Peepholes) Apply(b *ir.Builder, fn *ir.Function) bool {
	changed := false
	for {
		if !p.sweep(b, fn) {
			break
		}
		changed = true
	}
	return changed
}

func (p *Peepholes) sweep(b *ir.Builder, fn *ir.Function) bool {
	changed := false
	for _, blk := range fn.Blocks {
		for _, inst := range blk.Instructions() {
			if p.rewriteSingle(b, inst) {
				changed = true
			}
		}
	}
	for _, blk := range fn.Blocks {
		for _, inst := range blk.Instructions() {
			if collapseShiftMask(b, inst) {
				changed = true
			}
		}
	}
	return changed
}

// rewriteSingle applies the five single-instruction rows.
func (p *Peepholes) rewriteSingle(b *ir.Builder, inst *ir.Instruction) bool {
	switch inst.Op {
	case ir.OpAdd:
		if isZeroConst(inst.In[1]) {
			b.SetOperands(inst, ir.OpMv, inst.In[0], nil)
			return true
		}
		if inst.In[0] == inst.In[1] && inst.Out.Typ.IsInteger() {
			one := b.GetOrCreateConst(inst.Out.Typ, ir.ConstFromInt64(inst.Out.Typ, 1))
			b.SetOperands(inst, ir.OpShl, inst.In[0], one)
			return true
		}
	case ir.OpAshr:
		if isZeroConst(inst.In[1]) {
			b.SetOperands(inst, ir.OpMv, inst.In[0], nil)
			return true
		}
	case ir.OpAnd:
		if isZeroConst(inst.In[1]) {
			zero := b.GetOrCreateConst(inst.Out.Typ, 0)
			b.SetOperands(inst, ir.OpMv, zero, nil)
			return true
		}
		if inst.In[0] == inst.In[1] {
			b.SetOperands(inst, ir.OpMv, inst.In[0], nil)
			return true
		}
	}
	return false
}

// collapseShiftMask handles the Ashr-then-Shl-by-the-same-amount row. inst
// must be the Shl; it is rewritten in place into either an And against the
// complement of the low-n-bits mask (n < bitwidth) or an Mv of zero (n >=
// bitwidth), and the feeding Ashr is removed once it has no other users.
func collapseShiftMask(b *ir.Builder, inst *ir.Instruction) bool {
	if inst.Op != ir.OpShl {
		return false
	}
	shifted := inst.In[0]
	amount := inst.In[1]
	if shifted == nil || amount == nil || !amount.IsConst || !shifted.HasProducer() {
		return false
	}
	ashr := shifted.Producer
	if ashr.Op != ir.OpAshr || ashr.In[1] == nil || !ashr.In[1].IsConst {
		return false
	}
	if ashr.In[1].Typ != amount.Typ || ashr.In[1].Payload != amount.Payload {
		return false
	}
	typ := inst.Out.Typ
	width := uint64(typ.BitWidth())
	n := amount.AsUint64()

	if n < width {
		mask := ^(uint64(1)<<uint(n) - 1)
		maskConst := b.GetOrCreateConst(typ, ir.ConstFromUint64(typ, mask))
		b.SetOperands(inst, ir.OpAnd, ashr.In[0], maskConst)
	} else {
		zero := b.GetOrCreateConst(typ, 0)
		b.SetOperands(inst, ir.OpMv, zero, nil)
	}

	if len(ashr.Out.Users) == 0 {
		b.RemoveInstruction(ashr)
	}
	return true
}

func isZeroConst(v *ir.Value) bool {
	return v != nil && v.IsConst && v.Payload == 0
}
