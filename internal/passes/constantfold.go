package passes

import (
	"math"

	"ssair/internal/ir"
)

// ConstantFolding implements the constant-folding pass: fold arithmetic
// with two constant operands to an Mv, propagate an Mv's constant input
// into every non-Phi user, and delete Mv instructions once their last
// user has absorbed the constant. A single Apply call iterates to a fixed
// point (folding twice is equivalent to folding once), via a
// worklist-free repeat-until-stable sweep rather than recursing into each
// newly created folding candidate.
type ConstantFolding struct{}

func (p *ConstantFolding) Name() string { return "constant-folding" }

func (p *ConstantFolding) Description() string {
	return "fold constant arithmetic and propagate through Mv chains"
}

func (p *ConstantFolding) Apply(b *ir.Builder, fn *ir.Function) bool {
	changed := false
	for {
		if !p.sweep(b, fn) {
			break
		}
		changed = true
	}
	return changed
}

func (p *ConstantFolding) sweep(b *ir.Builder, fn *ir.Function) bool {
	changed := false
	for _, blk := range fn.Blocks {
		insts := blk.Instructions()
		for _, inst := range insts {
			if inst.Op.IsArithmetic() && inst.In[0] != nil && inst.In[1] != nil &&
				inst.In[0].IsConst && inst.In[1].IsConst {
				if bits, ok := evalArithmetic(inst.Op, inst.Out.Typ, inst.In[0], inst.In[1]); ok {
					constVal := b.GetOrCreateConst(inst.Out.Typ, bits)
					b.SetOperands(inst, ir.OpMv, constVal, nil)
					changed = true
				}
			}
		}

		// Re-snapshot: the loop above may have turned arithmetic
		// instructions into Mv instructions this same sweep.
		insts = blk.Instructions()
		for _, inst := range insts {
			if inst.Op != ir.OpMv || inst.In[0] == nil || !inst.In[0].IsConst {
				continue
			}
			constVal := inst.In[0]
			users := append([]*ir.Instruction(nil), inst.Out.Users...)
			for _, u := range users {
				if u.IsPhi() {
					continue
				}
				if b.ReplaceOperand(u, inst.Out, constVal) {
					changed = true
				}
			}
			if len(inst.Out.Users) == 0 {
				b.RemoveInstruction(inst)
				changed = true
			}
		}
	}
	return changed
}

// evalArithmetic computes the constant result of applying op (in typ's
// declared semantics) to a and b, returning ok=false when the operation
// must not fold: Div/Rem by zero is left unfolded rather than given a
// fabricated trapping result.
func evalArithmetic(op ir.Opcode, typ ir.Type, a, b *ir.Value) (uint64, bool) {
	if typ.IsFloat() {
		return evalFloatArithmetic(op, typ, a, b)
	}
	return evalIntArithmetic(op, typ, a, b)
}

func evalFloatArithmetic(op ir.Opcode, typ ir.Type, a, b *ir.Value) (uint64, bool) {
	switch op {
	case ir.OpAdd, ir.OpSub, ir.OpMul, ir.OpDiv:
		// fall through to the arithmetic below
	default:
		// Rem/And/Or/Xor/Shl are integer-only, so applying them to float
		// types returns zero — extended here to Shr/Ashr, which are equally
		// integer-only bitwise operations.
		return 0, true
	}

	if typ == ir.Float32 {
		af := math.Float32frombits(uint32(a.Payload))
		bf := math.Float32frombits(uint32(b.Payload))
		var rf float32
		switch op {
		case ir.OpAdd:
			rf = af + bf
		case ir.OpSub:
			rf = af - bf
		case ir.OpMul:
			rf = af * bf
		case ir.OpDiv:
			rf = af / bf
		}
		return uint64(math.Float32bits(rf)), true
	}

	ad := math.Float64frombits(a.Payload)
	bd := math.Float64frombits(b.Payload)
	var rd float64
	switch op {
	case ir.OpAdd:
		rd = ad + bd
	case ir.OpSub:
		rd = ad - bd
	case ir.OpMul:
		rd = ad * bd
	case ir.OpDiv:
		rd = ad / bd
	}
	return math.Float64bits(rd), true
}

func evalIntArithmetic(op ir.Opcode, typ ir.Type, a, b *ir.Value) (uint64, bool) {
	width := typ.BitWidth()
	if width == 0 {
		width = 64
	}

	switch op {
	case ir.OpAdd:
		return ir.ConstFromUint64(typ, a.Payload+b.Payload), true
	case ir.OpSub:
		return ir.ConstFromUint64(typ, a.Payload-b.Payload), true
	case ir.OpMul:
		return ir.ConstFromUint64(typ, a.Payload*b.Payload), true
	case ir.OpDiv:
		if typ.IsSigned() {
			bv := b.AsInt64()
			if bv == 0 {
				return 0, false
			}
			return ir.ConstFromInt64(typ, a.AsInt64()/bv), true
		}
		bv := b.AsUint64()
		if bv == 0 {
			return 0, false
		}
		return ir.ConstFromUint64(typ, a.AsUint64()/bv), true
	case ir.OpRem:
		if typ.IsSigned() {
			bv := b.AsInt64()
			if bv == 0 {
				return 0, false
			}
			return ir.ConstFromInt64(typ, a.AsInt64()%bv), true
		}
		bv := b.AsUint64()
		if bv == 0 {
			return 0, false
		}
		return ir.ConstFromUint64(typ, a.AsUint64()%bv), true
	case ir.OpAnd:
		return ir.ConstFromUint64(typ, a.Payload&b.Payload), true
	case ir.OpOr:
		return ir.ConstFromUint64(typ, a.Payload|b.Payload), true
	case ir.OpXor:
		return ir.ConstFromUint64(typ, a.Payload^b.Payload), true
	case ir.OpShl:
		shift := b.AsUint64()
		if shift >= uint64(width) {
			return 0, true
		}
		return ir.ConstFromUint64(typ, a.Payload<<uint(shift)), true
	case ir.OpShr:
		shift := b.AsUint64()
		if shift >= uint64(width) {
			return 0, true
		}
		return ir.ConstFromUint64(typ, a.AsUint64()>>uint(shift)), true
	case ir.OpAshr:
		shift := b.AsUint64()
		av := a.AsInt64()
		if shift >= uint64(width) {
			if av < 0 {
				return ir.ConstFromInt64(typ, -1), true
			}
			return 0, true
		}
		return ir.ConstFromInt64(typ, av>>uint(shift)), true
	default:
		return 0, false
	}
}
