package ir

// IsValid family of predicates checks the well-formedness invariants each
// node kind must satisfy, one rule per concrete kind rather than a single
// generic check. Builder never calls these itself — construction silently
// produces a partially-initialized node rather than rejecting bad input,
// so validity is a caller-invoked check, not an invariant the arena
// enforces eagerly.

// IsValid reports whether v is well-formed: a value is either a
// constant, an argument, or the output of exactly one instruction, never
// more than one of those at once, and never typed Unknown.
func (v *Value) IsValid() bool {
	if v.Typ == Unknown {
		return false
	}
	if v.IsConst && v.IsArg {
		return false
	}
	if v.HasProducer() {
		return v.Producer != nil
	}
	return v.Producer == nil
}

// IsValid reports whether inst's operand and output shape matches what
// its Op requires, per its payload table.
func (inst *Instruction) IsValid() bool {
	switch inst.Op {
	case OpAdd, OpSub, OpMul, OpDiv, OpRem, OpAnd, OpOr, OpXor, OpShl, OpShr, OpAshr:
		return inst.In[0] != nil && inst.In[1] != nil && inst.Out != nil &&
			inst.In[0].Typ == inst.In[1].Typ && inst.Out.Typ == inst.In[0].Typ

	case OpMv:
		return inst.In[0] != nil && inst.Out != nil && inst.In[0].Typ == inst.Out.Typ

	case OpLoad:
		return inst.In[0] != nil && inst.In[0].Typ == Pointer && inst.Out != nil

	case OpStore:
		return inst.In[0] != nil && inst.In[0].Typ == Pointer && inst.In[1] != nil

	case OpJump:
		return inst.TrueTarget != nil

	case OpBeq, OpBne, OpBgt, OpBlt, OpBge, OpBle:
		return inst.In[0] != nil && inst.In[1] != nil && inst.In[0].Typ == inst.In[1].Typ &&
			inst.TrueTarget != nil && inst.FalseTarget != nil

	case OpCall:
		if inst.Callee == nil || len(inst.Args) != len(inst.Callee.Params) {
			return false
		}
		for i, a := range inst.Args {
			if a == nil || a.Typ != inst.Callee.Params[i].Typ {
				return false
			}
		}
		if inst.Callee.ReturnType == Void {
			return inst.Out == nil
		}
		return inst.Out != nil && inst.Out.Typ == inst.Callee.ReturnType

	case OpRet:
		if inst.Block == nil || inst.Block.Parent == nil {
			return true
		}
		want := inst.Block.Parent.ReturnType
		if want == Void {
			return inst.In[0] == nil
		}
		return inst.In[0] != nil && inst.In[0].Typ == want

	case OpAlloc:
		return inst.Out != nil && inst.Out.Typ == Pointer && inst.AllocCount >= 1

	case OpPhi:
		if inst.Out == nil || inst.Block == nil {
			return false
		}
		if len(inst.PhiInputs) < 2 || len(inst.PhiInputs) != len(inst.Block.Predecessors) {
			return false
		}
		for _, v := range inst.PhiInputs {
			if v == nil || v.Typ != inst.Out.Typ {
				return false
			}
		}
		return true

	case OpNullCheck:
		return inst.In[0] != nil && inst.In[0].Typ == Pointer

	case OpBoundsCheck:
		return inst.In[0] != nil && inst.In[1] != nil &&
			inst.In[0].Typ == Pointer && inst.In[1].Typ == Pointer

	default:
		return false
	}
}

// IsValid reports whether b ends in a terminator, every instruction
// reports itself valid, and Phis occupy a contiguous leading run: within
// a block, all Phis precede all non-Phis.
func (b *BasicBlock) IsValid() bool {
	if b.Terminator() == nil {
		return false
	}
	seenNonPhi := false
	for inst := b.Head; inst != nil; inst = inst.Next {
		if inst.IsPhi() {
			if seenNonPhi {
				return false
			}
		} else {
			seenNonPhi = true
		}
		if !inst.IsValid() {
			return false
		}
	}
	return true
}

// IsValid reports whether f has an entry block, every declared parameter
// is marked IsArg, and every owned block is individually valid.
func (f *Function) IsValid() bool {
	if f.Entry == nil {
		return false
	}
	for _, p := range f.Params {
		if p.Value == nil || !p.Value.IsArg {
			return false
		}
	}
	for _, blk := range f.Blocks {
		if !blk.IsValid() {
			return false
		}
	}
	return true
}
