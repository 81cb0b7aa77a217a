package ir

// allocInstr assigns a fresh ID and registers inst in the arena, then — if
// block is non-nil — appends it to block's tail. This is the common first
// step of every opcode constructor: every constructor optionally takes a
// parent block and/or operands, and when both are present the builder
// atomically wires everything up.
func (b *Builder) allocInstr(op Opcode, block *BasicBlock) *Instruction {
	inst := &Instruction{ID: b.nextInstrID, Op: op}
	b.nextInstrID++
	b.instrs[inst.ID] = inst
	if block != nil {
		block.append(inst)
	}
	return inst
}

func wireOperand(inst *Instruction, v *Value) {
	if v != nil {
		v.AddUser(inst)
	}
}

func wireOutput(inst *Instruction, out *Value) {
	if out != nil {
		out.Producer = inst
	}
}

func wireEdge(block, target *BasicBlock) {
	if block == nil || target == nil {
		return
	}
	target.addPredecessor(block)
}

// NewArith creates an Add/Sub/Mul/Div/Rem/And/Or/Xor/Shl/Shr/Ashr
// instruction with two inputs and a freshly allocated output of outType.
func (b *Builder) NewArith(op Opcode, block *BasicBlock, outType Type, lhs, rhs *Value) *Instruction {
	inst := b.allocInstr(op, block)
	inst.In[0], inst.In[1] = lhs, rhs
	wireOperand(inst, lhs)
	wireOperand(inst, rhs)
	inst.Out = b.NewValue(outType)
	wireOutput(inst, inst.Out)
	return inst
}

// NewMv creates an Mv (move/copy) instruction: one input, one output.
func (b *Builder) NewMv(block *BasicBlock, outType Type, src *Value) *Instruction {
	inst := b.allocInstr(OpMv, block)
	inst.In[0] = src
	wireOperand(inst, src)
	inst.Out = b.NewValue(outType)
	wireOutput(inst, inst.Out)
	return inst
}

// NewLoad creates a Load instruction: pointer input, freshly allocated
// output of outType.
func (b *Builder) NewLoad(block *BasicBlock, ptr *Value, outType Type) *Instruction {
	inst := b.allocInstr(OpLoad, block)
	inst.In[0] = ptr
	wireOperand(inst, ptr)
	inst.Out = b.NewValue(outType)
	wireOutput(inst, inst.Out)
	return inst
}

// NewStore creates a Store instruction: pointer input + value input, no
// output.
func (b *Builder) NewStore(block *BasicBlock, ptr, val *Value) *Instruction {
	inst := b.allocInstr(OpStore, block)
	inst.In[0], inst.In[1] = ptr, val
	wireOperand(inst, ptr)
	wireOperand(inst, val)
	return inst
}

// NewJump creates a Jump terminator and installs the CFG edge from block
// to target: sets block.TrueSucc and adds block to target's predecessors.
func (b *Builder) NewJump(block *BasicBlock, target *BasicBlock) *Instruction {
	inst := b.allocInstr(OpJump, block)
	inst.TrueTarget = target
	if block != nil {
		block.TrueSucc = target
	}
	wireEdge(block, target)
	return inst
}

// NewBranch creates one of the six conditional-branch opcodes
// (Beq/Bne/Bgt/Blt/Bge/Ble), installing both CFG edges.
func (b *Builder) NewBranch(op Opcode, block *BasicBlock, lhs, rhs *Value, trueTarget, falseTarget *BasicBlock) *Instruction {
	inst := b.allocInstr(op, block)
	inst.In[0], inst.In[1] = lhs, rhs
	wireOperand(inst, lhs)
	wireOperand(inst, rhs)
	inst.TrueTarget, inst.FalseTarget = trueTarget, falseTarget
	if block != nil {
		block.TrueSucc, block.FalseSucc = trueTarget, falseTarget
	}
	wireEdge(block, trueTarget)
	wireEdge(block, falseTarget)
	return inst
}

// NewCall creates a Call instruction. retType of Void means the call has
// no output Value.
func (b *Builder) NewCall(block *BasicBlock, callee *Function, args []*Value, retType Type) *Instruction {
	inst := b.allocInstr(OpCall, block)
	inst.Callee = callee
	inst.Args = append([]*Value(nil), args...)
	for _, a := range inst.Args {
		wireOperand(inst, a)
	}
	if retType != Void {
		inst.Out = b.NewValue(retType)
		wireOutput(inst, inst.Out)
	}
	return inst
}

// NewRet creates a Ret terminator. val may be nil for a void return.
func (b *Builder) NewRet(block *BasicBlock, val *Value) *Instruction {
	inst := b.allocInstr(OpRet, block)
	inst.In[0] = val
	wireOperand(inst, val)
	return inst
}

// NewAlloc creates an Alloc instruction: a freshly allocated Pointer-typed
// output, an element type and an element count (count should be >= 1;
// this constructor does not clamp it — validity is checked separately via
// IsValid, since construction silently returns a partially-initialized
// node rather than rejecting bad input).
func (b *Builder) NewAlloc(block *BasicBlock, elemType Type, count int64) *Instruction {
	inst := b.allocInstr(OpAlloc, block)
	inst.AllocElemType = elemType
	inst.AllocCount = count
	inst.Out = b.NewValue(Pointer)
	wireOutput(inst, inst.Out)
	return inst
}

// NewPhi creates a Phi instruction with a freshly allocated output of
// outType and one input slot per block.Predecessors (in that order, all
// initially nil). Use SetPhiInput to fill them in as predecessors are
// wired, a caller-driven incomplete-phi style rather than variable-stack
// SSA construction.
func (b *Builder) NewPhi(block *BasicBlock, outType Type) *Instruction {
	inst := b.allocInstr(OpPhi, block)
	if block != nil {
		inst.PhiInputs = make([]*Value, len(block.Predecessors))
	}
	inst.Out = b.NewValue(outType)
	wireOutput(inst, inst.Out)
	return inst
}

// SetPhiInput sets phi's input value for the given predecessor index,
// growing PhiInputs if needed, and wires the use/def link.
func (b *Builder) SetPhiInput(phi *Instruction, index int, v *Value) {
	if phi.Op != OpPhi {
		return
	}
	for len(phi.PhiInputs) <= index {
		phi.PhiInputs = append(phi.PhiInputs, nil)
	}
	if old := phi.PhiInputs[index]; old != nil {
		old.RemoveUser(phi)
	}
	phi.PhiInputs[index] = v
	wireOperand(phi, v)
}

// NewNullCheck creates a NullCheck instruction: one pointer input, no
// output.
func (b *Builder) NewNullCheck(block *BasicBlock, ptr *Value) *Instruction {
	inst := b.allocInstr(OpNullCheck, block)
	inst.In[0] = ptr
	wireOperand(inst, ptr)
	return inst
}

// NewBoundsCheck creates a BoundsCheck instruction: pointer input + array
// base pointer input, no output.
func (b *Builder) NewBoundsCheck(block *BasicBlock, ptr, base *Value) *Instruction {
	inst := b.allocInstr(OpBoundsCheck, block)
	inst.In[0], inst.In[1] = ptr, base
	wireOperand(inst, ptr)
	wireOperand(inst, base)
	return inst
}
