package ir

// Rewrite exposes the block-local instruction-list surgery the
// transformation passes need: swapping an instruction's opcode/operands in
// place, detaching/reinserting instructions, and moving whole blocks
// between functions. Kept separate from builder.go since these operations
// mutate existing nodes rather than allocate new ones.

// SetOperands replaces inst's Op and its two scalar inputs in place,
// preserving inst's identity and Out Value — used by ConstantFolding's
// fold-to-Mv step and by Peepholes, both of which rewrite an instruction
// without disturbing its position or its existing users.
func (b *Builder) SetOperands(inst *Instruction, op Opcode, in0, in1 *Value) {
	if inst.In[0] != nil {
		inst.In[0].RemoveUser(inst)
	}
	if inst.In[1] != nil {
		inst.In[1].RemoveUser(inst)
	}
	inst.Op = op
	inst.In[0], inst.In[1] = in0, in1
	wireOperand(inst, in0)
	wireOperand(inst, in1)
}

// ReplaceOperand rewrites every occurrence of old with repl among inst's
// scalar inputs, call arguments and Phi inputs, updating use/def links.
// Reports whether any occurrence was found.
func (b *Builder) ReplaceOperand(inst *Instruction, old, repl *Value) bool {
	found := false
	for i := range inst.In {
		if inst.In[i] == old {
			old.RemoveUser(inst)
			inst.In[i] = repl
			wireOperand(inst, repl)
			found = true
		}
	}
	for i := range inst.Args {
		if inst.Args[i] == old {
			old.RemoveUser(inst)
			inst.Args[i] = repl
			wireOperand(inst, repl)
			found = true
		}
	}
	for i := range inst.PhiInputs {
		if inst.PhiInputs[i] == old {
			old.RemoveUser(inst)
			inst.PhiInputs[i] = repl
			wireOperand(inst, repl)
			found = true
		}
	}
	return found
}

// DetachInstruction removes inst from its block's instruction list
// without releasing it from the arena — the block-local counterpart to
// RemoveInstruction, used mid-rewrite by StaticInlining to lift the
// caller's post-call fragment out of its block.
func (b *Builder) DetachInstruction(inst *Instruction) {
	if inst.Block != nil {
		inst.Block.detach(inst)
	}
}

// InsertInstructionBefore inserts inst immediately before mark in block
// (or appends it if mark is nil).
func (b *Builder) InsertInstructionBefore(block *BasicBlock, inst, mark *Instruction) {
	block.insertBefore(inst, mark)
}

// AppendInstruction appends inst to the tail of block's instruction list.
func (b *Builder) AppendInstruction(block *BasicBlock, inst *Instruction) {
	block.append(inst)
}

// AdoptBlocks reparents blocks (typically a cloned callee's blocks, fresh
// from CopyFunction) onto fn, appending them to fn.Blocks. The caller is
// responsible for leaving the blocks' former owner with an empty Blocks
// slice before releasing it, so RemoveFunction does not also try to
// release the adopted blocks.
func (b *Builder) AdoptBlocks(fn *Function, blocks []*BasicBlock) {
	for _, blk := range blocks {
		blk.Parent = fn
		fn.Blocks = append(fn.Blocks, blk)
	}
}

// AddEdge adds pred as a predecessor of blk (the successor pointer itself
// is set by the caller, mirroring NewJump/NewBranch's own wireEdge).
func (b *Builder) AddEdge(blk, pred *BasicBlock) { blk.addPredecessor(pred) }

// RemoveEdge removes pred from blk's predecessor set.
func (b *Builder) RemoveEdge(blk, pred *BasicBlock) { blk.removePredecessor(pred) }

// SetOutput assigns inst's output Value, wiring out.Producer back to inst.
// Used by StaticInlining to repurpose a callee's Ret instruction as the
// Mv that feeds the caller's call-site output Value.
func (b *Builder) SetOutput(inst *Instruction, out *Value) {
	inst.Out = out
	wireOutput(inst, out)
}
