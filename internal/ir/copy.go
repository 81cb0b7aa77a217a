package ir

// CopyFunction produces a deep clone of fn in which every Value,
// Instruction and BasicBlock is freshly allocated and the
// producer/user/predecessor/successor graph is rewired to the clones;
// constants are shared, not duplicated.
func (b *Builder) CopyFunction(fn *Function) *Function {
	argNames := make([]string, len(fn.Params))
	argTypes := make([]Type, len(fn.Params))
	for i, p := range fn.Params {
		argNames[i] = p.Name
		argTypes[i] = p.Typ
	}
	clone := b.NewFunction(fn.Name, fn.ReturnType, argNames, argTypes)

	valueMap := make(map[*Value]*Value)
	for i, p := range fn.Params {
		valueMap[p.Value] = clone.Params[i].Value
	}

	blockMap := make(map[*BasicBlock]*BasicBlock)
	for _, blk := range fn.Blocks {
		blockMap[blk] = b.NewBlock(blk.Label, clone)
	}
	if fn.Entry != nil {
		clone.Entry = blockMap[fn.Entry]
	}

	// Pass 1: allocate output Values for every instruction so forward
	// references within and across blocks (Phis, branch targets) resolve.
	for _, blk := range fn.Blocks {
		for inst := blk.Head; inst != nil; inst = inst.Next {
			if inst.Out != nil {
				valueMap[inst.Out] = b.NewValue(inst.Out.Typ)
			}
		}
	}

	mapValue := func(v *Value) *Value {
		if v == nil {
			return nil
		}
		if v.IsConst {
			return b.GetOrCreateConst(v.Typ, v.Payload)
		}
		if nv, ok := valueMap[v]; ok {
			return nv
		}
		// Operand outside fn (e.g. a global/shared constant-like value not
		// produced within this function) — share it verbatim.
		return v
	}

	// Pass 2: clone every instruction into its mapped block, wiring mapped
	// operands, mapped output, and mapped block targets.
	for _, blk := range fn.Blocks {
		newBlk := blockMap[blk]
		for inst := blk.Head; inst != nil; inst = inst.Next {
			newInst := b.allocInstr(inst.Op, newBlk)
			newInst.AllocElemType = inst.AllocElemType
			newInst.AllocCount = inst.AllocCount
			newInst.Callee = inst.Callee

			if inst.Out != nil {
				newInst.Out = valueMap[inst.Out]
				wireOutput(newInst, newInst.Out)
			}

			switch inst.Op {
			case OpCall:
				newInst.Args = make([]*Value, len(inst.Args))
				for i, a := range inst.Args {
					newInst.Args[i] = mapValue(a)
					wireOperand(newInst, newInst.Args[i])
				}
			case OpPhi:
				newInst.PhiInputs = make([]*Value, len(inst.PhiInputs))
				for i, v := range inst.PhiInputs {
					newInst.PhiInputs[i] = mapValue(v)
					wireOperand(newInst, newInst.PhiInputs[i])
				}
			case OpJump:
				newInst.TrueTarget = blockMap[inst.TrueTarget]
			default:
				if inst.Op.IsBranch() {
					newInst.In[0] = mapValue(inst.In[0])
					newInst.In[1] = mapValue(inst.In[1])
					wireOperand(newInst, newInst.In[0])
					wireOperand(newInst, newInst.In[1])
					newInst.TrueTarget = blockMap[inst.TrueTarget]
					newInst.FalseTarget = blockMap[inst.FalseTarget]
				} else {
					newInst.In[0] = mapValue(inst.In[0])
					newInst.In[1] = mapValue(inst.In[1])
					wireOperand(newInst, newInst.In[0])
					wireOperand(newInst, newInst.In[1])
				}
			}
		}
	}

	// Pass 3: predecessor/successor edges, now that every block exists.
	for _, blk := range fn.Blocks {
		newBlk := blockMap[blk]
		if blk.TrueSucc != nil {
			newBlk.TrueSucc = blockMap[blk.TrueSucc]
		}
		if blk.FalseSucc != nil {
			newBlk.FalseSucc = blockMap[blk.FalseSucc]
		}
		for _, pred := range blk.Predecessors {
			newBlk.addPredecessor(blockMap[pred])
		}
	}

	return clone
}
