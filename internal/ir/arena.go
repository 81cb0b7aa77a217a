package ir

// Builder is the process-local arena that allocates, interns and frees
// every Value, Instruction, BasicBlock and Function. Callers construct an
// explicit *Builder with NewBuilder and thread it through their own code
// rather than reach for a package-level singleton.
//
// Cross-references between nodes (producer/user, predecessor/successor,
// dominator sets, loop nesting) are ordinary Go pointers for traversal
// ergonomics, but the Builder's ID-indexed maps are the only place nodes
// are added or removed, so removal never leaves a dangling reference behind
// without the caller detaching it first.
type Builder struct {
	values map[ValueID]*Value
	instrs map[InstrID]*Instruction
	blocks map[BlockID]*BasicBlock
	funcs  map[FuncID]*Function

	constants map[constKey]*Value

	nextValueID ValueID // ascending, non-constant values
	nextConstID ValueID // descending, interned constants
	nextInstrID InstrID
	nextBlockID BlockID
	nextFuncID  FuncID
}

// NewBuilder returns a fresh, empty arena.
func NewBuilder() *Builder {
	b := &Builder{}
	b.reset()
	return b
}

func (b *Builder) reset() {
	b.values = make(map[ValueID]*Value)
	b.instrs = make(map[InstrID]*Instruction)
	b.blocks = make(map[BlockID]*BasicBlock)
	b.funcs = make(map[FuncID]*Function)
	b.constants = make(map[constKey]*Value)
	b.nextValueID = 0
	b.nextConstID = -1
	b.nextInstrID = 0
	b.nextBlockID = 0
	b.nextFuncID = 0
}

// Cleanup drops every owned entity and resets the identifier counters:
// ascending from 0 for non-constant values, instructions and blocks;
// descending from -1 for constants, so the two spaces never collide.
func (b *Builder) Cleanup() {
	b.reset()
}

// Stats reports the current population of the arena, for tests that want
// to assert the dual identifier spaces never collide.
type Stats struct {
	Values       int
	Constants    int
	Instructions int
	Blocks       int
	Functions    int
}

func (b *Builder) Stats() Stats {
	return Stats{
		Values:       len(b.values),
		Constants:    len(b.constants),
		Instructions: len(b.instrs),
		Blocks:       len(b.blocks),
		Functions:    len(b.funcs),
	}
}

// NewValue allocates a fresh, payload-less Value of the given type — used
// for function arguments and for instruction outputs. It occupies the
// ascending, non-constant identifier space.
func (b *Builder) NewValue(typ Type) *Value {
	v := &Value{ID: b.nextValueID, Typ: typ}
	b.nextValueID++
	b.values[v.ID] = v
	return v
}

// GetOrCreateConst returns the interned constant Value for (typ, bits),
// allocating one (in the descending identifier space) if this is the first
// request for that exact type+bit-pattern. Two constants are equal iff
// their type and bit pattern match; in particular a request for typ=UInt8
// bits=0 and typ=UInt64 bits=0 are distinct Values.
func (b *Builder) GetOrCreateConst(typ Type, bits uint64) *Value {
	key := constKey{typ: typ, pattern: bits}
	if v, ok := b.constants[key]; ok {
		return v
	}
	v := &Value{ID: b.nextConstID, Typ: typ, IsConst: true, Payload: bits}
	b.nextConstID--
	b.constants[key] = v
	b.values[v.ID] = v
	return v
}

// NewBlock allocates a fresh, empty BasicBlock. Pass a non-nil parent to
// attach it to a Function immediately (the first block attached to a
// Function becomes its entry).
func (b *Builder) NewBlock(label string, parent *Function) *BasicBlock {
	blk := &BasicBlock{ID: b.nextBlockID, Label: label}
	b.nextBlockID++
	b.blocks[blk.ID] = blk
	if parent != nil {
		parent.addBlock(blk)
	}
	return blk
}

// NewFunction allocates a fresh Function with the given name, return type
// and declared argument types/names. Argument Values are allocated
// immediately with IsArg set.
func (b *Builder) NewFunction(name string, retType Type, argNames []string, argTypes []Type) *Function {
	fn := &Function{ID: b.nextFuncID, Name: name, ReturnType: retType}
	b.nextFuncID++
	n := len(argTypes)
	if len(argNames) < n {
		n = len(argNames)
	}
	for i := 0; i < len(argTypes); i++ {
		name := ""
		if i < len(argNames) {
			name = argNames[i]
		}
		v := b.NewValue(argTypes[i])
		v.IsArg = true
		fn.Params = append(fn.Params, &Parameter{Name: name, Typ: argTypes[i], Value: v})
	}
	b.funcs[fn.ID] = fn
	return fn
}

// RemoveValue releases v's storage. The caller must have already detached
// every use of v — the arena does not sweep dangling references.
func (b *Builder) RemoveValue(v *Value) {
	if v == nil {
		return
	}
	if v.IsConst {
		for k, cv := range b.constants {
			if cv == v {
				delete(b.constants, k)
				break
			}
		}
	}
	delete(b.values, v.ID)
}

// RemoveInstruction detaches inst from its block (if any), removes it as a
// user of each of its operands, clears its Out value's Producer link, and
// releases its storage. It does not release Out itself — value and
// instruction removal are independent operations.
func (b *Builder) RemoveInstruction(inst *Instruction) {
	if inst == nil {
		return
	}
	if inst.Block != nil {
		inst.Block.detach(inst)
	}
	for _, op := range inst.GetOperands() {
		if op != nil {
			op.RemoveUser(inst)
		}
	}
	if inst.Out != nil && inst.Out.Producer == inst {
		inst.Out.Producer = nil
	}
	delete(b.instrs, inst.ID)
}

// RemoveBlock detaches blk from its parent Function's block list and
// releases its storage. The caller must have already detached blk from any
// predecessor/successor it still participates in.
func (b *Builder) RemoveBlock(blk *BasicBlock) {
	if blk == nil {
		return
	}
	if blk.Parent != nil {
		blk.Parent.removeBlockRef(blk)
	}
	delete(b.blocks, blk.ID)
}

// RemoveFunction cascade-releases fn: every block it owns, every
// instruction in those blocks, and fn itself. Any analysis object
// (ControlFlowGraph, LoopAnalyzer result, LivenessAnalyzer result,
// RegisterAllocator result) built from fn becomes stale and must be
// discarded by the caller — those objects are built in higher layers, so
// there is no back-pointer for the arena itself to follow. Their lifetime
// is tied to fn by caller convention, not by a cascading pointer walk.
func (b *Builder) RemoveFunction(fn *Function) {
	if fn == nil {
		return
	}
	for _, blk := range append([]*BasicBlock(nil), fn.Blocks...) {
		for inst := blk.Head; inst != nil; {
			next := inst.Next
			b.RemoveInstruction(inst)
			inst = next
		}
		delete(b.blocks, blk.ID)
	}
	fn.Blocks = nil
	fn.Entry = nil
	delete(b.funcs, fn.ID)
}
