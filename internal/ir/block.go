package ir

// BlockID identifies a BasicBlock within its Arena.
type BlockID int64

// Marker names the traversal scratch states (White for unvisited, plus
// Grey, Black and Green). No marker field lives on BasicBlock itself —
// each traversal in internal/cfg, internal/loopnest and internal/liveness
// keeps its own map[*BasicBlock]bool per state, discarded when the
// traversal returns, so independent traversals never collide. Those
// traversals do not use this type.
type Marker uint8

const (
	White Marker = iota
	Grey
	Black
	Green
)

// BasicBlock is a named, ordered sequence of Instructions ending in exactly
// one terminator. The instruction list is doubly linked; Head and Tail
// give O(1) access to the ends and Size avoids a list walk to count them.
type BasicBlock struct {
	ID     BlockID
	Label  string
	Parent *Function

	Head, Tail *Instruction
	Size       int

	Predecessors []*BasicBlock
	// TrueSucc is also the unconditional target for Jump.
	TrueSucc, FalseSucc *BasicBlock

	// Filled in by internal/cfg.
	Idom      *BasicBlock
	Dominates []*BasicBlock

	// Filled in by internal/loopnest.
	Loop interface{} // *loopnest.Loop; interface{} to avoid an import cycle (ir is a leaf package).

	// Filled in by internal/liveness.
	LiveRangeStart, LiveRangeEnd uint64
}

// Successors returns the block's outgoing CFG edges (0, 1 or 2 entries).
func (b *BasicBlock) Successors() []*BasicBlock {
	var succs []*BasicBlock
	if b.TrueSucc != nil {
		succs = append(succs, b.TrueSucc)
	}
	if b.FalseSucc != nil {
		succs = append(succs, b.FalseSucc)
	}
	return succs
}

// Terminator returns the block's last instruction if it is a terminator,
// else nil.
func (b *BasicBlock) Terminator() *Instruction {
	if b.Tail != nil && b.Tail.IsTerminator() {
		return b.Tail
	}
	return nil
}

// Instructions returns the block's instructions in order, head to tail.
func (b *BasicBlock) Instructions() []*Instruction {
	out := make([]*Instruction, 0, b.Size)
	for inst := b.Head; inst != nil; inst = inst.Next {
		out = append(out, inst)
	}
	return out
}

// Phis returns the leading run of Phi instructions: within a block, all
// Phis precede all non-Phis.
func (b *BasicBlock) Phis() []*Instruction {
	var out []*Instruction
	for inst := b.Head; inst != nil && inst.IsPhi(); inst = inst.Next {
		out = append(out, inst)
	}
	return out
}

// addPredecessor records pred as a predecessor of b, if not already
// present.
func (b *BasicBlock) addPredecessor(pred *BasicBlock) {
	for _, p := range b.Predecessors {
		if p == pred {
			return
		}
	}
	b.Predecessors = append(b.Predecessors, pred)
}

// removePredecessor removes pred from b's predecessor set, if present.
func (b *BasicBlock) removePredecessor(pred *BasicBlock) {
	for i, p := range b.Predecessors {
		if p == pred {
			b.Predecessors = append(b.Predecessors[:i], b.Predecessors[i+1:]...)
			return
		}
	}
}

// append adds inst to the tail of b's instruction list.
func (b *BasicBlock) append(inst *Instruction) {
	inst.Block = b
	inst.Prev = b.Tail
	inst.Next = nil
	if b.Tail != nil {
		b.Tail.Next = inst
	} else {
		b.Head = inst
	}
	b.Tail = inst
	b.Size++
}

// insertBefore inserts inst immediately before mark in b's instruction
// list (appending when mark is nil).
func (b *BasicBlock) insertBefore(inst *Instruction, mark *Instruction) {
	inst.Block = b
	if mark == nil {
		b.append(inst)
		return
	}
	inst.Prev = mark.Prev
	inst.Next = mark
	if mark.Prev != nil {
		mark.Prev.Next = inst
	} else {
		b.Head = inst
	}
	mark.Prev = inst
	b.Size++
}

// detach removes inst from b's instruction list without releasing it from
// the arena (used mid-rewrite, e.g. static inlining's "detach the
// remaining instructions of the caller's post-call fragment").
func (b *BasicBlock) detach(inst *Instruction) {
	if inst.Prev != nil {
		inst.Prev.Next = inst.Next
	} else {
		b.Head = inst.Next
	}
	if inst.Next != nil {
		inst.Next.Prev = inst.Prev
	} else {
		b.Tail = inst.Prev
	}
	inst.Prev, inst.Next, inst.Block = nil, nil, nil
	b.Size--
}
