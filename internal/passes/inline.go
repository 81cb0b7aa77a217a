package passes

import (
	"fmt"

	"ssair/internal/ir"
)

// DefaultInlineThreshold is the default instruction-count threshold at or
// below which a callee is eligible for inlining.
const DefaultInlineThreshold = 10

// StaticInlining implements recursive static inlining: every Call whose
// callee is not itself in progress is considered, inlining the callee's
// own calls first, then inlining the call itself if the (possibly
// now-larger) callee fits under the threshold.
type StaticInlining struct {
	threshold int
	postSeq   int
}

// NewStaticInlining returns a pass that inlines callees with an
// instruction count at or below threshold.
func NewStaticInlining(threshold int) *StaticInlining {
	return &StaticInlining{threshold: threshold}
}

func (p *StaticInlining) Name() string { return "static-inlining" }

func (p *StaticInlining) Description() string {
	return fmt.Sprintf("inline callees with <= %d instructions", p.threshold)
}

// Apply recursively inlines calls within fn. A Function already marked
// in-progress (an ancestor in the current inlining recursion) is left
// alone, which is what keeps self- and mutually-recursive calls from
// inlining forever.
func (p *StaticInlining) Apply(b *ir.Builder, fn *ir.Function) bool {
	if fn.InProgress() {
		return false
	}
	fn.SetInProgress(true)
	defer fn.SetInProgress(false)

	changed := false
	for _, call := range collectCalls(fn) {
		callee := call.Callee
		if callee == nil || callee.InProgress() {
			continue
		}
		if p.Apply(b, callee) {
			changed = true
		}
		if callee.InstructionCount() <= p.threshold {
			p.inlineCall(b, fn, call)
			changed = true
		}
	}
	return changed
}

func collectCalls(fn *ir.Function) []*ir.Instruction {
	var calls []*ir.Instruction
	for _, blk := range fn.Blocks {
		for inst := blk.Head; inst != nil; inst = inst.Next {
			if inst.Op == ir.OpCall {
				calls = append(calls, inst)
			}
		}
	}
	return calls
}

// inlineCall performs the inlining rewrite for one Call instruction,
// already confirmed eligible by the caller.
func (p *StaticInlining) inlineCall(b *ir.Builder, fn *ir.Function, call *ir.Instruction) {
	callee := call.Callee
	callerBlock := call.Block
	callArgs := call.Args
	callOut := call.Out

	originalTrue, originalFalse := callerBlock.TrueSucc, callerBlock.FalseSucc

	fragment := collectFragment(call)
	for _, inst := range fragment {
		b.DetachInstruction(inst)
	}
	b.RemoveInstruction(call)

	cloned := b.CopyFunction(callee)
	calleeBlocks := append([]*ir.BasicBlock(nil), cloned.Blocks...)

	for i, param := range cloned.Params {
		argValue := param.Value
		callSiteInput := callArgs[i]
		for _, user := range append([]*ir.Instruction(nil), argValue.Users...) {
			b.ReplaceOperand(user, argValue, callSiteInput)
		}
	}

	clonedEntry := cloned.Entry
	splicedEntry := len(clonedEntry.Predecessors) == 0
	if splicedEntry {
		for _, inst := range clonedEntry.Instructions() {
			b.DetachInstruction(inst)
			b.AppendInstruction(callerBlock, inst)
		}
		callerBlock.TrueSucc, callerBlock.FalseSucc = clonedEntry.TrueSucc, clonedEntry.FalseSucc
		for _, succ := range []*ir.BasicBlock{clonedEntry.TrueSucc, clonedEntry.FalseSucc} {
			if succ == nil {
				continue
			}
			b.RemoveEdge(succ, clonedEntry)
			b.AddEdge(succ, callerBlock)
		}
	} else {
		b.AdoptBlocks(fn, []*ir.BasicBlock{clonedEntry})
		b.NewJump(callerBlock, clonedEntry)
	}

	var remaining []*ir.BasicBlock
	for _, blk := range calleeBlocks {
		if blk != clonedEntry {
			remaining = append(remaining, blk)
		}
	}
	b.AdoptBlocks(fn, remaining)

	searchBlocks := make([]*ir.BasicBlock, len(calleeBlocks))
	for i, blk := range calleeBlocks {
		if blk == clonedEntry && splicedEntry {
			searchBlocks[i] = callerBlock
		} else {
			searchBlocks[i] = blk
		}
	}

	var retBlocks []*ir.BasicBlock
	for _, blk := range searchBlocks {
		if term := blk.Terminator(); term != nil && term.Op == ir.OpRet {
			retBlocks = append(retBlocks, blk)
		}
	}

	var postTarget *ir.BasicBlock
	switch len(retBlocks) {
	case 1:
		postTarget = retBlocks[0]
		retInst := postTarget.Terminator()
		if callOut != nil {
			retInst.Op = ir.OpMv
			b.SetOutput(retInst, callOut)
		} else {
			b.RemoveInstruction(retInst)
		}
		for _, inst := range fragment {
			b.AppendInstruction(postTarget, inst)
		}
	default:
		p.postSeq++
		postTarget = b.NewBlock(fmt.Sprintf("%s_post%d", callerBlock.Label, p.postSeq), nil)

		var phi *ir.Instruction
		if callOut != nil {
			phi = b.NewPhi(nil, callOut.Typ)
			placeholder := phi.Out
			b.SetOutput(phi, callOut)
			b.RemoveValue(placeholder)
		}

		for _, retBlock := range retBlocks {
			retInst := retBlock.Terminator()
			retVal := retInst.In[0]
			if retVal != nil {
				retVal.RemoveUser(retInst)
			}
			retInst.Op = ir.OpJump
			retInst.In[0] = nil
			retInst.TrueTarget = postTarget
			retBlock.TrueSucc = postTarget

			b.AddEdge(postTarget, retBlock)
			if phi != nil {
				idx := len(postTarget.Predecessors) - 1
				b.SetPhiInput(phi, idx, retVal)
			}
		}

		if phi != nil {
			b.AppendInstruction(postTarget, phi)
		}
		for _, inst := range fragment {
			b.AppendInstruction(postTarget, inst)
		}
		b.AdoptBlocks(fn, []*ir.BasicBlock{postTarget})
	}

	if originalTrue != nil {
		b.RemoveEdge(originalTrue, callerBlock)
		b.AddEdge(originalTrue, postTarget)
	}
	if originalFalse != nil {
		b.RemoveEdge(originalFalse, callerBlock)
		b.AddEdge(originalFalse, postTarget)
	}
	postTarget.TrueSucc, postTarget.FalseSucc = originalTrue, originalFalse

	if splicedEntry {
		b.RemoveBlock(clonedEntry)
	}
	cloned.Blocks = nil
	cloned.Entry = nil
	b.RemoveFunction(cloned)
}

// collectFragment returns the instructions following call within its
// block, in order, before any of them are detached.
func collectFragment(call *ir.Instruction) []*ir.Instruction {
	var fragment []*ir.Instruction
	for inst := call.Next; inst != nil; inst = inst.Next {
		fragment = append(fragment, inst)
	}
	return fragment
}
