// Package dump renders the in-memory IR for human consumption: the
// textual Function grammar and Graphviz .dot exports of the CFG,
// dominator tree and loop tree. Built around an indent-tracked
// strings.Builder with writeIndent/writeLine helpers.
package dump

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"ssair/internal/ir"
)

// Printer accumulates a Function's textual dump.
type Printer struct {
	indent int
	output strings.Builder
}

// NewPrinter creates an empty Printer.
func NewPrinter() *Printer {
	return &Printer{}
}

// Function renders fn using the grammar:
//
//	function <ret-type-id> #<name>(<arg-type-id> <arg-name>, …) {
//	<block-name>:[ (preds: <name>, …)]
//	    <instr-text>
//	    …
//	[blank line]
//	<next-block-name>: …
//	}
func Function(fn *ir.Function) string {
	p := NewPrinter()
	p.printFunction(fn)
	return p.output.String()
}

func (p *Printer) writeIndent() {
	for i := 0; i < p.indent; i++ {
		p.output.WriteString("    ")
	}
}

func (p *Printer) writeLine(format string, args ...interface{}) {
	p.writeIndent()
	p.output.WriteString(fmt.Sprintf(format, args...))
	p.output.WriteString("\n")
}

func (p *Printer) printFunction(fn *ir.Function) {
	params := make([]string, len(fn.Params))
	for i, param := range fn.Params {
		params[i] = fmt.Sprintf("%s %s", param.Typ, param.Name)
	}
	p.writeLine("function %s #%s(%s) {", fn.ReturnType, fn.Name, strings.Join(params, ", "))

	for i, blk := range fn.Blocks {
		if i > 0 {
			p.output.WriteString("\n")
		}
		p.printBlock(blk)
	}
	p.writeLine("}")
}

func (p *Printer) printBlock(blk *ir.BasicBlock) {
	if len(blk.Predecessors) == 0 {
		p.writeLine("%s:", blk.Label)
	} else {
		preds := make([]string, len(blk.Predecessors))
		for i, pred := range blk.Predecessors {
			preds[i] = pred.Label
		}
		p.writeLine("%s: (preds: %s)", blk.Label, strings.Join(preds, ", "))
	}

	p.indent++
	for inst := blk.Head; inst != nil; inst = inst.Next {
		p.writeLine("%s", instructionText(inst))
	}
	p.indent--
}

// instructionText renders a single instruction in its representative
// textual form.
func instructionText(inst *ir.Instruction) string {
	switch inst.Op {
	case ir.OpLoad:
		return fmt.Sprintf("%s = Load %s, ptr %s", valueString(inst.Out), inst.Out.Typ, valueString(inst.In[0]))
	case ir.OpStore:
		return fmt.Sprintf("Store %s %s, ptr %s", inst.In[1].Typ, valueString(inst.In[1]), valueString(inst.In[0]))
	case ir.OpJump:
		return fmt.Sprintf("Jump #%s", inst.TrueTarget.Label)
	case ir.OpCall:
		args := make([]string, len(inst.Args))
		for i, arg := range inst.Args {
			args[i] = fmt.Sprintf("%s %s", arg.Typ, valueString(arg))
		}
		if inst.Out != nil {
			return fmt.Sprintf("%s = Call %s #%s(%s)", valueString(inst.Out), inst.Out.Typ, inst.Callee.Name, strings.Join(args, ", "))
		}
		return fmt.Sprintf("Call %s #%s(%s)", inst.Callee.ReturnType, inst.Callee.Name, strings.Join(args, ", "))
	case ir.OpRet:
		if inst.In[0] != nil {
			return fmt.Sprintf("Ret %s %s", inst.In[0].Typ, valueString(inst.In[0]))
		}
		return "Ret void"
	case ir.OpAlloc:
		if inst.AllocCount != 1 {
			return fmt.Sprintf("%s = Alloc %s, %d", valueString(inst.Out), inst.AllocElemType, inst.AllocCount)
		}
		return fmt.Sprintf("%s = Alloc %s", valueString(inst.Out), inst.AllocElemType)
	case ir.OpPhi:
		inputs := make([]string, len(inst.PhiInputs))
		for i, in := range inst.PhiInputs {
			inputs[i] = valueString(in)
		}
		return fmt.Sprintf("%s = Phi %s %s", valueString(inst.Out), inst.Out.Typ, strings.Join(inputs, ", "))
	case ir.OpMv:
		return fmt.Sprintf("%s = Mv %s %s", valueString(inst.Out), inst.Out.Typ, valueString(inst.In[0]))
	case ir.OpNullCheck:
		return fmt.Sprintf("NullCheck ptr %s", valueString(inst.In[0]))
	case ir.OpBoundsCheck:
		return fmt.Sprintf("BoundsCheck ptr %s, [ptr %s]", valueString(inst.In[0]), valueString(inst.In[1]))
	default:
		if inst.Op.IsBranch() {
			return fmt.Sprintf("%s %s %s, %s ? #%s : #%s", inst.Op, inst.In[0].Typ,
				valueString(inst.In[0]), valueString(inst.In[1]), inst.TrueTarget.Label, inst.FalseTarget.Label)
		}
		if inst.Op.IsArithmetic() {
			return fmt.Sprintf("%s = %s %s %s, %s", valueString(inst.Out), inst.Op, inst.Out.Typ,
				valueString(inst.In[0]), valueString(inst.In[1]))
		}
		return fmt.Sprintf("<unknown %s>", inst.Op)
	}
}

// valueString renders v as v<id> for abstract values, or the decimal
// formatting of its embedded bit pattern for constants.
func valueString(v *ir.Value) string {
	if v == nil {
		return "<nil>"
	}
	if !v.IsConst {
		return fmt.Sprintf("v%d", v.ID)
	}
	switch {
	case v.Typ.IsFloat():
		if v.Typ == ir.Float32 {
			f := math.Float32frombits(uint32(v.Payload))
			return strconv.FormatFloat(float64(f), 'g', -1, 32)
		}
		f := math.Float64frombits(v.Payload)
		return strconv.FormatFloat(f, 'g', -1, 64)
	case v.Typ.IsSigned():
		return strconv.FormatInt(v.AsInt64(), 10)
	default:
		return strconv.FormatUint(v.AsUint64(), 10)
	}
}
