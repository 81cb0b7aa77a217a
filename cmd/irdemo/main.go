// Command irdemo is a small sample driver over the ssair library: it
// builds a fixed demo function (a three-block recursive factorial) and
// prints whichever view the first argument names; the dump view first
// runs the optimization pipeline over it.
//
// Usage: irdemo [dump|validate|loops|alloc|dot]
package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"

	"ssair/internal/cfg"
	"ssair/internal/dump"
	"ssair/internal/ir"
	"ssair/internal/liveness"
	"ssair/internal/loopnest"
	"ssair/internal/passes"
	"ssair/internal/regalloc"
)

func main() {
	mode := "dump"
	if len(os.Args) > 1 {
		mode = os.Args[1]
	}

	b := ir.NewBuilder()
	fn := buildFactorial(b)

	switch mode {
	case "dump":
		changed := passes.NewPipeline().Run(b, fn)
		if changed {
			color.Green("✅ pipeline changed %s", fn.Name)
		}
		fmt.Println(dump.Function(fn))
	case "validate":
		if fn.IsValid() {
			color.Green("✅ %s is structurally valid", fn.Name)
		} else {
			color.Red("❌ %s failed IsValid()", fn.Name)
			os.Exit(1)
		}
	case "loops":
		forest := loopnest.Build(cfg.Build(fn))
		if forest.HasIrreducibleLoops() {
			color.Yellow("⚠ %s has irreducible loops", fn.Name)
		} else {
			color.Green("✅ %s is fully reducible", fn.Name)
		}
	case "alloc":
		result, ok := liveness.NewAnalyzer().Run(fn)
		if !ok {
			color.Red("❌ liveness refused %s (irreducible loop)", fn.Name)
			os.Exit(1)
		}
		alloc := regalloc.NewAllocator(regalloc.Config{GPCount: 2, FPCount: 2}).Run(fn, result)
		fmt.Printf("stack slots used: %d\n", alloc.StackSlots)
	case "dot":
		fmt.Println(dump.CFGDot(cfg.Build(fn), fn.Name))
	default:
		fmt.Fprintf(os.Stderr, "usage: irdemo [dump|validate|loops|alloc|dot]\n")
		os.Exit(1)
	}
}

// buildFactorial constructs a three-block recursive factorial: BB_1
// (entry) branches on `n <= 1` into BB_3 (base case) or BB_2 (recursive
// step).
func buildFactorial(b *ir.Builder) *ir.Function {
	fn := b.NewFunction("Fact", ir.Int32, []string{"n"}, []ir.Type{ir.Int32})
	entry := b.NewBlock("BB_1", fn)
	recur := b.NewBlock("BB_2", fn)
	base := b.NewBlock("BB_3", fn)

	n := fn.Params[0].Value
	one := b.GetOrCreateConst(ir.Int32, 1)
	b.NewBranch(ir.OpBle, entry, n, one, base, recur)

	b.NewRet(base, one)

	sub := b.NewArith(ir.OpSub, recur, ir.Int32, n, one)
	call := b.NewCall(recur, fn, []*ir.Value{sub.Out}, ir.Int32)
	mul := b.NewArith(ir.OpMul, recur, ir.Int32, n, call.Out)
	b.NewRet(recur, mul.Out)

	return fn
}
