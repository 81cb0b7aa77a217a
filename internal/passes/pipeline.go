// Package passes implements the IR-level transformation passes:
// ConstantFolding, Peepholes, CheckElimination and StaticInlining, plus
// the pipeline that runs them in sequence over a Function.
package passes

import (
	"fmt"

	"github.com/fatih/color"

	"ssair/internal/ir"
)

// Pass mutates a Function in place and reports whether it changed
// anything. Passes never re-run analyses themselves; the next analysis
// request rebuilds them.
type Pass interface {
	Name() string
	Description() string
	Apply(b *ir.Builder, fn *ir.Function) bool
}

// Pipeline runs a sequence of passes over a Function.
type Pipeline struct {
	passes []Pass
	quiet  bool
}

// NewPipeline returns a pipeline running the four passes in the order
// that best feeds each into the next: folding and peephole cleanup first,
// then check elimination (which benefits from the simplified arithmetic
// folding/peepholes leave behind), then inlining last (its own recursive
// descent re-applies nothing from this list).
func NewPipeline() *Pipeline {
	p := &Pipeline{}
	p.Add(&ConstantFolding{})
	p.Add(&Peepholes{})
	p.Add(&CheckElimination{})
	p.Add(NewStaticInlining(DefaultInlineThreshold))
	return p
}

// Add appends pass to the pipeline.
func (p *Pipeline) Add(pass Pass) { p.passes = append(p.passes, pass) }

// Quiet suppresses the pipeline's progress output.
func (p *Pipeline) Quiet() *Pipeline { p.quiet = true; return p }

// Run executes every pass in order over fn, returning whether any pass
// reported a change.
func (p *Pipeline) Run(b *ir.Builder, fn *ir.Function) bool {
	changed := false
	if !p.quiet {
		fmt.Printf("running %d passes over %s\n", len(p.passes), fn.Name)
	}
	for _, pass := range p.passes {
		applied := pass.Apply(b, fn)
		if applied {
			changed = true
		}
		if p.quiet {
			continue
		}
		status := color.New(color.FgYellow).Sprint("- no changes")
		if applied {
			status = color.New(color.FgGreen).Sprint("+ applied")
		}
		fmt.Printf("  %-20s %s (%s)\n", pass.Name(), status, pass.Description())
	}
	return changed
}
