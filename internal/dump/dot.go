package dump

import (
	"fmt"
	"strings"

	"ssair/internal/cfg"
	"ssair/internal/loopnest"
)

// CFGDot renders g as a Graphviz digraph: one node per block, one edge per
// control-flow successor. Grounded on
// other_examples/62997daa_aclements-go-misc__rtcheck-main.go.go's
// plain fmt.Fprintf-built "digraph %s { ... }" call-graph dump — no
// Graphviz library is needed for text this simple.
func CFGDot(g *cfg.ControlFlowGraph, name string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "digraph %s {\n", name)
	for _, blk := range g.Blocks {
		fmt.Fprintf(&b, "  %q;\n", blk.Label)
	}
	for _, blk := range g.Blocks {
		for _, succ := range blk.Successors() {
			fmt.Fprintf(&b, "  %q -> %q;\n", blk.Label, succ.Label)
		}
	}
	b.WriteString("}\n")
	return b.String()
}

// DominatorTreeDot renders the immediate-dominator tree computed by
// cfg.ComputeDominators: an edge from each block's idom to the block
// itself.
func DominatorTreeDot(g *cfg.ControlFlowGraph, name string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "digraph %s {\n", name)
	for _, blk := range g.Blocks {
		fmt.Fprintf(&b, "  %q;\n", blk.Label)
	}
	for _, blk := range g.Blocks {
		if blk.Idom != nil {
			fmt.Fprintf(&b, "  %q -> %q;\n", blk.Idom.Label, blk.Label)
		}
	}
	b.WriteString("}\n")
	return b.String()
}

// LoopTreeDot renders forest's nesting structure: one node per loop
// (labelled with its header, member blocks and reducibility), one edge
// from each loop to its immediate inner loops, rooted at the synthetic
// root loop.
func LoopTreeDot(forest *loopnest.Forest, name string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "digraph %s {\n", name)
	writeLoopNode(&b, forest.Root)
	writeLoopEdges(&b, forest.Root)
	b.WriteString("}\n")
	return b.String()
}

func loopNodeID(l *loopnest.Loop) string {
	if l.IsRoot {
		return "root"
	}
	return l.Header.Label
}

func writeLoopNode(b *strings.Builder, l *loopnest.Loop) {
	members := make([]string, len(l.Blocks))
	for i, blk := range l.Blocks {
		members[i] = blk.Label
	}
	reducible := "reducible"
	if !l.Reducible && !l.IsRoot {
		reducible = "irreducible"
	}
	fmt.Fprintf(b, "  %q [label=%q];\n", loopNodeID(l), fmt.Sprintf("%s\\nblocks: %s\\n%s",
		loopNodeID(l), strings.Join(members, ", "), reducible))
	for _, inner := range l.Inner {
		writeLoopNode(b, inner)
	}
}

func writeLoopEdges(b *strings.Builder, l *loopnest.Loop) {
	for _, inner := range l.Inner {
		fmt.Fprintf(b, "  %q -> %q;\n", loopNodeID(l), loopNodeID(inner))
		writeLoopEdges(b, inner)
	}
}
