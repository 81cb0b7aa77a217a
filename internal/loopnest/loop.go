// Package loopnest builds the loop forest over a function's control-flow
// graph: back-edge detection, reducibility classification and loop-tree
// construction, rooted in a synthetic root loop (spec.md §4.3).
package loopnest

import "ssair/internal/ir"

// Loop is a header block, its latches (back-edge sources), the blocks
// belonging to it (including header and latches, excluding blocks owned by
// strictly-inner loops), a reducibility flag and its place in the loop
// nesting forest. Grounded on kanso/internal/ir/types.go's Loop struct
// (Header/Body/Exits), extended with Latches/Reducible/Outer/Inner per
// spec.md §3.
type Loop struct {
	Header    *ir.BasicBlock
	Latches   []*ir.BasicBlock
	Blocks    []*ir.BasicBlock
	Reducible bool
	Outer     *Loop
	Inner     []*Loop

	// IsRoot marks the synthetic root loop spec.md §3 describes: it
	// contains every block not contained in any discovered loop and
	// parents every top-level loop. Header is nil for the root.
	IsRoot bool
}

// IsLatch reports whether b is one of l's latches.
func (l *Loop) IsLatch(b *ir.BasicBlock) bool {
	for _, lt := range l.Latches {
		if lt == b {
			return true
		}
	}
	return false
}

// Contains reports whether b is a direct member of l (not a member of one
// of l's inner loops).
func (l *Loop) Contains(b *ir.BasicBlock) bool {
	for _, m := range l.Blocks {
		if m == b {
			return true
		}
	}
	return false
}

// Depth returns l's nesting depth; the root loop is depth 0.
func (l *Loop) Depth() int {
	d := 0
	for cur := l.Outer; cur != nil; cur = cur.Outer {
		d++
	}
	return d
}
