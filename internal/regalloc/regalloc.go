// Package regalloc implements a linear-scan register allocator: given a
// function's live intervals (via internal/liveness), assign every produced
// Value a GP register, an FP register, or a stack slot.
package regalloc

import (
	"sort"

	"ssair/internal/ir"
	"ssair/internal/liveness"
)

// RegisterClass partitions Values for register competition: integral
// (including Pointer, which is treated as integral) versus floating-point.
type RegisterClass uint8

const (
	ClassGP RegisterClass = iota
	ClassFP
)

// ClassOf returns the register class a Value of type typ competes in.
func ClassOf(typ ir.Type) RegisterClass {
	if typ.IsFloat() {
		return ClassFP
	}
	return ClassGP
}

// Config is the allocator's configuration: the number of available GP and
// FP registers.
type Config struct {
	GPCount int
	FPCount int
}

// Allocator runs linear-scan register allocation over a function's live
// intervals.
type Allocator struct {
	cfg Config
}

// NewAllocator returns an Allocator configured with the given register
// counts.
func NewAllocator(cfg Config) *Allocator { return &Allocator{cfg: cfg} }

// Result reports how many stack slots static allocation consumed, for
// callers that need to size a frame.
type Result struct {
	StackSlots int
}

// activeEntry is one member of the `active` multiset: a Value together with
// the register it currently occupies.
type activeEntry struct {
	value *ir.Value
	reg   int
}

// freeSet is an ascending-ordered set of free register indices.
type freeSet struct {
	regs []int
}

func newFreeSet(n int) *freeSet {
	regs := make([]int, n)
	for i := range regs {
		regs[i] = i
	}
	return &freeSet{regs: regs}
}

func (f *freeSet) empty() bool { return len(f.regs) == 0 }

// take returns the lowest-indexed free register and removes it.
func (f *freeSet) take() int {
	r := f.regs[0]
	f.regs = f.regs[1:]
	return r
}

// give returns reg to the set, keeping it ascending.
func (f *freeSet) give(reg int) {
	i := sort.SearchInts(f.regs, reg)
	f.regs = append(f.regs, 0)
	copy(f.regs[i+1:], f.regs[i:])
	f.regs[i] = reg
}

// Run allocates every produced Value in fn a Location, via liveness.Result
// (already built by the caller — the allocator always runs downstream of
// liveness, never recomputes it).
func (a *Allocator) Run(fn *ir.Function, lr *liveness.Result) *Result {
	values := producedValuesByIntervalStart(lr.Order)

	free := map[RegisterClass]*freeSet{
		ClassGP: newFreeSet(a.cfg.GPCount),
		ClassFP: newFreeSet(a.cfg.FPCount),
	}
	var active []activeEntry
	nextSlot := 0
	result := &Result{}

	for _, v := range values {
		class := ClassOf(v.Typ)

		// Step 1: expire active entries whose interval has ended.
		kept := active[:0]
		for _, e := range active {
			if ClassOf(e.value.Typ) != class {
				kept = append(kept, e)
				continue
			}
			if e.value.Interval.End <= v.Interval.Start {
				free[class].give(e.reg)
				continue
			}
			kept = append(kept, e)
		}
		active = kept

		// Step 2: allocate, or spill.
		if free[class].empty() {
			spillOrAssign(v, class, &active, free, &nextSlot, &result.StackSlots)
			continue
		}
		reg := free[class].take()
		v.Location = ir.Location{Kind: locKindFor(class), Index: reg}
		active = append(active, activeEntry{value: v, reg: reg})
	}

	return result
}

// spillOrAssign implements the spill policy: among active Values of v's
// class, find the one with the largest interval end. If it
// exceeds v's own end, evict it (v inherits its register; the evicted
// Value gets a fresh stack slot). Otherwise v itself spills; active is
// left unchanged.
func spillOrAssign(v *ir.Value, class RegisterClass, active *[]activeEntry, free map[RegisterClass]*freeSet, nextSlot, stackSlots *int) {
	worstIdx := -1
	for i, e := range *active {
		if ClassOf(e.value.Typ) != class {
			continue
		}
		if worstIdx == -1 || e.value.Interval.End > (*active)[worstIdx].value.Interval.End {
			worstIdx = i
		}
	}

	if worstIdx != -1 && (*active)[worstIdx].value.Interval.End > v.Interval.End {
		evicted := (*active)[worstIdx]
		v.Location = ir.Location{Kind: locKindFor(class), Index: evicted.reg}
		(*active)[worstIdx] = activeEntry{value: v, reg: evicted.reg}

		evicted.value.Location = ir.Location{Kind: ir.LocStackSlot, Index: *nextSlot}
		*nextSlot++
		*stackSlots++
		return
	}

	v.Location = ir.Location{Kind: ir.LocStackSlot, Index: *nextSlot}
	*nextSlot++
	*stackSlots++
}

func locKindFor(class RegisterClass) ir.LocationKind {
	if class == ClassFP {
		return ir.LocFPRegister
	}
	return ir.LocGPRegister
}

// producedValuesByIntervalStart collects every Value with a producing
// instruction in order, in ascending interval-start order, breaking ties
// by linear number of the producing instruction for determinism.
func producedValuesByIntervalStart(order []*ir.BasicBlock) []*ir.Value {
	var values []*ir.Value
	for _, blk := range order {
		for inst := blk.Head; inst != nil; inst = inst.Next {
			if inst.Out != nil && inst.Out.HasProducer() {
				values = append(values, inst.Out)
			}
		}
	}
	sort.SliceStable(values, func(i, j int) bool {
		if values[i].Interval.Start != values[j].Interval.Start {
			return values[i].Interval.Start < values[j].Interval.Start
		}
		return values[i].Producer.LinearNumber < values[j].Producer.LinearNumber
	})
	return values
}
