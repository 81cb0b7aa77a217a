package ir

import "testing"

func TestValueIsValidRejectsConstAndArgTogether(t *testing.T) {
	v := &Value{Typ: Int32, IsConst: true, IsArg: true}
	if v.IsValid() {
		t.Fatalf("a Value cannot be both constant and argument")
	}
}

func TestValueIsValidRejectsMissingProducer(t *testing.T) {
	v := &Value{Typ: Int32}
	if v.IsValid() {
		t.Fatalf("a non-const, non-arg Value with no Producer should be invalid")
	}
}

func TestInstructionIsValidArithmeticRequiresMatchingTypes(t *testing.T) {
	b := NewBuilder()
	fn := b.NewFunction("f", Int32, []string{"a"}, []Type{Int32})
	entry := b.NewBlock("entry", fn)
	wrongWidth := b.GetOrCreateConst(Int64, 1)

	add := b.NewArith(OpAdd, entry, Int32, fn.Params[0].Value, wrongWidth)
	if add.IsValid() {
		t.Fatalf("Add with mismatched operand types should be invalid")
	}
}

func TestInstructionIsValidAllocRejectsNonPositiveCount(t *testing.T) {
	b := NewBuilder()
	fn := b.NewFunction("f", Void, nil, nil)
	entry := b.NewBlock("entry", fn)
	alloc := b.NewAlloc(entry, Int32, 0)
	if alloc.IsValid() {
		t.Fatalf("Alloc with count 0 should be invalid")
	}
	alloc2 := b.NewAlloc(entry, Int32, 4)
	if !alloc2.IsValid() {
		t.Fatalf("Alloc with count 4 should be valid")
	}
}

func TestInstructionIsValidPhiRequiresOneInputPerPredecessor(t *testing.T) {
	b := NewBuilder()
	fn := b.NewFunction("f", Int32, nil, nil)
	a := b.NewBlock("a", fn)
	c := b.NewBlock("c", fn)
	join := b.NewBlock("join", fn)
	b.NewJump(a, join)
	b.NewJump(c, join)

	phi := b.NewPhi(join, Int32)
	if phi.IsValid() {
		t.Fatalf("Phi with unset inputs should be invalid")
	}
	b.SetPhiInput(phi, 0, b.GetOrCreateConst(Int32, 1))
	b.SetPhiInput(phi, 1, b.GetOrCreateConst(Int32, 2))
	if !phi.IsValid() {
		t.Fatalf("fully-wired Phi should be valid")
	}
}

func TestInstructionIsValidCallChecksArgTypesAndReturn(t *testing.T) {
	b := NewBuilder()
	callee := b.NewFunction("callee", Int32, []string{"x"}, []Type{Int32})
	fn := b.NewFunction("caller", Int32, nil, nil)
	entry := b.NewBlock("entry", fn)

	badArg := b.GetOrCreateConst(Int64, 1)
	call := b.NewCall(entry, callee, []*Value{badArg}, Int32)
	if call.IsValid() {
		t.Fatalf("call with mismatched argument type should be invalid")
	}

	goodArg := b.GetOrCreateConst(Int32, 1)
	call2 := b.NewCall(entry, callee, []*Value{goodArg}, Int32)
	if !call2.IsValid() {
		t.Fatalf("call with matching argument and return types should be valid")
	}
}

func TestBlockIsValidRequiresPhisBeforeNonPhis(t *testing.T) {
	b := NewBuilder()
	fn := b.NewFunction("f", Void, nil, nil)
	a := b.NewBlock("a", fn)
	join := b.NewBlock("join", fn)
	b.NewJump(a, join)
	b.NewJump(a, join) // duplicate edge: join keeps a single predecessor

	one := b.GetOrCreateConst(Int32, 1)
	b.NewArith(OpAdd, join, Int32, one, one)
	phi := b.NewPhi(join, Int32)
	b.SetPhiInput(phi, 0, one)
	b.NewRet(join, nil)

	if join.IsValid() {
		t.Fatalf("a block with a Phi after a non-Phi instruction should be invalid")
	}
}

func TestFunctionIsValidRequiresEntry(t *testing.T) {
	fn := &Function{Name: "empty"}
	if fn.IsValid() {
		t.Fatalf("a Function with no Entry block should be invalid")
	}
}
