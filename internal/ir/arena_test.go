package ir

import "testing"

func TestConstInterningByBitPattern(t *testing.T) {
	b := NewBuilder()

	zero8 := b.GetOrCreateConst(UInt8, 0)
	zero64 := b.GetOrCreateConst(UInt64, 0)
	if zero8 == zero64 {
		t.Fatalf("UInt8(0) and UInt64(0) must not intern to the same Value")
	}

	again := b.GetOrCreateConst(UInt8, 0)
	if again != zero8 {
		t.Fatalf("GetOrCreateConst did not return the interned Value on a repeat request")
	}

	posZero := b.GetOrCreateConst(Float64, 0x0000000000000000)
	negZero := b.GetOrCreateConst(Float64, 0x8000000000000000)
	if posZero == negZero {
		t.Fatalf("+0.0 and -0.0 must intern separately (distinct bit patterns)")
	}
}

func TestNonConstAndConstIDSpacesNeverCollide(t *testing.T) {
	b := NewBuilder()
	for i := 0; i < 5; i++ {
		v := b.NewValue(Int32)
		if v.ID < 0 {
			t.Fatalf("non-constant Value got a negative ID: %d", v.ID)
		}
	}
	for i := 0; i < 5; i++ {
		c := b.GetOrCreateConst(Int32, uint64(i))
		if c.ID >= 0 {
			t.Fatalf("constant Value got a non-negative ID: %d", c.ID)
		}
	}
}

func TestCleanupResetsCountersAndPopulation(t *testing.T) {
	b := NewBuilder()
	b.NewValue(Int32)
	b.GetOrCreateConst(Int32, 1)
	fn := b.NewFunction("f", Void, nil, nil)
	b.NewBlock("entry", fn)

	b.Cleanup()
	stats := b.Stats()
	if stats.Values != 0 || stats.Constants != 0 || stats.Blocks != 0 || stats.Functions != 0 {
		t.Fatalf("Cleanup left non-zero population: %+v", stats)
	}

	v := b.NewValue(Int32)
	if v.ID != 0 {
		t.Fatalf("Cleanup did not reset the ascending value counter, got ID %d", v.ID)
	}
	c := b.GetOrCreateConst(Int32, 1)
	if c.ID != -1 {
		t.Fatalf("Cleanup did not reset the descending constant counter, got ID %d", c.ID)
	}
}

func TestRemoveFunctionCascadesThroughBlocksAndInstructions(t *testing.T) {
	b := NewBuilder()
	fn := b.NewFunction("f", Void, nil, nil)
	entry := b.NewBlock("entry", fn)
	b.NewRet(entry, nil)

	before := b.Stats()
	if before.Instructions == 0 || before.Blocks == 0 {
		t.Fatalf("setup did not produce any blocks/instructions")
	}

	b.RemoveFunction(fn)
	after := b.Stats()
	if after.Instructions != 0 || after.Blocks != 0 || after.Functions != 0 {
		t.Fatalf("RemoveFunction did not cascade-release, stats = %+v", after)
	}
}

func TestNewFunctionMarksParametersAsArgs(t *testing.T) {
	b := NewBuilder()
	fn := b.NewFunction("add", Int32, []string{"a", "b"}, []Type{Int32, Int32})
	if len(fn.Params) != 2 {
		t.Fatalf("expected 2 params, got %d", len(fn.Params))
	}
	for _, p := range fn.Params {
		if !p.Value.IsArg {
			t.Fatalf("parameter %q's Value is not marked IsArg", p.Name)
		}
		if p.Value.Producer != nil {
			t.Fatalf("parameter %q's Value has a Producer", p.Name)
		}
	}
}

func TestNewBlockFirstAttachedBecomesEntry(t *testing.T) {
	b := NewBuilder()
	fn := b.NewFunction("f", Void, nil, nil)
	first := b.NewBlock("entry", fn)
	second := b.NewBlock("next", fn)
	if fn.Entry != first {
		t.Fatalf("first attached block did not become Entry")
	}
	if second == fn.Entry {
		t.Fatalf("second block incorrectly became Entry")
	}
}
