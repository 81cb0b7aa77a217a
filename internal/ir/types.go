// Package ir implements the in-memory, typed, SSA-form intermediate
// representation: values, instructions, basic blocks and functions, owned
// by a process-local arena (Builder).
package ir

import "fmt"

// Type is the closed set of value types the IR can name: Void, signed and
// unsigned integers at each width, Float32/64, Pointer, and Unknown. It
// has no struct payload of its own — it is a plain enum.
type Type uint8

const (
	Void Type = iota
	Int8
	Int16
	Int32
	Int64
	UInt8
	UInt16
	UInt32
	UInt64
	Float32
	Float64
	Pointer
	Unknown
)

func (t Type) String() string {
	switch t {
	case Void:
		return "void"
	case Int8:
		return "i8"
	case Int16:
		return "i16"
	case Int32:
		return "i32"
	case Int64:
		return "i64"
	case UInt8:
		return "ui8"
	case UInt16:
		return "ui16"
	case UInt32:
		return "ui32"
	case UInt64:
		return "ui64"
	case Float32:
		return "f32"
	case Float64:
		return "f64"
	case Pointer:
		return "ptr"
	default:
		return "unknown"
	}
}

// IsInteger reports whether t is one of the signed or unsigned integer
// types (Pointer is treated as integral by the register allocator, but not
// here — arithmetic folding cares about true integer-ness).
func (t Type) IsInteger() bool {
	switch t {
	case Int8, Int16, Int32, Int64, UInt8, UInt16, UInt32, UInt64:
		return true
	default:
		return false
	}
}

// IsSigned reports whether t is a signed integer type.
func (t Type) IsSigned() bool {
	switch t {
	case Int8, Int16, Int32, Int64:
		return true
	default:
		return false
	}
}

// IsFloat reports whether t is a floating-point type.
func (t Type) IsFloat() bool {
	return t == Float32 || t == Float64
}

// BitWidth returns the bit width of an integer or float type, or 0 for
// Void/Pointer/Unknown.
func (t Type) BitWidth() int {
	switch t {
	case Int8, UInt8:
		return 8
	case Int16, UInt16:
		return 16
	case Int32, UInt32, Float32:
		return 32
	case Int64, UInt64, Float64:
		return 64
	default:
		return 0
	}
}

// constKey is the interning key for constant Values: (type, bit-pattern).
// Bit-pattern equality (not numeric equality) is deliberate: 0u8 and 0u64
// intern separately, and +0.0/-0.0 intern separately since they carry a
// distinct bit pattern.
type constKey struct {
	typ     Type
	pattern uint64
}

func (k constKey) String() string {
	return fmt.Sprintf("%s:%#x", k.typ, k.pattern)
}
