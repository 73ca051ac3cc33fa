package wire

import (
	"strconv"
	"unsafe"
)

// emptyText backs every zero-length Text argument so that it always has a
// non-nil pointer, keeping it distinct from an absent OptionalText.
var emptyText [1]byte

// Arg is the wire representation of one probe argument.
//
// Integers are stored in Bits (sign-extended for signed kinds). Text is stored
// as a borrowed pointer to the string bytes plus a length; the bytes are never
// copied. An absent OptionalText has a nil Ptr.
type Arg struct {
	Kind Kind
	Bits uint64
	Ptr  unsafe.Pointer
	Len  int
}

// BoolOf returns the wire form of a boolean (1 or 0).
func BoolOf(v bool) Arg {
	if v {
		return Arg{Kind: Bool, Bits: 1}
	}
	return Arg{Kind: Bool}
}

// Int8Of returns a sign-extended Int8 argument.
func Int8Of(v int8) Arg { return Arg{Kind: Int8, Bits: uint64(int64(v))} }

// Int16Of returns a sign-extended Int16 argument.
func Int16Of(v int16) Arg { return Arg{Kind: Int16, Bits: uint64(int64(v))} }

// Int32Of returns a sign-extended Int32 argument.
func Int32Of(v int32) Arg { return Arg{Kind: Int32, Bits: uint64(int64(v))} }

// Int64Of returns an Int64 argument.
func Int64Of(v int64) Arg { return Arg{Kind: Int64, Bits: uint64(v)} }

// Uint8Of returns a zero-extended Uint8 argument.
func Uint8Of(v uint8) Arg { return Arg{Kind: Uint8, Bits: uint64(v)} }

// Uint16Of returns a zero-extended Uint16 argument.
func Uint16Of(v uint16) Arg { return Arg{Kind: Uint16, Bits: uint64(v)} }

// Uint32Of returns a zero-extended Uint32 argument.
func Uint32Of(v uint32) Arg { return Arg{Kind: Uint32, Bits: uint64(v)} }

// Uint64Of returns a Uint64 argument.
func Uint64Of(v uint64) Arg { return Arg{Kind: Uint64, Bits: v} }

// IntOf returns an Int64 argument.
func IntOf(v int) Arg { return Int64Of(int64(v)) }

// UintOf returns a Uint64 argument.
func UintOf(v uint) Arg { return Uint64Of(uint64(v)) }

// TextOf returns the wire form of s, borrowing its bytes.
func TextOf(s string) Arg {
	if len(s) == 0 {
		return Arg{Kind: Text, Ptr: unsafe.Pointer(&emptyText[0])}
	}
	return Arg{Kind: Text, Ptr: unsafe.Pointer(unsafe.StringData(s)), Len: len(s)}
}

// OptionalTextOf returns the wire form of an optional string. A nil pointer
// produces the absent form.
func OptionalTextOf(s *string) Arg {
	if s == nil {
		return Absent()
	}
	return MaybeTextOf(*s, true)
}

// MaybeTextOf is OptionalTextOf for the comma-ok idiom.
func MaybeTextOf(s string, ok bool) Arg {
	if !ok {
		return Absent()
	}
	a := TextOf(s)
	a.Kind = OptionalText
	return a
}

// Absent returns the absent OptionalText form.
func Absent() Arg {
	return Arg{Kind: OptionalText}
}

// Absent reports whether a is an OptionalText with no value.
func (a Arg) Absent() bool {
	return a.Kind == OptionalText && a.Ptr == nil
}

// Text returns the string held by a text argument. It returns "" for absent
// and non-text arguments.
func (a Arg) Text() string {
	if !a.Kind.IsText() || a.Ptr == nil {
		return ""
	}
	return unsafe.String((*byte)(a.Ptr), a.Len)
}

// Int returns the signed value of an integer argument.
func (a Arg) Int() int64 {
	return int64(a.Bits)
}

// Word returns the single machine word handed to the native ABI: the integer
// bits, or the address of the text bytes (0 when absent).
func (a Arg) Word() uint64 {
	if a.Kind.IsText() {
		return uint64(uintptr(a.Ptr))
	}
	return a.Bits
}

// String formats the argument for logs and test failures.
func (a Arg) String() string {
	switch {
	case a.Absent():
		return "<absent>"
	case a.Kind.IsText():
		return strconv.Quote(a.Text())
	case a.Kind == Bool:
		return strconv.FormatBool(a.Bits != 0)
	case a.Kind.Signed():
		return strconv.FormatInt(int64(a.Bits), 10)
	default:
		return strconv.FormatUint(a.Bits, 10)
	}
}
