package wire

import (
	"errors"
	"math"
	"testing"
	"unsafe"
)

// TestTextOf_PointerAndLength verifies text borrows the string bytes.
func TestTextOf_PointerAndLength(t *testing.T) {
	s := "world"
	a := TextOf(s)

	if a.Kind != Text {
		t.Fatalf("Kind = %v, want text", a.Kind)
	}
	if a.Len != 5 {
		t.Errorf("Len = %d, want 5", a.Len)
	}
	if a.Ptr != unsafe.Pointer(unsafe.StringData(s)) {
		t.Error("Ptr does not point at the string bytes")
	}
	if got := a.Text(); got != "world" {
		t.Errorf("Text() = %q, want %q", got, "world")
	}
	if a.Word() != uint64(uintptr(a.Ptr)) {
		t.Error("Word() should be the pointer address")
	}
}

// TestAbsent_DistinctFromEmptyText verifies None never looks like "".
func TestAbsent_DistinctFromEmptyText(t *testing.T) {
	empty := TextOf("")
	absent := OptionalTextOf(nil)

	if empty.Ptr == nil {
		t.Fatal("empty text must have a non-nil pointer")
	}
	if empty.Len != 0 {
		t.Errorf("empty Len = %d, want 0", empty.Len)
	}
	if empty.Absent() {
		t.Error("empty text reported as absent")
	}

	if absent.Ptr != nil || absent.Len != 0 {
		t.Errorf("absent = (%v, %d), want (nil, 0)", absent.Ptr, absent.Len)
	}
	if !absent.Absent() {
		t.Error("absent not reported as absent")
	}
	if absent.Word() != 0 {
		t.Errorf("absent Word() = %d, want 0", absent.Word())
	}
	if absent.Word() == empty.Word() {
		t.Error("absent and empty text share a wire word")
	}

	emptyOpt := MaybeTextOf("", true)
	if emptyOpt.Absent() || emptyOpt.Ptr == nil {
		t.Error("present empty optional text must not be absent")
	}
}

// TestOptionalTextOf_Present verifies a present optional matches Text's form.
func TestOptionalTextOf_Present(t *testing.T) {
	name := "world"
	opt := OptionalTextOf(&name)
	txt := TextOf(name)

	if opt.Kind != OptionalText {
		t.Errorf("Kind = %v, want optional_text", opt.Kind)
	}
	if opt.Ptr != txt.Ptr || opt.Len != txt.Len {
		t.Error("present optional text should share Text's wire form")
	}
	if got := MaybeTextOf("x", false); !got.Absent() {
		t.Error("MaybeTextOf(_, false) should be absent")
	}
}

// TestIntegers_SignExtension verifies signed kinds are sign-extended.
func TestIntegers_SignExtension(t *testing.T) {
	tests := []struct {
		name string
		arg  Arg
		want int64
	}{
		{"int8", Int8Of(-1), -1},
		{"int16", Int16Of(math.MinInt16), math.MinInt16},
		{"int32", Int32Of(-42), -42},
		{"int64", Int64Of(math.MinInt64), math.MinInt64},
		{"int", IntOf(7), 7},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.arg.Int(); got != tt.want {
				t.Errorf("Int() = %d, want %d", got, tt.want)
			}
		})
	}

	if got := Uint8Of(255).Bits; got != 255 {
		t.Errorf("Uint8Of(255).Bits = %d", got)
	}
	if got := Uint64Of(math.MaxUint64).Word(); got != math.MaxUint64 {
		t.Errorf("Uint64Of(max).Word() = %d", got)
	}
	if BoolOf(true).Bits != 1 || BoolOf(false).Bits != 0 {
		t.Error("bool encoding should be 1/0")
	}
}

func TestArg_String(t *testing.T) {
	tests := []struct {
		arg  Arg
		want string
	}{
		{TextOf("hi"), `"hi"`},
		{Absent(), "<absent>"},
		{Int32Of(-3), "-3"},
		{Uint16Of(9), "9"},
		{BoolOf(true), "true"},
	}
	for _, tt := range tests {
		if got := tt.arg.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}

func TestMarshal(t *testing.T) {
	name := "n"
	tests := []struct {
		value any
		want  Kind
	}{
		{true, Bool},
		{int8(1), Int8},
		{int16(1), Int16},
		{int32(1), Int32},
		{int64(1), Int64},
		{1, Int64},
		{uint8(1), Uint8},
		{uint16(1), Uint16},
		{uint32(1), Uint32},
		{uint64(1), Uint64},
		{uint(1), Uint64},
		{"s", Text},
		{&name, OptionalText},
		{(*string)(nil), OptionalText},
		{TextOf("pre-built"), Text},
	}
	for _, tt := range tests {
		got, err := KindOf(tt.value)
		if err != nil {
			t.Errorf("KindOf(%T) error: %v", tt.value, err)
			continue
		}
		if got != tt.want {
			t.Errorf("KindOf(%T) = %v, want %v", tt.value, got, tt.want)
		}
	}
}

func TestMarshal_Unsupported(t *testing.T) {
	_, err := Marshal(3.14)
	if !errors.Is(err, ErrUnsupportedType) {
		t.Fatalf("expected ErrUnsupportedType, got %v", err)
	}

	_, err = MarshalAll("ok", struct{}{})
	if !errors.Is(err, ErrUnsupportedType) {
		t.Fatalf("expected ErrUnsupportedType from MarshalAll, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	kinds := []Kind{Text, OptionalText}

	if err := Validate(kinds, []Arg{TextOf("a"), Absent()}); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := Validate(kinds, []Arg{TextOf("a"), TextOf("b")}); err != nil {
		t.Errorf("optional slot should accept text: %v", err)
	}
	if err := Validate(kinds, []Arg{TextOf("a")}); !errors.Is(err, ErrArgCount) {
		t.Errorf("expected ErrArgCount, got %v", err)
	}
	if err := Validate(kinds, []Arg{Int64Of(1), Absent()}); !errors.Is(err, ErrKindMismatch) {
		t.Errorf("expected ErrKindMismatch, got %v", err)
	}
	if err := Validate([]Kind{Text}, []Arg{Absent()}); !errors.Is(err, ErrKindMismatch) {
		t.Errorf("text slot must reject optional text, got %v", err)
	}
}

func TestValidateKinds(t *testing.T) {
	if err := ValidateKinds([]Kind{Int64, Text}); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := ValidateKinds([]Kind{Text, Invalid}); !errors.Is(err, ErrInvalidKind) {
		t.Errorf("expected ErrInvalidKind, got %v", err)
	}
	if err := ValidateKinds([]Kind{Kind(200)}); !errors.Is(err, ErrInvalidKind) {
		t.Errorf("expected ErrInvalidKind for out-of-range kind, got %v", err)
	}
}

func TestKind_Size(t *testing.T) {
	if Int16.Size() != 2 || Uint32.Size() != 4 || Text.Size() != 8 || Bool.Size() != 1 {
		t.Error("unexpected kind sizes")
	}
	if Invalid.Size() != 0 {
		t.Error("invalid kind should have size 0")
	}
	if Kind(99).String() != "invalid" {
		t.Errorf("String() = %q", Kind(99).String())
	}
}
