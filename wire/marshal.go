package wire

import "fmt"

// Marshal converts a Go value into its wire form.
//
// It is the dynamic counterpart of the typed constructors and is meant for
// callers that do not know argument types statically. A *string maps to
// OptionalText; any other unsupported type returns ErrUnsupportedType.
func Marshal(v any) (Arg, error) {
	switch x := v.(type) {
	case Arg:
		return x, nil
	case bool:
		return BoolOf(x), nil
	case int8:
		return Int8Of(x), nil
	case int16:
		return Int16Of(x), nil
	case int32:
		return Int32Of(x), nil
	case int64:
		return Int64Of(x), nil
	case int:
		return IntOf(x), nil
	case uint8:
		return Uint8Of(x), nil
	case uint16:
		return Uint16Of(x), nil
	case uint32:
		return Uint32Of(x), nil
	case uint64:
		return Uint64Of(x), nil
	case uint:
		return UintOf(x), nil
	case string:
		return TextOf(x), nil
	case *string:
		return OptionalTextOf(x), nil
	default:
		return Arg{}, fmt.Errorf("%w: %T", ErrUnsupportedType, v)
	}
}

// MarshalAll converts values positionally. It stops at the first unsupported value.
func MarshalAll(values ...any) ([]Arg, error) {
	args := make([]Arg, len(values))
	for i, v := range values {
		a, err := Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("argument %d: %w", i, err)
		}
		args[i] = a
	}
	return args, nil
}

// KindOf returns the Kind a Go value marshals to.
func KindOf(v any) (Kind, error) {
	a, err := Marshal(v)
	if err != nil {
		return Invalid, err
	}
	return a.Kind, nil
}

// ValidateKinds checks that every kind in a probe signature is supported.
func ValidateKinds(kinds []Kind) error {
	for i, k := range kinds {
		if !k.Valid() {
			return fmt.Errorf("%w: argument %d has kind %d", ErrInvalidKind, i, uint8(k))
		}
	}
	return nil
}

// Validate checks args against a probe signature positionally.
func Validate(kinds []Kind, args []Arg) error {
	if len(kinds) != len(args) {
		return fmt.Errorf("%w: want %d, got %d", ErrArgCount, len(kinds), len(args))
	}
	for i, k := range kinds {
		if !k.Accepts(args[i].Kind) {
			return fmt.Errorf("%w: argument %d is %s, want %s", ErrKindMismatch, i, args[i].Kind, k)
		}
	}
	return nil
}
