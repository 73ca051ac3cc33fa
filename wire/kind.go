package wire

// Kind identifies the semantic type of a probe argument.
type Kind uint8

const (
	// Invalid is the zero Kind; it is never accepted by a backend.
	Invalid Kind = iota
	Bool
	Int8
	Int16
	Int32
	Int64
	Uint8
	Uint16
	Uint32
	Uint64
	// Text is a string passed as a (pointer, length) pair.
	Text
	// OptionalText is a string that may be absent. Absent values use a nil pointer.
	OptionalText
)

var kindNames = [...]string{
	Invalid:      "invalid",
	Bool:         "bool",
	Int8:         "int8",
	Int16:        "int16",
	Int32:        "int32",
	Int64:        "int64",
	Uint8:        "uint8",
	Uint16:       "uint16",
	Uint32:       "uint32",
	Uint64:       "uint64",
	Text:         "text",
	OptionalText: "optional_text",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "invalid"
}

// Valid reports whether k is a supported argument kind.
func (k Kind) Valid() bool {
	return k > Invalid && k <= OptionalText
}

// Size returns the native width of the kind in bytes. Text kinds are pointer sized.
func (k Kind) Size() int {
	switch k {
	case Bool, Int8, Uint8:
		return 1
	case Int16, Uint16:
		return 2
	case Int32, Uint32:
		return 4
	case Int64, Uint64, Text, OptionalText:
		return 8
	default:
		return 0
	}
}

// Signed reports whether the kind is a signed integer.
func (k Kind) Signed() bool {
	switch k {
	case Int8, Int16, Int32, Int64:
		return true
	default:
		return false
	}
}

// IsText reports whether the kind carries a string.
func (k Kind) IsText() bool {
	return k == Text || k == OptionalText
}

// Accepts reports whether an argument of kind arg may fill a slot declared as k.
// An OptionalText slot accepts plain Text arguments.
func (k Kind) Accepts(arg Kind) bool {
	if k == arg {
		return true
	}
	return k == OptionalText && arg == Text
}
