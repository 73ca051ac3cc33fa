package wire

import "errors"

var (
	// ErrUnsupportedType indicates a Go value has no wire representation.
	ErrUnsupportedType = errors.New("wire: unsupported argument type")

	// ErrArgCount indicates the number of arguments does not match the probe signature.
	ErrArgCount = errors.New("wire: argument count mismatch")

	// ErrKindMismatch indicates an argument kind does not match its declared slot.
	ErrKindMismatch = errors.New("wire: argument kind mismatch")

	// ErrInvalidKind indicates a Kind outside the supported set.
	ErrInvalidKind = errors.New("wire: invalid argument kind")
)
