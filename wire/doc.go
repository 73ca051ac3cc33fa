// Package wire converts probe arguments into the fixed representation handed
// to a tracing backend.
//
// Every supported argument kind maps to a single machine word on the native
// side: integers are passed by value and text is passed as a pointer to the
// string bytes. The Go side additionally keeps the text length so that
// in-process backends can recover the string without scanning for a
// terminator.
//
// Constructors never allocate and never fail:
//
//	args := []wire.Arg{wire.TextOf("hi"), wire.MaybeTextOf(name, ok)}
//
// An absent OptionalText uses a nil pointer; an empty Text always has a
// non-nil pointer and a zero length, so the two are never confused.
package wire
