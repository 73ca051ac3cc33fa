//go:build !probes_disabled && stapsdt && linux && amd64 && cgo

package backend

// Implementation names the compiled-in backend variant.
const Implementation = "stap"

var system Backend = NewStap()
