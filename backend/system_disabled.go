//go:build probes_disabled

package backend

// Implementation names the compiled-in backend variant.
const Implementation = "DISABLED"

var system Backend = Noop{}
