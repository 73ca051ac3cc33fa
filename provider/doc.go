// Package provider builds tracing providers and fires their probes.
//
// A provider is declared with a Builder, one AddProbe call per probe in
// declaration order, and registered with Build:
//
//	p, err := provider.NewBuilder(nil).
//		AddProbe("hello", wire.Text).
//		AddProbe("greeting", wire.Text, wire.Text).
//		Build("simple_probes")
//
// Build is all-or-nothing. Provider names must be unique within the process and
// consist of ASCII letters, digits and underscores.
//
// Firing is two-phase: Enabled asks the backend whether a tool is attached,
// and only then are arguments built and handed to the backend. Neither phase
// locks, allocates on the inactive path, or reports errors.
package provider
