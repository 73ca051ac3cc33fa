// Package backend defines the narrow interface between the probe runtime and a
// native tracing library, together with its two build-time variants.
//
// # Variants
//
// Exactly one variant is compiled in and returned by System:
//
//   - stap: libstapsdt-backed USDT probes, visible to bpftrace, tplist and
//     SystemTap. Selected with the stapsdt build tag on linux/amd64 with cgo.
//   - noop: every operation succeeds trivially and no probe is ever active.
//     Used when native support is missing.
//   - DISABLED: the noop backend, selected explicitly with the
//     probes_disabled build tag.
//
// The Implementation constant names the compiled-in variant. Setting
// PROBES_EXPECTED_IMPL lets CI builds assert which variant they produced.
//
// # Contract
//
// Backends never panic. Handles returned by CreateProvider and RegisterProbe
// are owned by the caller that created them and are never shared between two
// providers. IsActive is a cheap synchronous read and must be queried on every
// fire; Fire performs no I/O and reports no errors.
package backend
