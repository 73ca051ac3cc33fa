package backend

import (
	"fmt"
	"os"

	"github.com/jonwraymond/probes/wire"
)

// ProviderHandle is an opaque backend resource for one provider.
type ProviderHandle any

// ProbeHandle is an opaque backend resource for one registered probe. It is
// owned by the provider it was registered with.
type ProbeHandle any

// Limits describes what a backend can register.
type Limits struct {
	// MaxProbes is the maximum number of probes per provider. Zero means unbounded.
	MaxProbes int

	// MaxArgs is the maximum number of arguments per probe.
	MaxArgs int
}

// DefaultMaxArgs is the argument limit of the native USDT backend.
const DefaultMaxArgs = 6

// Backend is the capability set of a tracing implementation.
//
// Contract:
//   - Concurrency: IsActive and Fire must be safe for concurrent use once the
//     provider is loaded. Creation calls are serialized by the caller.
//   - Errors: failures are reported as ErrBackendUnavailable or ErrRegistration;
//     nothing panics.
//   - Ownership: the caller owns every handle it receives and releases a
//     provider handle at most once.
type Backend interface {
	// Name identifies the implementation, e.g. "stap" or "noop".
	Name() string

	// Limits reports registration limits.
	Limits() Limits

	// CreateProvider allocates a native provider named name.
	CreateProvider(name string) (ProviderHandle, error)

	// RegisterProbe adds a probe with the given ordered argument kinds.
	RegisterProbe(p ProviderHandle, name string, kinds []wire.Kind) (ProbeHandle, error)

	// Load makes the provider and its probes visible to external tools.
	Load(p ProviderHandle) error

	// IsActive reports whether a tool is currently attached to the probe.
	IsActive(probe ProbeHandle) bool

	// Fire emits the probe with packed wire arguments.
	Fire(probe ProbeHandle, args []wire.Arg)

	// Release frees every native resource held by the provider.
	Release(p ProviderHandle)
}

// ExpectedImplementationEnv names the environment variable used by CI builds
// to assert which backend variant was compiled in.
const ExpectedImplementationEnv = "PROBES_EXPECTED_IMPL"

// CheckExpected compares Implementation with ExpectedImplementationEnv.
// An unset variable means no check is performed.
func CheckExpected() error {
	expected, ok := os.LookupEnv(ExpectedImplementationEnv)
	if !ok {
		return nil
	}
	if expected != Implementation {
		return fmt.Errorf("%w: compiled %q, expected %q", ErrUnexpectedImplementation, Implementation, expected)
	}
	return nil
}

// System returns the backend compiled into this binary.
func System() Backend {
	return system
}
