package backend

import "errors"

// Error taxonomy shared by every layer of the runtime. Backends, the provider
// builder and the registry wrap these with detail using %w; callers match them
// with errors.Is.
var (
	// ErrBackendUnavailable indicates the native tracing library or platform is missing.
	ErrBackendUnavailable = errors.New("probes: tracing backend unavailable")

	// ErrRegistration indicates the backend rejected a provider or probe:
	// name collision, disallowed characters, limits exceeded, or an internal failure.
	ErrRegistration = errors.New("probes: registration failed")

	// ErrConfiguration indicates a mismatch between the declared probes and the
	// runtime, such as an unsupported argument kind.
	ErrConfiguration = errors.New("probes: configuration error")

	// ErrUnexpectedImplementation indicates the compiled-in backend differs from
	// the one requested through ExpectedImplementationEnv.
	ErrUnexpectedImplementation = errors.New("probes: unexpected backend implementation")
)
