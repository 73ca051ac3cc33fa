package health

import (
	"context"

	"github.com/jonwraymond/probes/backend"
)

// BackendChecker verifies the compiled-in backend against the implementation
// named by backend.ExpectedImplementationEnv.
type BackendChecker struct {
	b     backend.Backend
	check func() error
}

// NewBackendChecker returns a checker for b. A nil b means backend.System().
func NewBackendChecker(b backend.Backend) *BackendChecker {
	if b == nil {
		b = backend.System()
	}
	return &BackendChecker{b: b, check: backend.CheckExpected}
}

// Name returns "backend".
func (c *BackendChecker) Name() string {
	return "backend"
}

// Check reports unhealthy when the build selected a different backend than
// the one expected, and healthy otherwise.
func (c *BackendChecker) Check(ctx context.Context) Result {
	details := map[string]any{
		"implementation": backend.Implementation,
		"backend":        c.b.Name(),
		"max_args":       c.b.Limits().MaxArgs,
	}
	if err := c.check(); err != nil {
		return Unhealthy("unexpected backend implementation", err).WithDetails(details)
	}
	return Healthy("backend " + c.b.Name()).WithDetails(details)
}
