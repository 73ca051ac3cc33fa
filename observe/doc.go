// Package observe instruments the probe runtime itself.
//
// Probe fires are never observed here; they go straight to the tracing
// backend. What observe covers is the one-time work around them: provider
// initialization spans, init counters and durations, and structured log lines
// when a provider registers or fails to. The registry wraps every
// initialization with a Middleware built from an Observer.
package observe
