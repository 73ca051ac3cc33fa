// Package registry holds process-wide providers that initialize on first use.
//
// Declaring a provider is cheap and happens at package init time:
//
//	var simpleProbes = registry.New("simple_probes", func(b *provider.Builder) {
//		b.AddProbe("hello", wire.Text)
//	})
//
// The native registration runs exactly once, the first time any caller needs
// the provider. Its outcome is cached for the rest of the process: a provider
// that failed stays failed, every probe on it is a no-op, and every caller
// sees the same error value. Nothing is retried.
//
// Initialization is traced, counted and logged through the observe package.
// Each Lazy is also a health.Checker so failures can be surfaced on /health.
package registry
