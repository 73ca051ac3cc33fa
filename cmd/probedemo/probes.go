package main

import (
	"github.com/jonwraymond/probes/provider"
	"github.com/jonwraymond/probes/registry"
	"github.com/jonwraymond/probes/wire"
)

// simpleProbes is what the probe declaration generator emits for
//
//	provider simple_probes {
//		probe hello(who: text)
//		probe greeting(greeting: text, name: text)
//		probe optional_greeting(greeting: text, name: text?)
//	}
//
// Probe indexes are fixed at generation time, and arguments are only
// converted inside the Enabled guard.
type simpleProbes struct {
	lazy *registry.Lazy
}

const (
	simpleProbesHello = iota
	simpleProbesGreeting
	simpleProbesOptionalGreeting
)

func newSimpleProbes(opts ...registry.Option) *simpleProbes {
	return &simpleProbes{lazy: registry.New("simple_probes", func(b *provider.Builder) {
		b.AddProbe("hello", wire.Text)
		b.AddProbe("greeting", wire.Text, wire.Text)
		b.AddProbe("optional_greeting", wire.Text, wire.OptionalText)
	}, opts...)}
}

// Init registers the provider now instead of at the first fire.
func (s *simpleProbes) Init() error {
	return s.lazy.Init()
}

func (s *simpleProbes) Hello(who string) {
	if p := s.lazy.Probe(simpleProbesHello); p.Enabled() {
		p.Fire(wire.TextOf(who))
	}
}

func (s *simpleProbes) Greeting(greeting, name string) {
	if p := s.lazy.Probe(simpleProbesGreeting); p.Enabled() {
		p.Fire(wire.TextOf(greeting), wire.TextOf(name))
	}
}

func (s *simpleProbes) OptionalGreeting(greeting string, name *string) {
	if p := s.lazy.Probe(simpleProbesOptionalGreeting); p.Enabled() {
		p.Fire(wire.TextOf(greeting), wire.OptionalTextOf(name))
	}
}
