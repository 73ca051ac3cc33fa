package registry

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/google/go-cmp/cmp"
	"golang.org/x/sync/errgroup"

	"github.com/jonwraymond/probes/backend"
	"github.com/jonwraymond/probes/backend/backendtest"
	"github.com/jonwraymond/probes/observe"
	"github.com/jonwraymond/probes/provider"
	"github.com/jonwraymond/probes/wire"
)

var nameSeq atomic.Int64

func uniqueName(prefix string) string {
	return fmt.Sprintf("%s_%d", prefix, nameSeq.Add(1))
}

func defineSimple(b *provider.Builder) {
	b.AddProbe("hello", wire.Text).
		AddProbe("greeting", wire.Text, wire.Text).
		AddProbe("optional_greeting", wire.Text, wire.OptionalText)
}

// TestLazy_ConcurrentFirstUse verifies exactly one initialization and one
// shared error value under concurrent first use.
func TestLazy_ConcurrentFirstUse(t *testing.T) {
	rec := backendtest.New()
	rec.CreateErr = fmt.Errorf("%w: no libstapsdt", backend.ErrBackendUnavailable)
	l := New(uniqueName("concurrent"), defineSimple, WithBackend(rec))

	const callers = 64
	errs := make([]error, callers)
	var g errgroup.Group
	for i := 0; i < callers; i++ {
		g.Go(func() error {
			errs[i] = l.Init()
			return nil
		})
	}
	_ = g.Wait()

	if rec.Creates() != 1 {
		t.Fatalf("CreateProvider called %d times, want 1", rec.Creates())
	}
	for i, err := range errs {
		if err != errs[0] {
			t.Fatalf("caller %d saw a different error value: %v vs %v", i, err, errs[0])
		}
	}
	if !errors.Is(errs[0], backend.ErrBackendUnavailable) {
		t.Errorf("expected ErrBackendUnavailable, got %v", errs[0])
	}
}

// TestLazy_ConcurrentFirstUseSuccess verifies concurrent callers share one
// built provider.
func TestLazy_ConcurrentFirstUseSuccess(t *testing.T) {
	rec := backendtest.New()
	l := New(uniqueName("concurrent_ok"), defineSimple, WithBackend(rec))

	const callers = 64
	got := make([]*provider.Provider, callers)
	var g errgroup.Group
	for i := 0; i < callers; i++ {
		g.Go(func() error {
			got[i] = l.Get()
			return nil
		})
	}
	_ = g.Wait()

	if rec.Creates() != 1 {
		t.Fatalf("CreateProvider called %d times, want 1", rec.Creates())
	}
	if got[0] == nil {
		t.Fatal("expected a provider")
	}
	for i, p := range got {
		if p != got[0] {
			t.Fatalf("caller %d saw a different provider", i)
		}
	}
	if l.State() != Registered {
		t.Errorf("state = %v, want Registered", l.State())
	}
}

// panickingLoad is a recording backend whose Load panics.
type panickingLoad struct {
	*backendtest.Recorder
}

func (panickingLoad) Load(backend.ProviderHandle) error {
	panic("memfd_create exploded")
}

// TestLazy_LoadPanicFails verifies a backend panic during first use settles
// into a cached failure and releases the name.
func TestLazy_LoadPanicFails(t *testing.T) {
	name := uniqueName("load_panic")
	l := New(name, defineSimple, WithBackend(panickingLoad{backendtest.New()}))

	err := l.Init()
	if !errors.Is(err, backend.ErrRegistration) {
		t.Fatalf("expected ErrRegistration, got %v", err)
	}
	if again := l.Init(); again != err {
		t.Errorf("second Init returned %v, want the cached %v", again, err)
	}
	if l.InitError() != err {
		t.Errorf("InitError = %v, want %v", l.InitError(), err)
	}
	if l.State() != Failed {
		t.Errorf("state = %v, want Failed", l.State())
	}
	if l.Get() != nil {
		t.Error("expected nil provider after a panic")
	}

	retry := New(name, defineSimple, WithBackend(backendtest.New()))
	if err := retry.Init(); err != nil {
		t.Errorf("name should be free after a panic: %v", err)
	}
}

// TestLazy_FailureIsNeverRetried verifies a failed provider stays failed and inert.
func TestLazy_FailureIsNeverRetried(t *testing.T) {
	rec := backendtest.New()
	rec.LoadErr = errors.New("memfd unavailable")
	l := New(uniqueName("failed"), defineSimple, WithBackend(rec))

	if l.State() != Uninitialized || l.InitError() != nil {
		t.Fatalf("fresh Lazy: state %v, err %v", l.State(), l.InitError())
	}

	first := l.Init()
	if !errors.Is(first, backend.ErrRegistration) {
		t.Fatalf("expected ErrRegistration, got %v", first)
	}
	rec.LoadErr = nil
	if second := l.Init(); second != first {
		t.Errorf("second Init returned %v, want the cached %v", second, first)
	}
	if l.InitError() != first {
		t.Errorf("InitError() = %v, want %v", l.InitError(), first)
	}
	if rec.Creates() != 1 || rec.Loads() != 1 || rec.Releases() != 1 {
		t.Errorf("create/load/release = %d/%d/%d, want 1/1/1", rec.Creates(), rec.Loads(), rec.Releases())
	}
	if l.State() != Failed {
		t.Errorf("State() = %v, want failed", l.State())
	}
	if l.Get() != nil {
		t.Error("failed Lazy should return a nil provider")
	}

	probe := l.Probe(0)
	if probe.Enabled() {
		t.Error("probe on a failed provider reported enabled")
	}
	probe.Fire(wire.TextOf("world"))
	if len(rec.Calls()) != 0 {
		t.Errorf("fires reached the backend: %+v", rec.Calls())
	}
}

// TestLazy_InitErrorDoesNotInitialize verifies InitError is a pure query.
func TestLazy_InitErrorDoesNotInitialize(t *testing.T) {
	rec := backendtest.New()
	l := New(uniqueName("query"), defineSimple, WithBackend(rec))

	if err := l.InitError(); err != nil {
		t.Fatalf("InitError() = %v, want nil", err)
	}
	if rec.Creates() != 0 || l.State() != Uninitialized {
		t.Errorf("InitError triggered initialization")
	}
}

// TestLazy_SimpleProbes walks the hello/greeting/optional_greeting scenario.
func TestLazy_SimpleProbes(t *testing.T) {
	rec := backendtest.New()
	name := uniqueName("simple_probes")
	rec.SetActive(name, "greeting", true)
	rec.SetActive(name, "optional_greeting", true)

	l := New(name, defineSimple, WithBackend(rec))

	hello, greeting, optional := l.Probe(0), l.Probe(1), l.Probe(2)
	if l.State() != Registered || l.InitError() != nil {
		t.Fatalf("state %v, err %v", l.State(), l.InitError())
	}

	built := false
	hello.FireFunc(func() []wire.Arg {
		built = true
		return []wire.Arg{wire.TextOf("world")}
	})
	if built {
		t.Error("hello arguments built while no tool is attached")
	}

	greeting.Fire(wire.TextOf("hi"), wire.TextOf("world"))
	optional.Fire(wire.TextOf("hello"), wire.MaybeTextOf("", false))

	want := []backendtest.Call{
		{Provider: name, Probe: "greeting", Args: []backendtest.FiredArg{backendtest.Text("hi"), backendtest.Text("world")}},
		{Provider: name, Probe: "optional_greeting", Args: []backendtest.FiredArg{backendtest.Text("hello"), backendtest.Absent()}},
	}
	if diff := cmp.Diff(want, rec.Calls()); diff != "" {
		t.Errorf("fired calls mismatch (-want +got):\n%s", diff)
	}
	if rec.Creates() != 1 {
		t.Errorf("CreateProvider called %d times", rec.Creates())
	}
}

// TestLazy_DefinePanics verifies a panicking declaration fails the provider instead of the host.
func TestLazy_DefinePanics(t *testing.T) {
	rec := backendtest.New()
	l := New(uniqueName("panics"), func(b *provider.Builder) {
		panic("bad declaration")
	}, WithBackend(rec))

	err := l.Init()
	if !errors.Is(err, backend.ErrConfiguration) {
		t.Fatalf("expected ErrConfiguration, got %v", err)
	}
	if !strings.Contains(err.Error(), "bad declaration") {
		t.Errorf("panic value missing from %q", err)
	}
	if rec.Creates() != 0 {
		t.Error("backend touched after a panicking declaration")
	}
}

// TestLazy_NameCollision verifies two declarations of one name cannot both register.
func TestLazy_NameCollision(t *testing.T) {
	name := uniqueName("collide")
	first := New(name, defineSimple, WithBackend(backendtest.New()))
	second := New(name, defineSimple, WithBackend(backendtest.New()))

	if err := first.Init(); err != nil {
		t.Fatalf("first Init: %v", err)
	}
	if err := second.Init(); !errors.Is(err, backend.ErrRegistration) {
		t.Fatalf("expected ErrRegistration, got %v", err)
	}
	if l, ok := Lookup(name); !ok || l != first {
		t.Error("Lookup should return the first declaration")
	}
}

// TestLazy_Observed verifies initialization emits one structured log line.
func TestLazy_Observed(t *testing.T) {
	var logs bytes.Buffer
	obs, err := observe.NewObserver(context.Background(), observe.Config{
		ServiceName: "registry-test",
		Logging:     observe.LoggingConfig{Enabled: true, Level: "info"},
		LogOutput:   &logs,
	})
	if err != nil {
		t.Fatalf("NewObserver: %v", err)
	}

	name := uniqueName("observed")
	l := New(name, defineSimple, WithBackend(backendtest.New()), WithObserver(obs))
	if err := l.Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}

	out := logs.String()
	if strings.Count(out, "\n") != 1 {
		t.Fatalf("expected one log line, got %q", out)
	}
	for _, want := range []string{`"message":"provider registered"`, `"provider.name":"` + name + `"`, `"provider.backend":"recorder"`} {
		if !strings.Contains(out, want) {
			t.Errorf("log line missing %s: %s", want, out)
		}
	}
}

func TestSetObserver(t *testing.T) {
	var logs bytes.Buffer
	obs, err := observe.NewObserver(context.Background(), observe.Config{
		ServiceName: "registry-test",
		Logging:     observe.LoggingConfig{Enabled: true, Level: "warn"},
		LogOutput:   &logs,
	})
	if err != nil {
		t.Fatalf("NewObserver: %v", err)
	}
	SetObserver(obs)
	t.Cleanup(func() { SetObserver(nil) })

	rec := backendtest.New()
	rec.CreateErr = backend.ErrBackendUnavailable
	_ = New(uniqueName("default_observed"), defineSimple, WithBackend(rec)).Init()

	if !strings.Contains(logs.String(), "provider initialization failed; probes disabled") {
		t.Errorf("expected a warning from the default observer, got %q", logs.String())
	}
}

func TestState_String(t *testing.T) {
	tests := map[State]string{
		Uninitialized: "uninitialized",
		Initializing:  "initializing",
		Registered:    "registered",
		Failed:        "failed",
		State(9):      "unknown",
	}
	for s, want := range tests {
		if got := s.String(); got != want {
			t.Errorf("State(%d).String() = %q, want %q", int32(s), got, want)
		}
	}
}
