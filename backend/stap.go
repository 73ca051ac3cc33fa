//go:build !probes_disabled && stapsdt && linux && amd64 && cgo

package backend

/*
#cgo LDFLAGS: -lstapsdt -lelf -ldl
#include <stdint.h>
#include <stdlib.h>
#include <libstapsdt.h>

static SDTProbe_t *probes_add_probe(SDTProvider_t *p, const char *name, int argc, const int *t) {
	switch (argc) {
	case 0: return providerAddProbe(p, name, 0);
	case 1: return providerAddProbe(p, name, 1, t[0]);
	case 2: return providerAddProbe(p, name, 2, t[0], t[1]);
	case 3: return providerAddProbe(p, name, 3, t[0], t[1], t[2]);
	case 4: return providerAddProbe(p, name, 4, t[0], t[1], t[2], t[3]);
	case 5: return providerAddProbe(p, name, 5, t[0], t[1], t[2], t[3], t[4]);
	case 6: return providerAddProbe(p, name, 6, t[0], t[1], t[2], t[3], t[4], t[5]);
	default: return NULL;
	}
}

static void probes_fire(SDTProbe_t *probe, int argc, const uint64_t *a) {
	switch (argc) {
	case 0: probeFire(probe); break;
	case 1: probeFire(probe, a[0]); break;
	case 2: probeFire(probe, a[0], a[1]); break;
	case 3: probeFire(probe, a[0], a[1], a[2]); break;
	case 4: probeFire(probe, a[0], a[1], a[2], a[3]); break;
	case 5: probeFire(probe, a[0], a[1], a[2], a[3], a[4]); break;
	case 6: probeFire(probe, a[0], a[1], a[2], a[3], a[4], a[5]); break;
	}
}

static const char *probes_provider_error(SDTProvider_t *p) {
	return p->error;
}
*/
import "C"

import (
	"fmt"
	"unsafe"

	"github.com/jonwraymond/probes/wire"
)

// Stap registers USDT probes through libstapsdt.
type Stap struct{}

// NewStap returns the libstapsdt backend.
func NewStap() Stap { return Stap{} }

type stapProvider struct {
	p *C.SDTProvider_t
}

type stapProbe struct {
	p     *C.SDTProbe_t
	kinds []wire.Kind
}

// Name returns "stap".
func (Stap) Name() string { return "stap" }

// Limits reports the libstapsdt argument limit.
func (Stap) Limits() Limits { return Limits{MaxArgs: DefaultMaxArgs} }

// CreateProvider allocates a libstapsdt provider.
func (Stap) CreateProvider(name string) (ProviderHandle, error) {
	cname := C.CString(name)
	defer C.free(unsafe.Pointer(cname))

	p := C.providerInit(cname)
	if p == nil {
		return nil, fmt.Errorf("%w: libstapsdt could not create provider %q", ErrBackendUnavailable, name)
	}
	return &stapProvider{p: p}, nil
}

// RegisterProbe adds a probe with one native argument type per kind.
func (Stap) RegisterProbe(h ProviderHandle, name string, kinds []wire.Kind) (ProbeHandle, error) {
	sp, ok := h.(*stapProvider)
	if !ok || sp == nil {
		return nil, fmt.Errorf("%w: foreign provider handle", ErrRegistration)
	}
	if len(kinds) > DefaultMaxArgs {
		return nil, fmt.Errorf("%w: probe %q has %d arguments, limit is %d", ErrRegistration, name, len(kinds), DefaultMaxArgs)
	}

	var types [DefaultMaxArgs]C.int
	for i, k := range kinds {
		types[i] = stapArgType(k)
	}

	cname := C.CString(name)
	defer C.free(unsafe.Pointer(cname))

	probe := C.probes_add_probe(sp.p, cname, C.int(len(kinds)), &types[0])
	if probe == nil {
		return nil, fmt.Errorf("%w: libstapsdt rejected probe %q: %s", ErrRegistration, name, providerError(sp.p))
	}
	return &stapProbe{p: probe, kinds: append([]wire.Kind(nil), kinds...)}, nil
}

// Load writes the provider's ELF stub and maps it into the process.
func (Stap) Load(h ProviderHandle) error {
	sp, ok := h.(*stapProvider)
	if !ok || sp == nil {
		return fmt.Errorf("%w: foreign provider handle", ErrRegistration)
	}
	if C.providerLoad(sp.p) != 0 {
		return fmt.Errorf("%w: libstapsdt could not load provider: %s", ErrRegistration, providerError(sp.p))
	}
	return nil
}

// IsActive reports whether a tracer has armed the probe's semaphore.
func (Stap) IsActive(h ProbeHandle) bool {
	sp, ok := h.(*stapProbe)
	return ok && sp != nil && C.probeIsEnabled(sp.p) != 0
}

// Fire copies text arguments into NUL-terminated C strings for the duration of
// the call; tools read them with str().
func (Stap) Fire(h ProbeHandle, args []wire.Arg) {
	sp, ok := h.(*stapProbe)
	if !ok || sp == nil || len(args) > DefaultMaxArgs {
		return
	}

	var words [DefaultMaxArgs]C.uint64_t
	var cstrs [DefaultMaxArgs]*C.char
	for i, a := range args {
		switch {
		case a.Absent():
			words[i] = 0
		case a.Kind.IsText():
			cstrs[i] = C.CString(a.Text())
			words[i] = C.uint64_t(uintptr(unsafe.Pointer(cstrs[i])))
		default:
			words[i] = C.uint64_t(a.Bits)
		}
	}

	C.probes_fire(sp.p, C.int(len(args)), &words[0])

	for _, cs := range cstrs {
		if cs != nil {
			C.free(unsafe.Pointer(cs))
		}
	}
}

// Release unloads and frees the provider.
func (Stap) Release(h ProviderHandle) {
	sp, ok := h.(*stapProvider)
	if !ok || sp == nil || sp.p == nil {
		return
	}
	C.providerUnload(sp.p)
	C.providerDestroy(sp.p)
	sp.p = nil
}

func providerError(p *C.SDTProvider_t) string {
	msg := C.probes_provider_error(p)
	if msg == nil {
		return "unknown error"
	}
	return C.GoString(msg)
}

// stapArgType maps a wire kind onto libstapsdt's ArgType_t: the byte width,
// negated for signed kinds. Text is passed as a 64-bit pointer.
func stapArgType(k wire.Kind) C.int {
	size := C.int(k.Size())
	if k.Signed() {
		return -size
	}
	return size
}

var _ Backend = Stap{}
