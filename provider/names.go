package provider

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/jonwraymond/probes/backend"
)

// Provider names are process-global in every native backend, and a collision
// there is undefined. The table turns it into a registration error instead.
var names = struct {
	sync.Mutex
	taken map[string]struct{}
}{taken: make(map[string]struct{})}

func reserve(name string) error {
	names.Lock()
	defer names.Unlock()
	if _, ok := names.taken[name]; ok {
		return fmt.Errorf("%w: provider %q already registered in this process", backend.ErrRegistration, name)
	}
	names.taken[name] = struct{}{}
	return nil
}

func release(name string) {
	names.Lock()
	delete(names.taken, name)
	names.Unlock()
}

// Registered returns the names of every provider built in this process, sorted.
func Registered() []string {
	names.Lock()
	defer names.Unlock()
	out := make([]string, 0, len(names.taken))
	for n := range names.taken {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

var (
	errEmptyName = errors.New("name is empty")
	errLeadDigit = errors.New("name starts with a digit")
)

// validName accepts identifiers of ASCII letters, digits and underscores.
// USDT consumers such as bpftrace reject '.' and ':' in provider and probe names.
func validName(name string) error {
	if name == "" {
		return errEmptyName
	}
	for i := 0; i < len(name); i++ {
		c := name[i]
		switch {
		case c == '_', 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z':
		case '0' <= c && c <= '9':
			if i == 0 {
				return errLeadDigit
			}
		default:
			return fmt.Errorf("disallowed character %q", c)
		}
	}
	return nil
}
