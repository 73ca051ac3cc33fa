package registry

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"
)

var index struct {
	sync.Mutex
	all []*Lazy
}

func add(l *Lazy) {
	index.Lock()
	index.all = append(index.all, l)
	index.Unlock()
}

// All returns every Lazy created in this process, in creation order.
func All() []*Lazy {
	index.Lock()
	defer index.Unlock()
	return append([]*Lazy(nil), index.all...)
}

// Lookup returns the first Lazy declared under name.
func Lookup(name string) (*Lazy, bool) {
	index.Lock()
	defer index.Unlock()
	for _, l := range index.all {
		if l.name == name {
			return l, true
		}
	}
	return nil, false
}

// InitAll initializes every indexed provider concurrently and joins their
// errors. Failures do not stop the others.
func InitAll(ctx context.Context) error {
	all := All()
	errs := make([]error, len(all))

	var g errgroup.Group
	for i, l := range all {
		g.Go(func() error {
			if err := l.InitContext(ctx); err != nil {
				errs[i] = fmt.Errorf("%s: %w", l.name, err)
			}
			return nil
		})
	}
	_ = g.Wait()

	return errors.Join(errs...)
}
