package viewer

import (
	"errors"
	"fmt"
	"sync"
)

// ErrClosed is returned when acquiring on a lifecycle that was already
// closed.
var ErrClosed = errors.New("viewer closed")

type release struct {
	name string
	fn   func() error
}

// Lifecycle owns everything a viewer acquires while it is open. Resources
// are registered together with their release function and released exactly
// once, in reverse order, by Close.
type Lifecycle struct {
	mu       sync.Mutex
	releases []release
	closed   bool
}

// Acquire registers a resource. If the lifecycle is already closed the
// release runs immediately and ErrClosed is returned.
func (l *Lifecycle) Acquire(name string, fn func() error) error {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		if fn != nil {
			_ = fn()
		}
		return fmt.Errorf("acquire %s: %w", name, ErrClosed)
	}
	l.releases = append(l.releases, release{name: name, fn: fn})
	l.mu.Unlock()
	return nil
}

// Held returns the names of the resources not yet released.
func (l *Lifecycle) Held() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]string, len(l.releases))
	for i, r := range l.releases {
		out[i] = r.name
	}
	return out
}

// Closed reports whether Close has run.
func (l *Lifecycle) Closed() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.closed
}

// Close releases every resource in reverse acquisition order. Later calls
// are no-ops.
func (l *Lifecycle) Close() error {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return nil
	}
	l.closed = true
	releases := l.releases
	l.releases = nil
	l.mu.Unlock()

	var errs []error
	for i := len(releases) - 1; i >= 0; i-- {
		r := releases[i]
		if r.fn == nil {
			continue
		}
		if err := r.fn(); err != nil {
			errs = append(errs, fmt.Errorf("release %s: %w", r.name, err))
		}
	}
	return errors.Join(errs...)
}
