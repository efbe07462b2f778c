package viewer

import (
	"context"
	"errors"
	"log"
	"sync"
)

// State is the load state of a viewer.
type State string

const (
	StateLoading State = "loading"
	StateReady   State = "ready"
	StateError   State = "error"
)

var (
	// ErrNotReady is returned by step operations before a successful load.
	ErrNotReady = errors.New("viewer not ready")
	// ErrAlreadyStarted is returned when a session is asked to load twice.
	ErrAlreadyStarted = errors.New("viewer already started")
)

// Status is a snapshot of a session for rendering.
type Status struct {
	State    State  `json:"state"`
	Loading  bool   `json:"loading"`
	Progress int    `json:"progress"`
	Known    bool   `json:"progressKnown"`
	Error    string `json:"error,omitempty"`
	Orbit    Orbit  `json:"orbit"`
	Src      string `json:"src"`
}

// Session is one open viewer. It loads at most one model over its
// lifetime; Close releases everything it acquired.
type Session struct {
	src      string
	progress Progress
	events   *Dispatcher
	lc       Lifecycle

	mu       sync.Mutex
	started  bool
	state    State
	err      error
	model    *Model
	orbit    Orbit
	def      Orbit
	onReady  []func(*Model)
	done     chan struct{}
	doneOnce sync.Once
}

// NewSession prepares a viewer for src. Nothing is loaded until Start.
func NewSession(src string) *Session {
	return &Session{
		src:    src,
		events: NewDispatcher(),
		state:  StateLoading,
		done:   make(chan struct{}),
	}
}

// Src returns the model reference the session was created for.
func (s *Session) Src() string {
	return s.src
}

// Events returns the dispatcher listeners of this viewer register on.
func (s *Session) Events() *Dispatcher {
	return s.events
}

// Lifecycle returns the session's resource scope.
func (s *Session) Lifecycle() *Lifecycle {
	return &s.lc
}

// OnReady registers fn to run once the model has loaded. It runs
// immediately if the session is already ready.
func (s *Session) OnReady(fn func(*Model)) {
	s.mu.Lock()
	if s.state == StateReady {
		m := s.model
		s.mu.Unlock()
		fn(m)
		return
	}
	s.onReady = append(s.onReady, fn)
	s.mu.Unlock()
}

// Start begins loading in the background. The load is cancelled when the
// session is closed.
func (s *Session) Start(ctx context.Context, l Loader) error {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return ErrAlreadyStarted
	}
	s.started = true
	s.mu.Unlock()

	loadCtx, cancel := context.WithCancel(ctx)
	if err := s.lc.Acquire("load", func() error {
		cancel()
		return nil
	}); err != nil {
		s.mu.Lock()
		s.state = StateError
		s.err = err
		s.mu.Unlock()
		s.finish()
		return err
	}

	go s.load(loadCtx, l)
	return nil
}

func (s *Session) load(ctx context.Context, l Loader) {
	defer s.finish()

	model, err := Load(ctx, l, s.src, &s.progress, nil)
	if ctx.Err() != nil {
		// closed while loading; nobody is looking at this session any more
		return
	}
	if err != nil {
		log.Printf("[VIEWER] load %s failed: %v", s.src, err)
		s.mu.Lock()
		s.state = StateError
		s.err = err
		s.mu.Unlock()
		return
	}

	def := DefaultOrbit(model.Bounds.Radius())
	s.mu.Lock()
	s.state = StateReady
	s.err = nil
	s.model = model
	s.def = def
	s.orbit = def
	callbacks := s.onReady
	s.onReady = nil
	s.mu.Unlock()

	log.Printf("[VIEWER] loaded %s (%d bytes, radius %.2fm)", s.src, model.Size, def.Radius)
	for _, fn := range callbacks {
		fn(model)
	}
}

func (s *Session) finish() {
	s.doneOnce.Do(func() { close(s.done) })
}

// Done is closed when the load has finished, failed or been cancelled.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// Wait blocks until the load finishes or ctx ends.
func (s *Session) Wait(ctx context.Context) error {
	select {
	case <-s.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Step applies a camera step. It fails with ErrNotReady unless the model
// has loaded.
func (s *Session) Step(dir Direction) (Orbit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateReady {
		return s.orbit, ErrNotReady
	}
	s.orbit = s.orbit.Step(dir, s.def)
	return s.orbit, nil
}

// Orbit returns the current orbit.
func (s *Session) Orbit() Orbit {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.orbit
}

// Model returns the loaded model, or nil before a successful load.
func (s *Session) Model() *Model {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.model
}

// Status returns a snapshot of the session.
func (s *Session) Status() Status {
	pct, known := s.progress.Percent()
	s.mu.Lock()
	defer s.mu.Unlock()
	st := Status{
		State:    s.state,
		Loading:  s.state == StateLoading,
		Progress: pct,
		Known:    known,
		Orbit:    s.orbit,
		Src:      s.src,
	}
	if s.err != nil {
		st.Error = s.err.Error()
	}
	return st
}

// Config returns the renderer configuration for the current state. Before
// the model is ready the default relative orbit is used.
func (s *Session) Config(src, alt string) Config {
	cfg := DefaultConfig(src, alt)
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateReady {
		cfg.CameraOrbit = s.orbit.CameraOrbit()
	}
	return cfg
}

// Close cancels a running load and releases every acquired resource.
func (s *Session) Close() error {
	return s.lc.Close()
}
