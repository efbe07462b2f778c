package viewer

import "sync"

// Event names dispatched to an open viewer.
const (
	EventResize            = "resize"
	EventPointerLockChange = "pointerlockchange"
	EventKeyDown           = "keydown"
	EventKeyUp             = "keyup"
	EventPointerMove       = "pointermove"
	EventPointerDown       = "pointerdown"
)

// Event is one input event forwarded from the page.
type Event struct {
	Name    string
	Key     string
	Engaged bool
	DX, DY  float64
	Width   int
	Height  int
}

// Dispatcher fans events out to registered listeners.
type Dispatcher struct {
	mu       sync.Mutex
	nextID   int
	handlers map[string]map[int]func(Event)
}

// NewDispatcher returns an empty dispatcher.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{handlers: map[string]map[int]func(Event){}}
}

// On registers fn for events called name and returns the function that
// removes it.
func (d *Dispatcher) On(name string, fn func(Event)) func() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.nextID++
	id := d.nextID
	if d.handlers[name] == nil {
		d.handlers[name] = map[int]func(Event){}
	}
	d.handlers[name][id] = fn

	var once sync.Once
	return func() {
		once.Do(func() {
			d.mu.Lock()
			delete(d.handlers[name], id)
			if len(d.handlers[name]) == 0 {
				delete(d.handlers, name)
			}
			d.mu.Unlock()
		})
	}
}

// Listen registers fn and hands its removal to lc.
func (d *Dispatcher) Listen(lc *Lifecycle, name string, fn func(Event)) error {
	off := d.On(name, fn)
	return lc.Acquire("listener:"+name, func() error {
		off()
		return nil
	})
}

// Emit delivers ev to the listeners registered for ev.Name and returns how
// many received it.
func (d *Dispatcher) Emit(ev Event) int {
	d.mu.Lock()
	fns := make([]func(Event), 0, len(d.handlers[ev.Name]))
	for _, fn := range d.handlers[ev.Name] {
		fns = append(fns, fn)
	}
	d.mu.Unlock()

	for _, fn := range fns {
		fn(ev)
	}
	return len(fns)
}

// Count returns the number of listeners, across all events.
func (d *Dispatcher) Count() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	n := 0
	for _, hs := range d.handlers {
		n += len(hs)
	}
	return n
}
