package room

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/go-gl/mathgl/mgl64"

	"uvp-showroom/internal/geom"
	"uvp-showroom/internal/viewer"
)

// maxCatchUp bounds how many frames one sync simulates after a quiet period.
const maxCatchUp = 2 * FPS

var frameDuration = time.Second / FPS

// ErrNotReady is returned for input sent before the scene has loaded.
var ErrNotReady = viewer.ErrNotReady

// Status is a snapshot of a walkthrough for the page and the API.
type Status struct {
	viewer.Status
	Engaged     bool   `json:"engaged"`
	Teleporting bool   `json:"teleporting"`
	Pose        Pose   `json:"pose"`
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	Nodes       int    `json:"nodes"`
	Root        string `json:"root,omitempty"`
}

// Walkthrough is one visitor's room viewer. Frames are simulated lazily:
// every call first catches the walker up to the current time at 60 fps.
type Walkthrough struct {
	session *viewer.Session
	now     func() time.Time

	mu     sync.Mutex
	scene  *Scene
	walker *Walker
	root   *Node
	last   time.Time
	width  int
	height int
}

// New prepares a walkthrough of src. now defaults to time.Now.
func New(src string, now func() time.Time) *Walkthrough {
	if now == nil {
		now = time.Now
	}
	return &Walkthrough{
		session: viewer.NewSession(src),
		now:     now,
	}
}

// Session returns the underlying viewer session.
func (w *Walkthrough) Session() *viewer.Session {
	return w.session
}

// Start registers the input listeners and begins loading.
func (w *Walkthrough) Start(ctx context.Context, l viewer.Loader) error {
	events := w.session.Events()
	lc := w.session.Lifecycle()
	listeners := []struct {
		name string
		fn   func(viewer.Event)
	}{
		{viewer.EventResize, w.onResize},
		{viewer.EventPointerLockChange, w.onPointerLock},
		{viewer.EventKeyDown, w.onKeyDown},
		{viewer.EventKeyUp, w.onKeyUp},
		{viewer.EventPointerMove, w.onPointerMove},
	}
	for _, ln := range listeners {
		if err := events.Listen(lc, ln.name, ln.fn); err != nil {
			return err
		}
	}
	w.session.OnReady(w.onReady)
	return w.session.Start(ctx, l)
}

func (w *Walkthrough) onReady(m *viewer.Model) {
	scene := BuildScene(m.Doc)
	root := scene.AutoCenter()
	walker := NewWalker(scene.Colliders())

	w.mu.Lock()
	w.scene = scene
	w.root = root
	w.walker = walker
	w.last = w.now()
	w.mu.Unlock()

	n := 0
	scene.Walk(func(*Node) { n++ })
	log.Printf("[ROOM] scene ready for %s: %d nodes", w.session.Src(), n)
}

// sync must be called with w.mu held.
func (w *Walkthrough) sync() {
	if w.walker == nil {
		return
	}
	now := w.now()
	frames := int(now.Sub(w.last) / frameDuration)
	if frames <= 0 {
		return
	}
	w.last = w.last.Add(time.Duration(frames) * frameDuration)
	if frames > maxCatchUp {
		frames = maxCatchUp
		w.last = now
	}
	for i := 0; i < frames; i++ {
		w.walker.Step()
	}
}

func (w *Walkthrough) onResize(ev viewer.Event) {
	w.mu.Lock()
	w.width, w.height = ev.Width, ev.Height
	w.mu.Unlock()
}

func (w *Walkthrough) onPointerLock(ev viewer.Event) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.walker == nil {
		return
	}
	w.sync()
	w.walker.SetEngaged(ev.Engaged)
}

func (w *Walkthrough) onKeyDown(ev viewer.Event) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.walker == nil {
		return
	}
	w.sync()
	w.walker.KeyDown(ev.Key)
}

func (w *Walkthrough) onKeyUp(ev viewer.Event) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.walker == nil {
		return
	}
	w.sync()
	w.walker.KeyUp(ev.Key)
}

func (w *Walkthrough) onPointerMove(ev viewer.Event) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.walker == nil {
		return
	}
	w.sync()
	w.walker.Look(ev.DX, ev.DY)
}

// Dispatch forwards an input event to the registered listeners. Input sent
// before the scene is ready fails with ErrNotReady, except resize.
func (w *Walkthrough) Dispatch(ev viewer.Event) error {
	if ev.Name != viewer.EventResize && !w.ready() {
		return ErrNotReady
	}
	if w.session.Events().Emit(ev) == 0 {
		return errors.New("no listener for " + ev.Name)
	}
	return nil
}

func (w *Walkthrough) ready() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.walker != nil
}

// Click picks along the camera's view ray, the centre of the screen under
// pointer lock, or along dir from the camera when dir is non-zero. A hit on
// the ground starts a teleport; anything else is ignored.
func (w *Walkthrough) Click(dir mgl64.Vec3) (Hit, bool, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.walker == nil {
		return Hit{}, false, ErrNotReady
	}
	w.sync()

	pose := w.walker.Pose()
	if dir.Len() == 0 {
		dir = pose.Forward()
	}
	hit, ok := w.scene.Pick(geom.Ray{Origin: pose.Position, Dir: dir})
	if !ok || hit.Node.Name != GroundName {
		return hit, false, nil
	}
	w.walker.TeleportTo(hit.Point.X(), hit.Point.Z())
	log.Printf("[ROOM] teleport to (%.2f, %.2f)", hit.Point.X(), hit.Point.Z())
	return hit, true, nil
}

// Advance simulates n frames regardless of the clock.
func (w *Walkthrough) Advance(n int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.walker == nil {
		return
	}
	for i := 0; i < n; i++ {
		w.walker.Step()
	}
}

// Scene returns the scene once loaded.
func (w *Walkthrough) Scene() *Scene {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.scene
}

// Status returns a snapshot after catching up with the clock.
func (w *Walkthrough) Status() Status {
	st := Status{Status: w.session.Status()}
	w.mu.Lock()
	defer w.mu.Unlock()
	st.Width, st.Height = w.width, w.height
	if w.walker == nil {
		st.Pose = StartPose()
		return st
	}
	w.sync()
	st.Engaged = w.walker.Engaged()
	st.Teleporting = w.walker.Teleporting()
	st.Pose = w.walker.Pose()
	w.scene.Walk(func(*Node) { st.Nodes++ })
	if w.root != nil {
		st.Root = w.root.Name
	}
	return st
}

// Config returns the renderer configuration that shows the model from the
// walker's eye. The scene was re-centred on load, so the pose is mapped back
// into the model's own coordinates.
func (w *Walkthrough) Config(src, alt string) viewer.Config {
	cfg := viewer.DefaultConfig(src, alt)
	cfg.CameraControls = false
	cfg.TightBounds = false
	cfg.InterpolationDecay = 0

	w.mu.Lock()
	defer w.mu.Unlock()
	pose := StartPose()
	if w.walker != nil {
		w.sync()
		pose = w.walker.Pose()
	}
	if w.root != nil {
		pose.Position = mgl64.TransformCoordinate(pose.Position, w.root.Local.Inv())
	}
	orbit, target := pose.Orbit()
	cfg.CameraOrbit = orbit
	cfg.CameraTarget = &target
	return cfg
}

// Close releases the viewer session and its listeners.
func (w *Walkthrough) Close() error {
	return w.session.Close()
}
