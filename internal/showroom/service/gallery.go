package service

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"

	"uvp-showroom/internal/showroom/models"
)

// Lightbox zoom limits. MaxZoom matches a maximum pixel ratio of 3.
const (
	MinZoom = 1.0
	MaxZoom = 3.0
)

// ============================================================
// Gallery
// ============================================================

// Gallery holds the active project and its lightbox.
type Gallery struct {
	active   *models.Project
	lightbox Lightbox
}

// Open makes p the active project and opens the lightbox at image 0.
func (g *Gallery) Open(p *models.Project) {
	g.active = p
	g.lightbox.open(p.Images)
}

// Active returns the active project, nil before the first Open.
func (g *Gallery) Active() *models.Project {
	return g.active
}

// Lightbox returns the lightbox of the active project.
func (g *Gallery) Lightbox() *Lightbox {
	return &g.lightbox
}

// BeginViewer hands the active project over to the 3D viewer: the lightbox
// closes and remembers its image.
func (g *Gallery) BeginViewer() (*models.Project, error) {
	p, err := g.modelProject()
	if err != nil {
		return nil, err
	}
	g.lightbox.suspend()
	return p, nil
}

// modelProject returns the active project if it can be shown in 3D.
func (g *Gallery) modelProject() (*models.Project, error) {
	if g.active == nil {
		return nil, ErrNoProject
	}
	if !g.active.HasModel() {
		return nil, fmt.Errorf("%w: %s", ErrNoModel, g.active.ID)
	}
	return g.active, nil
}

// EndViewer reopens the lightbox at the image it showed before BeginViewer.
func (g *Gallery) EndViewer() {
	g.lightbox.resume()
}

// ============================================================
// Lightbox
// ============================================================

// Lightbox shows one image of an ordered list at a time.
type Lightbox struct {
	images     []string
	isOpen     bool
	index      int
	zoom       float64
	focus      mgl64.Vec2
	captions   bool
	thumbnails bool

	handedOff bool
	resumeAt  int
}

// LightboxView is a snapshot for rendering.
type LightboxView struct {
	Open       bool     `json:"open"`
	Index      int      `json:"index"`
	Count      int      `json:"count"`
	Image      string   `json:"image"`
	Images     []string `json:"images"`
	Zoom       float64  `json:"zoom"`
	FocusX     float64  `json:"focusX"`
	FocusY     float64  `json:"focusY"`
	Captions   bool     `json:"captions"`
	Thumbnails bool     `json:"thumbnails"`
	InViewer   bool     `json:"inViewer"`
}

func (l *Lightbox) open(images []string) {
	*l = Lightbox{
		images:     images,
		isOpen:     true,
		captions:   true,
		thumbnails: true,
	}
	l.ResetZoom()
}

// IsOpen reports whether the lightbox is showing.
func (l *Lightbox) IsOpen() bool {
	return l.isOpen
}

// Index returns the current image index.
func (l *Lightbox) Index() int {
	return l.index
}

// Next moves to the following image, wrapping to the first.
func (l *Lightbox) Next() {
	if n := len(l.images); n > 0 {
		l.index = (l.index + 1) % n
		l.ResetZoom()
	}
}

// Prev moves to the preceding image, wrapping to the last.
func (l *Lightbox) Prev() {
	if n := len(l.images); n > 0 {
		l.index = (l.index - 1 + n) % n
		l.ResetZoom()
	}
}

// Show jumps to image i, as a thumbnail click does.
func (l *Lightbox) Show(i int) error {
	if i < 0 || i >= len(l.images) {
		return fmt.Errorf("%w: %d of %d", ErrImageOutOfRange, i, len(l.images))
	}
	l.index = i
	l.ResetZoom()
	return nil
}

// ZoomAt zooms to level around the focal point (x, y), given as fractions
// of the image size. Both are clamped to their valid ranges.
func (l *Lightbox) ZoomAt(level, x, y float64) {
	l.zoom = mgl64.Clamp(level, MinZoom, MaxZoom)
	l.focus = mgl64.Vec2{mgl64.Clamp(x, 0, 1), mgl64.Clamp(y, 0, 1)}
}

// ResetZoom returns to the unzoomed, centred view.
func (l *Lightbox) ResetZoom() {
	l.zoom = MinZoom
	l.focus = mgl64.Vec2{0.5, 0.5}
}

// ToggleCaptions shows or hides the caption bar.
func (l *Lightbox) ToggleCaptions() {
	l.captions = !l.captions
}

// ToggleThumbnails shows or hides the thumbnail strip.
func (l *Lightbox) ToggleThumbnails() {
	l.thumbnails = !l.thumbnails
}

// Close hides the lightbox.
func (l *Lightbox) Close() {
	l.isOpen = false
	l.handedOff = false
	l.ResetZoom()
}

func (l *Lightbox) suspend() {
	l.handedOff = true
	l.resumeAt = l.index
	l.isOpen = false
}

func (l *Lightbox) resume() {
	if !l.handedOff {
		return
	}
	l.handedOff = false
	l.isOpen = true
	l.index = l.resumeAt
	l.ResetZoom()
}

// View returns a snapshot.
func (l *Lightbox) View() LightboxView {
	v := LightboxView{
		Open:       l.isOpen,
		Index:      l.index,
		Count:      len(l.images),
		Images:     l.images,
		Zoom:       l.zoom,
		FocusX:     l.focus.X(),
		FocusY:     l.focus.Y(),
		Captions:   l.captions,
		Thumbnails: l.thumbnails,
		InViewer:   l.handedOff,
	}
	if l.index < len(l.images) {
		v.Image = l.images[l.index]
	}
	return v
}
