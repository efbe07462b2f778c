package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"

	"uvp-showroom/internal/i18n"
	"uvp-showroom/internal/room"
	"uvp-showroom/internal/showroom/models"
	"uvp-showroom/internal/viewer"
)

// Paths the browser loads models from.
const (
	ModelPathPrefix  = "/models/"
	SandboxModelPath = "/sandbox/model"
)

// ModalKind says what an open viewer shows.
type ModalKind string

const (
	ModalProject ModalKind = "project"
	ModalSandbox ModalKind = "sandbox"
)

// Modal is the one viewer a session may have open.
type Modal struct {
	Kind      ModalKind
	ProjectID string
	Title     string
	Src       string
	Viewer    *viewer.Session
}

// View is a snapshot of a session for rendering.
type View struct {
	ID         string          `json:"id"`
	Language   i18n.Language   `json:"language"`
	Project    *models.Project `json:"project,omitempty"`
	Lightbox   LightboxView    `json:"lightbox"`
	Viewer     *viewer.Status  `json:"viewer,omitempty"`
	ViewerKind ModalKind       `json:"viewerKind,omitempty"`
	Sandbox    *Upload         `json:"sandbox,omitempty"`
}

// ============================================================
// Session
// ============================================================

// Session is the UI state of one visitor. Every method is safe for
// concurrent use.
type Session struct {
	ID string

	store   *i18n.Store
	manager *SessionManager

	mu       sync.Mutex
	gallery  Gallery
	modal    *Modal
	sandbox  *Upload
	walk     *room.Walkthrough
	walkID   string
	lastSeen time.Time
}

// Language returns the active language.
func (s *Session) Language() i18n.Language {
	return s.store.Language()
}

// Table returns the translation table of the active language.
func (s *Session) Table() *i18n.Table {
	return s.store.Table()
}

// Languages returns the switcher entries.
func (s *Session) Languages() []i18n.Option {
	return s.store.Options()
}

// SetLanguage switches the language. No other state is touched.
func (s *Session) SetLanguage(code string) error {
	lang, ok := i18n.ParseLanguage(code)
	if !ok {
		return fmt.Errorf("%w: %q", i18n.ErrUnsupportedLanguage, code)
	}
	return s.store.SetLanguage(lang)
}

func (s *Session) touch() {
	s.lastSeen = s.manager.now()
}

// View returns a snapshot of the session.
func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	v := View{
		ID:       s.ID,
		Language: s.store.Language(),
		Project:  s.gallery.Active(),
		Lightbox: s.gallery.Lightbox().View(),
		Sandbox:  s.sandbox,
	}
	if s.modal != nil {
		st := s.modal.Viewer.Status()
		v.Viewer = &st
		v.ViewerKind = s.modal.Kind
	}
	return v
}

// OpenProject opens the lightbox of p at its first image.
func (s *Session) OpenProject(p *models.Project) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	s.gallery.Open(p)
}

// UpdateLightbox runs fn against the lightbox of the active project.
func (s *Session) UpdateLightbox(fn func(*Lightbox) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	if s.gallery.Active() == nil {
		return ErrNoProject
	}
	return fn(s.gallery.Lightbox())
}

// OpenViewer closes the lightbox, remembering its image, and opens the 3D
// viewer for the active project.
func (s *Session) OpenViewer() (*Modal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	if _, err := s.gallery.modelProject(); err != nil {
		return nil, err
	}
	s.closeModalLocked()
	p, err := s.gallery.BeginViewer()
	if err != nil {
		return nil, err
	}
	m, err := s.openModalLocked(ModalProject, p.ID, p.Title, ModelPathPrefix+p.ID, p.ModelURL, s.manager.loader)
	if err != nil {
		s.gallery.EndViewer()
		return nil, err
	}
	return m, nil
}

// openModalLocked replaces the open viewer and any walkthrough, then starts
// loading. Only one viewer exists per session.
func (s *Session) openModalLocked(kind ModalKind, projectID, title, src, loadSrc string, l viewer.Loader) (*Modal, error) {
	s.closeModalLocked()
	s.closeWalkLocked()

	vs := viewer.NewSession(loadSrc)
	if err := vs.Start(s.manager.ctx, l); err != nil {
		_ = vs.Close()
		return nil, fmt.Errorf("start viewer: %w", err)
	}
	s.modal = &Modal{Kind: kind, ProjectID: projectID, Title: title, Src: src, Viewer: vs}
	log.Printf("[VIEWER] session %s opened %s viewer for %s", s.ID, kind, src)
	return s.modal, nil
}

// closeModalLocked releases the open viewer. A project viewer hands back to
// the lightbox at the remembered image.
func (s *Session) closeModalLocked() {
	if s.modal == nil {
		return
	}
	if err := s.modal.Viewer.Close(); err != nil {
		log.Printf("[VIEWER] close viewer %s: %v", s.modal.Src, err)
	}
	if s.modal.Kind == ModalProject {
		s.gallery.EndViewer()
	}
	s.modal = nil
}

// Modal returns the open viewer.
func (s *Session) Modal() (*Modal, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	return s.modal, s.modal != nil
}

// StepViewer applies a camera step to the open viewer.
func (s *Session) StepViewer(dir viewer.Direction) (viewer.Orbit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	if s.modal == nil {
		return viewer.Orbit{}, ErrNoViewer
	}
	return s.modal.Viewer.Step(dir)
}

// CloseViewer releases the open viewer. A viewer opened from the lightbox
// hands back to it at the remembered image.
func (s *Session) CloseViewer() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	if s.modal == nil {
		return ErrNoViewer
	}
	s.closeModalLocked()
	return nil
}

// UploadSandbox validates and keeps an uploaded model, then opens the
// sandbox viewer on it. Rejected files leave the session untouched.
func (s *Session) UploadSandbox(name string, data []byte) (*Upload, error) {
	up, err := newUpload(name, data, s.manager.sandboxMax, s.manager.now())
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	if _, err := s.openModalLocked(ModalSandbox, "", up.Name, SandboxModelPath, up.Name, viewer.BytesLoader{Data: up.data}); err != nil {
		return nil, err
	}
	s.sandbox = up
	log.Printf("[SANDBOX] session %s uploaded %s (%d bytes)", s.ID, up.Name, up.Size)
	return up, nil
}

// Sandbox returns the current upload.
func (s *Session) Sandbox() (*Upload, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sandbox, s.sandbox != nil
}

// ClearSandbox drops the upload and closes its viewer.
func (s *Session) ClearSandbox() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.modal != nil && s.modal.Kind == ModalSandbox {
		s.closeModalLocked()
	}
	s.sandbox = nil
}

// OpenWalkthrough starts the room viewer for p, reusing a running one for
// the same project.
func (s *Session) OpenWalkthrough(p *models.Project) (*room.Walkthrough, error) {
	if !p.HasModel() {
		return nil, fmt.Errorf("%w: %s", ErrNoModel, p.ID)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	if s.walk != nil {
		if s.walkID == p.ID {
			return s.walk, nil
		}
		s.closeWalkLocked()
	}
	s.closeModalLocked()
	w := room.New(p.ModelURL, s.manager.now)
	if err := w.Start(s.manager.ctx, s.manager.loader); err != nil {
		_ = w.Close()
		return nil, fmt.Errorf("start walkthrough: %w", err)
	}
	s.walk, s.walkID = w, p.ID
	log.Printf("[ROOM] session %s opened walkthrough %s", s.ID, p.ID)
	return w, nil
}

// Walkthrough returns the running room viewer.
func (s *Session) Walkthrough() (*room.Walkthrough, string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	if s.walk == nil {
		return nil, "", ErrNoWalkthrough
	}
	return s.walk, s.walkID, nil
}

// WalkthroughInput forwards one input event to the room viewer.
func (s *Session) WalkthroughInput(ev viewer.Event) (room.Status, error) {
	w, _, err := s.Walkthrough()
	if err != nil {
		return room.Status{}, err
	}
	if err := w.Dispatch(ev); err != nil {
		return room.Status{}, err
	}
	return w.Status(), nil
}

// WalkthroughClick picks along dir, or the view direction when dir is zero.
func (s *Session) WalkthroughClick(dir mgl64.Vec3) (room.Hit, bool, error) {
	w, _, err := s.Walkthrough()
	if err != nil {
		return room.Hit{}, false, err
	}
	return w.Click(dir)
}

func (s *Session) closeWalkLocked() {
	if s.walk == nil {
		return
	}
	if err := s.walk.Close(); err != nil {
		log.Printf("[ROOM] close walkthrough %s: %v", s.walkID, err)
	}
	log.Printf("[ROOM] session %s closed walkthrough %s", s.ID, s.walkID)
	s.walk, s.walkID = nil, ""
}

// CloseWalkthrough releases the room viewer. It reports false when none was
// running.
func (s *Session) CloseWalkthrough() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	running := s.walk != nil
	s.closeWalkLocked()
	return running
}

// Close releases every viewer the session holds.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closeModalLocked()
	s.closeWalkLocked()
	s.sandbox = nil
}

// ============================================================
// Session Manager
// ============================================================

// Catalog is the read side of the project repository.
type Catalog interface {
	ListProjects(ctx context.Context) ([]models.Project, error)
	GetProject(ctx context.Context, id string) (*models.Project, error)
}

// Options configures a SessionManager.
type Options struct {
	Bundle          *i18n.Bundle
	DefaultLanguage i18n.Language
	// Loader fetches project models for the viewer and the walkthrough.
	Loader viewer.Loader
	// SandboxMaxBytes caps sandbox uploads; zero means no limit.
	SandboxMaxBytes int64
	Now             func() time.Time
}

type SessionManager struct {
	bundle      *i18n.Bundle
	defaultLang i18n.Language
	loader      viewer.Loader
	sandboxMax  int64
	now         func() time.Time

	ctx    context.Context
	cancel context.CancelFunc

	mu       sync.Mutex
	sessions map[string]*Session
}

func NewSessionManager(opts Options) (*SessionManager, error) {
	if opts.Bundle == nil {
		return nil, errors.New("session manager: i18n bundle is required")
	}
	if !opts.DefaultLanguage.Valid() {
		return nil, fmt.Errorf("session manager: %w: %q", i18n.ErrUnsupportedLanguage, opts.DefaultLanguage)
	}
	if opts.Loader == nil {
		opts.Loader = viewer.HTTPLoader{}
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &SessionManager{
		bundle:      opts.Bundle,
		defaultLang: opts.DefaultLanguage,
		loader:      opts.Loader,
		sandboxMax:  opts.SandboxMaxBytes,
		now:         opts.Now,
		ctx:         ctx,
		cancel:      cancel,
		sessions:    make(map[string]*Session),
	}, nil
}

// DefaultLanguage returns the language new sessions start with when the
// browser expresses no usable preference.
func (m *SessionManager) DefaultLanguage() i18n.Language {
	return m.defaultLang
}

// Bundle returns the translation bundle shared by all sessions.
func (m *SessionManager) Bundle() *i18n.Bundle {
	return m.bundle
}

// Issue creates a session starting in lang, or the default language when
// lang is not supported.
func (m *SessionManager) Issue(lang i18n.Language) (*Session, error) {
	if !lang.Valid() {
		lang = m.defaultLang
	}
	store, err := i18n.NewStore(m.bundle, lang)
	if err != nil {
		return nil, fmt.Errorf("issue session: %w", err)
	}

	s := &Session{
		ID:       uuid.NewString(),
		store:    store,
		manager:  m,
		lastSeen: m.now(),
	}
	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()
	return s, nil
}

// Resolve looks up a session by id.
func (m *SessionManager) Resolve(id string) (*Session, bool) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, false
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	return s, ok
}

// Len returns the number of live sessions.
func (m *SessionManager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Sweep closes sessions idle for longer than maxIdle and returns how many
// were removed.
func (m *SessionManager) Sweep(maxIdle time.Duration) int {
	cutoff := m.now().Add(-maxIdle)
	var stale []*Session

	m.mu.Lock()
	for id, s := range m.sessions {
		s.mu.Lock()
		idle := s.lastSeen.Before(cutoff)
		s.mu.Unlock()
		if idle {
			stale = append(stale, s)
			delete(m.sessions, id)
		}
	}
	m.mu.Unlock()

	for _, s := range stale {
		s.Close()
	}
	if len(stale) > 0 {
		log.Printf("[SHOWROOM] swept %d idle sessions, %d active", len(stale), m.Len())
	}
	return len(stale)
}

// Close cancels all loads and releases every session.
func (m *SessionManager) Close() {
	m.cancel()
	m.mu.Lock()
	sessions := m.sessions
	m.sessions = make(map[string]*Session)
	m.mu.Unlock()
	for _, s := range sessions {
		s.Close()
	}
}
