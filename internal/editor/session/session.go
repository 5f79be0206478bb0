package session

import (
	"context"
	"errors"
	"fmt"
	"log"
	"slices"
	"sync"
	"time"

	"design-studio/internal/editor/models"
	"design-studio/internal/editor/render"
	"design-studio/internal/editor/scene"
	"design-studio/internal/editor/tools"

	"github.com/google/uuid"
)

var ErrNoSession = errors.New("editor session not found")

// ============================================================
// Session
// ============================================================

// Session is one open editor on one project. All controller calls are
// serialized through mu.
type Session struct {
	ID        string
	ProjectID string
	UserID    string
	OpenedAt  time.Time

	mu    sync.Mutex
	scene *scene.Scene
	view  *render.Projection
	ctrl  *tools.Controller
	saver *AsyncSaver
	log   *Log
}

// State is the full editor snapshot a client needs to redraw.
type State struct {
	SessionID  string           `json:"sessionId"`
	ProjectID  string           `json:"projectId"`
	Canvas     models.Size      `json:"canvas"`
	ActiveTool models.Tool      `json:"activeTool"`
	SelectedID string           `json:"selectedId,omitempty"`
	Gesture    string           `json:"gesture"`
	Elements   []models.Element `json:"elements"`
	Nodes      []render.Node    `json:"nodes"`
	Seq        int64            `json:"seq"`
}

type Options struct {
	Canvas      models.Size
	Measurer    *render.TextMeasurer
	SaveTimeout time.Duration
	LogLimit    int
	NewID       func() string
}

func newSession(store Store, userID, projectID string, elements []models.Element, opts Options) *Session {
	sc := scene.New(opts.Canvas.Width, opts.Canvas.Height)
	view := render.NewProjection(sc, opts.Measurer)
	saver := NewAsyncSaver(store, projectID, opts.SaveTimeout)
	events := NewLog(opts.LogLimit)

	ctrlOpts := []tools.Option{tools.WithObserver(events)}
	if opts.NewID != nil {
		ctrlOpts = append(ctrlOpts, tools.WithIDs(opts.NewID))
	}

	s := &Session{
		ID:        uuid.NewString(),
		ProjectID: projectID,
		UserID:    userID,
		OpenedAt:  time.Now(),
		scene:     sc,
		view:      view,
		ctrl:      tools.NewController(sc, view, saver, ctrlOpts...),
		saver:     saver,
		log:       events,
	}
	s.ctrl.Load(elements)
	return s
}

// Do runs fn against the controller under the session lock.
func (s *Session) Do(fn func(c *tools.Controller)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.ctrl)
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stateLocked()
}

func (s *Session) stateLocked() State {
	return State{
		SessionID:  s.ID,
		ProjectID:  s.ProjectID,
		Canvas:     s.scene.Canvas(),
		ActiveTool: s.scene.ActiveTool(),
		SelectedID: s.scene.SelectedID(),
		Gesture:    s.ctrl.State().String(),
		Elements:   s.scene.Elements(),
		Nodes:      s.nodesLocked(),
		Seq:        s.log.Seq(),
	}
}

// nodesLocked copies nodes so they can be encoded after the lock is released.
func (s *Session) nodesLocked() []render.Node {
	nodes := s.view.Nodes()
	out := make([]render.Node, 0, len(nodes))
	for _, n := range nodes {
		cp := *n
		cp.Handles = append([]models.Corner(nil), n.Handles...)
		out = append(out, cp)
	}
	return out
}

func (s *Session) PointerDown(ev tools.PointerEvent) tools.Response {
	var r tools.Response
	s.Do(func(c *tools.Controller) { r = c.PointerDown(ev) })
	return r
}

func (s *Session) PointerMove(ev tools.PointerEvent) tools.Response {
	var r tools.Response
	s.Do(func(c *tools.Controller) { r = c.PointerMove(ev) })
	return r
}

func (s *Session) PointerUp(ev tools.PointerEvent) tools.Response {
	var r tools.Response
	s.Do(func(c *tools.Controller) { r = c.PointerUp(ev) })
	return r
}

func (s *Session) KeyDown(ev tools.KeyEvent) tools.Response {
	var r tools.Response
	s.Do(func(c *tools.Controller) { r = c.KeyDown(ev) })
	return r
}

func (s *Session) SelectTool(tool models.Tool) {
	s.Do(func(c *tools.Controller) { c.SelectTool(tool) })
}

func (s *Session) Select(id string) {
	s.Do(func(c *tools.Controller) { c.RequestSelection(id) })
}

func (s *Session) Deselect() {
	s.Do(func(c *tools.Controller) { c.Deselect() })
}

func (s *Session) Reorder(id string, dir models.Direction) bool {
	var ok bool
	s.Do(func(c *tools.Controller) { ok = c.RequestReorder(id, dir) })
	return ok
}

// UpdateElement применяет правку из панели свойств после проверки.
func (s *Session) UpdateElement(id string, patch models.ElementPatch) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	el, found := s.scene.GetElementByID(id)
	if !found {
		return false, nil
	}
	if err := ValidatePatch(el.Kind, patch); err != nil {
		return false, err
	}
	return s.ctrl.ApplyProperties(id, patch), nil
}

func (s *Session) DeleteSelected() bool {
	var ok bool
	s.Do(func(c *tools.Controller) { ok = c.DeleteSelected() })
	return ok
}

func (s *Session) BeginTextEdit(id string) bool {
	var ok bool
	s.Do(func(c *tools.Controller) { ok = c.BeginTextEdit(id) })
	return ok
}

func (s *Session) EditText(id, content string) bool {
	var ok bool
	s.Do(func(c *tools.Controller) { ok = c.EditText(id, content) })
	return ok
}

func (s *Session) CommitTextEdit(id string) bool {
	var ok bool
	s.Do(func(c *tools.Controller) { ok = c.CommitTextEdit(id) })
	return ok
}

func (s *Session) Layers() []Layer {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Layers(s.scene.Elements(), s.scene.SelectedID())
}

// Properties returns the panel data for the selected element.
func (s *Session) Properties() (Properties, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	el, ok := s.scene.GetElementByID(s.scene.SelectedID())
	if !ok {
		return Properties{}, false
	}
	return PropertiesOf(el), true
}

func (s *Session) Events(since int64) []Notification {
	return s.log.Since(since)
}

// HitTest reports what a pointer at (x, y) would land on.
func (s *Session) HitTest(x, y float64) render.Target {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view.HitTest(x, y)
}

// Elements returns the current list together with the rendered size of each element.
func (s *Session) Elements() ([]models.Element, func(models.Element) models.Size) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.scene.Elements(), sizerOf(s.view)
}

// Measured renders elements off-screen and returns their sizes, for
// projects that have no open session.
func Measured(canvas models.Size, measurer *render.TextMeasurer, elements []models.Element) func(models.Element) models.Size {
	sc := scene.New(canvas.Width, canvas.Height)
	sc.Replace(elements)
	view := render.NewProjection(sc, measurer)
	view.RenderAll()
	return sizerOf(view)
}

func sizerOf(view *render.Projection) func(models.Element) models.Size {
	sizes := make(map[string]models.Size)
	for _, n := range view.Nodes() {
		sizes[n.ID] = n.Measured
	}
	return func(el models.Element) models.Size {
		if size, ok := sizes[el.ID]; ok {
			return size
		}
		return el.DeclaredSize()
	}
}

// close cancels any gesture, queues a final snapshot and waits for it to be saved.
func (s *Session) close() {
	s.mu.Lock()
	s.ctrl.CancelGesture()
	elements := s.scene.Elements()
	s.mu.Unlock()

	s.saver.Flush(elements)
	s.saver.Close()
}

// ============================================================
// Manager
// ============================================================

// Manager keeps at most one open session per project. Opening, closing and
// deleting a project are serialized per project id.
type Manager struct {
	mu        sync.Mutex
	sessions  map[string]*Session
	byProject map[string]string
	locks     map[string]*projectLock

	store Store
	opts  Options
}

type projectLock struct {
	mu   sync.Mutex
	refs int
}

func NewManager(store Store, opts Options) *Manager {
	return &Manager{
		sessions:  make(map[string]*Session),
		byProject: make(map[string]string),
		locks:     make(map[string]*projectLock),
		store:     store,
		opts:      opts,
	}
}

// lockProject блокирует проект и возвращает функцию разблокировки.
// Запись удаляется, когда её больше никто не ждёт.
func (m *Manager) lockProject(projectID string) func() {
	m.mu.Lock()
	l, ok := m.locks[projectID]
	if !ok {
		l = &projectLock{}
		m.locks[projectID] = l
	}
	l.refs++
	m.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		m.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(m.locks, projectID)
		}
		m.mu.Unlock()
	}
}

// Open загружает проект и открывает для него сессию. Предыдущая сессия
// того же проекта сначала закрывается, чтобы её последний снимок не
// перезаписал загруженное состояние.
func (m *Manager) Open(ctx context.Context, userID, projectID string) (*Session, error) {
	unlock := m.lockProject(projectID)
	defer unlock()

	m.closeProject(projectID)

	elements, err := m.store.LoadElements(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("load project %s: %w", projectID, err)
	}

	s := newSession(m.store, userID, projectID, elements, m.opts)

	m.mu.Lock()
	m.sessions[s.ID] = s
	m.byProject[projectID] = s.ID
	m.mu.Unlock()

	log.Printf("[EDITOR] session %s opened for project %s (%d elements)", s.ID, projectID, len(elements))
	return s, nil
}

// WithProjectsClosed closes the sessions open on projectIDs and runs fn
// while no new session can be opened on any of them.
func (m *Manager) WithProjectsClosed(projectIDs []string, fn func() error) error {
	ids := append([]string(nil), projectIDs...)
	slices.Sort(ids)
	ids = slices.Compact(ids)

	for _, id := range ids {
		unlock := m.lockProject(id)
		defer unlock()
		m.closeProject(id)
	}
	return fn()
}

// ForProject returns the session open on projectID, if any.
func (m *Manager) ForProject(projectID string) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[m.byProject[projectID]]
	return s, ok
}

func (m *Manager) Canvas() models.Size {
	return scene.New(m.opts.Canvas.Width, m.opts.Canvas.Height).Canvas()
}

func (m *Manager) Measurer() *render.TextMeasurer {
	return m.opts.Measurer
}

func (m *Manager) Get(id string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrNoSession
	}
	return s, nil
}

// Close сохраняет последний снимок и удаляет сессию.
func (m *Manager) Close(id string) error {
	m.mu.Lock()
	s, ok := m.sessions[id]
	if ok {
		delete(m.sessions, id)
		if m.byProject[s.ProjectID] == id {
			delete(m.byProject, s.ProjectID)
		}
	}
	m.mu.Unlock()

	if !ok {
		return ErrNoSession
	}
	s.close()
	log.Printf("[EDITOR] session %s closed", id)
	return nil
}

// CloseProject closes the session open on projectID, if any.
func (m *Manager) CloseProject(projectID string) {
	unlock := m.lockProject(projectID)
	defer unlock()
	m.closeProject(projectID)
}

func (m *Manager) closeProject(projectID string) {
	m.mu.Lock()
	id, ok := m.byProject[projectID]
	m.mu.Unlock()
	if ok {
		_ = m.Close(id)
	}
}

// CloseAll drains every session; used on shutdown.
func (m *Manager) CloseAll() {
	m.mu.Lock()
	ids := make([]string, 0, len(m.sessions))
	for id := range m.sessions {
		ids = append(ids, id)
	}
	m.mu.Unlock()

	for _, id := range ids {
		_ = m.Close(id)
	}
}
