package tools

import (
	"design-studio/internal/editor/models"
	"design-studio/internal/editor/render"
	"design-studio/internal/editor/scene"

	"github.com/google/uuid"
)

// ============================================================
// Collaborators
// ============================================================

// Observer receives scene notifications in the order they happen.
type Observer interface {
	ElementSelected(id string)
	ElementDeselected()
	ElementUpdated(el models.Element)
	ElementsChanged()
	ToolChanged(tool models.Tool)
}

// Flusher persists a snapshot of the element list. Implementations must not
// block the caller on the save itself.
type Flusher interface {
	Flush(elements []models.Element)
}

type FlusherFunc func(elements []models.Element)

func (f FlusherFunc) Flush(elements []models.Element) { f(elements) }

// ============================================================
// Controller
// ============================================================

type State int

const (
	Idle State = iota
	Dragging
	Resizing
)

func (s State) String() string {
	switch s {
	case Dragging:
		return "dragging"
	case Resizing:
		return "resizing"
	}
	return "idle"
}

// gesture is captured on pointer-down and used unchanged until pointer-up.
type gesture struct {
	elementID string
	corner    models.Corner
	start     models.Point
	origin    models.Rect
	text      bool
}

// Controller turns pointer and keyboard input into scene mutations.
type Controller struct {
	scene     *scene.Scene
	view      *render.Projection
	flusher   Flusher
	observers []Observer
	newID     func() string

	state   State
	gesture *gesture
}

type Option func(*Controller)

// WithIDs подменяет генератор id элементов (для тестов).
func WithIDs(fn func() string) Option {
	return func(c *Controller) { c.newID = fn }
}

func WithObserver(o Observer) Option {
	return func(c *Controller) { c.observers = append(c.observers, o) }
}

func NewController(s *scene.Scene, view *render.Projection, flusher Flusher, opts ...Option) *Controller {
	c := &Controller{
		scene:   s,
		view:    view,
		flusher: flusher,
		newID:   func() string { return "el_" + uuid.NewString() },
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Controller) AddObserver(o Observer) {
	c.observers = append(c.observers, o)
}

func (c *Controller) State() State { return c.state }

func (c *Controller) Scene() *scene.Scene { return c.scene }

func (c *Controller) View() *render.Projection { return c.view }

// Response tells the input source what to do with the native event.
type Response struct {
	PreventDefault  bool   `json:"preventDefault"`
	StopPropagation bool   `json:"stopPropagation"`
	State           string `json:"state"`
	Changed         bool   `json:"changed"`
}

func (c *Controller) respond(r Response) Response {
	r.State = c.state.String()
	return r
}

// ============================================================
// Commit & notify
// ============================================================

func (c *Controller) flush() {
	if c.flusher == nil {
		return
	}
	c.flusher.Flush(c.scene.Elements())
}

func (c *Controller) notifySelected(id string) {
	for _, o := range c.observers {
		o.ElementSelected(id)
	}
}

func (c *Controller) notifyDeselected() {
	for _, o := range c.observers {
		o.ElementDeselected()
	}
}

func (c *Controller) notifyUpdated(id string) {
	el, ok := c.scene.GetElementByID(id)
	if !ok {
		return
	}
	for _, o := range c.observers {
		o.ElementUpdated(el)
	}
}

func (c *Controller) notifyListChanged() {
	for _, o := range c.observers {
		o.ElementsChanged()
	}
}

func (c *Controller) notifyTool(tool models.Tool) {
	for _, o := range c.observers {
		o.ToolChanged(tool)
	}
}

// apply updates the scene and pushes the new geometry to the view.
func (c *Controller) apply(id string, patch models.ElementPatch) bool {
	if !c.scene.UpdateElement(id, patch) {
		return false
	}
	if el, ok := c.scene.GetElementByID(id); ok {
		c.view.Sync(el)
	}
	c.notifyUpdated(id)
	return true
}

// currentSize prefers the measured size and falls back to the declared one.
func (c *Controller) currentSize(el models.Element) models.Size {
	if size, ok := c.view.Measure(el.ID); ok {
		return size
	}
	return el.DeclaredSize()
}

// Load заменяет сцену элементами проекта и перерисовывает всё.
func (c *Controller) Load(elements []models.Element) {
	c.state = Idle
	c.gesture = nil
	c.scene.Replace(elements)
	c.view.RenderAll()
	c.notifyListChanged()
}
