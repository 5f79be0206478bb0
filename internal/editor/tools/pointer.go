package tools

import (
	"math"

	"design-studio/internal/editor/models"
	"design-studio/internal/editor/render"
)

// ============================================================
// Pointer Events
// ============================================================

const PrimaryButton = 0

// PointerEvent is a canvas-local pointer sample. A nil Target is resolved by
// hit testing against the projection.
type PointerEvent struct {
	X      float64        `json:"x"`
	Y      float64        `json:"y"`
	Button int            `json:"button"`
	Target *render.Target `json:"target,omitempty"`
}

func (c *Controller) resolve(ev PointerEvent) render.Target {
	if ev.Target != nil {
		return *ev.Target
	}
	return c.view.HitTest(ev.X, ev.Y)
}

// PointerDown разбирает нажатие: ручка, элемент или пустой холст.
func (c *Controller) PointerDown(ev PointerEvent) Response {
	if ev.Button != PrimaryButton {
		return c.respond(Response{})
	}

	target := c.resolve(ev)
	switch target.Kind {
	case render.TargetHandle:
		return c.beginResize(ev, target)
	case render.TargetElement:
		return c.beginDrag(ev, target.ElementID)
	case render.TargetCanvas:
		return c.canvasPress(ev)
	}
	return c.respond(Response{})
}

func (c *Controller) beginResize(ev PointerEvent, target render.Target) Response {
	id := c.scene.SelectedID()
	if id == "" || (target.ElementID != "" && target.ElementID != id) {
		return c.respond(Response{})
	}
	el, ok := c.scene.GetElementByID(id)
	if !ok {
		return c.respond(Response{})
	}

	size := c.currentSize(el)
	c.state = Resizing
	c.gesture = &gesture{
		elementID: id,
		corner:    target.Corner,
		start:     models.Point{X: ev.X, Y: ev.Y},
		origin:    models.Rect{X: el.X, Y: el.Y, Width: size.Width, Height: size.Height},
		text:      el.IsText(),
	}
	return c.respond(Response{StopPropagation: true})
}

func (c *Controller) beginDrag(ev PointerEvent, id string) Response {
	if c.view.IsEditing(id) {
		return c.respond(Response{})
	}
	if c.scene.ActiveTool() != models.ToolCursor {
		return c.respond(Response{})
	}

	if c.scene.SelectedID() != id {
		c.Select(id)
	}
	el, ok := c.scene.GetElementByID(id)
	if !ok {
		return c.respond(Response{})
	}

	// Measured, not declared: auto-sized text has no stored size.
	size := c.currentSize(el)
	c.state = Dragging
	c.gesture = &gesture{
		elementID: id,
		start:     models.Point{X: ev.X, Y: ev.Y},
		origin:    models.Rect{X: el.X, Y: el.Y, Width: size.Width, Height: size.Height},
		text:      el.IsText(),
	}
	return c.respond(Response{})
}

func (c *Controller) canvasPress(ev PointerEvent) Response {
	kind, placing := models.KindForTool(c.scene.ActiveTool())
	if !placing {
		c.Deselect()
		return c.respond(Response{})
	}

	el := models.NewElement(c.newID(), kind, ev.X, ev.Y, c.scene.Len()+1)
	c.scene.AddElement(el)
	c.view.Sync(el)
	c.Select(el.ID)

	// Placement tools are one-shot.
	c.scene.SetActiveTool(models.ToolCursor)
	c.notifyTool(models.ToolCursor)
	c.notifyListChanged()
	c.flush()
	return c.respond(Response{Changed: true})
}

// PointerMove двигает или масштабирует элемент относительно снимка жеста.
func (c *Controller) PointerMove(ev PointerEvent) Response {
	g := c.gesture
	if g == nil || c.state == Idle {
		return c.respond(Response{})
	}

	dx := ev.X - g.start.X
	dy := ev.Y - g.start.Y

	switch c.state {
	case Dragging:
		x, y := DragTo(g.origin, dx, dy, c.scene.Canvas())
		changed := c.apply(g.elementID, models.MovePatch(x, y))
		return c.respond(Response{PreventDefault: !g.text, Changed: changed})
	case Resizing:
		bounds := ResizeFrom(g.origin, g.corner, dx, dy)
		changed := c.apply(g.elementID, models.BoundsPatch(bounds))
		return c.respond(Response{PreventDefault: true, Changed: changed})
	}
	return c.respond(Response{})
}

// PointerUp завершает жест и сохраняет сцену.
func (c *Controller) PointerUp(PointerEvent) Response {
	if c.state == Idle {
		return c.respond(Response{})
	}
	c.state = Idle
	c.gesture = nil
	c.flush()
	return c.respond(Response{Changed: true})
}

// CancelGesture drops an in-flight gesture without committing it.
func (c *Controller) CancelGesture() {
	c.state = Idle
	c.gesture = nil
}

// ============================================================
// Gesture geometry
// ============================================================

// DragTo returns the origin moved by the delta, kept fully inside the canvas.
func DragTo(origin models.Rect, dx, dy float64, canvas models.Size) (float64, float64) {
	x := clampInto(origin.X+dx, canvas.Width-origin.Width)
	y := clampInto(origin.Y+dy, canvas.Height-origin.Height)
	return x, y
}

// ResizeFrom применяет смещение к углу. Минимум применяется до компенсации
// позиции, чтобы противоположный край оставался на месте.
func ResizeFrom(origin models.Rect, corner models.Corner, dx, dy float64) models.Rect {
	r := origin

	switch {
	case corner.Right():
		r.Width = origin.Width + dx
	case corner.Left():
		r.Width = origin.Width - dx
	}
	switch {
	case corner.Bottom():
		r.Height = origin.Height + dy
	case corner.Top():
		r.Height = origin.Height - dy
	}

	r.Width = math.Max(r.Width, models.MinDimension)
	r.Height = math.Max(r.Height, models.MinDimension)

	if corner.Left() {
		r.X = origin.X + (origin.Width - r.Width)
	}
	if corner.Top() {
		r.Y = origin.Y + (origin.Height - r.Height)
	}
	return r
}

// clampInto keeps v in [0, limit]; a negative limit pins to 0.
func clampInto(v, limit float64) float64 {
	return math.Max(0, math.Min(v, limit))
}
