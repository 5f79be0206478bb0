package tools

import (
	"strings"

	"design-studio/internal/editor/models"
)

// ============================================================
// Keyboard
// ============================================================

// KeyEvent carries a key name as browsers report it ("Delete", "ArrowLeft", "r").
// Editable is set when focus sits in a text input or content-editable surface.
type KeyEvent struct {
	Key      string `json:"key"`
	Editable bool   `json:"editable"`
}

// Shortcuts maps single-letter keys to tools.
var Shortcuts = map[string]models.Tool{
	"r": models.ToolRectangle,
	"t": models.ToolText,
	"v": models.ToolCursor,
}

// KeyDown обрабатывает удаление, сдвиг стрелками и горячие клавиши инструментов.
func (c *Controller) KeyDown(ev KeyEvent) Response {
	if ev.Editable {
		return c.respond(Response{})
	}
	if _, editing := c.view.Editing(); editing {
		return c.respond(Response{})
	}

	switch ev.Key {
	case "Delete", "Backspace":
		return c.respond(Response{Changed: c.DeleteSelected()})
	case "ArrowLeft", "ArrowRight", "ArrowUp", "ArrowDown":
		if c.nudge(ev.Key) {
			return c.respond(Response{PreventDefault: true, Changed: true})
		}
		return c.respond(Response{})
	}

	if tool, ok := Shortcuts[strings.ToLower(ev.Key)]; ok {
		c.SelectTool(tool)
	}
	return c.respond(Response{})
}

// DeleteSelected removes the selected element and renumbers the stack.
func (c *Controller) DeleteSelected() bool {
	id := c.scene.SelectedID()
	if id == "" {
		return false
	}
	if c.gesture != nil && c.gesture.elementID == id {
		c.CancelGesture()
	}

	c.Deselect()
	c.scene.RemoveElement(id)
	c.scene.Normalize()
	c.view.RenderAll()
	c.notifyListChanged()
	c.flush()
	return true
}

func (c *Controller) nudge(key string) bool {
	el, ok := c.scene.GetElementByID(c.scene.SelectedID())
	if !ok {
		return false
	}

	size := c.currentSize(el)
	canvas := c.scene.Canvas()
	x, y := el.X, el.Y

	switch key {
	case "ArrowRight":
		x = clampInto(el.X+models.NudgeStep, canvas.Width-size.Width)
	case "ArrowLeft":
		x = clampInto(el.X-models.NudgeStep, canvas.Width-size.Width)
	case "ArrowDown":
		y = clampInto(el.Y+models.NudgeStep, canvas.Height-size.Height)
	case "ArrowUp":
		y = clampInto(el.Y-models.NudgeStep, canvas.Height-size.Height)
	}

	if x == el.X && y == el.Y {
		return false
	}
	c.apply(el.ID, models.MovePatch(x, y))
	c.flush()
	return true
}
