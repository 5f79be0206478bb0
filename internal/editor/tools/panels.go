package tools

import (
	"design-studio/internal/editor/models"
)

// ============================================================
// Panel requests
// ============================================================

// RequestSelection is the layers-panel click path.
func (c *Controller) RequestSelection(id string) {
	c.Select(id)
}

// RequestReorder двигает слой и перерисовывает холст, если порядок изменился.
func (c *Controller) RequestReorder(id string, dir models.Direction) bool {
	c.finishEdit("")
	if !c.scene.Reorder(id, dir) {
		return false
	}
	c.view.RenderAll()
	c.notifyListChanged()
	c.flush()
	return true
}

// ApplyProperties merges a properties-panel edit into the element. A patch
// for the element being edited leaves the typed text in place.
func (c *Controller) ApplyProperties(id string, patch models.ElementPatch) bool {
	c.finishEdit(id)
	if !c.apply(id, patch) {
		return false
	}
	c.notifyListChanged()
	c.flush()
	return true
}

// ============================================================
// In-place text editing
// ============================================================

// BeginTextEdit is the double-click path; only text elements become editable.
func (c *Controller) BeginTextEdit(id string) bool {
	el, ok := c.scene.GetElementByID(id)
	if !ok || !el.IsText() {
		return false
	}
	return c.view.BeginEdit(id)
}

// EditText применяет набранный текст только к представлению.
func (c *Controller) EditText(id, content string) bool {
	return c.view.SetEditText(id, content)
}

// CommitTextEdit фиксирует текст и измеренный размер как заданный, затем
// повторно оповещает о выделении, чтобы панели обновились.
func (c *Controller) CommitTextEdit(id string) bool {
	return c.commitEdit(id, true)
}

// finishEdit commits an open in-place edit on any element other than keep,
// the way losing focus does.
func (c *Controller) finishEdit(keep string) {
	id, ok := c.view.Editing()
	if !ok || id == keep {
		return
	}
	c.commitEdit(id, false)
}

func (c *Controller) commitEdit(id string, selectAfter bool) bool {
	content, size, ok := c.view.EndEdit(id)
	if !ok {
		return false
	}

	w, h := models.Fixed(size.Width), models.Fixed(size.Height)
	c.apply(id, models.ElementPatch{Content: &content, Width: &w, Height: &h})

	switch {
	case c.scene.SelectedID() == id:
		c.notifySelected(id)
	case selectAfter:
		c.Select(id)
	}
	c.notifyListChanged()
	c.flush()
	return true
}
