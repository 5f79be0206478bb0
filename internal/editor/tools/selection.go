package tools

import (
	"design-studio/internal/editor/models"
)

// ============================================================
// Selection
// ============================================================

// Select выделяет элемент. Повторный выбор того же id ничего не делает;
// предыдущее выделение снимается и оповещается первым.
func (c *Controller) Select(id string) {
	if c.scene.SelectedID() == id {
		return
	}
	if _, ok := c.scene.GetElementByID(id); !ok {
		return
	}

	c.finishEdit(id)
	c.clearSelection()
	c.scene.SetSelected(id)
	c.view.ShowHandles(id)
	c.notifySelected(id)
}

// Deselect clears the selection, if any, and removes its handles. An open
// text edit is committed first.
func (c *Controller) Deselect() {
	c.finishEdit("")
	c.clearSelection()
}

func (c *Controller) clearSelection() {
	id := c.scene.SelectedID()
	if id == "" {
		return
	}
	c.view.HideHandles(id)
	c.scene.ClearSelection()
	c.notifyDeselected()
}

// ============================================================
// Tools
// ============================================================

// SelectTool переключает активный инструмент и оповещает наблюдателей.
func (c *Controller) SelectTool(tool models.Tool) {
	if _, ok := models.ParseTool(string(tool)); !ok {
		return
	}
	c.scene.SetActiveTool(tool)
	c.notifyTool(tool)
}
