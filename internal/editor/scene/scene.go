package scene

import (
	"design-studio/internal/editor/models"
)

// ============================================================
// Scene
// ============================================================

// Scene is the ordered element list of one project plus selection and
// tool state. List order is paint order: the last element is front-most.
type Scene struct {
	elements   []models.Element
	selectedID string
	activeTool models.Tool
	canvas     models.Size
}

func New(width, height float64) *Scene {
	if width <= 0 {
		width = models.DefaultCanvasWidth
	}
	if height <= 0 {
		height = models.DefaultCanvasHeight
	}
	return &Scene{
		activeTool: models.ToolCursor,
		canvas:     models.Size{Width: width, Height: height},
	}
}

func (s *Scene) Canvas() models.Size { return s.canvas }

func (s *Scene) Len() int { return len(s.elements) }

func (s *Scene) SelectedID() string { return s.selectedID }

func (s *Scene) ActiveTool() models.Tool { return s.activeTool }

// Replace загружает элементы проекта вместо текущих и сбрасывает выделение.
func (s *Scene) Replace(elements []models.Element) {
	s.elements = append([]models.Element(nil), elements...)
	s.selectedID = ""
}

// Elements returns a copy of the ordered list.
func (s *Scene) Elements() []models.Element {
	out := make([]models.Element, len(s.elements))
	copy(out, s.elements)
	return out
}

// AddElement добавляет элемент в конец порядка. ID и ZIndex назначает вызывающий.
func (s *Scene) AddElement(el models.Element) {
	s.elements = append(s.elements, el)
}

// UpdateElement сливает патч в элемент; неизвестный id -- no-op.
func (s *Scene) UpdateElement(id string, patch models.ElementPatch) bool {
	i := s.IndexOf(id)
	if i < 0 {
		return false
	}
	patch.Apply(&s.elements[i])
	return true
}

func (s *Scene) GetElementByID(id string) (models.Element, bool) {
	i := s.IndexOf(id)
	if i < 0 {
		return models.Element{}, false
	}
	return s.elements[i], true
}

// RemoveElement удаляет элемент без перенумерации ZIndex.
func (s *Scene) RemoveElement(id string) bool {
	i := s.IndexOf(id)
	if i < 0 {
		return false
	}
	s.elements = append(s.elements[:i], s.elements[i+1:]...)
	return true
}

func (s *Scene) IndexOf(id string) int {
	for i := range s.elements {
		if s.elements[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *Scene) SetActiveTool(tool models.Tool) {
	s.activeTool = tool
}

// SetSelected stores the selection without any notification. The selection
// protocol lives in the tool controller.
func (s *Scene) SetSelected(id string) {
	s.selectedID = id
}

func (s *Scene) ClearSelection() {
	s.selectedID = ""
}

// ============================================================
// Layer ordering
// ============================================================

// Reorder меняет элемент местами с соседом. Возвращает false на границе списка.
func (s *Scene) Reorder(id string, dir models.Direction) bool {
	i := s.IndexOf(id)
	if i < 0 {
		return false
	}

	var j int
	switch {
	case dir == models.Forward && i < len(s.elements)-1:
		j = i + 1
	case dir == models.Backward && i > 0:
		j = i - 1
	default:
		return false
	}

	s.elements[i], s.elements[j] = s.elements[j], s.elements[i]
	s.Normalize()
	return true
}

// Normalize sets ZIndex to index+1 for every element.
func (s *Scene) Normalize() {
	for i := range s.elements {
		s.elements[i].ZIndex = i + 1
	}
}
