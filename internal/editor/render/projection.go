package render

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"design-studio/internal/editor/models"
	"design-studio/internal/editor/scene"
)

// ============================================================
// Visual Nodes
// ============================================================

// Node is the visual counterpart of one element.
type Node struct {
	ID           string          `json:"id"`
	Kind         models.Kind     `json:"type"`
	Left         float64         `json:"left"`
	Top          float64         `json:"top"`
	Width        string          `json:"width"`
	Height       string          `json:"height"`
	ZIndex       int             `json:"zIndex"`
	Rotation     float64         `json:"rotation"`
	Background   string          `json:"background"`
	CornerRadius int             `json:"borderRadius"`
	Border       string          `json:"border"`
	FontSize     int             `json:"fontSize,omitempty"`
	FontFamily   string          `json:"fontFamily,omitempty"`
	Color        string          `json:"color,omitempty"`
	Text         string          `json:"text,omitempty"`
	Selected     bool            `json:"selected"`
	Editing      bool            `json:"editing"`
	Handles      []models.Corner `json:"handles,omitempty"`
	Measured     models.Size     `json:"measured"`
}

// Style собирает inline CSS, как его видит редактор.
func (n *Node) Style() string {
	decls := []string{
		"position: absolute",
		"left: " + px(n.Left),
		"top: " + px(n.Top),
		"z-index: " + strconv.Itoa(n.ZIndex),
		fmt.Sprintf("transform: rotate(%sdeg)", formatFloat(n.Rotation)),
		"box-sizing: border-box",
		"background-color: " + n.Background,
		fmt.Sprintf("border-radius: %dpx", n.CornerRadius),
		"border: " + n.Border,
		"width: " + n.Width,
		"height: " + n.Height,
	}
	if n.Kind == models.KindText {
		decls = append(decls,
			fmt.Sprintf("font-size: %dpx", n.FontSize),
			"font-family: "+n.FontFamily,
			"color: "+n.Color,
			"display: flex",
			"align-items: center",
			"min-width: 20px",
			"outline: none",
		)
	}
	return strings.Join(decls, "; ") + ";"
}

// Bounds returns the rendered box in canvas coordinates.
func (n *Node) Bounds() models.Rect {
	return models.Rect{X: n.Left, Y: n.Top, Width: n.Measured.Width, Height: n.Measured.Height}
}

func (n *Node) hasHandles() bool { return len(n.Handles) > 0 }

// ============================================================
// Projection
// ============================================================

const HandleRadius = 6

// Projection keeps a headless visual tree in sync with a scene.
type Projection struct {
	scene    *scene.Scene
	measurer *TextMeasurer
	nodes    map[string]*Node
}

func NewProjection(s *scene.Scene, measurer *TextMeasurer) *Projection {
	return &Projection{
		scene:    s,
		measurer: measurer,
		nodes:    make(map[string]*Node),
	}
}

func (p *Projection) Node(id string) (*Node, bool) {
	n, ok := p.nodes[id]
	return n, ok
}

// Nodes returns nodes in paint order.
func (p *Projection) Nodes() []*Node {
	var out []*Node
	for _, el := range p.scene.Elements() {
		if n, ok := p.nodes[el.ID]; ok {
			out = append(out, n)
		}
	}
	return out
}

// Sync переносит элемент в визуальный узел, создавая его при необходимости.
func (p *Projection) Sync(el models.Element) *Node {
	n, ok := p.nodes[el.ID]
	if !ok {
		n = &Node{ID: el.ID}
		p.nodes[el.ID] = n
	}

	n.Kind = el.Kind
	n.Left = el.X
	n.Top = el.Y
	n.ZIndex = el.ZIndex
	n.Rotation = el.Rotation
	n.Background = el.Fill
	n.CornerRadius = el.CornerRadius
	n.Border = fmt.Sprintf("%dpx solid %s", el.BorderWidth, el.BorderColor)
	n.Width = cssDimension(el.Width)
	n.Height = cssDimension(el.Height)
	n.Selected = p.scene.SelectedID() == el.ID

	if el.IsText() {
		if !n.Editing {
			n.Text = el.Content
		}
		n.FontSize = el.FontSize
		n.FontFamily = el.FontFamily
		n.Color = el.TextColor
	} else {
		n.Text = ""
		n.FontSize = 0
		n.FontFamily = ""
		n.Color = ""
	}

	n.Measured = p.measure(el, n.Text)

	if n.Selected && !n.hasHandles() {
		n.Handles = append([]models.Corner(nil), models.Corners...)
	}
	return n
}

// RenderAll перестраивает дерево из сцены целиком. Узел, который сейчас
// редактируется, сохраняет режим и набранный текст.
func (p *Projection) RenderAll() {
	prev := p.nodes
	p.nodes = make(map[string]*Node, len(prev))
	for _, el := range p.scene.Elements() {
		if old, ok := prev[el.ID]; ok && old.Editing {
			p.nodes[el.ID] = &Node{ID: el.ID, Editing: true, Text: old.Text}
		}
		p.Sync(el)
	}
}

func (p *Projection) Remove(id string) {
	delete(p.nodes, id)
}

// ShowHandles marks the node selected and attaches the four corner handles once.
func (p *Projection) ShowHandles(id string) {
	n, ok := p.nodes[id]
	if !ok {
		return
	}
	n.Selected = true
	if !n.hasHandles() {
		n.Handles = append([]models.Corner(nil), models.Corners...)
	}
}

// HideHandles снимает выделение и ручки.
func (p *Projection) HideHandles(id string) {
	n, ok := p.nodes[id]
	if !ok {
		return
	}
	n.Selected = false
	n.Handles = nil
}

// Measure returns the rendered size of an element, if it has a node.
func (p *Projection) Measure(id string) (models.Size, bool) {
	n, ok := p.nodes[id]
	if !ok {
		return models.Size{}, false
	}
	return n.Measured, true
}

func (p *Projection) measure(el models.Element, text string) models.Size {
	size := el.DeclaredSize()
	if !el.IsText() || p.measurer == nil {
		return size
	}
	if !el.Width.Auto && !el.Height.Auto {
		return size
	}

	border := float64(2 * el.BorderWidth)
	wrapAt := 0.0
	if !el.Width.Auto {
		wrapAt = math.Max(0, el.Width.Value-border)
	}
	extent := p.measurer.Measure(text, el.FontFamily, el.FontSize, wrapAt)

	if el.Width.Auto {
		size.Width = math.Max(models.MinDimension, extent.Width+border)
	}
	if el.Height.Auto {
		size.Height = extent.Height + border
	}
	return size
}

// ============================================================
// In-place text editing
// ============================================================

func (p *Projection) BeginEdit(id string) bool {
	n, ok := p.nodes[id]
	if !ok || n.Kind != models.KindText {
		return false
	}
	n.Editing = true
	return true
}

// SetEditText applies live keystrokes to the node only.
func (p *Projection) SetEditText(id, text string) bool {
	n, ok := p.nodes[id]
	if !ok || !n.Editing {
		return false
	}
	n.Text = text
	if el, found := p.scene.GetElementByID(id); found {
		n.Measured = p.measure(el, text)
	}
	return true
}

// EndEdit выходит из режима редактирования и возвращает текст и измеренный размер.
func (p *Projection) EndEdit(id string) (string, models.Size, bool) {
	n, ok := p.nodes[id]
	if !ok || !n.Editing {
		return "", models.Size{}, false
	}
	n.Editing = false
	return n.Text, n.Measured, true
}

func (p *Projection) Editing() (string, bool) {
	for id, n := range p.nodes {
		if n.Editing {
			return id, true
		}
	}
	return "", false
}

func (p *Projection) IsEditing(id string) bool {
	n, ok := p.nodes[id]
	return ok && n.Editing
}

// ============================================================
// Hit testing
// ============================================================

type TargetKind string

const (
	TargetNone    TargetKind = ""
	TargetCanvas  TargetKind = "canvas"
	TargetElement TargetKind = "element"
	TargetHandle  TargetKind = "handle"
)

type Target struct {
	Kind      TargetKind    `json:"kind"`
	ElementID string        `json:"elementId,omitempty"`
	Corner    models.Corner `json:"corner,omitempty"`
}

// HitTest находит цель указателя: ручки выделенного элемента, затем элементы сверху вниз, затем холст.
func (p *Projection) HitTest(x, y float64) Target {
	if sel := p.scene.SelectedID(); sel != "" {
		if n, ok := p.nodes[sel]; ok && n.hasHandles() {
			b := n.Bounds()
			for _, c := range n.Handles {
				cx, cy := b.X, b.Y
				if c.Right() {
					cx += b.Width
				}
				if c.Bottom() {
					cy += b.Height
				}
				if math.Abs(x-cx) <= HandleRadius && math.Abs(y-cy) <= HandleRadius {
					return Target{Kind: TargetHandle, ElementID: sel, Corner: c}
				}
			}
		}
	}

	els := p.scene.Elements()
	for i := len(els) - 1; i >= 0; i-- {
		n, ok := p.nodes[els[i].ID]
		if !ok {
			continue
		}
		if n.Bounds().Contains(x, y) {
			return Target{Kind: TargetElement, ElementID: n.ID}
		}
	}

	canvas := p.scene.Canvas()
	if x < 0 || y < 0 || x > canvas.Width || y > canvas.Height {
		return Target{Kind: TargetNone}
	}
	return Target{Kind: TargetCanvas}
}

// ============================================================
// Formatting helpers
// ============================================================

func cssDimension(d models.Dimension) string {
	if d.Auto {
		return "auto"
	}
	return px(d.Value)
}

func px(v float64) string {
	return formatFloat(v) + "px"
}

func formatFloat(val float64) string {
	return strconv.FormatFloat(val, 'f', -1, 64)
}
