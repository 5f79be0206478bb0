package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// ============================================================
// Enumerations
// ============================================================

type Kind string

const (
	KindRectangle Kind = "rectangle"
	KindText      Kind = "text"
)

type Tool string

const (
	ToolCursor    Tool = "cursor"
	ToolRectangle Tool = "rectangle"
	ToolText      Tool = "text"
)

// ParseTool проверяет имя инструмента.
func ParseTool(s string) (Tool, bool) {
	switch Tool(s) {
	case ToolCursor, ToolRectangle, ToolText:
		return Tool(s), true
	}
	return "", false
}

type Direction string

const (
	Forward  Direction = "forward"
	Backward Direction = "backward"
)

// ParseDirection принимает forward/backward и старые up/down из панели слоёв.
func ParseDirection(s string) (Direction, bool) {
	switch s {
	case "forward", "up":
		return Forward, true
	case "backward", "down":
		return Backward, true
	}
	return "", false
}

type Corner string

const (
	TopLeft     Corner = "tl"
	TopRight    Corner = "tr"
	BottomLeft  Corner = "bl"
	BottomRight Corner = "br"
)

// Corners in the order handles are attached.
var Corners = []Corner{TopLeft, TopRight, BottomLeft, BottomRight}

func (c Corner) Left() bool   { return c == TopLeft || c == BottomLeft }
func (c Corner) Right() bool  { return c == TopRight || c == BottomRight }
func (c Corner) Top() bool    { return c == TopLeft || c == TopRight }
func (c Corner) Bottom() bool { return c == BottomLeft || c == BottomRight }

// ============================================================
// Geometry
// ============================================================

type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

func (r Rect) Contains(x, y float64) bool {
	return x >= r.X && x <= r.X+r.Width && y >= r.Y && y <= r.Y+r.Height
}

// ============================================================
// Dimension
// ============================================================

// Dimension is a declared width or height. Auto means the rendered size is
// authoritative until an edit commits a fixed value.
type Dimension struct {
	Auto  bool
	Value float64
}

func Fixed(v float64) Dimension { return Dimension{Value: v} }

func AutoSize() Dimension { return Dimension{Auto: true} }

func (d Dimension) String() string {
	if d.Auto {
		return "auto"
	}
	return strconv.FormatFloat(d.Value, 'f', -1, 64)
}

func (d Dimension) MarshalJSON() ([]byte, error) {
	if d.Auto {
		return []byte(`"auto"`), nil
	}
	return json.Marshal(d.Value)
}

func (d *Dimension) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*d = Dimension{Auto: true}
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		if s == "auto" || s == "" {
			*d = Dimension{Auto: true}
			return nil
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return fmt.Errorf("dimension %q: %w", s, err)
		}
		*d = Dimension{Value: v}
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("dimension: %w", err)
	}
	*d = Dimension{Value: v}
	return nil
}

// ============================================================
// Element
// ============================================================

type Element struct {
	ID           string    `json:"id"`
	Kind         Kind      `json:"type"`
	X            float64   `json:"x"`
	Y            float64   `json:"y"`
	Width        Dimension `json:"width"`
	Height       Dimension `json:"height"`
	Fill         string    `json:"backgroundColor"`
	CornerRadius int       `json:"borderRadius"`
	Rotation     float64   `json:"rotation"`
	BorderWidth  int       `json:"borderWidth"`
	BorderColor  string    `json:"borderColor"`
	Content      string    `json:"content"`
	FontSize     int       `json:"fontSize"`
	FontFamily   string    `json:"fontFamily"`
	TextColor    string    `json:"color"`
	ZIndex       int       `json:"zIndex"`
}

func (e Element) IsText() bool { return e.Kind == KindText }

// DeclaredSize возвращает заданный размер; auto-измерения дают 0.
func (e Element) DeclaredSize() Size {
	var s Size
	if !e.Width.Auto {
		s.Width = e.Width.Value
	}
	if !e.Height.Auto {
		s.Height = e.Height.Value
	}
	return s
}

// ElementPatch is a partial update; nil fields are left untouched.
type ElementPatch struct {
	X            *float64   `json:"x,omitempty"`
	Y            *float64   `json:"y,omitempty"`
	Width        *Dimension `json:"width,omitempty"`
	Height       *Dimension `json:"height,omitempty"`
	Fill         *string    `json:"backgroundColor,omitempty"`
	CornerRadius *int       `json:"borderRadius,omitempty"`
	Rotation     *float64   `json:"rotation,omitempty"`
	BorderWidth  *int       `json:"borderWidth,omitempty"`
	BorderColor  *string    `json:"borderColor,omitempty"`
	Content      *string    `json:"content,omitempty"`
	FontSize     *int       `json:"fontSize,omitempty"`
	FontFamily   *string    `json:"fontFamily,omitempty"`
	TextColor    *string    `json:"color,omitempty"`
}

// Apply сливает заданные поля патча в элемент.
func (p ElementPatch) Apply(e *Element) {
	if p.X != nil {
		e.X = *p.X
	}
	if p.Y != nil {
		e.Y = *p.Y
	}
	if p.Width != nil {
		e.Width = *p.Width
	}
	if p.Height != nil {
		e.Height = *p.Height
	}
	if p.Fill != nil {
		e.Fill = *p.Fill
	}
	if p.CornerRadius != nil {
		e.CornerRadius = *p.CornerRadius
	}
	if p.Rotation != nil {
		e.Rotation = *p.Rotation
	}
	if p.BorderWidth != nil {
		e.BorderWidth = *p.BorderWidth
	}
	if p.BorderColor != nil {
		e.BorderColor = *p.BorderColor
	}
	if p.Content != nil {
		e.Content = *p.Content
	}
	if p.FontSize != nil {
		e.FontSize = *p.FontSize
	}
	if p.FontFamily != nil {
		e.FontFamily = *p.FontFamily
	}
	if p.TextColor != nil {
		e.TextColor = *p.TextColor
	}
}

// Geometry patch helper used by gestures.
func MovePatch(x, y float64) ElementPatch {
	return ElementPatch{X: &x, Y: &y}
}

func BoundsPatch(r Rect) ElementPatch {
	w, h := Fixed(r.Width), Fixed(r.Height)
	return ElementPatch{X: &r.X, Y: &r.Y, Width: &w, Height: &h}
}
