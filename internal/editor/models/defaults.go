package models

// ============================================================
// Defaults
// ============================================================

const (
	MinDimension = 20
	NudgeStep    = 5

	DefaultCanvasWidth  = 800
	DefaultCanvasHeight = 600

	DefaultRectSize   = 100
	DefaultTextWidth  = 150
	DefaultFontSize   = 16
	MaxFontSize       = 512
	DefaultTextFill   = "transparent"
	DefaultRectFill   = "#cbd5e1"
	DefaultInkColor   = "#000000"
	DefaultTextLabel  = "Double click to edit"
	DefaultFontFamily = "Outfit, sans-serif"
)

// FontChoice is one entry of the font picker.
type FontChoice struct {
	Label  string `json:"label"`
	Family string `json:"family"`
}

var FontChoices = []FontChoice{
	{Label: "Outfit", Family: "Outfit, sans-serif"},
	{Label: "Inter", Family: "Inter, sans-serif"},
	{Label: "Monospace", Family: "'Courier New', monospace"},
	{Label: "Serif", Family: "'Times New Roman', serif"},
	{Label: "Cursive", Family: "'Brush Script MT', cursive"},
}

// NewElement создает элемент с настройками по умолчанию для инструмента.
func NewElement(id string, kind Kind, x, y float64, zIndex int) Element {
	el := Element{
		ID:          id,
		Kind:        kind,
		X:           x,
		Y:           y,
		Width:       Fixed(DefaultRectSize),
		Height:      Fixed(DefaultRectSize),
		Fill:        DefaultRectFill,
		BorderColor: DefaultInkColor,
		FontSize:    DefaultFontSize,
		FontFamily:  DefaultFontFamily,
		TextColor:   DefaultInkColor,
		ZIndex:      zIndex,
	}
	if kind == KindText {
		el.Width = Fixed(DefaultTextWidth)
		el.Height = AutoSize()
		el.Fill = DefaultTextFill
		el.Content = DefaultTextLabel
	}
	return el
}

// KindForTool maps a placement tool to the element it creates.
func KindForTool(t Tool) (Kind, bool) {
	switch t {
	case ToolRectangle:
		return KindRectangle, true
	case ToolText:
		return KindText, true
	}
	return "", false
}
