package session

import (
	"fmt"
	"strings"

	"design-studio/internal/editor/models"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/muesli/reflow/truncate"
)

// ============================================================
// Layers panel
// ============================================================

const layerLabelWidth = 18

type Layer struct {
	ID       string      `json:"id"`
	Kind     models.Kind `json:"type"`
	Label    string      `json:"label"`
	ZIndex   int         `json:"zIndex"`
	Selected bool        `json:"selected"`
}

// Layers строит список слоёв сверху вниз, как его показывает панель.
func Layers(elements []models.Element, selectedID string) []Layer {
	out := make([]Layer, 0, len(elements))
	for i := len(elements) - 1; i >= 0; i-- {
		el := elements[i]
		out = append(out, Layer{
			ID:       el.ID,
			Kind:     el.Kind,
			Label:    LayerLabel(el),
			ZIndex:   el.ZIndex,
			Selected: el.ID == selectedID,
		})
	}
	return out
}

func LayerLabel(el models.Element) string {
	name := "Rectangle"
	if el.IsText() {
		name = el.Content
	}
	if len([]rune(name)) > layerLabelWidth {
		return truncate.String(name, layerLabelWidth) + "..."
	}
	return name
}

// ============================================================
// Properties panel
// ============================================================

// Properties is what the properties panel shows for the selected element.
type Properties struct {
	Element     models.Element      `json:"element"`
	FillHex     string              `json:"fillHex"`
	BorderHex   string              `json:"borderHex"`
	TextHex     string              `json:"textHex,omitempty"`
	FontChoices []models.FontChoice `json:"fontChoices,omitempty"`
}

func PropertiesOf(el models.Element) Properties {
	p := Properties{
		Element:   el,
		FillHex:   EnsureHex(el.Fill),
		BorderHex: EnsureHex(el.BorderColor),
	}
	if el.IsText() {
		p.TextHex = EnsureHex(el.TextColor)
		p.FontChoices = models.FontChoices
	}
	return p
}

// EnsureHex приводит цвет к значению, понятному color input: прозрачный
// становится белым, не-hex -- чёрным.
func EnsureHex(color string) string {
	if color == "" || color == "transparent" {
		return "#ffffff"
	}
	if c, err := colorful.Hex(color); err == nil {
		return c.Hex()
	}
	return "#000000"
}

// ValidColor accepts hex colors, transparent/none, CSS keywords and rgb()/hsl() forms.
func ValidColor(color string) bool {
	color = strings.TrimSpace(color)
	switch {
	case color == "":
		return false
	case color == "transparent" || color == "none":
		return true
	case strings.HasPrefix(color, "#"):
		if len(color) != 4 && len(color) != 7 {
			return false
		}
		_, err := colorful.Hex(color)
		return err == nil
	case strings.HasPrefix(color, "rgb(") || strings.HasPrefix(color, "rgba(") ||
		strings.HasPrefix(color, "hsl(") || strings.HasPrefix(color, "hsla("):
		return strings.HasSuffix(color, ")")
	}
	for _, r := range color {
		if (r < 'a' || r > 'z') && (r < 'A' || r > 'Z') {
			return false
		}
	}
	return true
}

// ValidatePatch проверяет правку из панели свойств до применения к сцене.
// Автоматический размер допустим только у текста.
func ValidatePatch(kind models.Kind, p models.ElementPatch) error {
	for name, c := range map[string]*string{"backgroundColor": p.Fill, "borderColor": p.BorderColor, "color": p.TextColor} {
		if c != nil && !ValidColor(*c) {
			return fmt.Errorf("%s: invalid color %q", name, *c)
		}
	}
	if p.BorderWidth != nil && *p.BorderWidth < 0 {
		return fmt.Errorf("borderWidth must be non-negative")
	}
	if p.CornerRadius != nil && *p.CornerRadius < 0 {
		return fmt.Errorf("borderRadius must be non-negative")
	}
	if p.FontSize != nil && (*p.FontSize <= 0 || *p.FontSize > models.MaxFontSize) {
		return fmt.Errorf("fontSize must be between 1 and %d", models.MaxFontSize)
	}
	if p.FontFamily != nil && !knownFont(*p.FontFamily) {
		return fmt.Errorf("fontFamily %q is not offered", *p.FontFamily)
	}
	for name, d := range map[string]*models.Dimension{"width": p.Width, "height": p.Height} {
		if d == nil {
			continue
		}
		if d.Auto && kind != models.KindText {
			return fmt.Errorf("%s: auto is only allowed for text", name)
		}
		if !d.Auto && d.Value < 0 {
			return fmt.Errorf("%s must be non-negative", name)
		}
	}
	return nil
}

func knownFont(family string) bool {
	for _, f := range models.FontChoices {
		if f.Family == family {
			return true
		}
	}
	return false
}
