package export

import (
	"fmt"
	"html"
	"strconv"
	"strings"

	"design-studio/internal/editor/models"
)

// ============================================================
// HTML
// ============================================================

// HTML собирает самостоятельный документ: по одному абсолютно
// позиционированному блоку на элемент внутри холста фиксированного размера.
func HTML(title string, canvas models.Size, elements []models.Element) string {
	var b strings.Builder

	b.WriteString("<!DOCTYPE html>\n")
	b.WriteString(`<html lang="en">` + "\n")
	b.WriteString("<head>\n")
	b.WriteString(`    <meta charset="UTF-8">` + "\n")
	b.WriteString(`    <meta name="viewport" content="width=device-width, initial-scale=1.0">` + "\n")
	b.WriteString(fmt.Sprintf("    <title>%s</title>\n", html.EscapeString(title)))
	b.WriteString("    <style>\n")
	b.WriteString("        body { margin: 0; padding: 0; background-color: #f3f4f6; display: flex; justify-content: center; align-items: center; height: 100vh; font-family: sans-serif; }\n")
	b.WriteString(fmt.Sprintf("        .canvas { position: relative; width: %spx; height: %spx; background: white; box-shadow: 0 0 20px rgba(0,0,0,0.1); overflow: hidden; }\n",
		formatFloat(canvas.Width), formatFloat(canvas.Height)))
	b.WriteString("        .element { position: absolute; box-sizing: border-box; display: flex; align-items: center; overflow: hidden; }\n")
	b.WriteString("    </style>\n")
	b.WriteString("</head>\n")
	b.WriteString("<body>\n")
	b.WriteString(`    <div class="canvas">` + "\n")

	for _, el := range elements {
		content := ""
		if el.IsText() {
			content = html.EscapeString(el.Content)
		}
		b.WriteString(fmt.Sprintf(`        <div class="element" style="%s">%s</div>`+"\n",
			html.EscapeString(elementStyle(el)), content))
	}

	b.WriteString("    </div>\n")
	b.WriteString("</body>\n")
	b.WriteString("</html>\n")
	return b.String()
}

func elementStyle(el models.Element) string {
	width, height := "auto", "auto"
	if !el.IsText() {
		width = formatFloat(el.Width.Value) + "px"
		height = formatFloat(el.Height.Value) + "px"
	}

	decls := []string{
		"left: " + formatFloat(el.X) + "px",
		"top: " + formatFloat(el.Y) + "px",
		"width: " + width,
		"height: " + height,
		"z-index: " + strconv.Itoa(el.ZIndex),
		"transform: rotate(" + formatFloat(el.Rotation) + "deg)",
		"background-color: " + el.Fill,
		"border-radius: " + strconv.Itoa(el.CornerRadius) + "px",
	}
	if el.BorderWidth > 0 {
		decls = append(decls, fmt.Sprintf("border: %dpx solid %s", el.BorderWidth, el.BorderColor))
	}
	if el.IsText() {
		decls = append(decls,
			"font-size: "+strconv.Itoa(el.FontSize)+"px",
			"font-family: "+el.FontFamily,
			"color: "+el.TextColor,
			"white-space: nowrap",
		)
	}
	return strings.Join(decls, "; ") + ";"
}

func formatFloat(val float64) string {
	return strconv.FormatFloat(val, 'f', -1, 64)
}
