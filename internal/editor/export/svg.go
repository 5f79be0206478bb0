package export

import (
	"fmt"
	"html"
	"strings"

	"design-studio/internal/editor/models"
)

// ============================================================
// SVG
// ============================================================

// Sizer reports the rendered size of an element; auto-sized text needs it.
type Sizer func(el models.Element) models.Size

// SVG рендерит элементы в порядке слоёв. sizer может быть nil -- тогда
// используются заданные размеры.
func SVG(canvas models.Size, elements []models.Element, sizer Sizer) string {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	b.WriteString(fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" width="%s" height="%s" viewBox="0 0 %s %s">`,
		formatFloat(canvas.Width), formatFloat(canvas.Height), formatFloat(canvas.Width), formatFloat(canvas.Height)))
	b.WriteString("\n")

	for _, el := range elements {
		size := el.DeclaredSize()
		if sizer != nil {
			size = sizer(el)
		}

		b.WriteString("  ")
		b.WriteString(renderGroup(el, size))
		b.WriteString("\n")
	}

	b.WriteString(`</svg>`)
	return b.String()
}

func renderGroup(el models.Element, size models.Size) string {
	var g strings.Builder

	g.WriteString(fmt.Sprintf(`<g id="%s"`, html.EscapeString(el.ID)))
	if el.Rotation != 0 {
		cx := el.X + size.Width/2
		cy := el.Y + size.Height/2
		g.WriteString(fmt.Sprintf(` transform="rotate(%s %s %s)"`, formatFloat(el.Rotation), formatFloat(cx), formatFloat(cy)))
	}
	g.WriteString(">")

	g.WriteString(fmt.Sprintf(`<rect x="%s" y="%s" width="%s" height="%s" rx="%d" fill="%s"`,
		formatFloat(el.X), formatFloat(el.Y), formatFloat(size.Width), formatFloat(size.Height),
		el.CornerRadius, svgPaint(el.Fill)))
	if el.BorderWidth > 0 {
		g.WriteString(fmt.Sprintf(` stroke="%s" stroke-width="%d"`, svgPaint(el.BorderColor), el.BorderWidth))
	}
	g.WriteString(" />")

	if el.IsText() {
		g.WriteString(fmt.Sprintf(`<text x="%s" y="%s" dominant-baseline="middle" font-size="%d" font-family="%s" fill="%s">%s</text>`,
			formatFloat(el.X+float64(el.BorderWidth)), formatFloat(el.Y+size.Height/2),
			el.FontSize, html.EscapeString(el.FontFamily), svgPaint(el.TextColor), html.EscapeString(el.Content)))
	}

	g.WriteString("</g>")
	return g.String()
}

func svgPaint(color string) string {
	if color == "" || color == "transparent" {
		return "none"
	}
	return html.EscapeString(color)
}
