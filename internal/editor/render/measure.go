package render

import (
	"fmt"
	"math"
	"strings"
	"sync"

	"design-studio/internal/editor/models"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// ============================================================
// Text Measurer
// ============================================================

type faceKey struct {
	mono bool
	size int
}

// TextMeasurer lays out text with the Go fonts to estimate rendered extents.
type TextMeasurer struct {
	mu      sync.Mutex
	regular *opentype.Font
	mono    *opentype.Font
	faces   map[faceKey]font.Face
}

func NewTextMeasurer() (*TextMeasurer, error) {
	regular, err := opentype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("parse regular font: %w", err)
	}
	mono, err := opentype.Parse(gomono.TTF)
	if err != nil {
		return nil, fmt.Errorf("parse mono font: %w", err)
	}
	return &TextMeasurer{
		regular: regular,
		mono:    mono,
		faces:   make(map[faceKey]font.Face),
	}, nil
}

func (m *TextMeasurer) face(family string, size int) (font.Face, error) {
	if size <= 0 {
		size = models.DefaultFontSize
	}
	size = min(size, models.MaxFontSize)
	key := faceKey{mono: strings.Contains(family, "monospace"), size: size}
	if f, ok := m.faces[key]; ok {
		return f, nil
	}

	src := m.regular
	if key.mono {
		src = m.mono
	}
	f, err := opentype.NewFace(src, &opentype.FaceOptions{
		Size:    float64(size),
		DPI:     72,
		Hinting: font.HintingNone,
	})
	if err != nil {
		return nil, err
	}
	m.faces[key] = f
	return f, nil
}

// Measure возвращает размер текстового блока. maxWidth > 0 включает перенос по словам.
func (m *TextMeasurer) Measure(content, family string, size int, maxWidth float64) models.Size {
	m.mu.Lock()
	defer m.mu.Unlock()

	face, err := m.face(family, size)
	if err != nil {
		// Fallback: rough average advance of half an em.
		lines := float64(strings.Count(content, "\n") + 1)
		return models.Size{Width: float64(len(content)) * float64(size) / 2, Height: lines * float64(size) * 1.2}
	}

	lineHeight := fixedToFloat(face.Metrics().Height)

	var widest float64
	lines := 0
	for _, raw := range strings.Split(content, "\n") {
		for _, line := range wrapLine(face, raw, maxWidth) {
			if w := fixedToFloat(font.MeasureString(face, line)); w > widest {
				widest = w
			}
			lines++
		}
	}
	if lines == 0 {
		lines = 1
	}

	return models.Size{
		Width:  math.Ceil(widest),
		Height: math.Ceil(lineHeight * float64(lines)),
	}
}

func wrapLine(face font.Face, line string, maxWidth float64) []string {
	if maxWidth <= 0 {
		return []string{line}
	}
	words := strings.Fields(line)
	if len(words) == 0 {
		return []string{""}
	}

	var out []string
	current := words[0]
	for _, w := range words[1:] {
		candidate := current + " " + w
		if fixedToFloat(font.MeasureString(face, candidate)) > maxWidth {
			out = append(out, current)
			current = w
			continue
		}
		current = candidate
	}
	return append(out, current)
}

func fixedToFloat(v fixed.Int26_6) float64 {
	return float64(v) / 64
}
