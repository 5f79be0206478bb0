package export

import (
	"encoding/json"
	"fmt"

	"design-studio/internal/editor/models"

	"github.com/google/uuid"
)

// ============================================================
// JSON
// ============================================================

// JSON сериализует список элементов как есть, с отступом в два пробела.
func JSON(elements []models.Element) ([]byte, error) {
	if elements == nil {
		elements = []models.Element{}
	}
	data, err := json.MarshalIndent(elements, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal elements: %w", err)
	}
	return data, nil
}

// ImportJSON parses a JSON export. Elements without an id get a fresh one,
// duplicate ids and unknown kinds are rejected, and stack order is renumbered
// from list order.
func ImportJSON(data []byte) ([]models.Element, error) {
	var elements []models.Element
	if err := json.Unmarshal(data, &elements); err != nil {
		return nil, fmt.Errorf("decode elements: %w", err)
	}

	seen := make(map[string]struct{}, len(elements))
	for i := range elements {
		el := &elements[i]
		switch el.Kind {
		case models.KindRectangle, models.KindText:
		default:
			return nil, fmt.Errorf("element %d: unknown type %q", i, el.Kind)
		}
		if el.ID == "" {
			el.ID = "el_" + uuid.NewString()
		}
		if _, dup := seen[el.ID]; dup {
			return nil, fmt.Errorf("element %d: duplicate id %q", i, el.ID)
		}
		seen[el.ID] = struct{}{}
		el.ZIndex = i + 1
	}
	if elements == nil {
		elements = []models.Element{}
	}
	return elements, nil
}
