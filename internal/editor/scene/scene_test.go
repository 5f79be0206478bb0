package scene

import (
	"fmt"
	"math/rand"
	"testing"

	"design-studio/internal/editor/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func addRect(s *Scene, id string) {
	s.AddElement(models.NewElement(id, models.KindRectangle, 0, 0, s.Len()+1))
}

func ids(s *Scene) []string {
	var out []string
	for _, el := range s.Elements() {
		out = append(out, el.ID)
	}
	return out
}

func assertContiguous(t *testing.T, s *Scene) {
	t.Helper()
	for i, el := range s.Elements() {
		assert.Equal(t, i+1, el.ZIndex, "element %s at index %d", el.ID, i)
	}
}

func TestScene_UpdateAndLookup(t *testing.T) {
	s := New(0, 0)
	assert.Equal(t, models.Size{Width: 800, Height: 600}, s.Canvas())
	assert.Equal(t, models.ToolCursor, s.ActiveTool())

	addRect(s, "a")

	fill := "#ff0000"
	assert.True(t, s.UpdateElement("a", models.ElementPatch{Fill: &fill}))
	assert.False(t, s.UpdateElement("missing", models.ElementPatch{Fill: &fill}))

	el, ok := s.GetElementByID("a")
	require.True(t, ok)
	assert.Equal(t, "#ff0000", el.Fill)
	assert.Equal(t, models.Fixed(100), el.Width, "untouched fields keep their values")

	_, ok = s.GetElementByID("missing")
	assert.False(t, ok)
}

func TestScene_RemoveDoesNotRenumber(t *testing.T) {
	s := New(800, 600)
	addRect(s, "a")
	addRect(s, "b")
	addRect(s, "c")

	require.True(t, s.RemoveElement("a"))
	assert.False(t, s.RemoveElement("a"))

	els := s.Elements()
	assert.Equal(t, 2, els[0].ZIndex)
	assert.Equal(t, 3, els[1].ZIndex)

	s.Normalize()
	assertContiguous(t, s)
}

func TestScene_Reorder(t *testing.T) {
	tests := []struct {
		name    string
		id      string
		dir     models.Direction
		changed bool
		order   []string
	}{
		{name: "bottom forward swaps", id: "a", dir: models.Forward, changed: true, order: []string{"b", "a", "c"}},
		{name: "top backward swaps", id: "c", dir: models.Backward, changed: true, order: []string{"a", "c", "b"}},
		{name: "top forward is a no-op", id: "c", dir: models.Forward, changed: false, order: []string{"a", "b", "c"}},
		{name: "bottom backward is a no-op", id: "a", dir: models.Backward, changed: false, order: []string{"a", "b", "c"}},
		{name: "unknown id is a no-op", id: "zz", dir: models.Forward, changed: false, order: []string{"a", "b", "c"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New(800, 600)
			addRect(s, "a")
			addRect(s, "b")
			addRect(s, "c")

			assert.Equal(t, tt.changed, s.Reorder(tt.id, tt.dir))
			assert.Equal(t, tt.order, ids(s))
			assertContiguous(t, s)
		})
	}
}

func TestScene_ReorderSwapsStackOrder(t *testing.T) {
	s := New(800, 600)
	addRect(s, "first")
	addRect(s, "second")

	require.True(t, s.Reorder("first", models.Forward))

	first, _ := s.GetElementByID("first")
	second, _ := s.GetElementByID("second")
	assert.Equal(t, 2, first.ZIndex)
	assert.Equal(t, 1, second.ZIndex)
}

func TestScene_StackContiguityUnderRandomOps(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	s := New(800, 600)
	next := 0

	for step := 0; step < 500; step++ {
		switch op := rng.Intn(3); {
		case op == 0 || s.Len() == 0:
			addRect(s, fmt.Sprintf("el_%d", next))
			next++
		case op == 1:
			victim := s.Elements()[rng.Intn(s.Len())].ID
			s.RemoveElement(victim)
			s.Normalize()
		default:
			target := s.Elements()[rng.Intn(s.Len())].ID
			dir := models.Forward
			if rng.Intn(2) == 0 {
				dir = models.Backward
			}
			s.Reorder(target, dir)
		}
		assertContiguous(t, s)
	}
}

func TestScene_ReplaceClearsSelection(t *testing.T) {
	s := New(800, 600)
	addRect(s, "a")
	s.SetSelected("a")

	s.Replace([]models.Element{models.NewElement("x", models.KindText, 1, 2, 1)})

	assert.Empty(t, s.SelectedID())
	assert.Equal(t, []string{"x"}, ids(s))
}
