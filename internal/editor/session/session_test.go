package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"design-studio/internal/editor/models"
	"design-studio/internal/editor/tools"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memStore is an in-memory Store. When gate is set, every save first
// reports on started and then waits for gate to be closed.
type memStore struct {
	mu       sync.Mutex
	projects map[string][]models.Element
	saves    [][]models.Element
	loadErr  error

	loadDelay time.Duration
	loads     int
	strict    bool

	started chan struct{}
	gate    chan struct{}
}

func newMemStore() *memStore {
	return &memStore{projects: make(map[string][]models.Element)}
}

func (m *memStore) LoadElements(_ context.Context, projectID string) ([]models.Element, error) {
	time.Sleep(m.loadDelay)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loads++
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	if _, ok := m.projects[projectID]; !ok && m.strict {
		return nil, errors.New("project not found")
	}
	return append([]models.Element(nil), m.projects[projectID]...), nil
}

func (m *memStore) SaveElements(_ context.Context, projectID string, elements []models.Element) error {
	if m.started != nil {
		m.started <- struct{}{}
	}
	if m.gate != nil {
		<-m.gate
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.projects[projectID] = elements
	m.saves = append(m.saves, elements)
	return nil
}

func (m *memStore) savedIDs() [][]string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([][]string, 0, len(m.saves))
	for _, els := range m.saves {
		ids := []string{}
		for _, el := range els {
			ids = append(ids, el.ID)
		}
		out = append(out, ids)
	}
	return out
}

func snapshot(ids ...string) []models.Element {
	out := make([]models.Element, 0, len(ids))
	for i, id := range ids {
		out = append(out, models.NewElement(id, models.KindRectangle, 0, 0, i+1))
	}
	return out
}

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("el_%d", n)
	}
}

// ============================================================
// AsyncSaver
// ============================================================

func TestAsyncSaver_NewestPendingSnapshotWins(t *testing.T) {
	store := newMemStore()
	store.started = make(chan struct{}, 4)
	store.gate = make(chan struct{})

	saver := NewAsyncSaver(store, "p1", time.Second)
	saver.Flush(snapshot("a"))

	select {
	case <-store.started:
	case <-time.After(time.Second):
		t.Fatal("first save did not start")
	}

	// Пока первое сохранение висит, b вытесняется c.
	saver.Flush(snapshot("a", "b"))
	saver.Flush(snapshot("a", "b", "c"))

	close(store.gate)
	saver.Close()

	assert.Equal(t, [][]string{{"a"}, {"a", "b", "c"}}, store.savedIDs())
	assert.Len(t, store.projects["p1"], 3, "last flush wins")
}

func TestAsyncSaver_CloseDrainsPending(t *testing.T) {
	store := newMemStore()
	saver := NewAsyncSaver(store, "p1", time.Second)

	saver.Flush(snapshot("x"))
	saver.Close()

	ids := store.savedIDs()
	require.NotEmpty(t, ids)
	assert.Equal(t, []string{"x"}, ids[len(ids)-1])
}

func TestAsyncSaver_FlushAfterCloseIsDropped(t *testing.T) {
	store := newMemStore()
	saver := NewAsyncSaver(store, "p1", time.Second)
	saver.Close()

	assert.NotPanics(t, func() { saver.Flush(snapshot("late")) })
	assert.NotPanics(t, saver.Close)
	assert.Empty(t, store.savedIDs())
}

func TestAsyncSaver_FlushDoesNotBlockOnSlowStore(t *testing.T) {
	store := newMemStore()
	store.gate = make(chan struct{})
	saver := NewAsyncSaver(store, "p1", time.Second)

	done := make(chan struct{})
	go func() {
		for i := 0; i < 50; i++ {
			saver.Flush(snapshot(fmt.Sprintf("s%d", i)))
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Flush blocked on the store")
	}
	close(store.gate)
	saver.Close()
}

// ============================================================
// Manager & Session
// ============================================================

func newManager(store *memStore) *Manager {
	return NewManager(store, Options{
		Canvas:      models.Size{Width: 800, Height: 600},
		SaveTimeout: time.Second,
		NewID:       sequentialIDs(),
	})
}

func TestManager_OpenLoadsProject(t *testing.T) {
	store := newMemStore()
	store.projects["p1"] = snapshot("a", "b")
	m := newManager(store)

	s, err := m.Open(context.Background(), "u1", "p1")
	require.NoError(t, err)
	defer m.CloseAll()

	st := s.State()
	assert.Equal(t, "p1", st.ProjectID)
	assert.Equal(t, models.ToolCursor, st.ActiveTool)
	assert.Equal(t, "idle", st.Gesture)
	require.Len(t, st.Elements, 2)
	require.Len(t, st.Nodes, 2)
	assert.Equal(t, "a", st.Nodes[0].ID)

	got, err := m.Get(s.ID)
	require.NoError(t, err)
	assert.Same(t, s, got)
}

func TestManager_OpenWrapsLoadError(t *testing.T) {
	store := newMemStore()
	store.loadErr = errors.New("boom")
	m := newManager(store)

	_, err := m.Open(context.Background(), "u1", "p1")
	require.Error(t, err)
	assert.ErrorIs(t, err, store.loadErr)
}

func TestManager_ReopenReplacesSession(t *testing.T) {
	store := newMemStore()
	m := newManager(store)

	first, err := m.Open(context.Background(), "u1", "p1")
	require.NoError(t, err)
	first.SelectTool(models.ToolRectangle)
	first.PointerDown(tools.PointerEvent{X: 10, Y: 10})

	second, err := m.Open(context.Background(), "u1", "p1")
	require.NoError(t, err)
	defer m.CloseAll()

	_, err = m.Get(first.ID)
	assert.ErrorIs(t, err, ErrNoSession)
	assert.Len(t, second.State().Elements, 1, "the first session is saved before the reload")
}

func TestManager_CloseSavesFinalSnapshot(t *testing.T) {
	store := newMemStore()
	m := newManager(store)

	s, err := m.Open(context.Background(), "u1", "p1")
	require.NoError(t, err)

	s.SelectTool(models.ToolText)
	s.PointerDown(tools.PointerEvent{X: 40, Y: 50})

	require.NoError(t, m.Close(s.ID))
	assert.ErrorIs(t, m.Close(s.ID), ErrNoSession)

	saved := store.projects["p1"]
	require.Len(t, saved, 1)
	assert.Equal(t, models.KindText, saved[0].Kind)
	assert.Equal(t, 40.0, saved[0].X)
}

func TestManager_ConcurrentOpensKeepOneSession(t *testing.T) {
	store := newMemStore()
	store.projects["p1"] = snapshot("a")
	store.loadDelay = 20 * time.Millisecond
	m := newManager(store)
	defer m.CloseAll()

	var wg sync.WaitGroup
	opened := make([]*Session, 2)
	for i := range opened {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s, err := m.Open(context.Background(), "u1", "p1")
			assert.NoError(t, err)
			opened[i] = s
		}()
	}
	wg.Wait()
	require.NotNil(t, opened[0])
	require.NotNil(t, opened[1])

	live, ok := m.ForProject("p1")
	require.True(t, ok)

	alive := 0
	for _, s := range opened {
		if _, err := m.Get(s.ID); err == nil {
			alive++
			assert.Same(t, live, s)
		}
	}
	assert.Equal(t, 1, alive)

	m.mu.Lock()
	assert.Len(t, m.sessions, 1)
	assert.Empty(t, m.locks)
	m.mu.Unlock()
}

func TestManager_WithProjectsClosedHoldsOpens(t *testing.T) {
	store := newMemStore()
	store.strict = true
	store.projects["p1"] = snapshot("a")
	store.projects["p2"] = snapshot("b")
	m := newManager(store)
	defer m.CloseAll()

	s, err := m.Open(context.Background(), "u1", "p1")
	require.NoError(t, err)
	s.SelectTool(models.ToolRectangle)
	s.PointerDown(tools.PointerEvent{X: 300, Y: 300})

	reopened := make(chan error, 1)
	err = m.WithProjectsClosed([]string{"p2", "p1", "p1"}, func() error {
		_, err := m.Get(s.ID)
		assert.ErrorIs(t, err, ErrNoSession)
		assert.Len(t, store.projects["p1"], 2, "the closed session saved its last snapshot")

		go func() {
			_, err := m.Open(context.Background(), "u1", "p1")
			reopened <- err
		}()
		time.Sleep(20 * time.Millisecond)
		_, open := m.ForProject("p1")
		assert.False(t, open, "opens wait until the projects are released")

		store.mu.Lock()
		delete(store.projects, "p1")
		store.mu.Unlock()
		return nil
	})
	require.NoError(t, err)

	select {
	case err := <-reopened:
		assert.Error(t, err, "the project was removed before the open could load it")
	case <-time.After(time.Second):
		t.Fatal("open did not resume")
	}
	_, open := m.ForProject("p1")
	assert.False(t, open)
}

func TestManager_WithProjectsClosedReturnsError(t *testing.T) {
	m := newManager(newMemStore())
	boom := errors.New("boom")

	assert.ErrorIs(t, m.WithProjectsClosed([]string{"p1"}, func() error { return boom }), boom)

	m.mu.Lock()
	assert.Empty(t, m.locks)
	m.mu.Unlock()
}

func TestSession_EventsFollowControllerOrder(t *testing.T) {
	store := newMemStore()
	store.projects["p1"] = snapshot("a")
	m := newManager(store)
	s, err := m.Open(context.Background(), "u1", "p1")
	require.NoError(t, err)
	defer m.CloseAll()

	loaded := s.Events(0)
	require.Len(t, loaded, 1)
	assert.Equal(t, EventListChanged, loaded[0].Type)

	s.Select("a")
	s.SelectTool(models.ToolRectangle)
	s.PointerDown(tools.PointerEvent{X: 300, Y: 300})

	var types []string
	for _, n := range s.Events(loaded[0].Seq) {
		types = append(types, n.Type)
	}
	assert.Equal(t, []string{
		EventSelected,
		EventToolChanged,
		EventDeselected,
		EventSelected,
		EventToolChanged,
		EventListChanged,
	}, types)
	assert.Equal(t, "el_1", s.State().SelectedID)
}

func TestSession_UpdateElementValidatesPatch(t *testing.T) {
	store := newMemStore()
	store.projects["p1"] = snapshot("a")
	m := newManager(store)
	s, err := m.Open(context.Background(), "u1", "p1")
	require.NoError(t, err)
	defer m.CloseAll()

	bad := "not a color!"
	ok, err := s.UpdateElement("a", models.ElementPatch{Fill: &bad})
	require.Error(t, err)
	assert.False(t, ok)

	good := "#ff0000"
	ok, err = s.UpdateElement("a", models.ElementPatch{Fill: &good})
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "#ff0000", s.State().Elements[0].Fill)

	ok, err = s.UpdateElement("missing", models.ElementPatch{Fill: &good})
	require.NoError(t, err)
	assert.False(t, ok)

	auto := models.AutoSize()
	ok, err = s.UpdateElement("a", models.ElementPatch{Width: &auto})
	require.Error(t, err, "rectangles keep a fixed size")
	assert.False(t, ok)
	assert.False(t, s.State().Elements[0].Width.Auto)
}

func TestSession_PropertiesFollowSelection(t *testing.T) {
	store := newMemStore()
	txt := models.NewElement("t", models.KindText, 0, 0, 1)
	store.projects["p1"] = []models.Element{txt}
	m := newManager(store)
	s, err := m.Open(context.Background(), "u1", "p1")
	require.NoError(t, err)
	defer m.CloseAll()

	_, ok := s.Properties()
	assert.False(t, ok)

	s.Select("t")
	props, ok := s.Properties()
	require.True(t, ok)
	assert.Equal(t, "#ffffff", props.FillHex)
	assert.Equal(t, "#000000", props.TextHex)
	assert.Len(t, props.FontChoices, len(models.FontChoices))
}

func TestSession_StateNodesAreCopies(t *testing.T) {
	store := newMemStore()
	store.projects["p1"] = snapshot("a")
	m := newManager(store)
	s, err := m.Open(context.Background(), "u1", "p1")
	require.NoError(t, err)
	defer m.CloseAll()

	s.Select("a")
	st := s.State()
	require.Len(t, st.Nodes[0].Handles, 4)

	s.Deselect()
	assert.Len(t, st.Nodes[0].Handles, 4, "earlier snapshot is not mutated")
	assert.Empty(t, s.State().Nodes[0].Handles)
}

// ============================================================
// Log
// ============================================================

func TestLog_KeepsNewestWithinLimit(t *testing.T) {
	l := NewLog(3)
	for i := 0; i < 5; i++ {
		l.ElementsChanged()
	}

	all := l.Since(0)
	require.Len(t, all, 3)
	assert.Equal(t, int64(3), all[0].Seq)
	assert.Equal(t, int64(5), l.Seq())
	assert.Empty(t, l.Since(5))
}

// ============================================================
// Panels
// ============================================================

func TestLayers_TopMostFirst(t *testing.T) {
	rect := models.NewElement("r", models.KindRectangle, 0, 0, 1)
	short := models.NewElement("s", models.KindText, 0, 0, 2)
	short.Content = "Hello"
	long := models.NewElement("l", models.KindText, 0, 0, 3)
	long.Content = "A very long headline for the poster"

	layers := Layers([]models.Element{rect, short, long}, "s")

	require.Len(t, layers, 3)
	assert.Equal(t, "l", layers[0].ID)
	assert.Equal(t, "A very long headli...", layers[0].Label)
	assert.Equal(t, "Hello", layers[1].Label)
	assert.True(t, layers[1].Selected)
	assert.Equal(t, "Rectangle", layers[2].Label)
}

func TestEnsureHex(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"", "#ffffff"},
		{"transparent", "#ffffff"},
		{"#CBD5E1", "#cbd5e1"},
		{"#abc", "#aabbcc"},
		{"red", "#000000"},
		{"rgb(1,2,3)", "#000000"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, EnsureHex(tt.in))
		})
	}
}

func TestValidatePatch(t *testing.T) {
	str := func(s string) *string { return &s }
	num := func(n int) *int { return &n }
	dim := func(d models.Dimension) *models.Dimension { return &d }

	tests := []struct {
		name    string
		kind    models.Kind
		patch   models.ElementPatch
		wantErr bool
	}{
		{"empty", models.KindRectangle, models.ElementPatch{}, false},
		{"hex fill", models.KindRectangle, models.ElementPatch{Fill: str("#112233")}, false},
		{"named color", models.KindText, models.ElementPatch{TextColor: str("rebeccapurple")}, false},
		{"rgba", models.KindRectangle, models.ElementPatch{BorderColor: str("rgba(0,0,0,0.5)")}, false},
		{"transparent", models.KindText, models.ElementPatch{Fill: str("transparent")}, false},
		{"short hex", models.KindRectangle, models.ElementPatch{Fill: str("#12345")}, true},
		{"broken hex", models.KindRectangle, models.ElementPatch{Fill: str("#zzzzzz")}, true},
		{"garbage", models.KindRectangle, models.ElementPatch{Fill: str("12 red")}, true},
		{"negative border", models.KindRectangle, models.ElementPatch{BorderWidth: num(-1)}, true},
		{"negative radius", models.KindRectangle, models.ElementPatch{CornerRadius: num(-4)}, true},
		{"zero font size", models.KindText, models.ElementPatch{FontSize: num(0)}, true},
		{"largest font size", models.KindText, models.ElementPatch{FontSize: num(models.MaxFontSize)}, false},
		{"huge font size", models.KindText, models.ElementPatch{FontSize: num(models.MaxFontSize + 1)}, true},
		{"unknown font", models.KindText, models.ElementPatch{FontFamily: str("Comic Sans")}, true},
		{"offered font", models.KindText, models.ElementPatch{FontFamily: str(models.FontChoices[2].Family)}, false},
		{"auto width on text", models.KindText, models.ElementPatch{Width: dim(models.AutoSize())}, false},
		{"auto height on text", models.KindText, models.ElementPatch{Height: dim(models.AutoSize())}, false},
		{"auto width on rectangle", models.KindRectangle, models.ElementPatch{Width: dim(models.AutoSize())}, true},
		{"auto height on rectangle", models.KindRectangle, models.ElementPatch{Height: dim(models.AutoSize())}, true},
		{"fixed size on rectangle", models.KindRectangle, models.ElementPatch{Width: dim(models.Fixed(40))}, false},
		{"negative height", models.KindText, models.ElementPatch{Height: dim(models.Fixed(-5))}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePatch(tt.kind, tt.patch)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
