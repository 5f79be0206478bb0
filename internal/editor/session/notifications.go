package session

import (
	"sync"

	"design-studio/internal/editor/models"
)

// ============================================================
// Notification Log
// ============================================================

const (
	EventSelected    = "element-selected"
	EventDeselected  = "element-deselected"
	EventUpdated     = "element-updated"
	EventListChanged = "elements-list-changed"
	EventToolChanged = "tool-changed"
	defaultLogLimit  = 256
)

type Notification struct {
	Seq       int64           `json:"seq"`
	Type      string          `json:"type"`
	ElementID string          `json:"elementId,omitempty"`
	Element   *models.Element `json:"element,omitempty"`
	Tool      models.Tool     `json:"tool,omitempty"`
}

// Log records controller notifications so polling clients can replay them.
type Log struct {
	mu    sync.Mutex
	seq   int64
	items []Notification
	limit int
}

func NewLog(limit int) *Log {
	if limit <= 0 {
		limit = defaultLogLimit
	}
	return &Log{limit: limit}
}

func (l *Log) push(n Notification) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.seq++
	n.Seq = l.seq
	l.items = append(l.items, n)
	if over := len(l.items) - l.limit; over > 0 {
		l.items = append([]Notification(nil), l.items[over:]...)
	}
}

// Since возвращает уведомления с номером больше seq.
func (l *Log) Since(seq int64) []Notification {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := []Notification{}
	for _, n := range l.items {
		if n.Seq > seq {
			out = append(out, n)
		}
	}
	return out
}

func (l *Log) Seq() int64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.seq
}

func (l *Log) ElementSelected(id string) {
	l.push(Notification{Type: EventSelected, ElementID: id})
}

func (l *Log) ElementDeselected() {
	l.push(Notification{Type: EventDeselected})
}

func (l *Log) ElementUpdated(el models.Element) {
	l.push(Notification{Type: EventUpdated, ElementID: el.ID, Element: &el})
}

func (l *Log) ElementsChanged() {
	l.push(Notification{Type: EventListChanged})
}

func (l *Log) ToolChanged(tool models.Tool) {
	l.push(Notification{Type: EventToolChanged, Tool: tool})
}
