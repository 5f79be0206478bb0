package session

import (
	"context"
	"log"
	"sync"
	"time"

	"design-studio/internal/editor/models"
)

// ============================================================
// Store
// ============================================================

// Store is the persistence collaborator: an element list keyed by project id.
type Store interface {
	LoadElements(ctx context.Context, projectID string) ([]models.Element, error)
	SaveElements(ctx context.Context, projectID string, elements []models.Element) error
}

// ============================================================
// Async Saver
// ============================================================

// AsyncSaver saves snapshots on its own goroutine. A pending snapshot that
// has not been picked up yet is replaced by a newer one; saves run in order.
type AsyncSaver struct {
	store     Store
	projectID string
	timeout   time.Duration

	pending chan []models.Element
	mu      sync.Mutex
	closed  bool
	done    chan struct{}
}

func NewAsyncSaver(store Store, projectID string, timeout time.Duration) *AsyncSaver {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	s := &AsyncSaver{
		store:     store,
		projectID: projectID,
		timeout:   timeout,
		pending:   make(chan []models.Element, 1),
		done:      make(chan struct{}),
	}
	go s.loop()
	return s
}

// Flush ставит снимок в очередь и сразу возвращается.
func (s *AsyncSaver) Flush(elements []models.Element) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}

	for {
		select {
		case s.pending <- elements:
			return
		default:
		}
		select {
		case <-s.pending:
		default:
		}
	}
}

// Close stops accepting flushes and waits for the last one to be saved.
func (s *AsyncSaver) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		<-s.done
		return
	}
	s.closed = true
	close(s.pending)
	s.mu.Unlock()
	<-s.done
}

func (s *AsyncSaver) loop() {
	defer close(s.done)
	for elements := range s.pending {
		s.save(elements)
	}
}

func (s *AsyncSaver) save(elements []models.Element) {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	if err := s.store.SaveElements(ctx, s.projectID, elements); err != nil {
		log.Printf("[SAVER] save project %s error: %v", s.projectID, err)
		return
	}
	log.Printf("[SAVER] project %s saved (%d elements)", s.projectID, len(elements))
}
