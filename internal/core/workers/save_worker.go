package workers

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/goalchallenge/weekly-goals-engine/internal/core/domain"
)

// DefaultSaveDelay is the trailing-edge debounce window for week saves.
const DefaultSaveDelay = 300 * time.Millisecond

const saveTimeout = 10 * time.Second

type WeekSaver interface {
	Persist(ctx context.Context, profileID, weekStamp string, categories []domain.Category) error
}

type pendingSave struct {
	timer      *time.Timer
	categories []domain.Category
}

// SaveWorker coalesces rapid snapshot saves per WeekKey: each Schedule call
// replaces the pending snapshot for its key and restarts the debounce timer,
// so only the last state inside the window reaches the store. Snapshots are
// full overwrites, so dropped intermediates lose nothing. Keys debounce
// independently of one another.
type SaveWorker struct {
	saver WeekSaver
	delay time.Duration

	mu      sync.Mutex
	pending map[domain.WeekKey]*pendingSave
	closed  bool
}

func NewSaveWorker(saver WeekSaver, delay time.Duration) *SaveWorker {
	if delay <= 0 {
		delay = DefaultSaveDelay
	}
	return &SaveWorker{
		saver:   saver,
		delay:   delay,
		pending: make(map[domain.WeekKey]*pendingSave),
	}
}

// Schedule queues a snapshot save for the key, replacing any pending one.
// After Close, saves run synchronously instead of being dropped.
func (w *SaveWorker) Schedule(key domain.WeekKey, categories []domain.Category) {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		w.persist(key, categories)
		return
	}

	if p, ok := w.pending[key]; ok {
		p.categories = categories
		p.timer.Reset(w.delay)
		w.mu.Unlock()
		return
	}

	p := &pendingSave{categories: categories}
	p.timer = time.AfterFunc(w.delay, func() {
		w.flushKey(key)
	})
	w.pending[key] = p
	w.mu.Unlock()
}

// flushKey persists and clears the pending snapshot for one key. A timer
// firing concurrently with Flush is harmless: whoever removes the map entry
// first does the write.
func (w *SaveWorker) flushKey(key domain.WeekKey) {
	w.mu.Lock()
	p, ok := w.pending[key]
	if !ok {
		w.mu.Unlock()
		return
	}
	delete(w.pending, key)
	categories := p.categories
	w.mu.Unlock()

	w.persist(key, categories)
}

func (w *SaveWorker) persist(key domain.WeekKey, categories []domain.Category) {
	ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
	defer cancel()

	if err := w.saver.Persist(ctx, key.ProfileID, key.WeekStamp, categories); err != nil {
		log.Printf("[SAVE] debounced save failed for %s: %v", key.DocKey(), err)
	}
}

// Flush writes out every pending snapshot immediately.
func (w *SaveWorker) Flush() {
	w.mu.Lock()
	keys := make([]domain.WeekKey, 0, len(w.pending))
	for key, p := range w.pending {
		p.timer.Stop()
		keys = append(keys, key)
	}
	w.mu.Unlock()

	for _, key := range keys {
		w.flushKey(key)
	}
}

// Close flushes pending saves and switches the worker to synchronous mode
// for any late Schedule calls. Used during graceful shutdown.
func (w *SaveWorker) Close() {
	w.mu.Lock()
	w.closed = true
	w.mu.Unlock()

	w.Flush()
	log.Println("[SAVE] save worker drained")
}
