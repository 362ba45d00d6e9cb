// Package autosave debounces editor writes. Each item gets its own timer; a
// draft is written once the item has been quiet for the configured delay and
// only the latest content is saved.
package autosave

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"inkwell/internal/contextutil"
	"inkwell/internal/storage"
)

// DefaultDelay is used when New is given a non-positive delay.
const DefaultDelay = 2 * time.Second

// ErrClosed is returned by Schedule after Close.
var ErrClosed = errors.New("autosave: saver closed")

// ContentSaver persists edited item content.
type ContentSaver interface {
	SaveContent(ctx context.Context, id, content string) (*storage.Item, error)
}

type draft struct {
	content string
	timer   *time.Timer
	pending bool
	running bool
}

// Saver holds pending drafts and writes them through a ContentSaver.
type Saver struct {
	store  ContentSaver
	delay  time.Duration
	logger *slog.Logger

	mu      sync.Mutex
	idle    *sync.Cond // Signaled when running drops to zero
	drafts  map[string]*draft
	running int
	closed  bool
}

// New creates a Saver. Timer-driven saves log failures with logger; a nil
// logger means slog.Default().
func New(store ContentSaver, delay time.Duration, logger *slog.Logger) *Saver {
	if delay <= 0 {
		delay = DefaultDelay
	}
	if logger == nil {
		logger = slog.Default()
	}
	s := &Saver{
		store:  store,
		delay:  delay,
		logger: logger,
		drafts: make(map[string]*draft),
	}
	s.idle = sync.NewCond(&s.mu)
	return s
}

// Schedule records content as the latest draft of an item and restarts the
// item's timer.
func (s *Saver) Schedule(id, content string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}

	d, ok := s.drafts[id]
	if !ok {
		d = &draft{}
		s.drafts[id] = d
	}
	d.content = content
	d.pending = true
	if d.timer == nil {
		d.timer = time.AfterFunc(s.delay, func() { s.onTimer(id) })
		return nil
	}
	d.timer.Reset(s.delay)
	return nil
}

// Pending returns the number of items with unsaved drafts.
func (s *Saver) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for _, d := range s.drafts {
		if d.pending {
			n++
		}
	}
	return n
}

func (s *Saver) onTimer(id string) {
	s.mu.Lock()
	d, ok := s.drafts[id]
	if !ok || !d.pending {
		s.mu.Unlock()
		return
	}
	if d.running {
		// A save for this item is in flight; try again after it.
		d.timer.Reset(s.delay)
		s.mu.Unlock()
		return
	}
	content := d.content
	d.pending = false
	d.running = true
	s.running++
	s.mu.Unlock()

	ctx := contextutil.WithLogger(context.Background(), s.logger)
	if _, err := s.store.SaveContent(ctx, id, content); err != nil {
		s.logger.ErrorContext(ctx, "autosave failed", "item_id", id, "error", err)
	}

	s.mu.Lock()
	d.running = false
	if !d.pending {
		delete(s.drafts, id)
	}
	s.running--
	if s.running == 0 {
		s.idle.Broadcast()
	}
	s.mu.Unlock()
}

// Flush writes every pending draft now and waits for saves already running.
// It returns the errors of the drafts it wrote.
func (s *Saver) Flush(ctx context.Context) error {
	type job struct {
		id      string
		content string
	}

	s.mu.Lock()
	// Older content still being written must land before the newer draft.
	for s.running > 0 {
		s.idle.Wait()
	}
	var jobs []job
	for id, d := range s.drafts {
		if !d.pending {
			continue
		}
		d.timer.Stop()
		d.pending = false
		d.running = true
		jobs = append(jobs, job{id: id, content: d.content})
	}
	s.running += len(jobs)
	s.mu.Unlock()

	var errs []error
	for _, j := range jobs {
		if _, err := s.store.SaveContent(ctx, j.id, j.content); err != nil {
			errs = append(errs, err)
		}
	}

	s.mu.Lock()
	for _, j := range jobs {
		d := s.drafts[j.id]
		d.running = false
		if !d.pending {
			delete(s.drafts, j.id)
		}
	}
	s.running -= len(jobs)
	if s.running == 0 {
		s.idle.Broadcast()
	}
	s.mu.Unlock()

	return errors.Join(errs...)
}

// Close stops accepting drafts and flushes the ones still pending.
func (s *Saver) Close(ctx context.Context) error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()

	return s.Flush(ctx)
}
