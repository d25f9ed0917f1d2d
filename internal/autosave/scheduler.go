// Package autosave persists workshop snapshots after a quiet period.
// Every qualifying edit cancels and reschedules the pending save, so a
// burst of edits produces exactly one persistence call carrying the
// state after the last edit.
package autosave

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/jaki95/set-workshop/internal/workshop"
)

// DefaultDelay is the debounce window.
const DefaultDelay = time.Second

// SaveFunc persists one snapshot.
type SaveFunc func(ctx context.Context, snap workshop.Snapshot) error

// Scheduler observes store snapshots and debounces persistence. Saving
// is best effort and fire-and-forget: a failed save leaves the dirty
// flag set so the next edit tries again.
type Scheduler struct {
	mu      sync.Mutex
	store   *workshop.Store
	save    SaveFunc
	delay   time.Duration
	timer   *time.Timer
	pending *workshop.Snapshot
	closed  bool
}

// New creates a scheduler and subscribes it to the store. A delay <= 0
// falls back to DefaultDelay.
func New(store *workshop.Store, save SaveFunc, delay time.Duration) *Scheduler {
	if delay <= 0 {
		delay = DefaultDelay
	}
	s := &Scheduler{store: store, save: save, delay: delay}
	store.AddListener(s.onSnapshot)
	return s
}

// onSnapshot reschedules the deferred save while the aggregate is dirty.
// Clean snapshots (hydrations, UI-only changes) never schedule a save.
// Snapshots are published outside the store lock, so concurrent edits can
// deliver them out of order; only a higher revision replaces the pending one.
func (s *Scheduler) onSnapshot(snap workshop.Snapshot) {
	if !snap.Dirty {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	if s.pending != nil && snap.Revision <= s.pending.Revision {
		return
	}
	s.pending = &snap
	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(s.delay, s.fire)
}

// fire persists the trailing snapshot. On success the dirty flag is
// cleared only if no later edit advanced the revision in the meantime.
func (s *Scheduler) fire() {
	s.mu.Lock()
	snap := s.pending
	s.pending = nil
	s.timer = nil
	s.mu.Unlock()

	if snap == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.save(ctx, *snap); err != nil {
		slog.Error("Auto-save failed", "revision", snap.Revision, "error", err)
		return
	}
	s.store.MarkClean(snap.Revision)
	slog.Debug("Auto-saved workshop state", "revision", snap.Revision)
}

// Flush persists any pending snapshot immediately.
func (s *Scheduler) Flush() {
	s.mu.Lock()
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.mu.Unlock()
	s.fire()
}

// Close stops the scheduler without saving.
func (s *Scheduler) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.pending = nil
}
