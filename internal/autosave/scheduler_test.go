package autosave

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/jaki95/set-workshop/internal/workshop"
)

// recordingSave collects persisted snapshots behind a mutex.
type recordingSave struct {
	mu    sync.Mutex
	snaps []workshop.Snapshot
	err   error
}

func (r *recordingSave) save(ctx context.Context, snap workshop.Snapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.snaps = append(r.snaps, snap)
	return nil
}

func (r *recordingSave) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.snaps)
}

func (r *recordingSave) last() workshop.Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snaps[len(r.snaps)-1]
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not reached in time")
}

func TestBurstOfEditsSavesOnce(t *testing.T) {
	store := workshop.NewStore(4)
	rec := &recordingSave{}
	s := New(store, rec.save, 30*time.Millisecond)
	defer s.Close()

	// Five edits in quick succession, well inside the debounce window.
	for i := 0; i < 5; i++ {
		store.InsertSlot(0)
	}

	waitFor(t, func() bool { return rec.count() > 0 })
	time.Sleep(100 * time.Millisecond)

	assert.Equal(t, 1, rec.count(), "a burst collapses into one save")
	assert.Len(t, rec.last().State.Slots, 9, "the trailing state is what gets persisted")
	assert.False(t, store.Snapshot().Dirty, "successful save marks the store clean")
}

func TestCleanSnapshotsNeverSchedule(t *testing.T) {
	store := workshop.NewStore(2)
	rec := &recordingSave{}
	s := New(store, rec.save, 10*time.Millisecond)
	defer s.Close()

	// UI-only mutations publish clean snapshots.
	store.SetDrawerOpen(true)
	store.SetPlaybackIndex(1)
	store.SetMode(workshop.ModePlay)

	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, 0, rec.count())
}

func TestFailedSaveLeavesStateDirty(t *testing.T) {
	store := workshop.NewStore(2)
	rec := &recordingSave{err: errors.New("disk full")}
	s := New(store, rec.save, 10*time.Millisecond)
	defer s.Close()

	store.InsertSlot(0)
	time.Sleep(60 * time.Millisecond)

	assert.True(t, store.Snapshot().Dirty, "failed save must not clear the dirty flag")

	// The next edit schedules a retry; once saving works the flag clears.
	rec.mu.Lock()
	rec.err = nil
	rec.mu.Unlock()

	store.InsertSlot(0)
	waitFor(t, func() bool { return !store.Snapshot().Dirty })
}

func TestEditDuringSaveKeepsStateDirty(t *testing.T) {
	store := workshop.NewStore(2)

	release := make(chan struct{})
	started := make(chan struct{}, 1)
	save := func(ctx context.Context, snap workshop.Snapshot) error {
		started <- struct{}{}
		<-release
		return nil
	}
	s := New(store, save, 10*time.Millisecond)
	defer s.Close()

	store.InsertSlot(0)
	<-started

	// A second edit lands while the first save is in flight.
	store.InsertSlot(0)
	close(release)

	// The in-flight save carried a stale revision, so the store stays
	// dirty until the rescheduled save for the newer edit completes.
	waitFor(t, func() bool { return !store.Snapshot().Dirty })
	assert.Len(t, store.Snapshot().State.Slots, 4)
}

func TestOutOfOrderSnapshotsKeepLatestRevision(t *testing.T) {
	store := workshop.NewStore(2)
	rec := &recordingSave{}
	s := New(store, rec.save, 10*time.Millisecond)
	defer s.Close()

	// Snapshots are published outside the store lock, so a later edit's
	// snapshot can reach the scheduler before an earlier one.
	newer := store.Snapshot()
	newer.Dirty = true
	newer.Revision = 2
	older := newer
	older.Revision = 1

	s.onSnapshot(newer)
	s.onSnapshot(older)

	waitFor(t, func() bool { return rec.count() > 0 })
	assert.Equal(t, 1, rec.count())
	assert.Equal(t, uint64(2), rec.last().Revision, "the stale snapshot must not displace the newer one")
}

func TestFlush(t *testing.T) {
	store := workshop.NewStore(2)
	rec := &recordingSave{}
	s := New(store, rec.save, time.Hour)
	defer s.Close()

	store.InsertSlot(0)
	assert.Equal(t, 0, rec.count())

	s.Flush()
	assert.Equal(t, 1, rec.count())
	assert.False(t, store.Snapshot().Dirty)
}

func TestCloseDropsPendingSave(t *testing.T) {
	store := workshop.NewStore(2)
	rec := &recordingSave{}
	s := New(store, rec.save, 20*time.Millisecond)

	store.InsertSlot(0)
	s.Close()

	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, 0, rec.count())
}
