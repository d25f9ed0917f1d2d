package dragdrop

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/jaki95/set-workshop/internal/domain"
	"github.com/jaki95/set-workshop/internal/sources"
	"github.com/jaki95/set-workshop/internal/workshop"
)

// fakeResolver returns a canned resolution, or an error, and records the
// requests it saw.
type fakeResolver struct {
	mu         sync.Mutex
	resolution *sources.Resolution
	err        error
	dragReqs   []sources.TrackDragRequest
}

func (f *fakeResolver) Assign(ctx context.Context, req sources.AssignRequest) (*sources.Resolution, error) {
	return f.resolution, f.err
}

func (f *fakeResolver) ResolveTrackDrag(ctx context.Context, req sources.TrackDragRequest) (*sources.Resolution, error) {
	f.mu.Lock()
	f.dragReqs = append(f.dragReqs, req)
	f.mu.Unlock()
	return f.resolution, f.err
}

func newLabelledStore(labels ...string) *workshop.Store {
	s := workshop.NewStore(len(labels))
	slots := make([]*domain.Slot, len(labels))
	for i, l := range labels {
		slots[i] = &domain.Slot{ID: l, Tracks: []*domain.TrackOption{}}
	}
	s.LoadState(slots, nil, nil, nil)
	return s
}

func orderOf(s *workshop.Store) []string {
	snap := s.Snapshot()
	ids := make([]string, len(snap.State.Slots))
	for i, slot := range snap.State.Slots {
		ids[i] = slot.ID
	}
	return ids
}

// waitFor polls until the condition holds or the deadline passes.
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

func TestSlotDropReorders(t *testing.T) {
	store := newLabelledStore("A", "B", "C", "D")
	c := New(store, &fakeResolver{}, nil)

	c.StartDrag(Payload{Kind: KindSlot, SlotID: "A"})
	c.DropOnSlot("C")

	assert.Equal(t, []string{"B", "C", "A", "D"}, orderOf(store))
	assert.Nil(t, c.Current(), "payload consumed by the drop")
}

func TestSlotDropOnItselfIsNoOp(t *testing.T) {
	store := newLabelledStore("A", "B")
	c := New(store, &fakeResolver{}, nil)

	c.StartDrag(Payload{Kind: KindSlot, SlotID: "A"})
	c.DropOnSlot("A")

	assert.Equal(t, []string{"A", "B"}, orderOf(store))
}

func TestGroupDrop(t *testing.T) {
	store := newLabelledStore("C", "A", "D", "B")
	c := New(store, &fakeResolver{}, nil)

	c.StartDrag(Payload{Kind: KindGroup, SlotIDs: []string{"A", "B"}})
	c.DropOnSlot("A")

	assert.Equal(t, []string{"C", "A", "B", "D"}, orderOf(store))
}

func TestGroupDropAtIndex(t *testing.T) {
	store := newLabelledStore("A", "B", "C", "D")
	c := New(store, &fakeResolver{}, nil)

	c.StartDrag(Payload{Kind: KindGroup, SlotIDs: []string{"A", "B"}})
	c.DropAtIndex(2)

	assert.Equal(t, []string{"C", "D", "A", "B"}, orderOf(store))
}

func TestDropAtIndexIgnoresNonGroupPayloads(t *testing.T) {
	store := newLabelledStore("A", "B")
	c := New(store, &fakeResolver{}, nil)

	c.StartDrag(Payload{Kind: KindSlot, SlotID: "A"})
	c.DropAtIndex(1)

	assert.Equal(t, []string{"A", "B"}, orderOf(store))
	assert.Nil(t, c.Current())
}

func TestStartDragReplacesPriorPayload(t *testing.T) {
	store := newLabelledStore("A", "B")
	c := New(store, &fakeResolver{}, nil)

	c.StartDrag(Payload{Kind: KindSlot, SlotID: "A"})
	c.StartDrag(Payload{Kind: KindGroup, SlotIDs: []string{"B"}})

	current := c.Current()
	if assert.NotNil(t, current) {
		assert.Equal(t, KindGroup, current.Kind)
	}
}

func TestCancelDrag(t *testing.T) {
	store := newLabelledStore("A", "B")
	c := New(store, &fakeResolver{}, nil)

	c.StartDrag(Payload{Kind: KindSlot, SlotID: "A"})
	c.CancelDrag()
	c.DropOnSlot("B")

	assert.Equal(t, []string{"A", "B"}, orderOf(store))
}

func TestTrackDropResolvesAndSelects(t *testing.T) {
	store := newLabelledStore("A", "B")
	store.UpdateSlotTracks("B", []*domain.TrackOption{{ID: 99}}, nil)

	resolver := &fakeResolver{
		resolution: &sources.Resolution{
			Source: &domain.SlotSource{Type: domain.SourceAdHoc, ID: "42", Name: "Dropped"},
			Tracks: []*domain.TrackOption{{ID: 7}, {ID: 42}, nil},
		},
	}
	c := New(store, resolver, nil)

	c.StartDrag(Payload{Kind: KindTrack, Track: TrackPayload{TrackID: 42, SourceType: domain.SourceAdHoc, SourceID: "42"}})
	c.DropOnSlot("A")

	waitFor(t, func() bool {
		slot, _ := store.SlotByID("A")
		return len(slot.Tracks) == 3 && len(store.Snapshot().LoadingSlotIDs) == 0
	})

	slot, _ := store.SlotByID("A")
	assert.Equal(t, domain.SourceAdHoc, slot.Source.Type)
	if assert.NotNil(t, slot.SelectedTrackIndex) {
		assert.Equal(t, 42, int(slot.Tracks[*slot.SelectedTrackIndex].ID))
	}
	assert.Empty(t, store.Snapshot().LoadingSlotIDs)

	// The other slot's tracks were reported as already in use.
	resolver.mu.Lock()
	defer resolver.mu.Unlock()
	if assert.Len(t, resolver.dragReqs, 1) {
		assert.Equal(t, []int64{99}, resolver.dragReqs[0].UsedTrackIDs)
	}
}

func TestTrackDropFallsBackToFirstCandidate(t *testing.T) {
	store := newLabelledStore("A")
	resolver := &fakeResolver{
		resolution: &sources.Resolution{
			Source: &domain.SlotSource{Type: domain.SourceAdHoc, ID: "42"},
			Tracks: []*domain.TrackOption{nil, {ID: 7}},
		},
	}
	c := New(store, resolver, nil)

	c.StartDrag(Payload{Kind: KindTrack, Track: TrackPayload{TrackID: 42}})
	c.DropOnSlot("A")

	waitFor(t, func() bool {
		slot, _ := store.SlotByID("A")
		return slot.SelectedTrackIndex != nil
	})

	slot, _ := store.SlotByID("A")
	assert.Equal(t, 1, *slot.SelectedTrackIndex)
}

func TestTrackDropFailureLeavesSlotUntouched(t *testing.T) {
	store := newLabelledStore("A")
	resolveErr := errors.New("catalog unavailable")
	resolver := &fakeResolver{err: resolveErr}

	var mu sync.Mutex
	var reported error
	c := New(store, resolver, func(err error) {
		mu.Lock()
		reported = err
		mu.Unlock()
	})

	c.StartDrag(Payload{Kind: KindTrack, Track: TrackPayload{TrackID: 42}})
	c.DropOnSlot("A")

	waitFor(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return reported != nil
	})

	mu.Lock()
	assert.ErrorIs(t, reported, resolveErr)
	mu.Unlock()

	slot, _ := store.SlotByID("A")
	assert.Empty(t, slot.Tracks)
	assert.Nil(t, slot.Source)
	assert.Empty(t, store.Snapshot().LoadingSlotIDs)
}

func TestDropWithoutPayloadIsNoOp(t *testing.T) {
	store := newLabelledStore("A", "B")
	c := New(store, &fakeResolver{}, nil)

	c.DropOnSlot("A")
	c.DropAtIndex(0)

	assert.Equal(t, []string{"A", "B"}, orderOf(store))
}
