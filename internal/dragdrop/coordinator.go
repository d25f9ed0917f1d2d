// Package dragdrop interprets drag payloads and dispatches the matching
// slot store mutation. Only one payload is active at a time; starting a
// new drag discards any prior one.
package dragdrop

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/jaki95/set-workshop/internal/domain"
	"github.com/jaki95/set-workshop/internal/sources"
	"github.com/jaki95/set-workshop/internal/workshop"
)

// Kind tags the drag payload union.
type Kind string

const (
	KindSlot  Kind = "slot"
	KindGroup Kind = "group"
	KindTrack Kind = "track"
)

// TrackPayload carries a track dragged out of the source drawer or the
// search results.
type TrackPayload struct {
	TrackID    int64             `json:"trackId"`
	SourceType domain.SourceType `json:"sourceType"`
	SourceID   string            `json:"sourceId"`
	TreeType   string            `json:"treeType,omitempty"`
	Name       string            `json:"name"`
}

// Payload is the tagged drag payload.
type Payload struct {
	Kind    Kind         `json:"kind"`
	SlotID  string       `json:"slotId,omitempty"`
	SlotIDs []string     `json:"slotIds,omitempty"`
	Track   TrackPayload `json:"track,omitempty"`
}

// Coordinator owns the single "current drag" payload and turns drops
// into store mutations. Resolution failures are surfaced through the
// error callback; the target slot is left unchanged.
type Coordinator struct {
	mu       sync.Mutex
	store    *workshop.Store
	resolver sources.Resolver
	onError  func(error)
	current  *Payload
	timeout  time.Duration
}

// New creates a coordinator. onError may be nil.
func New(store *workshop.Store, resolver sources.Resolver, onError func(error)) *Coordinator {
	if onError == nil {
		onError = func(error) {}
	}
	return &Coordinator{
		store:    store,
		resolver: resolver,
		onError:  onError,
		timeout:  30 * time.Second,
	}
}

// StartDrag installs a new payload, discarding any prior one.
func (c *Coordinator) StartDrag(p Payload) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.current = &p
}

// CancelDrag clears the current payload without dropping.
func (c *Coordinator) CancelDrag() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.current = nil
}

// Current returns the active payload, or nil when no drag is in flight.
func (c *Coordinator) Current() *Payload {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current == nil {
		return nil
	}
	p := *c.current
	return &p
}

// DropOnSlot completes the current drag over the identified slot. The
// payload is consumed regardless of outcome.
func (c *Coordinator) DropOnSlot(targetSlotID string) {
	p := c.take()
	if p == nil {
		return
	}

	_, targetIndex := c.store.SlotByID(targetSlotID)
	if targetIndex < 0 {
		return
	}

	switch p.Kind {
	case KindSlot:
		if p.SlotID == targetSlotID {
			return
		}
		_, fromIndex := c.store.SlotByID(p.SlotID)
		if fromIndex < 0 {
			return
		}
		c.store.ReorderSlot(fromIndex, targetIndex)
	case KindGroup:
		c.store.MoveGroup(p.SlotIDs, targetIndex)
	case KindTrack:
		c.resolveTrackDrop(targetSlotID, p.Track)
	}
}

// DropAtIndex completes a group drag over an inter-group gap, an
// explicit insertion index from the "insert" control.
func (c *Coordinator) DropAtIndex(index int) {
	p := c.take()
	if p == nil || p.Kind != KindGroup {
		return
	}
	c.store.MoveGroup(p.SlotIDs, index)
}

// take consumes the current payload.
func (c *Coordinator) take() *Payload {
	c.mu.Lock()
	defer c.mu.Unlock()
	p := c.current
	c.current = nil
	return p
}

// resolveTrackDrop marks the target loading and resolves the dragged
// track into a candidate list in the background. The handler re-resolves
// the slot by stable id so a reorder happening mid-flight cannot make it
// write to the wrong slot; a deleted slot turns the update into a no-op.
func (c *Coordinator) resolveTrackDrop(targetSlotID string, track TrackPayload) {
	c.store.SetSlotLoading(targetSlotID, true)

	snap := c.store.Snapshot()
	req := sources.TrackDragRequest{
		TrackID:      track.TrackID,
		SourceType:   track.SourceType,
		SourceID:     track.SourceID,
		TreeType:     track.TreeType,
		Name:         track.Name,
		UsedTrackIDs: snap.State.UsedTrackIDs(targetSlotID),
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
		defer cancel()

		res, err := c.resolver.ResolveTrackDrag(ctx, req)
		if err != nil {
			c.store.SetSlotLoading(targetSlotID, false)
			slog.Error("Track drop resolution failed", "slotId", targetSlotID, "trackId", track.TrackID, "error", err)
			c.onError(err)
			return
		}

		c.store.UpdateSlotTracks(targetSlotID, res.Tracks, res.Source)
		if idx := draggedCandidate(res.Tracks, track.TrackID); idx != nil {
			c.store.SelectTrack(targetSlotID, *idx)
		}
		c.store.SetSlotLoading(targetSlotID, false)
	}()
}

// draggedCandidate finds the candidate matching the dragged track id,
// falling back to the first non-nil candidate.
func draggedCandidate(tracks []*domain.TrackOption, trackID int64) *int {
	for i, t := range tracks {
		if t != nil && t.ID == trackID {
			return &i
		}
	}
	for i, t := range tracks {
		if t != nil {
			return &i
		}
	}
	return nil
}
