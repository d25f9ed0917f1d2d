// Package workshop holds the authoritative in-memory state of the set
// workshop: the slot sequence, derived UI flags and the grouping logic.
// All mutations are synchronous; every mutation publishes a fresh
// snapshot to registered listeners.
package workshop

import (
	"sync"

	"github.com/google/uuid"

	"github.com/jaki95/set-workshop/internal/domain"
)

// DefaultSlotCount is the number of empty slots in a fresh timeline.
const DefaultSlotCount = 8

// SlotCapacity is the fixed number of candidate entries a slot holds.
const SlotCapacity = 5

// Mid-tempo band used when picking a default candidate.
const (
	midBandLow  = 90
	midBandHigh = 110
)

// Mode is the workshop interaction mode.
type Mode string

const (
	ModeArrange Mode = "arrange"
	ModePlay    Mode = "play"
)

// Snapshot is an immutable view of the store published to listeners.
type Snapshot struct {
	State          domain.WorkshopState `json:"state"`
	Dirty          bool                 `json:"dirty"`
	Revision       uint64               `json:"revision"`
	PlaybackIndex  int                  `json:"playbackIndex"`
	Refilling      bool                 `json:"refilling"`
	DrawerOpen     bool                 `json:"drawerOpen"`
	Mode           Mode                 `json:"mode"`
	LoadingSlotIDs []string             `json:"loadingSlotIds,omitempty"`
}

// Store owns the slot sequence. All other components read it through
// snapshots and mutate it through the operations below; id lookups that
// miss and out-of-range indices are silent no-ops.
type Store struct {
	mu            sync.RWMutex
	state         domain.WorkshopState
	dirty         bool
	revision      uint64
	playbackIndex int
	refilling     bool
	drawerOpen    bool
	mode          Mode
	loading       map[string]bool
	slotCount     int
	listeners     []func(Snapshot)
}

// NewStore returns a store initialised with slotCount empty slots.
// If slotCount <= 0, DefaultSlotCount is used.
func NewStore(slotCount int) *Store {
	if slotCount <= 0 {
		slotCount = DefaultSlotCount
	}
	s := &Store{
		slotCount: slotCount,
		mode:      ModeArrange,
		loading:   make(map[string]bool),
	}
	s.state.Slots = emptySlots(slotCount)
	return s
}

func emptySlots(n int) []*domain.Slot {
	slots := make([]*domain.Slot, n)
	for i := range slots {
		slots[i] = NewEmptySlot()
	}
	return slots
}

// NewEmptySlot returns an unsourced slot with a fresh, never-reused id.
func NewEmptySlot() *domain.Slot {
	return &domain.Slot{ID: uuid.NewString(), Tracks: []*domain.TrackOption{}}
}

// AddListener registers a snapshot listener invoked after every mutation.
func (s *Store) AddListener(fn func(Snapshot)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

// Snapshot returns a deep copy of the current state and flags.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

func (s *Store) snapshotLocked() Snapshot {
	snap := Snapshot{
		State:         *s.state.Clone(),
		Dirty:         s.dirty,
		Revision:      s.revision,
		PlaybackIndex: s.playbackIndex,
		Refilling:     s.refilling,
		DrawerOpen:    s.drawerOpen,
		Mode:          s.mode,
	}
	for id, on := range s.loading {
		if on {
			snap.LoadingSlotIDs = append(snap.LoadingSlotIDs, id)
		}
	}
	return snap
}

// notify publishes the given snapshot outside the lock.
func (s *Store) notify(snap Snapshot, listeners []func(Snapshot)) {
	for _, fn := range listeners {
		fn(snap)
	}
}

// mutate runs fn under the lock, then publishes a snapshot. fn reports
// whether it changed anything; only a real change under dirty advances
// the revision and sets the dirty flag, so no-op edits (unknown ids,
// out-of-range indices) never schedule a save.
func (s *Store) mutate(dirty bool, fn func() bool) {
	s.mu.Lock()
	changed := fn()
	if dirty && changed {
		s.dirty = true
		s.revision++
	}
	snap := s.snapshotLocked()
	listeners := s.listeners
	s.mu.Unlock()
	s.notify(snap, listeners)
}

// LoadState replaces the whole aggregate with a persisted snapshot. An
// empty slot sequence is substituted with the default number of empty
// slots. The state is marked clean: hydration is not a user edit.
func (s *Store) LoadState(slots []*domain.Slot, setID, setName, profileID *string) {
	s.mutate(false, func() bool {
		if len(slots) == 0 {
			slots = emptySlots(s.slotCount)
		}
		s.state = domain.WorkshopState{
			Slots:          domain.CloneSlots(slots),
			SetID:          setID,
			SetName:        setName,
			PhaseProfileID: profileID,
		}
		s.dirty = false
		s.playbackIndex = 0
		s.loading = make(map[string]bool)
		return true
	})
}

// StartNewSet resets to an empty default-length sequence and clears the
// set identity and phase profile. Marks the state clean.
func (s *Store) StartNewSet() {
	s.LoadState(nil, nil, nil, nil)
}

// SelectTrack sets the selected candidate on the identified slot. An
// unknown slot id or an out-of-range index is a no-op; an index pointing
// at a nil candidate clears the selection instead.
func (s *Store) SelectTrack(slotID string, index int) {
	s.mutate(true, func() bool {
		slot := s.slotByIDLocked(slotID)
		if slot == nil || index < 0 || index >= len(slot.Tracks) {
			return false
		}
		if slot.Tracks[index] == nil {
			slot.SelectedTrackIndex = nil
			return true
		}
		slot.SelectedTrackIndex = &index
		return true
	})
}

// UpdateSlotTracks replaces a slot's candidate list and, when source is
// non-nil, its source. The selection is kept if it still points at a
// non-nil entry and cleared otherwise; callers pick a sensible default
// via DefaultCandidate afterwards.
func (s *Store) UpdateSlotTracks(slotID string, tracks []*domain.TrackOption, source *domain.SlotSource) {
	s.mutate(true, func() bool {
		slot := s.slotByIDLocked(slotID)
		if slot == nil {
			return false
		}
		slot.Tracks = domain.CloneTracks(tracks)
		if source != nil {
			slot.Source = source.Clone()
		}
		if slot.SelectedTrackIndex != nil {
			i := *slot.SelectedTrackIndex
			if i < 0 || i >= len(slot.Tracks) || slot.Tracks[i] == nil {
				slot.SelectedTrackIndex = nil
			}
		}
		return true
	})
}

// RemoveSlot deletes the slot at index, shifting later slots left. The
// playback index keeps pointing at the same logical slot and is clamped
// to the shortened sequence.
func (s *Store) RemoveSlot(index int) {
	s.mutate(true, func() bool {
		if index < 0 || index >= len(s.state.Slots) {
			return false
		}
		delete(s.loading, s.state.Slots[index].ID)
		s.state.Slots = append(s.state.Slots[:index], s.state.Slots[index+1:]...)
		if index < s.playbackIndex {
			s.playbackIndex--
		}
		if max := len(s.state.Slots) - 1; s.playbackIndex > max {
			s.playbackIndex = max
		}
		if s.playbackIndex < 0 {
			s.playbackIndex = 0
		}
		return true
	})
}

// InsertSlot inserts one new empty slot at the given index.
func (s *Store) InsertSlot(atIndex int) {
	s.mutate(true, func() bool {
		if atIndex < 0 || atIndex > len(s.state.Slots) {
			return false
		}
		slots := s.state.Slots
		slots = append(slots, nil)
		copy(slots[atIndex+1:], slots[atIndex:])
		slots[atIndex] = NewEmptySlot()
		s.state.Slots = slots
		if atIndex <= s.playbackIndex {
			s.playbackIndex++
		}
		return true
	})
}

// ReorderSlot removes the slot at fromIndex and re-inserts it at toIndex.
// Standard array-move semantics; no slot ids change.
func (s *Store) ReorderSlot(fromIndex, toIndex int) {
	s.mutate(true, func() bool {
		n := len(s.state.Slots)
		if fromIndex < 0 || fromIndex >= n || toIndex < 0 || toIndex >= n || fromIndex == toIndex {
			return false
		}
		slots := s.state.Slots
		moved := slots[fromIndex]
		slots = append(slots[:fromIndex], slots[fromIndex+1:]...)
		slots = append(slots, nil)
		copy(slots[toIndex+1:], slots[toIndex:])
		slots[toIndex] = moved
		s.state.Slots = slots
		return true
	})
}

// MoveGroup removes every slot whose id is in memberIDs, preserving
// their relative order, and re-inserts the run starting at
// min(toIndex, length of the remainder).
func (s *Store) MoveGroup(memberIDs []string, toIndex int) {
	s.mutate(true, func() bool {
		members := make(map[string]bool, len(memberIDs))
		for _, id := range memberIDs {
			members[id] = true
		}
		var moved, rest []*domain.Slot
		for _, slot := range s.state.Slots {
			if members[slot.ID] {
				moved = append(moved, slot)
			} else {
				rest = append(rest, slot)
			}
		}
		if len(moved) == 0 {
			return false
		}
		if toIndex < 0 {
			toIndex = 0
		}
		if toIndex > len(rest) {
			toIndex = len(rest)
		}
		slots := make([]*domain.Slot, 0, len(s.state.Slots))
		slots = append(slots, rest[:toIndex]...)
		slots = append(slots, moved...)
		slots = append(slots, rest[toIndex:]...)
		s.state.Slots = slots
		return true
	})
}

// SetSlotLoading toggles the transient per-slot loading indicator.
// Not a user edit: the aggregate is not marked dirty.
func (s *Store) SetSlotLoading(slotID string, loading bool) {
	s.mutate(false, func() bool {
		if s.slotByIDLocked(slotID) == nil {
			return false
		}
		if loading {
			s.loading[slotID] = true
		} else {
			delete(s.loading, slotID)
		}
		return true
	})
}

// SetPlaybackIndex moves the playback selection. Out-of-range is a no-op.
func (s *Store) SetPlaybackIndex(index int) {
	s.mutate(false, func() bool {
		if index < 0 || index >= len(s.state.Slots) {
			return false
		}
		s.playbackIndex = index
		return true
	})
}

// SetRefilling flips the bulk-refill indicator.
func (s *Store) SetRefilling(on bool) {
	s.mutate(false, func() bool { s.refilling = on; return true })
}

// SetDrawerOpen toggles the source drawer.
func (s *Store) SetDrawerOpen(open bool) {
	s.mutate(false, func() bool { s.drawerOpen = open; return true })
}

// SetMode switches the interaction mode.
func (s *Store) SetMode(mode Mode) {
	s.mutate(false, func() bool { s.mode = mode; return true })
}

// SetIdentity records the saved-set identity after a Save/Save As.
func (s *Store) SetIdentity(setID, setName *string) {
	s.mutate(true, func() bool {
		s.state.SetID = setID
		s.state.SetName = setName
		return true
	})
}

// SetPhaseProfile switches the active phase profile.
func (s *Store) SetPhaseProfile(profileID *string) {
	s.mutate(true, func() bool { s.state.PhaseProfileID = profileID; return true })
}

// MarkClean clears the dirty flag, but only when no edit has happened
// since the snapshot with the given revision was taken.
func (s *Store) MarkClean(revision uint64) {
	s.mutate(false, func() bool {
		if s.revision == revision {
			s.dirty = false
		}
		return true
	})
}

// SlotByID returns a copy of the slot with the given id and its current
// index, or nil and -1 when the id is unknown.
func (s *Store) SlotByID(id string) (*domain.Slot, int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i, slot := range s.state.Slots {
		if slot.ID == id {
			return slot.Clone(), i
		}
	}
	return nil, -1
}

// SlotAt returns a copy of the slot at index, or nil when out of range.
func (s *Store) SlotAt(index int) *domain.Slot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if index < 0 || index >= len(s.state.Slots) {
		return nil
	}
	return s.state.Slots[index].Clone()
}

// Groups resolves the current source groups.
func (s *Store) Groups() []domain.SourceGroup {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return ResolveGroups(s.state.Slots)
}

// NextSelected returns the index of the first slot after fromIndex with
// a valid selection, skipping slots with none. ok is false when no such
// slot exists. Used by playback auto-advance.
func (s *Store) NextSelected(fromIndex int) (int, *domain.TrackOption, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := fromIndex + 1; i < len(s.state.Slots); i++ {
		if t := s.state.Slots[i].SelectedTrack(); t != nil {
			return i, t.Clone(), true
		}
	}
	return 0, nil, false
}

func (s *Store) slotByIDLocked(id string) *domain.Slot {
	for _, slot := range s.state.Slots {
		if slot.ID == id {
			return slot
		}
	}
	return nil
}

// DefaultCandidate picks the index to select after a candidate list is
// replaced: the first entry whose tempo bucket falls in the mid-tempo
// band, otherwise the first non-nil entry, otherwise nothing.
func DefaultCandidate(tracks []*domain.TrackOption) *int {
	for i, t := range tracks {
		if t != nil && t.BPMBucket != nil && *t.BPMBucket >= midBandLow && *t.BPMBucket <= midBandHigh {
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
