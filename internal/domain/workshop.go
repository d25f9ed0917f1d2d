package domain

// WorkshopState is the persisted snapshot of the set workshop: the slot
// sequence, the identity of the loaded saved set (nil for an unsaved set)
// and the active phase profile.
type WorkshopState struct {
	Slots          []*Slot `json:"slots"`
	SetID          *string `json:"setId,omitempty"`
	SetName        *string `json:"setName,omitempty"`
	PhaseProfileID *string `json:"phaseProfileId,omitempty"`
}

// Clone returns a deep copy of the workshop state.
func (w *WorkshopState) Clone() *WorkshopState {
	cp := &WorkshopState{Slots: CloneSlots(w.Slots)}
	if w.SetID != nil {
		id := *w.SetID
		cp.SetID = &id
	}
	if w.SetName != nil {
		name := *w.SetName
		cp.SetName = &name
	}
	if w.PhaseProfileID != nil {
		pid := *w.PhaseProfileID
		cp.PhaseProfileID = &pid
	}
	return cp
}

// UsedTrackIDs collects the ids of every non-nil candidate across the
// sequence, optionally skipping one slot. Resolvers use this set to bias
// against handing out duplicates.
func (w *WorkshopState) UsedTrackIDs(excludeSlotID string) []int64 {
	var ids []int64
	for _, slot := range w.Slots {
		if slot.ID == excludeSlotID {
			continue
		}
		for _, t := range slot.Tracks {
			if t != nil {
				ids = append(ids, t.ID)
			}
		}
	}
	return ids
}
