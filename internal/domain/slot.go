package domain

// SourceType tags where a slot's candidates came from.
type SourceType string

const (
	SourcePlaylist  SourceType = "playlist"
	SourceTreeNode  SourceType = "tree-node"
	SourceTracklist SourceType = "tracklist"
	SourceAdHoc     SourceType = "ad-hoc"
)

// SlotSource describes the origin of a slot's candidate list.
type SlotSource struct {
	Type        SourceType `json:"type"`
	ID          string     `json:"id"`
	TreeType    string     `json:"treeType,omitempty"`
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	TrackCount  int        `json:"trackCount,omitempty"`
}

// SameGroup reports whether two sources belong to the same display group.
// Type, id and tree type must all match; name and description do not matter.
func (s *SlotSource) SameGroup(other *SlotSource) bool {
	if s == nil || other == nil {
		return false
	}
	return s.Type == other.Type && s.ID == other.ID && s.TreeType == other.TreeType
}

// Clone returns a copy of the source.
func (s *SlotSource) Clone() *SlotSource {
	if s == nil {
		return nil
	}
	cp := *s
	return &cp
}

// Slot is one timeline position. Its ID is assigned once and never reused.
type Slot struct {
	ID                 string         `json:"id"`
	Source             *SlotSource    `json:"source,omitempty"`
	Tracks             []*TrackOption `json:"tracks"`
	SelectedTrackIndex *int           `json:"selectedTrackIndex,omitempty"`
}

// IsEmpty reports whether the slot has neither a source nor any candidates.
func (s *Slot) IsEmpty() bool {
	return s.Source == nil && len(s.Tracks) == 0
}

// IsFilled reports whether the slot has a source, at least one candidate
// and a selection. Filled slots participate in refills.
func (s *Slot) IsFilled() bool {
	return s.Source != nil && len(s.Tracks) > 0 && s.SelectedTrackIndex != nil
}

// SelectedTrack returns the currently selected candidate, or nil if the
// slot has no selection or the selection points past the list.
func (s *Slot) SelectedTrack() *TrackOption {
	if s.SelectedTrackIndex == nil {
		return nil
	}
	i := *s.SelectedTrackIndex
	if i < 0 || i >= len(s.Tracks) {
		return nil
	}
	return s.Tracks[i]
}

// Clone returns a deep copy of the slot.
func (s *Slot) Clone() *Slot {
	if s == nil {
		return nil
	}
	cp := &Slot{
		ID:     s.ID,
		Source: s.Source.Clone(),
		Tracks: CloneTracks(s.Tracks),
	}
	if s.SelectedTrackIndex != nil {
		i := *s.SelectedTrackIndex
		cp.SelectedTrackIndex = &i
	}
	return cp
}

// CloneSlots deep-copies a slot sequence.
func CloneSlots(slots []*Slot) []*Slot {
	out := make([]*Slot, len(slots))
	for i, s := range slots {
		out[i] = s.Clone()
	}
	return out
}

// SourceGroup is a maximal contiguous run of slots sharing one source.
// Derived from the slot sequence on demand; never persisted.
type SourceGroup struct {
	StartIndex int         `json:"startIndex"`
	Length     int         `json:"length"`
	Source     *SlotSource `json:"source,omitempty"`
	SlotIDs    []string    `json:"slotIds"`
}
