package domain

// TrackOption represents a candidate track inside a slot.
// Immutable once fetched; slots own their copies.
type TrackOption struct {
	ID        int64    `json:"id"`
	Title     string   `json:"title"`
	Artist    string   `json:"artist"`
	BPM       *float64 `json:"bpm,omitempty"`
	Key       string   `json:"key,omitempty"`
	Year      int      `json:"year,omitempty"`
	HasAudio  bool     `json:"hasAudio"`
	BPMBucket *int     `json:"bpmBucket,omitempty"`
}

// Clone returns a deep copy of the track option.
func (t *TrackOption) Clone() *TrackOption {
	if t == nil {
		return nil
	}
	cp := *t
	if t.BPM != nil {
		bpm := *t.BPM
		cp.BPM = &bpm
	}
	if t.BPMBucket != nil {
		bucket := *t.BPMBucket
		cp.BPMBucket = &bucket
	}
	return &cp
}

// CloneTracks deep-copies a candidate list, preserving nil entries
// (a nil entry means the candidate failed to resolve).
func CloneTracks(tracks []*TrackOption) []*TrackOption {
	if tracks == nil {
		return nil
	}
	out := make([]*TrackOption, len(tracks))
	for i, t := range tracks {
		out[i] = t.Clone()
	}
	return out
}
