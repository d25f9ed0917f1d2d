package server

import (
	"github.com/jaki95/set-workshop/internal/domain"
	"github.com/jaki95/set-workshop/internal/dragdrop"
)

// InsertSlotRequest asks for a new empty slot.
type InsertSlotRequest struct {
	AtIndex int `json:"atIndex"`
}

// ReorderSlotRequest moves one slot.
type ReorderSlotRequest struct {
	FromIndex int `json:"fromIndex"`
	ToIndex   int `json:"toIndex"`
}

// MoveGroupRequest moves a contiguous source group as one unit.
type MoveGroupRequest struct {
	SlotIDs []string `json:"slotIds" binding:"required"`
	ToIndex int      `json:"toIndex"`
}

// SelectTrackRequest picks a candidate within a slot.
type SelectTrackRequest struct {
	TrackIndex int `json:"trackIndex"`
}

// AssignSourceRequest assigns a source to a slot.
type AssignSourceRequest struct {
	SourceType domain.SourceType `json:"sourceType" binding:"required"`
	SourceID   string            `json:"sourceId" binding:"required"`
	TreeType   string            `json:"treeType"`
}

// DropRequest completes the current drag. Exactly one of TargetSlotID
// and TargetIndex should be set; TargetIndex covers the inter-group gap
// drop from the "insert" control.
type DropRequest struct {
	TargetSlotID string `json:"targetSlotId"`
	TargetIndex  *int   `json:"targetIndex"`
}

// PlayRequest starts playback at a slot.
type PlayRequest struct {
	SlotIndex   int  `json:"slotIndex"`
	AutoAdvance bool `json:"autoAdvance"`
}

// SeekRequest jumps the playback position.
type SeekRequest struct {
	PositionMS int64 `json:"positionMs"`
}

// PreviewRequest plays a short clip.
type PreviewRequest struct {
	Artist string `json:"artist" binding:"required"`
	Title  string `json:"title" binding:"required"`
}

// SaveSetRequest creates or updates a saved set from the current state.
type SaveSetRequest struct {
	Name string `json:"name" binding:"required"`
}

// StartDragRequest carries the tagged drag payload.
type StartDragRequest struct {
	Payload dragdrop.Payload `json:"payload" binding:"required"`
}

// SlotPosition is one mapped slot in the layout response.
type SlotPosition struct {
	SlotID  string   `json:"slotId"`
	Index   int      `json:"index"`
	TrackID int64    `json:"trackId"`
	BPM     *float64 `json:"bpm,omitempty"`
	Y       *float64 `json:"y,omitempty"`
}

// MessageResponse represents a generic message payload used for success responses.
type MessageResponse struct {
	Message string `json:"message"`
}

// ErrorResponse represents a generic error payload used for error responses.
type ErrorResponse struct {
	Error string `json:"error"`
}
