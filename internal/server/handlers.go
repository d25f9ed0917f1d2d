package server

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jaki95/set-workshop/internal/sources"
	"github.com/jaki95/set-workshop/internal/workshop"
)

// getWorkshop returns the current snapshot: state, flags and the derived
// source groups.
func (s *Server) getWorkshop(c *gin.Context) {
	snap := s.store.Snapshot()
	c.JSON(200, gin.H{
		"snapshot": snap,
		"groups":   workshop.ResolveGroups(snap.State.Slots),
	})
}

// newSet resets the workshop to an empty default-length timeline. The
// caller is expected to have confirmed the destructive action: there is
// no undo.
func (s *Server) newSet(c *gin.Context) {
	s.store.StartNewSet()
	c.JSON(200, MessageResponse{Message: "New set started"})
}

// loadWorkshop hydrates the store from the persisted snapshot.
func (s *Server) loadWorkshop(c *gin.Context) {
	state, err := s.persistence.LoadWorkshop(c.Request.Context())
	if err != nil {
		c.JSON(500, ErrorResponse{Error: fmt.Sprintf("failed to load workshop: %v", err)})
		return
	}
	if state == nil {
		s.store.StartNewSet()
		c.JSON(200, MessageResponse{Message: "No saved state, started fresh"})
		return
	}
	s.store.LoadState(state.Slots, state.SetID, state.SetName, state.PhaseProfileID)
	c.JSON(200, MessageResponse{Message: "Workshop state loaded"})
}

// insertSlot inserts one new empty slot.
func (s *Server) insertSlot(c *gin.Context) {
	var req InsertSlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(400, ErrorResponse{Error: fmt.Sprintf("invalid request: %v", err)})
		return
	}
	s.store.InsertSlot(req.AtIndex)
	c.JSON(200, MessageResponse{Message: "Slot inserted"})
}

// removeSlot deletes the slot at the path index.
func (s *Server) removeSlot(c *gin.Context) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		c.JSON(400, ErrorResponse{Error: "invalid slot index"})
		return
	}
	s.store.RemoveSlot(index)
	c.JSON(200, MessageResponse{Message: "Slot removed"})
}

// reorderSlot moves a single slot.
func (s *Server) reorderSlot(c *gin.Context) {
	var req ReorderSlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(400, ErrorResponse{Error: fmt.Sprintf("invalid request: %v", err)})
		return
	}
	s.store.ReorderSlot(req.FromIndex, req.ToIndex)
	c.JSON(200, MessageResponse{Message: "Slot reordered"})
}

// moveGroup moves a whole source group.
func (s *Server) moveGroup(c *gin.Context) {
	var req MoveGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(400, ErrorResponse{Error: fmt.Sprintf("invalid request: %v", err)})
		return
	}
	s.store.MoveGroup(req.SlotIDs, req.ToIndex)
	c.JSON(200, MessageResponse{Message: "Group moved"})
}

// selectTrack selects a candidate within a slot.
func (s *Server) selectTrack(c *gin.Context) {
	var req SelectTrackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(400, ErrorResponse{Error: fmt.Sprintf("invalid request: %v", err)})
		return
	}
	s.store.SelectTrack(c.Param("id"), req.TrackIndex)
	c.JSON(200, MessageResponse{Message: "Track selected"})
}

// assignSource resolves a source into the slot's candidate list in the
// background, mirroring a drop from the source drawer. The response is
// immediate; the slot's loading flag tracks the in-flight resolution.
func (s *Server) assignSource(c *gin.Context) {
	slotID := c.Param("id")
	var req AssignSourceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(400, ErrorResponse{Error: fmt.Sprintf("invalid request: %v", err)})
		return
	}

	if slot, _ := s.store.SlotByID(slotID); slot == nil {
		c.JSON(404, ErrorResponse{Error: "slot not found"})
		return
	}

	snap := s.store.Snapshot()
	assign := sources.AssignRequest{
		SourceType:   req.SourceType,
		SourceID:     req.SourceID,
		TreeType:     req.TreeType,
		UsedTrackIDs: snap.State.UsedTrackIDs(slotID),
	}

	s.store.SetSlotLoading(slotID, true)
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		res, err := s.resolver.Assign(ctx, assign)
		if err != nil {
			// The slot keeps its previous contents.
			s.store.SetSlotLoading(slotID, false)
			slog.Error("Source assignment failed", "slotId", slotID, "sourceId", req.SourceID, "error", err)
			s.addNoticeErr(err)
			return
		}

		// Re-resolved by stable id: a reorder while the request was in
		// flight cannot land the result on the wrong slot, and a deleted
		// slot makes this a no-op.
		s.store.UpdateSlotTracks(slotID, res.Tracks, res.Source)
		if idx := workshop.DefaultCandidate(res.Tracks); idx != nil {
			s.store.SelectTrack(slotID, *idx)
		}
		s.store.SetSlotLoading(slotID, false)
	}()

	c.JSON(202, MessageResponse{Message: "Source assignment started"})
}
