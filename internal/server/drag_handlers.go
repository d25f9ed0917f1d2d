package server

import (
	"fmt"

	"github.com/gin-gonic/gin"

	"github.com/jaki95/set-workshop/internal/dragdrop"
)

// startDrag installs a new drag payload, discarding any prior one.
func (s *Server) startDrag(c *gin.Context) {
	var req StartDragRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(400, ErrorResponse{Error: fmt.Sprintf("invalid request: %v", err)})
		return
	}

	switch req.Payload.Kind {
	case dragdrop.KindSlot:
		if req.Payload.SlotID == "" {
			c.JSON(400, ErrorResponse{Error: "slot payload requires slotId"})
			return
		}
	case dragdrop.KindGroup:
		if len(req.Payload.SlotIDs) == 0 {
			c.JSON(400, ErrorResponse{Error: "group payload requires slotIds"})
			return
		}
	case dragdrop.KindTrack:
		if req.Payload.Track.TrackID == 0 {
			c.JSON(400, ErrorResponse{Error: "track payload requires trackId"})
			return
		}
	default:
		c.JSON(400, ErrorResponse{Error: fmt.Sprintf("unknown drag kind: %s", req.Payload.Kind)})
		return
	}

	s.coordinator.StartDrag(req.Payload)
	c.JSON(200, MessageResponse{Message: "Drag started"})
}

// cancelDrag discards the current payload.
func (s *Server) cancelDrag(c *gin.Context) {
	s.coordinator.CancelDrag()
	c.JSON(200, MessageResponse{Message: "Drag cancelled"})
}

// drop completes the current drag over a slot or an insertion gap.
func (s *Server) drop(c *gin.Context) {
	var req DropRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(400, ErrorResponse{Error: fmt.Sprintf("invalid request: %v", err)})
		return
	}

	if s.coordinator.Current() == nil {
		c.JSON(400, ErrorResponse{Error: "no drag in progress"})
		return
	}

	switch {
	case req.TargetSlotID != "":
		s.coordinator.DropOnSlot(req.TargetSlotID)
	case req.TargetIndex != nil:
		s.coordinator.DropAtIndex(*req.TargetIndex)
	default:
		c.JSON(400, ErrorResponse{Error: "drop requires targetSlotId or targetIndex"})
		return
	}

	c.JSON(200, MessageResponse{Message: "Dropped"})
}
