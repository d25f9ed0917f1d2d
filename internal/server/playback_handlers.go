package server

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
)

// getPlayback returns the controller's current status.
func (s *Server) getPlayback(c *gin.Context) {
	c.JSON(200, s.controller.Status())
}

// play starts playback at the requested slot's selected candidate. With
// autoAdvance set, the end of each track chains into the next slot that
// has a selection.
func (s *Server) play(c *gin.Context) {
	var req PlayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(400, ErrorResponse{Error: fmt.Sprintf("invalid request: %v", err)})
		return
	}

	slot := s.store.SlotAt(req.SlotIndex)
	if slot == nil {
		c.JSON(404, ErrorResponse{Error: "slot not found"})
		return
	}
	track := slot.SelectedTrack()
	if track == nil {
		c.JSON(400, ErrorResponse{Error: "slot has no selected track"})
		return
	}

	s.store.SetPlaybackIndex(req.SlotIndex)

	var onEnded func()
	if req.AutoAdvance {
		onEnded = s.advanceFrom(req.SlotIndex)
	}
	if err := s.controller.Play(track.ID, onEnded); err != nil {
		c.JSON(502, ErrorResponse{Error: fmt.Sprintf("playback failed: %v", err)})
		return
	}
	c.JSON(200, s.controller.Status())
}

// advanceFrom builds the auto-advance callback: find the next slot with
// a selected candidate, skipping slots without one, and re-enter play.
// A play failure ends immediately and fires the next callback, so the
// chain also skips slots whose audio cannot be loaded.
func (s *Server) advanceFrom(index int) func() {
	return func() {
		next, track, ok := s.store.NextSelected(index)
		if !ok {
			slog.Debug("Auto-advance reached end of timeline", "fromIndex", index)
			return
		}
		s.store.SetPlaybackIndex(next)
		if err := s.controller.Play(track.ID, s.advanceFrom(next)); err != nil {
			slog.Warn("Auto-advance playback failed", "slotIndex", next, "trackId", track.ID, "error", err)
		}
	}
}

func (s *Server) pause(c *gin.Context) {
	s.controller.Pause()
	c.JSON(200, s.controller.Status())
}

func (s *Server) resume(c *gin.Context) {
	if err := s.controller.Resume(); err != nil {
		c.JSON(502, ErrorResponse{Error: fmt.Sprintf("resume failed: %v", err)})
		return
	}
	c.JSON(200, s.controller.Status())
}

func (s *Server) seek(c *gin.Context) {
	var req SeekRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(400, ErrorResponse{Error: fmt.Sprintf("invalid request: %v", err)})
		return
	}
	s.controller.Seek(time.Duration(req.PositionMS) * time.Millisecond)
	c.JSON(200, s.controller.Status())
}

func (s *Server) stopPlayback(c *gin.Context) {
	s.controller.Stop()
	c.JSON(200, s.controller.Status())
}

// preview plays a short clip through a throwaway resource, fire and
// forget, independent of the singleton controller.
func (s *Server) preview(c *gin.Context) {
	var req PreviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(400, ErrorResponse{Error: fmt.Sprintf("invalid request: %v", err)})
		return
	}
	go s.previewer.Play(req.Artist, req.Title)
	c.JSON(202, MessageResponse{Message: "Preview started"})
}
