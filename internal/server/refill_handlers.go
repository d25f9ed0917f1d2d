package server

import (
	"encoding/json"
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/jaki95/set-workshop/internal/refill"
)

// runRefill recomputes candidates for all filled slots, relaying the
// upstream stream's per-slot results to the caller as NDJSON lines as
// they are applied. Already-applied results survive a mid-stream
// failure; there is no rollback.
func (s *Server) runRefill(c *gin.Context) {
	if !s.refillMu.TryLock() {
		c.JSON(409, ErrorResponse{Error: refill.ErrAlreadyRunning.Error()})
		return
	}
	defer s.refillMu.Unlock()

	c.Header("Content-Type", "application/x-ndjson")
	c.Header("Cache-Control", "no-cache")

	enc := json.NewEncoder(c.Writer)
	flush := func() {
		c.Writer.Flush()
	}

	err := s.refiller.Run(c.Request.Context(), func(p refill.Progress) {
		s.metrics.IncRefillEvents()
		if encErr := enc.Encode(p); encErr == nil {
			flush()
		}
	})
	if err != nil {
		if errors.Is(err, refill.ErrAlreadyRunning) {
			// Headers may already be out; report in-band.
			enc.Encode(gin.H{"error": err.Error()})
			flush()
			return
		}
		s.addNoticeErr(err)
		enc.Encode(gin.H{"error": err.Error()})
		flush()
		return
	}

	enc.Encode(gin.H{"done": true})
	flush()
}

// getRefilling reports whether a bulk refill is in flight.
func (s *Server) getRefilling(c *gin.Context) {
	c.JSON(200, gin.H{"refilling": s.store.Snapshot().Refilling})
}
