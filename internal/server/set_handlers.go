package server

import (
	"errors"
	"fmt"

	"github.com/gin-gonic/gin"

	"github.com/jaki95/set-workshop/internal/storage"
)

// listSets returns all saved sets, most recently updated first.
func (s *Server) listSets(c *gin.Context) {
	sets, err := s.persistence.ListSets(c.Request.Context())
	if err != nil {
		c.JSON(500, ErrorResponse{Error: fmt.Sprintf("failed to list sets: %v", err)})
		return
	}
	if sets == nil {
		sets = []*storage.SavedSet{}
	}
	c.JSON(200, gin.H{"sets": sets})
}

// createSet commits the current workshop state as a new saved set and
// adopts its identity.
func (s *Server) createSet(c *gin.Context) {
	var req SaveSetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(400, ErrorResponse{Error: fmt.Sprintf("invalid request: %v", err)})
		return
	}

	snap := s.store.Snapshot()
	set, err := s.persistence.CreateSet(c.Request.Context(), req.Name, &snap.State)
	if err != nil {
		c.JSON(500, ErrorResponse{Error: fmt.Sprintf("failed to create set: %v", err)})
		return
	}

	s.store.SetIdentity(&set.ID, &set.Name)
	c.JSON(201, set)
}

// getSet returns one saved set by id.
func (s *Server) getSet(c *gin.Context) {
	set, err := s.persistence.GetSet(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			c.JSON(404, ErrorResponse{Error: "set not found"})
			return
		}
		c.JSON(500, ErrorResponse{Error: fmt.Sprintf("failed to get set: %v", err)})
		return
	}
	c.JSON(200, set)
}

// updateSet overwrites a saved set with the current workshop state.
func (s *Server) updateSet(c *gin.Context) {
	id := c.Param("id")
	var req SaveSetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(400, ErrorResponse{Error: fmt.Sprintf("invalid request: %v", err)})
		return
	}

	snap := s.store.Snapshot()
	if err := s.persistence.UpdateSet(c.Request.Context(), id, req.Name, &snap.State); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			c.JSON(404, ErrorResponse{Error: "set not found"})
			return
		}
		c.JSON(500, ErrorResponse{Error: fmt.Sprintf("failed to update set: %v", err)})
		return
	}

	s.store.SetIdentity(&id, &req.Name)
	c.JSON(200, MessageResponse{Message: "Set updated"})
}

// deleteSet removes a saved set.
func (s *Server) deleteSet(c *gin.Context) {
	if err := s.persistence.DeleteSet(c.Request.Context(), c.Param("id")); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			c.JSON(404, ErrorResponse{Error: "set not found"})
			return
		}
		c.JSON(500, ErrorResponse{Error: fmt.Sprintf("failed to delete set: %v", err)})
		return
	}
	c.JSON(200, MessageResponse{Message: "Set deleted"})
}

// exportSet uploads a saved set's snapshot to the configured bucket.
func (s *Server) exportSet(c *gin.Context) {
	if s.exporter == nil {
		c.JSON(501, ErrorResponse{Error: "export is not configured"})
		return
	}

	set, err := s.persistence.GetSet(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			c.JSON(404, ErrorResponse{Error: "set not found"})
			return
		}
		c.JSON(500, ErrorResponse{Error: fmt.Sprintf("failed to get set: %v", err)})
		return
	}

	object, err := s.exporter.Export(c.Request.Context(), set)
	if err != nil {
		c.JSON(502, ErrorResponse{Error: fmt.Sprintf("export failed: %v", err)})
		return
	}
	c.JSON(200, gin.H{"object": object})
}

// listExports returns the bucket objects previously exported for a set.
func (s *Server) listExports(c *gin.Context) {
	if s.exporter == nil {
		c.JSON(501, ErrorResponse{Error: "export is not configured"})
		return
	}

	objects, err := s.exporter.ListExports(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(502, ErrorResponse{Error: fmt.Sprintf("failed to list exports: %v", err)})
		return
	}
	if objects == nil {
		objects = []string{}
	}
	c.JSON(200, gin.H{"objects": objects})
}
