package server

import (
	"errors"
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/jaki95/set-workshop/internal/domain"
	"github.com/jaki95/set-workshop/internal/storage"
)

// listProfiles returns all phase profiles.
func (s *Server) listProfiles(c *gin.Context) {
	profiles, err := s.persistence.ListProfiles(c.Request.Context())
	if err != nil {
		c.JSON(500, ErrorResponse{Error: fmt.Sprintf("failed to list profiles: %v", err)})
		return
	}
	if profiles == nil {
		profiles = []*domain.PhaseProfile{}
	}
	c.JSON(200, gin.H{"profiles": profiles})
}

// createProfile stores a new phase profile after validating its spans.
func (s *Server) createProfile(c *gin.Context) {
	var profile domain.PhaseProfile
	if err := c.ShouldBindJSON(&profile); err != nil {
		c.JSON(400, ErrorResponse{Error: fmt.Sprintf("invalid request: %v", err)})
		return
	}
	if err := profile.Validate(); err != nil {
		c.JSON(400, ErrorResponse{Error: err.Error()})
		return
	}
	if err := s.persistence.CreateProfile(c.Request.Context(), &profile); err != nil {
		c.JSON(500, ErrorResponse{Error: fmt.Sprintf("failed to create profile: %v", err)})
		return
	}
	c.JSON(201, profile)
}

// getProfile returns one phase profile.
func (s *Server) getProfile(c *gin.Context) {
	profile, err := s.persistence.GetProfile(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			c.JSON(404, ErrorResponse{Error: "profile not found"})
			return
		}
		c.JSON(500, ErrorResponse{Error: fmt.Sprintf("failed to get profile: %v", err)})
		return
	}
	c.JSON(200, profile)
}

// updateProfile overwrites a phase profile.
func (s *Server) updateProfile(c *gin.Context) {
	var profile domain.PhaseProfile
	if err := c.ShouldBindJSON(&profile); err != nil {
		c.JSON(400, ErrorResponse{Error: fmt.Sprintf("invalid request: %v", err)})
		return
	}
	profile.ID = c.Param("id")
	if err := profile.Validate(); err != nil {
		c.JSON(400, ErrorResponse{Error: err.Error()})
		return
	}
	if err := s.persistence.UpdateProfile(c.Request.Context(), &profile); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			c.JSON(404, ErrorResponse{Error: "profile not found"})
			return
		}
		c.JSON(500, ErrorResponse{Error: fmt.Sprintf("failed to update profile: %v", err)})
		return
	}
	c.JSON(200, profile)
}

// deleteProfile removes a phase profile.
func (s *Server) deleteProfile(c *gin.Context) {
	if err := s.persistence.DeleteProfile(c.Request.Context(), c.Param("id")); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			c.JSON(404, ErrorResponse{Error: "profile not found"})
			return
		}
		c.JSON(500, ErrorResponse{Error: fmt.Sprintf("failed to delete profile: %v", err)})
		return
	}
	c.JSON(200, MessageResponse{Message: "Profile deleted"})
}

// duplicateProfile copies a profile under a fresh id.
func (s *Server) duplicateProfile(c *gin.Context) {
	profile, err := s.persistence.GetProfile(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			c.JSON(404, ErrorResponse{Error: "profile not found"})
			return
		}
		c.JSON(500, ErrorResponse{Error: fmt.Sprintf("failed to get profile: %v", err)})
		return
	}

	dup := *profile
	dup.ID = uuid.NewString()
	dup.Name = profile.Name + " (copy)"
	if err := s.persistence.CreateProfile(c.Request.Context(), &dup); err != nil {
		c.JSON(500, ErrorResponse{Error: fmt.Sprintf("failed to duplicate profile: %v", err)})
		return
	}
	c.JSON(201, dup)
}
