package server

import (
	"github.com/gin-gonic/gin"

	"github.com/jaki95/set-workshop/internal/workshop"
)

// getLayout returns the rendered timeline geometry: one position per
// slot with a selected candidate (tempo mapped to a y offset, no
// clamping), the BPM gridlines and the derived source groups.
func (s *Server) getLayout(c *gin.Context) {
	snap := s.store.Snapshot()

	positions := make([]SlotPosition, 0, len(snap.State.Slots))
	for i, slot := range snap.State.Slots {
		pos := SlotPosition{SlotID: slot.ID, Index: i}
		if track := slot.SelectedTrack(); track != nil {
			pos.TrackID = track.ID
			if track.BPM != nil {
				bpm := *track.BPM
				y := s.mapper.Y(bpm)
				pos.BPM = &bpm
				pos.Y = &y
			}
		}
		positions = append(positions, pos)
	}

	c.JSON(200, gin.H{
		"positions": positions,
		"gridlines": s.mapper.Gridlines(10),
		"groups":    workshop.ResolveGroups(snap.State.Slots),
		"height":    s.mapper.Height,
	})
}
