// Package sources resolves slot candidate lists from external catalog
// services: playlist/tree-node assignment and the ad-hoc "drag a single
// track into a slot" resolution.
package sources

import (
	"context"
	"errors"

	"github.com/jaki95/set-workshop/internal/domain"
)

var ErrResolveFailed = errors.New("source resolution failed")

// AssignRequest asks for a candidate list for a whole source.
type AssignRequest struct {
	SourceType   domain.SourceType `json:"sourceType"`
	SourceID     string            `json:"sourceId"`
	TreeType     string            `json:"treeType,omitempty"`
	UsedTrackIDs []int64           `json:"usedTrackIds"`
}

// TrackDragRequest asks for a candidate list built around one dragged
// track. The used ids bias the service against handing out duplicates.
type TrackDragRequest struct {
	TrackID      int64             `json:"trackId"`
	SourceType   domain.SourceType `json:"sourceType"`
	SourceID     string            `json:"sourceId"`
	TreeType     string            `json:"treeType,omitempty"`
	Name         string            `json:"name"`
	UsedTrackIDs []int64           `json:"usedTrackIds"`
}

// Resolution is the shared response shape: the resolved source plus a
// candidate list sized to the slot capacity. Entries may be nil when a
// candidate failed to resolve.
type Resolution struct {
	Source *domain.SlotSource    `json:"source"`
	Tracks []*domain.TrackOption `json:"tracks"`
}

// Resolver produces candidate lists for slots.
type Resolver interface {
	Assign(ctx context.Context, req AssignRequest) (*Resolution, error)
	ResolveTrackDrag(ctx context.Context, req TrackDragRequest) (*Resolution, error)
}
