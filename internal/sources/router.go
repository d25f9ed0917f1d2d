package sources

import (
	"context"
	"fmt"

	"github.com/jaki95/set-workshop/internal/domain"
)

// TracklistImporter scrapes a tracklist page into candidate tracks.
type TracklistImporter interface {
	Import(url string) ([]*domain.TrackOption, error)
}

// Router dispatches tracklist sources to a local importer and everything
// else to the remote catalog resolver.
type Router struct {
	remote   Resolver
	importer TracklistImporter
	capacity int
}

// NewRouter wraps remote with tracklist-URL handling. capacity bounds
// the candidate list handed back for scraped sources.
func NewRouter(remote Resolver, importer TracklistImporter, capacity int) *Router {
	return &Router{remote: remote, importer: importer, capacity: capacity}
}

// Assign implements Resolver.
func (r *Router) Assign(ctx context.Context, req AssignRequest) (*Resolution, error) {
	if req.SourceType != domain.SourceTracklist || r.importer == nil {
		return r.remote.Assign(ctx, req)
	}

	tracks, err := r.importer.Import(req.SourceID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrResolveFailed, err)
	}

	picked := pickCandidates(tracks, req.UsedTrackIDs, 0, r.capacity)
	return &Resolution{
		Source: &domain.SlotSource{
			Type:       domain.SourceTracklist,
			ID:         req.SourceID,
			Name:       req.SourceID,
			TrackCount: len(tracks),
		},
		Tracks: picked,
	}, nil
}

// ResolveTrackDrag implements Resolver.
func (r *Router) ResolveTrackDrag(ctx context.Context, req TrackDragRequest) (*Resolution, error) {
	if req.SourceType != domain.SourceTracklist || r.importer == nil {
		return r.remote.ResolveTrackDrag(ctx, req)
	}

	tracks, err := r.importer.Import(req.SourceID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrResolveFailed, err)
	}

	picked := pickCandidates(tracks, req.UsedTrackIDs, req.TrackID, r.capacity)
	return &Resolution{
		Source: &domain.SlotSource{
			Type:       domain.SourceTracklist,
			ID:         req.SourceID,
			Name:       req.Name,
			TrackCount: len(tracks),
		},
		Tracks: picked,
	}, nil
}

// pickCandidates fills up to capacity entries, always including the
// wanted track id first if present, then unused tracks, then whatever is
// left. Used ids only bias the ordering, they are not a hard exclusion.
func pickCandidates(tracks []*domain.TrackOption, usedIDs []int64, wantID int64, capacity int) []*domain.TrackOption {
	if capacity <= 0 {
		capacity = len(tracks)
	}
	used := make(map[int64]bool, len(usedIDs))
	for _, id := range usedIDs {
		used[id] = true
	}

	picked := make([]*domain.TrackOption, 0, capacity)
	taken := make(map[int64]bool)
	take := func(t *domain.TrackOption) {
		if len(picked) < capacity && !taken[t.ID] {
			picked = append(picked, t)
			taken[t.ID] = true
		}
	}

	if wantID != 0 {
		for _, t := range tracks {
			if t != nil && t.ID == wantID {
				take(t)
				break
			}
		}
	}
	for _, t := range tracks {
		if t != nil && !used[t.ID] {
			take(t)
		}
	}
	for _, t := range tracks {
		if t != nil {
			take(t)
		}
	}
	return picked
}
