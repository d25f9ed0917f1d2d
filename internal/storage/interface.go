package storage

import (
	"context"
	"errors"
	"time"

	"github.com/jaki95/set-workshop/internal/domain"
)

var ErrNotFound = errors.New("not found")

// SavedSet is a durably committed workshop snapshot.
type SavedSet struct {
	ID        string                `json:"id"`
	Name      string                `json:"name"`
	State     *domain.WorkshopState `json:"state"`
	CreatedAt time.Time             `json:"createdAt"`
	UpdatedAt time.Time             `json:"updatedAt"`
}

// Store is the persistence interface for the workshop: the auto-saved
// working snapshot, saved-set CRUD and phase profiles.
type Store interface {
	// SaveWorkshop overwrites the single auto-saved working snapshot.
	SaveWorkshop(ctx context.Context, state *domain.WorkshopState) error
	// LoadWorkshop returns the last saved snapshot, or nil when none exists.
	LoadWorkshop(ctx context.Context) (*domain.WorkshopState, error)

	CreateSet(ctx context.Context, name string, state *domain.WorkshopState) (*SavedSet, error)
	UpdateSet(ctx context.Context, id, name string, state *domain.WorkshopState) error
	GetSet(ctx context.Context, id string) (*SavedSet, error)
	ListSets(ctx context.Context) ([]*SavedSet, error)
	DeleteSet(ctx context.Context, id string) error

	CreateProfile(ctx context.Context, profile *domain.PhaseProfile) error
	GetProfile(ctx context.Context, id string) (*domain.PhaseProfile, error)
	ListProfiles(ctx context.Context) ([]*domain.PhaseProfile, error)
	UpdateProfile(ctx context.Context, profile *domain.PhaseProfile) error
	DeleteProfile(ctx context.Context, id string) error

	Close() error
}
