package rider

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines the interface for rider data access.
// Lists are returned in creation order.
type Repository interface {
	// List retrieves every rider
	List(ctx context.Context) ([]*Rider, error)

	// ListAvailable retrieves active riders that hold no assigned order
	ListAvailable(ctx context.Context) ([]*Rider, error)

	// GetByID retrieves a rider, ErrRiderNotFound if absent
	GetByID(ctx context.Context, id uuid.UUID) (*Rider, error)

	Create(ctx context.Context, rider *Rider) error

	// Update replaces the mutable fields, ErrRiderNotFound if absent
	Update(ctx context.Context, rider *Rider) error

	UpdateStatus(ctx context.Context, id uuid.UUID, status Status) error

	// Delete removes the rider and its ratings, ErrRiderNotFound if absent
	Delete(ctx context.Context, id uuid.UUID) error
}

// RatingRepository defines the interface for rating data access
type RatingRepository interface {
	// Create stores a rating, ErrRiderNotFound if the rider is unknown
	Create(ctx context.Context, rating *Rating) error

	ListByRider(ctx context.Context, riderID uuid.UUID) ([]*Rating, error)

	// Average is the mean score over all ratings, nil when there are none
	Average(ctx context.Context) (*float64, error)
}
