// Package directory manages riders and their ratings.
package directory

import (
	"context"
	"errors"
	"time"

	"github.com/gocomet/delivery-dispatch/internal/domain/rider"
	"github.com/gocomet/delivery-dispatch/internal/store"
	apperrors "github.com/gocomet/delivery-dispatch/pkg/errors"
	"github.com/gocomet/delivery-dispatch/pkg/logger"
	"github.com/gocomet/delivery-dispatch/pkg/metrics"
	"github.com/google/uuid"
)

// Service handles rider directory operations
type Service struct {
	store   store.Store
	logger  *logger.Logger
	metrics *metrics.Metrics
	scores  rider.ScoreRange
	now     func() time.Time
}

// NewService creates a new directory service
func NewService(st store.Store, log *logger.Logger, m *metrics.Metrics, scores rider.ScoreRange) *Service {
	return &Service{
		store:   st,
		logger:  log.Named("directory"),
		metrics: m,
		scores:  scores,
		now:     time.Now,
	}
}

// CreateInput carries the fields of a new rider
type CreateInput struct {
	Name  string
	Email string
	Phone string
}

// RatingSummary is a rider's ratings with the aggregate over them
type RatingSummary struct {
	RiderID uuid.UUID       `json:"rider_id"`
	Average *float64        `json:"average"`
	Count   int             `json:"count"`
	Ratings []*rider.Rating `json:"ratings"`
}

func (s *Service) List(ctx context.Context) ([]*rider.Rider, error) {
	riders, err := s.store.Riders().List(ctx)
	if err != nil {
		return nil, apperrors.Internal("Failed to list riders", err)
	}
	if riders == nil {
		riders = []*rider.Rider{}
	}
	return riders, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*rider.Rider, error) {
	r, err := s.store.Riders().GetByID(ctx, id)
	if err != nil {
		return nil, riderError(err, "Failed to get rider")
	}
	return r, nil
}

// Create registers an active rider and returns it with its new ID
func (s *Service) Create(ctx context.Context, in CreateInput) (*rider.Rider, error) {
	r, err := rider.New(in.Name, in.Email, in.Phone, s.now().UTC())
	if err != nil {
		return nil, apperrors.Validation(err.Error(), err)
	}
	if err := s.store.Riders().Create(ctx, r); err != nil {
		return nil, apperrors.Internal("Failed to create rider", err)
	}

	s.logger.Info("Rider created", logger.Stringer("rider_id", r.ID))
	return r, nil
}

// Update applies a partial update; nil fields keep their value
func (s *Service) Update(ctx context.Context, id uuid.UUID, patch rider.Patch) (*rider.Rider, error) {
	if patch.Status != nil && !patch.Status.IsValid() {
		return nil, apperrors.Validation("Invalid rider status", rider.ErrInvalidRiderStatus)
	}

	var updated *rider.Rider
	err := s.store.WithinTx(ctx, func(tx store.Store) error {
		r, err := tx.Riders().GetByID(ctx, id)
		if err != nil {
			return err
		}
		if err := r.Apply(patch, s.now().UTC()); err != nil {
			return apperrors.Validation(err.Error(), err)
		}
		if err := tx.Riders().Update(ctx, r); err != nil {
			return err
		}
		updated = r
		return nil
	})
	if err != nil {
		return nil, riderError(err, "Failed to update rider")
	}
	return updated, nil
}

// Delete removes a rider. A rider holding an assigned order cannot be
// deleted until that order is delivered or cancelled.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	err := s.store.WithinTx(ctx, func(tx store.Store) error {
		if _, err := tx.Riders().GetByID(ctx, id); err != nil {
			return err
		}
		busy, err := tx.Orders().HasActiveAssignment(ctx, id)
		if err != nil {
			return err
		}
		if busy {
			return rider.ErrRiderHasActiveWork
		}
		return tx.Riders().Delete(ctx, id)
	})
	if err != nil {
		return riderError(err, "Failed to delete rider")
	}

	s.logger.Info("Rider deleted", logger.Stringer("rider_id", id))
	return nil
}

// SetStatus activates or deactivates a rider. Deactivating a rider does not
// touch an order already assigned to it.
func (s *Service) SetStatus(ctx context.Context, id uuid.UUID, status rider.Status) error {
	if !status.IsValid() {
		return apperrors.Validation("Invalid rider status", rider.ErrInvalidRiderStatus)
	}
	if err := s.store.Riders().UpdateStatus(ctx, id, status); err != nil {
		return riderError(err, "Failed to update rider status")
	}

	s.logger.Info("Rider status changed",
		logger.Stringer("rider_id", id),
		logger.String("status", string(status)),
	)
	return nil
}

// AddRating records a score for a rider. Nothing is stored when the score is
// out of range or the rider is unknown.
func (s *Service) AddRating(ctx context.Context, riderID uuid.UUID, score int, feedback string) (*rider.Rating, error) {
	rt, err := rider.NewRating(riderID, score, feedback, s.scores, s.now().UTC())
	if err != nil {
		s.metrics.ObserveRating("rejected")
		return nil, apperrors.Validation(err.Error(), err)
	}

	if err := s.store.Ratings().Create(ctx, rt); err != nil {
		s.metrics.ObserveRating("rejected")
		return nil, riderError(err, "Failed to add rating")
	}

	s.metrics.ObserveRating("accepted")
	s.logger.Info("Rating added",
		logger.Stringer("rider_id", riderID),
		logger.Int("score", score),
	)
	return rt, nil
}

func (s *Service) ListRatings(ctx context.Context, riderID uuid.UUID) (*RatingSummary, error) {
	r, err := s.store.Riders().GetByID(ctx, riderID)
	if err != nil {
		return nil, riderError(err, "Failed to get rider")
	}
	ratings, err := s.store.Ratings().ListByRider(ctx, riderID)
	if err != nil {
		return nil, apperrors.Internal("Failed to list ratings", err)
	}
	if ratings == nil {
		ratings = []*rider.Rating{}
	}
	return &RatingSummary{
		RiderID: riderID,
		Average: r.Rating,
		Count:   len(ratings),
		Ratings: ratings,
	}, nil
}

// riderError maps store and domain errors onto API errors
func riderError(err error, message string) error {
	switch {
	case apperrors.IsAppError(err):
		return err
	case errors.Is(err, rider.ErrRiderNotFound):
		return apperrors.NotFound("Rider not found", err)
	case errors.Is(err, rider.ErrRiderHasActiveWork):
		return apperrors.Conflict("Rider holds an assigned order", err)
	default:
		return apperrors.Internal(message, err)
	}
}
