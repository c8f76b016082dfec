package order

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Repository defines the interface for order data access
type Repository interface {
	Create(ctx context.Context, order *Order) error

	// GetByID retrieves an order, ErrOrderNotFound if absent
	GetByID(ctx context.Context, id uuid.UUID) (*Order, error)

	// ListPending retrieves pending orders in creation order
	ListPending(ctx context.Context) ([]*Order, error)

	// AssignRider sets the rider and moves the order to assigned in a single
	// conditional write. Fails with ErrOrderNotFound, ErrOrderNotPending, or
	// rider.ErrRiderNotAvailable when the rider is inactive, unknown or
	// already holds an assigned order.
	AssignRider(ctx context.Context, orderID, riderID uuid.UUID, at time.Time) error

	// UpdateStatus moves the order from -> to only if it is still in from.
	// Fails with ErrOrderNotFound or ErrStatusChanged.
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to Status, at time.Time) error

	// HasActiveAssignment reports whether the rider holds an assigned order
	HasActiveAssignment(ctx context.Context, riderID uuid.UUID) (bool, error)
}
