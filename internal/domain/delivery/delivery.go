package delivery

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var ErrMissingAssignment = errors.New("order has no assignment to measure")

// Delivery is the historical record written when an order is delivered
type Delivery struct {
	ID              uuid.UUID `json:"id"`
	OrderID         uuid.UUID `json:"order_id"`
	RiderID         uuid.UUID `json:"rider_id"`
	DurationSeconds float64   `json:"duration_seconds"`
	Cost            float64   `json:"cost"`
	DeliveredAt     time.Time `json:"delivered_at"`
}

// New measures a delivery from assignment to hand-over
func New(orderID uuid.UUID, riderID *uuid.UUID, assignedAt *time.Time, cost float64, deliveredAt time.Time) (*Delivery, error) {
	if riderID == nil || assignedAt == nil {
		return nil, ErrMissingAssignment
	}
	d := deliveredAt.Sub(*assignedAt).Seconds()
	if d < 0 {
		d = 0
	}
	return &Delivery{
		ID:              uuid.New(),
		OrderID:         orderID,
		RiderID:         *riderID,
		DurationSeconds: d,
		Cost:            cost,
		DeliveredAt:     deliveredAt,
	}, nil
}

// Repository defines delivery history storage and its aggregates
type Repository interface {
	Create(ctx context.Context, d *Delivery) error
	Count(ctx context.Context) (int64, error)
	// AverageDuration is in seconds, nil over an empty history
	AverageDuration(ctx context.Context) (*float64, error)
	// TotalCost is zero over an empty history
	TotalCost(ctx context.Context) (float64, error)
}
