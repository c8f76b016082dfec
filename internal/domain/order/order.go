package order

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Status represents the lifecycle state of an order
//
//	pending ──> assigned ──> delivered
//	   │           │
//	   └───────────┴──> cancelled
type Status string

const (
	StatusPending   Status = "pending"
	StatusAssigned  Status = "assigned"
	StatusDelivered Status = "delivered"
	StatusCancelled Status = "cancelled"
)

// transitions lists every allowed edge. Terminal states have none.
var transitions = map[Status][]Status{
	StatusPending:  {StatusAssigned, StatusCancelled},
	StatusAssigned: {StatusDelivered, StatusCancelled},
}

// IsValid validates the status
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusAssigned, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}

// IsTerminal reports whether no transition leaves s
func (s Status) IsTerminal() bool {
	return s == StatusDelivered || s == StatusCancelled
}

// CanTransitionTo reports whether s -> next is an edge of the state machine
func (s Status) CanTransitionTo(next Status) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// ValidateTransition returns ErrInvalidTransition for edges outside the table
func (s Status) ValidateTransition(next Status) error {
	if !next.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, next)
	}
	if !s.CanTransitionTo(next) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, s, next)
	}
	return nil
}

// Order represents a delivery order
type Order struct {
	ID           uuid.UUID  `json:"id"`
	CustomerID   uuid.UUID  `json:"customer_id"`
	RiderID      *uuid.UUID `json:"rider_id,omitempty"`
	Status       Status     `json:"status"`
	DeliveryCost float64    `json:"delivery_cost"`
	CreatedAt    time.Time  `json:"created_at"`
	AssignedAt   *time.Time `json:"assigned_at,omitempty"`
	DeliveredAt  *time.Time `json:"delivered_at,omitempty"`
	CancelledAt  *time.Time `json:"cancelled_at,omitempty"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// New builds a pending order
func New(customerID uuid.UUID, deliveryCost float64, now time.Time) (*Order, error) {
	if customerID == uuid.Nil {
		return nil, ErrInvalidCustomer
	}
	if deliveryCost < 0 {
		return nil, ErrInvalidCost
	}
	return &Order{
		ID:           uuid.New(),
		CustomerID:   customerID,
		Status:       StatusPending,
		DeliveryCost: deliveryCost,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// Assign binds the order to a rider and moves it to assigned in one step
func (o *Order) Assign(riderID uuid.UUID, now time.Time) error {
	if err := o.Status.ValidateTransition(StatusAssigned); err != nil {
		return err
	}
	o.RiderID = &riderID
	o.Status = StatusAssigned
	o.AssignedAt = &now
	o.UpdatedAt = now
	return nil
}

// MoveTo applies a non-assigning transition and stamps its timestamp
func (o *Order) MoveTo(next Status, now time.Time) error {
	if next == StatusAssigned {
		return ErrAssignRequiresRider
	}
	if err := o.Status.ValidateTransition(next); err != nil {
		return err
	}
	o.Status = next
	o.UpdatedAt = now
	switch next {
	case StatusDelivered:
		o.DeliveredAt = &now
	case StatusCancelled:
		o.CancelledAt = &now
	}
	return nil
}
