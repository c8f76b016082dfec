package communication

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

const MaxMessageLength = 2000

var (
	ErrEmptyMessage    = errors.New("message is empty")
	ErrMessageTooLong  = errors.New("message is too long")
	ErrInvalidCustomer = errors.New("invalid customer reference")
)

// Communication is a message sent to a customer
type Communication struct {
	ID         uuid.UUID `json:"id"`
	CustomerID uuid.UUID `json:"customer_id"`
	Message    string    `json:"message"`
	CreatedAt  time.Time `json:"created_at"`
}

func New(customerID uuid.UUID, message string, now time.Time) (*Communication, error) {
	message = strings.TrimSpace(message)
	switch {
	case customerID == uuid.Nil:
		return nil, ErrInvalidCustomer
	case message == "":
		return nil, ErrEmptyMessage
	case len(message) > MaxMessageLength:
		return nil, ErrMessageTooLong
	}
	return &Communication{
		ID:         uuid.New(),
		CustomerID: customerID,
		Message:    message,
		CreatedAt:  now,
	}, nil
}

// Repository defines communication storage
type Repository interface {
	Create(ctx context.Context, c *Communication) error
	// ListByCustomer returns the customer's messages, oldest first
	ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]*Communication, error)
}
