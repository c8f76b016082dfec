package rider

import (
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Status represents rider activation status
type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
)

// Rider represents a delivery rider
type Rider struct {
	ID     uuid.UUID `json:"id"`
	Name   string    `json:"name"`
	Email  string    `json:"email"`
	Phone  string    `json:"phone"`
	Status Status    `json:"status"`

	// Rating is the mean of the rider's rating scores, nil while unrated.
	// Derived by the repository on read, never written.
	Rating      *float64 `json:"rating"`
	RatingCount int      `json:"rating_count"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Patch carries a partial rider update; nil fields are left unchanged
type Patch struct {
	Name   *string
	Email  *string
	Phone  *string
	Status *Status
}

// IsValid validates the status
func (s Status) IsValid() bool {
	switch s {
	case StatusActive, StatusInactive:
		return true
	}
	return false
}

// New builds an active rider with a fresh identifier
func New(name, email, phone string, now time.Time) (*Rider, error) {
	r := &Rider{
		ID:        uuid.New(),
		Name:      strings.TrimSpace(name),
		Email:     strings.TrimSpace(email),
		Phone:     strings.TrimSpace(phone),
		Status:    StatusActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := r.IsValid(); err != nil {
		return nil, err
	}
	return r, nil
}

// IsValid validates the rider entity
func (r *Rider) IsValid() error {
	if r.Name == "" {
		return ErrInvalidRiderName
	}
	if r.Email != "" {
		if _, err := mail.ParseAddress(r.Email); err != nil {
			return ErrInvalidRiderEmail
		}
	}
	if r.Email == "" && r.Phone == "" {
		return ErrMissingContact
	}
	if !r.Status.IsValid() {
		return ErrInvalidRiderStatus
	}
	return nil
}

// Apply merges a patch into the rider and validates the result
func (r *Rider) Apply(p Patch, now time.Time) error {
	if p.Name != nil {
		r.Name = strings.TrimSpace(*p.Name)
	}
	if p.Email != nil {
		r.Email = strings.TrimSpace(*p.Email)
	}
	if p.Phone != nil {
		r.Phone = strings.TrimSpace(*p.Phone)
	}
	if p.Status != nil {
		r.Status = *p.Status
	}
	if err := r.IsValid(); err != nil {
		return err
	}
	r.UpdatedAt = now
	return nil
}

// CanTakeOrders reports whether the rider may receive new assignments
func (r *Rider) CanTakeOrders() bool {
	return r.Status == StatusActive
}
