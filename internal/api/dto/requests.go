package dto

import (
	"github.com/gocomet/delivery-dispatch/internal/domain/rider"
)

// CreateRiderRequest represents a request to register a rider
type CreateRiderRequest struct {
	Name  string `json:"name" binding:"required"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// ReplaceRiderRequest represents a PUT of the rider's mutable fields
type ReplaceRiderRequest struct {
	Name   string `json:"name" binding:"required"`
	Email  string `json:"email"`
	Phone  string `json:"phone"`
	Status string `json:"status" binding:"omitempty,oneof=active inactive"`
}

// Patch converts the replacement into a full patch. An empty status keeps
// the current one.
func (r ReplaceRiderRequest) Patch() rider.Patch {
	p := rider.Patch{Name: &r.Name, Email: &r.Email, Phone: &r.Phone}
	if r.Status != "" {
		s := rider.Status(r.Status)
		p.Status = &s
	}
	return p
}

// PatchRiderRequest represents a partial rider update
type PatchRiderRequest struct {
	Name   *string `json:"name"`
	Email  *string `json:"email"`
	Phone  *string `json:"phone"`
	Status *string `json:"status"`
}

func (r PatchRiderRequest) Patch() rider.Patch {
	p := rider.Patch{Name: r.Name, Email: r.Email, Phone: r.Phone}
	if r.Status != nil {
		s := rider.Status(*r.Status)
		p.Status = &s
	}
	return p
}

// UpdateRiderStatusRequest represents a rider activation change
type UpdateRiderStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// AddRatingRequest represents a rating left for a rider. Range checks happen
// in the service against the configured score range.
type AddRatingRequest struct {
	Score    *int   `json:"score" binding:"required"`
	Feedback string `json:"feedback"`
}

// UpdateOrderStatusRequest represents an order status change
type UpdateOrderStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// SendMessageRequest represents a message to a customer
type SendMessageRequest struct {
	CustomerID string `json:"customer_id" binding:"required,uuid"`
	Message    string `json:"message" binding:"required"`
}
