package order

import "errors"

var (
	ErrOrderNotFound       = errors.New("order not found")
	ErrInvalidStatus       = errors.New("invalid order status")
	ErrInvalidTransition   = errors.New("invalid status transition")
	ErrAssignRequiresRider = errors.New("orders are assigned by dispatch only")
	ErrOrderNotPending     = errors.New("order is no longer pending")
	ErrStatusChanged       = errors.New("order status changed concurrently")
	ErrInvalidCustomer     = errors.New("invalid customer reference")
	ErrInvalidCost         = errors.New("delivery cost must not be negative")
)
