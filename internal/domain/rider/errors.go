package rider

import "errors"

var (
	ErrRiderNotFound      = errors.New("rider not found")
	ErrInvalidRiderName   = errors.New("invalid rider name")
	ErrInvalidRiderEmail  = errors.New("invalid rider email")
	ErrMissingContact     = errors.New("rider needs an email or a phone")
	ErrInvalidRiderStatus = errors.New("invalid rider status")
	ErrRiderNotAvailable  = errors.New("rider is not available")
	ErrRiderHasActiveWork = errors.New("rider holds an active assignment")
	ErrScoreOutOfRange    = errors.New("rating score out of range")
)
