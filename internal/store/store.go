// Package store defines the persistence boundary shared by every service.
// A Store is opened once at startup, handed to the services that need it and
// closed at shutdown.
package store

import (
	"context"

	"github.com/gocomet/delivery-dispatch/internal/domain/communication"
	"github.com/gocomet/delivery-dispatch/internal/domain/delivery"
	"github.com/gocomet/delivery-dispatch/internal/domain/order"
	"github.com/gocomet/delivery-dispatch/internal/domain/rider"
)

// Store groups the repositories and the transaction boundary
type Store interface {
	Riders() rider.Repository
	Ratings() rider.RatingRepository
	Orders() order.Repository
	Deliveries() delivery.Repository
	Communications() communication.Repository

	// WithinTx runs fn against a transactional view of the store. The work is
	// committed if fn returns nil and rolled back otherwise. Calling WithinTx
	// on a transactional view runs fn in the same transaction.
	WithinTx(ctx context.Context, fn func(tx Store) error) error

	Ping(ctx context.Context) error
	Close() error
}
