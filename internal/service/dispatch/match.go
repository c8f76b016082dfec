package dispatch

import (
	"github.com/gocomet/delivery-dispatch/internal/domain/order"
	"github.com/gocomet/delivery-dispatch/internal/domain/rider"
	"github.com/google/uuid"
)

// Pair is one proposed order to rider assignment
type Pair struct {
	OrderID uuid.UUID `json:"order_id"`
	RiderID uuid.UUID `json:"rider_id"`
}

// Match pairs orders with riders first-fit: the i-th order, in the given
// order, gets the i-th rider. Surplus orders are returned unmatched and
// surplus riders are ignored.
func Match(orders []*order.Order, riders []*rider.Rider) (pairs []Pair, unmatched []uuid.UUID) {
	pairs = make([]Pair, 0, min(len(orders), len(riders)))
	unmatched = []uuid.UUID{}
	for i, o := range orders {
		if i >= len(riders) {
			unmatched = append(unmatched, o.ID)
			continue
		}
		pairs = append(pairs, Pair{OrderID: o.ID, RiderID: riders[i].ID})
	}
	return pairs, unmatched
}
