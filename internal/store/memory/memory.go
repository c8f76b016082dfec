// Package memory is an in-process Store. Transactions take the store lock,
// work on a copy of the data and swap it in on commit.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/gocomet/delivery-dispatch/internal/domain/communication"
	"github.com/gocomet/delivery-dispatch/internal/domain/delivery"
	"github.com/gocomet/delivery-dispatch/internal/domain/order"
	"github.com/gocomet/delivery-dispatch/internal/domain/rider"
	"github.com/gocomet/delivery-dispatch/internal/store"
	"github.com/google/uuid"
)

type riderRow struct {
	seq   int64
	rider rider.Rider
}

type orderRow struct {
	seq   int64
	order order.Order
}

type data struct {
	seq            int64
	riders         map[uuid.UUID]*riderRow
	orders         map[uuid.UUID]*orderRow
	ratings        []rider.Rating
	deliveries     []delivery.Delivery
	communications []communication.Communication
}

func newData() *data {
	return &data{
		riders: make(map[uuid.UUID]*riderRow),
		orders: make(map[uuid.UUID]*orderRow),
	}
}

func (d *data) next() int64 {
	d.seq++
	return d.seq
}

func (d *data) clone() *data {
	c := &data{
		seq:            d.seq,
		riders:         make(map[uuid.UUID]*riderRow, len(d.riders)),
		orders:         make(map[uuid.UUID]*orderRow, len(d.orders)),
		ratings:        append([]rider.Rating(nil), d.ratings...),
		deliveries:     append([]delivery.Delivery(nil), d.deliveries...),
		communications: append([]communication.Communication(nil), d.communications...),
	}
	for id, row := range d.riders {
		cp := *row
		c.riders[id] = &cp
	}
	for id, row := range d.orders {
		cp := *row
		c.orders[id] = &cp
	}
	return c
}

// Store is the in-memory store.Store implementation
type Store struct {
	mu sync.Mutex
	d  *data
}

var _ store.Store = (*Store)(nil)

func New() *Store {
	return &Store{d: newData()}
}

func (s *Store) view() *view {
	return &view{
		data: func() *data { return s.d },
		lock: func() func() {
			s.mu.Lock()
			return s.mu.Unlock
		},
	}
}

func (s *Store) Riders() rider.Repository                 { return riderRepo{s.view()} }
func (s *Store) Ratings() rider.RatingRepository          { return ratingRepo{s.view()} }
func (s *Store) Orders() order.Repository                 { return orderRepo{s.view()} }
func (s *Store) Deliveries() delivery.Repository          { return deliveryRepo{s.view()} }
func (s *Store) Communications() communication.Repository { return communicationRepo{s.view()} }

func (s *Store) WithinTx(ctx context.Context, fn func(tx store.Store) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	working := s.d.clone()
	if err := fn(&txStore{d: working}); err != nil {
		return err
	}
	s.d = working
	return nil
}

func (s *Store) Ping(ctx context.Context) error { return ctx.Err() }
func (s *Store) Close() error                   { return nil }

// txStore runs with the parent lock already held
type txStore struct {
	d *data
}

func (t *txStore) view() *view {
	return &view{
		data: func() *data { return t.d },
		lock: func() func() { return func() {} },
	}
}

func (t *txStore) Riders() rider.Repository                 { return riderRepo{t.view()} }
func (t *txStore) Ratings() rider.RatingRepository          { return ratingRepo{t.view()} }
func (t *txStore) Orders() order.Repository                 { return orderRepo{t.view()} }
func (t *txStore) Deliveries() delivery.Repository          { return deliveryRepo{t.view()} }
func (t *txStore) Communications() communication.Repository { return communicationRepo{t.view()} }

func (t *txStore) WithinTx(ctx context.Context, fn func(tx store.Store) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return fn(t)
}

func (t *txStore) Ping(ctx context.Context) error { return ctx.Err() }
func (t *txStore) Close() error                   { return nil }

type view struct {
	data func() *data
	lock func() (unlock func())
}

// sortedRiders returns copies in creation order
func sortedRiders(d *data, keep func(*rider.Rider) bool) []*rider.Rider {
	rows := make([]*riderRow, 0, len(d.riders))
	for _, row := range d.riders {
		if keep == nil || keep(&row.rider) {
			rows = append(rows, row)
		}
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].seq < rows[j].seq })

	out := make([]*rider.Rider, len(rows))
	for i, row := range rows {
		out[i] = withRating(d, row.rider)
	}
	return out
}

func withRating(d *data, r rider.Rider) *rider.Rider {
	var sum, n int
	for _, rt := range d.ratings {
		if rt.RiderID == r.ID {
			sum += rt.Score
			n++
		}
	}
	r.RatingCount = n
	r.Rating = nil
	if n > 0 {
		avg := float64(sum) / float64(n)
		r.Rating = &avg
	}
	return &r
}

func hasActiveAssignment(d *data, riderID uuid.UUID) bool {
	for _, row := range d.orders {
		if row.order.Status == order.StatusAssigned && row.order.RiderID != nil && *row.order.RiderID == riderID {
			return true
		}
	}
	return false
}
