package memory

import (
	"context"
	"sort"
	"time"

	"github.com/gocomet/delivery-dispatch/internal/domain/communication"
	"github.com/gocomet/delivery-dispatch/internal/domain/delivery"
	"github.com/gocomet/delivery-dispatch/internal/domain/order"
	"github.com/gocomet/delivery-dispatch/internal/domain/rider"
	"github.com/google/uuid"
)

type riderRepo struct{ v *view }

func (r riderRepo) List(ctx context.Context) ([]*rider.Rider, error) {
	defer r.v.lock()()
	return sortedRiders(r.v.data(), nil), ctx.Err()
}

func (r riderRepo) ListAvailable(ctx context.Context) ([]*rider.Rider, error) {
	defer r.v.lock()()
	d := r.v.data()
	return sortedRiders(d, func(x *rider.Rider) bool {
		return x.Status == rider.StatusActive && !hasActiveAssignment(d, x.ID)
	}), ctx.Err()
}

func (r riderRepo) GetByID(ctx context.Context, id uuid.UUID) (*rider.Rider, error) {
	defer r.v.lock()()
	d := r.v.data()
	row, ok := d.riders[id]
	if !ok {
		return nil, rider.ErrRiderNotFound
	}
	return withRating(d, row.rider), ctx.Err()
}

func (r riderRepo) Create(ctx context.Context, x *rider.Rider) error {
	defer r.v.lock()()
	d := r.v.data()
	stored := *x
	stored.Rating, stored.RatingCount = nil, 0
	d.riders[x.ID] = &riderRow{seq: d.next(), rider: stored}
	return ctx.Err()
}

func (r riderRepo) Update(ctx context.Context, x *rider.Rider) error {
	defer r.v.lock()()
	row, ok := r.v.data().riders[x.ID]
	if !ok {
		return rider.ErrRiderNotFound
	}
	row.rider.Name = x.Name
	row.rider.Email = x.Email
	row.rider.Phone = x.Phone
	row.rider.Status = x.Status
	row.rider.UpdatedAt = x.UpdatedAt
	return ctx.Err()
}

func (r riderRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status rider.Status) error {
	defer r.v.lock()()
	row, ok := r.v.data().riders[id]
	if !ok {
		return rider.ErrRiderNotFound
	}
	row.rider.Status = status
	row.rider.UpdatedAt = time.Now().UTC()
	return ctx.Err()
}

func (r riderRepo) Delete(ctx context.Context, id uuid.UUID) error {
	defer r.v.lock()()
	d := r.v.data()
	if _, ok := d.riders[id]; !ok {
		return rider.ErrRiderNotFound
	}
	delete(d.riders, id)

	kept := d.ratings[:0]
	for _, rt := range d.ratings {
		if rt.RiderID != id {
			kept = append(kept, rt)
		}
	}
	d.ratings = kept

	// matches ON DELETE SET NULL on the orders table
	for _, row := range d.orders {
		if row.order.RiderID != nil && *row.order.RiderID == id {
			row.order.RiderID = nil
		}
	}
	return ctx.Err()
}

type ratingRepo struct{ v *view }

func (r ratingRepo) Create(ctx context.Context, rt *rider.Rating) error {
	defer r.v.lock()()
	d := r.v.data()
	if _, ok := d.riders[rt.RiderID]; !ok {
		return rider.ErrRiderNotFound
	}
	d.ratings = append(d.ratings, *rt)
	return ctx.Err()
}

func (r ratingRepo) ListByRider(ctx context.Context, riderID uuid.UUID) ([]*rider.Rating, error) {
	defer r.v.lock()()
	var out []*rider.Rating
	for _, rt := range r.v.data().ratings {
		if rt.RiderID == riderID {
			cp := rt
			out = append(out, &cp)
		}
	}
	return out, ctx.Err()
}

func (r ratingRepo) Average(ctx context.Context) (*float64, error) {
	defer r.v.lock()()
	ratings := r.v.data().ratings
	if len(ratings) == 0 {
		return nil, ctx.Err()
	}
	var sum int
	for _, rt := range ratings {
		sum += rt.Score
	}
	avg := float64(sum) / float64(len(ratings))
	return &avg, ctx.Err()
}

type orderRepo struct{ v *view }

func copyOrder(o order.Order) *order.Order {
	cp := o
	if o.RiderID != nil {
		id := *o.RiderID
		cp.RiderID = &id
	}
	cp.AssignedAt = copyTime(o.AssignedAt)
	cp.DeliveredAt = copyTime(o.DeliveredAt)
	cp.CancelledAt = copyTime(o.CancelledAt)
	return &cp
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}

func (r orderRepo) Create(ctx context.Context, o *order.Order) error {
	defer r.v.lock()()
	d := r.v.data()
	d.orders[o.ID] = &orderRow{seq: d.next(), order: *copyOrder(*o)}
	return ctx.Err()
}

func (r orderRepo) GetByID(ctx context.Context, id uuid.UUID) (*order.Order, error) {
	defer r.v.lock()()
	row, ok := r.v.data().orders[id]
	if !ok {
		return nil, order.ErrOrderNotFound
	}
	return copyOrder(row.order), ctx.Err()
}

func (r orderRepo) ListPending(ctx context.Context) ([]*order.Order, error) {
	defer r.v.lock()()
	var rows []*orderRow
	for _, row := range r.v.data().orders {
		if row.order.Status == order.StatusPending {
			rows = append(rows, row)
		}
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].seq < rows[j].seq })

	out := make([]*order.Order, len(rows))
	for i, row := range rows {
		out[i] = copyOrder(row.order)
	}
	return out, ctx.Err()
}

func (r orderRepo) AssignRider(ctx context.Context, orderID, riderID uuid.UUID, at time.Time) error {
	defer r.v.lock()()
	if err := ctx.Err(); err != nil {
		return err
	}
	d := r.v.data()

	row, ok := d.orders[orderID]
	if !ok {
		return order.ErrOrderNotFound
	}
	if row.order.Status != order.StatusPending {
		return order.ErrOrderNotPending
	}
	rr, ok := d.riders[riderID]
	if !ok || rr.rider.Status != rider.StatusActive || hasActiveAssignment(d, riderID) {
		return rider.ErrRiderNotAvailable
	}
	return row.order.Assign(riderID, at)
}

func (r orderRepo) UpdateStatus(ctx context.Context, id uuid.UUID, from, to order.Status, at time.Time) error {
	defer r.v.lock()()
	if err := ctx.Err(); err != nil {
		return err
	}
	row, ok := r.v.data().orders[id]
	if !ok {
		return order.ErrOrderNotFound
	}
	if row.order.Status != from {
		return order.ErrStatusChanged
	}
	row.order.Status = to
	row.order.UpdatedAt = at
	switch to {
	case order.StatusDelivered:
		row.order.DeliveredAt = copyTime(&at)
	case order.StatusCancelled:
		row.order.CancelledAt = copyTime(&at)
	}
	return nil
}

func (r orderRepo) HasActiveAssignment(ctx context.Context, riderID uuid.UUID) (bool, error) {
	defer r.v.lock()()
	return hasActiveAssignment(r.v.data(), riderID), ctx.Err()
}

type deliveryRepo struct{ v *view }

func (r deliveryRepo) Create(ctx context.Context, dl *delivery.Delivery) error {
	defer r.v.lock()()
	d := r.v.data()
	d.deliveries = append(d.deliveries, *dl)
	return ctx.Err()
}

func (r deliveryRepo) Count(ctx context.Context) (int64, error) {
	defer r.v.lock()()
	return int64(len(r.v.data().deliveries)), ctx.Err()
}

func (r deliveryRepo) AverageDuration(ctx context.Context) (*float64, error) {
	defer r.v.lock()()
	rows := r.v.data().deliveries
	if len(rows) == 0 {
		return nil, ctx.Err()
	}
	var sum float64
	for _, dl := range rows {
		sum += dl.DurationSeconds
	}
	avg := sum / float64(len(rows))
	return &avg, ctx.Err()
}

func (r deliveryRepo) TotalCost(ctx context.Context) (float64, error) {
	defer r.v.lock()()
	var sum float64
	for _, dl := range r.v.data().deliveries {
		sum += dl.Cost
	}
	return sum, ctx.Err()
}

type communicationRepo struct{ v *view }

func (r communicationRepo) Create(ctx context.Context, c *communication.Communication) error {
	defer r.v.lock()()
	d := r.v.data()
	d.communications = append(d.communications, *c)
	return ctx.Err()
}

func (r communicationRepo) ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]*communication.Communication, error) {
	defer r.v.lock()()
	var out []*communication.Communication
	for _, c := range r.v.data().communications {
		if c.CustomerID == customerID {
			cp := c
			out = append(out, &cp)
		}
	}
	return out, ctx.Err()
}
