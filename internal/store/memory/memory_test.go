package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/gocomet/delivery-dispatch/internal/domain/delivery"
	"github.com/gocomet/delivery-dispatch/internal/domain/order"
	"github.com/gocomet/delivery-dispatch/internal/domain/rider"
	"github.com/gocomet/delivery-dispatch/internal/store"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC)

func seedRider(t *testing.T, s *Store, name string) *rider.Rider {
	t.Helper()
	r, err := rider.New(name, name+"@example.com", "", now)
	require.NoError(t, err)
	require.NoError(t, s.Riders().Create(context.Background(), r))
	return r
}

func seedOrder(t *testing.T, s *Store) *order.Order {
	t.Helper()
	o, err := order.New(uuid.New(), 5, now)
	require.NoError(t, err)
	require.NoError(t, s.Orders().Create(context.Background(), o))
	return o
}

func TestRiders_CreationOrderAndRating(t *testing.T) {
	ctx := context.Background()
	s := New()
	a := seedRider(t, s, "a")
	b := seedRider(t, s, "b")
	c := seedRider(t, s, "c")

	list, err := s.Riders().List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, []uuid.UUID{a.ID, b.ID, c.ID}, []uuid.UUID{list[0].ID, list[1].ID, list[2].ID})

	for _, score := range []int{4, 5} {
		rt, _ := rider.NewRating(b.ID, score, "", rider.DefaultScoreRange, now)
		require.NoError(t, s.Ratings().Create(ctx, rt))
	}

	got, err := s.Riders().GetByID(ctx, b.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Rating)
	assert.InDelta(t, 4.5, *got.Rating, 1e-9)
	assert.Equal(t, 2, got.RatingCount)

	_, err = s.Riders().GetByID(ctx, uuid.New())
	assert.ErrorIs(t, err, rider.ErrRiderNotFound)
}

func TestRatings_UnknownRider(t *testing.T) {
	s := New()
	rt, _ := rider.NewRating(uuid.New(), 3, "", rider.DefaultScoreRange, now)
	assert.ErrorIs(t, s.Ratings().Create(context.Background(), rt), rider.ErrRiderNotFound)

	avg, err := s.Ratings().Average(context.Background())
	require.NoError(t, err)
	assert.Nil(t, avg)
}

func TestOrders_AssignRiderConditions(t *testing.T) {
	ctx := context.Background()
	s := New()
	r := seedRider(t, s, "a")
	o1 := seedOrder(t, s)
	o2 := seedOrder(t, s)

	require.NoError(t, s.Orders().AssignRider(ctx, o1.ID, r.ID, now))

	got, err := s.Orders().GetByID(ctx, o1.ID)
	require.NoError(t, err)
	assert.Equal(t, order.StatusAssigned, got.Status)
	assert.Equal(t, r.ID, *got.RiderID)

	assert.ErrorIs(t, s.Orders().AssignRider(ctx, o1.ID, r.ID, now), order.ErrOrderNotPending)
	assert.ErrorIs(t, s.Orders().AssignRider(ctx, o2.ID, r.ID, now), rider.ErrRiderNotAvailable, "rider already busy")
	assert.ErrorIs(t, s.Orders().AssignRider(ctx, uuid.New(), r.ID, now), order.ErrOrderNotFound)

	busy, err := s.Orders().HasActiveAssignment(ctx, r.ID)
	require.NoError(t, err)
	assert.True(t, busy)

	available, err := s.Riders().ListAvailable(ctx)
	require.NoError(t, err)
	assert.Empty(t, available)

	pending, err := s.Orders().ListPending(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, o2.ID, pending[0].ID)
}

func TestOrders_AssignInactiveRider(t *testing.T) {
	ctx := context.Background()
	s := New()
	r := seedRider(t, s, "a")
	o := seedOrder(t, s)
	require.NoError(t, s.Riders().UpdateStatus(ctx, r.ID, rider.StatusInactive))

	assert.ErrorIs(t, s.Orders().AssignRider(ctx, o.ID, r.ID, now), rider.ErrRiderNotAvailable)
}

func TestOrders_UpdateStatusIsCompareAndSwap(t *testing.T) {
	ctx := context.Background()
	s := New()
	o := seedOrder(t, s)

	assert.ErrorIs(t, s.Orders().UpdateStatus(ctx, o.ID, order.StatusAssigned, order.StatusDelivered, now), order.ErrStatusChanged)
	require.NoError(t, s.Orders().UpdateStatus(ctx, o.ID, order.StatusPending, order.StatusCancelled, now))

	got, _ := s.Orders().GetByID(ctx, o.ID)
	assert.Equal(t, order.StatusCancelled, got.Status)
	assert.NotNil(t, got.CancelledAt)

	assert.ErrorIs(t, s.Orders().UpdateStatus(ctx, uuid.New(), order.StatusPending, order.StatusCancelled, now), order.ErrOrderNotFound)
}

func TestWithinTx_RollbackOnError(t *testing.T) {
	ctx := context.Background()
	s := New()
	r := seedRider(t, s, "a")
	boom := errors.New("boom")

	err := s.WithinTx(ctx, func(tx store.Store) error {
		require.NoError(t, tx.Riders().Delete(ctx, r.ID))
		_, err := tx.Riders().GetByID(ctx, r.ID)
		assert.ErrorIs(t, err, rider.ErrRiderNotFound, "tx sees its own writes")
		return boom
	})
	assert.ErrorIs(t, err, boom)

	_, err = s.Riders().GetByID(ctx, r.ID)
	assert.NoError(t, err, "rolled back delete must leave the rider")

	require.NoError(t, s.WithinTx(ctx, func(tx store.Store) error {
		return tx.WithinTx(ctx, func(inner store.Store) error {
			return inner.Riders().Delete(ctx, r.ID)
		})
	}))
	_, err = s.Riders().GetByID(ctx, r.ID)
	assert.ErrorIs(t, err, rider.ErrRiderNotFound)
}

func TestDeliveries_Aggregates(t *testing.T) {
	ctx := context.Background()
	s := New()

	avg, err := s.Deliveries().AverageDuration(ctx)
	require.NoError(t, err)
	assert.Nil(t, avg)

	for _, d := range []delivery.Delivery{
		{ID: uuid.New(), DurationSeconds: 600, Cost: 4},
		{ID: uuid.New(), DurationSeconds: 1200, Cost: 6.5},
	} {
		d := d
		require.NoError(t, s.Deliveries().Create(ctx, &d))
	}

	count, err := s.Deliveries().Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	avg, err = s.Deliveries().AverageDuration(ctx)
	require.NoError(t, err)
	assert.InDelta(t, 900.0, *avg, 1e-9)

	total, err := s.Deliveries().TotalCost(ctx)
	require.NoError(t, err)
	assert.InDelta(t, 10.5, total, 1e-9)
}

func TestRiders_DeleteDetachesOrders(t *testing.T) {
	ctx := context.Background()
	s := New()
	r := seedRider(t, s, "a")
	o := seedOrder(t, s)
	require.NoError(t, s.Orders().AssignRider(ctx, o.ID, r.ID, now))
	require.NoError(t, s.Orders().UpdateStatus(ctx, o.ID, order.StatusAssigned, order.StatusDelivered, now))

	require.NoError(t, s.Riders().Delete(ctx, r.ID))

	got, err := s.Orders().GetByID(ctx, o.ID)
	require.NoError(t, err)
	assert.Nil(t, got.RiderID)
}
