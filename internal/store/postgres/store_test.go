package postgres

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gocomet/delivery-dispatch/internal/domain/order"
	"github.com/gocomet/delivery-dispatch/internal/domain/rider"
	"github.com/gocomet/delivery-dispatch/internal/store"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC)

func newMock(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return New(db), mock
}

var riderRowColumns = []string{"id", "name", "email", "phone", "status", "created_at", "updated_at", "avg", "count"}

func TestRiders_GetByID(t *testing.T) {
	s, mock := newMock(t)
	id := uuid.New()

	mock.ExpectQuery(regexp.QuoteMeta("WHERE r.id = $1")).
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows(riderRowColumns).
			AddRow(id.String(), "Asha", "asha@example.com", "", "active", now, now, 4.5, 2))

	r, err := s.Riders().GetByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "Asha", r.Name)
	assert.Equal(t, rider.StatusActive, r.Status)
	require.NotNil(t, r.Rating)
	assert.InDelta(t, 4.5, *r.Rating, 1e-9)
	assert.Equal(t, 2, r.RatingCount)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRiders_GetByIDUnratedAndMissing(t *testing.T) {
	s, mock := newMock(t)
	id := uuid.New()

	mock.ExpectQuery("FROM riders").
		WillReturnRows(sqlmock.NewRows(riderRowColumns).
			AddRow(id.String(), "Ben", "", "555", "inactive", now, now, nil, 0))
	mock.ExpectQuery("FROM riders").
		WillReturnRows(sqlmock.NewRows(riderRowColumns))

	r, err := s.Riders().GetByID(context.Background(), id)
	require.NoError(t, err)
	assert.Nil(t, r.Rating)

	_, err = s.Riders().GetByID(context.Background(), uuid.New())
	assert.ErrorIs(t, err, rider.ErrRiderNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRiders_ListAvailableExcludesBusy(t *testing.T) {
	s, mock := newMock(t)

	mock.ExpectQuery(regexp.QuoteMeta("r.status = 'active'") + "(?s).*" + regexp.QuoteMeta("o.status = 'assigned'")).
		WillReturnRows(sqlmock.NewRows(riderRowColumns).
			AddRow(uuid.NewString(), "a", "a@example.com", "", "active", now, now, nil, 0).
			AddRow(uuid.NewString(), "b", "b@example.com", "", "active", now, now, nil, 0))

	riders, err := s.Riders().ListAvailable(context.Background())
	require.NoError(t, err)
	assert.Len(t, riders, 2)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRiders_DeleteMapsConstraintErrors(t *testing.T) {
	s, mock := newMock(t)
	busy, missing := uuid.New(), uuid.New()

	mock.ExpectExec("DELETE FROM riders").WithArgs(busy).
		WillReturnError(&pq.Error{Code: checkViolation})
	mock.ExpectExec("DELETE FROM riders").WithArgs(missing).
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.ErrorIs(t, s.Riders().Delete(context.Background(), busy), rider.ErrRiderHasActiveWork)
	assert.ErrorIs(t, s.Riders().Delete(context.Background(), missing), rider.ErrRiderNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRatings_CreateUnknownRider(t *testing.T) {
	s, mock := newMock(t)
	rt, err := rider.NewRating(uuid.New(), 5, "quick", rider.DefaultScoreRange, now)
	require.NoError(t, err)

	mock.ExpectExec("INSERT INTO rider_ratings").
		WillReturnError(&pq.Error{Code: foreignKeyViolation})

	assert.ErrorIs(t, s.Ratings().Create(context.Background(), rt), rider.ErrRiderNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrders_AssignRider(t *testing.T) {
	orderID, riderID := uuid.New(), uuid.New()

	tests := []struct {
		name  string
		setup func(mock sqlmock.Sqlmock)
		want  error
	}{
		{
			name: "assigned",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec("UPDATE orders").WithArgs(orderID, riderID, now).
					WillReturnResult(sqlmock.NewResult(0, 1))
			},
		},
		{
			name: "rider already holds an order",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec("UPDATE orders").
					WillReturnError(&pq.Error{Code: uniqueViolation})
			},
			want: rider.ErrRiderNotAvailable,
		},
		{
			name: "order no longer pending",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec("UPDATE orders").WillReturnResult(sqlmock.NewResult(0, 0))
				mock.ExpectQuery("SELECT status FROM orders").
					WillReturnRows(sqlmock.NewRows([]string{"status"}).AddRow("cancelled"))
			},
			want: order.ErrOrderNotPending,
		},
		{
			name: "rider inactive",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec("UPDATE orders").WillReturnResult(sqlmock.NewResult(0, 0))
				mock.ExpectQuery("SELECT status FROM orders").
					WillReturnRows(sqlmock.NewRows([]string{"status"}).AddRow("pending"))
			},
			want: rider.ErrRiderNotAvailable,
		},
		{
			name: "order missing",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec("UPDATE orders").WillReturnResult(sqlmock.NewResult(0, 0))
				mock.ExpectQuery("SELECT status FROM orders").
					WillReturnRows(sqlmock.NewRows([]string{"status"}))
			},
			want: order.ErrOrderNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, mock := newMock(t)
			tt.setup(mock)

			err := s.Orders().AssignRider(context.Background(), orderID, riderID, now)
			if tt.want == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.want)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestOrders_UpdateStatusCompareAndSwap(t *testing.T) {
	s, mock := newMock(t)
	id := uuid.New()

	mock.ExpectExec("UPDATE orders").
		WithArgs(id, order.StatusAssigned, order.StatusDelivered, now).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT EXISTS").WithArgs(id).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	err := s.Orders().UpdateStatus(context.Background(), id, order.StatusAssigned, order.StatusDelivered, now)
	assert.ErrorIs(t, err, order.ErrStatusChanged)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrders_GetByIDScansNullables(t *testing.T) {
	s, mock := newMock(t)
	id, customer := uuid.New(), uuid.New()

	mock.ExpectQuery("FROM orders").WithArgs(id).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "customer_id", "rider_id", "status", "delivery_cost",
			"created_at", "assigned_at", "delivered_at", "cancelled_at", "updated_at",
		}).AddRow(id.String(), customer.String(), nil, "pending", 7.25, now, nil, nil, nil, now))

	o, err := s.Orders().GetByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, order.StatusPending, o.Status)
	assert.Nil(t, o.RiderID)
	assert.Nil(t, o.AssignedAt)
	assert.InDelta(t, 7.25, o.DeliveryCost, 1e-9)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeliveries_EmptyAggregates(t *testing.T) {
	s, mock := newMock(t)

	mock.ExpectQuery("SELECT AVG\\(duration_seconds\\)").
		WillReturnRows(sqlmock.NewRows([]string{"avg"}).AddRow(nil))
	mock.ExpectQuery("COALESCE\\(SUM\\(cost\\), 0\\)").
		WillReturnRows(sqlmock.NewRows([]string{"sum"}).AddRow(0.0))

	avg, err := s.Deliveries().AverageDuration(context.Background())
	require.NoError(t, err)
	assert.Nil(t, avg)

	total, err := s.Deliveries().TotalCost(context.Background())
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWithinTx(t *testing.T) {
	t.Run("commit", func(t *testing.T) {
		s, mock := newMock(t)
		id := uuid.New()

		mock.ExpectBegin()
		mock.ExpectQuery("SELECT EXISTS").
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
		mock.ExpectExec("DELETE FROM riders").WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		err := s.WithinTx(context.Background(), func(tx store.Store) error {
			busy, err := tx.Orders().HasActiveAssignment(context.Background(), id)
			if err != nil || busy {
				return errors.New("unexpected")
			}
			return tx.Riders().Delete(context.Background(), id)
		})
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rollback", func(t *testing.T) {
		s, mock := newMock(t)
		boom := errors.New("boom")

		mock.ExpectBegin()
		mock.ExpectRollback()

		err := s.WithinTx(context.Background(), func(tx store.Store) error {
			return tx.WithinTx(context.Background(), func(store.Store) error { return boom })
		})
		assert.ErrorIs(t, err, boom)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
