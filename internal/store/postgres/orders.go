package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/gocomet/delivery-dispatch/internal/domain/order"
	"github.com/gocomet/delivery-dispatch/internal/domain/rider"
	"github.com/google/uuid"
)

const orderColumns = `
	SELECT id, customer_id, rider_id, status, delivery_cost,
	       created_at, assigned_at, delivered_at, cancelled_at, updated_at
	FROM orders`

type orderRepo struct {
	q querier
}

func scanOrder(row rowScanner) (*order.Order, error) {
	var (
		o                           order.Order
		riderID                     uuid.NullUUID
		assigned, delivered, cancel sql.NullTime
	)
	err := row.Scan(&o.ID, &o.CustomerID, &riderID, &o.Status, &o.DeliveryCost,
		&o.CreatedAt, &assigned, &delivered, &cancel, &o.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if riderID.Valid {
		id := riderID.UUID
		o.RiderID = &id
	}
	o.AssignedAt = nullTime(assigned)
	o.DeliveredAt = nullTime(delivered)
	o.CancelledAt = nullTime(cancel)
	return &o, nil
}

func nullTime(v sql.NullTime) *time.Time {
	if !v.Valid {
		return nil
	}
	t := v.Time
	return &t
}

func (repo *orderRepo) Create(ctx context.Context, o *order.Order) error {
	_, err := repo.q.ExecContext(ctx, `
		INSERT INTO orders (id, customer_id, rider_id, status, delivery_cost,
		                    created_at, assigned_at, delivered_at, cancelled_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, o.ID, o.CustomerID, uuidOrNil(o.RiderID), o.Status, o.DeliveryCost,
		o.CreatedAt, o.AssignedAt, o.DeliveredAt, o.CancelledAt, o.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}
	return nil
}

func uuidOrNil(id *uuid.UUID) any {
	if id == nil {
		return nil
	}
	return *id
}

func (repo *orderRepo) GetByID(ctx context.Context, id uuid.UUID) (*order.Order, error) {
	o, err := scanOrder(repo.q.QueryRowContext(ctx, orderColumns+` WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, order.ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get order %s: %w", id, err)
	}
	return o, nil
}

func (repo *orderRepo) ListPending(ctx context.Context) ([]*order.Order, error) {
	rows, err := repo.q.QueryContext(ctx, orderColumns+`
		WHERE status = 'pending'
		ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("query pending orders: %w", err)
	}
	defer rows.Close()

	var orders []*order.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

func (repo *orderRepo) AssignRider(ctx context.Context, orderID, riderID uuid.UUID, at time.Time) error {
	res, err := repo.q.ExecContext(ctx, `
		UPDATE orders
		SET rider_id = $2, status = 'assigned', assigned_at = $3, updated_at = $3
		WHERE id = $1
		  AND status = 'pending'
		  AND EXISTS (SELECT 1 FROM riders WHERE id = $2 AND status = 'active')
	`, orderID, riderID, at)
	if pqCode(err) == uniqueViolation {
		return rider.ErrRiderNotAvailable
	}
	if err != nil {
		return fmt.Errorf("assign rider %s to order %s: %w", riderID, orderID, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 1 {
		return nil
	}

	// Nothing matched; work out which condition failed
	var status order.Status
	err = repo.q.QueryRowContext(ctx, `SELECT status FROM orders WHERE id = $1`, orderID).Scan(&status)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return order.ErrOrderNotFound
	case err != nil:
		return fmt.Errorf("inspect order %s: %w", orderID, err)
	case status != order.StatusPending:
		return order.ErrOrderNotPending
	default:
		return rider.ErrRiderNotAvailable
	}
}

func (repo *orderRepo) UpdateStatus(ctx context.Context, id uuid.UUID, from, to order.Status, at time.Time) error {
	res, err := repo.q.ExecContext(ctx, `
		UPDATE orders
		SET status = $3::text,
		    updated_at = $4,
		    delivered_at = CASE WHEN $3::text = 'delivered' THEN $4 ELSE delivered_at END,
		    cancelled_at = CASE WHEN $3::text = 'cancelled' THEN $4 ELSE cancelled_at END
		WHERE id = $1 AND status = $2
	`, id, from, to, at)
	if err != nil {
		return fmt.Errorf("update order status %s: %w", id, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 1 {
		return nil
	}

	var exists bool
	if err := repo.q.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM orders WHERE id = $1)`, id).Scan(&exists); err != nil {
		return fmt.Errorf("inspect order %s: %w", id, err)
	}
	if !exists {
		return order.ErrOrderNotFound
	}
	return order.ErrStatusChanged
}

func (repo *orderRepo) HasActiveAssignment(ctx context.Context, riderID uuid.UUID) (bool, error) {
	var busy bool
	err := repo.q.QueryRowContext(ctx, `
		SELECT EXISTS (SELECT 1 FROM orders WHERE rider_id = $1 AND status = 'assigned')
	`, riderID).Scan(&busy)
	if err != nil {
		return false, fmt.Errorf("check assignment of rider %s: %w", riderID, err)
	}
	return busy, nil
}
