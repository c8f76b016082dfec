package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/gocomet/delivery-dispatch/internal/domain/communication"
	"github.com/gocomet/delivery-dispatch/internal/domain/delivery"
	"github.com/google/uuid"
)

type deliveryRepo struct {
	q querier
}

func (repo *deliveryRepo) Create(ctx context.Context, d *delivery.Delivery) error {
	_, err := repo.q.ExecContext(ctx, `
		INSERT INTO deliveries (id, order_id, rider_id, duration_seconds, cost, delivered_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, d.ID, d.OrderID, d.RiderID, d.DurationSeconds, d.Cost, d.DeliveredAt)
	if err != nil {
		return fmt.Errorf("insert delivery: %w", err)
	}
	return nil
}

func (repo *deliveryRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := repo.q.QueryRowContext(ctx, `SELECT COUNT(*) FROM deliveries`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count deliveries: %w", err)
	}
	return n, nil
}

func (repo *deliveryRepo) AverageDuration(ctx context.Context) (*float64, error) {
	var avg sql.NullFloat64
	if err := repo.q.QueryRowContext(ctx, `SELECT AVG(duration_seconds) FROM deliveries`).Scan(&avg); err != nil {
		return nil, fmt.Errorf("average delivery duration: %w", err)
	}
	return nullFloat(avg), nil
}

func (repo *deliveryRepo) TotalCost(ctx context.Context) (float64, error) {
	var total float64
	if err := repo.q.QueryRowContext(ctx, `SELECT COALESCE(SUM(cost), 0) FROM deliveries`).Scan(&total); err != nil {
		return 0, fmt.Errorf("total delivery cost: %w", err)
	}
	return total, nil
}

type communicationRepo struct {
	q querier
}

func (repo *communicationRepo) Create(ctx context.Context, c *communication.Communication) error {
	_, err := repo.q.ExecContext(ctx, `
		INSERT INTO customer_communications (id, customer_id, message, created_at)
		VALUES ($1, $2, $3, $4)
	`, c.ID, c.CustomerID, c.Message, c.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert communication: %w", err)
	}
	return nil
}

func (repo *communicationRepo) ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]*communication.Communication, error) {
	rows, err := repo.q.QueryContext(ctx, `
		SELECT id, customer_id, message, created_at
		FROM customer_communications
		WHERE customer_id = $1
		ORDER BY created_at, id
	`, customerID)
	if err != nil {
		return nil, fmt.Errorf("query communications: %w", err)
	}
	defer rows.Close()

	var out []*communication.Communication
	for rows.Next() {
		var c communication.Communication
		if err := rows.Scan(&c.ID, &c.CustomerID, &c.Message, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan communication: %w", err)
		}
		out = append(out, &c)
	}
	return out, rows.Err()
}
