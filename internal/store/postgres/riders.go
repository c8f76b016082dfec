package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/gocomet/delivery-dispatch/internal/domain/rider"
	"github.com/google/uuid"
)

const riderColumns = `
	SELECT r.id, r.name, r.email, r.phone, r.status, r.created_at, r.updated_at,
	       AVG(rt.score)::float8, COUNT(rt.id)
	FROM riders r
	LEFT JOIN rider_ratings rt ON rt.rider_id = r.id`

type riderRepo struct {
	q querier
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRider(row rowScanner) (*rider.Rider, error) {
	var (
		r     rider.Rider
		avg   sql.NullFloat64
		count int
	)
	if err := row.Scan(&r.ID, &r.Name, &r.Email, &r.Phone, &r.Status, &r.CreatedAt, &r.UpdatedAt, &avg, &count); err != nil {
		return nil, err
	}
	r.Rating = nullFloat(avg)
	r.RatingCount = count
	return &r, nil
}

func (repo *riderRepo) list(ctx context.Context, where string, args ...any) ([]*rider.Rider, error) {
	rows, err := repo.q.QueryContext(ctx, riderColumns+where+`
	GROUP BY r.id
	ORDER BY r.created_at, r.id`, args...)
	if err != nil {
		return nil, fmt.Errorf("query riders: %w", err)
	}
	defer rows.Close()

	var riders []*rider.Rider
	for rows.Next() {
		r, err := scanRider(rows)
		if err != nil {
			return nil, fmt.Errorf("scan rider: %w", err)
		}
		riders = append(riders, r)
	}
	return riders, rows.Err()
}

func (repo *riderRepo) List(ctx context.Context) ([]*rider.Rider, error) {
	return repo.list(ctx, "")
}

func (repo *riderRepo) ListAvailable(ctx context.Context) ([]*rider.Rider, error) {
	return repo.list(ctx, `
	WHERE r.status = 'active'
	  AND NOT EXISTS (SELECT 1 FROM orders o WHERE o.rider_id = r.id AND o.status = 'assigned')`)
}

func (repo *riderRepo) GetByID(ctx context.Context, id uuid.UUID) (*rider.Rider, error) {
	row := repo.q.QueryRowContext(ctx, riderColumns+`
	WHERE r.id = $1
	GROUP BY r.id`, id)

	r, err := scanRider(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, rider.ErrRiderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get rider %s: %w", id, err)
	}
	return r, nil
}

func (repo *riderRepo) Create(ctx context.Context, r *rider.Rider) error {
	_, err := repo.q.ExecContext(ctx, `
		INSERT INTO riders (id, name, email, phone, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, r.ID, r.Name, r.Email, r.Phone, r.Status, r.CreatedAt, r.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert rider: %w", err)
	}
	return nil
}

func (repo *riderRepo) Update(ctx context.Context, r *rider.Rider) error {
	res, err := repo.q.ExecContext(ctx, `
		UPDATE riders
		SET name = $2, email = $3, phone = $4, status = $5, updated_at = $6
		WHERE id = $1
	`, r.ID, r.Name, r.Email, r.Phone, r.Status, r.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update rider %s: %w", r.ID, err)
	}
	return expectOne(res, rider.ErrRiderNotFound)
}

func (repo *riderRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status rider.Status) error {
	res, err := repo.q.ExecContext(ctx, `
		UPDATE riders SET status = $2, updated_at = NOW() WHERE id = $1
	`, id, status)
	if err != nil {
		return fmt.Errorf("update rider status %s: %w", id, err)
	}
	return expectOne(res, rider.ErrRiderNotFound)
}

func (repo *riderRepo) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := repo.q.ExecContext(ctx, `DELETE FROM riders WHERE id = $1`, id)
	if pqCode(err) == checkViolation {
		// detaching an assigned order would break orders_assigned_has_rider
		return rider.ErrRiderHasActiveWork
	}
	if err != nil {
		return fmt.Errorf("delete rider %s: %w", id, err)
	}
	return expectOne(res, rider.ErrRiderNotFound)
}

func expectOne(res sql.Result, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return notFound
	}
	return nil
}

type ratingRepo struct {
	q querier
}

func (repo *ratingRepo) Create(ctx context.Context, rt *rider.Rating) error {
	_, err := repo.q.ExecContext(ctx, `
		INSERT INTO rider_ratings (id, rider_id, score, feedback, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, rt.ID, rt.RiderID, rt.Score, rt.Feedback, rt.CreatedAt)
	if pqCode(err) == foreignKeyViolation {
		return rider.ErrRiderNotFound
	}
	if err != nil {
		return fmt.Errorf("insert rating: %w", err)
	}
	return nil
}

func (repo *ratingRepo) ListByRider(ctx context.Context, riderID uuid.UUID) ([]*rider.Rating, error) {
	rows, err := repo.q.QueryContext(ctx, `
		SELECT id, rider_id, score, feedback, created_at
		FROM rider_ratings
		WHERE rider_id = $1
		ORDER BY created_at, id
	`, riderID)
	if err != nil {
		return nil, fmt.Errorf("query ratings: %w", err)
	}
	defer rows.Close()

	var ratings []*rider.Rating
	for rows.Next() {
		var rt rider.Rating
		if err := rows.Scan(&rt.ID, &rt.RiderID, &rt.Score, &rt.Feedback, &rt.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan rating: %w", err)
		}
		ratings = append(ratings, &rt)
	}
	return ratings, rows.Err()
}

func (repo *ratingRepo) Average(ctx context.Context) (*float64, error) {
	var avg sql.NullFloat64
	if err := repo.q.QueryRowContext(ctx, `SELECT AVG(score)::float8 FROM rider_ratings`).Scan(&avg); err != nil {
		return nil, fmt.Errorf("average rating: %w", err)
	}
	return nullFloat(avg), nil
}
