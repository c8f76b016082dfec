// Package postgres implements store.Store on database/sql with lib/pq.
package postgres

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"

	"github.com/gocomet/delivery-dispatch/internal/domain/communication"
	"github.com/gocomet/delivery-dispatch/internal/domain/delivery"
	"github.com/gocomet/delivery-dispatch/internal/domain/order"
	"github.com/gocomet/delivery-dispatch/internal/domain/rider"
	"github.com/gocomet/delivery-dispatch/internal/store"
	"github.com/lib/pq"
)

//go:embed schema.sql
var schema string

const (
	uniqueViolation     pq.ErrorCode = "23505"
	foreignKeyViolation pq.ErrorCode = "23503"
	checkViolation      pq.ErrorCode = "23514"
)

// querier is satisfied by both *sql.DB and *sql.Tx
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Store is the PostgreSQL store.Store implementation
type Store struct {
	db   *sql.DB
	q    querier
	inTx bool
}

var _ store.Store = (*Store)(nil)

// New wraps an open connection pool. The Store takes ownership of db.
func New(db *sql.DB) *Store {
	return &Store{db: db, q: db}
}

// Migrate creates the schema if it does not exist
func Migrate(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

func (s *Store) Riders() rider.Repository                 { return &riderRepo{q: s.q} }
func (s *Store) Ratings() rider.RatingRepository          { return &ratingRepo{q: s.q} }
func (s *Store) Orders() order.Repository                 { return &orderRepo{q: s.q} }
func (s *Store) Deliveries() delivery.Repository          { return &deliveryRepo{q: s.q} }
func (s *Store) Communications() communication.Repository { return &communicationRepo{q: s.q} }

func (s *Store) WithinTx(ctx context.Context, fn func(tx store.Store) error) (err error) {
	if s.inTx {
		return fn(s)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = fn(&Store{db: s.db, q: tx, inTx: true}); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the pool; a no-op on a transactional view
func (s *Store) Close() error {
	if s.inTx {
		return nil
	}
	return s.db.Close()
}

func pqCode(err error) pq.ErrorCode {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code
	}
	return ""
}

func nullFloat(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}
