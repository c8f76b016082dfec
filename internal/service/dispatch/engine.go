// Package dispatch assigns available riders to pending orders in batches.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gocomet/delivery-dispatch/internal/domain/order"
	"github.com/gocomet/delivery-dispatch/internal/domain/rider"
	"github.com/gocomet/delivery-dispatch/internal/store"
	"github.com/gocomet/delivery-dispatch/pkg/cache"
	apperrors "github.com/gocomet/delivery-dispatch/pkg/errors"
	"github.com/gocomet/delivery-dispatch/pkg/logger"
	"github.com/gocomet/delivery-dispatch/pkg/metrics"
	"github.com/gocomet/delivery-dispatch/pkg/monitoring"
	"github.com/gocomet/delivery-dispatch/pkg/websocket"
	"github.com/google/uuid"
)

// ErrDispatchInProgress is returned when another run holds the dispatch lock
var ErrDispatchInProgress = errors.New("dispatch already in progress")

// Locker grants the single-writer dispatch lock
type Locker interface {
	TryLock(ctx context.Context, key string, ttl time.Duration) (cache.ReleaseFunc, bool, error)
}

// Config holds dispatch configuration
type Config struct {
	LockKey string
	LockTTL time.Duration
}

// Assignment is one committed order to rider pairing
type Assignment struct {
	OrderID    uuid.UUID `json:"order_id"`
	RiderID    uuid.UUID `json:"rider_id"`
	AssignedAt time.Time `json:"assigned_at"`
}

// Result is the audit record of a dispatch run. When a run fails part way,
// Assignments lists exactly the pairs that were committed before the failure.
type Result struct {
	RunID           uuid.UUID    `json:"run_id"`
	StartedAt       time.Time    `json:"started_at"`
	FinishedAt      time.Time    `json:"finished_at"`
	PendingOrders   int          `json:"pending_orders"`
	AvailableRiders int          `json:"available_riders"`
	Assignments     []Assignment `json:"assignments"`
	Unassigned      []uuid.UUID  `json:"unassigned"`
}

// Plan is a dry run: the pairing a run would attempt right now
type Plan struct {
	PendingOrders   int         `json:"pending_orders"`
	AvailableRiders int         `json:"available_riders"`
	Pairs           []Pair      `json:"pairs"`
	Unassigned      []uuid.UUID `json:"unassigned"`
}

// Engine runs batch dispatch
type Engine struct {
	store     store.Store
	locker    Locker
	logger    *logger.Logger
	metrics   *metrics.Metrics
	newRelic  *monitoring.NewRelicApp
	publisher websocket.Publisher
	config    Config
	now       func() time.Time
}

// NewEngine creates a new dispatch engine
func NewEngine(st store.Store, locker Locker, log *logger.Logger, m *metrics.Metrics, nr *monitoring.NewRelicApp, pub websocket.Publisher, cfg Config) *Engine {
	if pub == nil {
		pub = websocket.Discard{}
	}
	if cfg.LockKey == "" {
		cfg.LockKey = "dispatch:lock"
	}
	if cfg.LockTTL <= 0 {
		cfg.LockTTL = 30 * time.Second
	}
	return &Engine{
		store:     st,
		locker:    locker,
		logger:    log.Named("dispatch"),
		metrics:   m,
		newRelic:  nr,
		publisher: pub,
		config:    cfg,
		now:       time.Now,
	}
}

// Plan computes the first-fit pairing over the current snapshot without
// writing anything
func (e *Engine) Plan(ctx context.Context) (*Plan, error) {
	orders, riders, err := e.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	pairs, unmatched := Match(orders, riders)
	return &Plan{
		PendingOrders:   len(orders),
		AvailableRiders: len(riders),
		Pairs:           pairs,
		Unassigned:      unmatched,
	}, nil
}

// Run assigns available riders to pending orders, first-fit in creation
// order. Each pair commits on its own, so an error part way leaves earlier
// pairs in place; the returned Result lists them.
func (e *Engine) Run(ctx context.Context) (*Result, error) {
	release, ok, err := e.locker.TryLock(ctx, e.config.LockKey, e.config.LockTTL)
	if err != nil {
		return nil, apperrors.Internal("Failed to acquire dispatch lock", err)
	}
	if !ok {
		return nil, apperrors.Conflict("Dispatch already in progress", ErrDispatchInProgress)
	}
	defer func() {
		// release on a fresh context so a cancelled request still frees the lock
		releaseCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := release(releaseCtx); err != nil {
			e.logger.Warn("Failed to release dispatch lock", logger.Err(err))
		}
	}()

	res := &Result{
		RunID:       uuid.New(),
		StartedAt:   e.now().UTC(),
		Assignments: []Assignment{},
		Unassigned:  []uuid.UUID{},
	}
	log := e.logger.With(logger.Stringer("run_id", res.RunID))

	runErr := e.assign(ctx, res, log)
	res.FinishedAt = e.now().UTC()
	e.report(res, runErr, log)

	if runErr != nil {
		return res, runErr
	}
	return res, nil
}

func (e *Engine) assign(ctx context.Context, res *Result, log *logger.Logger) error {
	orders, riders, err := e.snapshot(ctx)
	if err != nil {
		return err
	}
	res.PendingOrders = len(orders)
	res.AvailableRiders = len(riders)

	next := 0
pending:
	for _, o := range orders {
		assigned := false
		for !assigned && next < len(riders) {
			if err := ctx.Err(); err != nil {
				return apperrors.Internal("Dispatch run interrupted", err)
			}

			r := riders[next]
			at := e.now().UTC()
			err := e.store.WithinTx(ctx, func(tx store.Store) error {
				return tx.Orders().AssignRider(ctx, o.ID, r.ID, at)
			})

			switch {
			case err == nil:
				next++
				assigned = true
				res.Assignments = append(res.Assignments, Assignment{OrderID: o.ID, RiderID: r.ID, AssignedAt: at})
				e.announce(o.ID, r.ID, at)
			case errors.Is(err, order.ErrOrderNotPending), errors.Is(err, order.ErrOrderNotFound):
				// cancelled or assigned elsewhere since the snapshot; the rider stays free
				log.Debug("Order skipped", logger.Stringer("order_id", o.ID), logger.Err(err))
				continue pending
			case errors.Is(err, rider.ErrRiderNotAvailable):
				log.Debug("Rider no longer available", logger.Stringer("rider_id", r.ID))
				next++
			default:
				return apperrors.Internal(
					fmt.Sprintf("Failed to assign rider %s to order %s", r.ID, o.ID), err)
			}
		}
		if !assigned {
			res.Unassigned = append(res.Unassigned, o.ID)
		}
	}
	return nil
}

func (e *Engine) snapshot(ctx context.Context) ([]*order.Order, []*rider.Rider, error) {
	orders, err := e.store.Orders().ListPending(ctx)
	if err != nil {
		return nil, nil, apperrors.Internal("Failed to list pending orders", err)
	}
	riders, err := e.store.Riders().ListAvailable(ctx)
	if err != nil {
		return nil, nil, apperrors.Internal("Failed to list available riders", err)
	}
	return orders, riders, nil
}

func (e *Engine) announce(orderID, riderID uuid.UUID, at time.Time) {
	msg := websocket.Message{
		Type: websocket.TypeOrderAssigned,
		Data: Assignment{OrderID: orderID, RiderID: riderID, AssignedAt: at},
	}
	e.publisher.SendToUser(riderID.String(), msg)
	e.publisher.BroadcastToOrder(orderID.String(), msg)
}

func (e *Engine) report(res *Result, runErr error, log *logger.Logger) {
	took := res.FinishedAt.Sub(res.StartedAt)
	outcome := "ok"
	if runErr != nil {
		outcome = "failed"
	}

	e.metrics.ObserveDispatch(outcome, took, len(res.Assignments), len(res.Unassigned))
	e.newRelic.RecordDispatchRun(res.RunID.String(), res.PendingOrders, res.AvailableRiders,
		len(res.Assignments), took, runErr != nil)
	e.publisher.BroadcastToType(websocket.UserTypeDashboard, websocket.Message{
		Type: websocket.TypeDispatchRun,
		Data: res,
	})

	fields := []logger.Field{
		logger.Int("pending_orders", res.PendingOrders),
		logger.Int("available_riders", res.AvailableRiders),
		logger.Int("assigned", len(res.Assignments)),
		logger.Int("unassigned", len(res.Unassigned)),
		logger.Duration("took", took),
	}
	if runErr != nil {
		log.Error("Dispatch run aborted", append(fields, logger.Err(runErr))...)
		return
	}
	log.Info("Dispatch run finished", fields...)
}
