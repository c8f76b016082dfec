// Package lifecycle drives orders through their status state machine.
package lifecycle

import (
	"context"
	"errors"
	"time"

	"github.com/gocomet/delivery-dispatch/internal/domain/delivery"
	"github.com/gocomet/delivery-dispatch/internal/domain/order"
	"github.com/gocomet/delivery-dispatch/internal/store"
	apperrors "github.com/gocomet/delivery-dispatch/pkg/errors"
	"github.com/gocomet/delivery-dispatch/pkg/logger"
	"github.com/gocomet/delivery-dispatch/pkg/metrics"
	"github.com/gocomet/delivery-dispatch/pkg/monitoring"
	"github.com/gocomet/delivery-dispatch/pkg/websocket"
	"github.com/google/uuid"
)

// Service handles order status transitions
type Service struct {
	store     store.Store
	logger    *logger.Logger
	metrics   *metrics.Metrics
	newRelic  *monitoring.NewRelicApp
	publisher websocket.Publisher
	now       func() time.Time
}

// NewService creates a new lifecycle service
func NewService(st store.Store, log *logger.Logger, m *metrics.Metrics, nr *monitoring.NewRelicApp, pub websocket.Publisher) *Service {
	if pub == nil {
		pub = websocket.Discard{}
	}
	return &Service{
		store:     st,
		logger:    log.Named("lifecycle"),
		metrics:   m,
		newRelic:  nr,
		publisher: pub,
		now:       time.Now,
	}
}

// StatusView is the status of one order
type StatusView struct {
	OrderID uuid.UUID    `json:"order_id"`
	Status  order.Status `json:"status"`
}

// Confirmation is returned by ConfirmDelivery
type Confirmation struct {
	Order    *order.Order       `json:"order"`
	Delivery *delivery.Delivery `json:"delivery"`
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*order.Order, error) {
	o, err := s.store.Orders().GetByID(ctx, id)
	if err != nil {
		return nil, orderError(err, "Failed to get order")
	}
	return o, nil
}

func (s *Service) GetStatus(ctx context.Context, id uuid.UUID) (*StatusView, error) {
	o, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return &StatusView{OrderID: o.ID, Status: o.Status}, nil
}

// SetStatus moves an order along an edge of the transition table. Moving to
// assigned is refused because only dispatch binds riders to orders, and
// moving to delivered goes through the same bookkeeping as ConfirmDelivery.
func (s *Service) SetStatus(ctx context.Context, id uuid.UUID, next order.Status) (*order.Order, error) {
	if !next.IsValid() {
		return nil, apperrors.Validation("Invalid order status", order.ErrInvalidStatus)
	}
	if next == order.StatusAssigned {
		return nil, apperrors.Conflict("Orders are assigned by dispatch only", order.ErrAssignRequiresRider)
	}
	if next == order.StatusDelivered {
		c, err := s.ConfirmDelivery(ctx, id)
		if err != nil {
			return nil, err
		}
		return c.Order, nil
	}
	return s.transition(ctx, id, next)
}

// Cancel cancels a pending or assigned order
func (s *Service) Cancel(ctx context.Context, id uuid.UUID) (*order.Order, error) {
	return s.transition(ctx, id, order.StatusCancelled)
}

func (s *Service) transition(ctx context.Context, id uuid.UUID, next order.Status) (*order.Order, error) {
	var (
		updated *order.Order
		from    order.Status
	)
	err := s.store.WithinTx(ctx, func(tx store.Store) error {
		o, err := tx.Orders().GetByID(ctx, id)
		if err != nil {
			return err
		}
		from = o.Status
		if err := o.MoveTo(next, s.now().UTC()); err != nil {
			return err
		}
		if err := tx.Orders().UpdateStatus(ctx, o.ID, from, next, o.UpdatedAt); err != nil {
			return err
		}
		updated = o
		return nil
	})
	if err != nil {
		return nil, orderError(err, "Failed to update order status")
	}

	s.announce(updated, from)
	return updated, nil
}

// ConfirmDelivery marks an assigned order delivered and records the delivery
// for analytics. Orders in any other status are left untouched.
func (s *Service) ConfirmDelivery(ctx context.Context, id uuid.UUID) (*Confirmation, error) {
	var result Confirmation
	err := s.store.WithinTx(ctx, func(tx store.Store) error {
		o, err := tx.Orders().GetByID(ctx, id)
		if err != nil {
			return err
		}
		if o.Status != order.StatusAssigned {
			return apperrors.Conflict("Only assigned orders can be confirmed as delivered",
				order.ErrInvalidTransition)
		}

		if err := o.MoveTo(order.StatusDelivered, s.now().UTC()); err != nil {
			return err
		}
		if err := tx.Orders().UpdateStatus(ctx, o.ID, order.StatusAssigned, order.StatusDelivered, *o.DeliveredAt); err != nil {
			return err
		}

		d, err := delivery.New(o.ID, o.RiderID, o.AssignedAt, o.DeliveryCost, *o.DeliveredAt)
		if err != nil {
			return err
		}
		if err := tx.Deliveries().Create(ctx, d); err != nil {
			return err
		}

		result = Confirmation{Order: o, Delivery: d}
		return nil
	})
	if err != nil {
		return nil, orderError(err, "Failed to confirm delivery")
	}

	s.announce(result.Order, order.StatusAssigned)
	s.newRelic.RecordDeliveryConfirmed(id.String(), result.Delivery.DurationSeconds, result.Delivery.Cost)
	return &result, nil
}

func (s *Service) announce(o *order.Order, from order.Status) {
	s.metrics.ObserveTransition(string(from), string(o.Status))
	s.newRelic.RecordOrderTransition(o.ID.String(), string(from), string(o.Status))

	msg := websocket.Message{
		Type: websocket.TypeOrderStatus,
		Data: map[string]interface{}{
			"order_id": o.ID,
			"from":     from,
			"status":   o.Status,
		},
	}
	s.publisher.BroadcastToOrder(o.ID.String(), msg)
	if o.RiderID != nil {
		s.publisher.SendToUser(o.RiderID.String(), msg)
	}

	s.logger.Info("Order status changed",
		logger.Stringer("order_id", o.ID),
		logger.String("from", string(from)),
		logger.String("to", string(o.Status)),
	)
}

// orderError maps store and domain errors onto API errors
func orderError(err error, message string) error {
	switch {
	case apperrors.IsAppError(err):
		return err
	case errors.Is(err, order.ErrOrderNotFound):
		return apperrors.NotFound("Order not found", err)
	case errors.Is(err, order.ErrInvalidStatus):
		return apperrors.Validation("Invalid order status", err)
	case errors.Is(err, order.ErrInvalidTransition):
		return apperrors.Conflict(err.Error(), err)
	case errors.Is(err, order.ErrStatusChanged):
		return apperrors.Conflict("Order status changed concurrently, retry", err)
	default:
		return apperrors.Internal(message, err)
	}
}
