// Package communication sends and lists messages addressed to customers.
package communication

import (
	"context"
	"time"

	"github.com/gocomet/delivery-dispatch/internal/domain/communication"
	"github.com/gocomet/delivery-dispatch/internal/store"
	apperrors "github.com/gocomet/delivery-dispatch/pkg/errors"
	"github.com/gocomet/delivery-dispatch/pkg/logger"
	"github.com/gocomet/delivery-dispatch/pkg/metrics"
	"github.com/gocomet/delivery-dispatch/pkg/websocket"
	"github.com/google/uuid"
)

// Service handles customer communication
type Service struct {
	store     store.Store
	logger    *logger.Logger
	metrics   *metrics.Metrics
	publisher websocket.Publisher
	now       func() time.Time
}

func NewService(st store.Store, log *logger.Logger, m *metrics.Metrics, pub websocket.Publisher) *Service {
	if pub == nil {
		pub = websocket.Discard{}
	}
	return &Service{
		store:     st,
		logger:    log.Named("communication"),
		metrics:   m,
		publisher: pub,
		now:       time.Now,
	}
}

// Send stores a message for the customer and pushes it to any of the
// customer's open connections
func (s *Service) Send(ctx context.Context, customerID uuid.UUID, message string) (*communication.Communication, error) {
	c, err := communication.New(customerID, message, s.now().UTC())
	if err != nil {
		return nil, apperrors.Validation(err.Error(), err)
	}
	if err := s.store.Communications().Create(ctx, c); err != nil {
		return nil, apperrors.Internal("Failed to store message", err)
	}

	s.metrics.ObserveMessage()
	s.publisher.SendToUser(customerID.String(), websocket.Message{
		Type: websocket.TypeCustomerMessage,
		Data: c,
	})
	s.logger.Info("Customer message sent",
		logger.Stringer("customer_id", customerID),
		logger.Int("length", len(c.Message)),
	)
	return c, nil
}

func (s *Service) List(ctx context.Context, customerID uuid.UUID) ([]*communication.Communication, error) {
	if customerID == uuid.Nil {
		return nil, apperrors.Validation("Invalid customer reference", communication.ErrInvalidCustomer)
	}
	out, err := s.store.Communications().ListByCustomer(ctx, customerID)
	if err != nil {
		return nil, apperrors.Internal("Failed to list messages", err)
	}
	if out == nil {
		out = []*communication.Communication{}
	}
	return out, nil
}
