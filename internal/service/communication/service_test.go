package communication

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/gocomet/delivery-dispatch/internal/domain/communication"
	"github.com/gocomet/delivery-dispatch/internal/store/memory"
	apperrors "github.com/gocomet/delivery-dispatch/pkg/errors"
	"github.com/gocomet/delivery-dispatch/pkg/logger"
	"github.com/gocomet/delivery-dispatch/pkg/metrics"
	"github.com/gocomet/delivery-dispatch/pkg/websocket"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type inbox struct {
	got map[string][]websocket.Message
}

func (i *inbox) SendToUser(userID string, m websocket.Message) {
	i.got[userID] = append(i.got[userID], m)
}
func (i *inbox) BroadcastToType(string, websocket.Message)  {}
func (i *inbox) BroadcastToOrder(string, websocket.Message) {}

func TestSendAndList(t *testing.T) {
	ctx := context.Background()
	box := &inbox{got: map[string][]websocket.Message{}}
	svc := NewService(memory.New(), logger.NewNop(), metrics.New(), box)
	svc.now = func() time.Time { return time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC) }
	customer := uuid.New()

	first, err := svc.Send(ctx, customer, "  Your rider is on the way ")
	require.NoError(t, err)
	assert.Equal(t, "Your rider is on the way", first.Message)

	_, err = svc.Send(ctx, customer, "Delivered")
	require.NoError(t, err)

	list, err := svc.List(ctx, customer)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, first.ID, list[0].ID)

	require.Len(t, box.got[customer.String()], 2)
	assert.Equal(t, websocket.TypeCustomerMessage, box.got[customer.String()][0].Type)

	other, err := svc.List(ctx, uuid.New())
	require.NoError(t, err)
	assert.Empty(t, other)
}

func TestSend_Validation(t *testing.T) {
	svc := NewService(memory.New(), logger.NewNop(), nil, nil)

	tests := []struct {
		name     string
		customer uuid.UUID
		message  string
		want     error
	}{
		{"blank", uuid.New(), "   ", communication.ErrEmptyMessage},
		{"too long", uuid.New(), strings.Repeat("x", communication.MaxMessageLength+1), communication.ErrMessageTooLong},
		{"no customer", uuid.Nil, "hi", communication.ErrInvalidCustomer},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Send(context.Background(), tt.customer, tt.message)
			assert.True(t, apperrors.IsValidation(err))
			assert.ErrorIs(t, err, tt.want)
		})
	}
}
