package websocket

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/gocomet/delivery-dispatch/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startHub(t *testing.T) *Hub {
	t.Helper()
	hub := NewHub(logger.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go hub.Run(ctx)
	return hub
}

func connect(t *testing.T, hub *Hub, userID, userType string) *Client {
	t.Helper()
	before := hub.GetActiveConnections()
	c := NewClient(hub, nil, userID, userType, logger.NewNop())
	hub.Register(c)
	require.Eventually(t, func() bool { return hub.GetActiveConnections() == before+1 }, time.Second, 5*time.Millisecond)
	return c
}

func receive(t *testing.T, c *Client) Message {
	t.Helper()
	select {
	case data := <-c.Send:
		var msg Message
		require.NoError(t, json.Unmarshal(data, &msg))
		return msg
	case <-time.After(time.Second):
		t.Fatalf("client %s received nothing", c.UserID)
		return Message{}
	}
}

func assertSilent(t *testing.T, c *Client) {
	t.Helper()
	select {
	case data := <-c.Send:
		t.Fatalf("client %s got unexpected message %s", c.UserID, data)
	default:
	}
}

func TestHub_Routing(t *testing.T) {
	hub := startHub(t)
	rider := connect(t, hub, "r1", UserTypeRider)
	customer := connect(t, hub, "c1", UserTypeCustomer)
	dashboard := connect(t, hub, "d1", UserTypeDashboard)

	hub.SendToUser("r1", Message{Type: TypeOrderAssigned})
	assert.Equal(t, TypeOrderAssigned, receive(t, rider).Type)
	assertSilent(t, customer)

	hub.BroadcastToType(UserTypeDashboard, Message{Type: TypeDispatchRun})
	assert.Equal(t, TypeDispatchRun, receive(t, dashboard).Type)
	assertSilent(t, rider)

	customer.Subscribe("o1")
	hub.BroadcastToOrder("o1", Message{Type: TypeOrderStatus, Data: map[string]string{"status": "delivered"}})
	msg := receive(t, customer)
	assert.Equal(t, TypeOrderStatus, msg.Type)
	assertSilent(t, dashboard)

	customer.Unsubscribe("o1")
	hub.BroadcastToOrder("o1", Message{Type: TypeOrderStatus})
	assertSilent(t, customer)
}

func TestHub_UnregisterClosesSend(t *testing.T) {
	hub := startHub(t)
	c := connect(t, hub, "r1", UserTypeRider)

	hub.Unregister(c)
	require.Eventually(t, func() bool { return hub.GetActiveConnections() == 0 }, time.Second, 5*time.Millisecond)

	_, open := <-c.Send
	assert.False(t, open)
}

func TestClient_HandleMessage(t *testing.T) {
	c := NewClient(nil, nil, "c1", UserTypeCustomer, logger.NewNop())

	c.handleMessage([]byte(`{"type":"subscribe","order_id":"o9"}`))
	assert.True(t, c.IsSubscribedToOrder("o9"))

	c.handleMessage([]byte(`{"type":"ping"}`))
	assert.Equal(t, "pong", receive(t, c).Type)

	c.handleMessage([]byte(`not json`))
	c.handleMessage([]byte(`{"type":"unsubscribe","order_id":"o9"}`))
	assert.False(t, c.IsSubscribedToOrder("o9"))
}
