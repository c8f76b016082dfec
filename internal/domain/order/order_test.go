package order

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatus_TransitionTable(t *testing.T) {
	all := []Status{StatusPending, StatusAssigned, StatusDelivered, StatusCancelled}
	allowed := map[Status]map[Status]bool{
		StatusPending:  {StatusAssigned: true, StatusCancelled: true},
		StatusAssigned: {StatusDelivered: true, StatusCancelled: true},
	}

	for _, from := range all {
		for _, to := range all {
			t.Run(string(from)+"->"+string(to), func(t *testing.T) {
				assert.Equal(t, allowed[from][to], from.CanTransitionTo(to))
			})
		}
	}
}

func TestStatus_ValidateTransition(t *testing.T) {
	assert.NoError(t, StatusAssigned.ValidateTransition(StatusDelivered))
	assert.ErrorIs(t, StatusDelivered.ValidateTransition(StatusPending), ErrInvalidTransition)
	assert.ErrorIs(t, StatusPending.ValidateTransition("shipped"), ErrInvalidStatus)
	assert.True(t, StatusCancelled.IsTerminal())
	assert.False(t, StatusAssigned.IsTerminal())
}

func TestNew(t *testing.T) {
	now := time.Now()

	o, err := New(uuid.New(), 4.5, now)
	require.NoError(t, err)
	assert.Equal(t, StatusPending, o.Status)
	assert.Nil(t, o.RiderID)

	_, err = New(uuid.Nil, 1, now)
	assert.ErrorIs(t, err, ErrInvalidCustomer)

	_, err = New(uuid.New(), -1, now)
	assert.ErrorIs(t, err, ErrInvalidCost)
}

func TestOrder_AssignSetsRiderWithStatus(t *testing.T) {
	now := time.Now()
	o, _ := New(uuid.New(), 3, now)
	riderID := uuid.New()

	require.NoError(t, o.Assign(riderID, now))
	assert.Equal(t, StatusAssigned, o.Status)
	require.NotNil(t, o.RiderID)
	assert.Equal(t, riderID, *o.RiderID)
	assert.NotNil(t, o.AssignedAt)

	err := o.Assign(uuid.New(), now)
	assert.True(t, errors.Is(err, ErrInvalidTransition))
	assert.Equal(t, riderID, *o.RiderID, "failed re-assign must not move the rider")
}

func TestOrder_MoveTo(t *testing.T) {
	now := time.Now()
	o, _ := New(uuid.New(), 3, now)

	assert.ErrorIs(t, o.MoveTo(StatusAssigned, now), ErrAssignRequiresRider)
	assert.ErrorIs(t, o.MoveTo(StatusDelivered, now), ErrInvalidTransition)
	assert.Equal(t, StatusPending, o.Status)

	require.NoError(t, o.Assign(uuid.New(), now))
	require.NoError(t, o.MoveTo(StatusDelivered, now.Add(time.Minute)))
	assert.Equal(t, StatusDelivered, o.Status)
	assert.NotNil(t, o.DeliveredAt)

	assert.ErrorIs(t, o.MoveTo(StatusCancelled, now), ErrInvalidTransition)
}
