package rider

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_Validation(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name    string
		rname   string
		email   string
		phone   string
		wantErr error
	}{
		{"valid with email", "Asha", "asha@example.com", "", nil},
		{"valid with phone", "Asha", "", "+91 98450 00000", nil},
		{"blank name", "  ", "asha@example.com", "", ErrInvalidRiderName},
		{"bad email", "Asha", "not-an-email", "", ErrInvalidRiderEmail},
		{"no contact", "Asha", "", "", ErrMissingContact},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := New(tt.rname, tt.email, tt.phone, now)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, StatusActive, r.Status)
			assert.NotEqual(t, uuid.Nil, r.ID)
			assert.True(t, r.CanTakeOrders())
		})
	}
}

func TestRider_Apply(t *testing.T) {
	now := time.Now()
	r, err := New("Asha", "asha@example.com", "", now)
	require.NoError(t, err)

	name := "Asha K"
	inactive := StatusInactive
	require.NoError(t, r.Apply(Patch{Name: &name, Status: &inactive}, now.Add(time.Second)))
	assert.Equal(t, "Asha K", r.Name)
	assert.Equal(t, "asha@example.com", r.Email)
	assert.False(t, r.CanTakeOrders())

	bogus := Status("suspended")
	assert.ErrorIs(t, r.Apply(Patch{Status: &bogus}, now), ErrInvalidRiderStatus)
}

func TestNewRating_RejectsOutOfRange(t *testing.T) {
	now := time.Now()
	riderID := uuid.New()

	for _, score := range []int{0, 6, -3} {
		_, err := NewRating(riderID, score, "", DefaultScoreRange, now)
		assert.ErrorIs(t, err, ErrScoreOutOfRange, "score %d", score)
	}

	for _, score := range []int{1, 3, 5} {
		r, err := NewRating(riderID, score, " quick ", DefaultScoreRange, now)
		require.NoError(t, err)
		assert.Equal(t, score, r.Score)
		assert.Equal(t, "quick", r.Feedback)
	}
}
