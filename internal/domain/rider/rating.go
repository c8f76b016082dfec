package rider

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ScoreRange bounds valid rating scores, inclusive on both ends
type ScoreRange struct {
	Min int
	Max int
}

// DefaultScoreRange is the 1 to 5 star scale
var DefaultScoreRange = ScoreRange{Min: 1, Max: 5}

// Contains reports whether score lies within the range
func (r ScoreRange) Contains(score int) bool {
	return score >= r.Min && score <= r.Max
}

// Rating is an immutable score left for a rider
type Rating struct {
	ID        uuid.UUID `json:"id"`
	RiderID   uuid.UUID `json:"rider_id"`
	Score     int       `json:"score"`
	Feedback  string    `json:"feedback,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// NewRating validates score against the range; out-of-range scores are
// rejected rather than clamped.
func NewRating(riderID uuid.UUID, score int, feedback string, bounds ScoreRange, now time.Time) (*Rating, error) {
	if !bounds.Contains(score) {
		return nil, fmt.Errorf("%w: %d not in [%d, %d]", ErrScoreOutOfRange, score, bounds.Min, bounds.Max)
	}
	return &Rating{
		ID:        uuid.New(),
		RiderID:   riderID,
		Score:     score,
		Feedback:  strings.TrimSpace(feedback),
		CreatedAt: now,
	}, nil
}
