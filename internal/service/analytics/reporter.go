// Package analytics computes read-only delivery aggregates. Every figure is
// computed from the store at call time.
package analytics

import (
	"context"
	"time"

	"github.com/gocomet/delivery-dispatch/internal/store"
	apperrors "github.com/gocomet/delivery-dispatch/pkg/errors"
)

// Report bundles every aggregate. Averages are nil when there is nothing to
// average over.
type Report struct {
	TotalDeliveries         int64     `json:"total_deliveries"`
	AverageDeliveryDuration *float64  `json:"average_delivery_duration_seconds"`
	AverageCustomerRating   *float64  `json:"average_customer_rating"`
	TotalDeliveryCost       float64   `json:"total_delivery_cost"`
	GeneratedAt             time.Time `json:"generated_at"`
}

// Reporter reads delivery and rating history
type Reporter struct {
	store store.Store
	now   func() time.Time
}

func NewReporter(st store.Store) *Reporter {
	return &Reporter{store: st, now: time.Now}
}

func (r *Reporter) TotalDeliveries(ctx context.Context) (int64, error) {
	n, err := r.store.Deliveries().Count(ctx)
	if err != nil {
		return 0, apperrors.Internal("Failed to count deliveries", err)
	}
	return n, nil
}

// AverageDeliveryDuration is the mean assigned-to-delivered time in seconds
func (r *Reporter) AverageDeliveryDuration(ctx context.Context) (*float64, error) {
	avg, err := r.store.Deliveries().AverageDuration(ctx)
	if err != nil {
		return nil, apperrors.Internal("Failed to compute average delivery duration", err)
	}
	return avg, nil
}

// AverageCustomerRating is the mean score over all ratings of all riders
func (r *Reporter) AverageCustomerRating(ctx context.Context) (*float64, error) {
	avg, err := r.store.Ratings().Average(ctx)
	if err != nil {
		return nil, apperrors.Internal("Failed to compute average rating", err)
	}
	return avg, nil
}

func (r *Reporter) TotalDeliveryCost(ctx context.Context) (float64, error) {
	total, err := r.store.Deliveries().TotalCost(ctx)
	if err != nil {
		return 0, apperrors.Internal("Failed to compute total delivery cost", err)
	}
	return total, nil
}

func (r *Reporter) Report(ctx context.Context) (*Report, error) {
	var (
		rep Report
		err error
	)
	if rep.TotalDeliveries, err = r.TotalDeliveries(ctx); err != nil {
		return nil, err
	}
	if rep.AverageDeliveryDuration, err = r.AverageDeliveryDuration(ctx); err != nil {
		return nil, err
	}
	if rep.AverageCustomerRating, err = r.AverageCustomerRating(ctx); err != nil {
		return nil, err
	}
	if rep.TotalDeliveryCost, err = r.TotalDeliveryCost(ctx); err != nil {
		return nil, err
	}
	rep.GeneratedAt = r.now().UTC()
	return &rep, nil
}
