package client

import (
	"context"
	"errors"
	"fmt"

	"github.com/evdash/evdash-backend-go/pkg/models"
)

// Sink receives refreshed dashboard data. Implementations belong to the
// caller (a UI view model, a cache, a test recorder).
type Sink interface {
	SetConsumption(*models.ConsumptionStats)
	SetTrips([]models.Trip)
	SetDBStatus(*models.DBStatus)
}

// Refresher re-fetches the dashboard views in a fixed order:
// consumption statistics, then trips, then store status. A failing
// fetch is recorded and the remaining ones still run.
type Refresher struct {
	client    *Client
	sink      Sink
	tripLimit int
}

// NewRefresher creates a refresher publishing into sink. tripLimit <= 0
// fetches the full trip list.
func NewRefresher(client *Client, sink Sink, tripLimit int) *Refresher {
	return &Refresher{client: client, sink: sink, tripLimit: tripLimit}
}

// RefreshAll performs the three fetches sequentially and returns the
// joined errors of whichever failed. Successful fetches are published
// to the sink even when an earlier one failed.
func (r *Refresher) RefreshAll(ctx context.Context) error {
	var errs []error

	if stats, err := r.client.Consumption(ctx); err != nil {
		errs = append(errs, fmt.Errorf("refresh consumption: %w", err))
	} else {
		r.sink.SetConsumption(stats)
	}

	if trips, err := r.client.Trips(ctx, r.tripLimit); err != nil {
		errs = append(errs, fmt.Errorf("refresh trips: %w", err))
	} else {
		r.sink.SetTrips(trips)
	}

	if status, err := r.client.DBStatus(ctx); err != nil {
		errs = append(errs, fmt.Errorf("refresh db status: %w", err))
	} else {
		r.sink.SetDBStatus(status)
	}

	return errors.Join(errs...)
}
