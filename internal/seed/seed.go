// Package seed fills the transfer log with random test data.
package seed

import (
	"context"
	"database/sql"
	"fmt"
	"math/rand/v2"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/multierr"

	"github.com/erazemk/transferlog/internal/model"
	"github.com/erazemk/transferlog/internal/store"
)

var (
	brands = []string{"Airstream", "Winnebago", "Jayco", "Thor", "Forest River"}
	models = []string{"Classic", "Minnie", "Eagle", "Magnitude", "Sunseeker"}
)

// maxInFlight bounds concurrent inserts.
const maxInFlight = 8

// spanDays is how far back generated transfers may be dated.
const spanDays = 30

type record struct {
	in        model.NewTransfer
	createdAt time.Time
}

// Generate stores count random transfers owned by userID and returns how many
// were written. Failed inserts are combined into the returned error.
func Generate(ctx context.Context, db *sql.DB, userID string, count int, rng *rand.Rand) (int, error) {
	if count <= 0 {
		return 0, nil
	}
	records := make([]record, count)
	now := time.Now()
	for i := range records {
		records[i] = randomRecord(rng, userID, now)
	}

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		errs    error
		written atomic.Int64
		sem     = make(chan struct{}, maxInFlight)
	)
	for _, r := range records {
		wg.Add(1)
		go func() {
			defer wg.Done()
			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-ctx.Done():
				mu.Lock()
				errs = multierr.Append(errs, ctx.Err())
				mu.Unlock()
				return
			}

			if _, err := store.CreateTransferAt(ctx, db, r.in, r.createdAt); err != nil {
				mu.Lock()
				errs = multierr.Append(errs, fmt.Errorf("stock %s: %w", r.in.StockNumber, err))
				mu.Unlock()
				return
			}
			written.Add(1)
		}()
	}
	wg.Wait()

	return int(written.Load()), errs
}

func randomRecord(rng *rand.Rand, userID string, now time.Time) record {
	from := rng.IntN(len(model.Locations))
	to := rng.IntN(len(model.Locations) - 1)
	if to >= from {
		to++
	}

	daysAgo := rng.IntN(spanDays)
	created := now.AddDate(0, 0, -daysAgo).Add(-time.Duration(rng.IntN(int(time.Hour/time.Second))) * time.Second)

	return record{
		in: model.NewTransfer{
			FromLocation: model.Locations[from],
			ToLocation:   model.Locations[to],
			StockNumber:  fmt.Sprintf("TEST-%d", rng.IntN(10000)),
			Brand:        brands[rng.IntN(len(brands))],
			Model:        models[rng.IntN(len(models))],
			DriverName:   model.DefaultDrivers[rng.IntN(len(model.DefaultDrivers))],
			TransferDate: created.Format(model.DateLayout),
			UserID:       userID,
		},
		createdAt: created,
	}
}
