package seed

import (
	"context"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"

	"github.com/erazemk/transferlog/internal/db"
	"github.com/erazemk/transferlog/internal/model"
	"github.com/erazemk/transferlog/internal/store"
)

func TestGenerate(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	n, err := Generate(ctx, database, "user-1", 25, rand.New(rand.NewPCG(1, 2)))
	require.NoError(t, err)
	assert.Equal(t, 25, n)

	transfers, err := store.ListTransfers(ctx, database)
	require.NoError(t, err)
	require.Len(t, transfers, 25)

	oldest := time.Now().AddDate(0, 0, -spanDays-1).Format(model.DateLayout)
	for _, tr := range transfers {
		assert.NotEqual(t, tr.FromLocation, tr.ToLocation)
		assert.Equal(t, "user-1", tr.UserID)
		assert.Contains(t, brands, tr.Brand)
		assert.Contains(t, models, tr.Model)
		assert.GreaterOrEqual(t, tr.TransferDate, oldest)
	}
}

func TestGenerateZero(t *testing.T) {
	database := db.NewTestDB(t)
	n, err := Generate(context.Background(), database, "user-1", 0, rand.New(rand.NewPCG(1, 2)))
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestGenerateCombinesErrors(t *testing.T) {
	database := db.NewTestDB(t)

	// An empty user ID fails validation for every record.
	n, err := Generate(context.Background(), database, "", 3, rand.New(rand.NewPCG(1, 2)))
	require.Error(t, err)
	assert.Zero(t, n)
	assert.Len(t, multierr.Errors(err), 3)
}

func TestRandomRecordRoutes(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 7))
	now := time.Now()
	for range 200 {
		r := randomRecord(rng, "u", now)
		require.NoError(t, r.in.Validate())
		assert.NotEqual(t, r.in.FromLocation, r.in.ToLocation)
	}
}
