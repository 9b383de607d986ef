package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/erazemk/transferlog/internal/db"
	"github.com/erazemk/transferlog/internal/model"
)

func newTransfer(from, to, driver, date string) model.NewTransfer {
	return model.NewTransfer{
		FromLocation: from,
		ToLocation:   to,
		StockNumber:  "STK-1",
		Brand:        "Airstream",
		Model:        "Classic",
		DriverName:   driver,
		TransferDate: date,
		UserID:       "user-1",
	}
}

func TestCreateTransferThenList(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	older, err := CreateTransferAt(ctx, database,
		newTransfer(model.LocationLakewood, model.LocationFountain, "Bobby", "2024-05-01"),
		time.Now().Add(-time.Hour))
	if err != nil {
		t.Fatalf("CreateTransferAt: %v", err)
	}

	created, err := CreateTransfer(ctx, database,
		newTransfer(model.LocationLongmont, model.LocationStorage, "John", "2024-05-02"))
	if err != nil {
		t.Fatalf("CreateTransfer: %v", err)
	}
	if created.ID == "" || created.CreatedAt.IsZero() {
		t.Fatalf("expected ID and CreatedAt to be assigned: %+v", created)
	}

	all, err := ListTransfers(ctx, database)
	if err != nil {
		t.Fatalf("ListTransfers: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 transfers, got %d", len(all))
	}
	if all[0].ID != created.ID || all[1].ID != older.ID {
		t.Errorf("expected newest first, got %s then %s", all[0].ID, all[1].ID)
	}

	got, err := GetTransfer(ctx, database, created.ID)
	if err != nil {
		t.Fatalf("GetTransfer: %v", err)
	}
	if got.StockNumber != "STK-1" || got.ToLocation != model.LocationStorage {
		t.Errorf("unexpected transfer: %+v", got)
	}

	missing, err := GetTransfer(ctx, database, "nope")
	if err != nil || missing != nil {
		t.Errorf("expected nil, nil for missing transfer, got %v, %v", missing, err)
	}
}

func TestCreateTransferRejectsInvalid(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	_, err := CreateTransfer(ctx, database,
		newTransfer(model.LocationLakewood, model.LocationLakewood, "Bobby", "2024-05-01"))
	var verr *model.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected validation error, got %v", err)
	}

	all, _ := ListTransfers(ctx, database)
	if len(all) != 0 {
		t.Errorf("invalid transfer should not be stored, got %d", len(all))
	}
}

func TestListTransfersFilters(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	CreateTransfer(ctx, database, newTransfer(model.LocationLakewood, model.LocationFountain, "Bobby", "2024-05-01"))
	CreateTransfer(ctx, database, newTransfer(model.LocationLakewood, model.LocationStorage, "John", "2024-05-15"))
	CreateTransfer(ctx, database, newTransfer(model.LocationStorage, model.LocationFountain, "Bobby", "2024-06-01"))

	byDate, err := ListTransfersByDateRange(ctx, database, "2024-05-01", "2024-05-15")
	if err != nil {
		t.Fatalf("ListTransfersByDateRange: %v", err)
	}
	if len(byDate) != 2 {
		t.Errorf("expected 2 transfers in inclusive range, got %d", len(byDate))
	}

	byDriver, _ := ListTransfersByDriver(ctx, database, "Bobby")
	if len(byDriver) != 2 {
		t.Errorf("expected 2 transfers for Bobby, got %d", len(byDriver))
	}

	fromLakewood, _ := ListTransfersByLocation(ctx, database, model.LocationLakewood, true)
	if len(fromLakewood) != 2 {
		t.Errorf("expected 2 transfers from Lakewood, got %d", len(fromLakewood))
	}

	toFountain, _ := ListTransfersByLocation(ctx, database, model.LocationFountain, false)
	if len(toFountain) != 2 {
		t.Errorf("expected 2 transfers to Fountain, got %d", len(toFountain))
	}

	filtered, _ := ListTransfersFiltered(ctx, database, model.TransferFilter{
		Kind: model.FilterLocation, Location: model.LocationStorage, IsFrom: false,
	})
	if len(filtered) != 1 {
		t.Errorf("expected 1 transfer to Storage, got %d", len(filtered))
	}

	drivers, _ := ListDrivers(ctx, database)
	if len(drivers) != 2 || drivers[0] != "Bobby" || drivers[1] != "John" {
		t.Errorf("unexpected drivers: %v", drivers)
	}
}

func TestComputeStats(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	stats, err := ComputeStats(ctx, database)
	if err != nil {
		t.Fatalf("ComputeStats on empty store: %v", err)
	}
	if stats.TotalTransfers != 0 {
		t.Errorf("expected 0 transfers, got %d", stats.TotalTransfers)
	}

	CreateTransfer(ctx, database, newTransfer(model.LocationLakewood, model.LocationFountain, "Bobby", "2024-05-01"))
	CreateTransfer(ctx, database, newTransfer(model.LocationFountain, model.LocationLakewood, "Bobby", "2024-05-02"))

	stats, _ = ComputeStats(ctx, database)
	if stats.TotalTransfers != 2 || stats.DriverCounts["Bobby"] != 2 {
		t.Errorf("unexpected stats: %+v", stats)
	}
	if stats.FromLocationCounts[model.LocationLakewood] != 1 || stats.ToLocationCounts[model.LocationLakewood] != 1 {
		t.Errorf("unexpected location counts: %+v", stats)
	}
}
