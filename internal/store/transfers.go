package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/erazemk/transferlog/internal/idx"
	"github.com/erazemk/transferlog/internal/model"
)

const transferColumns = `id, from_location, to_location, stock_number, brand, model,
	driver_name, transfer_date, user_id, created_at`

// CreateTransfer validates and stores a new transfer, stamping it with the
// current time.
func CreateTransfer(ctx context.Context, db *sql.DB, in model.NewTransfer) (*model.Transfer, error) {
	return CreateTransferAt(ctx, db, in, time.Now())
}

// CreateTransferAt is CreateTransfer with an explicit creation time.
func CreateTransferAt(ctx context.Context, db *sql.DB, in model.NewTransfer, createdAt time.Time) (*model.Transfer, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	createdAt = createdAt.UTC()
	t := &model.Transfer{
		ID:           idx.NewAt(createdAt),
		FromLocation: in.FromLocation,
		ToLocation:   in.ToLocation,
		StockNumber:  in.StockNumber,
		Brand:        in.Brand,
		Model:        in.Model,
		DriverName:   in.DriverName,
		TransferDate: in.TransferDate,
		UserID:       in.UserID,
		CreatedAt:    createdAt,
	}

	_, err := db.ExecContext(ctx,
		`INSERT INTO transfers (`+transferColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.FromLocation, t.ToLocation, t.StockNumber, t.Brand, t.Model,
		t.DriverName, t.TransferDate, t.UserID, t.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("recording transfer: %w", err)
	}
	return t, nil
}

// GetTransfer returns a transfer by ID, or nil if it does not exist.
func GetTransfer(ctx context.Context, db *sql.DB, id string) (*model.Transfer, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT `+transferColumns+` FROM transfers WHERE id = ?`, id,
	)
	if err != nil {
		return nil, fmt.Errorf("getting transfer: %w", err)
	}
	defer rows.Close()

	transfers, err := scanTransfers(rows)
	if err != nil {
		return nil, err
	}
	if len(transfers) == 0 {
		return nil, nil
	}
	return &transfers[0], nil
}

// ListTransfers returns every transfer, newest first.
func ListTransfers(ctx context.Context, db *sql.DB) ([]model.Transfer, error) {
	return queryTransfers(ctx, db, "", nil)
}

// ListTransfersByDateRange returns transfers whose transfer date falls within
// [start, end], both inclusive and formatted as YYYY-MM-DD.
func ListTransfersByDateRange(ctx context.Context, db *sql.DB, start, end string) ([]model.Transfer, error) {
	return queryTransfers(ctx, db, `transfer_date >= ? AND transfer_date <= ?`, []any{start, end})
}

// ListTransfersByDriver returns transfers made by exactly the named driver.
func ListTransfersByDriver(ctx context.Context, db *sql.DB, driver string) ([]model.Transfer, error) {
	return queryTransfers(ctx, db, `driver_name = ?`, []any{driver})
}

// ListTransfersByLocation returns transfers leaving location when isFrom is
// true, or arriving at it otherwise.
func ListTransfersByLocation(ctx context.Context, db *sql.DB, location string, isFrom bool) ([]model.Transfer, error) {
	if isFrom {
		return queryTransfers(ctx, db, `from_location = ?`, []any{location})
	}
	return queryTransfers(ctx, db, `to_location = ?`, []any{location})
}

// ListTransfersFiltered dispatches on the filter kind.
func ListTransfersFiltered(ctx context.Context, db *sql.DB, f model.TransferFilter) ([]model.Transfer, error) {
	switch f.Kind {
	case model.FilterDate:
		return ListTransfersByDateRange(ctx, db, f.Start, f.End)
	case model.FilterDriver:
		return ListTransfersByDriver(ctx, db, f.Driver)
	case model.FilterLocation:
		return ListTransfersByLocation(ctx, db, f.Location, f.IsFrom)
	default:
		return ListTransfers(ctx, db)
	}
}

// ComputeStats aggregates all stored transfers.
func ComputeStats(ctx context.Context, db *sql.DB) (*model.Stats, error) {
	transfers, err := ListTransfers(ctx, db)
	if err != nil {
		return nil, fmt.Errorf("computing stats: %w", err)
	}
	stats := model.ComputeStats(transfers)
	return &stats, nil
}

// ListDrivers returns the distinct driver names that appear in transfers.
func ListDrivers(ctx context.Context, db *sql.DB) ([]string, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT DISTINCT driver_name FROM transfers ORDER BY driver_name`,
	)
	if err != nil {
		return nil, fmt.Errorf("listing drivers: %w", err)
	}
	defer rows.Close()

	var drivers []string
	for rows.Next() {
		var d string
		if err := rows.Scan(&d); err != nil {
			return nil, fmt.Errorf("scanning driver: %w", err)
		}
		drivers = append(drivers, d)
	}
	return drivers, rows.Err()
}

func queryTransfers(ctx context.Context, db *sql.DB, where string, args []any) ([]model.Transfer, error) {
	query := `SELECT ` + transferColumns + ` FROM transfers`
	if where != "" {
		query += ` WHERE ` + where
	}
	query += ` ORDER BY created_at DESC, id DESC`

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing transfers: %w", err)
	}
	defer rows.Close()

	return scanTransfers(rows)
}

func scanTransfers(rows *sql.Rows) ([]model.Transfer, error) {
	var transfers []model.Transfer
	for rows.Next() {
		var t model.Transfer
		if err := rows.Scan(&t.ID, &t.FromLocation, &t.ToLocation, &t.StockNumber,
			&t.Brand, &t.Model, &t.DriverName, &t.TransferDate, &t.UserID, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning transfer: %w", err)
		}
		transfers = append(transfers, t)
	}
	return transfers, rows.Err()
}
