package model

import (
	"strings"
	"time"
)

// DateLayout is the format of Transfer.TransferDate.
const DateLayout = "2006-01-02"

// Transfer is a logged movement of one unit between two locations.
type Transfer struct {
	ID           string    `json:"id"`
	FromLocation string    `json:"fromLocation"`
	ToLocation   string    `json:"toLocation"`
	StockNumber  string    `json:"stockNumber"`
	Brand        string    `json:"brand"`
	Model        string    `json:"model"`
	DriverName   string    `json:"driverName"`
	TransferDate string    `json:"transferDate"`
	UserID       string    `json:"userId"`
	CreatedAt    time.Time `json:"createdAt"`
}

// NewTransfer holds the user-supplied fields of a transfer. ID and CreatedAt
// are assigned by the store.
type NewTransfer struct {
	FromLocation string `json:"fromLocation" validate:"required,location"`
	ToLocation   string `json:"toLocation" validate:"required,location"`
	StockNumber  string `json:"stockNumber" validate:"required,max=64"`
	Brand        string `json:"brand" validate:"required,max=128"`
	Model        string `json:"model" validate:"required,max=128"`
	DriverName   string `json:"driverName" validate:"required,max=128"`
	TransferDate string `json:"transferDate" validate:"required,datetime=2006-01-02"`
	UserID       string `json:"userId" validate:"required"`
}

// Normalize trims surrounding whitespace from every field.
func (n *NewTransfer) Normalize() {
	for _, f := range []*string{
		&n.FromLocation, &n.ToLocation, &n.StockNumber, &n.Brand,
		&n.Model, &n.DriverName, &n.TransferDate, &n.UserID,
	} {
		*f = strings.TrimSpace(*f)
	}
}

// Validate normalizes n and checks every field and the route.
func (n *NewTransfer) Validate() error {
	n.Normalize()
	return validateStruct(n)
}

// Stats summarises a set of transfers.
type Stats struct {
	TotalTransfers     int            `json:"totalTransfers"`
	DriverCounts       map[string]int `json:"driverCounts"`
	FromLocationCounts map[string]int `json:"fromLocationCounts"`
	ToLocationCounts   map[string]int `json:"toLocationCounts"`
}

// ComputeStats aggregates transfers by driver and by location.
func ComputeStats(transfers []Transfer) Stats {
	s := Stats{
		TotalTransfers:     len(transfers),
		DriverCounts:       make(map[string]int),
		FromLocationCounts: make(map[string]int),
		ToLocationCounts:   make(map[string]int),
	}
	for _, t := range transfers {
		s.DriverCounts[t.DriverName]++
		s.FromLocationCounts[t.FromLocation]++
		s.ToLocationCounts[t.ToLocation]++
	}
	return s
}
