package model

import (
	"fmt"
	"net/url"
	"time"
)

// Filter kinds for listing transfers.
const (
	FilterAll      = "all"
	FilterDate     = "date"
	FilterDriver   = "driver"
	FilterLocation = "location"
)

// DefaultRangeDays is the span of the date filter when no bounds are given.
const DefaultRangeDays = 30

// TransferFilter selects a subset of transfers for the dashboard and reports.
type TransferFilter struct {
	Kind     string
	Start    string
	End      string
	Driver   string
	Location string
	IsFrom   bool
}

// ParseTransferFilter reads a filter from query parameters:
// filter, start, end, driver, location and direction (from|to).
// Missing date bounds default to the last DefaultRangeDays days through now.
func ParseTransferFilter(q url.Values, now time.Time) (TransferFilter, error) {
	f := TransferFilter{
		Kind:     q.Get("filter"),
		Start:    q.Get("start"),
		End:      q.Get("end"),
		Driver:   q.Get("driver"),
		Location: q.Get("location"),
		IsFrom:   q.Get("direction") != "to",
	}
	if f.Kind == "" {
		f.Kind = FilterAll
	}
	if f.Start == "" {
		f.Start = now.AddDate(0, 0, -DefaultRangeDays).Format(DateLayout)
	}
	if f.End == "" {
		f.End = now.Format(DateLayout)
	}

	switch f.Kind {
	case FilterAll:
	case FilterDate:
		start, err := time.Parse(DateLayout, f.Start)
		if err != nil {
			return f, fmt.Errorf("invalid start date %q", f.Start)
		}
		end, err := time.Parse(DateLayout, f.End)
		if err != nil {
			return f, fmt.Errorf("invalid end date %q", f.End)
		}
		if end.Before(start) {
			return f, fmt.Errorf("end date is before start date")
		}
	case FilterDriver:
		if f.Driver == "" {
			return f, fmt.Errorf("driver is required")
		}
	case FilterLocation:
		if !IsLocation(f.Location) {
			return f, fmt.Errorf("invalid location %q", f.Location)
		}
	default:
		return f, fmt.Errorf("unknown filter %q", f.Kind)
	}
	return f, nil
}

// Query encodes the filter back into query parameters.
func (f TransferFilter) Query() url.Values {
	q := url.Values{}
	q.Set("filter", f.Kind)
	switch f.Kind {
	case FilterDate:
		q.Set("start", f.Start)
		q.Set("end", f.End)
	case FilterDriver:
		q.Set("driver", f.Driver)
	case FilterLocation:
		q.Set("location", f.Location)
		if f.IsFrom {
			q.Set("direction", "from")
		} else {
			q.Set("direction", "to")
		}
	}
	return q
}
