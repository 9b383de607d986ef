package notify

import (
	"fmt"

	"github.com/erazemk/transferlog/internal/model"
)

// Directory maps each location to the address its manager is reached at.
type Directory map[string]string

// Resolve returns the contact address of location. A known location with no
// address is a deployment problem and yields ErrNoContact, not
// ErrUnknownLocation.
func (d Directory) Resolve(location string) (string, error) {
	if location == "" {
		return "", ErrMissingLocation
	}
	if !model.IsLocation(location) {
		return "", ErrUnknownLocation
	}
	addr := d[location]
	if addr == "" {
		return "", fmt.Errorf("%w for %s", ErrNoContact, location)
	}
	return addr, nil
}
