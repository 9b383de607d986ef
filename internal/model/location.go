package model

// Locations a unit can move between.
const (
	LocationLakewood  = "Lakewood"
	LocationLongmont  = "Longmont"
	LocationFountain  = "Fountain"
	LocationAirstream = "Airstream"
	LocationStorage   = "Storage"
)

// Locations lists every known location in display order.
var Locations = []string{
	LocationLakewood,
	LocationLongmont,
	LocationFountain,
	LocationAirstream,
	LocationStorage,
}

// DefaultDrivers is the driver roster offered when none is configured.
var DefaultDrivers = []string{"Bobby", "John", "Austin", "Robert"}

// IsLocation reports whether name is one of the known locations.
func IsLocation(name string) bool {
	for _, l := range Locations {
		if l == name {
			return true
		}
	}
	return false
}

// ValidRoute reports whether a unit may move from one location to another.
// A location cannot send to itself, except that Storage may hand off within
// storage.
func ValidRoute(from, to string) bool {
	if !IsLocation(from) || !IsLocation(to) {
		return false
	}
	return from != to || from == LocationStorage
}

// Destinations returns the locations that may receive a unit sent from.
func Destinations(from string) []string {
	var out []string
	for _, l := range Locations {
		if ValidRoute(from, l) {
			out = append(out, l)
		}
	}
	return out
}
