// Package idx generates the lexicographically sortable identifiers used for
// every stored record.
package idx

import (
	"crypto/rand"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// ErrInvalid reports a malformed identifier.
var ErrInvalid = errors.New("idx: invalid ulid")

var (
	mu      sync.Mutex
	once    sync.Once
	entropy *ulid.MonotonicEntropy
)

// New returns a new ULID for the current time.
func New() string {
	return NewAt(time.Now().UTC())
}

// NewAt returns a ULID whose timestamp component is t. IDs generated in the
// same millisecond are strictly increasing.
func NewAt(t time.Time) string {
	once.Do(func() { entropy = ulid.Monotonic(rand.Reader, 0) })

	mu.Lock()
	defer mu.Unlock()
	return ulid.MustNew(ulid.Timestamp(t), entropy).String()
}

// Parse validates s as a ULID and returns it in canonical form.
func Parse(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", ErrInvalid
	}
	u, err := ulid.ParseStrict(s)
	if err != nil {
		return "", ErrInvalid
	}
	return u.String(), nil
}

// Time extracts the timestamp embedded in id, or the zero time if id is invalid.
func Time(id string) time.Time {
	u, err := ulid.ParseStrict(id)
	if err != nil {
		return time.Time{}
	}
	return ulid.Time(u.Time())
}
