package model

import (
	"strings"
	"time"
)

// AddedBySystem marks admins granted by bootstrap rather than by another admin.
const AddedBySystem = "System Initialization"

// Admin is an identity granted access to the admin dashboard.
type Admin struct {
	ID             string    `json:"id"`
	Email          string    `json:"email"`
	Name           string    `json:"name,omitempty"`
	AddedBy        string    `json:"addedBy"`
	AddedAt        time.Time `json:"addedAt"`
	IsInitialAdmin bool      `json:"isInitialAdmin"`
}

// NormalizeEmail lower-cases and trims an email so it can be used as a key.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
