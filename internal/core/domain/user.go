package domain

import (
	"errors"
	"time"
)

const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// Preference keys consumed by the rate resolver.
const (
	PrefHourlyRate   = "hourly_rate"
	PrefInternalRate = "internal_rate"
)

var ErrUserNotFound = errors.New("user not found")
var ErrUserExists = errors.New("user already exists")
var ErrInvalidCredentials = errors.New("invalid credentials")
var ErrPreferenceNotFound = errors.New("preference not found")

// User models an authenticated actor owning timesheet entries.
type User struct {
	ID           string `json:"id"`
	Username     string `json:"username"`
	Email        string `json:"email,omitempty"`
	PasswordHash string `json:"-"`
	Role         string `json:"role"`
	// Timezone is the IANA name of the user's display timezone, e.g.
	// "Europe/Berlin". Lockdown boundaries are rendered in this zone.
	Timezone  string    `json:"timezone"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Location resolves the user's timezone, falling back to UTC when the
// configured name is empty or invalid.
func (u *User) Location() *time.Location {
	if u == nil || u.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(u.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
