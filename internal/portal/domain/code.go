package domain

import "time"

// OneTimeCode is a short-lived numeric login code delivered out-of-band.
// At most one live (unused, unexpired) code exists per user: issuing a new
// code replaces any prior row, and consumption flips the Used tombstone
// rather than deleting the row.
type OneTimeCode struct {
	ID        string
	UserID    string
	Code      string // fixed-width numeric string, e.g. "0042"
	Used      bool
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Live reports whether the code can still be consumed at the given instant.
// A code is live strictly while now < ExpiresAt.
func (c OneTimeCode) Live(now time.Time) bool {
	return !c.Used && now.Before(c.ExpiresAt)
}
