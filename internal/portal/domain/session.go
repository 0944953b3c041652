package domain

import "time"

// SessionState tracks authentication progress for one browser session.
type SessionState string

const (
	// SessionStateAnonymous is the implicit state of any request without a
	// server-held session row. It is never stored.
	SessionStateAnonymous SessionState = "anonymous"

	// SessionStatePendingMFA means the password was verified and a one-time
	// code is outstanding.
	SessionStatePendingMFA SessionState = "pending_mfa"

	// SessionStateAuthenticated means the one-time code was consumed.
	SessionStateAuthenticated SessionState = "authenticated"
)

// Session is the server-held record of authentication progress, keyed by the
// SHA-256 fingerprint of an opaque token. The client holds only the token;
// no field of this struct ever crosses to the client, so nothing the client
// sends (beyond the code itself during verification) can influence an
// authentication decision.
type Session struct {
	ID        string
	TokenHash string
	State     SessionState
	UserID    string
	Email     string
	FullName  string
	Role      Role
	LoginTime *time.Time // set when the session becomes authenticated
	ExpiresAt time.Time  // absolute session timeout
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Expired reports whether the session's absolute timeout has passed.
func (s Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}
