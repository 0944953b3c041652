package domain

import "time"

// Role determines which dashboard a user lands on and whether admin-only
// resources are reachable.
type Role string

const (
	RoleMember Role = "member"
	RoleAdmin  Role = "admin"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleMember || r == RoleAdmin
}

// User is an identity record. The auth core reads these; they are created by
// the registration path and mutated by the admin approval flow, both of which
// live outside this service. The only write this core performs is the
// last_login bookkeeping stamp.
type User struct {
	ID           string
	Email        string
	PasswordHash string // argon2id encoded
	FullName     string
	Department   string
	Position     string
	Role         Role
	Approved     bool
	LastLogin    *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// PasswordVerified is the result of a successful credential check. It is the
// only input the MFA issuer accepts, so a code can never be minted without a
// prior password verification.
type PasswordVerified struct {
	UserID   string
	Email    string
	FullName string
	Role     Role
}
