package domain

import "time"

// Audit actions, mirroring the portal's activity log vocabulary.
const (
	AuditLoginFailed      = "LOGIN_FAILED"
	AuditAccountNotFound  = "LOGIN_USER_NOT_FOUND"
	AuditAccountPending   = "LOGIN_NOT_APPROVED"
	AuditPasswordVerified = "LOGIN_PASSWORD_OK"
	AuditMFASent          = "MFA_SENT"
	AuditMFAResent        = "MFA_RESENT"
	AuditMFAStoreFailed   = "MFA_STORE_FAILED"
	AuditMFASendFailed    = "MFA_SEND_FAILED"
	AuditMFASuccess       = "MFA_SUCCESS"
	AuditMFAFailed        = "MFA_FAILED"
	AuditLogout           = "LOGOUT"
)

// AuditEvent is an append-only record of an authentication outcome. Detail
// never contains a password; code values are permitted since they are
// single-use and expire within minutes.
type AuditEvent struct {
	ID        string
	UserID    string // empty when no account matched
	Email     string
	Action    string
	Detail    string
	CreatedAt time.Time
}
