package service

import (
	"context"
	"errors"

	"github.com/fastlan/portal/internal/portal/domain"
	"github.com/fastlan/portal/internal/portal/store"
	"github.com/fastlan/portal/pkg/cryptox"
	"github.com/fastlan/portal/pkg/slogx"
)

var (
	// ErrInvalidCredentials covers both unknown email and wrong password.
	// The two cases are never distinguished to the caller, so the login
	// form cannot be used to enumerate accounts.
	ErrInvalidCredentials = errors.New("invalid_credentials")

	// ErrAccountNotApproved means the account exists but is still waiting
	// for admin approval.
	ErrAccountNotApproved = errors.New("account_not_approved")
)

// CredentialService performs the first authentication factor: email and
// password against the user table.
type CredentialService struct {
	Store store.Store
	Audit *AuditService
}

// Verify checks email and password. Outcomes in priority order: unknown
// email -> ErrInvalidCredentials; account not approved ->
// ErrAccountNotApproved (the password is not checked, so this outcome
// cannot reveal whether it was correct); wrong password ->
// ErrInvalidCredentials; otherwise the PasswordVerified result that the MFA
// issuer consumes.
func (s *CredentialService) Verify(ctx context.Context, email, password string) (domain.PasswordVerified, error) {
	l := slogx.FromContext(ctx)

	user, err := s.Store.Users().GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			s.Audit.Record(ctx, domain.AuditLoginFailed, "", email, "unknown email")
			return domain.PasswordVerified{}, ErrInvalidCredentials
		}
		return domain.PasswordVerified{}, err
	}

	if !user.Approved {
		s.Audit.Record(ctx, domain.AuditAccountPending, user.ID, user.Email, "account not approved")
		return domain.PasswordVerified{}, ErrAccountNotApproved
	}

	if err := cryptox.VerifyPassword(password, user.PasswordHash); err != nil {
		if !errors.Is(err, cryptox.ErrPasswordMismatch) {
			// Malformed stored hash; log it but present the same outcome
			// as a wrong password.
			l.Error("password hash verification error", "user_id", user.ID, "err", err)
		}
		s.Audit.Record(ctx, domain.AuditLoginFailed, user.ID, user.Email, "invalid password")
		return domain.PasswordVerified{}, ErrInvalidCredentials
	}

	s.Audit.Record(ctx, domain.AuditPasswordVerified, user.ID, user.Email, "")
	return domain.PasswordVerified{
		UserID:   user.ID,
		Email:    user.Email,
		FullName: user.FullName,
		Role:     user.Role,
	}, nil
}
