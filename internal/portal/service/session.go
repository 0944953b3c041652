package service

import (
	"context"
	"errors"
	"time"

	"github.com/fastlan/portal/internal/portal/domain"
	"github.com/fastlan/portal/internal/portal/store"
	"github.com/fastlan/portal/pkg/cryptox"
	"github.com/fastlan/portal/pkg/idx"
	"github.com/fastlan/portal/pkg/slogx"
)

// DefaultSessionTTL is the absolute lifetime of a session row, pending or
// authenticated.
const DefaultSessionTTL = time.Hour

// SessionService is the boundary the rest of the portal talks to: it mints
// opaque session tokens, answers "what is this request authorized to do",
// and discards sessions on logout. Only the SHA-256 fingerprint of a token
// is ever stored.
type SessionService struct {
	Store store.Store
	Audit *AuditService
	TTL   time.Duration    // 0 means DefaultSessionTTL
	Now   func() time.Time // nil means time.Now
}

// BeginPending creates a pending_mfa session for a password-verified user
// and returns the opaque token the client will hold.
func (s *SessionService) BeginPending(ctx context.Context, pv domain.PasswordVerified) (string, domain.Session, error) {
	token, err := cryptox.GenerateToken(cryptox.TokenSize256)
	if err != nil {
		return "", domain.Session{}, err
	}

	now := s.now()
	sess := domain.Session{
		ID:        idx.New().String(),
		TokenHash: cryptox.FingerprintToken(token),
		State:     domain.SessionStatePendingMFA,
		UserID:    pv.UserID,
		Email:     pv.Email,
		FullName:  pv.FullName,
		Role:      pv.Role,
		ExpiresAt: now.Add(s.ttl()),
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.Store.Sessions().CreateSession(ctx, sess); err != nil {
		return "", domain.Session{}, err
	}
	return token, sess, nil
}

// Lookup resolves a token to its server-held session. Unknown tokens and
// sessions past their absolute timeout both come back as store.ErrNotFound,
// which callers treat as Anonymous.
func (s *SessionService) Lookup(ctx context.Context, token string) (domain.Session, error) {
	if token == "" {
		return domain.Session{}, store.ErrNotFound
	}

	sess, err := s.Store.Sessions().GetSessionByTokenHash(ctx, cryptox.FingerprintToken(token))
	if err != nil {
		return domain.Session{}, err
	}

	if sess.Expired(s.now()) {
		if err := s.Store.Sessions().DeleteSession(ctx, sess.ID); err != nil {
			slogx.FromContext(ctx).Error("failed to delete expired session", "session_id", sess.ID, "err", err)
		}
		return domain.Session{}, store.ErrNotFound
	}
	return sess, nil
}

// Logout discards the token's server-side record entirely, pending or
// authenticated. Logging out an unknown token is a no-op.
func (s *SessionService) Logout(ctx context.Context, token string) error {
	sess, err := s.Lookup(ctx, token)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil
		}
		return err
	}

	if err := s.Store.Sessions().DeleteSession(ctx, sess.ID); err != nil {
		return err
	}

	if sess.State == domain.SessionStateAuthenticated {
		s.Audit.Record(ctx, domain.AuditLogout, sess.UserID, sess.Email, "")
	}
	return nil
}

// SessionTTL reports the configured absolute session lifetime, for cookie
// expiry alignment.
func (s *SessionService) SessionTTL() time.Duration {
	return s.ttl()
}

func (s *SessionService) ttl() time.Duration {
	if s.TTL > 0 {
		return s.TTL
	}
	return DefaultSessionTTL
}

func (s *SessionService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}
