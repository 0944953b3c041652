package service

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"fmt"
	"math/big"
	"regexp"
	"sync"
	"time"

	"github.com/fastlan/portal/internal/portal/domain"
	"github.com/fastlan/portal/internal/portal/notify"
	"github.com/fastlan/portal/internal/portal/store"
	"github.com/fastlan/portal/pkg/idx"
	"github.com/fastlan/portal/pkg/slogx"
)

const (
	// CodeDigits is the width of a one-time code.
	CodeDigits = 4

	// CodePrefix is prepended for display only. It is never part of the
	// stored or submitted code value.
	CodePrefix = "FAST-"

	// DefaultCodeTTL is the validity window of an issued code.
	DefaultCodeTTL = 600 * time.Second

	// DefaultNotifyTimeout bounds one delivery attempt.
	DefaultNotifyTimeout = 10 * time.Second
)

var (
	ErrCodeStorageFailure   = errors.New("code_storage_failure")
	ErrDeliveryFailure      = errors.New("delivery_failure")
	ErrMalformedCode        = errors.New("malformed_code")
	ErrExpiredOrUnknownCode = errors.New("expired_or_unknown_code")
	ErrInvalidCode          = errors.New("invalid_code")
	ErrSessionStateMismatch = errors.New("session_state_mismatch")
)

var codePattern = regexp.MustCompile(`^[0-9]{4}$`)

// MFAService owns the second authentication factor: issuing one-time codes,
// delivering them through the Notifier, and consuming them. It guarantees at
// most one live code per user and at-most-once consumption.
type MFAService struct {
	Store         store.Store
	Notifier      notify.Notifier
	Audit         *AuditService
	CodeTTL       time.Duration    // 0 means DefaultCodeTTL
	NotifyTimeout time.Duration    // 0 means DefaultNotifyTimeout
	Now           func() time.Time // nil means time.Now; tests override this

	// Serializes issuance per user so two concurrent logins (or login plus
	// resend) cannot leave two live codes behind.
	locks sync.Map
}

// FormatCode renders a code for display, e.g. "FAST-0042". The prefix is
// cosmetic and must never be submitted or parsed as part of the code.
func FormatCode(code string) string {
	return CodePrefix + code
}

// Issue mints a fresh code for a password-verified user, replacing any prior
// code, and delivers it by mail. On delivery failure the fresh code is rolled
// back so the user is never left with a pending state that cannot complete.
func (s *MFAService) Issue(ctx context.Context, pv domain.PasswordVerified) (domain.OneTimeCode, error) {
	return s.issue(ctx, pv, domain.AuditMFASent)
}

// Resend replaces the outstanding code with a new one and a fresh TTL. It is
// only valid while the session is pending; it never extends the old window.
func (s *MFAService) Resend(ctx context.Context, sess domain.Session) (domain.OneTimeCode, error) {
	if sess.State != domain.SessionStatePendingMFA {
		return domain.OneTimeCode{}, ErrSessionStateMismatch
	}
	return s.issue(ctx, domain.PasswordVerified{
		UserID:   sess.UserID,
		Email:    sess.Email,
		FullName: sess.FullName,
		Role:     sess.Role,
	}, domain.AuditMFAResent)
}

func (s *MFAService) issue(ctx context.Context, pv domain.PasswordVerified, auditAction string) (domain.OneTimeCode, error) {
	l := slogx.FromContext(ctx)

	mu := s.userLock(pv.UserID)
	mu.Lock()
	defer mu.Unlock()

	code, err := generateCode()
	if err != nil {
		return domain.OneTimeCode{}, fmt.Errorf("failed to generate code: %w", err)
	}

	now := s.now()
	record := domain.OneTimeCode{
		ID:        idx.New().String(),
		UserID:    pv.UserID,
		Code:      code,
		IssuedAt:  now,
		ExpiresAt: now.Add(s.codeTTL()),
	}

	// Delete-then-insert in one transaction keeps the at-most-one-live-code
	// invariant even if the process dies between the two statements.
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Codes().DeleteCodesForUser(ctx, pv.UserID); err != nil {
			return err
		}
		return tx.Codes().CreateCode(ctx, record)
	})
	if err != nil {
		l.Error("failed to store one-time code", "user_id", pv.UserID, "err", err)
		s.Audit.Record(ctx, domain.AuditMFAStoreFailed, pv.UserID, pv.Email, "")
		return domain.OneTimeCode{}, ErrCodeStorageFailure
	}

	sendCtx, cancel := context.WithTimeout(ctx, s.notifyTimeout())
	defer cancel()

	body := notify.CodeEmail(pv.FullName, FormatCode(code), s.codeTTL())
	if err := s.Notifier.Send(sendCtx, pv.Email, notify.CodeEmailSubject, body); err != nil {
		l.Warn("code delivery failed", "user_id", pv.UserID, "err", err)

		// The code was never deliverable; remove it rather than leave a
		// pending state the user cannot complete.
		if derr := s.Store.Codes().DeleteCodesForUser(ctx, pv.UserID); derr != nil {
			l.Error("failed to roll back undelivered code", "user_id", pv.UserID, "err", derr)
		}
		s.Audit.Record(ctx, domain.AuditMFASendFailed, pv.UserID, pv.Email, "")
		return domain.OneTimeCode{}, ErrDeliveryFailure
	}

	s.Audit.Record(ctx, auditAction, pv.UserID, pv.Email, "code "+FormatCode(code))
	return record, nil
}

// Verify decides acceptance of a submitted code. The outcome is a pure
// function of the stored code row for the session's user, the submitted code
// string, and the current time; no other caller-supplied value is consulted.
// On success the code is consumed and the session promoted to authenticated,
// both inside one transaction.
func (s *MFAService) Verify(ctx context.Context, sess domain.Session, code string) (domain.Session, error) {
	if sess.State != domain.SessionStatePendingMFA {
		// No code lookup happens for a session in the wrong state.
		return domain.Session{}, ErrSessionStateMismatch
	}

	if !codePattern.MatchString(code) {
		return domain.Session{}, ErrMalformedCode
	}

	now := s.now()
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		stored, err := tx.Codes().GetLiveCodeForUser(ctx, sess.UserID, now)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrExpiredOrUnknownCode
			}
			return err
		}

		if subtle.ConstantTimeCompare([]byte(code), []byte(stored.Code)) != 1 {
			return ErrInvalidCode
		}

		// ConsumeCode is guarded on used=0; a concurrent submission that
		// lost the race surfaces here as ErrNotFound.
		if err := tx.Codes().ConsumeCode(ctx, stored.ID); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrExpiredOrUnknownCode
			}
			return err
		}

		if err := tx.Sessions().PromoteSession(ctx, sess.ID, now); err != nil {
			return err
		}
		return tx.Users().UpdateLastLogin(ctx, sess.UserID, now)
	})

	switch {
	case err == nil:
		s.Audit.Record(ctx, domain.AuditMFASuccess, sess.UserID, sess.Email, "")
	case errors.Is(err, ErrInvalidCode), errors.Is(err, ErrExpiredOrUnknownCode):
		s.Audit.Record(ctx, domain.AuditMFAFailed, sess.UserID, sess.Email, "code "+code)
	}
	if err != nil {
		return domain.Session{}, err
	}

	authenticated := sess
	authenticated.State = domain.SessionStateAuthenticated
	authenticated.LoginTime = &now
	authenticated.UpdatedAt = now
	return authenticated, nil
}

// PendingExpiry returns when the user's outstanding code expires, for TTL
// display on the code-entry page. Returns store.ErrNotFound when no live
// code exists.
func (s *MFAService) PendingExpiry(ctx context.Context, userID string) (time.Time, error) {
	stored, err := s.Store.Codes().GetLiveCodeForUser(ctx, userID, s.now())
	if err != nil {
		return time.Time{}, err
	}
	return stored.ExpiresAt, nil
}

func (s *MFAService) userLock(userID string) *sync.Mutex {
	v, _ := s.locks.LoadOrStore(userID, &sync.Mutex{})
	return v.(*sync.Mutex)
}

func (s *MFAService) codeTTL() time.Duration {
	if s.CodeTTL > 0 {
		return s.CodeTTL
	}
	return DefaultCodeTTL
}

func (s *MFAService) notifyTimeout() time.Duration {
	if s.NotifyTimeout > 0 {
		return s.NotifyTimeout
	}
	return DefaultNotifyTimeout
}

func (s *MFAService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

// generateCode draws a uniformly random value in [0, 10^CodeDigits) and
// renders it zero-padded.
func generateCode() (string, error) {
	limit := big.NewInt(1)
	for range CodeDigits {
		limit.Mul(limit, big.NewInt(10))
	}

	n, err := rand.Int(rand.Reader, limit)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%0*d", CodeDigits, n), nil
}
