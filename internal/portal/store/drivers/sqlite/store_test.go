package sqlite

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/fastlan/portal/internal/portal/domain"
	"github.com/fastlan/portal/internal/portal/store"
	"github.com/fastlan/portal/pkg/idx"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	st, err := NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	require.NoError(t, st.ApplyMigrations())
	return st
}

func testUser(email string) domain.User {
	return domain.User{
		ID:           idx.New().String(),
		Email:        email,
		PasswordHash: "$argon2id$v=19$m=19456,t=2,p=1$c2FsdA$aGFzaA",
		FullName:     "Test User",
		Department:   "Engineering",
		Position:     "Technician",
		Role:         domain.RoleMember,
		Approved:     true,
	}
}

func TestUsersRepo(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)

	t.Run("empty database reports empty", func(t *testing.T) {
		empty, err := st.Users().IsEmpty(ctx)
		require.NoError(t, err)
		require.True(t, empty)
	})

	user := testUser("alice@fastlan.local")
	require.NoError(t, st.Users().CreateUser(ctx, user))

	t.Run("get by id and email", func(t *testing.T) {
		byID, err := st.Users().GetUserByID(ctx, user.ID)
		require.NoError(t, err)
		require.Equal(t, user.Email, byID.Email)
		require.Nil(t, byID.LastLogin)

		byEmail, err := st.Users().GetUserByEmail(ctx, user.Email)
		require.NoError(t, err)
		require.Equal(t, user.ID, byEmail.ID)
	})

	t.Run("missing rows map to ErrNotFound", func(t *testing.T) {
		_, err := st.Users().GetUserByID(ctx, "missing")
		require.ErrorIs(t, err, store.ErrNotFound)

		_, err = st.Users().GetUserByEmail(ctx, "missing@fastlan.local")
		require.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("duplicate email rejected", func(t *testing.T) {
		dup := testUser(user.Email)
		err := st.Users().CreateUser(ctx, dup)
		require.ErrorIs(t, err, store.ErrAlreadyExists)
	})

	t.Run("set approved", func(t *testing.T) {
		require.NoError(t, st.Users().SetApproved(ctx, user.ID, false))
		got, err := st.Users().GetUserByID(ctx, user.ID)
		require.NoError(t, err)
		require.False(t, got.Approved)

		require.NoError(t, st.Users().SetApproved(ctx, user.ID, true))
		require.ErrorIs(t, st.Users().SetApproved(ctx, "missing", true), store.ErrNotFound)
	})

	t.Run("update last login", func(t *testing.T) {
		at := time.Now().UTC()
		require.NoError(t, st.Users().UpdateLastLogin(ctx, user.ID, at))

		got, err := st.Users().GetUserByID(ctx, user.ID)
		require.NoError(t, err)
		require.NotNil(t, got.LastLogin)
		require.WithinDuration(t, at, *got.LastLogin, time.Second)
	})
}

func TestCodesRepo(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	user := testUser("alice@fastlan.local")
	require.NoError(t, st.Users().CreateUser(ctx, user))

	now := time.Now().UTC()

	t.Run("live lookup honors used flag and expiry", func(t *testing.T) {
		used := domain.OneTimeCode{
			ID: idx.New().String(), UserID: user.ID, Code: "1111", Used: true,
			IssuedAt: now, ExpiresAt: now.Add(10 * time.Minute),
		}
		expired := domain.OneTimeCode{
			ID: idx.New().String(), UserID: user.ID, Code: "2222",
			IssuedAt: now.Add(-20 * time.Minute), ExpiresAt: now.Add(-10 * time.Minute),
		}
		live := domain.OneTimeCode{
			ID: idx.New().String(), UserID: user.ID, Code: "3333",
			IssuedAt: now, ExpiresAt: now.Add(10 * time.Minute),
		}
		for _, c := range []domain.OneTimeCode{used, expired, live} {
			require.NoError(t, st.Codes().CreateCode(ctx, c))
		}

		got, err := st.Codes().GetLiveCodeForUser(ctx, user.ID, now)
		require.NoError(t, err)
		require.Equal(t, live.ID, got.ID)

		// At the expiry instant the code is no longer live.
		_, err = st.Codes().GetLiveCodeForUser(ctx, user.ID, live.ExpiresAt)
		require.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("delete for user removes every row", func(t *testing.T) {
		require.NoError(t, st.Codes().DeleteCodesForUser(ctx, user.ID))
		_, err := st.Codes().GetLiveCodeForUser(ctx, user.ID, now)
		require.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("consume is at most once", func(t *testing.T) {
		c := domain.OneTimeCode{
			ID: idx.New().String(), UserID: user.ID, Code: "4444",
			IssuedAt: now, ExpiresAt: now.Add(10 * time.Minute),
		}
		require.NoError(t, st.Codes().CreateCode(ctx, c))

		require.NoError(t, st.Codes().ConsumeCode(ctx, c.ID))
		require.ErrorIs(t, st.Codes().ConsumeCode(ctx, c.ID), store.ErrNotFound)
	})

	t.Run("delete dead codes spares live rows", func(t *testing.T) {
		live := domain.OneTimeCode{
			ID: idx.New().String(), UserID: user.ID, Code: "5555",
			IssuedAt: now, ExpiresAt: now.Add(10 * time.Minute),
		}
		require.NoError(t, st.Codes().CreateCode(ctx, live))

		require.NoError(t, st.Codes().DeleteDeadCodes(ctx, now))

		got, err := st.Codes().GetLiveCodeForUser(ctx, user.ID, now)
		require.NoError(t, err)
		require.Equal(t, live.ID, got.ID)
	})
}

func TestSessionsRepo(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	user := testUser("alice@fastlan.local")
	require.NoError(t, st.Users().CreateUser(ctx, user))

	now := time.Now().UTC()
	sess := domain.Session{
		ID:        idx.New().String(),
		TokenHash: "fingerprint-a",
		State:     domain.SessionStatePendingMFA,
		UserID:    user.ID,
		Email:     user.Email,
		FullName:  user.FullName,
		Role:      user.Role,
		ExpiresAt: now.Add(time.Hour),
		CreatedAt: now,
		UpdatedAt: now,
	}
	require.NoError(t, st.Sessions().CreateSession(ctx, sess))

	t.Run("lookup by token hash", func(t *testing.T) {
		got, err := st.Sessions().GetSessionByTokenHash(ctx, sess.TokenHash)
		require.NoError(t, err)
		require.Equal(t, sess.ID, got.ID)
		require.Equal(t, domain.SessionStatePendingMFA, got.State)
		require.Nil(t, got.LoginTime)

		_, err = st.Sessions().GetSessionByTokenHash(ctx, "unknown")
		require.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("promote only succeeds once", func(t *testing.T) {
		loginTime := time.Now().UTC()
		require.NoError(t, st.Sessions().PromoteSession(ctx, sess.ID, loginTime))

		got, err := st.Sessions().GetSessionByTokenHash(ctx, sess.TokenHash)
		require.NoError(t, err)
		require.Equal(t, domain.SessionStateAuthenticated, got.State)
		require.NotNil(t, got.LoginTime)

		// The pending-state guard makes a second promotion fail.
		require.ErrorIs(t, st.Sessions().PromoteSession(ctx, sess.ID, loginTime), store.ErrNotFound)
	})

	t.Run("delete session", func(t *testing.T) {
		require.NoError(t, st.Sessions().DeleteSession(ctx, sess.ID))
		_, err := st.Sessions().GetSessionByTokenHash(ctx, sess.TokenHash)
		require.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("delete expired sessions", func(t *testing.T) {
		expired := sess
		expired.ID = idx.New().String()
		expired.TokenHash = "fingerprint-b"
		expired.ExpiresAt = now.Add(-time.Minute)
		require.NoError(t, st.Sessions().CreateSession(ctx, expired))

		live := sess
		live.ID = idx.New().String()
		live.TokenHash = "fingerprint-c"
		live.ExpiresAt = now.Add(time.Hour)
		require.NoError(t, st.Sessions().CreateSession(ctx, live))

		require.NoError(t, st.Sessions().DeleteExpiredSessions(ctx, now))

		_, err := st.Sessions().GetSessionByTokenHash(ctx, expired.TokenHash)
		require.ErrorIs(t, err, store.ErrNotFound)

		_, err = st.Sessions().GetSessionByTokenHash(ctx, live.TokenHash)
		require.NoError(t, err)
	})
}

func TestAuditEventsRepo(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	user := testUser("alice@fastlan.local")
	require.NoError(t, st.Users().CreateUser(ctx, user))

	event := domain.AuditEvent{
		ID:        idx.New().String(),
		UserID:    user.ID,
		Email:     user.Email,
		Action:    domain.AuditMFASuccess,
		CreatedAt: time.Now().UTC(),
	}
	require.NoError(t, st.AuditEvents().AppendAuditEvent(ctx, event))

	// Events without a matching account are recorded too.
	unknown := domain.AuditEvent{
		ID:        idx.New().String(),
		Email:     "nobody@fastlan.local",
		Action:    domain.AuditLoginFailed,
		Detail:    "unknown email",
		CreatedAt: time.Now().UTC(),
	}
	require.NoError(t, st.AuditEvents().AppendAuditEvent(ctx, unknown))
}

func TestWithTxRollsBackOnError(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)

	user := testUser("alice@fastlan.local")
	boom := errors.New("boom")

	err := st.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Users().CreateUser(ctx, user); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	_, err = st.Users().GetUserByID(ctx, user.ID)
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestWithTxCommits(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)

	user := testUser("alice@fastlan.local")
	require.NoError(t, st.WithTx(ctx, func(tx store.Tx) error {
		return tx.Users().CreateUser(ctx, user)
	}))

	got, err := st.Users().GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	require.Equal(t, user.Email, got.Email)
}
