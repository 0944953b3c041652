package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/fastlan/portal/internal/portal/domain"
	"github.com/fastlan/portal/internal/portal/store"
)

func newSessionService(st store.Store) *SessionService {
	return &SessionService{Store: st, Audit: &AuditService{Store: st}}
}

func TestBeginPendingAndLookup(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	user := seedUser(t, st, "alice@fastlan.local", "Str0ngPass!", domain.RoleMember, true)

	svc := newSessionService(st)

	token, sess, err := svc.BeginPending(ctx, passwordVerified(user))
	require.NoError(t, err)
	require.NotEmpty(t, token)
	require.Equal(t, domain.SessionStatePendingMFA, sess.State)
	require.Nil(t, sess.LoginTime)

	t.Run("token resolves to the session", func(t *testing.T) {
		found, err := svc.Lookup(ctx, token)
		require.NoError(t, err)
		require.Equal(t, sess.ID, found.ID)
		require.Equal(t, user.ID, found.UserID)
	})

	t.Run("raw token is never stored", func(t *testing.T) {
		require.NotEqual(t, token, sess.TokenHash)
		require.NotContains(t, sess.TokenHash, token)
	})

	t.Run("unknown token is anonymous", func(t *testing.T) {
		_, err := svc.Lookup(ctx, "not-a-real-token")
		require.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("empty token is anonymous", func(t *testing.T) {
		_, err := svc.Lookup(ctx, "")
		require.ErrorIs(t, err, store.ErrNotFound)
	})
}

func TestLookupExpiredSession(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	user := seedUser(t, st, "alice@fastlan.local", "Str0ngPass!", domain.RoleMember, true)

	start := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	svc := newSessionService(st)
	svc.Now = func() time.Time { return start }

	token, sess, err := svc.BeginPending(ctx, passwordVerified(user))
	require.NoError(t, err)

	// Step past the absolute timeout; the session is gone regardless of state.
	svc.Now = func() time.Time { return start.Add(DefaultSessionTTL) }
	_, err = svc.Lookup(ctx, token)
	require.ErrorIs(t, err, store.ErrNotFound)

	// The expired row was removed, not just hidden.
	_, err = st.Sessions().GetSessionByTokenHash(ctx, sess.TokenHash)
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestLogout(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	user := seedUser(t, st, "alice@fastlan.local", "Str0ngPass!", domain.RoleMember, true)

	svc := newSessionService(st)

	token, _, err := svc.BeginPending(ctx, passwordVerified(user))
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, token))

	_, err = svc.Lookup(ctx, token)
	require.ErrorIs(t, err, store.ErrNotFound)

	t.Run("logout is idempotent", func(t *testing.T) {
		require.NoError(t, svc.Logout(ctx, token))
		require.NoError(t, svc.Logout(ctx, ""))
		require.NoError(t, svc.Logout(ctx, "unknown"))
	})
}

func TestSessionTTLDefault(t *testing.T) {
	svc := &SessionService{}
	require.Equal(t, DefaultSessionTTL, svc.SessionTTL())

	svc.TTL = 30 * time.Minute
	require.Equal(t, 30*time.Minute, svc.SessionTTL())
}
