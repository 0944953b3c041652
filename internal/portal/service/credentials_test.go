package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/fastlan/portal/internal/portal/domain"
)

func TestVerifyCredentials(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	user := seedUser(t, st, "alice@fastlan.local", "Str0ngPass!", domain.RoleMember, true)

	svc := &CredentialService{Store: st, Audit: &AuditService{Store: st}}

	t.Run("accepts correct credentials", func(t *testing.T) {
		pv, err := svc.Verify(ctx, "alice@fastlan.local", "Str0ngPass!")
		require.NoError(t, err)
		require.Equal(t, user.ID, pv.UserID)
		require.Equal(t, user.Email, pv.Email)
		require.Equal(t, domain.RoleMember, pv.Role)
	})

	t.Run("rejects unknown email", func(t *testing.T) {
		_, err := svc.Verify(ctx, "nobody@fastlan.local", "Str0ngPass!")
		require.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("rejects wrong password", func(t *testing.T) {
		_, err := svc.Verify(ctx, "alice@fastlan.local", "wrong")
		require.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("unknown email and wrong password are indistinguishable", func(t *testing.T) {
		_, errUnknown := svc.Verify(ctx, "nobody@fastlan.local", "whatever")
		_, errWrong := svc.Verify(ctx, "alice@fastlan.local", "whatever")
		require.Equal(t, errUnknown, errWrong)
	})
}

func TestVerifyCredentialsUnapprovedAccount(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	seedUser(t, st, "bob@fastlan.local", "Str0ngPass!", domain.RoleMember, false)

	svc := &CredentialService{Store: st, Audit: &AuditService{Store: st}}

	t.Run("rejects correct password while pending approval", func(t *testing.T) {
		_, err := svc.Verify(ctx, "bob@fastlan.local", "Str0ngPass!")
		require.ErrorIs(t, err, ErrAccountNotApproved)
	})

	t.Run("approval outcome does not depend on the password", func(t *testing.T) {
		_, err := svc.Verify(ctx, "bob@fastlan.local", "wrong")
		require.ErrorIs(t, err, ErrAccountNotApproved)
	})
}
