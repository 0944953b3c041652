package service

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/fastlan/portal/internal/portal/domain"
	"github.com/fastlan/portal/pkg/cryptox"
)

func TestEnsureAdmin(t *testing.T) {
	ctx := context.Background()
	cryptox.SetPepperPath(filepath.Join(t.TempDir(), "pepper"))

	t.Run("seeds an approved admin on an empty database", func(t *testing.T) {
		st := newTestStore(t)
		svc := &BootstrapService{
			Store:         st,
			AdminEmail:    "admin@fastlan.local",
			AdminPassword: "Bootstrap1!",
			AdminName:     "Portal Administrator",
		}

		require.NoError(t, svc.EnsureAdmin(ctx))

		admin, err := st.Users().GetUserByEmail(ctx, "admin@fastlan.local")
		require.NoError(t, err)
		require.Equal(t, domain.RoleAdmin, admin.Role)
		require.True(t, admin.Approved)
		require.NoError(t, cryptox.VerifyPassword("Bootstrap1!", admin.PasswordHash))

		// Second startup is a no-op.
		require.NoError(t, svc.EnsureAdmin(ctx))
		empty, err := st.Users().IsEmpty(ctx)
		require.NoError(t, err)
		require.False(t, empty)
	})

	t.Run("skips when users already exist", func(t *testing.T) {
		st := newTestStore(t)
		seedUser(t, st, "existing@fastlan.local", "Str0ngPass!", domain.RoleMember, true)

		svc := &BootstrapService{
			Store:         st,
			AdminEmail:    "admin@fastlan.local",
			AdminPassword: "Bootstrap1!",
		}
		require.NoError(t, svc.EnsureAdmin(ctx))

		_, err := st.Users().GetUserByEmail(ctx, "admin@fastlan.local")
		require.Error(t, err)
	})

	t.Run("skips when credentials are not configured", func(t *testing.T) {
		st := newTestStore(t)
		svc := &BootstrapService{Store: st}
		require.NoError(t, svc.EnsureAdmin(ctx))

		empty, err := st.Users().IsEmpty(ctx)
		require.NoError(t, err)
		require.True(t, empty)
	})
}
