package service

import (
	"context"

	"github.com/fastlan/portal/internal/portal/domain"
	"github.com/fastlan/portal/internal/portal/store"
	"github.com/fastlan/portal/pkg/cryptox"
	"github.com/fastlan/portal/pkg/idx"
	"github.com/fastlan/portal/pkg/slogx"
)

// BootstrapService seeds the first admin account on an empty database so a
// fresh deployment is reachable. Registration and approval of further users
// happen through the portal pages, outside this service.
type BootstrapService struct {
	Store         store.Store
	AdminEmail    string
	AdminPassword string
	AdminName     string
}

// EnsureAdmin creates an approved admin user when the users table is empty
// and admin credentials are configured. Safe to call on every startup.
func (s *BootstrapService) EnsureAdmin(ctx context.Context) error {
	if s.AdminEmail == "" || s.AdminPassword == "" {
		return nil
	}

	empty, err := s.Store.Users().IsEmpty(ctx)
	if err != nil {
		return err
	}
	if !empty {
		return nil
	}

	hash, err := cryptox.HashPassword(s.AdminPassword)
	if err != nil {
		return err
	}

	name := s.AdminName
	if name == "" {
		name = "System Administrator"
	}

	admin := domain.User{
		ID:           idx.New().String(),
		Email:        s.AdminEmail,
		PasswordHash: hash,
		FullName:     name,
		Department:   "IT",
		Position:     "Administrator",
		Role:         domain.RoleAdmin,
		Approved:     true,
	}
	if err := s.Store.Users().CreateUser(ctx, admin); err != nil {
		return err
	}

	slogx.FromContext(ctx).Info("seeded initial admin account", "email", s.AdminEmail)
	return nil
}
