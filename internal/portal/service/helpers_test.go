package service

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/fastlan/portal/internal/portal/domain"
	"github.com/fastlan/portal/internal/portal/store"
	"github.com/fastlan/portal/internal/portal/store/drivers/sqlite"
	"github.com/fastlan/portal/pkg/cryptox"
	"github.com/fastlan/portal/pkg/idx"
)

func newTestStore(t *testing.T) store.Store {
	t.Helper()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	require.NoError(t, st.ApplyMigrations())
	return st
}

func seedUser(t *testing.T, st store.Store, email, password string, role domain.Role, approved bool) domain.User {
	t.Helper()

	cryptox.SetPepperPath(filepath.Join(t.TempDir(), "pepper"))
	hash, err := cryptox.HashPassword(password)
	require.NoError(t, err)

	user := domain.User{
		ID:           idx.New().String(),
		Email:        email,
		PasswordHash: hash,
		FullName:     "Test User",
		Department:   "Engineering",
		Position:     "Technician",
		Role:         role,
		Approved:     approved,
	}
	require.NoError(t, st.Users().CreateUser(context.Background(), user))
	return user
}

type sentMail struct {
	to      string
	subject string
	body    string
}

// stubNotifier records deliveries in memory and can be told to fail.
type stubNotifier struct {
	mu   sync.Mutex
	sent []sentMail
	fail error
}

func (n *stubNotifier) Send(ctx context.Context, to, subject, body string) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.fail != nil {
		return n.fail
	}
	n.sent = append(n.sent, sentMail{to: to, subject: subject, body: body})
	return nil
}

func (n *stubNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.sent)
}

func (n *stubNotifier) last() sentMail {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.sent[len(n.sent)-1]
}
