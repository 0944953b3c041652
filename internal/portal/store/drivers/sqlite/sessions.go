package sqlite

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/fastlan/portal/internal/portal/domain"
	"github.com/fastlan/portal/internal/portal/store"
)

type sessionsRepo struct {
	db dbtx
}

func (r *sessionsRepo) CreateSession(ctx context.Context, s domain.Session) error {
	now := time.Now().UTC()
	if s.CreatedAt.IsZero() {
		s.CreatedAt = now
	}
	if s.UpdatedAt.IsZero() {
		s.UpdatedAt = now
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO sessions (id, token_hash, state, user_id, email, full_name, role, login_time, expires_at, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		s.ID, s.TokenHash, string(s.State), s.UserID, s.Email, s.FullName,
		string(s.Role), mapOptionalTime(s.LoginTime), s.ExpiresAt.UTC(), s.CreatedAt, s.UpdatedAt,
	)
	if err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed") {
		return store.ErrAlreadyExists
	}
	return err
}

func (r *sessionsRepo) GetSessionByTokenHash(ctx context.Context, tokenHash string) (domain.Session, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, token_hash, state, user_id, email, full_name, role, login_time, expires_at, created_at, updated_at
		 FROM sessions WHERE token_hash = ?`,
		tokenHash,
	)

	var s domain.Session
	var state, role string
	var loginTime sql.NullTime

	err := row.Scan(
		&s.ID, &s.TokenHash, &state, &s.UserID, &s.Email, &s.FullName,
		&role, &loginTime, &s.ExpiresAt, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return domain.Session{}, mapNotFound(err)
	}

	s.State = domain.SessionState(state)
	s.Role = domain.Role(role)
	s.LoginTime = mapNullTimePtr(loginTime)
	return s, nil
}

func (r *sessionsRepo) PromoteSession(ctx context.Context, id string, loginTime time.Time) error {
	// Guarded on the pending state so a session can only be promoted once.
	res, err := r.db.ExecContext(ctx,
		`UPDATE sessions SET state = ?, login_time = ?, updated_at = ? WHERE id = ? AND state = ?`,
		string(domain.SessionStateAuthenticated), loginTime.UTC(), time.Now().UTC(),
		id, string(domain.SessionStatePendingMFA),
	)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *sessionsRepo) DeleteSession(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, id)
	return err
}

func (r *sessionsRepo) DeleteExpiredSessions(ctx context.Context, now time.Time) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE expires_at <= ?`, now.UTC())
	return err
}
