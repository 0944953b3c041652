package sqlite

import (
	"context"
	"time"

	"github.com/fastlan/portal/internal/portal/domain"
)

type codesRepo struct {
	db dbtx
}

func (r *codesRepo) CreateCode(ctx context.Context, c domain.OneTimeCode) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO mfa_codes (id, user_id, code, used, issued_at, expires_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		c.ID, c.UserID, c.Code, c.Used, c.IssuedAt.UTC(), c.ExpiresAt.UTC(),
	)
	return err
}

func (r *codesRepo) DeleteCodesForUser(ctx context.Context, userID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM mfa_codes WHERE user_id = ?`, userID)
	return err
}

func (r *codesRepo) GetLiveCodeForUser(ctx context.Context, userID string, now time.Time) (domain.OneTimeCode, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, code, used, issued_at, expires_at
		 FROM mfa_codes
		 WHERE user_id = ? AND used = 0 AND expires_at > ?
		 ORDER BY issued_at DESC
		 LIMIT 1`,
		userID, now.UTC(),
	)

	var c domain.OneTimeCode
	if err := row.Scan(&c.ID, &c.UserID, &c.Code, &c.Used, &c.IssuedAt, &c.ExpiresAt); err != nil {
		return domain.OneTimeCode{}, mapNotFound(err)
	}
	return c, nil
}

func (r *codesRepo) ConsumeCode(ctx context.Context, id string) error {
	// The used = 0 guard makes consumption at-most-once even under
	// concurrent submissions of the same code.
	res, err := r.db.ExecContext(ctx,
		`UPDATE mfa_codes SET used = 1 WHERE id = ? AND used = 0`, id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *codesRepo) DeleteDeadCodes(ctx context.Context, now time.Time) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM mfa_codes WHERE used = 1 OR expires_at <= ?`, now.UTC())
	return err
}
