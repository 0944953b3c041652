package service

import (
	"context"
	"time"

	"github.com/fastlan/portal/internal/portal/domain"
	"github.com/fastlan/portal/internal/portal/store"
	"github.com/fastlan/portal/pkg/idx"
	"github.com/fastlan/portal/pkg/slogx"
)

// AuditService appends authentication outcomes to the audit sink. Writes are
// best-effort: a failed append is logged but never fails the calling
// operation, since the auth decision has already been made.
type AuditService struct {
	Store store.Store
}

// Record writes one audit event. userID may be empty when no account
// matched the attempt. detail must never contain a password.
func (s *AuditService) Record(ctx context.Context, action, userID, email, detail string) {
	event := domain.AuditEvent{
		ID:        idx.New().String(),
		UserID:    userID,
		Email:     email,
		Action:    action,
		Detail:    detail,
		CreatedAt: time.Now().UTC(),
	}

	if err := s.Store.AuditEvents().AppendAuditEvent(ctx, event); err != nil {
		slogx.FromContext(ctx).Error("failed to append audit event",
			"action", action, "email", email, "err", err)
	}
}
