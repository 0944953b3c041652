package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/fastlan/portal/internal/portal/domain"
	"github.com/fastlan/portal/internal/portal/service"
	"github.com/fastlan/portal/internal/portal/store"
	"github.com/fastlan/portal/pkg/httpx"
	"github.com/fastlan/portal/pkg/slogx"
)

// SessionHandler is the gate the portal pages consult: it answers what the
// current request is allowed to do and where it should be redirected.
type SessionHandler struct {
	MFA      *service.MFAService
	Sessions *service.SessionService
}

// HandleCheck handles GET /v1/auth/session.
func (h *SessionHandler) HandleCheck(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	sess, err := h.Sessions.Lookup(ctx, sessionToken(r))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			httpx.WriteJSON(w, http.StatusOK, sessionResponse{
				State:    string(domain.SessionStateAnonymous),
				Redirect: "/login",
			})
			return
		}
		log.Error("session lookup failed", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "server_error", "System error. Please try again.")
		return
	}

	switch sess.State {
	case domain.SessionStatePendingMFA:
		ttl := 0
		if expiry, err := h.MFA.PendingExpiry(ctx, sess.UserID); err == nil {
			ttl = int(time.Until(expiry).Seconds())
		}
		httpx.WriteJSON(w, http.StatusOK, sessionResponse{
			State:        string(domain.SessionStatePendingMFA),
			Redirect:     "/verify",
			TTLRemaining: ttl,
		})
	case domain.SessionStateAuthenticated:
		httpx.WriteJSON(w, http.StatusOK, sessionResponse{
			State:    string(domain.SessionStateAuthenticated),
			Role:     string(sess.Role),
			Redirect: redirectFor(sess.Role),
		})
	default:
		log.Error("session row in unexpected state", "session_id", sess.ID, "state", sess.State)
		httpx.WriteError(w, http.StatusInternalServerError, "server_error", "System error. Please try again.")
	}
}

// HandleLogout handles POST /v1/auth/logout. Discards the server-side
// session record, pending or authenticated, and clears the cookie.
func (h *SessionHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := h.Sessions.Logout(ctx, sessionToken(r)); err != nil {
		slogx.FromContext(ctx).Error("logout failed", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "server_error", "System error. Please try again.")
		return
	}

	clearSessionCookie(w)
	httpx.WriteJSON(w, http.StatusOK, messageResponse{Message: "Logged out"})
}
