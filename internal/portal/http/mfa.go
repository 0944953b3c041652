package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/fastlan/portal/internal/portal/domain"
	"github.com/fastlan/portal/internal/portal/service"
	"github.com/fastlan/portal/internal/portal/store"
	"github.com/fastlan/portal/pkg/httpx"
	"github.com/fastlan/portal/pkg/slogx"
)

// MFAHandler handles code verification and resend for pending sessions.
type MFAHandler struct {
	MFA      *service.MFAService
	Sessions *service.SessionService
}

// HandleVerify handles POST /v1/auth/mfa/verify. The decision is made
// entirely by the MFA service from the server-held session and the submitted
// code; the request body is decoded into a struct holding only the code, so
// no extra field (an "already verified" flag, for instance) can short-circuit
// verification.
func (h *MFAHandler) HandleVerify(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	sess, err := h.Sessions.Lookup(ctx, sessionToken(r))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			httpx.WriteError(w, http.StatusUnauthorized, "not_authenticated", "No login in progress.")
			return
		}
		log.Error("session lookup failed", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "server_error", "System error. Please try again.")
		return
	}

	var req verifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON body")
		return
	}

	authenticated, err := h.MFA.Verify(ctx, sess, req.Code)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrSessionStateMismatch):
			httpx.WriteError(w, http.StatusConflict, "session_state_mismatch",
				"No verification is pending for this session.")
		case errors.Is(err, service.ErrMalformedCode):
			httpx.WriteError(w, http.StatusBadRequest, "malformed_code",
				"Invalid code format. Please enter 4 digits.")
		case errors.Is(err, service.ErrExpiredOrUnknownCode):
			httpx.WriteError(w, http.StatusBadRequest, "expired_or_unknown_code",
				"Invalid or expired code.")
		case errors.Is(err, service.ErrInvalidCode):
			httpx.WriteError(w, http.StatusBadRequest, "invalid_code",
				"Invalid or expired code.")
		default:
			log.Error("code verification failed", "user_id", sess.UserID, "err", err)
			httpx.WriteError(w, http.StatusInternalServerError, "server_error", "System error. Please try again.")
		}
		return
	}

	httpx.WriteJSON(w, http.StatusOK, verifyResponse{
		Message:  "Verification successful",
		Redirect: redirectFor(authenticated.Role),
	})
}

// HandleResend handles POST /v1/auth/mfa/resend. Valid only while the
// session is pending; fully replaces the outstanding code with a fresh TTL.
func (h *MFAHandler) HandleResend(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	sess, err := h.Sessions.Lookup(ctx, sessionToken(r))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			httpx.WriteError(w, http.StatusUnauthorized, "not_authenticated", "No login in progress.")
			return
		}
		log.Error("session lookup failed", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "server_error", "System error. Please try again.")
		return
	}

	code, err := h.MFA.Resend(ctx, sess)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrSessionStateMismatch):
			httpx.WriteError(w, http.StatusConflict, "session_state_mismatch",
				"No verification is pending for this session.")
		case errors.Is(err, service.ErrDeliveryFailure):
			httpx.WriteError(w, http.StatusBadGateway, "delivery_failure",
				"Failed to send new verification code. Please try again.")
		default:
			log.Error("code resend failed", "user_id", sess.UserID, "err", err)
			httpx.WriteError(w, http.StatusInternalServerError, "server_error", "System error. Please try again.")
		}
		return
	}

	httpx.WriteJSON(w, http.StatusOK, resendResponse{
		Message:   "A new verification code has been sent to your email.",
		ExpiresIn: int(time.Until(code.ExpiresAt).Seconds()),
	})
}

// redirectFor maps a role to its landing page after authentication.
func redirectFor(role domain.Role) string {
	if role == domain.RoleAdmin {
		return "/admin"
	}
	return "/dashboard"
}
