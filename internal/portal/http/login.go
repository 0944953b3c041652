package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/fastlan/portal/internal/portal/service"
	"github.com/fastlan/portal/pkg/httpx"
	"github.com/fastlan/portal/pkg/slogx"
)

// LoginHandler handles POST /v1/auth/login: the first factor plus code
// issuance.
type LoginHandler struct {
	Credentials *service.CredentialService
	MFA         *service.MFAService
	Sessions    *service.SessionService
}

func (h *LoginHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON body")
		return
	}
	if req.Email == "" || req.Password == "" {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "Please enter both email and password.")
		return
	}

	pv, err := h.Credentials.Verify(ctx, req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCredentials):
			httpx.WriteError(w, http.StatusUnauthorized, "invalid_credentials", "Invalid email or password.")
		case errors.Is(err, service.ErrAccountNotApproved):
			httpx.WriteError(w, http.StatusForbidden, "account_not_approved",
				"Your account is pending admin approval. Please wait for approval before logging in.")
		default:
			log.Error("credential verification failed", "err", err)
			httpx.WriteError(w, http.StatusInternalServerError, "server_error", "System error. Please try again.")
		}
		return
	}

	code, err := h.MFA.Issue(ctx, pv)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrDeliveryFailure):
			httpx.WriteError(w, http.StatusBadGateway, "delivery_failure",
				"Failed to send verification code. Please try again.")
		default:
			// Covers ErrCodeStorageFailure too: surfaced as a generic
			// system error without internal detail.
			log.Error("code issuance failed", "user_id", pv.UserID, "err", err)
			httpx.WriteError(w, http.StatusInternalServerError, "server_error", "System error. Please try again.")
		}
		return
	}

	token, _, err := h.Sessions.BeginPending(ctx, pv)
	if err != nil {
		log.Error("failed to create pending session", "user_id", pv.UserID, "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "server_error", "System error. Please try again.")
		return
	}

	setSessionCookie(w, token, h.Sessions.SessionTTL())
	httpx.WriteJSON(w, http.StatusOK, loginResponse{
		MFARequired: true,
		ExpiresIn:   int(time.Until(code.ExpiresAt).Seconds()),
		Message:     "A verification code has been sent to your email.",
	})
}
