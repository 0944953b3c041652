package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/fastlan/portal/internal/portal/service"
	"github.com/fastlan/portal/internal/portal/store"
	"github.com/fastlan/portal/pkg/httpx"
	"github.com/fastlan/portal/pkg/slogx"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	buildVersion string
	startTime    time.Time
	logger       *slog.Logger
	store        store.Store

	CredentialService *service.CredentialService
	MFAService        *service.MFAService
	SessionService    *service.SessionService
}

func NewRouter(buildVersion string, st store.Store, logger *slog.Logger) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		buildVersion: buildVersion,
		startTime:    time.Now(),
		logger:       logger,
		store:        st,
	}

	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerAuth()
	r.registerSystem()
}

// ServeHTTP implements http.Handler and applies the global middleware chain.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerAuth() {
	loginHandler := &LoginHandler{
		Credentials: r.CredentialService,
		MFA:         r.MFAService,
		Sessions:    r.SessionService,
	}
	mfaHandler := &MFAHandler{
		MFA:      r.MFAService,
		Sessions: r.SessionService,
	}
	sessionHandler := &SessionHandler{
		MFA:      r.MFAService,
		Sessions: r.SessionService,
	}

	r.Mux.HandleFunc("POST /v1/auth/login", loginHandler.HandleLogin)
	r.Mux.HandleFunc("POST /v1/auth/mfa/verify", mfaHandler.HandleVerify)
	r.Mux.HandleFunc("POST /v1/auth/mfa/resend", mfaHandler.HandleResend)
	r.Mux.HandleFunc("GET /v1/auth/session", sessionHandler.HandleCheck)
	r.Mux.HandleFunc("POST /v1/auth/logout", sessionHandler.HandleLogout)
}

func (r *Router) registerSystem() {
	r.Mux.HandleFunc("GET /livez", LivezHandler(r.startTime, r.buildVersion))
	r.Mux.HandleFunc("GET /readyz", ReadyzHandler(r.startTime, r.buildVersion, r.store))
}
