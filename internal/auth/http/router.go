package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/aussiebroadwan/tether/internal/auth/service"
	"github.com/aussiebroadwan/tether/internal/auth/store"
	"github.com/aussiebroadwan/tether/pkg/httpx"
	"github.com/aussiebroadwan/tether/pkg/jwtx"
	"github.com/aussiebroadwan/tether/pkg/slogx"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	signer       jwtx.Signer
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger

	store store.Store

	AuthorityService *service.AuthorityService
	AccountService   *service.AccountService
}

func NewRouter(
	signer jwtx.Signer,
	buildVersion string,
	st store.Store,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		signer:       signer,
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		logger:       logger,
	}

	// Set default middleware chain
	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerAuth()
	r.registerAccount()
	r.registerSystem()
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerAuth() {
	authn := httpx.AuthnMiddleware(r.AuthorityService)

	// POST /register and /login carry credentials - strict rate limit by IP
	registerHandler := &RegisterHandler{AuthorityService: r.AuthorityService}
	r.Mux.Handle("POST /v1/auth/register",
		httpx.Chain(registerHandler,
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)

	loginHandler := &LoginHandler{AuthorityService: r.AuthorityService}
	r.Mux.Handle("POST /v1/auth/login",
		httpx.Chain(loginHandler,
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)

	// POST /logout - idempotent, token carried in the Authorization header
	logoutHandler := &LogoutHandler{AuthorityService: r.AuthorityService}
	r.Mux.Handle("POST /v1/auth/logout",
		httpx.Chain(logoutHandler,
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)

	// Bulk session eviction - authenticated, moderate limit by account
	logoutOthersHandler := &LogoutOthersHandler{AuthorityService: r.AuthorityService}
	r.Mux.Handle("POST /v1/auth/logout-others",
		httpx.Chain(logoutOthersHandler,
			authn,
			httpx.RateLimitByAccount(httpx.ModerateLimit),
		),
	)

	forceLogoutHandler := &ForceLogoutHandler{AuthorityService: r.AuthorityService}
	r.Mux.Handle("POST /v1/auth/force-logout",
		httpx.Chain(forceLogoutHandler,
			authn,
			httpx.RateLimitByAccount(httpx.ModerateLimit),
		),
	)

	// Read endpoints - lenient limits, verification is polled by clients
	sessionsHandler := &SessionsHandler{AuthorityService: r.AuthorityService}
	r.Mux.Handle("GET /v1/auth/sessions",
		httpx.Chain(sessionsHandler,
			authn,
			httpx.RateLimitByAccount(httpx.LenientLimit),
		),
	)

	verifyHandler := &VerifyHandler{}
	r.Mux.Handle("GET /v1/auth/verify",
		httpx.Chain(verifyHandler,
			authn,
			httpx.RateLimitByAccount(httpx.LenientLimit),
		),
	)
}

func (r *Router) registerAccount() {
	authn := httpx.AuthnMiddleware(r.AuthorityService)
	h := &AccountHandler{AccountService: r.AccountService}

	r.Mux.Handle("POST /v1/account/deactivate",
		httpx.Chain(http.HandlerFunc(h.HandleDeactivate),
			authn,
			httpx.RateLimitByAccount(httpx.ModerateLimit),
		),
	)

	// Reactivation is unauthenticated by design: the account's sessions
	// were all invalidated at deactivation. Credentials in the body.
	r.Mux.Handle("POST /v1/account/reactivate",
		httpx.Chain(http.HandlerFunc(h.HandleReactivate),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)

	r.Mux.Handle("POST /v1/account/password",
		httpx.Chain(http.HandlerFunc(h.HandleChangePassword),
			authn,
			httpx.RateLimitByAccount(httpx.ModerateLimit),
		),
	)

	r.Mux.Handle("DELETE /v1/account",
		httpx.Chain(http.HandlerFunc(h.HandleDelete),
			authn,
			httpx.RateLimitByAccount(httpx.ModerateLimit),
		),
	)
}

func (r *Router) registerSystem() {
	// Health check endpoints - lenient rate limits (monitoring systems may poll frequently)
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.buildVersion, r.store, r.signer),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
}
