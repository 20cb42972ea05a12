package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/afterlove/couplet/internal/api/service"
	"github.com/afterlove/couplet/internal/api/store"
	"github.com/afterlove/couplet/pkg/httpx"
	"github.com/afterlove/couplet/pkg/jwtx"
	"github.com/afterlove/couplet/pkg/slogx"

	_ "github.com/afterlove/couplet/api/docs" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	signer       jwtx.Signer
	verifier     jwtx.Verifier
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger

	store          store.Store
	AuthService    *service.AuthService
	UserService    *service.UserService
	PairingService *service.PairingService
}

func NewRouter(
	signer jwtx.Signer,
	verifier jwtx.Verifier,
	buildVersion string,
	st store.Store,
	logger *slog.Logger,
	cors httpx.CORSConfig,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		signer:       signer,
		verifier:     verifier,
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		logger:       logger,
	}

	// Set default middleware chain
	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
		httpx.CORSMiddleware(cors),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerAuth()
	r.registerUsers()
	r.registerInvitations()
	r.registerSystem()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			Couplet API
//	@version		0.1.0
//	@description	Backend for the Couplet couples app: account registration and login with JWT bearer
//	@description	sessions, plus partner pairing through email invitations that expire, can be cancelled,
//	@description	or accepted to establish a couple.
//
//	@contact.name				Afterlove Team
//	@contact.url				https://github.com/afterlove/couplet
//
//	@license.name				MIT
//	@license.url				https://opensource.org/licenses/MIT
//
//	@host						localhost:8080
//	@BasePath					/
//
//	@schemes					http https
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				JWT access token. Format: "Bearer {token}".
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerAuth() {
	registerHandler := &RegisterHandler{AuthService: r.AuthService}
	loginHandler := &LoginHandler{AuthService: r.AuthService}
	profileHandler := &ProfileHandler{AuthService: r.AuthService}

	// POST /auth/register - strict rate limit by IP (public signup endpoint)
	r.Mux.Handle("POST /v1/auth/register",
		httpx.Chain(registerHandler,
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)

	// POST /auth/login - strict rate limit by IP (brute force prevention)
	r.Mux.Handle("POST /v1/auth/login",
		httpx.Chain(loginHandler,
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)

	// GET /auth/profile - authenticated read, lenient limit by user
	r.Mux.Handle("GET /v1/auth/profile",
		httpx.Chain(profileHandler,
			httpx.AuthnMiddleware(r.verifier),
			httpx.RateLimitByUser(httpx.LenientLimit),
		),
	)
}

func (r *Router) registerUsers() {
	h := &UsersHandler{UserService: r.UserService}
	statusHandler := &PartnerStatusHandler{PairingService: r.PairingService}

	authedRead := func(handler http.Handler) http.Handler {
		return httpx.Chain(handler,
			httpx.AuthnMiddleware(r.verifier),
			httpx.RateLimitByUser(httpx.LenientLimit),
		)
	}
	authedWrite := func(handler http.Handler) http.Handler {
		return httpx.Chain(handler,
			httpx.AuthnMiddleware(r.verifier),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		)
	}

	// "me" is a literal segment, so this coexists with /users/{id} and the
	// mux routes it by specificity.
	r.Mux.Handle("GET /v1/users/me/partner-status", authedRead(statusHandler))

	r.Mux.Handle("GET /v1/users", authedRead(http.HandlerFunc(h.HandleList)))
	r.Mux.Handle("GET /v1/users/{id}", authedRead(http.HandlerFunc(h.HandleGet)))
	r.Mux.Handle("POST /v1/users", authedWrite(http.HandlerFunc(h.HandleCreate)))
	r.Mux.Handle("PATCH /v1/users/{id}", authedWrite(http.HandlerFunc(h.HandleUpdate)))
	r.Mux.Handle("PUT /v1/users/{id}/password", authedWrite(http.HandlerFunc(h.HandleUpdatePassword)))
	r.Mux.Handle("DELETE /v1/users/{id}", authedWrite(http.HandlerFunc(h.HandleDelete)))
}

func (r *Router) registerInvitations() {
	h := &InvitationsHandler{PairingService: r.PairingService}

	secured := func(handler http.Handler) http.Handler {
		return httpx.Chain(handler,
			httpx.AuthnMiddleware(r.verifier),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		)
	}

	r.Mux.Handle("POST /v1/invitations", secured(http.HandlerFunc(h.HandleCreate)))
	r.Mux.Handle("POST /v1/invitations/{id}/accept", secured(http.HandlerFunc(h.HandleAccept)))
	r.Mux.Handle("DELETE /v1/invitations/{id}", secured(http.HandlerFunc(h.HandleCancel)))
}

func (r *Router) registerSystem() {
	// Health endpoints - public with high limit
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion),
			httpx.RateLimitByIP(httpx.PublicLimit),
		),
	)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.buildVersion, r.store, r.signer),
			httpx.RateLimitByIP(httpx.PublicLimit),
		),
	)
}
