package http

import (
	"embed"
	"io/fs"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aussiebroadwan/idkit/internal/stub/service"
	"github.com/aussiebroadwan/idkit/internal/stub/store"
	"github.com/aussiebroadwan/idkit/pkg/httpx"
	"github.com/aussiebroadwan/idkit/pkg/idsdk"
	"github.com/aussiebroadwan/idkit/pkg/slogx"

	_ "github.com/aussiebroadwan/idkit/api/stub" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

//go:embed views
var viewsFS embed.FS

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	// PublicURL is the externally visible base URL used in hrefs. When
	// empty it is derived from each request.
	PublicURL string

	tenant       idsdk.Credentials
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger
	views        fs.FS

	store                store.Store
	AccountService       *service.AccountService
	APIKeyService        *service.APIKeyService
	LoginService         *service.LoginService
	PasswordResetService *service.PasswordResetService
	BootstrapService     *service.BootstrapService
	SSOService           *service.SSOService
}

func NewRouter(
	tenant idsdk.Credentials,
	buildVersion string,
	st store.Store,
	logger *slog.Logger,
) *Router {
	if logger == nil {
		logger = slog.Default()
	}

	r := &Router{
		Mux:          http.NewServeMux(),
		tenant:       tenant,
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		logger:       logger,
		views:        viewsFS,
	}

	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerApplications()
	r.registerAccounts()
	r.registerAPIKeys()
	r.registerDirectories()
	r.registerSSO()
	r.registerSystem()
	r.registerBootstrap()

	r.Mux.Handle("GET /swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			idstub Identity Service API
//	@version		0.1.0
//	@description	Local stand-in for the hosted identity service. It speaks the REST and ID Site
//	@description	wire formats the idkit SDK uses, backed by SQLite.
//
//	@contact.name				AussieBroadWAN Team
//	@contact.url				https://github.com/aussiebroadwan/idkit
//
//	@license.name				MIT
//	@license.url				https://opensource.org/licenses/MIT
//
//	@host						localhost:8080
//	@BasePath					/
//
//	@schemes					http https
//
//	@securityDefinitions.basic	TenantAuth
//	@description				Tenant API key id and secret.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

// tenantOnly wraps h with tenant Basic auth and a per-key rate limit.
func (r *Router) tenantOnly(h http.Handler, limit httpx.RateLimitConfig) http.Handler {
	return httpx.Chain(h,
		httpx.RateLimitByIPAndBasicAuth(limit),
		TenantAuth(r.tenant),
	)
}

func (r *Router) registerApplications() {
	h := &ApplicationsHandler{
		Accounts: r.AccountService,
		APIKeys:  r.APIKeyService,
		Login:    r.LoginService,
		Resets:   r.PasswordResetService,
		links:    r,
	}

	r.Mux.Handle("GET /v1/applications/{id}",
		r.tenantOnly(http.HandlerFunc(h.HandleGet), httpx.LenientLimit))
	r.Mux.Handle("POST /v1/applications/{id}/accounts",
		r.tenantOnly(http.HandlerFunc(h.HandleCreateAccount), httpx.ModerateLimit))
	r.Mux.Handle("GET /v1/applications/{id}/apiKeys",
		r.tenantOnly(http.HandlerFunc(h.HandleListAPIKeys), httpx.LenientLimit))

	// Login and reset attempts are credential guesses; limit them harder.
	r.Mux.Handle("POST /v1/applications/{id}/loginAttempts",
		r.tenantOnly(http.HandlerFunc(h.HandleLoginAttempt), httpx.ModerateLimit))
	r.Mux.Handle("POST /v1/applications/{id}/passwordResetTokens",
		r.tenantOnly(http.HandlerFunc(h.HandleCreateResetToken), httpx.ModerateLimit))
	r.Mux.Handle("GET /v1/applications/{id}/passwordResetTokens/{token}",
		r.tenantOnly(http.HandlerFunc(h.HandleGetResetToken), httpx.ModerateLimit))
	r.Mux.Handle("POST /v1/applications/{id}/passwordResetTokens/{token}",
		r.tenantOnly(http.HandlerFunc(h.HandleConsumeResetToken), httpx.ModerateLimit))
}

func (r *Router) registerAccounts() {
	h := &AccountsHandler{Accounts: r.AccountService, APIKeys: r.APIKeyService, links: r}

	r.Mux.Handle("GET /v1/accounts/{id}",
		r.tenantOnly(http.HandlerFunc(h.HandleGet), httpx.LenientLimit))
	r.Mux.Handle("POST /v1/accounts/{id}",
		r.tenantOnly(http.HandlerFunc(h.HandleUpdate), httpx.ModerateLimit))
	r.Mux.Handle("POST /v1/accounts/{id}/apiKeys",
		r.tenantOnly(http.HandlerFunc(h.HandleCreateAPIKey), httpx.ModerateLimit))
}

func (r *Router) registerAPIKeys() {
	h := &APIKeysHandler{Accounts: r.AccountService, APIKeys: r.APIKeyService, links: r}

	r.Mux.Handle("GET /v1/apiKeys/{id}",
		r.tenantOnly(http.HandlerFunc(h.HandleGet), httpx.LenientLimit))
	r.Mux.Handle("POST /v1/apiKeys/{id}",
		r.tenantOnly(http.HandlerFunc(h.HandleUpdate), httpx.ModerateLimit))
}

func (r *Router) registerDirectories() {
	h := &DirectoriesHandler{Accounts: r.AccountService, links: r}

	r.Mux.Handle("GET /v1/directories/{id}",
		r.tenantOnly(http.HandlerFunc(h.HandleGet), httpx.LenientLimit))
}

func (r *Router) registerSSO() {
	h := &SSOHandler{
		SSO:      r.SSOService,
		Accounts: r.AccountService,
		Login:    r.LoginService,
		links:    r,
	}

	r.Mux.Handle("GET /sso",
		httpx.Chain(h.mvc(h.ShowLogin, r.views), httpx.RateLimitByIP(httpx.LenientLimit)))
	r.Mux.Handle("POST /sso",
		httpx.Chain(h.mvc(h.SubmitLogin, r.views),
			httpx.RateLimitByIPAndFormField(httpx.StrictLimit, "login"),
		))
	r.Mux.Handle("GET /sso/logout",
		httpx.Chain(h.mvc(h.Logout, r.views), httpx.RateLimitByIP(httpx.LenientLimit)))
}

func (r *Router) registerBootstrap() {
	h := &BootstrapHandler{BootstrapService: r.BootstrapService, links: r}
	r.Mux.Handle("POST /v1/bootstrap",
		httpx.Chain(h, httpx.RateLimitByIP(httpx.StrictLimit)))
}

func (r *Router) registerSystem() {
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion), httpx.RateLimitByIP(httpx.PublicLimit)))
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.buildVersion, r.store), httpx.RateLimitByIP(httpx.PublicLimit)))
}

// BaseURL is the scheme and host resources are addressed under.
func (r *Router) BaseURL(req *http.Request) string {
	if r.PublicURL != "" {
		return strings.TrimRight(r.PublicURL, "/")
	}

	scheme := "http"
	if req.TLS != nil {
		scheme = "https"
	}
	if p := req.Header.Get("X-Forwarded-Proto"); p == "http" || p == "https" {
		scheme = p
	}
	return scheme + "://" + req.Host
}
