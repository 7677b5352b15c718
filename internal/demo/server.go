// Package demo is a small web application that signs users in through ID
// Site and serves an OAuth protected API with the idkit SDK.
package demo

import (
	"context"
	"crypto/subtle"
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/aussiebroadwan/idkit/pkg/cryptox"
	"github.com/aussiebroadwan/idkit/pkg/httpx"
	"github.com/aussiebroadwan/idkit/pkg/idsdk"
	"github.com/aussiebroadwan/idkit/pkg/idsite"
	"github.com/aussiebroadwan/idkit/pkg/mvc"
	"github.com/aussiebroadwan/idkit/pkg/oauth"
	"github.com/aussiebroadwan/idkit/pkg/slogx"
)

//go:embed views
var viewsFS embed.FS

// ProfileScope guards GET /api/me.
const ProfileScope = "profile:read"

type Server struct {
	cfg    Config
	logger *slog.Logger

	client   *idsdk.Client
	app      *idsdk.Application
	callback *idsite.CallbackHandler
	tokens   *oauth.AccessTokenAuthenticator
	resource *oauth.ResourceRequestAuthenticator
	sessions *SessionStore

	mux *http.ServeMux
}

// NewServer loads the application and wires the routes. nonces backs ID
// Site replay protection.
func NewServer(ctx context.Context, cfg Config, logger *slog.Logger, nonces idsite.NonceStore, opts ...idsdk.Option) (*Server, error) {
	if logger == nil {
		logger = slog.Default()
	}
	creds := cfg.Credentials()

	client := idsdk.NewClient(cfg.BaseURL, creds, append([]idsdk.Option{idsdk.WithLogger(logger)}, opts...)...)
	app, err := client.GetApplication(ctx, cfg.ApplicationHref)
	if err != nil {
		return nil, fmt.Errorf("load application: %w", err)
	}

	callback, err := idsite.NewCallbackHandler(creds, client)
	if err != nil {
		return nil, err
	}
	if nonces != nil {
		if err := callback.SetNonceStore(nonces); err != nil {
			return nil, err
		}
	}
	if cfg.NonceTTL > 0 {
		if err := callback.SetNonceTTL(cfg.NonceTTL); err != nil {
			return nil, err
		}
	}

	tokens, err := oauth.NewAccessTokenAuthenticator(creds, app.Href)
	if err != nil {
		return nil, err
	}
	tokens.ScopeFactory = oauth.AllowScopes(cfg.TokenScopes...)

	resource, err := oauth.NewResourceRequestAuthenticator(creds)
	if err != nil {
		return nil, err
	}

	s := &Server{
		cfg:      cfg,
		logger:   logger,
		client:   client,
		app:      app,
		callback: callback,
		tokens:   tokens,
		resource: resource,
		sessions: NewSessionStore(cfg.SessionTTL, isSecureURL(cfg.PublicURL)),
		mux:      http.NewServeMux(),
	}
	s.routes()
	return s, nil
}

// Sessions returns the server's session store.
func (s *Server) Sessions() *SessionStore { return s.sessions }

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	httpx.Chain(s.mux, slogx.HTTPMiddleware(s.logger), s.sessions.Middleware).ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.mux.Handle("GET /{$}", s.view(s.Home))
	s.mux.Handle("GET /login", s.view(s.Login))
	s.mux.Handle("GET /register", s.view(s.Register))
	s.mux.Handle("GET /logout", s.view(s.Logout))
	s.mux.Handle("GET /idsite/callback", s.view(s.Callback))

	s.mux.Handle("GET /forgot", s.view(s.ShowForgot))
	s.mux.Handle("POST /forgot",
		httpx.Chain(s.view(s.SubmitForgot), httpx.RateLimitByIPAndFormField(httpx.StrictLimit, "email")))
	s.mux.Handle("GET /reset", s.view(s.ShowReset))
	s.mux.Handle("POST /reset",
		httpx.Chain(s.view(s.SubmitReset), httpx.RateLimitByIP(httpx.StrictLimit)))

	s.mux.Handle("POST /oauth/token",
		httpx.Chain(http.HandlerFunc(s.Token), httpx.RateLimitByIPAndBasicAuth(httpx.StrictLimit)))
	s.mux.Handle("GET /api/me",
		httpx.Chain(http.HandlerFunc(s.Me),
			httpx.AuthnMiddleware(s.resource.Authenticator(s.app)),
			httpx.RateLimitByUser(httpx.LenientLimit),
			httpx.RequireAnyScope(ProfileScope),
		))
}

func (s *Server) view(fn mvc.ControllerFunc) http.Handler {
	h, err := mvc.NewHandler(fn, viewsFS)
	if err != nil {
		panic(err)
	}
	h.Logger = s.logger
	return h
}

func (s *Server) Home(w http.ResponseWriter, r *http.Request) (*mvc.ViewModel, error) {
	return mvc.View("home", map[string]any{"appName": s.app.Name}), nil
}

func (s *Server) Login(w http.ResponseWriter, r *http.Request) (*mvc.ViewModel, error) {
	return s.redirectToIDSite(w, func(b *idsite.URLBuilder) {})
}

func (s *Server) Register(w http.ResponseWriter, r *http.Request) (*mvc.ViewModel, error) {
	return s.redirectToIDSite(w, func(b *idsite.URLBuilder) { b.SetPath("/#/register") })
}

func (s *Server) Logout(w http.ResponseWriter, r *http.Request) (*mvc.ViewModel, error) {
	s.sessions.Destroy(w, r)
	return s.redirectToIDSite(w, func(b *idsite.URLBuilder) { b.ForLogout() })
}

// redirectToIDSite sends the browser to the hosted page. A fresh state
// value is remembered in a cookie and checked on the way back.
func (s *Server) redirectToIDSite(w http.ResponseWriter, configure func(*idsite.URLBuilder)) (*mvc.ViewModel, error) {
	state, err := cryptox.NewState()
	if err != nil {
		return nil, err
	}

	b, err := idsite.NewURLBuilder(s.cfg.idSiteURL(), s.app.Href, s.cfg.Credentials())
	if err != nil {
		return nil, err
	}
	b.SetCallbackURI(s.cfg.callbackURI()).SetState(state)
	configure(b)

	target, err := b.Build()
	if err != nil {
		return nil, err
	}

	http.SetCookie(w, s.sessions.cookie(stateCookie, state, 600))
	return mvc.RedirectTo(target), nil
}

// Callback verifies the hosted page's answer and starts or ends the session.
func (s *Server) Callback(w http.ResponseWriter, r *http.Request) (*mvc.ViewModel, error) {
	l := slogx.FromContext(r.Context())

	res, err := s.callback.AccountResult(r.Context(), r)
	if err != nil {
		var ide *idsite.Error
		if errors.As(err, &ide) {
			return mvc.View("error", map[string]any{"message": ide.Message}), nil
		}
		l.Info("idsite callback rejected", slog.Any("err", err))
		http.Error(w, "invalid ID Site response", http.StatusBadRequest)
		return nil, nil
	}

	if !s.checkState(r, res.State) {
		l.Warn("idsite callback state mismatch")
		http.Error(w, "invalid ID Site response", http.StatusBadRequest)
		return nil, nil
	}
	http.SetCookie(w, s.sessions.cookie(stateCookie, "", -1))

	switch res.Status {
	case idsite.StatusLogout:
		s.sessions.Destroy(w, r)
	default:
		err := s.sessions.Create(w, Session{
			AccountHref: res.Account.Href,
			Username:    res.Account.Username,
			Email:       res.Account.Email,
			FullName:    res.Account.FullName(),
		})
		if err != nil {
			return nil, err
		}
		l.Info("signed in", slog.String("account", res.Account.Href), slog.Bool("new", res.IsNewAccount))
	}
	return mvc.RedirectTo("/"), nil
}

func (s *Server) checkState(r *http.Request, state string) bool {
	c, err := r.Cookie(stateCookie)
	if err != nil || c.Value == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(c.Value), []byte(state)) == 1
}

func (s *Server) ShowForgot(w http.ResponseWriter, r *http.Request) (*mvc.ViewModel, error) {
	return mvc.View("forgot", nil), nil
}

// SubmitForgot always reports success so the form does not reveal which
// addresses have accounts.
func (s *Server) SubmitForgot(w http.ResponseWriter, r *http.Request) (*mvc.ViewModel, error) {
	email := strings.TrimSpace(r.PostFormValue("email"))
	if email == "" {
		return mvc.View("forgot", map[string]any{"error": "Enter your email address."}), nil
	}

	model := map[string]any{"sent": true, "email": email}

	tok, err := s.app.SendPasswordResetEmail(r.Context(), email, nil)
	var re *idsdk.ResourceError
	switch {
	case err == nil:
		if s.cfg.ShowResetLinks {
			model["resetLink"] = "/reset?" + url.Values{"sptoken": {tok.Token()}}.Encode()
		}
	case errors.As(err, &re) && re.Status < http.StatusInternalServerError:
		slogx.FromContext(r.Context()).Debug("password reset not started", slog.Int("code", re.Code))
	default:
		return nil, err
	}
	return mvc.View("forgot", model), nil
}

func (s *Server) ShowReset(w http.ResponseWriter, r *http.Request) (*mvc.ViewModel, error) {
	token := r.URL.Query().Get("sptoken")
	if token == "" {
		return mvc.RedirectTo("/forgot"), nil
	}

	acct, err := s.app.VerifyPasswordResetToken(r.Context(), token)
	if invalid, err := isInvalidToken(err); invalid {
		return mvc.View("reset", map[string]any{"invalid": true}), nil
	} else if err != nil {
		return nil, err
	}
	return mvc.View("reset", map[string]any{"token": token, "email": acct.Email}), nil
}

func (s *Server) SubmitReset(w http.ResponseWriter, r *http.Request) (*mvc.ViewModel, error) {
	token := r.PostFormValue("sptoken")
	password := r.PostFormValue("password")

	if password == "" || password != r.PostFormValue("confirm") {
		return mvc.View("reset", map[string]any{"token": token, "error": "Passwords do not match."}), nil
	}

	_, err := s.app.ResetPassword(r.Context(), token, password)
	if invalid, err := isInvalidToken(err); invalid {
		return mvc.View("reset", map[string]any{"invalid": true}), nil
	} else if err != nil {
		var re *idsdk.ResourceError
		if errors.As(err, &re) && re.Status == http.StatusBadRequest {
			return mvc.View("reset", map[string]any{"token": token, "error": re.Message}), nil
		}
		return nil, err
	}
	return mvc.View("reset", map[string]any{"done": true}), nil
}

// isInvalidToken separates unknown or expired tokens from service failures.
func isInvalidToken(err error) (bool, error) {
	if err == nil {
		return false, nil
	}
	var re *idsdk.ResourceError
	if errors.As(err, &re) && (re.Code == idsdk.CodeInvalidResetToken || re.Status == http.StatusNotFound) {
		return true, nil
	}
	return false, err
}

// Token is the client_credentials endpoint for API key holders.
func (s *Server) Token(w http.ResponseWriter, r *http.Request) {
	res, err := s.tokens.Authenticate(r.Context(), s.app, r)
	if err != nil {
		var oe *oauth.Error
		if errors.As(err, &oe) {
			oe.WriteError(w)
			return
		}
		slogx.FromContext(r.Context()).Error("token request failed", slog.Any("err", err))
		oauth.ErrServerError.WriteError(w)
		return
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, res.Token)
}

// MeResponse is the body of GET /api/me.
type MeResponse struct {
	APIKeyID string         `json:"apiKeyId"`
	Scope    []string       `json:"scope"`
	Account  *idsdk.Account `json:"account"`
}

func (s *Server) Me(w http.ResponseWriter, r *http.Request) {
	res, ok := oauth.ResultFromContext(r.Context())
	if !ok {
		oauth.ErrInvalidAccessToken.WriteError(w)
		return
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, MeResponse{
		APIKeyID: res.APIKey.ID,
		Scope:    res.Scope.Slice(),
		Account:  res.Account(),
	})
}
