package http

import (
	"errors"
	"io/fs"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aussiebroadwan/idkit/internal/stub/domain"
	"github.com/aussiebroadwan/idkit/internal/stub/service"
	"github.com/aussiebroadwan/idkit/pkg/idsite"
	"github.com/aussiebroadwan/idkit/pkg/idx"
	"github.com/aussiebroadwan/idkit/pkg/jwtx"
	"github.com/aussiebroadwan/idkit/pkg/mvc"
	"github.com/aussiebroadwan/idkit/pkg/slogx"
)

// SSOHandler is the hosted login page. It accepts a signed jwtRequest, lets
// the user log in or register, and redirects to the request's callback with
// a signed jwtResponse.
type SSOHandler struct {
	SSO      *service.SSOService
	Accounts *service.AccountService
	Login    *service.LoginService
	links    linker
}

func (h *SSOHandler) mvc(fn mvc.ControllerFunc, views fs.FS) http.Handler {
	mh, err := mvc.NewHandler(fn, views)
	if err != nil {
		panic(err)
	}
	return mh
}

// ssoRequest is a verified jwtRequest and the application it names.
type ssoRequest struct {
	raw    string
	claims jwtx.IDSiteRequestClaims
	app    domain.Application
}

// parse verifies the jwtRequest in r. When it returns a nil request the
// response has been handled: either a 400 was written or vm redirects to
// the callback with an error.
func (h *SSOHandler) parse(w http.ResponseWriter, r *http.Request) (*ssoRequest, *mvc.ViewModel, error) {
	raw := r.FormValue(idsite.RequestParam)
	if raw == "" {
		http.Error(w, "missing "+idsite.RequestParam, http.StatusBadRequest)
		return nil, nil, nil
	}

	claims, err := h.SSO.ParseRequest(raw)
	if err != nil {
		slogx.FromContext(r.Context()).Debug("sso request rejected", slog.Any("err", err))
		http.Error(w, "invalid "+idsite.RequestParam, http.StatusBadRequest)
		return nil, nil, nil
	}

	app, err := h.Accounts.GetApplication(r.Context(), idx.FromHref(claims.Subject).String())
	if errors.Is(err, service.ErrNotFound) {
		vm, err := h.respond(r, claims, service.SSOResponse{
			Err: &jwtx.IDSiteErrorClaim{
				Code:    http.StatusNotFound,
				Status:  http.StatusNotFound,
				Message: "The application could not be found.",
			},
		})
		return nil, vm, err
	}
	if err != nil {
		return nil, nil, err
	}

	return &ssoRequest{raw: raw, claims: claims, app: app}, nil, nil
}

func (h *SSOHandler) respond(r *http.Request, claims jwtx.IDSiteRequestClaims, resp service.SSOResponse) (*mvc.ViewModel, error) {
	resp.Issuer = h.links.BaseURL(r)
	target, err := h.SSO.RedirectURL(claims, resp)
	if err != nil {
		return nil, err
	}
	return mvc.RedirectTo(target), nil
}

func (h *SSOHandler) loginView(req *ssoRequest, register bool, form map[string]any) *mvc.ViewModel {
	model := map[string]any{
		"jwtRequest": req.raw,
		"appName":    req.app.Name,
		"register":   register,
	}
	for k, v := range form {
		model[k] = v
	}
	return mvc.View("sso/login", model)
}

// ShowLogin renders the login form, or the registration form when the
// request asks for a register path.
func (h *SSOHandler) ShowLogin(w http.ResponseWriter, r *http.Request) (*mvc.ViewModel, error) {
	req, vm, err := h.parse(w, r)
	if req == nil {
		return vm, err
	}
	return h.loginView(req, strings.Contains(req.claims.Path, "register"), nil), nil
}

// SubmitLogin handles both forms. Failures re-render the form with a
// message; success redirects to the callback.
func (h *SSOHandler) SubmitLogin(w http.ResponseWriter, r *http.Request) (*mvc.ViewModel, error) {
	req, vm, err := h.parse(w, r)
	if req == nil {
		return vm, err
	}

	ctx := r.Context()
	l := slogx.FromContext(ctx)
	login := strings.TrimSpace(r.PostFormValue("login"))
	password := r.PostFormValue("password")

	if r.PostFormValue("action") == "register" {
		email := strings.TrimSpace(r.PostFormValue("email"))
		if login == "" || email == "" || len(password) < 8 {
			return h.loginView(req, true, map[string]any{
				"login": login, "email": email,
				"error": "Username, email and a password of at least 8 characters are required.",
			}), nil
		}

		acct, err := h.Accounts.CreateAccount(ctx, req.app.ID, service.NewAccount{
			Username: login,
			Email:    email,
			Password: password,
		})
		if errors.Is(err, service.ErrDuplicateAccount) {
			return h.loginView(req, true, map[string]any{
				"login": login, "email": email,
				"error": "An account with that username or email already exists.",
			}), nil
		}
		if err != nil {
			return nil, err
		}

		l.Info("sso registration", slog.String("account_id", acct.ID))
		return h.respond(r, req.claims, service.SSOResponse{
			AccountHref: hrefsFor(h.links, r).account(acct.ID),
			Status:      service.SSOStatusRegistered,
			IsNew:       true,
		})
	}

	acct, err := h.Login.Authenticate(ctx, req.app.ID, "", login, password)
	switch {
	case errors.Is(err, service.ErrInvalidLogin):
		return h.loginView(req, false, map[string]any{"login": login, "error": "Invalid username or password."}), nil
	case errors.Is(err, service.ErrAccountDisabled):
		return h.loginView(req, false, map[string]any{"login": login, "error": "This account is not enabled."}), nil
	case err != nil:
		return nil, err
	}

	l.Info("sso login", slog.String("account_id", acct.ID))
	return h.respond(r, req.claims, service.SSOResponse{
		AccountHref: hrefsFor(h.links, r).account(acct.ID),
		Status:      service.SSOStatusAuthenticated,
	})
}

// Logout ends the hosted session. The stub keeps none, so it only answers
// the callback.
func (h *SSOHandler) Logout(w http.ResponseWriter, r *http.Request) (*mvc.ViewModel, error) {
	req, vm, err := h.parse(w, r)
	if req == nil {
		return vm, err
	}
	return h.respond(r, req.claims, service.SSOResponse{Status: service.SSOStatusLogout})
}
