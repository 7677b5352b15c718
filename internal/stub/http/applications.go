package http

import (
	"encoding/base64"
	"errors"
	"net/http"
	"strings"

	"github.com/aussiebroadwan/idkit/internal/stub/domain"
	"github.com/aussiebroadwan/idkit/internal/stub/service"
	"github.com/aussiebroadwan/idkit/pkg/httpx"
	"github.com/aussiebroadwan/idkit/pkg/idsdk"
	"github.com/aussiebroadwan/idkit/pkg/idx"
)

type ApplicationsHandler struct {
	Accounts *service.AccountService
	APIKeys  *service.APIKeyService
	Login    *service.LoginService
	Resets   *service.PasswordResetService
	links    linker
}

// HandleGet godoc
//
//	@Summary	Get an application
//	@Tags		Applications
//	@Produce	json
//	@Security	TenantAuth
//	@Param		id	path		string	true	"Application id"
//	@Success	200	{object}	idsdk.Application
//	@Failure	404	{object}	idsdk.ResourceError
//	@Router		/v1/applications/{id} [get].
func (h *ApplicationsHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	app, err := h.Accounts.GetApplication(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, hrefsFor(h.links, r).renderApplication(app))
}

// HandleCreateAccount godoc
//
//	@Summary	Create an account in the application's default directory
//	@Tags		Applications
//	@Accept		json
//	@Produce	json
//	@Security	TenantAuth
//	@Param		id		path		string					true	"Application id"
//	@Param		request	body		idsdk.AccountRequest	true	"Account"
//	@Success	201		{object}	idsdk.Account
//	@Failure	400		{object}	idsdk.ValidationErrorResponse
//	@Failure	409		{object}	idsdk.ResourceError	"Username or email taken"
//	@Router		/v1/applications/{id}/accounts [post].
func (h *ApplicationsHandler) HandleCreateAccount(w http.ResponseWriter, r *http.Request) {
	var req idsdk.AccountRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	acct, err := h.Accounts.CreateAccount(r.Context(), r.PathValue("id"), service.NewAccount{
		Username:  strings.TrimSpace(req.Username),
		Email:     strings.TrimSpace(req.Email),
		Password:  req.Password,
		GivenName: strings.TrimSpace(req.GivenName),
		Surname:   strings.TrimSpace(req.Surname),
		Status:    string(req.Status),
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, hrefsFor(h.links, r).renderAccount(acct))
}

// HandleListAPIKeys looks up a single key by id. Keys owned by accounts
// outside the application's directory are not visible.
//
//	@Summary	Find an API key
//	@Tags		Applications
//	@Produce	json
//	@Security	TenantAuth
//	@Param		id		path		string	true	"Application id"
//	@Param		id		query		string	true	"API key id"
//	@Param		expand	query		string	false	"Set to account to embed the owner"
//	@Success	200		{object}	idsdk.Collection[idsdk.APIKey]
//	@Router		/v1/applications/{id}/apiKeys [get].
func (h *ApplicationsHandler) HandleListAPIKeys(w http.ResponseWriter, r *http.Request) {
	appID := r.PathValue("id")
	links := hrefsFor(h.links, r)
	q := r.URL.Query()

	page := idsdk.Collection[idsdk.APIKey]{
		Href:  links.application(appID) + "/apiKeys",
		Limit: 25,
		Items: []idsdk.APIKey{},
	}

	if id := q.Get("id"); id != "" {
		key, owner, err := h.APIKeys.GetApplicationAPIKey(r.Context(), appID, id)
		switch {
		case err == nil:
			var expanded *domain.Account
			if q.Get("expand") == "account" {
				expanded = &owner
			}
			page.Items = append(page.Items, links.renderAPIKey(key, expanded))
			page.Size = 1
		case errors.Is(err, service.ErrNotFound):
			// Unknown keys are an empty page, unless the application itself is missing.
			if _, appErr := h.Accounts.GetApplication(r.Context(), appID); appErr != nil {
				writeServiceError(w, r, appErr)
				return
			}
		default:
			writeServiceError(w, r, err)
			return
		}
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, page)
}

// HandleLoginAttempt godoc
//
//	@Summary	Authenticate an account
//	@Tags		Applications
//	@Accept		json
//	@Produce	json
//	@Security	TenantAuth
//	@Param		id		path		string						true	"Application id"
//	@Param		request	body		idsdk.LoginAttemptRequest	true	"base64(username:password)"
//	@Success	200		{object}	map[string]idsdk.Link	"account link"
//	@Failure	400		{object}	idsdk.ResourceError		"Invalid login or disabled account"
//	@Router		/v1/applications/{id}/loginAttempts [post].
func (h *ApplicationsHandler) HandleLoginAttempt(w http.ResponseWriter, r *http.Request) {
	var req idsdk.LoginAttemptRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	raw, err := base64.StdEncoding.DecodeString(req.Value)
	if err != nil {
		writeError(w, http.StatusBadRequest, idsdk.CodeValidationFailed, "Login value must be base64 encoded.")
		return
	}
	login, password, ok := strings.Cut(string(raw), ":")
	if !ok || login == "" {
		writeError(w, http.StatusBadRequest, idsdk.CodeValidationFailed, "Login value must be username:password.")
		return
	}

	acct, err := h.Login.Authenticate(r.Context(), r.PathValue("id"), storeID(req.AccountStore), login, password)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, map[string]idsdk.Link{
		"account": {Href: hrefsFor(h.links, r).account(acct.ID)},
	})
}

// HandleCreateResetToken godoc
//
//	@Summary		Start a password reset
//	@Description	The stub sends no mail. The token is returned in the href.
//	@Tags			Password Reset
//	@Accept			json
//	@Produce		json
//	@Security		TenantAuth
//	@Param			id		path		string						true	"Application id"
//	@Param			request	body		idsdk.PasswordResetRequest	true	"email and optional accountStore"
//	@Success		200		{object}	idsdk.PasswordResetToken
//	@Failure		400		{object}	idsdk.ResourceError	"No account with that email"
//	@Router			/v1/applications/{id}/passwordResetTokens [post].
func (h *ApplicationsHandler) HandleCreateResetToken(w http.ResponseWriter, r *http.Request) {
	var req idsdk.PasswordResetRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	if req.Email == "" {
		writeValidation(w, map[string]string{"email": "required"})
		return
	}

	appID := r.PathValue("id")
	tok, err := h.Resets.CreateToken(r.Context(), appID, storeID(req.AccountStore), strings.TrimSpace(req.Email))
	if errors.Is(err, service.ErrNotFound) {
		// Either the application or the email is unknown.
		if _, appErr := h.Accounts.GetApplication(r.Context(), appID); appErr != nil {
			writeServiceError(w, r, appErr)
			return
		}
		writeError(w, http.StatusBadRequest, idsdk.CodeValidationFailed, "No account with that email address was found.")
		return
	}
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, hrefsFor(h.links, r).renderResetToken(tok.PasswordResetToken, tok.Token))
}

// HandleGetResetToken godoc
//
//	@Summary	Verify a password reset token
//	@Tags		Password Reset
//	@Produce	json
//	@Security	TenantAuth
//	@Param		id		path		string	true	"Application id"
//	@Param		token	path		string	true	"Reset token"
//	@Success	200		{object}	idsdk.PasswordResetToken
//	@Failure	404		{object}	idsdk.ResourceError	"Invalid or expired token"
//	@Router		/v1/applications/{id}/passwordResetTokens/{token} [get].
func (h *ApplicationsHandler) HandleGetResetToken(w http.ResponseWriter, r *http.Request) {
	token := r.PathValue("token")
	rec, err := h.Resets.VerifyToken(r.Context(), r.PathValue("id"), token)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, hrefsFor(h.links, r).renderResetToken(rec, token))
}

// HandleConsumeResetToken godoc
//
//	@Summary	Set a new password with a reset token
//	@Tags		Password Reset
//	@Accept		json
//	@Produce	json
//	@Security	TenantAuth
//	@Param		id		path		string						true	"Application id"
//	@Param		token	path		string						true	"Reset token"
//	@Param		request	body		idsdk.PasswordResetRequest	true	"password"
//	@Success	200		{object}	idsdk.PasswordResetToken
//	@Failure	400		{object}	idsdk.ValidationErrorResponse
//	@Failure	404		{object}	idsdk.ResourceError	"Invalid or expired token"
//	@Router		/v1/applications/{id}/passwordResetTokens/{token} [post].
func (h *ApplicationsHandler) HandleConsumeResetToken(w http.ResponseWriter, r *http.Request) {
	var req idsdk.PasswordResetRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	if req.Password == "" {
		writeValidation(w, map[string]string{"password": "required"})
		return
	}

	token := r.PathValue("token")
	rec, err := h.Resets.ResetPassword(r.Context(), r.PathValue("id"), token, req.Password)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, hrefsFor(h.links, r).renderResetToken(rec, token))
}

// storeID extracts the directory id from an accountStore link.
func storeID(l *idsdk.Link) string {
	if l == nil || l.Href == "" {
		return ""
	}
	return idx.FromHref(l.Href).String()
}
