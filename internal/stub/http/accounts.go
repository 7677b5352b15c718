package http

import (
	"net/http"

	"github.com/aussiebroadwan/idkit/internal/stub/service"
	"github.com/aussiebroadwan/idkit/pkg/httpx"
	"github.com/aussiebroadwan/idkit/pkg/idsdk"
)

type AccountsHandler struct {
	Accounts *service.AccountService
	APIKeys  *service.APIKeyService
	links    linker
}

// HandleGet godoc
//
//	@Summary	Get an account
//	@Tags		Accounts
//	@Produce	json
//	@Security	TenantAuth
//	@Param		id	path		string	true	"Account id"
//	@Success	200	{object}	idsdk.Account
//	@Failure	404	{object}	idsdk.ResourceError
//	@Router		/v1/accounts/{id} [get].
func (h *AccountsHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	acct, err := h.Accounts.GetAccount(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, hrefsFor(h.links, r).renderAccount(acct))
}

// HandleUpdate godoc
//
//	@Summary	Change an account's status
//	@Tags		Accounts
//	@Accept		json
//	@Produce	json
//	@Security	TenantAuth
//	@Param		id		path		string						true	"Account id"
//	@Param		request	body		idsdk.StatusUpdateRequest	true	"New status"
//	@Success	200		{object}	idsdk.Account
//	@Failure	400		{object}	idsdk.ValidationErrorResponse
//	@Failure	404		{object}	idsdk.ResourceError
//	@Router		/v1/accounts/{id} [post].
func (h *AccountsHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var req idsdk.StatusUpdateRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	acct, err := h.Accounts.SetAccountStatus(r.Context(), r.PathValue("id"), req.Status)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, hrefsFor(h.links, r).renderAccount(acct))
}

// HandleCreateAPIKey godoc
//
//	@Summary		Issue an API key for an account
//	@Description	The response is the only one that carries the new secret besides application key lookups.
//	@Tags			Accounts
//	@Produce		json
//	@Security		TenantAuth
//	@Param			id	path		string	true	"Account id"
//	@Success		201	{object}	idsdk.APIKey
//	@Failure		404	{object}	idsdk.ResourceError
//	@Router			/v1/accounts/{id}/apiKeys [post].
func (h *AccountsHandler) HandleCreateAPIKey(w http.ResponseWriter, r *http.Request) {
	key, err := h.APIKeys.CreateAPIKey(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusCreated, hrefsFor(h.links, r).renderAPIKey(key, nil))
}
