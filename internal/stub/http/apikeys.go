package http

import (
	"net/http"

	"github.com/aussiebroadwan/idkit/internal/stub/service"
	"github.com/aussiebroadwan/idkit/pkg/httpx"
	"github.com/aussiebroadwan/idkit/pkg/idsdk"
)

type APIKeysHandler struct {
	Accounts *service.AccountService
	APIKeys  *service.APIKeyService
	links    linker
}

// HandleGet returns a key without its secret. Secrets are only served
// through the application lookup.
//
//	@Summary	Get an API key
//	@Tags		API Keys
//	@Produce	json
//	@Security	TenantAuth
//	@Param		id		path		string	true	"API key id"
//	@Param		expand	query		string	false	"Set to account to embed the owner"
//	@Success	200		{object}	idsdk.APIKey
//	@Failure	404		{object}	idsdk.ResourceError
//	@Router		/v1/apiKeys/{id} [get].
func (h *APIKeysHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	key, err := h.APIKeys.GetAPIKey(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	out := hrefsFor(h.links, r).renderAPIKey(key, nil)
	if r.URL.Query().Get("expand") == "account" {
		owner, err := h.Accounts.GetAccount(r.Context(), key.AccountID)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		out = hrefsFor(h.links, r).renderAPIKey(key, &owner)
	}
	out.Secret = ""
	httpx.WriteJSON(w, http.StatusOK, out)
}

// HandleUpdate godoc
//
//	@Summary	Enable or disable an API key
//	@Tags		API Keys
//	@Accept		json
//	@Produce	json
//	@Security	TenantAuth
//	@Param		id		path		string						true	"API key id"
//	@Param		request	body		idsdk.StatusUpdateRequest	true	"ENABLED or DISABLED"
//	@Success	200		{object}	idsdk.APIKey
//	@Failure	400		{object}	idsdk.ResourceError
//	@Failure	404		{object}	idsdk.ResourceError
//	@Router		/v1/apiKeys/{id} [post].
func (h *APIKeysHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var req idsdk.StatusUpdateRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	key, err := h.APIKeys.SetAPIKeyStatus(r.Context(), r.PathValue("id"), req.Status)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	out := hrefsFor(h.links, r).renderAPIKey(key, nil)
	out.Secret = ""
	httpx.WriteJSON(w, http.StatusOK, out)
}
