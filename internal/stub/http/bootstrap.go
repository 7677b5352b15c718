package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/aussiebroadwan/idkit/internal/stub/domain"
	"github.com/aussiebroadwan/idkit/internal/stub/service"
	"github.com/aussiebroadwan/idkit/pkg/httpx"
	"github.com/aussiebroadwan/idkit/pkg/idsdk"
	"github.com/aussiebroadwan/idkit/pkg/slogx"
)

type BootstrapHandler struct {
	BootstrapService *service.BootstrapService
	links            linker
}

// ServeHTTP seeds the first application and directory.
//
//	@Summary		Bootstrap the identity service
//	@Description	Creates the first application and its default directory. Only available when a bootstrap token is configured, and only once.
//	@Tags			Bootstrap
//	@Accept			json
//	@Produce		json
//	@Param			X-Bootstrap-Token	header		string							true	"Bootstrap token"
//	@Param			request				body		idsdk.BootstrapRequest			true	"Bootstrap configuration"
//	@Success		201					{object}	idsdk.BootstrapResponse
//	@Failure		400					{object}	idsdk.ValidationErrorResponse
//	@Failure		401					{object}	idsdk.ResourceError	"Missing or invalid bootstrap token"
//	@Failure		403					{object}	idsdk.ResourceError	"Already bootstrapped"
//	@Failure		404					{object}	idsdk.ResourceError	"Bootstrap not enabled"
//	@Router			/v1/bootstrap [post].
func (h *BootstrapHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	l := slogx.FromContext(r.Context())

	if h.BootstrapService.Token == "" {
		writeError(w, http.StatusNotFound, idsdk.CodeResourceNotFound, "Bootstrap endpoint is not enabled.")
		return
	}

	token := r.Header.Get(idsdk.BootstrapTokenHeader)
	if token == "" {
		writeError(w, http.StatusUnauthorized, http.StatusUnauthorized, "Bootstrap token is required in X-Bootstrap-Token header.")
		return
	}

	var req idsdk.BootstrapRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	app, dir, err := h.BootstrapService.Bootstrap(r.Context(), token, domain.BootstrapData{
		ApplicationName: strings.TrimSpace(req.ApplicationName),
		Description:     strings.TrimSpace(req.Description),
		DirectoryName:   strings.TrimSpace(req.DirectoryName),
	})
	switch {
	case errors.Is(err, service.ErrBootstrapUnauthorized):
		writeError(w, http.StatusUnauthorized, http.StatusUnauthorized, "Invalid bootstrap token.")
		return
	case errors.Is(err, service.ErrBootstrapAlready):
		writeError(w, http.StatusForbidden, idsdk.CodeBootstrapNotAllowed, "System has already been bootstrapped.")
		return
	case err != nil:
		writeServiceError(w, r, err)
		return
	}

	l.Info("bootstrap complete")
	links := hrefsFor(h.links, r)
	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusCreated, idsdk.BootstrapResponse{
		Application: links.renderApplication(app),
		Directory:   links.renderDirectory(dir),
	})
}
