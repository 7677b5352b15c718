package http

import (
	"net/http"

	"github.com/aussiebroadwan/idkit/internal/stub/service"
	"github.com/aussiebroadwan/idkit/pkg/httpx"
)

type DirectoriesHandler struct {
	Accounts *service.AccountService
	links    linker
}

// HandleGet godoc
//
//	@Summary	Get a directory
//	@Tags		Directories
//	@Produce	json
//	@Security	TenantAuth
//	@Param		id	path		string	true	"Directory id"
//	@Success	200	{object}	idsdk.Directory
//	@Failure	404	{object}	idsdk.ResourceError
//	@Router		/v1/directories/{id} [get].
func (h *DirectoriesHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	dir, err := h.Accounts.GetDirectory(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, hrefsFor(h.links, r).renderDirectory(dir))
}
