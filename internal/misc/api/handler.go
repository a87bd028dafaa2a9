package api

import (
	"net/http"

	"github.com/emicklei/go-restful/v3"

	"github.com/babelcloud/gbox/packages/relay/internal/misc/service"
)

// MiscHandler handles miscellaneous operations
type MiscHandler struct {
	service *service.MiscService
}

// NewMiscHandler creates a new MiscHandler
func NewMiscHandler(service *service.MiscService) *MiscHandler {
	return &MiscHandler{
		service: service,
	}
}

// GetVersion handles GET /version request
func (h *MiscHandler) GetVersion(req *restful.Request, resp *restful.Response) {
	_ = resp.WriteHeaderAndJson(http.StatusOK, h.service.GetVersion(), restful.MIME_JSON)
}

// GetHealth handles GET /health request. A dead browser answers 503 so
// load balancers stop routing chat turns here.
func (h *MiscHandler) GetHealth(req *restful.Request, resp *restful.Response) {
	health := h.service.GetHealth()
	status := http.StatusOK
	if !health.Browser {
		status = http.StatusServiceUnavailable
	}
	_ = resp.WriteHeaderAndJson(status, health, restful.MIME_JSON)
}
