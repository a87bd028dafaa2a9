package api

import (
	"context"
	"net/http"

	"github.com/emicklei/go-restful/v3"

	apierrors "github.com/babelcloud/gbox/packages/relay/internal/common/errors"
	model "github.com/babelcloud/gbox/packages/relay/pkg/chat"
	"github.com/babelcloud/gbox/packages/relay/pkg/logger"
)

// Lister reads a user's history, newest first.
type Lister interface {
	ListByUsername(ctx context.Context, username string) ([]model.Entry, error)
}

// HistoryHandler serves recorded chat exchanges.
type HistoryHandler struct {
	store Lister
	log   *logger.Logger
}

// NewHistoryHandler creates a new HistoryHandler
func NewHistoryHandler(store Lister, log *logger.Logger) *HistoryHandler {
	return &HistoryHandler{store: store, log: log.Named("history-api")}
}

// GetHistory handles GET /history/{username}
func (h *HistoryHandler) GetHistory(req *restful.Request, resp *restful.Response) {
	username := req.PathParameter("username")
	if username == "" {
		apierrors.WriteError(resp, apierrors.New(apierrors.CodeBadRequest, "username is required"))
		return
	}

	entries, err := h.store.ListByUsername(req.Request.Context(), username)
	if err != nil {
		h.log.Error("Failed to load history for %s: %v", username, err)
		apierrors.WriteError(resp, err)
		return
	}
	_ = resp.WriteHeaderAndJson(http.StatusOK, model.HistoryResult{History: entries}, restful.MIME_JSON)
}
