package api

import (
	"github.com/emicklei/go-restful/v3"

	apierrors "github.com/babelcloud/gbox/packages/relay/internal/common/errors"
	model "github.com/babelcloud/gbox/packages/relay/pkg/chat"
)

// RegisterRoutes registers the history routes
func RegisterRoutes(ws *restful.WebService, handler *HistoryHandler) {
	ws.Route(ws.GET("/history/{username}").To(handler.GetHistory).
		Doc("list a user's chat exchanges, newest first").
		Param(ws.PathParameter("username", "user whose history to list").DataType("string")).
		Returns(200, "OK", model.HistoryResult{}).
		Returns(500, "Internal Server Error", apierrors.Error{}))
}
