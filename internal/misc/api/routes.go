package api

import (
	"github.com/emicklei/go-restful/v3"

	"github.com/babelcloud/gbox/packages/relay/internal/misc/model"
)

// RegisterRoutes registers the miscellaneous routes
func RegisterRoutes(ws *restful.WebService, handler *MiscHandler) {
	ws.Route(ws.GET("/version").To(handler.GetVersion).
		Doc("get relay version information").
		Returns(200, "OK", model.VersionInfo{}))

	ws.Route(ws.GET("/health").To(handler.GetHealth).
		Doc("report browser session health").
		Returns(200, "OK", model.HealthInfo{}).
		Returns(503, "Browser session down", model.HealthInfo{}))
}
