package api

import (
	"net/http"

	"github.com/emicklei/go-restful/v3"

	apierrors "github.com/babelcloud/gbox/packages/relay/internal/common/errors"
	model "github.com/babelcloud/gbox/packages/relay/pkg/browser"
)

// RegisterRoutes adds the browser session routes to the web service.
func RegisterRoutes(ws *restful.WebService, handler *Handler) {
	ws.Route(ws.GET("/screenshot").To(handler.GetScreenshot).
		Doc("Capture the current viewport as base64").
		Returns(http.StatusOK, "OK", model.ScreenshotResult{}).
		Returns(http.StatusServiceUnavailable, "Session not ready", apierrors.Error{}).
		Returns(http.StatusInternalServerError, "Internal Server Error", apierrors.Error{}))

	ws.Route(ws.POST("/toggle-headless").To(handler.ToggleHeadless).
		Doc("Flip between headless and windowed mode and reload the start page").
		Returns(http.StatusOK, "OK", model.ToggleResult{}).
		Returns(http.StatusInternalServerError, "Internal Server Error", apierrors.Error{}))

	ws.Route(ws.GET("/page").To(handler.GetPage).
		Doc("Describe the live page").
		Param(ws.QueryParameter("content", "include the page content").DataType("boolean").DefaultValue("false")).
		Param(ws.QueryParameter("format", "content format: html or markdown").DataType("string").DefaultValue("html")).
		Returns(http.StatusOK, "OK", model.PageInfo{}).
		Returns(http.StatusBadRequest, "Bad Request", apierrors.Error{}).
		Returns(http.StatusServiceUnavailable, "Session not ready", apierrors.Error{}))
}
