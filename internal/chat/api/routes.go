package api

import (
	"net/http"

	"github.com/emicklei/go-restful/v3"

	model "github.com/babelcloud/gbox/packages/relay/pkg/chat"
)

// RegisterRoutes registers the chat route
func RegisterRoutes(ws *restful.WebService, handler *ChatHandler) {
	ws.Route(ws.POST("/chat").To(handler.Chat).
		Doc("send a message, let the assistant act on the page and return the new screen").
		Reads(model.ChatRequest{}).
		Returns(http.StatusOK, "OK", model.ChatResponse{}).
		Returns(http.StatusBadRequest, "Bad Request", model.ChatResponse{}).
		Returns(http.StatusTooManyRequests, "Too Many Requests", model.ChatResponse{}).
		Returns(http.StatusInternalServerError, "Internal Server Error", model.ChatResponse{}))
}
