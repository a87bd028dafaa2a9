package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/emicklei/go-restful/v3"

	apierrors "github.com/babelcloud/gbox/packages/relay/internal/common/errors"
	model "github.com/babelcloud/gbox/packages/relay/pkg/chat"
	"github.com/babelcloud/gbox/packages/relay/pkg/logger"
)

// FailureResponse is the response text sent with every failed chat turn.
const FailureResponse = "An error occurred while processing your request."

// Chatter runs one chat turn.
type Chatter interface {
	Chat(ctx context.Context, req model.ChatRequest) (*model.ChatResponse, error)
}

// ChatHandler handles chat turns
type ChatHandler struct {
	service Chatter
	log     *logger.Logger
}

// NewChatHandler creates a new ChatHandler
func NewChatHandler(service Chatter, log *logger.Logger) *ChatHandler {
	return &ChatHandler{service: service, log: log.Named("chat-api")}
}

// Chat handles POST /chat
func (h *ChatHandler) Chat(req *restful.Request, resp *restful.Response) {
	var body model.ChatRequest
	if err := req.ReadEntity(&body); err != nil {
		h.writeFailure(resp, apierrors.Newf(apierrors.CodeBadRequest, "invalid request body: %v", err))
		return
	}

	result, err := h.service.Chat(req.Request.Context(), body)
	if err != nil {
		h.log.Error("Chat turn failed: %v", err)
		h.writeFailure(resp, err)
		return
	}
	_ = resp.WriteHeaderAndJson(http.StatusOK, result, restful.MIME_JSON)
}

func (h *ChatHandler) writeFailure(resp *restful.Response, err error) {
	status := apierrors.StatusOf(err)
	_ = resp.WriteHeaderAndJson(status, model.ChatResponse{
		Response: FailureResponse,
		Error:    fmt.Sprint(err),
		Success:  false,
	}, restful.MIME_JSON)
}
