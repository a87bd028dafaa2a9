package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/emicklei/go-restful/v3"

	browserSvc "github.com/babelcloud/gbox/packages/relay/internal/browser/service"
	apierrors "github.com/babelcloud/gbox/packages/relay/internal/common/errors"
	model "github.com/babelcloud/gbox/packages/relay/pkg/browser"
	"github.com/babelcloud/gbox/packages/relay/pkg/logger"
)

// Session is the part of the session controller the browser routes use.
type Session interface {
	ScreenshotBase64(ctx context.Context) (string, error)
	ToggleMode(ctx context.Context) (model.DisplayMode, error)
	PageInfo(ctx context.Context, withContent bool, mimeType string) (*model.PageInfo, error)
}

// Handler exposes the shared browser session over HTTP.
type Handler struct {
	session Session
	log     *logger.Logger
}

// NewHandler creates a new API handler for the browser session.
func NewHandler(session Session, log *logger.Logger) *Handler {
	if session == nil {
		panic("browser session cannot be nil")
	}
	return &Handler{
		session: session,
		log:     log.Named("browser-api"),
	}
}

// toAPIError maps session errors to HTTP errors.
func toAPIError(err error) error {
	switch {
	case errors.Is(err, browserSvc.ErrSessionNotReady), errors.Is(err, browserSvc.ErrSessionClosed):
		return apierrors.New(apierrors.CodeServiceUnavailable, err.Error())
	default:
		return err
	}
}

// GetScreenshot handles GET /screenshot
func (h *Handler) GetScreenshot(req *restful.Request, resp *restful.Response) {
	shot, err := h.session.ScreenshotBase64(req.Request.Context())
	if err != nil {
		h.log.Error("Screenshot failed: %v", err)
		apierrors.WriteError(resp, toAPIError(err))
		return
	}
	_ = resp.WriteHeaderAndJson(http.StatusOK, model.ScreenshotResult{Screenshot: shot}, restful.MIME_JSON)
}

// ToggleHeadless handles POST /toggle-headless
func (h *Handler) ToggleHeadless(req *restful.Request, resp *restful.Response) {
	mode, err := h.session.ToggleMode(req.Request.Context())
	if err != nil {
		h.log.Error("Mode toggle failed: %v", err)
		apierrors.WriteError(resp, toAPIError(err))
		return
	}
	h.log.Info("Browser switched to %s mode", mode.Label())
	_ = resp.WriteHeaderAndJson(http.StatusOK, model.ToggleResult{Mode: mode.Label(), Success: true}, restful.MIME_JSON)
}

// GetPage handles GET /page
func (h *Handler) GetPage(req *restful.Request, resp *restful.Response) {
	withContent := req.QueryParameter("content") == "true"
	mimeType := browserSvc.ContentTypeHTML
	switch req.QueryParameter("format") {
	case "", "html":
	case "markdown", "md":
		mimeType = browserSvc.ContentTypeMarkdown
		withContent = true
	default:
		apierrors.WriteError(resp, apierrors.Newf(apierrors.CodeBadRequest,
			"unsupported format %q, use html or markdown", req.QueryParameter("format")))
		return
	}

	info, err := h.session.PageInfo(req.Request.Context(), withContent, mimeType)
	if err != nil {
		h.log.Error("Page info failed: %v", err)
		apierrors.WriteError(resp, toAPIError(err))
		return
	}
	_ = resp.WriteHeaderAndJson(http.StatusOK, info, restful.MIME_JSON)
}
