package main

import (
	"fmt"
	"net/http"
	"os"
	"strings"

	restful "github.com/emicklei/go-restful/v3"

	browserApi "github.com/babelcloud/gbox/packages/relay/internal/browser/api"
	chatApi "github.com/babelcloud/gbox/packages/relay/internal/chat/api"
	historyApi "github.com/babelcloud/gbox/packages/relay/internal/history/api"
	miscApi "github.com/babelcloud/gbox/packages/relay/internal/misc/api"
	miscSvc "github.com/babelcloud/gbox/packages/relay/internal/misc/service"
	"github.com/babelcloud/gbox/packages/relay/pkg/format"
	"github.com/babelcloud/gbox/packages/relay/pkg/logger"
)

// services are the collaborators the HTTP surface dispatches to.
type services struct {
	session browserApi.Session
	chat    chatApi.Chatter
	history historyApi.Lister
	misc    *miscSvc.MiscService
}

// newContainer builds the REST container: the /api web service, CORS and
// request logging filters, and the static UI at /.
func newContainer(log *logger.Logger, staticDir string, svc services) (*restful.Container, *restful.WebService) {
	container := restful.NewContainer()

	ws := new(restful.WebService)
	ws.Path("/api").
		Consumes(restful.MIME_JSON).
		Produces(restful.MIME_JSON)

	chatApi.RegisterRoutes(ws, chatApi.NewChatHandler(svc.chat, log))
	browserApi.RegisterRoutes(ws, browserApi.NewHandler(svc.session, log))
	historyApi.RegisterRoutes(ws, historyApi.NewHistoryHandler(svc.history, log))
	miscApi.RegisterRoutes(ws, miscApi.NewMiscHandler(svc.misc))

	container.Add(ws)

	if staticDir != "" {
		if info, err := os.Stat(staticDir); err == nil && info.IsDir() {
			container.Handle("/", http.FileServer(http.Dir(staticDir)))
		} else {
			log.Warn("Static directory %q not found, UI is not served", staticDir)
		}
	}

	cors := restful.CrossOriginResourceSharing{
		AllowedHeaders: []string{"Content-Type", "Accept"},
		AllowedMethods: []string{"GET", "POST"},
		AllowedDomains: nil, // every origin
		Container:      container,
	}
	container.Filter(cors.Filter)
	container.Filter(requestLogger(log))

	return container, ws
}

// requestLogger logs every request line, and headers in debug mode.
func requestLogger(log *logger.Logger) restful.FilterFunction {
	return func(req *restful.Request, resp *restful.Response, chain *restful.FilterChain) {
		url := req.Request.URL.Path
		if req.Request.URL.RawQuery != "" {
			url += "?" + req.Request.URL.RawQuery
		}
		log.Info("%s %s %s", req.Request.Method, url, req.Request.Proto)

		if log.IsDebugEnabled() && len(req.Request.Header) > 0 {
			headers := make([]string, 0, len(req.Request.Header))
			for name, values := range req.Request.Header {
				headers = append(headers, fmt.Sprintf("%s: %s", name, values[0]))
			}
			log.Debug("Headers: %s", strings.Join(headers, ", "))
		}
		log.Debug("Request route: %s", req.SelectedRoutePath())

		chain.ProcessFilter(req, resp)

		log.Debug("Response status: %d", resp.StatusCode())
	}
}

func logEndpoints(log *logger.Logger, ws *restful.WebService) {
	endpoints := make([]format.APIEndpoint, 0, len(ws.Routes()))
	for _, route := range ws.Routes() {
		endpoints = append(endpoints, format.APIEndpoint{
			Method:      route.Method,
			Path:        route.Path,
			Description: route.Doc,
		})
	}
	format.LogAPIEndpoints(log, endpoints)
}
