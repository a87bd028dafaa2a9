package service

import (
	"strings"

	"github.com/playwright-community/playwright-go"

	"github.com/babelcloud/gbox/packages/relay/pkg/logger"
)

// shouldBlock reports whether a request is the noisy tracking beacon: an image
// request whose URL contains pattern. Everything else passes.
func shouldBlock(resourceType, url, pattern string) bool {
	return pattern != "" && resourceType == "image" && strings.Contains(url, pattern)
}

func blockingRouteHandler(pattern string, log *logger.Logger) func(playwright.Route) {
	return func(route playwright.Route) {
		req := route.Request()
		if shouldBlock(req.ResourceType(), req.URL(), pattern) {
			if err := route.Abort(); err != nil {
				log.Debug("Failed to abort %s: %v", req.URL(), err)
			}
			return
		}
		if err := route.Continue(); err != nil {
			log.Debug("Failed to continue %s: %v", req.URL(), err)
		}
	}
}
