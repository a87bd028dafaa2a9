package format

import (
	"github.com/fatih/color"

	"github.com/babelcloud/gbox/packages/relay/pkg/logger"
)

// APIEndpoint represents an API endpoint
type APIEndpoint struct {
	Method      string
	Path        string
	Description string
}

// FormatHTTPMethod returns a colored and bold HTTP method string
func FormatHTTPMethod(method string) string {
	switch method {
	case "GET":
		return color.New(color.Bold, color.FgGreen).Sprint(method)
	case "POST":
		return color.New(color.Bold, color.FgYellow).Sprint(method)
	case "PUT":
		return color.New(color.Bold, color.FgBlue).Sprint(method)
	case "DELETE":
		return color.New(color.Bold, color.FgRed).Sprint(method)
	default:
		return color.New(color.Bold).Sprint(method)
	}
}

// FormatDisplayMode returns the startup banner for the browser display mode
func FormatDisplayMode(mode, startURL string) string {
	green := color.New(color.FgGreen)
	return green.Sprint("Browser session in ") +
		color.New(color.Bold, color.FgCyan).Sprint(mode) +
		green.Sprint(" mode at ") +
		color.New(color.Underline).Sprint(startURL)
}

// LogAPIEndpoints logs a header and a list of API endpoints
func LogAPIEndpoints(log *logger.Logger, endpoints []APIEndpoint) {
	log.Info("API endpoints:")
	for _, endpoint := range endpoints {
		// tabs keep alignment, ANSI codes don't move tab stops
		log.Info("  %s\t\t%s\t\t%s",
			FormatHTTPMethod(endpoint.Method),
			endpoint.Path,
			endpoint.Description,
		)
	}
}
