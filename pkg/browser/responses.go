// packages/relay/pkg/browser/responses.go
package model

// ScreenshotResult is the body of GET /screenshot.
type ScreenshotResult struct {
	Screenshot string `json:"screenshot"` // base64, no data: prefix
}

// ToggleResult is the body of POST /toggle-headless.
type ToggleResult struct {
	Mode    string `json:"mode"`
	Success bool   `json:"success"`
}
