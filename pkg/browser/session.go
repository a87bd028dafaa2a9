// packages/relay/pkg/browser/session.go
package model

import "fmt"

// DisplayMode selects whether the browser window is visible.
type DisplayMode string

const (
	ModeHeadless DisplayMode = "headless"
	ModeWindowed DisplayMode = "windowed"
)

// ParseDisplayMode accepts "headless", "windowed" and the legacy alias "normal".
func ParseDisplayMode(s string) (DisplayMode, error) {
	switch s {
	case "headless", "":
		return ModeHeadless, nil
	case "windowed", "normal", "headful":
		return ModeWindowed, nil
	}
	return "", fmt.Errorf("unknown display mode: %q", s)
}

// Toggle returns the other mode.
func (m DisplayMode) Toggle() DisplayMode {
	if m == ModeHeadless {
		return ModeWindowed
	}
	return ModeHeadless
}

// Headless reports whether the mode launches without a window.
func (m DisplayMode) Headless() bool {
	return m != ModeWindowed
}

// Label is the name reported over HTTP; windowed is reported as "normal".
func (m DisplayMode) Label() string {
	if m == ModeWindowed {
		return "normal"
	}
	return string(ModeHeadless)
}

// PageInfo describes the live page.
type PageInfo struct {
	URL         string      `json:"url"`
	Title       string      `json:"title"`
	Mode        DisplayMode `json:"mode"`
	Content     *string     `json:"content,omitempty"`
	ContentType *string     `json:"contentType,omitempty"`
}
