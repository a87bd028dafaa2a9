// packages/relay/pkg/browser/action_types.go
package model

// ActionKind names one of the discrete UI operations a model may request.
type ActionKind string

const (
	ActionClick           ActionKind = "click"           // Pointer click at coordinates.
	ActionType            ActionKind = "type"            // Replace the focused input's text, keystroke by keystroke.
	ActionPress           ActionKind = "press"           // Single key press.
	ActionScroll          ActionKind = "scroll"          // Vertical viewport scroll by pixels.
	ActionNavigate        ActionKind = "navigate"        // Load a URL in the page.
	ActionSetValue        ActionKind = "setValue"        // Set an element's value by selector and fire "input".
	ActionClearInput      ActionKind = "clearInput"      // Clear the focused element's value.
	ActionWaitForSelector ActionKind = "waitForSelector" // Wait up to 5s for a selector to appear.
	ActionNoop            ActionKind = "noop"
)

// Known reports whether k is part of the action vocabulary. Unknown kinds are
// still accepted and execute as no-ops.
func (k ActionKind) Known() bool {
	switch k {
	case ActionClick, ActionType, ActionPress, ActionScroll, ActionNavigate,
		ActionSetValue, ActionClearInput, ActionWaitForSelector, ActionNoop:
		return true
	}
	return false
}
