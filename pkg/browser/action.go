// packages/relay/pkg/browser/action.go
package model

// Coordinates is a viewport point in CSS pixels.
type Coordinates struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Action is one structured browser operation decoded from model output.
// Payload fields are only meaningful for the kinds that use them.
type Action struct {
	Kind        ActionKind   `json:"action"`
	Coordinates *Coordinates `json:"coordinates,omitempty"` // click
	Text        string       `json:"text,omitempty"`        // type
	Key         string       `json:"key,omitempty"`         // press
	Pixels      float64      `json:"pixels,omitempty"`      // scroll
	URL         string       `json:"url,omitempty"`         // navigate
	Selector    string       `json:"selector,omitempty"`    // setValue, waitForSelector
	Value       string       `json:"value,omitempty"`       // setValue
}

// Actionable reports whether the payload carries every field the kind needs.
// Unknown kinds and noop are never actionable.
func (a *Action) Actionable() bool {
	if a == nil {
		return false
	}
	switch a.Kind {
	case ActionClick:
		return a.Coordinates != nil
	case ActionType:
		return a.Text != ""
	case ActionPress:
		return a.Key != ""
	case ActionScroll:
		return a.Pixels != 0
	case ActionNavigate:
		return a.URL != ""
	case ActionSetValue:
		return a.Selector != "" && a.Value != ""
	case ActionClearInput:
		return true
	case ActionWaitForSelector:
		return a.Selector != ""
	}
	return false
}
