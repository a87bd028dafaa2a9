// packages/relay/pkg/browser/reply.go
package model

import "encoding/json"

// Reply is a model response split into explanation text and an optional action.
type Reply struct {
	Conversation string  `json:"conversation"`
	Action       *Action `json:"action,omitempty"`
}

// Command returns the action re-encoded as JSON, or nil when there is none.
// This is the form the history store records.
func (r Reply) Command() *string {
	if r.Action == nil {
		return nil
	}
	b, err := json.Marshal(r.Action)
	if err != nil {
		return nil
	}
	s := string(b)
	return &s
}
