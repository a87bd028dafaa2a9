// packages/relay/pkg/chat/chat.go
package model

import "time"

// DefaultUsername is recorded when a chat request names no user.
const DefaultUsername = "anonymous"

// ChatRequest is the body of POST /chat.
type ChatRequest struct {
	Message  string `json:"message"`
	Username string `json:"username,omitempty"`
}

// ChatResponse is the body returned by POST /chat. On success Screenshot
// holds the post-action viewport as base64. On failure Error is set and
// Success is false.
type ChatResponse struct {
	Response   string `json:"response"`
	Screenshot string `json:"screenshot,omitempty"`
	Success    bool   `json:"success"`
	Error      string `json:"error,omitempty"`
}

// Entry is one recorded exchange.
type Entry struct {
	ID         string    `json:"id"`
	Username   string    `json:"username"`
	Message    string    `json:"message"`
	AIResponse string    `json:"ai_response"`
	Command    *string   `json:"command"` // action JSON, null when none
	CreatedAt  time.Time `json:"created_at"`
}

// HistoryResult is the body of GET /history/{username}.
type HistoryResult struct {
	History []Entry `json:"history"`
}
