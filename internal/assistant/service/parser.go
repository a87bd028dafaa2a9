package service

import (
	"errors"
	"strings"

	jsoniter "github.com/json-iterator/go"

	model "github.com/babelcloud/gbox/packages/relay/pkg/browser"
)

// CommandMarker separates the explanation from the structured action in a
// model reply.
const CommandMarker = "COMMAND:"

var (
	ErrNoCommand       = errors.New("reply carries no command")
	ErrMalformedAction = errors.New("command is not a valid action object")
)

var actionJSON = jsoniter.ConfigCompatibleWithStandardLibrary

// Parse splits a raw model reply on the first CommandMarker. Text before the
// marker is the conversation. The first JSON object after it is decoded into
// an Action; anything that does not decode leaves Action nil. Parse never
// fails.
func Parse(raw string) model.Reply {
	conversation, segment, found := strings.Cut(raw, CommandMarker)
	reply := model.Reply{Conversation: strings.TrimSpace(conversation)}
	if !found {
		return reply
	}
	action, err := DecodeAction(segment)
	if err != nil {
		// A bad command drops the action only. The model's own text is still
		// the answer; FallbackReply is reserved for failed model calls.
		return reply
	}
	reply.Action = action
	return reply
}

// DecodeAction decodes the structured segment that follows the marker.
// Surrounding code fences and trailing prose are ignored.
func DecodeAction(segment string) (*model.Action, error) {
	object, ok := firstObject(stripFences(segment))
	if !ok {
		return nil, ErrNoCommand
	}

	var action model.Action
	if err := actionJSON.UnmarshalFromString(object, &action); err != nil {
		return nil, errors.Join(ErrMalformedAction, err)
	}
	if action.Kind == "" {
		return nil, errors.Join(ErrMalformedAction, errors.New(`missing "action"`))
	}
	return &action, nil
}

// stripFences removes a leading ``` or ```json fence and its closing fence.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 && !strings.Contains(s[:nl], "{") {
		s = s[nl+1:]
	}
	if end := strings.Index(s, "```"); end >= 0 {
		s = s[:end]
	}
	return strings.TrimSpace(s)
}

// firstObject returns the first balanced {...} in s. Braces inside JSON
// strings do not count.
func firstObject(s string) (string, bool) {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return "", false
	}

	depth := 0
	inString, escaped := false, false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1], true
			}
		}
	}
	return "", false
}
