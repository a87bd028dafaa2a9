package service_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/babelcloud/gbox/packages/relay/internal/assistant/service"
	model "github.com/babelcloud/gbox/packages/relay/pkg/browser"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want model.Reply
	}{
		{
			name: "search scenario",
			raw:  "I'll search for cats.\nCOMMAND: {\"action\":\"navigate\",\"url\":\"https://www.youtube.com/results?search_query=cats\"}",
			want: model.Reply{
				Conversation: "I'll search for cats.",
				Action:       &model.Action{Kind: model.ActionNavigate, URL: "https://www.youtube.com/results?search_query=cats"},
			},
		},
		{
			name: "no marker",
			raw:  "  The video is already playing.  \n",
			want: model.Reply{Conversation: "The video is already playing."},
		},
		{
			name: "marker with nothing after it",
			raw:  "Done.\nCOMMAND:",
			want: model.Reply{Conversation: "Done."},
		},
		{
			name: "malformed payload keeps conversation",
			raw:  "Scrolling down.\nCOMMAND: {\"action\": \"scroll\", \"pixels\": ",
			want: model.Reply{Conversation: "Scrolling down."},
		},
		{
			name: "payload is not an object",
			raw:  "Okay.\nCOMMAND: scroll down a bit",
			want: model.Reply{Conversation: "Okay."},
		},
		{
			name: "wrong field type is rejected",
			raw:  "Scrolling.\nCOMMAND: {\"action\":\"scroll\",\"pixels\":\"400\"}",
			want: model.Reply{Conversation: "Scrolling."},
		},
		{
			name: "comments copied from the prompt are rejected",
			raw:  "Clicking.\nCOMMAND: {\n  \"action\": \"click\",\n  // For click:\n  \"coordinates\": {\"x\": 1, \"y\": 2}\n}",
			want: model.Reply{Conversation: "Clicking."},
		},
		{
			name: "missing action kind",
			raw:  "Hmm.\nCOMMAND: {\"pixels\": 400}",
			want: model.Reply{Conversation: "Hmm."},
		},
		{
			name: "fenced payload with trailing prose",
			raw:  "Scrolling down.\nCOMMAND: ```json\n{\"action\":\"scroll\",\"pixels\":400}\n```\nLet me know if you need more.",
			want: model.Reply{
				Conversation: "Scrolling down.",
				Action:       &model.Action{Kind: model.ActionScroll, Pixels: 400},
			},
		},
		{
			name: "braces inside strings",
			raw:  "Setting the search box.\nCOMMAND: {\"action\":\"setValue\",\"selector\":\"input[name='search_query']\",\"value\":\"{lofi} beats\"}",
			want: model.Reply{
				Conversation: "Setting the search box.",
				Action: &model.Action{
					Kind:     model.ActionSetValue,
					Selector: "input[name='search_query']",
					Value:    "{lofi} beats",
				},
			},
		},
		{
			name: "only the first marker splits",
			raw:  "Typing.\nCOMMAND: {\"action\":\"type\",\"text\":\"COMMAND: cats\"}",
			want: model.Reply{
				Conversation: "Typing.",
				Action:       &model.Action{Kind: model.ActionType, Text: "COMMAND: cats"},
			},
		},
		{
			name: "unknown kind still decodes",
			raw:  "Hovering.\nCOMMAND: {\"action\":\"hover\",\"selector\":\"#logo\"}",
			want: model.Reply{
				Conversation: "Hovering.",
				Action:       &model.Action{Kind: "hover", Selector: "#logo"},
			},
		},
		{
			name: "click with coordinates",
			raw:  "Opening the first video.\nCOMMAND: {\"action\":\"click\",\"coordinates\":{\"x\":320.5,\"y\":240}}",
			want: model.Reply{
				Conversation: "Opening the first video.",
				Action:       &model.Action{Kind: model.ActionClick, Coordinates: &model.Coordinates{X: 320.5, Y: 240}},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := service.Parse(tt.raw)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Parse() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestDecodeActionErrors(t *testing.T) {
	_, err := service.DecodeAction("no object here")
	assert.ErrorIs(t, err, service.ErrNoCommand)

	_, err = service.DecodeAction(`{"action": 7}`)
	assert.ErrorIs(t, err, service.ErrMalformedAction)

	action, err := service.DecodeAction("\n```\n{\"action\":\"press\",\"key\":\"Enter\"}\n```")
	require.NoError(t, err)
	assert.Equal(t, model.ActionPress, action.Kind)
	assert.Equal(t, "Enter", action.Key)
}

func TestBuildPrompt(t *testing.T) {
	prompt := service.BuildPrompt(`play "lofi" music`)

	assert.Contains(t, prompt, `"play \"lofi\" music"`)
	assert.Contains(t, prompt, service.CommandMarker)
	assert.Contains(t, prompt, "waitForSelector")
}
