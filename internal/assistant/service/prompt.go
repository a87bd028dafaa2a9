package service

import (
	"fmt"
	"strings"
)

const promptTemplate = `You are a YouTube automation assistant. Analyze the screenshot and help with the following request:

%q

Respond with:
1. A friendly explanation of what you'll do
2. A command in this format:
COMMAND: {
    "action": "%s",
    // For click:
    "coordinates": {"x": number, "y": number},
    // For type:
    "text": "string",
    // For press:
    "key": "string",
    // For setValue / waitForSelector:
    "selector": "CSS selector",
    "value": "string",
    // For scroll:
    "pixels": number,
    // For navigate:
    "url": "string"
}
Write the command as plain JSON without comments.
3. For searching on YouTube prefer the URL query method, navigating to the search results URL directly.
Focus on accuracy and user experience.`

var promptKinds = []string{
	"type", "click", "press", "scroll", "navigate", "setValue", "clearInput", "waitForSelector",
}

// BuildPrompt renders the instruction sent alongside the screenshot.
func BuildPrompt(message string) string {
	return fmt.Sprintf(promptTemplate, message, strings.Join(promptKinds, "|"))
}
