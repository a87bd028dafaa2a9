package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/gabriel-vasile/mimetype"
	"google.golang.org/genai"

	"github.com/babelcloud/gbox/packages/relay/config"
	model "github.com/babelcloud/gbox/packages/relay/pkg/browser"
	"github.com/babelcloud/gbox/packages/relay/pkg/logger"
)

// FallbackConversation is returned whenever the model cannot be reached or
// answers with nothing usable.
const FallbackConversation = "I'm having trouble processing that request. Could you try again?"

// ErrModelUnavailable is returned by generators that cannot reach a model.
var ErrModelUnavailable = errors.New("language model is not configured")

// FallbackReply is the reply used when the model call fails.
func FallbackReply() model.Reply {
	return model.Reply{Conversation: FallbackConversation}
}

// Planner turns a user message and the current screenshot into a Reply.
// Implementations never fail: errors degrade to FallbackReply.
type Planner interface {
	Plan(ctx context.Context, message string, screenshot []byte) model.Reply
}

// Generator produces raw model text for a prompt and image.
type Generator interface {
	Generate(ctx context.Context, prompt string, image []byte, mimeType string) (string, error)
}

// GeminiGenerator calls the Gemini API through the genai SDK.
type GeminiGenerator struct {
	client *genai.Client
	model  string
}

// NewGeminiGenerator creates a Gemini client for the configured model.
func NewGeminiGenerator(ctx context.Context, cfg config.ModelConfig) (*GeminiGenerator, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	return &GeminiGenerator{client: client, model: cfg.Name}, nil
}

// Generate sends the prompt and the inline image in a single user turn.
func (g *GeminiGenerator) Generate(ctx context.Context, prompt string, image []byte, mimeType string) (string, error) {
	parts := []*genai.Part{genai.NewPartFromText(prompt)}
	if len(image) > 0 {
		parts = append(parts, genai.NewPartFromBytes(image, mimeType))
	}
	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, nil)
	if err != nil {
		return "", err
	}
	return resp.Text(), nil
}

// UnavailableGenerator stands in when no model is configured. Every call
// fails with ErrModelUnavailable.
type UnavailableGenerator struct {
	Reason error
}

func (u UnavailableGenerator) Generate(ctx context.Context, prompt string, image []byte, mimeType string) (string, error) {
	if u.Reason != nil {
		return "", fmt.Errorf("%w: %v", ErrModelUnavailable, u.Reason)
	}
	return "", ErrModelUnavailable
}

// GeminiPlanner asks a Generator for a plan and parses the reply.
type GeminiPlanner struct {
	generator      Generator
	timeout        time.Duration
	maxRetries     uint64
	log            *logger.Logger
	backoffFactory func() backoff.BackOff
}

// PlannerOption configures a GeminiPlanner.
type PlannerOption func(*GeminiPlanner)

// WithBackOff replaces the retry schedule.
func WithBackOff(factory func() backoff.BackOff) PlannerOption {
	return func(p *GeminiPlanner) { p.backoffFactory = factory }
}

// NewGeminiPlanner creates a planner. A zero timeout disables the per-call
// deadline.
func NewGeminiPlanner(generator Generator, cfg config.ModelConfig, log *logger.Logger, opts ...PlannerOption) *GeminiPlanner {
	p := &GeminiPlanner{
		generator: generator,
		timeout:   cfg.Timeout,
		log:       log.Named("planner"),
		backoffFactory: func() backoff.BackOff {
			b := backoff.NewExponentialBackOff()
			b.InitialInterval = 500 * time.Millisecond
			b.MaxInterval = 5 * time.Second
			return b
		},
	}
	if cfg.MaxRetries > 0 {
		p.maxRetries = uint64(cfg.MaxRetries)
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Plan asks the model what to do next. Any failure is logged and answered
// with FallbackReply.
func (p *GeminiPlanner) Plan(ctx context.Context, message string, screenshot []byte) model.Reply {
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	prompt := BuildPrompt(message)
	mimeType := mimetype.Detect(screenshot).String()

	var raw string
	attempt := 0
	operation := func() error {
		attempt++
		text, err := p.generator.Generate(ctx, prompt, screenshot, mimeType)
		if err != nil {
			if !retryable(err) {
				return backoff.Permanent(err)
			}
			p.log.Warn("Model call attempt %d failed, retrying: %v", attempt, err)
			return err
		}
		raw = text
		return nil
	}

	b := backoff.WithContext(backoff.WithMaxRetries(p.backoffFactory(), p.maxRetries), ctx)
	if err := backoff.Retry(operation, b); err != nil {
		p.log.Error("Model call failed after %d attempt(s): %v", attempt, err)
		return FallbackReply()
	}

	reply := Parse(raw)
	if reply.Conversation == "" && reply.Action == nil {
		p.log.Warn("Model returned an empty reply")
		return FallbackReply()
	}
	if reply.Action == nil && strings.Contains(raw, CommandMarker) {
		p.log.Warn("Discarded malformed command in model reply")
	}
	if cmd := reply.Command(); cmd != nil {
		p.log.Debug("Model planned %s", *cmd)
	}
	return reply
}

// retryable reports whether err is a transient API failure.
func retryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, ErrModelUnavailable) {
		return false
	}
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case http.StatusTooManyRequests, http.StatusInternalServerError,
			http.StatusServiceUnavailable, http.StatusGatewayTimeout:
			return true
		}
		return false
	}
	return true
}
