package service

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	assistant "github.com/babelcloud/gbox/packages/relay/internal/assistant/service"
	apierrors "github.com/babelcloud/gbox/packages/relay/internal/common/errors"
	browser "github.com/babelcloud/gbox/packages/relay/pkg/browser"
	model "github.com/babelcloud/gbox/packages/relay/pkg/chat"
	"github.com/babelcloud/gbox/packages/relay/pkg/logger"
)

// historyTimeout bounds the best-effort history write.
const historyTimeout = 5 * time.Second

// Session is the part of the session controller a chat turn needs.
type Session interface {
	Screenshot(ctx context.Context) ([]byte, error)
	Execute(ctx context.Context, action *browser.Action) bool
}

// Recorder appends exchanges to the history log.
type Recorder interface {
	Append(ctx context.Context, entry model.Entry) error
}

// ChatService runs one chat turn: screenshot, plan, record, act, screenshot.
type ChatService struct {
	session  Session
	planner  assistant.Planner
	recorder Recorder
	limiter  *rate.Limiter
	log      *logger.Logger
}

// Option configures a ChatService.
type Option func(*ChatService)

// WithRateLimit admits at most r chat turns per second with the given burst.
// A non-positive r leaves chat unlimited.
func WithRateLimit(r float64, burst int) Option {
	return func(s *ChatService) {
		if r <= 0 {
			s.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		s.limiter = rate.NewLimiter(rate.Limit(r), burst)
	}
}

// New creates a ChatService.
func New(session Session, planner assistant.Planner, recorder Recorder, log *logger.Logger, opts ...Option) *ChatService {
	s := &ChatService{
		session:  session,
		planner:  planner,
		recorder: recorder,
		log:      log.Named("chat"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Chat runs one turn. Model and action failures are absorbed; the returned
// error is non-nil only for a rejected request or a screenshot failure.
// Once admitted, a turn runs to completion even if the caller goes away.
func (s *ChatService) Chat(ctx context.Context, req model.ChatRequest) (*model.ChatResponse, error) {
	message := strings.TrimSpace(req.Message)
	if message == "" {
		return nil, apierrors.New(apierrors.CodeBadRequest, "message is required")
	}
	if s.limiter != nil && !s.limiter.Allow() {
		return nil, apierrors.New(apierrors.CodeTooManyRequests, "too many chat requests, slow down")
	}
	username := strings.TrimSpace(req.Username)
	if username == "" {
		username = model.DefaultUsername
	}

	ctx = context.WithoutCancel(ctx)
	turn := uuid.NewString()[:8]
	s.log.Info("[%s] %s: %q", turn, username, message)

	before, err := s.session.Screenshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("capture screenshot: %w", err)
	}

	reply := s.planner.Plan(ctx, message, before)
	s.record(ctx, turn, username, message, reply)

	after := before
	if reply.Action != nil {
		if ok := s.session.Execute(ctx, reply.Action); !ok {
			s.log.Warn("[%s] Action %s did not complete", turn, reply.Action.Kind)
		}
		after, err = s.session.Screenshot(ctx)
		if err != nil {
			return nil, fmt.Errorf("capture screenshot after action: %w", err)
		}
	}

	return &model.ChatResponse{
		Response:   reply.Conversation,
		Screenshot: base64.StdEncoding.EncodeToString(after),
		Success:    true,
	}, nil
}

// record appends the exchange. Failures are logged and never abort the turn.
func (s *ChatService) record(ctx context.Context, turn, username, message string, reply browser.Reply) {
	if s.recorder == nil {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, historyTimeout)
	defer cancel()

	err := s.recorder.Append(ctx, model.Entry{
		Username:   username,
		Message:    message,
		AIResponse: reply.Conversation,
		Command:    reply.Command(),
	})
	if err != nil {
		s.log.Error("[%s] Failed to record history: %v", turn, err)
	}
}
