package service

import (
	"context"
	"fmt"
	"time"

	model "github.com/babelcloud/gbox/packages/relay/pkg/browser"
	"github.com/babelcloud/gbox/packages/relay/pkg/logger"
)

const (
	clearFocusedScript = `() => {
		if (document.activeElement) {
			document.activeElement.value = '';
		}
	}`
	scrollScript   = `(pixels) => { window.scrollBy(0, pixels); }`
	setValueScript = `({ selector, value }) => {
		const element = document.querySelector(selector);
		if (!element) {
			return false;
		}
		element.value = value;
		element.dispatchEvent(new Event('input', { bubbles: true }));
		return true;
	}`
)

// Delays are the fixed settle waits after each mutating action, so the next
// screenshot sees the page after client-side rendering.
type Delays struct {
	Click      time.Duration
	Type       time.Duration
	Keystroke  time.Duration
	Press      time.Duration
	Scroll     time.Duration
	Navigate   time.Duration
	SetValue   time.Duration
	ClearInput time.Duration
	// SelectorTimeout bounds waitForSelector.
	SelectorTimeout time.Duration
}

// DefaultDelays returns the standard settle timings.
func DefaultDelays() Delays {
	return Delays{
		Click:           500 * time.Millisecond,
		Type:            500 * time.Millisecond,
		Keystroke:       50 * time.Millisecond,
		Press:           500 * time.Millisecond,
		Scroll:          700 * time.Millisecond,
		Navigate:        1000 * time.Millisecond,
		SetValue:        500 * time.Millisecond,
		ClearInput:      300 * time.Millisecond,
		SelectorTimeout: 5 * time.Second,
	}
}

// SleepFunc waits for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

// ExecutorOption customizes an Executor.
type ExecutorOption func(*Executor)

// WithDelays overrides the settle timings.
func WithDelays(d Delays) ExecutorOption {
	return func(e *Executor) { e.delays = d }
}

// WithSleep replaces the settle wait, mainly for tests.
func WithSleep(fn SleepFunc) ExecutorOption {
	return func(e *Executor) { e.sleep = fn }
}

// Executor applies one Action to a page.
type Executor struct {
	delays Delays
	sleep  SleepFunc
	log    *logger.Logger
}

// NewExecutor creates an Executor with the default delays.
func NewExecutor(log *logger.Logger, opts ...ExecutorOption) *Executor {
	e := &Executor{
		delays: DefaultDelays(),
		sleep:  sleepContext,
		log:    log.Named("executor"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Execute applies action to page and reports whether it ran without an
// internal failure. It never returns an error or panics: failures are logged
// and reported as false. A kind whose required payload is missing does
// nothing and still counts as success, as does an unknown kind. A nil action
// reports false.
func (e *Executor) Execute(ctx context.Context, page Page, action *model.Action) (ok bool) {
	if action == nil {
		return false
	}
	defer func() {
		if r := recover(); r != nil {
			e.log.Error("Action %q panicked: %v", action.Kind, r)
			ok = false
		}
	}()
	if page == nil {
		e.log.Error("Action %q failed: %v", action.Kind, ErrSessionNotReady)
		return false
	}

	if err := e.apply(ctx, page, action); err != nil {
		e.log.Error("Error executing command %q: %v", action.Kind, err)
		return false
	}
	return true
}

func (e *Executor) apply(ctx context.Context, page Page, a *model.Action) error {
	if !a.Kind.Known() {
		e.log.Warn("Unknown action %q, ignoring", a.Kind)
		return nil
	}
	if !a.Actionable() {
		e.log.Debug("No action needed for %q", a.Kind)
		return nil
	}

	switch a.Kind {
	case model.ActionClick:
		if err := page.Click(a.Coordinates.X, a.Coordinates.Y); err != nil {
			return fmt.Errorf("click at (%.0f, %.0f): %w", a.Coordinates.X, a.Coordinates.Y, err)
		}
		return e.settle(ctx, e.delays.Click)

	case model.ActionType:
		if _, err := page.Evaluate(clearFocusedScript, nil); err != nil {
			return fmt.Errorf("clear focused input: %w", err)
		}
		if err := page.Type(a.Text, e.delays.Keystroke); err != nil {
			return fmt.Errorf("type text: %w", err)
		}
		return e.settle(ctx, e.delays.Type)

	case model.ActionPress:
		if err := page.Press(a.Key); err != nil {
			return fmt.Errorf("press %q: %w", a.Key, err)
		}
		return e.settle(ctx, e.delays.Press)

	case model.ActionScroll:
		if _, err := page.Evaluate(scrollScript, a.Pixels); err != nil {
			return fmt.Errorf("scroll by %.0f: %w", a.Pixels, err)
		}
		return e.settle(ctx, e.delays.Scroll)

	case model.ActionNavigate:
		if err := page.Goto(a.URL); err != nil {
			return fmt.Errorf("navigate to %s: %w", a.URL, err)
		}
		return e.settle(ctx, e.delays.Navigate)

	case model.ActionSetValue:
		found, err := page.Evaluate(setValueScript, map[string]interface{}{
			"selector": a.Selector,
			"value":    a.Value,
		})
		if err != nil {
			return fmt.Errorf("set value on %q: %w", a.Selector, err)
		}
		if matched, ok := found.(bool); ok && !matched {
			e.log.Debug("setValue: no element matches %q", a.Selector)
		}
		return e.settle(ctx, e.delays.SetValue)

	case model.ActionClearInput:
		if _, err := page.Evaluate(clearFocusedScript, nil); err != nil {
			return fmt.Errorf("clear focused input: %w", err)
		}
		return e.settle(ctx, e.delays.ClearInput)

	case model.ActionWaitForSelector:
		if err := page.WaitForSelector(a.Selector, e.delays.SelectorTimeout); err != nil {
			return fmt.Errorf("wait for %q: %w", a.Selector, err)
		}
		return nil

	default:
		return nil
	}
}

func (e *Executor) settle(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	return e.sleep(ctx, d)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
