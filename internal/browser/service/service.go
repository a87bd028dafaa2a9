package service

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"sync"

	"golang.org/x/sync/semaphore"

	"github.com/babelcloud/gbox/packages/relay/config"
	model "github.com/babelcloud/gbox/packages/relay/pkg/browser"
	"github.com/babelcloud/gbox/packages/relay/pkg/logger"
)

var (
	ErrSessionNotReady = errors.New("browser session is not ready")
	ErrSessionClosed   = errors.New("browser session is closed")
)

// Controller owns the single shared browser session: one browser, one page,
// one display mode. Launching replaces whatever session existed before.
type Controller struct {
	launcher Launcher
	executor *Executor
	cfg      config.BrowserConfig
	log      *logger.Logger

	// ops admits one session operation at a time; nil when operations run
	// unserialized.
	ops *semaphore.Weighted

	mu     sync.RWMutex // guards page, mode and closed
	page   Page
	mode   model.DisplayMode
	closed bool
}

// NewController creates a Controller. No browser is started until Launch.
func NewController(launcher Launcher, executor *Executor, cfg config.BrowserConfig, log *logger.Logger) *Controller {
	c := &Controller{
		launcher: launcher,
		executor: executor,
		cfg:      cfg,
		log:      log.Named("session"),
		mode:     model.ModeHeadless,
	}
	if cfg.Serialize {
		c.ops = semaphore.NewWeighted(1)
	}
	return c
}

// acquire waits for the operation slot. The returned release is always safe
// to call.
func (c *Controller) acquire(ctx context.Context) (func(), error) {
	if c.ops == nil {
		return func() {}, nil
	}
	if err := c.ops.Acquire(ctx, 1); err != nil {
		return func() {}, err
	}
	return func() { c.ops.Release(1) }, nil
}

// Launch closes any existing session and opens a new one in mode. The session
// is ready only after navigation to the start URL has completed.
func (c *Controller) Launch(ctx context.Context, mode model.DisplayMode) error {
	release, err := c.acquire(ctx)
	if err != nil {
		return err
	}
	defer release()
	return c.launchLocked(mode)
}

func (c *Controller) launchLocked(mode model.DisplayMode) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrSessionClosed
	}

	if c.page != nil {
		if err := c.page.Close(); err != nil {
			c.log.Warn("Failed to close previous session: %v", err)
		}
		c.page = nil
	}

	page, err := c.launcher.Launch(LaunchOptions{
		Headless:       mode.Headless(),
		Args:           c.cfg.Args,
		ViewportWidth:  c.cfg.ViewportWidth,
		ViewportHeight: c.cfg.ViewportHeight,
		BlockPattern:   c.cfg.BlockPattern,
		Timeout:        c.cfg.LaunchTimeout,
	})
	if err != nil {
		return fmt.Errorf("launch %s session: %w", mode, err)
	}

	if err := page.Goto(c.cfg.StartURL); err != nil {
		if closeErr := page.Close(); closeErr != nil {
			c.log.Warn("Failed to close page after navigation error: %v", closeErr)
		}
		return fmt.Errorf("navigate to %s: %w", c.cfg.StartURL, err)
	}

	c.page = page
	c.mode = mode
	c.log.Info("Session ready in %s mode at %s", mode, c.cfg.StartURL)
	return nil
}

// ToggleMode flips the display mode and relaunches. It returns the new mode.
func (c *Controller) ToggleMode(ctx context.Context) (model.DisplayMode, error) {
	release, err := c.acquire(ctx)
	if err != nil {
		return "", err
	}
	defer release()

	next := c.Mode().Toggle()
	if err := c.launchLocked(next); err != nil {
		return "", err
	}
	return next, nil
}

// Relaunch reopens the session in its current mode.
func (c *Controller) Relaunch(ctx context.Context) error {
	return c.Launch(ctx, c.Mode())
}

// Mode returns the current display mode.
func (c *Controller) Mode() model.DisplayMode {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.mode
}

// Healthy reports whether a live page exists.
func (c *Controller) Healthy() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.page != nil && !c.page.IsClosed()
}

func (c *Controller) currentPage() (Page, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return nil, ErrSessionClosed
	}
	if c.page == nil {
		return nil, ErrSessionNotReady
	}
	return c.page, nil
}

// Screenshot captures the current viewport.
func (c *Controller) Screenshot(ctx context.Context) ([]byte, error) {
	release, err := c.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	page, err := c.currentPage()
	if err != nil {
		return nil, err
	}
	buf, err := page.Screenshot(c.cfg.ScreenshotType)
	if err != nil {
		return nil, fmt.Errorf("capture screenshot: %w", err)
	}
	return buf, nil
}

// ScreenshotBase64 captures the viewport and encodes it as standard base64.
func (c *Controller) ScreenshotBase64(ctx context.Context) (string, error) {
	buf, err := c.Screenshot(ctx)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(buf), nil
}

// Execute runs action against the current page. Like Executor.Execute it
// never fails loudly: a missing session or a cancelled wait reports false.
func (c *Controller) Execute(ctx context.Context, action *model.Action) bool {
	release, err := c.acquire(ctx)
	if err != nil {
		c.log.Error("Action skipped: %v", err)
		return false
	}
	defer release()

	page, err := c.currentPage()
	if err != nil {
		c.log.Error("Action skipped: %v", err)
		return false
	}
	return c.executor.Execute(ctx, page, action)
}

// Close tears the session down and stops the launcher. Further operations
// fail with ErrSessionClosed.
func (c *Controller) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true

	var errs []error
	if c.page != nil {
		if err := c.page.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close browser: %w", err))
		}
		c.page = nil
	}
	if err := c.launcher.Stop(); err != nil {
		errs = append(errs, fmt.Errorf("stop launcher: %w", err))
	}
	return errors.Join(errs...)
}
