package service

import (
	"fmt"
	"time"

	"github.com/playwright-community/playwright-go"

	"github.com/babelcloud/gbox/packages/relay/pkg/logger"
)

// Page is the subset of page control the executor and controller need.
// The playwright adapter below is the production implementation.
type Page interface {
	Click(x, y float64) error
	Type(text string, delay time.Duration) error
	Press(key string) error
	Evaluate(script string, arg interface{}) (interface{}, error)
	Goto(url string) error
	WaitForSelector(selector string, timeout time.Duration) error
	Screenshot(imageType string) ([]byte, error)
	URL() string
	Title() (string, error)
	Content() (string, error)
	IsClosed() bool
	// Close closes the page together with its browser.
	Close() error
}

// LaunchOptions describes a browser launch.
type LaunchOptions struct {
	Headless       bool
	Args           []string
	ViewportWidth  int
	ViewportHeight int
	BlockPattern   string
	Timeout        time.Duration
}

// Launcher starts a browser and opens the single session page.
type Launcher interface {
	Launch(opts LaunchOptions) (Page, error)
	Stop() error
}

// PlaywrightLauncher launches Chromium through a playwright driver.
type PlaywrightLauncher struct {
	pw  *playwright.Playwright
	log *logger.Logger
}

// NewPlaywrightLauncher starts the playwright driver.
func NewPlaywrightLauncher(log *logger.Logger) (*PlaywrightLauncher, error) {
	pw, err := playwright.Run()
	if err != nil {
		return nil, fmt.Errorf("could not start playwright: %w", err)
	}
	return &PlaywrightLauncher{pw: pw, log: log.Named("launcher")}, nil
}

// Launch starts Chromium, opens a page with the configured viewport and
// installs the request filter. Navigation is left to the caller.
func (l *PlaywrightLauncher) Launch(opts LaunchOptions) (Page, error) {
	launchOpts := playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(opts.Headless),
		Args:     opts.Args,
	}
	if opts.Timeout > 0 {
		launchOpts.Timeout = playwright.Float(float64(opts.Timeout.Milliseconds()))
	}

	browser, err := l.pw.Chromium.Launch(launchOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to launch chromium (headless=%t): %w", opts.Headless, err)
	}

	pageOpts := playwright.BrowserNewPageOptions{}
	if opts.ViewportWidth > 0 && opts.ViewportHeight > 0 {
		pageOpts.Viewport = &playwright.Size{
			Width:  opts.ViewportWidth,
			Height: opts.ViewportHeight,
		}
	}
	page, err := browser.NewPage(pageOpts)
	if err != nil {
		l.closeAfterFailure(func() error { return browser.Close() })
		return nil, fmt.Errorf("failed to open page: %w", err)
	}

	if opts.BlockPattern != "" {
		if err := page.Route("**/*", blockingRouteHandler(opts.BlockPattern, l.log)); err != nil {
			l.closeAfterFailure(func() error { return browser.Close() })
			return nil, fmt.Errorf("failed to install request filter: %w", err)
		}
	}

	l.log.Debug("Launched chromium %s (headless=%t)", browser.Version(), opts.Headless)
	return &playwrightPage{browser: browser, page: page}, nil
}

func (l *PlaywrightLauncher) closeAfterFailure(closeBrowser func() error) {
	if err := closeBrowser(); err != nil {
		l.log.Warn("Failed to close browser after launch error: %v", err)
	}
}

// Stop shuts the playwright driver down.
func (l *PlaywrightLauncher) Stop() error {
	return l.pw.Stop()
}

// playwrightPage adapts a playwright page and its owning browser to Page.
type playwrightPage struct {
	browser playwright.Browser
	page    playwright.Page
}

func (p *playwrightPage) Click(x, y float64) error {
	return p.page.Mouse().Click(x, y)
}

func (p *playwrightPage) Type(text string, delay time.Duration) error {
	return p.page.Keyboard().Type(text, playwright.KeyboardTypeOptions{
		Delay: playwright.Float(float64(delay.Milliseconds())),
	})
}

func (p *playwrightPage) Press(key string) error {
	return p.page.Keyboard().Press(key)
}

func (p *playwrightPage) Evaluate(script string, arg interface{}) (interface{}, error) {
	if arg == nil {
		return p.page.Evaluate(script)
	}
	return p.page.Evaluate(script, arg)
}

func (p *playwrightPage) Goto(url string) error {
	_, err := p.page.Goto(url)
	return err
}

func (p *playwrightPage) WaitForSelector(selector string, timeout time.Duration) error {
	return p.page.Locator(selector).First().WaitFor(playwright.LocatorWaitForOptions{
		Timeout: playwright.Float(float64(timeout.Milliseconds())),
	})
}

func (p *playwrightPage) Screenshot(imageType string) ([]byte, error) {
	opts := playwright.PageScreenshotOptions{Type: playwright.ScreenshotTypePng}
	if imageType == "jpeg" || imageType == "jpg" {
		opts.Type = playwright.ScreenshotTypeJpeg
	}
	return p.page.Screenshot(opts)
}

func (p *playwrightPage) URL() string {
	return p.page.URL()
}

func (p *playwrightPage) Title() (string, error) {
	return p.page.Title()
}

func (p *playwrightPage) Content() (string, error) {
	return p.page.Content()
}

func (p *playwrightPage) IsClosed() bool {
	return p.page.IsClosed() || !p.browser.IsConnected()
}

func (p *playwrightPage) Close() error {
	if !p.browser.IsConnected() {
		return nil
	}
	return p.browser.Close()
}
