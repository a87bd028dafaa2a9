package service_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	service "github.com/babelcloud/gbox/packages/relay/internal/browser/service"
	"github.com/babelcloud/gbox/packages/relay/pkg/logger"
)

// --- Fake Page ---

type call struct {
	Method string
	Args   []interface{}
}

// fakePage records every call and can be told to fail or panic.
type fakePage struct {
	mu       sync.Mutex
	calls    []call
	url      string
	scrollY  float64
	closed   bool
	failWith error
	panicOn  string
	// evaluateResult is returned from Evaluate when non-nil.
	evaluateResult interface{}
	screenshot     []byte
	closeCount     int
}

var _ service.Page = (*fakePage)(nil)

func newFakePage() *fakePage {
	return &fakePage{screenshot: []byte{0xff, 0xd8, 0xff, 0xe0}}
}

func (p *fakePage) record(method string, args ...interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.panicOn == method {
		panic(fmt.Sprintf("%s exploded", method))
	}
	p.calls = append(p.calls, call{Method: method, Args: args})
	if p.closed {
		return errors.New("target page, context or browser has been closed")
	}
	return p.failWith
}

func (p *fakePage) Calls() []call {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]call, len(p.calls))
	copy(out, p.calls)
	return out
}

func (p *fakePage) Methods() []string {
	var methods []string
	for _, c := range p.Calls() {
		methods = append(methods, c.Method)
	}
	return methods
}

func (p *fakePage) Click(x, y float64) error { return p.record("Click", x, y) }

func (p *fakePage) Type(text string, delay time.Duration) error {
	return p.record("Type", text, delay)
}

func (p *fakePage) Press(key string) error { return p.record("Press", key) }

func (p *fakePage) Evaluate(script string, arg interface{}) (interface{}, error) {
	if err := p.record("Evaluate", script, arg); err != nil {
		return nil, err
	}
	if pixels, ok := arg.(float64); ok {
		p.mu.Lock()
		p.scrollY += pixels
		p.mu.Unlock()
	}
	return p.evaluateResult, nil
}

func (p *fakePage) Goto(url string) error {
	if err := p.record("Goto", url); err != nil {
		return err
	}
	p.mu.Lock()
	p.url = url
	p.mu.Unlock()
	return nil
}

func (p *fakePage) WaitForSelector(selector string, timeout time.Duration) error {
	return p.record("WaitForSelector", selector, timeout)
}

func (p *fakePage) Screenshot(imageType string) ([]byte, error) {
	if err := p.record("Screenshot", imageType); err != nil {
		return nil, err
	}
	return p.screenshot, nil
}

func (p *fakePage) URL() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.url
}

func (p *fakePage) Title() (string, error) { return "Fake Tube", p.record("Title") }

func (p *fakePage) Content() (string, error) {
	return "<html><body><h1>Results</h1><p>cats</p></body></html>", p.record("Content")
}

func (p *fakePage) IsClosed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closed
}

func (p *fakePage) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	p.closeCount++
	return nil
}

// --- Fake Launcher ---

type fakeLauncher struct {
	mu        sync.Mutex
	launches  []service.LaunchOptions
	pages     []*fakePage
	launchErr error
	gotoErr   error
	stopped   bool
}

var _ service.Launcher = (*fakeLauncher)(nil)

func (l *fakeLauncher) Launch(opts service.LaunchOptions) (service.Page, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.launchErr != nil {
		return nil, l.launchErr
	}
	l.launches = append(l.launches, opts)
	page := newFakePage()
	if l.gotoErr != nil {
		page.failWith = l.gotoErr
	}
	l.pages = append(l.pages, page)
	return page, nil
}

func (l *fakeLauncher) Stop() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.stopped = true
	return nil
}

func (l *fakeLauncher) lastPage() *fakePage {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.pages) == 0 {
		return nil
	}
	return l.pages[len(l.pages)-1]
}

// --- Sleep recorder ---

type sleepRecorder struct {
	mu    sync.Mutex
	waits []time.Duration
}

func (r *sleepRecorder) Sleep(ctx context.Context, d time.Duration) error {
	r.mu.Lock()
	r.waits = append(r.waits, d)
	r.mu.Unlock()
	return ctx.Err()
}

func (r *sleepRecorder) Waits() []time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]time.Duration, len(r.waits))
	copy(out, r.waits)
	return out
}

func testLogger() *logger.Logger {
	log := logger.New()
	log.Silence()
	return log
}
