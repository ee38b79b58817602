package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/pagecheck/page-contract-tests/browser"
)

const DefaultSettleDelay = time.Second

// Config describes how to open a session.
type Config struct {
	Driver          browser.Driver
	Browser         browser.Options
	Instrumentation Instrumentation

	// Settle is how long to wait after the page has loaded before instrumentation is installed.
	// Zero means DefaultSettleDelay; a negative value means no delay.
	Settle time.Duration

	// PressDelay is slept after each key press so that the page's listeners can run.
	PressDelay time.Duration

	Logger browser.Logger
}

// Session is one open page under test. It is owned by a single test run and must be closed by
// it; Close is safe to call more than once.
type Session struct {
	url        string
	page       browser.Page
	pressDelay time.Duration
	logger     browser.Logger
	closeOnce  sync.Once
	closeErr   error
}

// Open starts a browser on url, waits for the settle delay and installs instrumentation. If any
// step fails the browser is shut down again before returning.
func Open(ctx context.Context, url string, cfg Config) (*Session, error) {
	if cfg.Driver == nil {
		d, err := browser.Lookup("")
		if err != nil {
			return nil, err
		}
		cfg.Driver = d
	}
	logger := cfg.Logger
	if logger == nil {
		logger = cfg.Browser.Logger
	}

	opts := cfg.Browser
	if opts.Logger == nil {
		opts.Logger = logger
	}
	forward := opts.Console
	opts.Console = func(level, text string) {
		if logger != nil {
			logger.Printf("page console.%s: %s", level, text)
		}
		if forward != nil {
			forward(level, text)
		}
	}

	page, err := cfg.Driver.Open(ctx, url, opts)
	if err != nil {
		return nil, err
	}
	s := &Session{url: url, page: page, pressDelay: cfg.PressDelay, logger: logger}

	settle := cfg.Settle
	if settle == 0 {
		settle = DefaultSettleDelay
	}
	if err := sleep(ctx, settle); err != nil {
		_ = s.Close()
		return nil, err
	}

	installed, err := Inject(ctx, page, cfg.Instrumentation)
	if err != nil {
		_ = s.Close()
		return nil, err
	}
	s.debugf("Opened %s with %s; instrumented %v", url, cfg.Driver.Name(), installed)
	return s, nil
}

// FromPage wraps a page that is already open and instrumented.
func FromPage(url string, page browser.Page) *Session {
	return &Session{url: url, page: page}
}

func (s *Session) URL() string {
	return s.url
}

func (s *Session) Close() error {
	s.closeOnce.Do(func() {
		s.closeErr = s.page.Close()
		s.debugf("Closed %s", s.url)
	})
	return s.closeErr
}

func (s *Session) debugf(message string, args ...interface{}) {
	if s.logger != nil {
		s.logger.Printf(message, args...)
	}
}

func (s *Session) call(ctx context.Context, out interface{}, method string, args ...interface{}) error {
	expr, err := helperCall(method, args...)
	if err != nil {
		return err
	}
	if err := s.page.Evaluate(ctx, expr, out); err != nil {
		return fmt.Errorf("%s failed: %w", method, err)
	}
	return nil
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
