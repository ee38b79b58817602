package browser

import (
	"context"
	"fmt"
	"time"
)

const (
	DefaultStartupTimeout = time.Second * 10
	DefaultWindowWidth    = 1280
	DefaultWindowHeight   = 800
)

// Driver starts browsers.
type Driver interface {
	Name() string
	// Open launches a browser, navigates to url and waits for the load event. Any failure to do so
	// is reported as a *LaunchError.
	Open(ctx context.Context, url string, opts Options) (Page, error)
}

// Page is one open browser page. Implementations are not safe for concurrent use; a page
// belongs to a single test run.
type Page interface {
	// Evaluate runs a JavaScript expression in the page and decodes its JSON-serializable result
	// into out, which may be nil if the result is not needed. Promises are awaited.
	Evaluate(ctx context.Context, expression string, out interface{}) error

	// PressKey dispatches keydown, keypress/input and keyup for a single key, as a user would.
	PressKey(ctx context.Context, key string) error

	// Close shuts down the page and the browser behind it. It can be called more than once.
	Close() error
}

// ConsoleFunc receives console output from the page. Level is the console method name, such as
// "log" or "error".
type ConsoleFunc func(level, text string)

// Options control how a browser is started.
type Options struct {
	Headless       bool
	WindowWidth    int
	WindowHeight   int
	ExecPath       string
	NoSandbox      bool
	StartupTimeout time.Duration

	// InstallBrowsers asks backends that manage their own browser binaries to download them first.
	InstallBrowsers bool

	Console ConsoleFunc
	Logger  Logger
}

// Logger is satisfied by framework.Logger and *log.Logger.
type Logger interface {
	Printf(message string, args ...interface{})
}

type nullLogger struct{}

func (nullLogger) Printf(string, ...interface{}) {}

func (o Options) withDefaults() Options {
	if o.StartupTimeout <= 0 {
		o.StartupTimeout = DefaultStartupTimeout
	}
	if o.WindowWidth <= 0 || o.WindowHeight <= 0 {
		o.WindowWidth, o.WindowHeight = DefaultWindowWidth, DefaultWindowHeight
	}
	if o.Console == nil {
		o.Console = func(string, string) {}
	}
	if o.Logger == nil {
		o.Logger = nullLogger{}
	}
	return o
}

// LaunchError means the browser could not be started or could not load the page. It is an
// environment problem rather than a property of the page under test.
type LaunchError struct {
	Driver string
	URL    string
	Err    error
}

func (e *LaunchError) Error() string {
	return fmt.Sprintf("%s could not open %s: %s", e.Driver, e.URL, e.Err)
}

func (e *LaunchError) Unwrap() error {
	return e.Err
}

func launchError(driver, url string, err error) error {
	return &LaunchError{Driver: driver, URL: url, Err: err}
}
