package browser

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"github.com/playwright-community/playwright-go"
)

// PlaywrightDriver drives Chromium through the Playwright driver process. The driver and its
// browsers must be installed, either ahead of time or by setting Options.InstallBrowsers.
type PlaywrightDriver struct{}

func (PlaywrightDriver) Name() string { return "playwright" }

type playwrightPage struct {
	pw        *playwright.Playwright
	browser   playwright.Browser
	context   playwright.BrowserContext
	page      playwright.Page
	closeOnce sync.Once
}

func (d PlaywrightDriver) Open(ctx context.Context, url string, opts Options) (Page, error) {
	opts = opts.withDefaults()

	runOpts := &playwright.RunOptions{
		Browsers: []string{"chromium"},
		Verbose:  false,
		Stdout:   io.Discard,
		Stderr:   io.Discard,
	}
	if opts.InstallBrowsers {
		opts.Logger.Printf("Installing Playwright driver and Chromium")
		if err := playwright.Install(runOpts); err != nil {
			return nil, launchError(d.Name(), url, fmt.Errorf("failed to install playwright: %w", err))
		}
	}
	pw, err := playwright.Run(runOpts)
	if err != nil {
		return nil, launchError(d.Name(), url, fmt.Errorf("failed to start playwright: %w", err))
	}
	p := &playwrightPage{pw: pw}

	launchOpts := playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(opts.Headless),
		Timeout:  playwright.Float(float64(opts.StartupTimeout.Milliseconds())),
		Args:     []string{"--autoplay-policy=no-user-gesture-required"},
	}
	if opts.ExecPath != "" {
		launchOpts.ExecutablePath = playwright.String(opts.ExecPath)
	}
	if opts.NoSandbox {
		launchOpts.ChromiumSandbox = playwright.Bool(false)
	}
	if p.browser, err = pw.Chromium.Launch(launchOpts); err != nil {
		_ = p.Close()
		return nil, launchError(d.Name(), url, err)
	}
	p.context, err = p.browser.NewContext(playwright.BrowserNewContextOptions{
		Viewport: &playwright.Size{Width: opts.WindowWidth, Height: opts.WindowHeight},
	})
	if err != nil {
		_ = p.Close()
		return nil, launchError(d.Name(), url, err)
	}
	if p.page, err = p.context.NewPage(); err != nil {
		_ = p.Close()
		return nil, launchError(d.Name(), url, err)
	}
	p.page.OnConsole(func(m playwright.ConsoleMessage) {
		opts.Console(m.Type(), m.Text())
	})

	opts.Logger.Printf("Browser started, loading %s", url)
	err = awaitContext(ctx, func() error {
		_, err := p.page.Goto(url, playwright.PageGotoOptions{
			WaitUntil: playwright.WaitUntilStateLoad,
			Timeout:   playwright.Float(float64(opts.StartupTimeout.Milliseconds())),
		})
		return err
	})
	if err != nil {
		_ = p.Close()
		return nil, launchError(d.Name(), url, err)
	}
	return p, nil
}

// awaitContext runs a blocking Playwright call, giving up when ctx ends. Playwright has no
// context support; an abandoned call finishes on its own once the page is closed.
func awaitContext(ctx context.Context, fn func() error) error {
	done := make(chan error, 1)
	go func() {
		done <- fn()
	}()
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *playwrightPage) Evaluate(ctx context.Context, expression string, out interface{}) error {
	var result interface{}
	err := awaitContext(ctx, func() error {
		var err error
		result, err = p.page.Evaluate(expression)
		return err
	})
	if err != nil || out == nil {
		return err
	}
	data, err := json.Marshal(result)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, out)
}

func (p *playwrightPage) PressKey(ctx context.Context, key string) error {
	return awaitContext(ctx, func() error {
		return p.page.Keyboard().Press(key)
	})
}

func (p *playwrightPage) Close() error {
	var err error
	p.closeOnce.Do(func() {
		if p.page != nil {
			_ = p.page.Close()
		}
		if p.context != nil {
			_ = p.context.Close()
		}
		if p.browser != nil {
			_ = p.browser.Close()
		}
		err = p.pw.Stop()
	})
	return err
}
