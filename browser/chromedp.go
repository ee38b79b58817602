package browser

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"
)

// ChromeDPDriver drives a local Chrome or Chromium over the DevTools protocol with chromedp.
type ChromeDPDriver struct{}

func (ChromeDPDriver) Name() string { return "chromedp" }

type chromeDPPage struct {
	tabCtx      context.Context
	cancelTab   context.CancelFunc
	cancelAlloc context.CancelFunc
	closeOnce   sync.Once
}

func (d ChromeDPDriver) Open(ctx context.Context, url string, opts Options) (Page, error) {
	opts = opts.withDefaults()

	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.WindowSize(opts.WindowWidth, opts.WindowHeight),
		chromedp.Flag("headless", opts.Headless),
		chromedp.Flag("autoplay-policy", "no-user-gesture-required"),
	)
	if opts.ExecPath != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(opts.ExecPath))
	}
	if opts.NoSandbox {
		allocOpts = append(allocOpts, chromedp.NoSandbox)
	}

	// The browser lives as long as the page, not as long as whatever context the caller
	// used for opening it; Close tears it down.
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(context.Background(), allocOpts...)
	tabCtx, cancelTab := chromedp.NewContext(allocCtx,
		chromedp.WithLogf(opts.Logger.Printf),
		chromedp.WithErrorf(opts.Logger.Printf),
	)
	p := &chromeDPPage{tabCtx: tabCtx, cancelTab: cancelTab, cancelAlloc: cancelAlloc}

	chromedp.ListenTarget(tabCtx, func(ev interface{}) {
		if e, ok := ev.(*runtime.EventConsoleAPICalled); ok {
			opts.Console(string(e.Type), formatConsoleArgs(e.Args))
		}
	})

	if err := p.start(ctx, opts.StartupTimeout); err != nil {
		_ = p.Close()
		return nil, launchError(d.Name(), url, err)
	}
	opts.Logger.Printf("Browser started, loading %s", url)
	if err := p.run(ctx, opts.StartupTimeout, chromedp.Navigate(url)); err != nil {
		_ = p.Close()
		return nil, launchError(d.Name(), url, err)
	}
	return p, nil
}

// start allocates the browser and the tab. chromedp binds the browser process to the context of
// the first Run, so that Run gets the tab context itself and the startup timeout or the caller's
// context stop it by cancelling the tab.
func (p *chromeDPPage) start(ctx context.Context, timeout time.Duration) error {
	done := make(chan error, 1)
	go func() {
		done <- chromedp.Run(p.tabCtx)
	}()
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	var err error
	select {
	case err = <-done:
		return err
	case <-ctx.Done():
		err = ctx.Err()
	case <-timer.C:
		err = fmt.Errorf("browser did not start within %s", timeout)
	}
	p.cancelTab()
	<-done
	return err
}

// run executes actions against a tab that start has already set up. Cancelling the derived
// context stops only these actions.
func (p *chromeDPPage) run(ctx context.Context, timeout time.Duration, actions ...chromedp.Action) error {
	runCtx, cancel := context.WithCancel(p.tabCtx)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()
	if timeout > 0 {
		timer := time.AfterFunc(timeout, cancel)
		defer timer.Stop()
	}
	err := chromedp.Run(runCtx, actions...)
	if err != nil && ctx.Err() != nil {
		return ctx.Err()
	}
	return err
}

func (p *chromeDPPage) Evaluate(ctx context.Context, expression string, out interface{}) error {
	var raw json.RawMessage
	err := p.run(ctx, 0, chromedp.Evaluate(expression, &raw, func(ep *runtime.EvaluateParams) *runtime.EvaluateParams {
		return ep.WithAwaitPromise(true)
	}))
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	return json.Unmarshal(raw, out)
}

func (p *chromeDPPage) PressKey(ctx context.Context, key string) error {
	return p.run(ctx, 0, chromedp.KeyEvent(key))
}

func (p *chromeDPPage) Close() error {
	var err error
	p.closeOnce.Do(func() {
		err = chromedp.Cancel(p.tabCtx)
		p.cancelTab()
		p.cancelAlloc()
	})
	return err
}

func formatConsoleArgs(args []*runtime.RemoteObject) string {
	parts := make([]string, 0, len(args))
	for _, arg := range args {
		if len(arg.Value) == 0 {
			parts = append(parts, arg.Description)
			continue
		}
		var s string
		if err := json.Unmarshal(arg.Value, &s); err == nil {
			parts = append(parts, s)
			continue
		}
		parts = append(parts, string(arg.Value))
	}
	return strings.Join(parts, " ")
}
