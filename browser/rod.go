package browser

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/input"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
)

// RodDriver drives Chrome with go-rod. Unlike chromedp, rod can download a matching browser
// on first use when no executable path is configured.
type RodDriver struct{}

func (RodDriver) Name() string { return "rod" }

type rodPage struct {
	launcher  *launcher.Launcher
	browser   *rod.Browser
	page      *rod.Page
	closeOnce sync.Once
}

func (d RodDriver) Open(ctx context.Context, url string, opts Options) (Page, error) {
	opts = opts.withDefaults()

	startCtx, cancel := context.WithTimeout(ctx, opts.StartupTimeout)
	defer cancel()

	l := newRodLauncher(startCtx, opts)
	controlURL, err := l.Launch()
	if err != nil {
		return nil, launchError(d.Name(), url, err)
	}
	p := &rodPage{launcher: l}

	p.browser = rod.New().ControlURL(controlURL)
	if err := p.browser.Connect(); err != nil {
		_ = p.Close()
		return nil, launchError(d.Name(), url, err)
	}
	opts.Logger.Printf("Browser started at %s, loading %s", controlURL, url)

	page, err := p.browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		_ = p.Close()
		return nil, launchError(d.Name(), url, err)
	}
	p.page = page

	go page.EachEvent(func(e *proto.RuntimeConsoleAPICalled) {
		opts.Console(string(e.Type), formatRodConsoleArgs(e.Args))
	})()

	loading := page.Context(startCtx)
	if err := loading.Navigate(url); err != nil {
		_ = p.Close()
		return nil, launchError(d.Name(), url, err)
	}
	if err := loading.WaitLoad(); err != nil {
		_ = p.Close()
		return nil, launchError(d.Name(), url, err)
	}
	return p, nil
}

// newRodLauncher configures a launcher for a fresh browser with its own temporary profile. The
// context only bounds the launch; the process is stopped by Close.
func newRodLauncher(ctx context.Context, opts Options) *launcher.Launcher {
	l := launcher.New().
		Context(ctx).
		Headless(opts.Headless).
		NoSandbox(opts.NoSandbox).
		Leakless(false).
		Set("window-size", fmt.Sprintf("%d,%d", opts.WindowWidth, opts.WindowHeight)).
		Set("autoplay-policy", "no-user-gesture-required")
	if opts.ExecPath != "" {
		l = l.Bin(opts.ExecPath)
	}
	return l
}

func (p *rodPage) Evaluate(ctx context.Context, expression string, out interface{}) error {
	opts := rod.Eval("() => (\n" + expression + "\n)")
	opts.AwaitPromise = true
	res, err := p.page.Context(ctx).Evaluate(opts)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	return res.Value.Unmarshal(out)
}

func (p *rodPage) PressKey(ctx context.Context, key string) error {
	if len(key) != 1 {
		return fmt.Errorf("rod driver can only type single characters, got %q", key)
	}
	return p.page.Context(ctx).Keyboard.Type(input.Key(key[0]))
}

func (p *rodPage) Close() error {
	var err error
	p.closeOnce.Do(func() {
		if p.browser != nil {
			err = p.browser.Close()
		}
		if p.launcher.PID() != 0 {
			p.launcher.Kill()
			p.launcher.Cleanup()
		}
	})
	return err
}

func formatRodConsoleArgs(args []*proto.RuntimeRemoteObject) string {
	parts := make([]string, 0, len(args))
	for _, arg := range args {
		switch {
		case arg.Value.Nil():
			parts = append(parts, arg.Description)
		case arg.Type == proto.RuntimeRemoteObjectTypeString:
			parts = append(parts, arg.Value.Str())
		case arg.Type == proto.RuntimeRemoteObjectTypeNumber:
			parts = append(parts, strconv.FormatFloat(arg.Value.Num(), 'f', -1, 64))
		default:
			parts = append(parts, arg.Value.JSON("", ""))
		}
	}
	return strings.Join(parts, " ")
}
