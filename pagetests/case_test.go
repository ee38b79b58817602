package pagetests

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pagecheck/page-contract-tests/browser"
	"github.com/pagecheck/page-contract-tests/dom/domtest"
	"github.com/pagecheck/page-contract-tests/framework"
	"github.com/pagecheck/page-contract-tests/rubric"
	"github.com/pagecheck/page-contract-tests/session"
)

func TestRunCasePasses(t *testing.T) {
	page := domtest.Piano()
	opener := openingPage(page)
	var logger framework.CapturingLogger

	result, err := RunCase(context.Background(), Case{
		Definition: builtin(t, "virtual-piano"),
		URL:        "file:///project/src/index.html",
		Logger:     &logger,
		Open:       opener.open,
	})
	require.NoError(t, err)
	assert.True(t, result.Passed, result.Message)
	assert.Equal(t, 19, result.Executed)
	assert.True(t, page.Closed())
	assert.Equal(t, OutcomePass, Outcome(result, err))

	require.Len(t, opener.calls, 1)
	call := opener.calls[0]
	assert.Equal(t, "file:///project/src/index.html", call.url)
	assert.Equal(t, session.Instrumentation{Audio: true}, call.cfg.Instrumentation)
	assert.Equal(t, time.Second, call.cfg.Settle)
	assert.Same(t, &logger, call.cfg.Logger)

	messages := strings.Join(logger.Output().Messages(), "\n")
	assert.Contains(t, messages, "step #19 black keys are grouped like a real piano: ok")
}

func TestRunCaseReportsFailureAsResult(t *testing.T) {
	page := domtest.PianoLayout(domtest.New(domtest.PianoHTML))
	result, err := RunCase(context.Background(), Case{
		Definition: builtin(t, "virtual-piano"),
		Open:       openingPage(page).open,
	})
	require.NoError(t, err)
	assert.False(t, result.Passed)
	assert.Equal(t, 1, result.Step)
	assert.Equal(t, "Cannot find the audio objects. Note that audio objects must be created exactly when keys are pressed.", result.Message)
	assert.True(t, page.Closed())
	assert.Equal(t, OutcomeFail, Outcome(result, err))
}

func TestRunCaseAppliesOverrides(t *testing.T) {
	def, err := rubric.Parse("x", []byte(`
name: sized
settle: 2s
viewport: {width: 1024, height: 600}
instrumentation: {console: true}
steps:
  - name: s
    checks: [{kind: unique-text, selector: kbd}]
`))
	require.NoError(t, err)
	opener := openingPage(domtest.Piano())

	_, err = RunCase(context.Background(), Case{
		Definition: def,
		Settle:     time.Millisecond,
		Browser:    browser.Options{Headless: true, WindowWidth: 1920, WindowHeight: 1080},
		Open:       opener.open,
	})
	require.NoError(t, err)

	cfg := opener.calls[0].cfg
	assert.Equal(t, time.Millisecond, cfg.Settle)
	assert.True(t, cfg.Browser.Headless)
	assert.Equal(t, 1024, cfg.Browser.WindowWidth)
	assert.Equal(t, 600, cfg.Browser.WindowHeight)
	assert.Equal(t, session.Instrumentation{Console: true}, cfg.Instrumentation)
}

func TestRunCaseLaunchError(t *testing.T) {
	launchErr := &browser.LaunchError{Driver: "chromedp", URL: "file:///x", Err: errors.New("no chrome")}
	_, err := RunCase(context.Background(), Case{
		Definition: builtin(t, "virtual-piano"),
		Open: func(context.Context, string, session.Config) (PageSession, error) {
			return nil, launchErr
		},
	})
	var target *browser.LaunchError
	require.True(t, errors.As(err, &target))
	assert.Equal(t, OutcomeLaunchError, Outcome(rubric.Result{}, err))
}

func TestRunCaseTimesOutAndClosesPage(t *testing.T) {
	page := domtest.Piano()
	result, err := RunCase(context.Background(), Case{
		Definition: builtin(t, "virtual-piano"),
		Timeout:    50 * time.Millisecond,
		Open:       opening(func(string) PageSession { return hangingPage{page} }).open,
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrTimeout), err.Error())
	assert.Equal(t, "virtual-piano timed out after 50ms", err.Error())
	assert.False(t, result.Passed)
	assert.True(t, page.Closed())
	assert.Equal(t, OutcomeTimeout, Outcome(result, err))
}

func TestRunCaseStopsWhenCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	page := domtest.Piano()
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()
	_, err := RunCase(ctx, Case{
		Definition: builtin(t, "virtual-piano"),
		Open:       opening(func(string) PageSession { return hangingPage{page} }).open,
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, errors.Is(err, ErrTimeout))
	assert.True(t, page.Closed())
}

func TestRunCaseReportsStepErrors(t *testing.T) {
	def, err := rubric.Parse("x", []byte(`
name: shrinking
steps:
  - name: log
    checks: [{kind: interaction-log, keys: [a], log: audio}]
`))
	require.NoError(t, err)
	page := domtest.Piano().OnKey(clearsAudio)
	page.Record("audio", ldString("before"))
	_, err = RunCase(context.Background(), Case{Definition: def, Open: openingPage(page).open})
	var stepErr *rubric.StepError
	require.True(t, errors.As(err, &stepErr))
	assert.Equal(t, 1, stepErr.Step)
	assert.Equal(t, OutcomeError, Outcome(rubric.Result{}, err))
}

func TestRunCaseRequiresDefinition(t *testing.T) {
	_, err := RunCase(context.Background(), Case{})
	assert.Error(t, err)
}
