package session

import (
	"context"
	"errors"
	"testing"

	"github.com/pagecheck/page-contract-tests/browser"
	"github.com/pagecheck/page-contract-tests/dom"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
)

type capturingLogger struct {
	lines []string
}

func (l *capturingLogger) Printf(message string, args ...interface{}) {
	l.lines = append(l.lines, message)
}

const audioInstrumentCall = `window.__pagecheck.instrument({"audio":true,"console":false})`

func TestOpenInjectsInstrumentationAfterLoad(t *testing.T) {
	page := newFakePage()
	page.responses[audioInstrumentCall] = `["Audio","createElement"]`
	driver := &fakeDriver{page: page}

	s, err := Open(context.Background(), "file:///piano/index.html", Config{
		Driver:          driver,
		Instrumentation: Instrumentation{Audio: true},
		Settle:          -1,
	})
	require.NoError(t, err)
	assert.Equal(t, "file:///piano/index.html", driver.url)
	assert.Equal(t, []string{harnessScript, audioInstrumentCall}, page.evaluated)
	assert.Equal(t, "file:///piano/index.html", s.URL())

	require.NoError(t, s.Close())
	require.NoError(t, s.Close())
	assert.Equal(t, 1, page.closeCount)
}

func TestOpenPassesLaunchErrorThrough(t *testing.T) {
	cause := &browser.LaunchError{Driver: "fake", URL: "x", Err: errors.New("no browser")}
	_, err := Open(context.Background(), "x", Config{Driver: &fakeDriver{err: cause}})
	var le *browser.LaunchError
	assert.ErrorAs(t, err, &le)
}

func TestOpenClosesPageWhenInjectionFails(t *testing.T) {
	page := newFakePage()
	page.failOn = harnessScript
	_, err := Open(context.Background(), "x", Config{Driver: &fakeDriver{page: page}, Settle: -1})
	assert.Error(t, err)
	assert.Equal(t, 1, page.closeCount)
}

func TestOpenClosesPageWhenCancelledDuringSettle(t *testing.T) {
	page := newFakePage()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Open(ctx, "x", Config{Driver: &fakeDriver{page: page}})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, page.closeCount)
	assert.Empty(t, page.evaluated)
}

func TestOpenForwardsConsoleToLogger(t *testing.T) {
	page := newFakePage()
	page.responses[`window.__pagecheck.instrument({"audio":false,"console":false})`] = `[]`
	driver := &fakeDriver{page: page}
	logger := &capturingLogger{}
	var forwarded []string

	_, err := Open(context.Background(), "x", Config{
		Driver: driver,
		Settle: -1,
		Logger: logger,
		Browser: browser.Options{Console: func(level, text string) {
			forwarded = append(forwarded, level+":"+text)
		}},
	})
	require.NoError(t, err)

	driver.options.Console("log", "hello")
	assert.Equal(t, []string{"log:hello"}, forwarded)
	assert.Contains(t, logger.lines, "page console.%s: %s")
	assert.Equal(t, logger, driver.options.Logger)
}

func TestDOMQueriesEncodeArguments(t *testing.T) {
	page := newFakePage()
	s := FromPage("x", page)
	page.responses[`window.__pagecheck.byClass("white-keys")`] = `[{"ref":3,"tag":"DIV","className":"white-keys","rect":{"top":10}}]`
	page.responses[`window.__pagecheck.query("kbd")`] = `[]`
	page.responses[`window.__pagecheck.children(3)`] = `[{"ref":4,"tag":"KBD","text":"A"}]`
	page.responses[`window.__pagecheck.parent(3)`] = `null`
	page.responses[`window.__pagecheck.body()`] = `{"ref":1,"tag":"BODY","style":{"backgroundColor":"rgb(1, 2, 3)"}}`
	page.responses[`window.__pagecheck.viewport()`] = `{"width":1280,"height":800}`

	ctx := context.Background()
	els, err := s.ElementsByClassName(ctx, "white-keys")
	require.NoError(t, err)
	require.Len(t, els, 1)
	assert.Equal(t, dom.Ref(3), els[0].Ref)
	assert.Equal(t, 10.0, els[0].Rect.Top)

	none, err := s.QuerySelectorAll(ctx, "kbd")
	require.NoError(t, err)
	assert.Empty(t, none)

	children, err := s.ChildElements(ctx, els[0])
	require.NoError(t, err)
	assert.Equal(t, []dom.Element{{Ref: 4, Tag: "KBD", Text: "A"}}, children)

	_, ok, err := s.ParentElement(ctx, els[0])
	require.NoError(t, err)
	assert.False(t, ok)

	body, err := s.Body(ctx)
	require.NoError(t, err)
	assert.Equal(t, "rgb(1, 2, 3)", body.Style.BackgroundColor)

	vp, err := s.Viewport(ctx)
	require.NoError(t, err)
	assert.Equal(t, dom.Viewport{Width: 1280, Height: 800}, vp)
}

func TestBodyMissing(t *testing.T) {
	page := newFakePage()
	page.responses[`window.__pagecheck.body()`] = `null`
	_, err := FromPage("x", page).Body(context.Background())
	assert.Error(t, err)
}

func TestRecords(t *testing.T) {
	page := newFakePage()
	page.responses[`window.__pagecheck.records("console")`] = `[["pressed", "a"], "b", 3]`
	page.responses[`window.__pagecheck.clear("console")`] = `true`
	s := FromPage("x", page)

	records, err := s.Records(context.Background(), ConsoleLog)
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, ldvalue.ArrayType, records[0].Type())
	assert.Equal(t, "b", records[1].StringValue())
	assert.Equal(t, 3, records[2].IntValue())

	require.NoError(t, s.ClearRecords(context.Background(), ConsoleLog))
	assert.Equal(t, `window.__pagecheck.clear("console")`, page.evaluated[len(page.evaluated)-1])
}

func TestPressKey(t *testing.T) {
	page := newFakePage()
	s := FromPage("x", page)

	require.NoError(t, s.PressKey(context.Background(), "a"))
	require.NoError(t, s.PressKey(context.Background(), "7"))
	assert.Equal(t, []string{"a", "7"}, page.pressed)

	for _, bad := range []string{"", "ab", "\n", "é"} {
		err := s.PressKey(context.Background(), bad)
		assert.ErrorIs(t, err, ErrInvalidKey, bad)
	}
	assert.Len(t, page.pressed, 2)
}

func TestInjectReturnsInstalledPrimitives(t *testing.T) {
	page := newFakePage()
	page.responses[`window.__pagecheck.instrument({"audio":true,"console":true})`] = `["createElement","console.log"]`
	installed, err := Inject(context.Background(), page, Instrumentation{Audio: true, Console: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"createElement", "console.log"}, installed)
}

func TestHelperCallRejectsUnencodableArguments(t *testing.T) {
	_, err := helperCall("instrument", make(chan int))
	assert.Error(t, err)

	expr, err := helperCall("instrument", Instrumentation{Audio: true})
	require.NoError(t, err)
	assert.Equal(t, audioInstrumentCall, expr)
}
