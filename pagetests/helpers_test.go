package pagetests

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"

	"github.com/pagecheck/page-contract-tests/dom/domtest"
	"github.com/pagecheck/page-contract-tests/rubric"
	"github.com/pagecheck/page-contract-tests/session"
)

type openCall struct {
	url string
	cfg session.Config
}

// fakeOpener hands out in-memory pages instead of starting browsers.
type fakeOpener struct {
	newPage func(url string) PageSession
	lock    sync.Mutex
	calls   []openCall
	opened  []PageSession
}

func opening(newPage func(url string) PageSession) *fakeOpener {
	return &fakeOpener{newPage: newPage}
}

func openingPage(p *domtest.Page) *fakeOpener {
	return opening(func(string) PageSession { return p })
}

func (f *fakeOpener) open(ctx context.Context, url string, cfg session.Config) (PageSession, error) {
	p := f.newPage(url)
	f.lock.Lock()
	f.calls = append(f.calls, openCall{url, cfg})
	f.opened = append(f.opened, p)
	f.lock.Unlock()
	return p, nil
}

func builtin(t *testing.T, name string) *rubric.Definition {
	d, err := rubric.Builtin(name)
	require.NoError(t, err)
	return d
}

// hangingPage never finishes a key press until its context is done.
type hangingPage struct {
	*domtest.Page
}

func (h hangingPage) PressKey(ctx context.Context, key string) error {
	<-ctx.Done()
	return ctx.Err()
}

func clearsAudio(p *domtest.Page, key string) {
	_ = p.ClearRecords(context.Background(), "audio")
}

func ldString(s string) ldvalue.Value {
	return ldvalue.String(s)
}
