package browser

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/launchdarkly/go-test-helpers/v2/httphelpers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const integrationEnvVar = "PAGECHECK_CHROME"

const testPageHTML = `<!DOCTYPE html>
<html><body>
<div id="out"></div>
<script>
document.addEventListener('keydown', e => {
  document.getElementById('out').textContent += e.key;
  console.log('pressed', e.key);
});
</script>
</body></html>`

// These tests start a real browser, so they only run when PAGECHECK_CHROME is set. For the rod
// and playwright drivers the browser may be downloaded on first use.
func requireBrowser(t *testing.T) {
	if os.Getenv(integrationEnvVar) == "" {
		t.Skipf("set %s=1 to run browser tests", integrationEnvVar)
	}
}

func TestDriversAgainstRealBrowser(t *testing.T) {
	requireBrowser(t)
	handler := httphelpers.HandlerWithResponse(200, http.Header{"Content-Type": {"text/html"}}, []byte(testPageHTML))

	for _, name := range Names() {
		t.Run(name, func(t *testing.T) {
			httphelpers.WithServer(handler, func(server *httptest.Server) {
				var lock sync.Mutex
				var console []string
				d, err := Lookup(name)
				require.NoError(t, err)

				ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
				defer cancel()
				page, err := d.Open(ctx, server.URL, Options{
					Headless:        true,
					NoSandbox:       true,
					InstallBrowsers: true,
					Console: func(level, text string) {
						lock.Lock()
						console = append(console, level+": "+text)
						lock.Unlock()
					},
				})
				require.NoError(t, err)
				defer page.Close()

				var sum int
				require.NoError(t, page.Evaluate(ctx, "1 + 2", &sum))
				assert.Equal(t, 3, sum)

				require.NoError(t, page.PressKey(ctx, "q"))
				var text string
				require.NoError(t, page.Evaluate(ctx, "document.getElementById('out').textContent", &text))
				assert.Equal(t, "q", text)

				assert.Eventually(t, func() bool {
					lock.Lock()
					defer lock.Unlock()
					return strings.Contains(strings.Join(console, "\n"), "log: pressed q")
				}, time.Second*5, time.Millisecond*50)

				assert.NoError(t, page.Close())
				assert.NoError(t, page.Close())
			})
		})
	}
}

func TestOpenUnreachablePageIsLaunchError(t *testing.T) {
	requireBrowser(t)
	d, err := Lookup(DefaultDriver)
	require.NoError(t, err)

	_, err = d.Open(context.Background(), "http://127.0.0.1:1/nothing", Options{
		Headless:       true,
		NoSandbox:      true,
		StartupTimeout: time.Second * 5,
	})
	var le *LaunchError
	assert.ErrorAs(t, err, &le)
}

func TestPageOutlivesOpenContext(t *testing.T) {
	requireBrowser(t)
	handler := httphelpers.HandlerWithResponse(200, http.Header{"Content-Type": {"text/html"}}, []byte(testPageHTML))

	for _, name := range Names() {
		t.Run(name, func(t *testing.T) {
			httphelpers.WithServer(handler, func(server *httptest.Server) {
				d, err := Lookup(name)
				require.NoError(t, err)

				openCtx, cancelOpen := context.WithTimeout(context.Background(), time.Minute)
				page, err := d.Open(openCtx, server.URL, Options{Headless: true, NoSandbox: true, InstallBrowsers: true})
				cancelOpen()
				require.NoError(t, err)
				defer page.Close()

				time.Sleep(time.Millisecond * 200)
				var sum int
				require.NoError(t, page.Evaluate(context.Background(), "1 + 2", &sum))
				assert.Equal(t, 3, sum)
				require.NoError(t, page.PressKey(context.Background(), "z"))
			})
		})
	}
}
