package browser

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/go-rod/rod/lib/launcher/flags"
	"github.com/launchdarkly/go-test-helpers/v2/httphelpers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// profileBrowser writes an executable that creates the profile directory it is given, announces
// a DevTools endpoint on host and then idles.
func profileBrowser(t *testing.T, host string) string {
	if runtime.GOOS != "linux" {
		t.Skip("needs /bin/sh")
	}
	mkdir, err := exec.LookPath("mkdir")
	require.NoError(t, err)
	sleep, err := exec.LookPath("sleep")
	require.NoError(t, err)

	script := fmt.Sprintf(`#!/bin/sh
for arg in "$@"; do
  case "$arg" in
    --user-data-dir=*) %s -p "${arg#--user-data-dir=}" ;;
  esac
done
echo "DevTools listening on ws://%s/devtools/browser/test"
exec %s 60
`, mkdir, host, sleep)
	exe := filepath.Join(t.TempDir(), "chrome")
	require.NoError(t, os.WriteFile(exe, []byte(script), 0o755))
	return exe
}

func TestRodCloseRemovesProfile(t *testing.T) {
	version := []byte(`{"webSocketDebuggerUrl":"ws://localhost/devtools/browser/test"}`)
	handler := httphelpers.HandlerWithResponse(200, http.Header{"Content-Type": {"application/json"}}, version)

	httphelpers.WithServer(handler, func(server *httptest.Server) {
		exe := profileBrowser(t, strings.TrimPrefix(server.URL, "http://"))

		ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
		defer cancel()
		l := newRodLauncher(ctx, Options{Headless: true, ExecPath: exe}.withDefaults())
		_, err := l.Launch()
		require.NoError(t, err)

		profile := l.Get(flags.UserDataDir)
		require.NotEmpty(t, profile)
		assert.Eventually(t, func() bool {
			_, err := os.Stat(profile)
			return err == nil
		}, time.Second*5, time.Millisecond*20)

		p := &rodPage{launcher: l}
		require.NoError(t, p.Close())
		assert.NoDirExists(t, profile)
		require.NoError(t, p.Close())
	})
}
