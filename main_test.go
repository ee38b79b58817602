package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pagecheck/page-contract-tests/browser"
	"github.com/pagecheck/page-contract-tests/framework"
)

func run(args ...string) (int, string, string) {
	var stdout, stderr bytes.Buffer
	code := execute(args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestListBuiltins(t *testing.T) {
	code, out, _ := run("list")
	assert.Equal(t, exitPassed, code)
	assert.Contains(t, out, "virtual-piano (19 steps, page src/index.html)\n")
	assert.Contains(t, out, "virtual-piano-keys (4 steps, page src/index.html)\n")
}

func TestListCheckKinds(t *testing.T) {
	code, out, _ := run("list", "--kinds")
	assert.Equal(t, exitPassed, code)
	assert.Contains(t, out, "centered          messages: missing, left, right, top, bottom\n")
	assert.Contains(t, out, "interaction-log   messages: count, content\n")
}

func TestValidate(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.yaml")
	require.NoError(t, os.WriteFile(good, []byte("name: good\nsteps: [{name: s, checks: [{kind: unique-text, selector: kbd}]}]\n"), 0o600))
	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("name: bad\nsteps: [{name: s, checks: [{kind: child-tag, from: nowhere, tag: kbd}]}]\n"), 0o600))

	code, out, errOut := run("validate", "virtual-piano", good)
	assert.Equal(t, exitPassed, code)
	assert.Contains(t, out, "virtual-piano: ok, rubric virtual-piano with 19 steps\n")
	assert.Contains(t, out, good+": ok, rubric good with 1 steps\n")
	assert.Empty(t, errOut)

	code, _, errOut = run("validate", bad)
	assert.Equal(t, exitFailed, code)
	assert.Contains(t, errOut, `reads "nowhere", which no earlier check stores`)
}

func TestRunRejectsBadSetup(t *testing.T) {
	code, _, errOut := run("run", "--driver", "netscape")
	assert.Equal(t, exitBroken, code)
	assert.Contains(t, errOut, "netscape")

	code, _, errOut = run("run", "--rubric", "no-such-rubric")
	assert.Equal(t, exitBroken, code)
	assert.Contains(t, errOut, "no built-in rubric named")

	code, _, _ = run("run", "--no-such-flag")
	assert.Equal(t, exitBroken, code)

	code, _, _ = run("frobnicate")
	assert.Equal(t, exitBroken, code)
}

func TestLoadRubricsRejectsDuplicateNames(t *testing.T) {
	_, _, err := loadRubrics([]string{"virtual-piano", "virtual-piano"})
	assert.Error(t, err)

	defs, refs, err := loadRubrics([]string{"virtual-piano-keys", "virtual-piano"})
	require.NoError(t, err)
	assert.Len(t, defs, 2)
	assert.Equal(t, map[string]string{"virtual-piano": "virtual-piano", "virtual-piano-keys": "virtual-piano-keys"}, refs)
}

func TestRerunCommand(t *testing.T) {
	params := commandParams{project: "/home/me/Virtual Piano", driver: "rod", serve: true}
	assert.Equal(t,
		`pagecheck run --project '/home/me/Virtual Piano' --rubric virtual-piano --driver rod --serve --run '^virtual-piano$' --debug`,
		params.rerunCommand("virtual-piano", "virtual-piano"))
}

func TestParamsDefaults(t *testing.T) {
	var params commandParams
	cmd := &cobra.Command{Use: "run"}
	params.bind(cmd)
	require.NoError(t, cmd.Flags().Parse([]string{"--rubric", "a.yaml", "--rubric", "b", "--run", "^x"}))
	require.NoError(t, params.validate())

	assert.Equal(t, ".", params.project)
	assert.Equal(t, []string{"a.yaml", "b"}, params.rubrics)
	assert.Equal(t, browser.DefaultDriver, params.driver)
	assert.True(t, params.headless)
	assert.Equal(t, defaultPort, params.port)
	assert.True(t, params.filters.MustMatch.IsDefined())

	var empty commandParams
	empty.project = "."
	require.NoError(t, empty.validate())
	assert.Equal(t, []string{defaultRubric}, empty.rubrics)
}

func TestExitCodeFor(t *testing.T) {
	failed := framework.Results{Failures: []framework.TestResult{{Errors: []error{errors.New("wrong")}}}}
	assert.Equal(t, exitFailed, exitCodeFor(failed))

	launch := framework.Results{Failures: []framework.TestResult{{Errors: []error{
		&browser.LaunchError{Driver: "chromedp", URL: "file:///x", Err: errors.New("no chrome")},
	}}}}
	assert.Equal(t, exitBroken, exitCodeFor(launch))
}

func TestConsoleTestLogger(t *testing.T) {
	color.NoColor = true
	var buf bytes.Buffer
	logger := &ConsoleTestLogger{Out: &buf, DebugOutputOnFailure: true}
	id := framework.TestID{Path: []string{"virtual-piano"}}

	logger.TestStarted(id)
	logger.TestError(id, errors.New("line one\nline two"))
	logger.TestFinished(id, true, framework.CapturedOutput{{Message: "debug"}})
	logger.TestFinished(id, false, framework.CapturedOutput{{Message: "hidden"}})
	logger.TestSkipped(id, "excluded by filter parameters")

	out := buf.String()
	assert.Contains(t, out, "[virtual-piano]\n  line one\n  line two\n  FAILED: virtual-piano\n    DEBUG [")
	assert.Contains(t, out, "] debug\n  PASSED: virtual-piano\n  SKIPPED: virtual-piano (excluded by filter parameters)\n")
	assert.NotContains(t, out, "hidden")
}
