package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/pagecheck/page-contract-tests/browser"
	"github.com/pagecheck/page-contract-tests/framework"
	"github.com/pagecheck/page-contract-tests/pagetests"
	"github.com/pagecheck/page-contract-tests/rubric"
)

// Exit codes. A rubric failure or timeout is exitFailed; anything that kept rubrics from being
// evaluated at all, such as a browser that won't start or a broken rubric file, is exitBroken.
const (
	exitPassed = 0
	exitFailed = 1
	exitBroken = 2
)

type exitCode int

func (e exitCode) Error() string {
	return fmt.Sprintf("exit status %d", int(e))
}

func main() {
	os.Exit(execute(os.Args[1:], os.Stdout, os.Stderr))
}

func execute(args []string, stdout, stderr io.Writer) int {
	root := newRootCommand(stdout, stderr)
	root.SetArgs(args)
	err := root.Execute()
	var code exitCode
	switch {
	case err == nil:
		return exitPassed
	case errors.As(err, &code):
		return int(code)
	default:
		fmt.Fprintln(stderr, err)
		return exitBroken
	}
}

func newRootCommand(stdout, stderr io.Writer) *cobra.Command {
	root := &cobra.Command{
		Use:           "pagecheck",
		Short:         "Runs declarative contract tests against a web page in a real browser",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.AddCommand(newRunCommand(stdout, stderr), newListCommand(stdout), newValidateCommand(stdout, stderr))
	return root
}

func newRunCommand(stdout, stderr io.Writer) *cobra.Command {
	var params commandParams
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run rubrics against the project's page",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := params.validate(); err != nil {
				return err
			}
			if code := runTests(&params, stdout, stderr); code != exitPassed {
				return exitCode(code)
			}
			return nil
		},
	}
	params.bind(cmd)
	return cmd
}

func runTests(params *commandParams, stdout, stderr io.Writer) int {
	started := time.Now()
	runID := uuid.NewString()

	defs, refs, err := loadRubrics(params.rubrics)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return exitBroken
	}
	driver, err := browser.Lookup(params.driver)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return exitBroken
	}

	mainDebugLogger := framework.NullLogger()
	if params.debugAll {
		mainDebugLogger = log.New(stdout, "", log.LstdFlags)
	}
	mainDebugLogger.Printf("test run %s", runID)

	cfg := pagetests.SuiteConfig{
		Project: params.project,
		Page:    params.page,
		Rubrics: defs,
		Driver:  driver,
		Browser: params.browserOptions(),
		Timeout: params.timeout,
		Settle:  params.settle,
	}

	if params.serve {
		server, err := framework.ServePages(params.project, params.port, mainDebugLogger)
		if err != nil {
			fmt.Fprintf(stderr, "Could not serve %s: %s\n", params.project, err)
			return exitBroken
		}
		defer server.Close()
		cfg.BaseURL = server.BaseURL()
	}

	if params.traceFile != "" {
		f, err := os.Create(params.traceFile)
		if err != nil {
			fmt.Fprintln(stderr, err)
			return exitBroken
		}
		defer f.Close()
		shutdown, err := pagetests.InstallTraceExporter(f)
		if err != nil {
			fmt.Fprintln(stderr, err)
			return exitBroken
		}
		defer func() {
			if err := shutdown(context.Background()); err != nil {
				fmt.Fprintf(stderr, "Error writing traces: %s\n", err)
			}
		}()
	}

	if params.metricsFile != "" {
		cfg.Metrics = pagetests.NewMetrics()
	}

	fmt.Fprintln(stdout)
	framework.PrintFilterDescription(stdout, params.filters)
	fmt.Fprintf(stdout, "Running page contract tests with %s\n", driver.Name())

	testLogger := &ConsoleTestLogger{
		Out:                  stdout,
		DebugOutputOnFailure: params.debug || params.debugAll,
		DebugOutputOnSuccess: params.debugAll,
	}
	results := pagetests.RunTestSuite(cfg, params.filters.AsFilter, testLogger)

	fmt.Fprintln(stdout)
	framework.PrintResults(stdout, results)

	if params.reportFile != "" {
		if err := framework.WriteReport(params.reportFile, results.Report(runID, started)); err != nil {
			fmt.Fprintf(stderr, "Could not write report: %s\n", err)
		}
	}
	if cfg.Metrics != nil {
		if err := cfg.Metrics.WriteTextfile(params.metricsFile); err != nil {
			fmt.Fprintf(stderr, "Could not write metrics: %s\n", err)
		}
	}

	if results.OK() {
		return exitPassed
	}
	fmt.Fprintln(stdout, "\nTo run a failed rubric again with debug output:")
	for _, f := range results.Failures {
		name := f.TestID.String()
		fmt.Fprintf(stdout, "  %s\n", params.rerunCommand(name, refs[name]))
	}
	return exitCodeFor(results)
}

// exitCodeFor distinguishes pages that failed their rubrics from runs where the browser could not
// be started.
func exitCodeFor(results framework.Results) int {
	for _, f := range results.Failures {
		for _, err := range f.Errors {
			var launchErr *browser.LaunchError
			if errors.As(err, &launchErr) {
				return exitBroken
			}
		}
	}
	return exitFailed
}

// loadRubrics resolves every rubric reference. It also returns, for each rubric name, the
// reference it was loaded from.
func loadRubrics(refs []string) ([]*rubric.Definition, map[string]string, error) {
	var defs []*rubric.Definition
	byName := make(map[string]string)
	for _, ref := range refs {
		d, err := rubric.Resolve(ref)
		if err != nil {
			return nil, nil, err
		}
		if previous, ok := byName[d.Name]; ok {
			return nil, nil, fmt.Errorf("rubrics %s and %s are both named %q", previous, ref, d.Name)
		}
		byName[d.Name] = ref
		defs = append(defs, d)
	}
	return defs, byName, nil
}
