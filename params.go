package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/alessio/shellescape"
	"github.com/spf13/cobra"

	"github.com/pagecheck/page-contract-tests/browser"
	"github.com/pagecheck/page-contract-tests/framework"
)

const (
	defaultPort   = 8111
	defaultRubric = "virtual-piano"
)

type commandParams struct {
	project         string
	page            string
	rubrics         []string
	driver          string
	headless        bool
	execPath        string
	noSandbox       bool
	installBrowsers bool
	timeout         time.Duration
	settle          time.Duration
	serve           bool
	port            int
	filters         framework.RegexFilters
	debug           bool
	debugAll        bool
	reportFile      string
	metricsFile     string
	traceFile       string
}

func (c *commandParams) bind(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringVar(&c.project, "project", ".", "directory of the project under test")
	fs.StringVar(&c.page, "page", "", "page to test, relative to the project (default: the page named by each rubric)")
	fs.StringArrayVar(&c.rubrics, "rubric", nil, "built-in rubric name or rubric file (repeatable, default "+defaultRubric+")")
	fs.StringVar(&c.driver, "driver", browser.DefaultDriver, "browser driver: "+strings.Join(browser.Names(), ", "))
	fs.BoolVar(&c.headless, "headless", true, "run the browser without a window")
	fs.StringVar(&c.execPath, "exec-path", "", "browser executable (default: let the driver find one)")
	fs.BoolVar(&c.noSandbox, "no-sandbox", false, "disable the browser sandbox, as needed in some containers")
	fs.BoolVar(&c.installBrowsers, "install-browsers", false, "download browsers for drivers that manage their own")
	fs.DurationVar(&c.timeout, "timeout", 0, "time limit for each rubric (default: the rubric's own)")
	fs.DurationVar(&c.settle, "settle", 0, "delay between page load and instrumentation (default: the rubric's own)")
	fs.BoolVar(&c.serve, "serve", false, "serve the project over HTTP instead of opening file: URLs")
	fs.IntVar(&c.port, "port", defaultPort, "port for --serve; 0 picks a free port")
	fs.Var(&c.filters.MustMatch, "run", "regex pattern(s) to select rubrics to run")
	fs.Var(&c.filters.MustNotMatch, "skip", "regex pattern(s) to select rubrics not to run")
	fs.BoolVar(&c.debug, "debug", false, "enable debug logging for failed tests")
	fs.BoolVar(&c.debugAll, "debug-all", false, "enable debug logging for all tests")
	fs.StringVar(&c.reportFile, "report", "", "write a JSON report to this file")
	fs.StringVar(&c.metricsFile, "metrics-file", "", "write Prometheus metrics to this file in textfile collector format")
	fs.StringVar(&c.traceFile, "trace-file", "", "write OpenTelemetry spans to this file as JSON")
}

func (c *commandParams) validate() error {
	if c.project == "" {
		return errors.New("--project must not be empty")
	}
	if c.timeout < 0 || c.settle < 0 {
		return errors.New("--timeout and --settle must not be negative")
	}
	if c.port < 0 || c.port > 65535 {
		return fmt.Errorf("--port %d is out of range", c.port)
	}
	if len(c.rubrics) == 0 {
		c.rubrics = []string{defaultRubric}
	}
	return nil
}

func (c *commandParams) browserOptions() browser.Options {
	return browser.Options{
		Headless:        c.headless,
		ExecPath:        c.execPath,
		NoSandbox:       c.noSandbox,
		InstallBrowsers: c.installBrowsers,
	}
}

// rerunCommand is the command line that runs just the named rubric again with the same settings.
func (c *commandParams) rerunCommand(name, ref string) string {
	var b commandBuilder
	b.add("pagecheck", "run", "--project", c.project, "--rubric", ref)
	if c.page != "" {
		b.add("--page", c.page)
	}
	if c.driver != browser.DefaultDriver {
		b.add("--driver", c.driver)
	}
	if c.serve {
		b.add("--serve")
	}
	b.add("--run", "^"+name+"$", "--debug")
	return b.String()
}

type commandBuilder []string

func (b *commandBuilder) add(args ...string) {
	for _, a := range args {
		*b = append(*b, shellescape.Quote(a))
	}
}

func (b commandBuilder) String() string {
	return strings.Join(b, " ")
}
