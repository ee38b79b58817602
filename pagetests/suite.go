package pagetests

import (
	"context"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/pagecheck/page-contract-tests/browser"
	"github.com/pagecheck/page-contract-tests/framework"
	"github.com/pagecheck/page-contract-tests/rubric"
)

// SuiteConfig describes a run of several rubrics against one project.
type SuiteConfig struct {
	// Project is the directory that rubric page paths are relative to.
	Project string
	// Page, if set, replaces the page path of every rubric.
	Page string
	// BaseURL, if set, is where Project is served over HTTP; otherwise pages are opened from
	// file: URLs.
	BaseURL string

	Rubrics []*rubric.Definition

	Driver  browser.Driver
	Browser browser.Options
	Timeout time.Duration
	Settle  time.Duration

	Metrics *Metrics
	Tracer  trace.Tracer
	Open    Opener
}

// PageURL returns the address of the page that def should be run against.
func (cfg SuiteConfig) PageURL(def *rubric.Definition) (string, error) {
	page := def.Page
	if cfg.Page != "" {
		page = cfg.Page
	}
	if cfg.BaseURL != "" {
		return strings.TrimSuffix(cfg.BaseURL, "/") + "/" + strings.TrimLeft(filepath.ToSlash(page), "/"), nil
	}
	path := page
	if !filepath.IsAbs(path) {
		path = filepath.Join(cfg.Project, page)
	}
	return FileURL(path)
}

// FileURL turns a file path into an absolute file: URL.
func FileURL(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("invalid page path %q: %w", path, err)
	}
	p := filepath.ToSlash(abs)
	if !strings.HasPrefix(p, "/") {
		p = "/" + p // Windows drive letters
	}
	return (&url.URL{Scheme: "file", Path: p}).String(), nil
}

// Case builds the case for one rubric.
func (cfg SuiteConfig) Case(def *rubric.Definition, pageURL string, logger framework.Logger) Case {
	return Case{
		Definition: def,
		URL:        pageURL,
		Driver:     cfg.Driver,
		Browser:    cfg.Browser,
		Timeout:    cfg.Timeout,
		Settle:     cfg.Settle,
		Logger:     logger,
		Metrics:    cfg.Metrics,
		Tracer:     cfg.Tracer,
		Open:       cfg.Open,
	}
}

// RunTestSuite runs every rubric as a test named after it. Rubrics run one after another, each in
// its own browser.
func RunTestSuite(cfg SuiteConfig, filter framework.Filter, testLogger framework.TestLogger) framework.Results {
	return framework.Run(filter, testLogger, func(t *framework.Context) {
		for _, def := range cfg.Rubrics {
			def := def
			t.Run(def.Name, func(t *framework.Context) {
				pageURL, err := cfg.PageURL(def)
				if err != nil {
					t.ReportError(err)
					t.FailNow()
				}
				RequirePass(t, context.Background(), cfg.Case(def, pageURL, t.DebugLogger()))
			})
		}
	})
}
