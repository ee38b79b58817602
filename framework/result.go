package framework

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
)

type Results struct {
	Tests    []TestResult
	Failures []TestResult
}

type TestResult struct {
	TestID   TestID
	Errors   []error
	Skipped  bool
	Duration time.Duration
}

func (r Results) OK() bool {
	return len(r.Failures) == 0
}

// Counts returns the number of tests that passed, failed, and were skipped.
func (r Results) Counts() (passed, failed, skipped int) {
	for _, t := range r.Tests {
		switch {
		case t.Skipped:
			skipped++
		case len(t.Errors) != 0:
			failed++
		default:
			passed++
		}
	}
	return
}

type TestID struct {
	Path []string
}

// Plus returns the identifier of a subtest.
func (t TestID) Plus(name string) TestID {
	return TestID{Path: append(append([]string(nil), t.Path...), name)}
}

func (t TestID) String() string {
	return strings.Join(t.Path, "/")
}

type TestFailure struct {
	ID  TestID
	Err error
}

func (f TestFailure) Error() string {
	return fmt.Sprintf("[%s]: %s", f.ID, f.Err)
}

// PrintResults writes the end-of-run summary.
func PrintResults(out io.Writer, results Results) {
	passed, failed, skipped := results.Counts()
	if results.OK() {
		color.New(color.FgGreen).Fprintf(out, "All tests passed")
		fmt.Fprintf(out, " (%d passed, %d skipped)\n", passed, skipped)
		return
	}
	color.New(color.FgRed).Fprintf(out, "FAILED TESTS (%d):\n", len(results.Failures))
	for _, f := range results.Failures {
		fmt.Fprintf(out, "  * %s\n", f.TestID)
	}
	fmt.Fprintf(out, "%d passed, %d failed, %d skipped\n", passed, failed, skipped)
}

// Report is the machine-readable form of Results.
type Report struct {
	RunID   string        `json:"runId"`
	Started time.Time     `json:"started"`
	Passed  bool          `json:"passed"`
	Tests   []ReportEntry `json:"tests"`
}

type ReportEntry struct {
	ID         string   `json:"id"`
	Status     string   `json:"status"`
	DurationMS int64    `json:"durationMs"`
	Errors     []string `json:"errors,omitempty"`
}

const (
	StatusPassed  = "passed"
	StatusFailed  = "failed"
	StatusSkipped = "skipped"
)

func (r Results) Report(runID string, started time.Time) Report {
	report := Report{RunID: runID, Started: started, Passed: r.OK(), Tests: []ReportEntry{}}
	for _, t := range r.Tests {
		entry := ReportEntry{ID: t.TestID.String(), Status: StatusPassed, DurationMS: t.Duration.Milliseconds()}
		switch {
		case t.Skipped:
			entry.Status = StatusSkipped
		case len(t.Errors) != 0:
			entry.Status = StatusFailed
		}
		for _, err := range t.Errors {
			entry.Errors = append(entry.Errors, err.Error())
		}
		report.Tests = append(report.Tests, entry)
	}
	return report
}

// WriteReport writes report as indented JSON to path.
func WriteReport(path string, report Report) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}
