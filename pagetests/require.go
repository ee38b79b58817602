package pagetests

import (
	"context"

	"github.com/pagecheck/page-contract-tests/framework"
	"github.com/pagecheck/page-contract-tests/rubric"
)

// TestingT is the part of *testing.T and *framework.Context that RequirePass needs.
type TestingT interface {
	Errorf(format string, args ...interface{})
	FailNow()
}

type errorReporter interface {
	ReportError(err error)
}

type debugLoggerProvider interface {
	DebugLogger() framework.Logger
}

type testLogf interface {
	Logf(format string, args ...interface{})
}

type logfLogger struct {
	t testLogf
}

func (l logfLogger) Printf(message string, args ...interface{}) {
	l.t.Logf(message, args...)
}

// RequirePass runs c and fails the test immediately unless the rubric passes. The failure
// message of a rubric is reported exactly as the failing step produced it. If c has no logger,
// the test's own log is used.
func RequirePass(t TestingT, ctx context.Context, c Case) rubric.Result {
	if h, ok := t.(interface{ Helper() }); ok {
		h.Helper()
	}
	if c.Logger == nil {
		switch tt := t.(type) {
		case debugLoggerProvider:
			c.Logger = tt.DebugLogger()
		case testLogf:
			c.Logger = logfLogger{tt}
		}
	}

	result, err := RunCase(ctx, c)
	if err == nil {
		err = result.Err()
	}
	if err != nil {
		if r, ok := t.(errorReporter); ok {
			r.ReportError(err)
		} else {
			t.Errorf("%s", err)
		}
		t.FailNow()
	}
	return result
}
