package pagetests

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"

	"github.com/pagecheck/page-contract-tests/browser"
	"github.com/pagecheck/page-contract-tests/framework"
	"github.com/pagecheck/page-contract-tests/rubric"
	"github.com/pagecheck/page-contract-tests/session"
)

// ErrTimeout means a case didn't finish within its time limit. It is distinct from a rubric
// failure: the page may well be correct but too slow, or the browser may have hung.
var ErrTimeout = errors.New("timed out")

// How long a timed out case gets to shut its browser down before RunCase returns anyway.
const closeGracePeriod = time.Second * 5

// PageSession is an open page that rubric steps can run against.
type PageSession interface {
	rubric.Page
	Close() error
}

// Opener opens the page under test. The default is session.Open.
type Opener func(ctx context.Context, url string, cfg session.Config) (PageSession, error)

func openSession(ctx context.Context, url string, cfg session.Config) (PageSession, error) {
	s, err := session.Open(ctx, url, cfg)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// Case is one rubric to be run against one page.
type Case struct {
	// Name identifies the case in logs, metrics and traces. It defaults to the rubric name.
	Name       string
	Definition *rubric.Definition
	URL        string

	Driver  browser.Driver
	Browser browser.Options

	// Timeout and Settle override the rubric's own settings when non-zero.
	Timeout time.Duration
	Settle  time.Duration

	Logger  framework.Logger
	Metrics *Metrics
	Tracer  trace.Tracer
	Open    Opener
}

func (c Case) name() string {
	if c.Name != "" {
		return c.Name
	}
	return c.Definition.Name
}

func (c Case) timeout() time.Duration {
	switch {
	case c.Timeout > 0:
		return c.Timeout
	case c.Definition.Timeout > 0:
		return c.Definition.Timeout
	default:
		return rubric.DefaultTimeout
	}
}

func (c Case) logger() framework.Logger {
	if c.Logger == nil {
		return framework.NullLogger()
	}
	return c.Logger
}

func (c Case) sessionConfig(logger framework.Logger) session.Config {
	def := c.Definition
	opts := c.Browser
	if def.Viewport != nil {
		opts.WindowWidth, opts.WindowHeight = def.Viewport.Width, def.Viewport.Height
	}
	if opts.Logger == nil {
		opts.Logger = logger
	}
	settle := c.Settle
	if settle == 0 {
		settle = def.Settle
	}
	return session.Config{
		Driver:          c.Driver,
		Browser:         opts,
		Instrumentation: session.Instrumentation(def.Instrumentation),
		Settle:          settle,
		PressDelay:      def.PressDelay,
		Logger:          logger,
	}
}

type caseOutcome struct {
	result rubric.Result
	err    error
}

// RunCase opens the page, runs every step of the rubric against it and closes the page again.
// A failing rubric is reported through the Result, not as an error. Errors mean the rubric
// could not be run to the end: a *browser.LaunchError, a *rubric.StepError, an error wrapping
// ErrTimeout, or the error of ctx if it was cancelled.
func RunCase(ctx context.Context, c Case) (rubric.Result, error) {
	if c.Definition == nil {
		return rubric.Result{}, errors.New("no rubric given")
	}
	name, runID, logger := c.name(), uuid.NewString(), c.logger()
	tracer := c.Tracer
	if tracer == nil {
		tracer = defaultTracer()
	}

	ctx, span := startCaseSpan(ctx, tracer, name, runID, c.URL)
	started := time.Now()
	logger.Printf("run %s: %s against %s", runID, name, c.URL)

	result, err := c.runWithTimeout(ctx, runID, logger, tracer)

	elapsed := time.Since(started)
	outcome := Outcome(result, err)
	logger.Printf("run %s: %s after %s", runID, outcome, elapsed.Round(time.Millisecond))
	endCaseSpan(span, outcome, result, err)
	c.Metrics.observeCase(name, outcome, elapsed)
	return result, err
}

func (c Case) runWithTimeout(ctx context.Context, runID string, logger framework.Logger, tracer trace.Tracer) (rubric.Result, error) {
	timeout := c.timeout()
	caseCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	done := make(chan caseOutcome, 1)
	go func() {
		r, err := c.run(caseCtx, runID, logger, tracer)
		done <- caseOutcome{r, err}
	}()

	select {
	case o := <-done:
		if o.err != nil && ctx.Err() == nil && errors.Is(caseCtx.Err(), context.DeadlineExceeded) {
			return o.result, c.timeoutError(timeout)
		}
		return o.result, o.err
	case <-caseCtx.Done():
		// The run sees the same cancellation; give it a moment to close its session.
		select {
		case o := <-done:
			if o.err == nil {
				return o.result, nil
			}
		case <-time.After(closeGracePeriod):
			logger.Printf("run %s: session was not closed within %s of the time limit", runID, closeGracePeriod)
		}
		if err := ctx.Err(); err != nil {
			return rubric.Result{}, err
		}
		return rubric.Result{}, c.timeoutError(timeout)
	}
}

func (c Case) timeoutError(timeout time.Duration) error {
	return fmt.Errorf("%s %w after %s", c.name(), ErrTimeout, timeout)
}

func (c Case) run(ctx context.Context, runID string, logger framework.Logger, tracer trace.Tracer) (rubric.Result, error) {
	open := c.Open
	if open == nil {
		open = openSession
	}
	sess, err := open(ctx, c.URL, c.sessionConfig(logger))
	if err != nil {
		return rubric.Result{}, err
	}
	defer func() {
		if err := sess.Close(); err != nil {
			logger.Printf("run %s: error closing page: %s", runID, err)
		}
	}()

	name := c.name()
	return c.Definition.Sequence().Run(ctx, sess,
		logStep(logger),
		traceStep(ctx, tracer),
		c.Metrics.stepObserver(name),
	)
}

func logStep(logger framework.Logger) rubric.Observer {
	return func(o rubric.StepOutcome) {
		switch {
		case o.Err != nil:
			logger.Printf("step #%d %s: error: %s", o.Index, o.Name, o.Err)
		case o.Verdict.IsCorrect():
			logger.Printf("step #%d %s: ok (%s)", o.Index, o.Name, o.Duration.Round(time.Millisecond))
		default:
			logger.Printf("step #%d %s: wrong: %s", o.Index, o.Name, o.Verdict.Message())
		}
	}
}

// Outcomes of a case, as reported in logs, metrics and traces.
const (
	OutcomePass        = "pass"
	OutcomeFail        = "fail"
	OutcomeTimeout     = "timeout"
	OutcomeLaunchError = "launch-error"
	OutcomeError       = "error"
)

// Outcome classifies the return values of RunCase.
func Outcome(result rubric.Result, err error) string {
	var launchErr *browser.LaunchError
	switch {
	case err == nil && result.Passed:
		return OutcomePass
	case err == nil:
		return OutcomeFail
	case errors.Is(err, ErrTimeout):
		return OutcomeTimeout
	case errors.As(err, &launchErr):
		return OutcomeLaunchError
	default:
		return OutcomeError
	}
}
