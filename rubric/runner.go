package rubric

import (
	"context"
	"fmt"
	"time"
)

// Step is a named group of checks. The checks run in order and the first Wrong verdict is the
// step's verdict.
type Step struct {
	Name   string
	Checks []Check
}

func (s Step) Evaluate(ctx context.Context, page Page, scratch *Scratch) (Verdict, error) {
	for _, c := range s.Checks {
		v, err := c.Evaluate(ctx, page, scratch)
		if err != nil || !v.IsCorrect() {
			return v, err
		}
	}
	return Correct(), nil
}

// Sequence is an ordered list of steps.
type Sequence struct {
	Name  string
	Steps []Step
}

// StepOutcome describes one evaluated step, for observers.
type StepOutcome struct {
	Index    int // 1-based
	Name     string
	Verdict  Verdict
	Err      error
	Duration time.Duration
}

// Observer is called after every step that was evaluated.
type Observer func(StepOutcome)

// Result is the aggregate result of a sequence: Passed, or failed with the message of the first
// Wrong step.
type Result struct {
	Passed   bool
	Message  string
	Step     int // 1-based index of the failing step
	StepName string
	Executed int
}

// Err returns nil for a passing result and a *Failure otherwise.
func (r Result) Err() error {
	if r.Passed {
		return nil
	}
	return &Failure{Step: r.Step, StepName: r.StepName, Message: r.Message}
}

// Failure means a step returned a Wrong verdict. Its Error is the verdict's message, unchanged.
type Failure struct {
	Step     int
	StepName string
	Message  string
}

func (f *Failure) Error() string {
	return f.Message
}

// StepError means a step could not be evaluated, as opposed to being evaluated as Wrong.
type StepError struct {
	Step     int
	StepName string
	Err      error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step #%d (%s) could not be evaluated: %s", e.Step, e.StepName, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

// Run evaluates the steps in order against page with a fresh Scratch. It stops at the first Wrong
// verdict, which becomes the result, or at the first error. Steps after that are not evaluated.
func (s Sequence) Run(ctx context.Context, page Page, observers ...Observer) (Result, error) {
	scratch := NewScratch()
	var result Result
	for i, step := range s.Steps {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		started := time.Now()
		v, err := step.Evaluate(ctx, page, scratch)
		result.Executed = i + 1
		outcome := StepOutcome{Index: i + 1, Name: step.Name, Verdict: v, Err: err, Duration: time.Since(started)}
		for _, o := range observers {
			o(outcome)
		}
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return result, ctxErr
			}
			return result, &StepError{Step: i + 1, StepName: step.Name, Err: err}
		}
		if !v.IsCorrect() {
			result.Message = v.Message()
			result.Step = i + 1
			result.StepName = step.Name
			return result, nil
		}
	}
	result.Passed = true
	return result, nil
}
