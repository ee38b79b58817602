package rubric

import (
	"context"
	"errors"
	"fmt"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/pagecheck/page-contract-tests/dom"
)

// expressionEnv is what an Expression condition can refer to. Elements are dom.Element values,
// so a condition reads fields like elements[0].Rect.Top or elements[1].Style.Display.
type expressionEnv struct {
	Elements []dom.Element `expr:"elements"`
	Count    int           `expr:"count"`
	Viewport dom.Viewport  `expr:"viewport"`
}

// Expression evaluates a boolean expr-lang condition over the located elements and the viewport.
// It covers one-off rules that don't deserve a check kind of their own.
type Expression struct {
	Target    `mapstructure:",squash"`
	Condition string `mapstructure:"condition"`
	Overrides `mapstructure:",squash"`

	program *vm.Program
}

func (c *Expression) validate() error {
	if c.Condition == "" {
		return errors.New("condition is required")
	}
	program, err := expr.Compile(c.Condition, expr.Env(expressionEnv{}), expr.AsBool())
	if err != nil {
		return fmt.Errorf("invalid condition: %w", err)
	}
	c.program = program
	return c.validateTarget()
}

func (c *Expression) Evaluate(ctx context.Context, page Page, scratch *Scratch) (Verdict, error) {
	els, err := c.resolve(ctx, page, scratch)
	if err != nil {
		return Verdict{}, err
	}
	vp, err := page.Viewport(ctx)
	if err != nil {
		return Verdict{}, err
	}
	out, err := expr.Run(c.program, expressionEnv{Elements: els, Count: len(els), Viewport: vp})
	if err != nil {
		return Verdict{}, fmt.Errorf("condition %q failed: %w", c.Condition, err)
	}
	if ok, _ := out.(bool); !ok {
		return c.wrong("mismatch", "Condition {condition} is not satisfied for {target}", "condition", c.Condition, "target", c.Target), nil
	}
	return Correct(), nil
}
