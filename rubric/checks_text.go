package rubric

import (
	"context"
	"errors"
	"strings"
)

// TextSet compares the set of text contents of the located elements with Expected, ignoring
// case. The sets are equal when they have the same size and every actual text is expected.
type TextSet struct {
	Target    `mapstructure:",squash"`
	Expected  []string `mapstructure:"expected"`
	Overrides `mapstructure:",squash"`
}

func (c *TextSet) validate() error {
	if len(c.Expected) == 0 {
		return errors.New("expected must list at least one text")
	}
	return c.validateTarget()
}

func (c *TextSet) Evaluate(ctx context.Context, page Page, scratch *Scratch) (Verdict, error) {
	els, err := c.resolve(ctx, page, scratch)
	if err != nil {
		return Verdict{}, err
	}
	expected := make(map[string]struct{}, len(c.Expected))
	for _, s := range c.Expected {
		expected[strings.ToUpper(s)] = struct{}{}
	}
	actual := make(map[string]struct{}, len(els))
	for _, e := range els {
		actual[strings.ToUpper(e.Text)] = struct{}{}
	}
	equal := len(actual) == len(expected)
	for s := range actual {
		if _, ok := expected[s]; !ok {
			equal = false
			break
		}
	}
	if !equal {
		return c.wrong("mismatch", "The texts of elements with {target} are incorrect. They must be: {expected}",
			"target", c.Target, "expected", strings.Join(c.Expected, ", ")), nil
	}
	return Correct(), nil
}

// UniqueText requires that no two located elements have the same text content. The first text,
// in document order, that occurs more than once is reported.
type UniqueText struct {
	Target    `mapstructure:",squash"`
	Overrides `mapstructure:",squash"`
}

func (c *UniqueText) validate() error { return c.validateTarget() }

func (c *UniqueText) Evaluate(ctx context.Context, page Page, scratch *Scratch) (Verdict, error) {
	els, err := c.resolve(ctx, page, scratch)
	if err != nil {
		return Verdict{}, err
	}
	var order []string
	counts := make(map[string]int)
	for _, e := range els {
		if counts[e.Text] == 0 {
			order = append(order, e.Text)
		}
		counts[e.Text]++
	}
	for _, text := range order {
		if counts[text] > 1 {
			return c.wrong("duplicate", "Too many elements with the {text} text", "text", text, "count", counts[text]), nil
		}
	}
	return Correct(), nil
}
