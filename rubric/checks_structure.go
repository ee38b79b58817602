package rubric

import (
	"context"
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/pagecheck/page-contract-tests/dom"
)

// Cardinality requires exactly one element to match. On success the element is stored under
// Store, if set.
type Cardinality struct {
	Target    `mapstructure:",squash"`
	Store     string `mapstructure:"store"`
	Overrides `mapstructure:",squash"`
}

func (c *Cardinality) validate() error { return c.validateTarget() }

func (c *Cardinality) stores() []string { return nonEmpty(c.Store) }

func (c *Cardinality) Evaluate(ctx context.Context, page Page, scratch *Scratch) (Verdict, error) {
	els, err := c.resolve(ctx, page, scratch)
	if err != nil {
		return Verdict{}, err
	}
	switch {
	case len(els) == 0:
		return c.wrong("missing", "Cannot find element with {target}", "target", c.Target), nil
	case len(els) > 1:
		return c.wrong("multiple", "Found {count} elements with {target}, the page should contain just a single such element.",
			"count", len(els), "target", c.Target), nil
	}
	if c.Store != "" {
		scratch.Store(c.Store, els)
	}
	return Correct(), nil
}

// Tag requires every located element to have the given tag name.
type Tag struct {
	Target    `mapstructure:",squash"`
	Tag       string `mapstructure:"tag"`
	Overrides `mapstructure:",squash"`
}

func (c *Tag) validate() error {
	if c.Tag == "" {
		return errors.New("tag is required")
	}
	return c.validateTarget()
}

func (c *Tag) Evaluate(ctx context.Context, page Page, scratch *Scratch) (Verdict, error) {
	els, err := c.resolve(ctx, page, scratch)
	if err != nil {
		return Verdict{}, err
	}
	if len(els) == 0 {
		return c.wrong("missing", "Cannot find '{expected}' element with {target}.", "expected", c.Tag, "target", c.Target), nil
	}
	for i, e := range els {
		if !e.HasTag(c.Tag) {
			return c.wrong("mismatch", "Cannot find '{expected}' element with {target}.",
				"expected", c.Tag, "actual", e.LowerTag(), "index", i+1, "target", c.Target), nil
		}
	}
	return Correct(), nil
}

// ChildCount requires the located element to have Count element children. Text and comment
// nodes don't count. The children are stored under Store, if set, whether or not the count
// matched.
type ChildCount struct {
	Target    `mapstructure:",squash"`
	Count     int    `mapstructure:"count"`
	Store     string `mapstructure:"store"`
	Overrides `mapstructure:",squash"`
}

func (c *ChildCount) validate() error {
	if c.Count < 0 {
		return fmt.Errorf("count must not be negative, got %d", c.Count)
	}
	return c.validateTarget()
}

func (c *ChildCount) stores() []string { return nonEmpty(c.Store) }

func (c *ChildCount) Evaluate(ctx context.Context, page Page, scratch *Scratch) (Verdict, error) {
	els, err := c.resolve(ctx, page, scratch)
	if err != nil {
		return Verdict{}, err
	}
	if len(els) == 0 {
		return c.wrong("missing", "Cannot find element with {target}", "target", c.Target), nil
	}
	children, err := page.ChildElements(ctx, els[0])
	if err != nil {
		return Verdict{}, err
	}
	if c.Store != "" {
		scratch.Store(c.Store, children)
	}
	if len(children) != c.Count {
		return c.wrong("mismatch", "Element with {target} should contain {expected} elements, found: {actual}",
			"expected", c.Count, "actual", len(children), "target", c.Target), nil
	}
	return Correct(), nil
}

// ChildTag requires every element of a list, typically children stored by ChildCount, to have
// the given tag. The message reports the 1-based position of the first offender.
type ChildTag struct {
	Target    `mapstructure:",squash"`
	Tag       string `mapstructure:"tag"`
	Overrides `mapstructure:",squash"`
}

func (c *ChildTag) validate() error {
	if c.Tag == "" {
		return errors.New("tag is required")
	}
	return c.validateTarget()
}

func (c *ChildTag) Evaluate(ctx context.Context, page Page, scratch *Scratch) (Verdict, error) {
	els, err := c.resolve(ctx, page, scratch)
	if err != nil {
		return Verdict{}, err
	}
	for i, e := range els {
		if !e.HasTag(c.Tag) {
			return c.wrong("mismatch", "Element #{index} is not <{expected}> element, it's <{actual}>",
				"index", i+1, "expected", c.Tag, "actual", e.LowerTag()), nil
		}
	}
	return Correct(), nil
}

// TextLength requires every located element to contain exactly Length characters. Source
// selects what is measured: the text content ("text", the default) or the inner HTML ("html").
type TextLength struct {
	Target    `mapstructure:",squash"`
	Length    int    `mapstructure:"length"`
	Source    string `mapstructure:"source"`
	Overrides `mapstructure:",squash"`
}

func (c *TextLength) validate() error {
	if c.Length == 0 {
		c.Length = 1
	}
	if c.Length < 0 {
		return fmt.Errorf("length must be positive, got %d", c.Length)
	}
	switch c.Source {
	case "":
		c.Source = "text"
	case "text", "html":
	default:
		return fmt.Errorf(`source must be "text" or "html", got %q`, c.Source)
	}
	return c.validateTarget()
}

func (c *TextLength) content(e dom.Element) string {
	if c.Source == "html" {
		return e.InnerHTML
	}
	return e.Text
}

func (c *TextLength) Evaluate(ctx context.Context, page Page, scratch *Scratch) (Verdict, error) {
	els, err := c.resolve(ctx, page, scratch)
	if err != nil {
		return Verdict{}, err
	}
	for i, e := range els {
		text := c.content(e)
		n := utf8.RuneCountInString(text)
		if n == 0 {
			return c.wrong("empty", "Element #{index} is empty, but should contain {expected} character(s).",
				"index", i+1, "expected", c.Length), nil
		}
		if n != c.Length {
			return c.wrong("mismatch", "Element #{index} contains {actual} symbols, but should contain {expected}. The text inside element is:\n\"{text}\"",
				"index", i+1, "expected", c.Length, "actual", n, "text", text), nil
		}
	}
	return Correct(), nil
}

func nonEmpty(keys ...string) []string {
	var ret []string
	for _, k := range keys {
		if k != "" {
			ret = append(ret, k)
		}
	}
	return ret
}
