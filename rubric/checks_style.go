package rubric

import (
	"context"
	"errors"
	"fmt"

	"github.com/pagecheck/page-contract-tests/dom"
)

// StylePresent requires every located element to have each of Properties set: "border" means a
// border of non-zero width, "width" and "height" mean a computed value other than "auto".
type StylePresent struct {
	Target     `mapstructure:",squash"`
	Properties []string `mapstructure:"properties"`
	Overrides  `mapstructure:",squash"`
}

func (c *StylePresent) validate() error {
	if len(c.Properties) == 0 {
		return errors.New("properties must list at least one property")
	}
	for _, p := range c.Properties {
		switch p {
		case "border", "width", "height":
		default:
			return fmt.Errorf("unsupported property %q", p)
		}
	}
	return c.validateTarget()
}

func (c *StylePresent) Evaluate(ctx context.Context, page Page, scratch *Scratch) (Verdict, error) {
	els, err := c.resolve(ctx, page, scratch)
	if err != nil {
		return Verdict{}, err
	}
	for i, e := range els {
		for _, p := range c.Properties {
			switch {
			case p == "border" && !e.Style.HasBorder():
				return c.wrong("border", "Looks like element #{index} has no border. It should have a border.", "index", i+1), nil
			case p == "width" && e.Style.Width == "auto":
				return c.wrong("width", "Looks like element #{index} has width style = 'auto'. It should have some numeric value.", "index", i+1), nil
			case p == "height" && e.Style.Height == "auto":
				return c.wrong("height", "Looks like element #{index} has height style = 'auto'. It should have some numeric value.", "index", i+1), nil
			}
		}
	}
	return Correct(), nil
}

// Background checks the color an element visibly shows: its own background color, or if that
// is transparent, the nearest ancestor's. Element may be "body" instead of a target. Either
// Equals or NotEquals gives the color, as hex or "white"/"black".
type Background struct {
	Target    `mapstructure:",squash"`
	Element   string `mapstructure:"element"`
	Equals    string `mapstructure:"equals"`
	NotEquals string `mapstructure:"not_equals"`
	Overrides `mapstructure:",squash"`

	color uint32
}

func (c *Background) validate() error {
	if (c.Equals == "") == (c.NotEquals == "") {
		return errors.New("exactly one of equals or not_equals is required")
	}
	v, err := dom.ParseHex(c.Equals + c.NotEquals)
	if err != nil {
		return err
	}
	c.color = v
	switch c.Element {
	case "body":
		if c.From != "" || c.Class != "" || c.Selector != "" {
			return errors.New("element cannot be combined with from, class or selector")
		}
		return nil
	case "":
		return c.validateTarget()
	default:
		return fmt.Errorf(`element must be "body", got %q`, c.Element)
	}
}

func (c *Background) Evaluate(ctx context.Context, page Page, scratch *Scratch) (Verdict, error) {
	var els []dom.Element
	if c.Element == "body" {
		body, err := page.Body(ctx)
		if err != nil {
			return Verdict{}, err
		}
		els = []dom.Element{body}
	} else {
		var err error
		if els, err = c.resolve(ctx, page, scratch); err != nil {
			return Verdict{}, err
		}
	}
	if len(els) == 0 {
		return c.wrong("missing", "Cannot find elements with {target}", "target", c.Target), nil
	}
	for i, e := range els {
		color, ok, err := EffectiveBackground(ctx, page, e)
		if err != nil {
			return Verdict{}, err
		}
		if !ok {
			return c.wrong("unset", "Looks like the background color of element #{index} is not set.", "index", i+1), nil
		}
		if c.Equals != "" && color.Hex() != c.color {
			return c.wrong("mismatch", "Looks like element #{index} has background color {actual}. It should be {expected}.",
				"index", i+1, "actual", dom.FormatHex(color.Hex()), "expected", c.Equals), nil
		}
		if c.NotEquals != "" && color.Hex() == c.color {
			return c.wrong("mismatch", "Looks like element #{index} has background color {actual}. It should be some other color.",
				"index", i+1, "actual", dom.FormatHex(color.Hex())), nil
		}
	}
	return Correct(), nil
}

// EffectiveBackground walks from e up through its ancestors and returns the first background
// color that isn't fully transparent. It returns false if every element up to the root is
// transparent.
func EffectiveBackground(ctx context.Context, page Page, e dom.Element) (dom.Color, bool, error) {
	for {
		color, err := dom.ParseColor(e.Style.BackgroundColor)
		if err != nil {
			return dom.Color{}, false, err
		}
		if !color.Transparent() {
			return color, true, nil
		}
		parent, ok, err := page.ParentElement(ctx, e)
		if err != nil || !ok {
			return dom.Color{}, false, err
		}
		e = parent
	}
}
