package rubric

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/pagecheck/page-contract-tests/dom"
)

const (
	defaultCenterMargin  = 0.1
	defaultMaxGap        = 5
	defaultSpacingMargin = 1
)

// AlignedTop requires all located elements to share the first element's top coordinate,
// to the pixel.
type AlignedTop struct {
	Target    `mapstructure:",squash"`
	Overrides `mapstructure:",squash"`
}

func (c *AlignedTop) validate() error { return c.validateTarget() }

func (c *AlignedTop) Evaluate(ctx context.Context, page Page, scratch *Scratch) (Verdict, error) {
	els, err := c.resolve(ctx, page, scratch)
	if err != nil {
		return Verdict{}, err
	}
	if len(els) == 0 {
		return c.wrong("missing", "Cannot find elements with {target}", "target", c.Target), nil
	}
	reference := els[0].Rect.Top
	for i, e := range els {
		if e.Rect.Top != reference {
			return c.wrong("mismatch", "Looks like element #1 and element #{index} don't have the same top y coordinate. "+
				"All {count} elements should be located on a single horizontal line.",
				"index", i+1, "count", len(els)), nil
		}
	}
	return Correct(), nil
}

// Centered requires the box enclosing all located elements to leave at least Margin (a fraction
// of the viewport size) of free space on each side.
type Centered struct {
	Target    `mapstructure:",squash"`
	Margin    float64 `mapstructure:"margin"`
	Overrides `mapstructure:",squash"`
}

func (c *Centered) validate() error {
	if c.Margin == 0 {
		c.Margin = defaultCenterMargin
	}
	if c.Margin < 0 || c.Margin >= 0.5 {
		return fmt.Errorf("margin must be between 0 and 0.5, got %v", c.Margin)
	}
	return c.validateTarget()
}

func (c *Centered) Evaluate(ctx context.Context, page Page, scratch *Scratch) (Verdict, error) {
	els, err := c.resolve(ctx, page, scratch)
	if err != nil {
		return Verdict{}, err
	}
	if len(els) == 0 {
		return c.wrong("missing", "Cannot find elements with {target}", "target", c.Target), nil
	}
	vp, err := page.Viewport(ctx)
	if err != nil {
		return Verdict{}, err
	}
	rects := make([]dom.Rect, 0, len(els))
	for _, e := range els {
		rects = append(rects, e.Rect)
	}
	box := dom.Union(rects...)
	percent := math.Round(c.Margin * 100)
	hint := " Are you sure you positioned the elements in the center?"

	if box.Left < vp.Width*c.Margin {
		return c.wrong("left", "There should be at least {percent}% free space to the left of the elements."+hint, "percent", percent), nil
	}
	if vp.Width-box.Right < vp.Width*c.Margin {
		return c.wrong("right", "There should be at least {percent}% free space to the right of the elements."+hint, "percent", percent), nil
	}
	if box.Top < vp.Height*c.Margin {
		return c.wrong("top", "There should be at least {percent}% free space above the elements."+hint, "percent", percent), nil
	}
	if vp.Height-box.Bottom < vp.Height*c.Margin {
		return c.wrong("bottom", "There should be at least {percent}% free space below the elements."+hint, "percent", percent), nil
	}
	return Correct(), nil
}

// Adjacency finds the elements whose text is First and Second and requires the gap between the
// right edge of the first and the left edge of the second to be at most MaxGap pixels. A
// negative gap (overlap) counts by its size.
type Adjacency struct {
	Target    `mapstructure:",squash"`
	First     string  `mapstructure:"first"`
	Second    string  `mapstructure:"second"`
	MaxGap    float64 `mapstructure:"max_gap"`
	Overrides `mapstructure:",squash"`
}

func (c *Adjacency) validate() error {
	if c.First == "" || c.Second == "" {
		return errors.New("first and second are required")
	}
	if c.MaxGap == 0 {
		c.MaxGap = defaultMaxGap
	}
	if c.MaxGap < 0 {
		return fmt.Errorf("max_gap must not be negative, got %v", c.MaxGap)
	}
	return c.validateTarget()
}

func (c *Adjacency) Evaluate(ctx context.Context, page Page, scratch *Scratch) (Verdict, error) {
	els, err := c.resolve(ctx, page, scratch)
	if err != nil {
		return Verdict{}, err
	}
	found, missing := elementsWithTexts(els, c.First, c.Second)
	if missing != "" {
		return c.wrong("missing", "Cannot find the element with the {key} text", "key", missing), nil
	}
	gap := math.Abs(found[0].Rect.Right - found[1].Rect.Left)
	if gap > c.MaxGap {
		return c.wrong("gap", "The distance between {first} and {second} is {gap}px, it should be at most {max}px.",
			"first", c.First, "second", c.Second, "gap", gap, "max", c.MaxGap), nil
	}
	return Correct(), nil
}

// RelativeSpacing takes three elements a, b and c, found by their texts in Keys, and requires
// the distance from b's left edge to c's left edge to exceed the gap between a and b by at least
// Margin pixels.
type RelativeSpacing struct {
	Target    `mapstructure:",squash"`
	Keys      []string `mapstructure:"keys"`
	Margin    float64  `mapstructure:"margin"`
	Overrides `mapstructure:",squash"`
}

func (c *RelativeSpacing) validate() error {
	if len(c.Keys) != 3 {
		return fmt.Errorf("keys must list exactly 3 texts, got %d", len(c.Keys))
	}
	if c.Margin == 0 {
		c.Margin = defaultSpacingMargin
	}
	return c.validateTarget()
}

func (c *RelativeSpacing) Evaluate(ctx context.Context, page Page, scratch *Scratch) (Verdict, error) {
	els, err := c.resolve(ctx, page, scratch)
	if err != nil {
		return Verdict{}, err
	}
	found, missing := elementsWithTexts(els, c.Keys...)
	if missing != "" {
		return c.wrong("missing", "Cannot find the element with the {key} text", "key", missing), nil
	}
	near := math.Abs(found[0].Rect.Right - found[1].Rect.Left)
	far := math.Abs(found[1].Rect.Left - found[2].Rect.Left)
	if far < near+c.Margin {
		return c.wrong("mismatch", "The distance between {second} and {third} should be greater than the distance between {first} and {second}.",
			"first", c.Keys[0], "second", c.Keys[1], "third", c.Keys[2], "near", near, "far", far), nil
	}
	return Correct(), nil
}

// elementsWithTexts looks up one element per text. If any is missing, its text is returned.
func elementsWithTexts(els []dom.Element, texts ...string) ([]dom.Element, string) {
	found := make([]dom.Element, 0, len(texts))
	for _, t := range texts {
		e, ok := elementWithText(els, t)
		if !ok {
			return nil, t
		}
		found = append(found, e)
	}
	return found, ""
}
