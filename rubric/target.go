package rubric

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/pagecheck/page-contract-tests/dom"
)

// Target says which elements a check looks at: elements stored earlier in the scratch context
// (From), elements with a class name (Class), or elements matching a CSS selector (Selector).
// Exactly one of them is set.
type Target struct {
	From     string `mapstructure:"from"`
	Class    string `mapstructure:"class"`
	Selector string `mapstructure:"selector"`
}

func (t Target) resolve(ctx context.Context, page Page, scratch *Scratch) ([]dom.Element, error) {
	switch {
	case t.From != "":
		return scratch.Elements(t.From)
	case t.Class != "":
		return page.ElementsByClassName(ctx, t.Class)
	default:
		return page.QuerySelectorAll(ctx, t.Selector)
	}
}

func (t Target) validateTarget() error {
	var set []string
	for _, f := range []struct{ name, value string }{{"from", t.From}, {"class", t.Class}, {"selector", t.Selector}} {
		if f.value != "" {
			set = append(set, f.name)
		}
	}
	switch len(set) {
	case 0:
		return errors.New("one of from, class or selector is required")
	case 1:
		return nil
	default:
		return fmt.Errorf("only one of from, class or selector may be set, got %s", strings.Join(set, " and "))
	}
}

func (t Target) reads() []string {
	if t.From != "" {
		return []string{t.From}
	}
	return nil
}

func (t Target) String() string {
	switch {
	case t.From != "":
		return fmt.Sprintf("'%s'", t.From)
	case t.Class != "":
		return fmt.Sprintf("class '%s'", t.Class)
	default:
		return fmt.Sprintf("selector '%s'", t.Selector)
	}
}

// elementWithText finds the element whose text content equals text, ignoring case. When several
// match, the last one in document order wins.
func elementWithText(els []dom.Element, text string) (dom.Element, bool) {
	var found dom.Element
	var ok bool
	for _, e := range els {
		if strings.EqualFold(e.Text, text) {
			found, ok = e, true
		}
	}
	return found, ok
}
