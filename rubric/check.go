package rubric

import (
	"context"
	"fmt"
	"sort"
)

// Check is one assertion about the page. Evaluate returns a Wrong verdict when the page doesn't
// satisfy the assertion, and an error only when the page could not be inspected at all.
type Check interface {
	Evaluate(ctx context.Context, page Page, scratch *Scratch) (Verdict, error)
}

// Optional interfaces used when a rubric is built.
type (
	validator interface{ validate() error }
	storer    interface{ stores() []string }
	reader    interface{ reads() []string }
	overrider interface{ overrides() map[string]string }
)

type checkKind struct {
	new   func() Check
	slots []string
}

var checkKinds = map[string]checkKind{
	"cardinality":      {func() Check { return &Cardinality{} }, []string{"missing", "multiple"}},
	"tag":              {func() Check { return &Tag{} }, []string{"missing", "mismatch"}},
	"child-count":      {func() Check { return &ChildCount{} }, []string{"missing", "mismatch"}},
	"child-tag":        {func() Check { return &ChildTag{} }, []string{"mismatch"}},
	"text-length":      {func() Check { return &TextLength{} }, []string{"empty", "mismatch"}},
	"text-set":         {func() Check { return &TextSet{} }, []string{"mismatch"}},
	"unique-text":      {func() Check { return &UniqueText{} }, []string{"duplicate"}},
	"aligned-top":      {func() Check { return &AlignedTop{} }, []string{"missing", "mismatch"}},
	"centered":         {func() Check { return &Centered{} }, []string{"missing", "left", "right", "top", "bottom"}},
	"style-present":    {func() Check { return &StylePresent{} }, []string{"border", "width", "height"}},
	"background":       {func() Check { return &Background{} }, []string{"missing", "unset", "mismatch"}},
	"adjacency":        {func() Check { return &Adjacency{} }, []string{"missing", "gap"}},
	"relative-spacing": {func() Check { return &RelativeSpacing{} }, []string{"missing", "mismatch"}},
	"key-press-count":  {func() Check { return &KeyPressCount{} }, []string{"none", "few", "many"}},
	"interaction-log":  {func() Check { return &InteractionLog{} }, []string{"count", "content"}},
	"expression":       {func() Check { return &Expression{} }, []string{"mismatch"}},
}

// CheckKinds lists the kind names that can appear in a rubric definition.
func CheckKinds() []string {
	kinds := make([]string, 0, len(checkKinds))
	for k := range checkKinds {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	return kinds
}

// MessageSlots lists the message names a check kind accepts overrides for.
func MessageSlots(kind string) ([]string, error) {
	k, ok := checkKinds[kind]
	if !ok {
		return nil, fmt.Errorf("unknown check kind %q", kind)
	}
	return append([]string(nil), k.slots...), nil
}
