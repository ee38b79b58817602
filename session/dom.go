package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/pagecheck/page-contract-tests/dom"
)

var errNoBody = errors.New("document has no body element")

func helperCall(method string, args ...interface{}) (string, error) {
	encoded := make([]string, 0, len(args))
	for _, a := range args {
		data, err := json.Marshal(a)
		if err != nil {
			return "", err
		}
		encoded = append(encoded, string(data))
	}
	return fmt.Sprintf("window.__pagecheck.%s(%s)", method, strings.Join(encoded, ", ")), nil
}

func (s *Session) ElementsByClassName(ctx context.Context, className string) ([]dom.Element, error) {
	var ret []dom.Element
	err := s.call(ctx, &ret, "byClass", className)
	return ret, err
}

func (s *Session) QuerySelectorAll(ctx context.Context, selector string) ([]dom.Element, error) {
	var ret []dom.Element
	err := s.call(ctx, &ret, "query", selector)
	return ret, err
}

// ChildElements returns the element children of e; text and comment nodes are not included.
func (s *Session) ChildElements(ctx context.Context, e dom.Element) ([]dom.Element, error) {
	var ret []dom.Element
	err := s.call(ctx, &ret, "children", e.Ref)
	return ret, err
}

// ParentElement returns the parent of e, or false if e is the root element.
func (s *Session) ParentElement(ctx context.Context, e dom.Element) (dom.Element, bool, error) {
	var ret *dom.Element
	if err := s.call(ctx, &ret, "parent", e.Ref); err != nil || ret == nil {
		return dom.Element{}, false, err
	}
	return *ret, true, nil
}

func (s *Session) Body(ctx context.Context) (dom.Element, error) {
	var ret *dom.Element
	if err := s.call(ctx, &ret, "body"); err != nil {
		return dom.Element{}, err
	}
	if ret == nil {
		return dom.Element{}, errNoBody
	}
	return *ret, nil
}

func (s *Session) Viewport(ctx context.Context) (dom.Viewport, error) {
	var ret dom.Viewport
	err := s.call(ctx, &ret, "viewport")
	return ret, err
}
