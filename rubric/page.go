package rubric

import (
	"context"

	"github.com/pagecheck/page-contract-tests/dom"

	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
)

// Page is what checks can observe and do on the page under test. It is implemented by
// *session.Session for real browsers and by *domtest.Page for static HTML.
type Page interface {
	ElementsByClassName(ctx context.Context, className string) ([]dom.Element, error)
	QuerySelectorAll(ctx context.Context, selector string) ([]dom.Element, error)

	// ChildElements returns element children only; text and comment nodes are skipped.
	ChildElements(ctx context.Context, e dom.Element) ([]dom.Element, error)

	// ParentElement returns false for the root element.
	ParentElement(ctx context.Context, e dom.Element) (dom.Element, bool, error)

	Body(ctx context.Context) (dom.Element, error)
	Viewport(ctx context.Context) (dom.Viewport, error)
	PressKey(ctx context.Context, key string) error

	// Records returns the entries of an instrumentation log, oldest first.
	Records(ctx context.Context, log string) ([]ldvalue.Value, error)
	ClearRecords(ctx context.Context, log string) error
}
