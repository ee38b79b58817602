// Package domtest provides an in-memory page built from static HTML, for testing rubric checks
// without a browser. Layout is not computed: every element has a zero bounding box and default
// computed styles unless a test sets them, either through an inline style attribute or with
// SetRect and SetStyle.
package domtest

import (
	"context"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"

	"github.com/pagecheck/page-contract-tests/dom"
)

const transparent = "rgba(0, 0, 0, 0)"

// KeyHandler simulates a page's keyboard listener.
type KeyHandler func(p *Page, key string)

// Page implements rubric.Page over a parsed HTML document.
type Page struct {
	doc      *goquery.Document
	refs     map[*html.Node]dom.Ref
	nodes    []*html.Node
	rects    map[*html.Node]dom.Rect
	styles   map[*html.Node]dom.Style
	viewport dom.Viewport
	logs     map[string][]ldvalue.Value
	handlers []KeyHandler
	pressed  []string
	closed   bool
}

// New parses document. It panics if the HTML can't be read, which for a string can't happen.
func New(document string) *Page {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(document))
	if err != nil {
		panic(err)
	}
	return &Page{
		doc:      doc,
		refs:     make(map[*html.Node]dom.Ref),
		rects:    make(map[*html.Node]dom.Rect),
		styles:   make(map[*html.Node]dom.Style),
		viewport: dom.Viewport{Width: 1280, Height: 800},
		logs:     make(map[string][]ldvalue.Value),
	}
}

// SetViewport changes the window size reported to checks.
func (p *Page) SetViewport(width, height float64) *Page {
	p.viewport = dom.Viewport{Width: width, Height: height}
	return p
}

// SetRect assigns bounding boxes to the elements matching selector, in document order. Extra
// elements keep their current box.
func (p *Page) SetRect(selector string, rects ...dom.Rect) *Page {
	p.doc.Find(selector).Each(func(i int, s *goquery.Selection) {
		if i < len(rects) {
			r := rects[i]
			if r.Width == 0 && r.Height == 0 {
				r.Width, r.Height = r.Right-r.Left, r.Bottom-r.Top
			}
			p.rects[s.Nodes[0]] = r
		}
	})
	return p
}

// SetStyle modifies the computed style of every element matching selector.
func (p *Page) SetStyle(selector string, modify func(*dom.Style)) *Page {
	p.doc.Find(selector).Each(func(_ int, s *goquery.Selection) {
		style := p.style(s.Nodes[0])
		modify(&style)
		p.styles[s.Nodes[0]] = style
	})
	return p
}

// OnKey registers a handler that runs for every key press.
func (p *Page) OnKey(h KeyHandler) *Page {
	p.handlers = append(p.handlers, h)
	return p
}

// Record appends a record to an instrumentation log, as the page-side shims would.
func (p *Page) Record(log string, v ldvalue.Value) {
	p.logs[log] = append(p.logs[log], v)
}

// Pressed returns the keys pressed so far.
func (p *Page) Pressed() []string {
	return append([]string(nil), p.pressed...)
}

func (p *Page) Closed() bool {
	return p.closed
}

func (p *Page) Close() error {
	p.closed = true
	return nil
}

func (p *Page) ElementsByClassName(ctx context.Context, className string) ([]dom.Element, error) {
	var ret []dom.Element
	p.doc.Find("*").Each(func(_ int, s *goquery.Selection) {
		if s.HasClass(className) {
			ret = append(ret, p.element(s.Nodes[0]))
		}
	})
	return ret, nil
}

func (p *Page) QuerySelectorAll(ctx context.Context, selector string) ([]dom.Element, error) {
	var ret []dom.Element
	p.doc.Find(selector).Each(func(_ int, s *goquery.Selection) {
		ret = append(ret, p.element(s.Nodes[0]))
	})
	return ret, nil
}

func (p *Page) ChildElements(ctx context.Context, e dom.Element) ([]dom.Element, error) {
	n, err := p.node(e)
	if err != nil {
		return nil, err
	}
	var ret []dom.Element
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			ret = append(ret, p.element(c))
		}
	}
	return ret, nil
}

func (p *Page) ParentElement(ctx context.Context, e dom.Element) (dom.Element, bool, error) {
	n, err := p.node(e)
	if err != nil {
		return dom.Element{}, false, err
	}
	if n.Parent == nil || n.Parent.Type != html.ElementNode {
		return dom.Element{}, false, nil
	}
	return p.element(n.Parent), true, nil
}

func (p *Page) Body(ctx context.Context) (dom.Element, error) {
	body := p.doc.Find("body")
	if body.Length() == 0 {
		return dom.Element{}, fmt.Errorf("document has no body element")
	}
	return p.element(body.Nodes[0]), nil
}

func (p *Page) Viewport(ctx context.Context) (dom.Viewport, error) {
	return p.viewport, nil
}

func (p *Page) PressKey(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p.pressed = append(p.pressed, key)
	for _, h := range p.handlers {
		h(p, key)
	}
	return nil
}

func (p *Page) Records(ctx context.Context, log string) ([]ldvalue.Value, error) {
	return append([]ldvalue.Value(nil), p.logs[log]...), nil
}

func (p *Page) ClearRecords(ctx context.Context, log string) error {
	delete(p.logs, log)
	return nil
}

func (p *Page) node(e dom.Element) (*html.Node, error) {
	if e.Ref < 1 || int(e.Ref) > len(p.nodes) {
		return nil, fmt.Errorf("unknown element ref %d", e.Ref)
	}
	return p.nodes[e.Ref-1], nil
}

func (p *Page) ref(n *html.Node) dom.Ref {
	if r, ok := p.refs[n]; ok {
		return r
	}
	p.nodes = append(p.nodes, n)
	r := dom.Ref(len(p.nodes))
	p.refs[n] = r
	return r
}

func (p *Page) element(n *html.Node) dom.Element {
	s := p.doc.FindNodes(n)
	class, _ := s.Attr("class")
	inner, _ := s.Html()
	return dom.Element{
		Ref:       p.ref(n),
		Tag:       strings.ToUpper(n.Data),
		Class:     class,
		Text:      s.Text(),
		InnerHTML: inner,
		Rect:      p.rects[n],
		Style:     p.style(n),
	}
}

func (p *Page) style(n *html.Node) dom.Style {
	if s, ok := p.styles[n]; ok {
		return s
	}
	s := dom.Style{
		Border:          "0px none rgb(0, 0, 0)",
		Width:           "0px",
		Height:          "0px",
		Display:         "block",
		BackgroundColor: transparent,
	}
	for _, a := range n.Attr {
		if a.Key == "style" {
			applyInlineStyle(&s, a.Val)
		}
	}
	return s
}

func applyInlineStyle(s *dom.Style, inline string) {
	for _, decl := range strings.Split(inline, ";") {
		name, value, ok := strings.Cut(decl, ":")
		if !ok {
			continue
		}
		value = strings.TrimSpace(value)
		switch strings.TrimSpace(strings.ToLower(name)) {
		case "border":
			s.Border = value
		case "width":
			s.Width = value
		case "height":
			s.Height = value
		case "display":
			s.Display = value
		case "background-color", "background":
			s.BackgroundColor = value
		}
	}
}
