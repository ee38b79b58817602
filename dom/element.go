package dom

import "strings"

// Ref identifies an element within one page. Refs are assigned by the page-side helper and stay
// stable for the lifetime of the page.
type Ref int

// Element is a snapshot of one DOM element.
type Element struct {
	Ref       Ref    `json:"ref"`
	Tag       string `json:"tag"`
	Class     string `json:"className"`
	Text      string `json:"text"`
	InnerHTML string `json:"html"`
	Rect      Rect   `json:"rect"`
	Style     Style  `json:"style"`
}

// Rect is an element's bounding client rectangle in CSS pixels.
type Rect struct {
	Top    float64 `json:"top"`
	Right  float64 `json:"right"`
	Bottom float64 `json:"bottom"`
	Left   float64 `json:"left"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Style holds the computed style properties that checks look at. Values are exactly what
// getComputedStyle reports.
type Style struct {
	Border            string `json:"border"`
	BorderTopWidth    string `json:"borderTopWidth"`
	BorderRightWidth  string `json:"borderRightWidth"`
	BorderBottomWidth string `json:"borderBottomWidth"`
	BorderLeftWidth   string `json:"borderLeftWidth"`
	Width             string `json:"width"`
	Height            string `json:"height"`
	Display           string `json:"display"`
	BackgroundColor   string `json:"backgroundColor"`
}

// Viewport is the inner size of the page's window.
type Viewport struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// HasTag reports whether the element's tag name matches, ignoring case.
func (e Element) HasTag(tag string) bool {
	return strings.EqualFold(e.Tag, tag)
}

// LowerTag returns the tag name the way it is written in HTML source.
func (e Element) LowerTag() string {
	return strings.ToLower(e.Tag)
}

// HasBorder reports whether the computed style describes a visible border. The shorthand is
// checked first; browsers leave it empty when the four sides differ, in which case any non-zero
// side counts.
func (s Style) HasBorder() bool {
	if s.Border != "" {
		width := strings.Fields(s.Border)
		return len(width) > 0 && !isZeroLength(width[0])
	}
	for _, w := range []string{s.BorderTopWidth, s.BorderRightWidth, s.BorderBottomWidth, s.BorderLeftWidth} {
		if w != "" && !isZeroLength(w) {
			return true
		}
	}
	return false
}

func isZeroLength(s string) bool {
	s = strings.TrimSpace(s)
	return s == "0" || s == "0px"
}

// Union returns the smallest rectangle containing all of rects. The zero Rect is returned for
// an empty list.
func Union(rects ...Rect) Rect {
	if len(rects) == 0 {
		return Rect{}
	}
	u := rects[0]
	for _, r := range rects[1:] {
		if r.Top < u.Top {
			u.Top = r.Top
		}
		if r.Left < u.Left {
			u.Left = r.Left
		}
		if r.Bottom > u.Bottom {
			u.Bottom = r.Bottom
		}
		if r.Right > u.Right {
			u.Right = r.Right
		}
	}
	u.Width = u.Right - u.Left
	u.Height = u.Bottom - u.Top
	return u
}
