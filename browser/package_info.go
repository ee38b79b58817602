// Package browser adapts real browser automation libraries to the small surface the page tests
// need: open a page at a URL, evaluate JavaScript in it, press keys through the browser's native
// input channel, and close everything down again.
//
// Three backends are provided: chromedp (the default), go-rod and playwright-go. They are looked
// up by name with Lookup.
package browser
