// Package session manages one browser page under test: opening it through a browser driver,
// waiting for it to settle, installing the page-side helper and instrumentation, and answering
// the DOM, input and log queries that rubric checks make.
package session
