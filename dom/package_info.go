// Package dom contains the plain data types that describe what a page under test looks like
// at the moment a check runs: element snapshots, their bounding boxes and computed styles,
// the viewport size, and CSS color values.
//
// Nothing in this package talks to a browser. Snapshots are produced by the session package
// (from a live page) or by the domtest package (from static HTML), and consumed by rubric checks.
package dom
