// Package framework contains the low-level test infrastructure that the page contract tests run
// on, independent of what is being tested.
//
// The general model is:
//
// 1. There is a test context which is similar to Go's *testing.T, allowing pieces of test logic
// to be associated with a test identifier and to accumulate success/failure results. Each test
// has its own capturing logger, whose output is only shown if the test fails or if all debug
// output was requested.
//
// 2. Tests can be selected or excluded by regular expressions matched against their full
// identifier.
//
// 3. A TestLogger receives progress notifications as tests run, and Results are available for
// reporting once they are all done.
//
// 4. Pages under test can be served from a local directory over HTTP, for pages that don't work
// when loaded from a file: URL.
//
// The domain-specific code that knows what is being tested builds its own test API on top of
// the test context.
package framework
