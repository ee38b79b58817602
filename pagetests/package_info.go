// Package pagetests runs rubrics against real pages: it opens a browser session for each rubric,
// runs the rubric's steps within a time limit, and reports the outcome either into a
// framework.Context for the command line tool or into a *testing.T for Go tests.
package pagetests
