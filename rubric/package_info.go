// Package rubric contains the declarative page assertions: the individual checks, the steps
// that group them, the runner that evaluates a sequence of steps against a page, and the YAML
// rubric definitions that describe a sequence as data.
//
// A rubric run is strictly sequential. Steps are evaluated in order and the first step that
// returns a Wrong verdict ends the run; its message is the result of the whole rubric. Checks
// never share hidden state. A check that locates elements for later steps stores them in the
// run's Scratch under a name, and later checks read them back by that name. Whether every name
// that is read was stored by an earlier check is verified when a rubric is built, not when it runs.
package rubric
