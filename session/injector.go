package session

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/pagecheck/page-contract-tests/browser"
)

//go:embed js/harness.js
var harnessScript string

// Names of the instrumentation logs.
const (
	AudioLog   = "audio"
	ConsoleLog = "console"
)

// Instrumentation selects which page primitives are wrapped so that their use is recorded.
type Instrumentation struct {
	// Audio records every `new Audio(...)` and every document.createElement("audio") into the
	// "audio" log.
	Audio bool `mapstructure:"audio" json:"audio"`

	// Console records the argument list of every console.log call into the "console" log. The
	// call still reaches the real console.
	Console bool `mapstructure:"console" json:"console"`
}

// Inject installs the page-side helper and the requested instrumentation. Primitives the page
// doesn't have are skipped; injecting twice changes nothing. It returns the names of the
// primitives that were wrapped by this call.
func Inject(ctx context.Context, page browser.Page, instr Instrumentation) ([]string, error) {
	var fresh bool
	if err := page.Evaluate(ctx, harnessScript, &fresh); err != nil {
		return nil, fmt.Errorf("failed to install page helper: %w", err)
	}
	expr, err := helperCall("instrument", instr)
	if err != nil {
		return nil, fmt.Errorf("failed to encode instrumentation options: %w", err)
	}
	var installed []string
	if err := page.Evaluate(ctx, expr, &installed); err != nil {
		return nil, fmt.Errorf("failed to install instrumentation: %w", err)
	}
	return installed, nil
}
