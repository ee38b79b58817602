package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/pagecheck/page-contract-tests/browser"
)

type fakePage struct {
	responses  map[string]string
	failOn     string
	evaluated  []string
	pressed    []string
	closeCount int
	onEvaluate func(expr string)
}

func newFakePage() *fakePage {
	return &fakePage{responses: map[string]string{
		harnessScript: "true",
	}}
}

func (p *fakePage) Evaluate(ctx context.Context, expression string, out interface{}) error {
	p.evaluated = append(p.evaluated, expression)
	if p.onEvaluate != nil {
		p.onEvaluate(expression)
	}
	if p.failOn != "" && expression == p.failOn {
		return errors.New("evaluation failed")
	}
	resp, ok := p.responses[expression]
	if !ok {
		return fmt.Errorf("unexpected expression: %s", expression)
	}
	if out == nil {
		return nil
	}
	return json.Unmarshal([]byte(resp), out)
}

func (p *fakePage) PressKey(ctx context.Context, key string) error {
	p.pressed = append(p.pressed, key)
	return nil
}

func (p *fakePage) Close() error {
	p.closeCount++
	return nil
}

type fakeDriver struct {
	page    *fakePage
	err     error
	options browser.Options
	url     string
}

func (d *fakeDriver) Name() string { return "fake" }

func (d *fakeDriver) Open(ctx context.Context, url string, opts browser.Options) (browser.Page, error) {
	d.url, d.options = url, opts
	if d.err != nil {
		return nil, d.err
	}
	return d.page, nil
}
