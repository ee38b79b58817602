package rubric

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
)

const (
	defaultAudioLog   = "audio"
	defaultConsoleLog = "console"
)

// Interaction modes for InteractionLog.
const (
	// ModeDelta compares the log length before and after each key press.
	ModeDelta = "delta"
	// ModePop reads the whole log after each key press and then clears it.
	ModePop = "pop"
)

// KeyPressCount presses every key in Keys, in order, and then requires the instrumentation log to
// hold exactly one record per key press.
type KeyPressCount struct {
	Keys      []string `mapstructure:"keys"`
	Log       string   `mapstructure:"log"`
	Overrides `mapstructure:",squash"`
}

func (c *KeyPressCount) validate() error {
	if len(c.Keys) == 0 {
		return errors.New("keys must list at least one key")
	}
	if c.Log == "" {
		c.Log = defaultAudioLog
	}
	return nil
}

func (c *KeyPressCount) Evaluate(ctx context.Context, page Page, scratch *Scratch) (Verdict, error) {
	for _, k := range c.Keys {
		if err := page.PressKey(ctx, k); err != nil {
			return Verdict{}, err
		}
	}
	records, err := page.Records(ctx, c.Log)
	if err != nil {
		return Verdict{}, err
	}
	n, expected := len(records), len(c.Keys)
	switch {
	case n == 0:
		return c.wrong("none", "Cannot find any {log} records after pressing {expected} keys.", "log", c.Log, "expected", expected), nil
	case n < expected:
		return c.wrong("few", "There are not enough {log} records, {count} of {expected} were found", "log", c.Log, "count", n, "expected", expected), nil
	case n > expected:
		return c.wrong("many", "There are too many {log} records, found {count} instead of {expected}", "log", c.Log, "count", n, "expected", expected), nil
	}
	return Correct(), nil
}

// InteractionLog presses each key in Keys and requires that exactly one new log record appears
// for it, and that the record's text mentions the key (ignoring case).
type InteractionLog struct {
	Keys      []string `mapstructure:"keys"`
	Log       string   `mapstructure:"log"`
	Mode      string   `mapstructure:"mode"`
	Overrides `mapstructure:",squash"`
}

func (c *InteractionLog) validate() error {
	if len(c.Keys) == 0 {
		return errors.New("keys must list at least one key")
	}
	if c.Log == "" {
		c.Log = defaultConsoleLog
	}
	switch c.Mode {
	case "":
		c.Mode = ModeDelta
	case ModeDelta, ModePop:
	default:
		return fmt.Errorf("mode must be %q or %q, got %q", ModeDelta, ModePop, c.Mode)
	}
	return nil
}

func (c *InteractionLog) Evaluate(ctx context.Context, page Page, scratch *Scratch) (Verdict, error) {
	for _, k := range c.Keys {
		entries, err := c.press(ctx, page, k)
		if err != nil {
			return Verdict{}, err
		}
		if len(entries) != 1 {
			return c.wrong("count", "After pressing the '{key}' key there should be exactly one new {log} entry, found {count}.",
				"key", k, "log", c.Log, "count", len(entries)), nil
		}
		text := EntryText(entries[0])
		if !strings.Contains(strings.ToLower(text), strings.ToLower(k)) {
			return c.wrong("content", "The {log} entry written after pressing the '{key}' key doesn't mention the key: {entry}",
				"key", k, "log", c.Log, "entry", text), nil
		}
	}
	return Correct(), nil
}

// press returns the records that appeared because of one key press.
func (c *InteractionLog) press(ctx context.Context, page Page, key string) ([]ldvalue.Value, error) {
	if c.Mode == ModePop {
		if err := page.PressKey(ctx, key); err != nil {
			return nil, err
		}
		entries, err := page.Records(ctx, c.Log)
		if err != nil {
			return nil, err
		}
		return entries, page.ClearRecords(ctx, c.Log)
	}
	before, err := page.Records(ctx, c.Log)
	if err != nil {
		return nil, err
	}
	if err := page.PressKey(ctx, key); err != nil {
		return nil, err
	}
	after, err := page.Records(ctx, c.Log)
	if err != nil {
		return nil, err
	}
	if len(after) < len(before) {
		return nil, fmt.Errorf("%s log shrank from %d to %d entries", c.Log, len(before), len(after))
	}
	return after[len(before):], nil
}

// EntryText renders a log record as text. A record holding an argument list, as console.log
// records do, is rendered like the console would: strings as-is, other values as JSON, separated
// by spaces.
func EntryText(v ldvalue.Value) string {
	switch v.Type() {
	case ldvalue.StringType:
		return v.StringValue()
	case ldvalue.ArrayType:
		parts := make([]string, 0, v.Count())
		for i := 0; i < v.Count(); i++ {
			parts = append(parts, EntryText(v.GetByIndex(i)))
		}
		return strings.Join(parts, " ")
	default:
		return v.JSONString()
	}
}
