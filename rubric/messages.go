package rubric

import (
	"fmt"
	"strings"
)

// Overrides replaces the default diagnostic text of a check. Keys are the check's message slot
// names; placeholders in the text are written {name}.
type Overrides struct {
	Messages map[string]string `mapstructure:"messages"`
}

func (o Overrides) overrides() map[string]string {
	return o.Messages
}

// wrong builds a Wrong verdict from the override for slot, or from fallback if there is none.
// vars are alternating placeholder names and values.
func (o Overrides) wrong(slot, fallback string, vars ...interface{}) Verdict {
	text := fallback
	if t, ok := o.Messages[slot]; ok {
		text = t
	}
	return Wrong(expand(text, vars...))
}

func expand(text string, vars ...interface{}) string {
	pairs := make([]string, 0, len(vars))
	for i := 0; i+1 < len(vars); i += 2 {
		pairs = append(pairs, "{"+fmt.Sprint(vars[i])+"}", fmt.Sprint(vars[i+1]))
	}
	return strings.NewReplacer(pairs...).Replace(text)
}
