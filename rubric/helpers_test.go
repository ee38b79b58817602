package rubric

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

type params = map[string]interface{}

func buildTestCheck(t *testing.T, kind string, p params) Check {
	c, err := buildCheck(kind, p)
	require.NoError(t, err)
	return c
}

func evaluate(t *testing.T, c Check, page Page, scratch *Scratch) Verdict {
	if scratch == nil {
		scratch = NewScratch()
	}
	v, err := c.Evaluate(context.Background(), page, scratch)
	require.NoError(t, err)
	return v
}

func requireCorrect(t *testing.T, v Verdict) {
	require.True(t, v.IsCorrect(), "expected correct verdict, got %s", v)
}

func requireWrong(t *testing.T, v Verdict, message string) {
	require.False(t, v.IsCorrect(), "expected wrong verdict")
	require.Equal(t, message, v.Message())
}
