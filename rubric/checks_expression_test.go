package rubric

import (
	"testing"

	"github.com/pagecheck/page-contract-tests/dom/domtest"

	"github.com/stretchr/testify/require"
)

func TestExpression(t *testing.T) {
	c := buildTestCheck(t, "expression", params{
		"selector":  ".black-keys > kbd",
		"condition": `count == 5 && all(elements, {.Rect.Bottom < 500}) && viewport.Width > 1000`,
	})
	requireCorrect(t, evaluate(t, c, domtest.Piano(), nil))

	wrong := buildTestCheck(t, "expression", params{"selector": ".black-keys > kbd", "condition": "count == 7"})
	requireWrong(t, evaluate(t, wrong, domtest.Piano(), nil), "Condition count == 7 is not satisfied for selector '.black-keys > kbd'")
}

func TestExpressionMustBeBoolean(t *testing.T) {
	_, err := buildCheck("expression", params{"selector": "kbd", "condition": "count + 1"})
	require.Error(t, err)

	_, err = buildCheck("expression", params{"selector": "kbd", "condition": "unknown_name > 1"})
	require.Error(t, err)
}
