package rubric

import (
	"context"
	"testing"

	"github.com/pagecheck/page-contract-tests/dom/domtest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
)

func pianoKeys() []interface{} {
	return []interface{}{"a", "s", "d", "f", "g", "h", "j", "w", "e", "t", "y", "u"}
}

func TestKeyPressCount(t *testing.T) {
	c := buildTestCheck(t, "key-press-count", params{"keys": pianoKeys()})

	t.Run("one record per key", func(t *testing.T) {
		page := domtest.Piano()
		requireCorrect(t, evaluate(t, c, page, nil))
		assert.Len(t, page.Pressed(), 12)
	})

	t.Run("no records", func(t *testing.T) {
		page := domtest.New(domtest.PianoHTML)
		requireWrong(t, evaluate(t, c, page, nil), "Cannot find any audio records after pressing 12 keys.")
	})

	t.Run("some keys silent", func(t *testing.T) {
		page := domtest.New(domtest.PianoHTML).OnKey(func(p *domtest.Page, key string) {
			if key != "u" && key != "y" {
				domtest.PlaysAudio(p, key)
			}
		})
		requireWrong(t, evaluate(t, c, page, nil), "There are not enough audio records, 10 of 12 were found")
	})

	t.Run("keys play twice", func(t *testing.T) {
		page := domtest.Piano().OnKey(domtest.PlaysAudio)
		requireWrong(t, evaluate(t, c, page, nil), "There are too many audio records, found 24 instead of 12")
	})
}

func TestInteractionLogDelta(t *testing.T) {
	c := buildTestCheck(t, "interaction-log", params{"keys": []interface{}{"a", "s"}})

	t.Run("one message per key", func(t *testing.T) {
		page := domtest.New(domtest.PianoHTML).OnKey(domtest.LogsKey)
		page.Record("console", ldvalue.ArrayOf(ldvalue.String("page loaded")))
		requireCorrect(t, evaluate(t, c, page, nil))
	})

	t.Run("no message", func(t *testing.T) {
		page := domtest.New(domtest.PianoHTML)
		requireWrong(t, evaluate(t, c, page, nil), "After pressing the 'a' key there should be exactly one new console entry, found 0.")
	})

	t.Run("two messages", func(t *testing.T) {
		page := domtest.New(domtest.PianoHTML).OnKey(domtest.LogsKey).OnKey(domtest.LogsKey)
		requireWrong(t, evaluate(t, c, page, nil), "After pressing the 'a' key there should be exactly one new console entry, found 2.")
	})

	t.Run("message without the key", func(t *testing.T) {
		page := domtest.New(domtest.PianoHTML).OnKey(func(p *domtest.Page, key string) {
			p.Record("console", ldvalue.ArrayOf(ldvalue.String("pressed"), ldvalue.Int(1)))
		})
		requireWrong(t, evaluate(t, c, page, nil), "The console entry written after pressing the 'a' key doesn't mention the key: pressed 1")
	})

	t.Run("log cleared by the page", func(t *testing.T) {
		page := domtest.New(domtest.PianoHTML).OnKey(func(p *domtest.Page, key string) {
			_ = p.ClearRecords(context.Background(), "console")
		})
		page.Record("console", ldvalue.String("earlier"))
		_, err := c.Evaluate(context.Background(), page, NewScratch())
		require.Error(t, err)
	})
}

func TestInteractionLogPopClearsAfterEachKey(t *testing.T) {
	c := buildTestCheck(t, "interaction-log", params{"keys": []interface{}{"A", "S"}, "mode": "pop"})

	page := domtest.New(domtest.PianoHTML).OnKey(domtest.LogsKey)
	requireCorrect(t, evaluate(t, c, page, nil))
	records, err := page.Records(context.Background(), "console")
	require.NoError(t, err)
	assert.Len(t, records, 0)

	stale := domtest.New(domtest.PianoHTML).OnKey(domtest.LogsKey)
	stale.Record("console", ldvalue.String("page loaded"))
	requireWrong(t, evaluate(t, c, stale, nil), "After pressing the 'A' key there should be exactly one new console entry, found 2.")
}

func TestInteractionLogRejectsUnknownMode(t *testing.T) {
	_, err := buildCheck("interaction-log", params{"keys": []interface{}{"a"}, "mode": "tail"})
	require.Error(t, err)
}

func TestEntryText(t *testing.T) {
	assert.Equal(t, "plain", EntryText(ldvalue.String("plain")))
	assert.Equal(t, `key a {"x":1}`, EntryText(ldvalue.ArrayOf(
		ldvalue.String("key"), ldvalue.String("a"), ldvalue.ObjectBuild().Set("x", ldvalue.Int(1)).Build())))
	assert.Equal(t, "3", EntryText(ldvalue.Int(3)))
}
