package keywords

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medlens/reviewsignal/internal/domain/text"
)

func TestExtractor_Extract(t *testing.T) {
	e := NewExtractor(text.DefaultStopwords(), 2)

	got := e.Extract("Severe cramps and rectal bleeding, but the cramps faded.")

	phrases := make([]string, len(got))
	for i, sp := range got {
		phrases[i] = sp.Phrase
	}
	assert.Contains(t, phrases, "severe cramps")
	assert.Contains(t, phrases, "rectal bleeding")
	assert.Contains(t, phrases, "cramps faded")
	// Scores are positive and ranked descending.
	for i, sp := range got {
		assert.Greater(t, sp.Score, 0.0)
		if i > 0 {
			assert.GreaterOrEqual(t, got[i-1].Score, sp.Score)
		}
	}
}

func TestExtractor_StopwordsSplitPhrases(t *testing.T) {
	e := NewExtractor([]string{"and", "the"}, 3)
	got := e.Extract("nausea and fatigue")

	require.Len(t, got, 2)
	assert.Equal(t, "fatigue", got[0].Phrase)
	assert.Equal(t, "nausea", got[1].Phrase)
	assert.Equal(t, got[0].Score, got[1].Score)
}

func TestExtractor_LongRunsDropped(t *testing.T) {
	e := NewExtractor([]string{"the"}, 2)
	got := e.Extract("the terrible constant burning stomach pain")
	assert.Empty(t, got)
}

func TestExtractor_PunctuationBoundsPhrases(t *testing.T) {
	e := NewExtractor(nil, 2)
	got := e.Extract("bleeding stopped. cramps remained")

	phrases := make([]string, len(got))
	for i, sp := range got {
		phrases[i] = sp.Phrase
	}
	assert.ElementsMatch(t, []string{"bleeding stopped", "cramps remained"}, phrases)
}

func TestExtractor_EmptyInput(t *testing.T) {
	e := NewExtractor(text.DefaultStopwords(), 2)
	assert.Nil(t, e.Extract(""))
	assert.Nil(t, e.Extract("  !!!  "))
}

func TestExtractor_Deterministic(t *testing.T) {
	e := NewExtractor(text.DefaultStopwords(), 2)
	input := "nausea, fatigue, cramps, bleeding, headaches, nausea"
	first := e.Extract(input)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, e.Extract(input))
	}
}
