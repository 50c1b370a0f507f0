package text

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExclusionSet_FilterTokens(t *testing.T) {
	n := NewEnglishNormalizer()
	set := NewExclusionSet(n, []string{"Humira", "Crohn's Disease", "adalimumab"}, []string{"uc"})

	got := set.FilterTokens([]string{"humira", "helped", "crohn", "symptom", "uc"})
	assert.Equal(t, []string{"helped", "symptom"}, got)
}

func TestExclusionSet_FilterTokens_Empty(t *testing.T) {
	n := NewEnglishNormalizer()
	set := NewExclusionSet(n, nil, nil)

	tokens := []string{"rectal", "bleeding"}
	assert.Equal(t, tokens, set.FilterTokens(tokens))
	assert.Nil(t, set.FilterTokens(nil))
	assert.Zero(t, set.Len())
}

func TestExclusionSet_FilterPhrases(t *testing.T) {
	n := NewEnglishNormalizer()
	set := NewExclusionSet(n, []string{"Humira", "Crohn's Disease"}, []string{"uc"})

	phrases := []string{
		"rectal bleeding",
		"humira injection site",
		"severe crohn flare",
		"uc",
		"stomach cramp",
	}
	got := set.FilterPhrases(phrases)
	assert.Equal(t, []string{"rectal bleeding", "stomach cramp"}, got)
}

func TestExclusionSet_MultiWordJoinedForm(t *testing.T) {
	n := NewEnglishNormalizer()
	set := NewExclusionSet(n, []string{"Crohn's Disease"}, nil)

	assert.True(t, set.Contains("crohn"))
	assert.True(t, set.Contains("disease"))
	assert.True(t, set.Contains("crohn disease"))
	assert.False(t, set.Contains("bleeding"))
}

func TestExclusionSet_EmptySourcesContributeNothing(t *testing.T) {
	n := NewEnglishNormalizer()
	set := NewExclusionSet(n, []string{"", "   "}, nil)
	assert.Zero(t, set.Len())
}
