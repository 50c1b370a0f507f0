package text

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizer_Normalize(t *testing.T) {
	tests := []struct {
		name      string
		stopwords []string
		lem       Lemmatizer
		input     string
		want      []string
	}{
		{
			name:      "hyphen splits and stopwords drop",
			stopwords: []string{"were", "the"},
			lem:       IdentityLemmatizer{},
			input:     "The Side-Effects were awful!!",
			want:      []string{"side", "effects", "awful"},
		},
		{
			name:      "empty input",
			stopwords: DefaultStopwords(),
			lem:       EnglishLemmatizer{},
			input:     "",
			want:      nil,
		},
		{
			name:      "whitespace only",
			stopwords: DefaultStopwords(),
			lem:       EnglishLemmatizer{},
			input:     "   \t\n  ",
			want:      nil,
		},
		{
			name:      "numeric tokens removed",
			stopwords: DefaultStopwords(),
			lem:       IdentityLemmatizer{},
			input:     "took 40mg twice daily since 2019",
			want:      []string{"took", "twice", "daily", "since"},
		},
		{
			name:      "plural lemmatized",
			stopwords: DefaultStopwords(),
			lem:       EnglishLemmatizer{},
			input:     "cramps and headaches",
			want:      []string{"cramp", "headache"},
		},
		{
			name:      "apostrophe residue dropped as stopword",
			stopwords: DefaultStopwords(),
			lem:       EnglishLemmatizer{},
			input:     "Crohn's disease flared",
			want:      []string{"crohn", "disease", "flared"},
		},
		{
			name:      "punctuation only",
			stopwords: DefaultStopwords(),
			lem:       EnglishLemmatizer{},
			input:     "!!! ... ??",
			want:      nil,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := NewNormalizer(tt.stopwords, tt.lem)
			assert.Equal(t, tt.want, n.Normalize(tt.input))
		})
	}
}

func TestNormalizer_Idempotent(t *testing.T) {
	inputs := []string{
		"The Side-Effects were awful!!",
		"Severe rectal bleeding and fatigue, switched from Humira.",
		"Crohn's Disease, Maintenance",
		"no more flare-ups; feeling great!",
		"women taking this had fewer babies' colds",
		"",
	}
	n := NewEnglishNormalizer()
	for _, input := range inputs {
		once := n.Normalize(input)
		again := n.Normalize(strings.Join(once, " "))
		require.Equal(t, once, again, "input %q", input)
	}
}

func TestNormalizer_Join(t *testing.T) {
	n := NewNormalizer([]string{"the"}, IdentityLemmatizer{})
	assert.Equal(t, "side effects", n.Join("The Side-Effects..."))
	assert.Equal(t, "", n.Join("   "))
}

func TestNormalizer_NilLemmatizerDefaultsToIdentity(t *testing.T) {
	n := NewNormalizer(nil, nil)
	assert.Equal(t, []string{"effects"}, n.Normalize("Effects"))
}
