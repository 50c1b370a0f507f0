package text

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEnglishLemmatizer_Lemma(t *testing.T) {
	tests := []struct {
		token string
		want  string
	}{
		{"effects", "effect"},
		{"cramps", "cramp"},
		{"headaches", "headache"},
		{"aches", "ache"},
		{"stomachaches", "stomachache"},
		{"matches", "match"},
		{"rashes", "rash"},
		{"washes", "wash"},
		{"babies", "baby"},
		{"ties", "tie"},
		{"boxes", "box"},
		{"glasses", "glass"},
		{"potatoes", "potato"},
		{"women", "woman"},
		{"children", "child"},
		{"people", "person"},
		{"lives", "life"},
		{"nausea", "nausea"},
		{"virus", "virus"},
		{"analysis", "analysis"},
		{"gas", "gas"},
		{"colitis", "colitis"},
	}
	lem := EnglishLemmatizer{}
	for _, tt := range tests {
		t.Run(tt.token, func(t *testing.T) {
			assert.Equal(t, tt.want, lem.Lemma(tt.token))
		})
	}
}

func TestEnglishLemmatizer_Idempotent(t *testing.T) {
	words := []string{
		"effects", "babies", "glasses", "boxes", "women", "people",
		"lives", "remission", "flares", "symptoms", "doses", "headaches",
	}
	lem := EnglishLemmatizer{}
	for _, w := range words {
		once := lem.Lemma(w)
		assert.Equal(t, once, lem.Lemma(once), "word %q", w)
	}
}

func TestIdentityLemmatizer(t *testing.T) {
	assert.Equal(t, "effects", IdentityLemmatizer{}.Lemma("effects"))
}
