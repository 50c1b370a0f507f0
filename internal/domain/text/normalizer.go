// Package text implements the deterministic token pipeline shared by every
// stage that looks at free-text review content: normalization, lemmatization,
// stemming, and per-row term exclusion.
package text

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Normalizer converts raw free text into a canonical lowercase token
// sequence.  The pipeline is lowercase, Unicode NFC, punctuation to spaces,
// whitespace tokenization, stop-word and non-alphabetic removal, then
// lemmatization.  Output tokens are always a fixed point of the pipeline, so
// normalizing the joined output reproduces the same sequence.
type Normalizer struct {
	stopwords  map[string]struct{}
	lemmatizer Lemmatizer
}

// NewNormalizer builds a Normalizer over the given stop-word list and
// lemmatizer.  A nil lemmatizer defaults to IdentityLemmatizer.
func NewNormalizer(stopwords []string, lem Lemmatizer) *Normalizer {
	if lem == nil {
		lem = IdentityLemmatizer{}
	}
	return &Normalizer{
		stopwords:  NewStopwordSet(stopwords),
		lemmatizer: lem,
	}
}

// NewEnglishNormalizer is the production configuration: the built-in English
// stop-word list and the English plural lemmatizer.
func NewEnglishNormalizer() *Normalizer {
	return NewNormalizer(defaultStopwords, EnglishLemmatizer{})
}

// Normalize maps raw text to its canonical token sequence.  Empty or
// whitespace-only input yields an empty sequence, never an error.
func (n *Normalizer) Normalize(text string) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	text = norm.NFC.String(strings.ToLower(text))
	text = strings.Map(func(r rune) rune {
		if unicode.IsPunct(r) || unicode.IsSymbol(r) {
			return ' '
		}
		return r
	}, text)

	var tokens []string
	for _, tok := range strings.Fields(text) {
		if _, stop := n.stopwords[tok]; stop {
			continue
		}
		if !isAlphabetic(tok) {
			continue
		}
		lemma := n.lemmatizer.Lemma(tok)
		if _, stop := n.stopwords[lemma]; stop {
			continue
		}
		tokens = append(tokens, lemma)
	}
	return tokens
}

// Join returns the normalized tokens of text joined with single spaces.
func (n *Normalizer) Join(text string) string {
	return strings.Join(n.Normalize(text), " ")
}

func isAlphabetic(s string) bool {
	for _, r := range s {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return s != ""
}
