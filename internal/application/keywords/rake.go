package keywords

import (
	"sort"
	"strings"
	"unicode"
)

// ScoredPhrase is a candidate keyword phrase with its rank score.
type ScoredPhrase struct {
	Phrase string  `json:"phrase"`
	Score  float64 `json:"score"`
}

// Extractor produces ranked keyword phrases from free text using
// co-occurrence degree scoring: candidate phrases are the maximal runs of
// content words between stop words and punctuation, each word is scored by
// degree over frequency, and a phrase scores the sum of its word scores.
type Extractor struct {
	stopwords map[string]struct{}
	maxWords  int
}

// NewExtractor builds an extractor that keeps candidate phrases of at most
// maxWords words.  Longer runs are discarded, not truncated.
func NewExtractor(stopwords []string, maxWords int) *Extractor {
	set := make(map[string]struct{}, len(stopwords))
	for _, w := range stopwords {
		set[strings.ToLower(w)] = struct{}{}
	}
	if maxWords <= 0 {
		maxWords = 2
	}
	return &Extractor{stopwords: set, maxWords: maxWords}
}

// Extract returns candidate phrases ranked by descending score.  Ties break
// lexicographically so output order is stable across runs.
func (e *Extractor) Extract(text string) []ScoredPhrase {
	candidates := e.candidates(text)
	if len(candidates) == 0 {
		return nil
	}

	freq := make(map[string]int)
	degree := make(map[string]int)
	for _, phrase := range candidates {
		for _, w := range phrase {
			freq[w]++
			degree[w] += len(phrase)
		}
	}

	seen := make(map[string]struct{}, len(candidates))
	scored := make([]ScoredPhrase, 0, len(candidates))
	for _, phrase := range candidates {
		joined := strings.Join(phrase, " ")
		if _, dup := seen[joined]; dup {
			continue
		}
		seen[joined] = struct{}{}

		var score float64
		for _, w := range phrase {
			score += float64(degree[w]) / float64(freq[w])
		}
		scored = append(scored, ScoredPhrase{Phrase: joined, Score: score})
	}

	sort.Slice(scored, func(i, j int) bool {
		if scored[i].Score != scored[j].Score {
			return scored[i].Score > scored[j].Score
		}
		return scored[i].Phrase < scored[j].Phrase
	})
	return scored
}

// candidates splits text into lowercase content-word runs.  Stop words and
// punctuation end the current run; runs longer than maxWords are dropped.
func (e *Extractor) candidates(text string) [][]string {
	var phrases [][]string
	var current []string

	flush := func() {
		if n := len(current); n > 0 && n <= e.maxWords {
			phrases = append(phrases, current)
		}
		current = nil
	}

	word := strings.Builder{}
	endWord := func(boundary bool) {
		if word.Len() > 0 {
			w := word.String()
			word.Reset()
			if _, stop := e.stopwords[w]; stop {
				flush()
			} else {
				current = append(current, w)
			}
		}
		if boundary {
			flush()
		}
	}

	for _, r := range strings.ToLower(text) {
		switch {
		case unicode.IsLetter(r):
			word.WriteRune(r)
		case unicode.IsSpace(r):
			endWord(false)
		default:
			endWord(true)
		}
	}
	endWord(true)
	return phrases
}
