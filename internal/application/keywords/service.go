// Package keywords extracts ranked keyword phrases from review comments,
// lemmatizes them, and strips each row's self-referential terms so a
// treatment never shows up as its own keyword.
package keywords

import (
	"context"
	"sort"
	"strings"

	"github.com/medlens/reviewsignal/internal/domain/review"
	"github.com/medlens/reviewsignal/internal/domain/text"
	"github.com/medlens/reviewsignal/internal/infrastructure/monitoring/logging"
	"github.com/medlens/reviewsignal/pkg/errors"
)

// WordCount is one word-cloud entry.
type WordCount struct {
	Word  string `json:"word"`
	Count int    `json:"count"`
}

// Service enriches annotated rows with keyword phrases.
type Service interface {
	// Enrich fills the Keywords field of every row, returning the rows in
	// input order.  Rows are independent; a row with an empty comment gets
	// an empty keyword list.
	Enrich(ctx context.Context, rows []review.Annotated) ([]review.Annotated, error)

	// WordCloud counts the individual words of the rows' keyword phrases,
	// most frequent first.
	WordCloud(rows []review.Annotated) []WordCount
}

// Config carries the keyword extraction knobs.
type Config struct {
	// MaxWords bounds keyword phrase length, matching the extractor.
	MaxWords int
	// ExclusionTerms is the fixed stop-term list added to every row's own
	// exclusion sources.
	ExclusionTerms []string
}

type serviceImpl struct {
	extractor  *Extractor
	normalizer *text.Normalizer
	lemmatizer text.Lemmatizer
	fixed      []string
	logger     logging.Logger
}

// NewService builds the keyword service.  The normalizer is used only to
// build per-row exclusion sets; phrase words are lemmatized directly so
// phrase boundaries survive.
func NewService(normalizer *text.Normalizer, lemmatizer text.Lemmatizer, cfg Config, logger logging.Logger) Service {
	if normalizer == nil {
		normalizer = text.NewEnglishNormalizer()
	}
	if lemmatizer == nil {
		lemmatizer = text.EnglishLemmatizer{}
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &serviceImpl{
		extractor:  NewExtractor(text.DefaultStopwords(), cfg.MaxWords),
		normalizer: normalizer,
		lemmatizer: lemmatizer,
		fixed:      cfg.ExclusionTerms,
		logger:     logger,
	}
}

func (s *serviceImpl) Enrich(ctx context.Context, rows []review.Annotated) ([]review.Annotated, error) {
	out := make([]review.Annotated, len(rows))
	for i, row := range rows {
		if err := ctx.Err(); err != nil {
			return nil, errors.Wrap(err, errors.CodeInternal, "keyword extraction aborted")
		}
		row.Keywords = s.rowKeywords(row)
		out[i] = row
	}
	return out, nil
}

func (s *serviceImpl) rowKeywords(row review.Annotated) []string {
	ranked := s.extractor.Extract(row.Comment)
	if len(ranked) == 0 {
		return nil
	}

	phrases := make([]string, 0, len(ranked))
	for _, sp := range ranked {
		phrases = append(phrases, s.lemmatizePhrase(sp.Phrase))
	}

	excl := text.NewExclusionSet(s.normalizer,
		[]string{row.Treatment, row.Disease, row.Antibody}, s.fixed)
	return excl.FilterPhrases(phrases)
}

func (s *serviceImpl) lemmatizePhrase(phrase string) string {
	words := strings.Fields(phrase)
	for i, w := range words {
		words[i] = s.lemmatizer.Lemma(w)
	}
	return strings.Join(words, " ")
}

func (s *serviceImpl) WordCloud(rows []review.Annotated) []WordCount {
	counts := make(map[string]int)
	for _, row := range rows {
		for _, phrase := range row.Keywords {
			for _, w := range strings.Fields(phrase) {
				counts[w]++
			}
		}
	}

	cloud := make([]WordCount, 0, len(counts))
	for w, c := range counts {
		cloud = append(cloud, WordCount{Word: w, Count: c})
	}
	sort.Slice(cloud, func(i, j int) bool {
		if cloud[i].Count != cloud[j].Count {
			return cloud[i].Count > cloud[j].Count
		}
		return cloud[i].Word < cloud[j].Word
	})
	return cloud
}
