// Package markers detects curated clinical marker phrases in normalized
// review comments and emits one event per positive (row, marker) detection.
package markers

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/medlens/reviewsignal/internal/domain/review"
	"github.com/medlens/reviewsignal/internal/domain/text"
	"github.com/medlens/reviewsignal/internal/infrastructure/monitoring/logging"
	"github.com/medlens/reviewsignal/pkg/errors"
	"github.com/medlens/reviewsignal/pkg/types/common"
)

// Topic is one detection topic: a named marker dictionary bound to a single
// disease cohort.
type Topic struct {
	Name    string
	Disease string
	// Markers maps a marker label to its keyword phrases.  A marker fires
	// when any one of its phrases is found.
	Markers map[string][]string
}

// Engine scans annotated rows for marker phrases.
type Engine interface {
	// Detect returns one event per (row, marker, topic) positive detection,
	// in deterministic row-major order.  Absence of an event means the
	// marker was not found, never that the row went unscanned.
	Detect(ctx context.Context, runID common.RunID, rows []review.Annotated) ([]review.MarkerEvent, error)
}

// stemmedMarker is a marker label with its phrases reduced to stem
// sequences, precomputed once per run.
type stemmedMarker struct {
	label   string
	phrases [][]string
}

type compiledTopic struct {
	name    string
	disease string
	markers []stemmedMarker
}

type engineImpl struct {
	topics  []compiledTopic
	stemmer text.Stemmer
	logger  logging.Logger
}

// NewEngine compiles the topic dictionaries.  Phrases are normalized and
// stemmed exactly the way comment tokens are, so inflection never blocks a
// match.  Phrases that normalize to nothing are dropped; a topic without a
// disease binding is a configuration error surfaced at load time, not here.
func NewEngine(normalizer *text.Normalizer, stemmer text.Stemmer, topics []Topic, logger logging.Logger) Engine {
	if normalizer == nil {
		normalizer = text.NewEnglishNormalizer()
	}
	if stemmer == nil {
		stemmer = text.PorterStemmer{}
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}

	compiled := make([]compiledTopic, 0, len(topics))
	for _, topic := range topics {
		ct := compiledTopic{name: topic.Name, disease: topic.Disease}

		labels := make([]string, 0, len(topic.Markers))
		for label := range topic.Markers {
			labels = append(labels, label)
		}
		sort.Strings(labels)

		for _, label := range labels {
			sm := stemmedMarker{label: label}
			for _, phrase := range topic.Markers[label] {
				stemmed := stemmer.StemAll(normalizer.Normalize(phrase))
				if len(stemmed) > 0 {
					sm.phrases = append(sm.phrases, stemmed)
				}
			}
			if len(sm.phrases) > 0 {
				ct.markers = append(ct.markers, sm)
			}
		}
		compiled = append(compiled, ct)
	}

	return &engineImpl{topics: compiled, stemmer: stemmer, logger: logger}
}

func (e *engineImpl) Detect(ctx context.Context, runID common.RunID, rows []review.Annotated) ([]review.MarkerEvent, error) {
	var events []review.MarkerEvent
	now := time.Now().UTC()

	for _, row := range rows {
		if err := ctx.Err(); err != nil {
			return nil, errors.Wrap(err, errors.CodeInternal, "marker detection aborted")
		}
		stemmedComment := e.stemmer.StemAll(row.Tokens)
		for _, topic := range e.topics {
			if topic.disease != "" && row.Disease != topic.disease {
				continue
			}
			for _, marker := range topic.markers {
				if !anyPhrasePresent(stemmedComment, marker.phrases) {
					continue
				}
				events = append(events, review.MarkerEvent{
					ID:        uuid.NewString(),
					TextIndex: row.TextIndex,
					Marker:    marker.label,
					Topic:     topic.name,
					Disease:   topic.disease,
					RunID:     runID,
					CreatedAt: now,
				})
			}
		}
	}

	e.logger.Debug("marker detection finished",
		logging.Int("rows", len(rows)),
		logging.Int("events", len(events)),
	)
	return events, nil
}

func anyPhrasePresent(tokens []string, phrases [][]string) bool {
	for _, phrase := range phrases {
		if containsSequence(tokens, phrase) {
			return true
		}
	}
	return false
}

// containsSequence reports whether phrase occurs as a contiguous
// subsequence of tokens.  Order matters; an empty phrase never matches.
func containsSequence(tokens, phrase []string) bool {
	if len(phrase) == 0 || len(phrase) > len(tokens) {
		return false
	}
outer:
	for i := 0; i+len(phrase) <= len(tokens); i++ {
		for j, want := range phrase {
			if tokens[i+j] != want {
				continue outer
			}
		}
		return true
	}
	return false
}
