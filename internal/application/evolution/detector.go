// Package evolution detects treatment changes: it fuzzy-matches comment
// words against the run's treatment vocabulary, derives the set of other
// treatments each patient mentions, and maps the patient's rating onto an
// ordinal change-direction score.
package evolution

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/medlens/reviewsignal/internal/domain/review"
	"github.com/medlens/reviewsignal/internal/infrastructure/monitoring/logging"
	"github.com/medlens/reviewsignal/pkg/errors"
	"github.com/medlens/reviewsignal/pkg/types/common"
)

// RowResult is the per-row outcome of fuzzy treatment-change analysis.
// Score is nil exactly when Delta is empty: a patient who only mentions
// their own treatment gives no evidence of a change, whatever the rating.
type RowResult struct {
	TextIndex common.TextIndex `json:"text_index"`
	Treatment string           `json:"treatment"`
	Mentions  []string         `json:"fuzzy_treatments_in_comment"`
	Delta     []string         `json:"fuzzy_delta_treatment"`
	Score     *int             `json:"fuzzy_treatment_change_score"`
}

// Detector runs the fuzzy analysis over an annotated cohort.
type Detector interface {
	// Analyze returns one result per row with a non-empty treatment, in
	// input order.  Rows without a treatment are excluded from this
	// analysis entirely.
	Analyze(ctx context.Context, rows []review.Annotated) ([]RowResult, error)

	// Detect explodes the non-empty deltas into one event per
	// (row, previous treatment) pair.
	Detect(ctx context.Context, runID common.RunID, rows []review.Annotated) ([]review.TreatmentChangeEvent, error)
}

type detectorImpl struct {
	threshold int
	logger    logging.Logger
}

// NewDetector builds a detector with the given similarity threshold, an
// integer percentage a comment word must reach against a vocabulary
// treatment to count as a mention.
func NewDetector(threshold int, logger logging.Logger) Detector {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &detectorImpl{threshold: threshold, logger: logger}
}

// BuildVocabulary collects the distinct non-empty treatment values of the
// cohort, sorted for deterministic scan order.  The vocabulary must be
// complete before any row is scanned; rows added later would see a
// different candidate set.
func BuildVocabulary(rows []review.Annotated) []string {
	seen := make(map[string]struct{})
	var vocab []string
	for _, row := range rows {
		t := row.Treatment
		if t == "" {
			continue
		}
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		vocab = append(vocab, t)
	}
	sort.Strings(vocab)
	return vocab
}

// ScoreForRate maps a 1-10 patient rating onto the ordinal change score.
func ScoreForRate(rate common.Rating) int {
	switch {
	case rate <= 2:
		return -2
	case rate <= 4:
		return -1
	case rate == 5:
		return 0
	case rate <= 7:
		return 1
	default:
		return 2
	}
}

func (d *detectorImpl) Analyze(ctx context.Context, rows []review.Annotated) ([]RowResult, error) {
	vocab := BuildVocabulary(rows)
	results := make([]RowResult, 0, len(rows))

	for _, row := range rows {
		if err := ctx.Err(); err != nil {
			return nil, errors.Wrap(err, errors.CodeInternal, "treatment analysis aborted")
		}
		if !row.HasTreatment() {
			continue
		}

		mentions := d.mentions(row.Comment, vocab)
		delta := subtract(mentions, row.Treatment)

		result := RowResult{
			TextIndex: row.TextIndex,
			Treatment: row.Treatment,
			Mentions:  mentions,
			Delta:     delta,
		}
		if len(delta) > 0 {
			score := ScoreForRate(row.Rate)
			result.Score = &score
		}
		results = append(results, result)
	}

	d.logger.Debug("treatment analysis finished",
		logging.Int("rows", len(results)),
		logging.Int("vocabulary", len(vocab)),
	)
	return results, nil
}

func (d *detectorImpl) Detect(ctx context.Context, runID common.RunID, rows []review.Annotated) ([]review.TreatmentChangeEvent, error) {
	results, err := d.Analyze(ctx, rows)
	if err != nil {
		return nil, err
	}

	var events []review.TreatmentChangeEvent
	now := time.Now().UTC()
	for _, r := range results {
		if r.Score == nil {
			continue
		}
		for _, previous := range r.Delta {
			events = append(events, review.TreatmentChangeEvent{
				ID:                uuid.NewString(),
				TextIndex:         r.TextIndex,
				PreviousTreatment: previous,
				Score:             *r.Score,
				RunID:             runID,
				CreatedAt:         now,
			})
		}
	}
	return events, nil
}

// mentions scans the raw comment's whitespace-split words against every
// vocabulary treatment.  A treatment counts at most once per comment: the
// scan of its words stops at the first hit.
func (d *detectorImpl) mentions(comment string, vocab []string) []string {
	words := strings.Fields(comment)
	if len(words) == 0 {
		return nil
	}
	var found []string
	for _, treatment := range vocab {
		for _, word := range words {
			if Ratio(word, treatment) >= d.threshold {
				found = append(found, treatment)
				break
			}
		}
	}
	return found
}

func subtract(mentions []string, own string) []string {
	var delta []string
	for _, m := range mentions {
		if m != own {
			delta = append(delta, m)
		}
	}
	return delta
}
