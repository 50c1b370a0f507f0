package repositories

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/medlens/reviewsignal/internal/domain/review"
	"github.com/medlens/reviewsignal/internal/infrastructure/monitoring/logging"
	"github.com/medlens/reviewsignal/pkg/errors"
	"github.com/medlens/reviewsignal/pkg/types/common"
)

// ReviewRepository is the PostgreSQL implementation of review.Repository.
type ReviewRepository struct {
	db     DB
	logger logging.Logger
}

// NewReviewRepository constructs a ready-to-use ReviewRepository.
func NewReviewRepository(db DB, logger logging.Logger) *ReviewRepository {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &ReviewRepository{db: db, logger: logger}
}

// SaveAnnotated bulk-inserts an annotated cohort via the COPY protocol.
// Re-running a run first clears its rows, so the copy never conflicts.
func (r *ReviewRepository) SaveAnnotated(ctx context.Context, reviews []review.Annotated) error {
	if len(reviews) == 0 {
		return nil
	}
	r.logger.Debug("ReviewRepository.SaveAnnotated", logging.Int("count", len(reviews)))

	runID := reviews[0].RunID
	if _, err := r.db.Exec(ctx,
		`DELETE FROM reviews WHERE run_id = $1`, runID.String()); err != nil {
		return errors.Wrap(err, errors.CodeDatabaseError, "clear previous run rows")
	}

	columns := []string{
		"text_index", "run_id", "medication", "comment", "rate",
		"treatment", "disease", "antibody", "treatment_type",
		"tokens", "keywords", "created_at",
	}
	now := time.Now().UTC()
	rows := make([][]interface{}, 0, len(reviews))
	for _, a := range reviews {
		rows = append(rows, []interface{}{
			a.TextIndex.String(), a.RunID.String(), a.Medication, a.Comment, int(a.Rate),
			a.Treatment, a.Disease, a.Antibody, string(a.TreatmentType),
			a.Tokens, a.Keywords, now,
		})
	}

	if _, err := r.db.CopyFrom(ctx,
		pgx.Identifier{"reviews"}, columns, pgx.CopyFromRows(rows)); err != nil {
		r.logger.Error("ReviewRepository.SaveAnnotated failed", logging.Err(err))
		return errors.Wrap(err, errors.CodeDatabaseError, "bulk insert annotated reviews")
	}
	return nil
}

// FindByTextIndex returns the latest annotated version of a review.
func (r *ReviewRepository) FindByTextIndex(ctx context.Context, idx common.TextIndex) (*review.Annotated, error) {
	r.logger.Debug("ReviewRepository.FindByTextIndex", logging.String("text_index", idx.String()))

	row := r.db.QueryRow(ctx, `
		SELECT text_index, run_id, medication, comment, rate,
		       treatment, disease, antibody, treatment_type, tokens, keywords
		FROM reviews
		WHERE text_index = $1
		ORDER BY created_at DESC
		LIMIT 1`, idx.String())

	var (
		a             review.Annotated
		textIndex     string
		runID         string
		treatmentType string
		rate          int
	)
	err := row.Scan(&textIndex, &runID, &a.Medication, &a.Comment, &rate,
		&a.Treatment, &a.Disease, &a.Antibody, &treatmentType, &a.Tokens, &a.Keywords)
	if err == pgx.ErrNoRows {
		return nil, errors.Newf(errors.CodeReviewNotFound, "review %q not found", idx)
	}
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeDatabaseError, "query review by text index")
	}

	a.TextIndex = common.TextIndex(textIndex)
	a.RunID = common.RunID(runID)
	a.Rate = common.Rating(rate)
	a.TreatmentType = review.TreatmentType(treatmentType)
	return &a, nil
}
