package repositories

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/medlens/reviewsignal/internal/infrastructure/monitoring/logging"
	"github.com/medlens/reviewsignal/pkg/errors"
	"github.com/medlens/reviewsignal/pkg/types/common"
)

// RunRepository is the PostgreSQL implementation of review.RunRepository.
type RunRepository struct {
	db     DB
	logger logging.Logger
}

// NewRunRepository constructs a ready-to-use RunRepository.
func NewRunRepository(db DB, logger logging.Logger) *RunRepository {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &RunRepository{db: db, logger: logger}
}

func (r *RunRepository) CreateRun(ctx context.Context, run *common.Run) error {
	r.logger.Debug("RunRepository.CreateRun", logging.String("run_id", run.ID.String()))

	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now().UTC()
	}
	if run.Status == "" {
		run.Status = common.RunStatusPending
	}
	_, err := r.db.Exec(ctx, `
		INSERT INTO runs (id, source, row_count, status, error, started_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		run.ID.String(), run.Source, run.RowCount, string(run.Status), run.Error, run.StartedAt,
	)
	if err != nil {
		return errors.Wrap(err, errors.CodeDatabaseError, "insert run")
	}
	return nil
}

func (r *RunRepository) FinishRun(ctx context.Context, id common.RunID, status common.RunStatus, rowCount int, errMsg string) error {
	r.logger.Debug("RunRepository.FinishRun",
		logging.String("run_id", id.String()),
		logging.String("status", string(status)),
	)

	tag, err := r.db.Exec(ctx, `
		UPDATE runs
		SET status = $2, row_count = $3, error = $4, finished_at = $5
		WHERE id = $1`,
		id.String(), string(status), rowCount, errMsg, time.Now().UTC(),
	)
	if err != nil {
		return errors.Wrap(err, errors.CodeDatabaseError, "update run")
	}
	if tag.RowsAffected() == 0 {
		return errors.Newf(errors.CodeNotFound, "run %q not found", id)
	}
	return nil
}

func (r *RunRepository) GetRun(ctx context.Context, id common.RunID) (*common.Run, error) {
	row := r.db.QueryRow(ctx, `
		SELECT id, source, row_count, status, error, started_at, finished_at
		FROM runs WHERE id = $1`, id.String())

	var (
		run      common.Run
		runID    string
		status   string
		finished *time.Time
	)
	err := row.Scan(&runID, &run.Source, &run.RowCount, &status, &run.Error,
		&run.StartedAt, &finished)
	if err == pgx.ErrNoRows {
		return nil, errors.Newf(errors.CodeNotFound, "run %q not found", id)
	}
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeDatabaseError, "query run")
	}
	run.ID = common.RunID(runID)
	run.Status = common.RunStatus(status)
	run.FinishedAt = finished
	return &run, nil
}
