package repositories

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/medlens/reviewsignal/internal/domain/review"
	"github.com/medlens/reviewsignal/internal/infrastructure/monitoring/logging"
	"github.com/medlens/reviewsignal/pkg/errors"
	"github.com/medlens/reviewsignal/pkg/types/common"
)

const (
	defaultListLimit = 100
	maxListLimit     = 1000
)

// EventRepository persists marker and treatment-change events.  It
// implements both review.MarkerEventRepository and
// review.ChangeEventRepository.
type EventRepository struct {
	db     DB
	logger logging.Logger
}

// NewEventRepository constructs a ready-to-use EventRepository.
func NewEventRepository(db DB, logger logging.Logger) *EventRepository {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &EventRepository{db: db, logger: logger}
}

func (r *EventRepository) InsertMarkerEvents(ctx context.Context, events []review.MarkerEvent) error {
	if len(events) == 0 {
		return nil
	}
	r.logger.Debug("EventRepository.InsertMarkerEvents", logging.Int("count", len(events)))

	columns := []string{"id", "text_index", "marker", "topic", "disease", "run_id", "created_at"}
	rows := make([][]interface{}, 0, len(events))
	for _, e := range events {
		rows = append(rows, []interface{}{
			e.ID, e.TextIndex.String(), e.Marker, e.Topic, e.Disease,
			e.RunID.String(), e.CreatedAt,
		})
	}
	if _, err := r.db.CopyFrom(ctx,
		pgx.Identifier{"marker_events"}, columns, pgx.CopyFromRows(rows)); err != nil {
		return errors.Wrap(err, errors.CodeDatabaseError, "bulk insert marker events")
	}
	return nil
}

func (r *EventRepository) ListMarkerEvents(ctx context.Context, f review.MarkerEventFilter, p common.Pagination) ([]review.MarkerEvent, error) {
	p = p.Normalize(defaultListLimit, maxListLimit)

	var (
		conds []string
		args  []any
	)
	addCond := func(column, value string) {
		if value == "" {
			return
		}
		args = append(args, value)
		conds = append(conds, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	addCond("topic", f.Topic)
	addCond("disease", f.Disease)
	addCond("run_id", f.RunID.String())

	query := `SELECT id, text_index, marker, topic, disease, run_id, created_at
		FROM marker_events`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	args = append(args, p.Limit, p.Offset)
	query += fmt.Sprintf(" ORDER BY created_at, text_index, marker LIMIT $%d OFFSET $%d",
		len(args)-1, len(args))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeDatabaseError, "list marker events")
	}
	defer rows.Close()

	var out []review.MarkerEvent
	for rows.Next() {
		var (
			e         review.MarkerEvent
			textIndex string
			runID     string
		)
		if err := rows.Scan(&e.ID, &textIndex, &e.Marker, &e.Topic, &e.Disease,
			&runID, &e.CreatedAt); err != nil {
			return nil, errors.Wrap(err, errors.CodeDatabaseError, "scan marker event")
		}
		e.TextIndex = common.TextIndex(textIndex)
		e.RunID = common.RunID(runID)
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, errors.CodeDatabaseError, "iterate marker events")
	}
	return out, nil
}

func (r *EventRepository) InsertChangeEvents(ctx context.Context, events []review.TreatmentChangeEvent) error {
	if len(events) == 0 {
		return nil
	}
	r.logger.Debug("EventRepository.InsertChangeEvents", logging.Int("count", len(events)))

	columns := []string{"id", "text_index", "previous_treatment", "score", "run_id", "created_at"}
	rows := make([][]interface{}, 0, len(events))
	for _, e := range events {
		rows = append(rows, []interface{}{
			e.ID, e.TextIndex.String(), e.PreviousTreatment, e.Score,
			e.RunID.String(), e.CreatedAt,
		})
	}
	if _, err := r.db.CopyFrom(ctx,
		pgx.Identifier{"treatment_change_events"}, columns, pgx.CopyFromRows(rows)); err != nil {
		return errors.Wrap(err, errors.CodeDatabaseError, "bulk insert change events")
	}
	return nil
}

func (r *EventRepository) ListChangeEvents(ctx context.Context, f review.ChangeEventFilter, p common.Pagination) ([]review.TreatmentChangeEvent, error) {
	p = p.Normalize(defaultListLimit, maxListLimit)

	var (
		conds []string
		args  []any
	)
	if f.RunID != "" {
		args = append(args, f.RunID.String())
		conds = append(conds, fmt.Sprintf("run_id = $%d", len(args)))
	}
	if f.MinScore != nil {
		args = append(args, *f.MinScore)
		conds = append(conds, fmt.Sprintf("score >= $%d", len(args)))
	}
	if f.MaxScore != nil {
		args = append(args, *f.MaxScore)
		conds = append(conds, fmt.Sprintf("score <= $%d", len(args)))
	}

	query := `SELECT id, text_index, previous_treatment, score, run_id, created_at
		FROM treatment_change_events`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	args = append(args, p.Limit, p.Offset)
	query += fmt.Sprintf(" ORDER BY created_at, text_index, previous_treatment LIMIT $%d OFFSET $%d",
		len(args)-1, len(args))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeDatabaseError, "list change events")
	}
	defer rows.Close()

	var out []review.TreatmentChangeEvent
	for rows.Next() {
		var (
			e         review.TreatmentChangeEvent
			textIndex string
			runID     string
		)
		if err := rows.Scan(&e.ID, &textIndex, &e.PreviousTreatment, &e.Score,
			&runID, &e.CreatedAt); err != nil {
			return nil, errors.Wrap(err, errors.CodeDatabaseError, "scan change event")
		}
		e.TextIndex = common.TextIndex(textIndex)
		e.RunID = common.RunID(runID)
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, errors.CodeDatabaseError, "iterate change events")
	}
	return out, nil
}
