// Package run orchestrates a full pipeline execution: dataset load,
// preprocessing, keyword enrichment, marker detection, treatment-change
// detection, persistence, and event publication.
package run

import (
	"context"
	"time"

	"github.com/medlens/reviewsignal/internal/application/evolution"
	"github.com/medlens/reviewsignal/internal/application/keywords"
	"github.com/medlens/reviewsignal/internal/application/markers"
	"github.com/medlens/reviewsignal/internal/application/preprocess"
	"github.com/medlens/reviewsignal/internal/domain/review"
	"github.com/medlens/reviewsignal/internal/infrastructure/database/redis"
	"github.com/medlens/reviewsignal/internal/infrastructure/dataset"
	kafkainfra "github.com/medlens/reviewsignal/internal/infrastructure/messaging/kafka"
	"github.com/medlens/reviewsignal/internal/infrastructure/monitoring/logging"
	"github.com/medlens/reviewsignal/internal/infrastructure/monitoring/prometheus"
	"github.com/medlens/reviewsignal/pkg/errors"
	"github.com/medlens/reviewsignal/pkg/types/common"
)

// ════════════════════════════════════════════════════════════════════════════
// Service contract
// ════════════════════════════════════════════════════════════════════════════

// Result summarizes one pipeline execution.
type Result struct {
	Run          common.Run `json:"run"`
	RowsRead     int        `json:"rows_read"`
	RowsKept     int        `json:"rows_kept"`
	MarkerEvents int        `json:"marker_events"`
	ChangeEvents int        `json:"change_events"`
}

// Service executes pipeline runs end to end.
type Service interface {
	// Execute runs the full pipeline over the CSV at source.  The run is
	// recorded in the run repository regardless of outcome; on failure the
	// stored run carries the error message.
	Execute(ctx context.Context, source string) (*Result, error)
}

// Deps carries everything the orchestrator needs.  Cache, Lock, Producer,
// and Metrics are optional; the rest are required.
type Deps struct {
	Reader       dataset.Reader
	Preprocess   preprocess.Service
	Keywords     keywords.Service
	Markers      markers.Engine
	Evolution    evolution.Detector
	Reviews      review.Repository
	MarkerEvents review.MarkerEventRepository
	ChangeEvents review.ChangeEventRepository
	Runs         review.RunRepository

	Cache    *redis.Cache
	Lock     *redis.RunLock
	Producer *kafkainfra.Producer
	Metrics  *prometheus.Metrics
	Logger   logging.Logger
}

type serviceImpl struct {
	deps   Deps
	logger logging.Logger
}

// NewService validates the dependency set and builds the orchestrator.
func NewService(deps Deps) (Service, error) {
	switch {
	case deps.Reader == nil:
		return nil, errors.New(errors.CodeConfiguration, "run service requires a dataset reader")
	case deps.Preprocess == nil:
		return nil, errors.New(errors.CodeConfiguration, "run service requires the preprocess service")
	case deps.Keywords == nil:
		return nil, errors.New(errors.CodeConfiguration, "run service requires the keywords service")
	case deps.Markers == nil:
		return nil, errors.New(errors.CodeConfiguration, "run service requires the marker engine")
	case deps.Evolution == nil:
		return nil, errors.New(errors.CodeConfiguration, "run service requires the evolution detector")
	case deps.Reviews == nil || deps.MarkerEvents == nil || deps.ChangeEvents == nil || deps.Runs == nil:
		return nil, errors.New(errors.CodeConfiguration, "run service requires all repositories")
	}
	if deps.Logger == nil {
		deps.Logger = logging.NewNopLogger()
	}
	return &serviceImpl{deps: deps, logger: deps.Logger}, nil
}

// ════════════════════════════════════════════════════════════════════════════
// Execution
// ════════════════════════════════════════════════════════════════════════════

func (s *serviceImpl) Execute(ctx context.Context, source string) (*Result, error) {
	if s.deps.Lock != nil {
		if err := s.deps.Lock.Acquire(ctx); err != nil {
			return nil, err
		}
		defer func() {
			if err := s.deps.Lock.Release(context.WithoutCancel(ctx)); err != nil {
				s.logger.Warn("run lock release failed", logging.Err(err))
			}
		}()
	}

	run := common.Run{
		ID:        common.NewRunID(),
		Source:    source,
		Status:    common.RunStatusRunning,
		StartedAt: time.Now().UTC(),
	}
	if err := s.deps.Runs.CreateRun(ctx, &run); err != nil {
		return nil, err
	}

	s.logger.Info("pipeline run started",
		logging.String("run_id", run.ID.String()),
		logging.String("source", source),
	)
	if s.deps.Metrics != nil {
		s.deps.Metrics.RunsStarted.WithLabelValues(source).Inc()
		s.deps.Metrics.ActiveRuns.WithLabelValues().Inc()
		defer s.deps.Metrics.ActiveRuns.WithLabelValues().Dec()
	}
	start := time.Now()

	result, err := s.execute(ctx, run)
	if err != nil {
		s.finishRun(ctx, run.ID, common.RunStatusFailed, 0, err.Error())
		if s.deps.Metrics != nil {
			s.deps.Metrics.RunsFinished.WithLabelValues(string(common.RunStatusFailed)).Inc()
		}
		return nil, err
	}

	s.finishRun(ctx, run.ID, common.RunStatusFinished, result.RowsKept, "")
	result.Run.Status = common.RunStatusFinished
	result.Run.RowCount = result.RowsKept

	if s.deps.Metrics != nil {
		s.deps.Metrics.RunsFinished.WithLabelValues(string(common.RunStatusFinished)).Inc()
		s.deps.Metrics.RunDuration.WithLabelValues(source).Observe(time.Since(start).Seconds())
	}
	s.publishRunCompleted(ctx, result)

	s.logger.Info("pipeline run finished",
		logging.String("run_id", run.ID.String()),
		logging.Int("rows_read", result.RowsRead),
		logging.Int("rows_kept", result.RowsKept),
		logging.Int("marker_events", result.MarkerEvents),
		logging.Int("change_events", result.ChangeEvents),
		logging.Duration("elapsed", time.Since(start)),
	)
	return result, nil
}

func (s *serviceImpl) execute(ctx context.Context, run common.Run) (*Result, error) {
	rows, err := s.deps.Reader.Read(ctx, run.Source)
	if err != nil {
		return nil, err
	}
	if s.deps.Metrics != nil {
		s.deps.Metrics.RowsRead.WithLabelValues(run.Source).Add(float64(len(rows)))
	}

	annotated, err := s.stagePreprocess(ctx, rows)
	if err != nil {
		return nil, err
	}
	for i := range annotated {
		annotated[i].RunID = run.ID
	}

	annotated, err = s.stageKeywords(ctx, annotated)
	if err != nil {
		return nil, err
	}
	if err := s.deps.Reviews.SaveAnnotated(ctx, annotated); err != nil {
		return nil, err
	}
	if s.deps.Metrics != nil {
		s.deps.Metrics.RowsKept.WithLabelValues(run.Source).Add(float64(len(annotated)))
	}

	markerEvents, err := s.stageMarkers(ctx, run.ID, annotated)
	if err != nil {
		return nil, err
	}
	changeEvents, err := s.stageEvolution(ctx, run.ID, annotated)
	if err != nil {
		return nil, err
	}

	s.cacheVocabulary(ctx, run.ID, annotated)
	s.publishEvents(ctx, markerEvents, changeEvents)

	return &Result{
		Run:          run,
		RowsRead:     len(rows),
		RowsKept:     len(annotated),
		MarkerEvents: len(markerEvents),
		ChangeEvents: len(changeEvents),
	}, nil
}

// ════════════════════════════════════════════════════════════════════════════
// Stages
// ════════════════════════════════════════════════════════════════════════════

func (s *serviceImpl) stagePreprocess(ctx context.Context, rows []review.Review) ([]review.Annotated, error) {
	defer s.stageTimer("preprocess")()
	return s.deps.Preprocess.Process(ctx, rows)
}

func (s *serviceImpl) stageKeywords(ctx context.Context, rows []review.Annotated) ([]review.Annotated, error) {
	defer s.stageTimer("keywords")()
	return s.deps.Keywords.Enrich(ctx, rows)
}

func (s *serviceImpl) stageMarkers(ctx context.Context, runID common.RunID, rows []review.Annotated) ([]review.MarkerEvent, error) {
	defer s.stageTimer("markers")()

	events, err := s.deps.Markers.Detect(ctx, runID, rows)
	if err != nil {
		return nil, err
	}
	if err := s.deps.MarkerEvents.InsertMarkerEvents(ctx, events); err != nil {
		return nil, err
	}
	if s.deps.Metrics != nil {
		for _, e := range events {
			s.deps.Metrics.MarkerEvents.WithLabelValues(e.Topic).Inc()
		}
	}
	return events, nil
}

func (s *serviceImpl) stageEvolution(ctx context.Context, runID common.RunID, rows []review.Annotated) ([]review.TreatmentChangeEvent, error) {
	defer s.stageTimer("evolution")()

	events, err := s.deps.Evolution.Detect(ctx, runID, rows)
	if err != nil {
		return nil, err
	}
	if err := s.deps.ChangeEvents.InsertChangeEvents(ctx, events); err != nil {
		return nil, err
	}
	if s.deps.Metrics != nil {
		for _, e := range events {
			s.deps.Metrics.ChangeEvents.WithLabelValues(e.PreviousTreatment).Inc()
		}
	}
	return events, nil
}

func (s *serviceImpl) stageTimer(stage string) func() {
	if s.deps.Metrics == nil {
		return func() {}
	}
	timer := prometheus.NewTimer(s.deps.Metrics.StageDuration.WithLabelValues(stage))
	return timer.ObserveDuration
}

// ════════════════════════════════════════════════════════════════════════════
// Side channels: cache, broker, run record
// ════════════════════════════════════════════════════════════════════════════

// cacheVocabulary is best effort.  A cache outage must not fail a run whose
// results are already persisted.
func (s *serviceImpl) cacheVocabulary(ctx context.Context, runID common.RunID, rows []review.Annotated) {
	if s.deps.Cache == nil {
		return
	}
	vocab := evolution.BuildVocabulary(rows)
	if err := s.deps.Cache.SetVocabulary(ctx, runID, vocab); err != nil {
		s.logger.Warn("vocabulary cache write failed",
			logging.String("run_id", runID.String()),
			logging.Err(err),
		)
	}
}

func (s *serviceImpl) publishEvents(ctx context.Context, markerEvents []review.MarkerEvent, changeEvents []review.TreatmentChangeEvent) {
	if s.deps.Producer == nil {
		return
	}
	for _, e := range markerEvents {
		payload := kafkainfra.MarkerEventPayload{Event: e}
		if err := s.deps.Producer.Publish(ctx, kafkainfra.TopicMarkerEvents, kafkainfra.EventTypeMarkerEvent, payload); err != nil {
			s.logger.Warn("marker event publish failed", logging.String("event_id", e.ID), logging.Err(err))
		}
	}
	for _, e := range changeEvents {
		payload := kafkainfra.ChangeEventPayload{Event: e}
		if err := s.deps.Producer.Publish(ctx, kafkainfra.TopicChangeEvents, kafkainfra.EventTypeChangeEvent, payload); err != nil {
			s.logger.Warn("change event publish failed", logging.String("event_id", e.ID), logging.Err(err))
		}
	}
}

func (s *serviceImpl) publishRunCompleted(ctx context.Context, result *Result) {
	if s.deps.Producer == nil {
		return
	}
	payload := kafkainfra.RunCompletedPayload{
		RunID:        result.Run.ID,
		Status:       result.Run.Status,
		RowCount:     result.RowsKept,
		MarkerEvents: result.MarkerEvents,
		ChangeEvents: result.ChangeEvents,
	}
	if err := s.deps.Producer.Publish(ctx, kafkainfra.TopicRunCompleted, kafkainfra.EventTypeRunCompleted, payload); err != nil {
		s.logger.Warn("run completion publish failed",
			logging.String("run_id", result.Run.ID.String()),
			logging.Err(err),
		)
	}
}

// finishRun records the terminal state.  Uses a detached context so that a
// canceled run still gets its failure recorded.
func (s *serviceImpl) finishRun(ctx context.Context, id common.RunID, status common.RunStatus, rowCount int, errMsg string) {
	if err := s.deps.Runs.FinishRun(context.WithoutCancel(ctx), id, status, rowCount, errMsg); err != nil {
		s.logger.Error("run record update failed",
			logging.String("run_id", id.String()),
			logging.Err(err),
		)
	}
}
