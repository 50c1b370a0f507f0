// Package preprocess turns raw review rows into the filtered, annotated
// cohort every downstream stage works from: descriptor parsing, allow-list
// filtering, comment normalization, and per-row term exclusion.
package preprocess

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/medlens/reviewsignal/internal/domain/review"
	"github.com/medlens/reviewsignal/internal/domain/text"
	"github.com/medlens/reviewsignal/internal/infrastructure/monitoring/logging"
	"github.com/medlens/reviewsignal/pkg/errors"
)

// Service annotates and filters raw review rows.
type Service interface {
	// Process runs the full per-row pipeline over rows and returns the
	// surviving cohort in input order.
	Process(ctx context.Context, rows []review.Review) ([]review.Annotated, error)

	// Annotate processes a single row.  ok is false when the row falls
	// outside the configured allow-lists.
	Annotate(row review.Review) (annotated review.Annotated, ok bool)
}

// Config carries the preprocessing knobs taken from PipelineConfig.
type Config struct {
	Diseases       []string
	Antibodies     []string
	Treatments     []string
	ExclusionTerms []string
	Workers        int
}

type serviceImpl struct {
	normalizer *text.Normalizer
	filter     Filter
	fixed      []string
	workers    int
	logger     logging.Logger
}

// NewService builds the preprocessing service.  A nil normalizer defaults to
// the English production pipeline.
func NewService(normalizer *text.Normalizer, cfg Config, logger logging.Logger) Service {
	if normalizer == nil {
		normalizer = text.NewEnglishNormalizer()
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &serviceImpl{
		normalizer: normalizer,
		filter:     CohortFilter(cfg.Diseases, cfg.Antibodies, cfg.Treatments),
		fixed:      cfg.ExclusionTerms,
		workers:    workers,
		logger:     logger,
	}
}

func (s *serviceImpl) Annotate(row review.Review) (review.Annotated, bool) {
	desc := review.ParseMedication(row.Medication)
	if !s.filter(desc) {
		return review.Annotated{}, false
	}

	tokens := s.normalizer.Normalize(row.Comment)
	excl := text.NewExclusionSet(s.normalizer,
		[]string{desc.Treatment, desc.Disease, desc.Antibody}, s.fixed)

	return review.Annotated{
		Review:     row,
		Descriptor: desc,
		Tokens:     excl.FilterTokens(tokens),
	}, true
}

// Process fans rows out across a bounded worker pool.  Every row is a pure
// function of itself plus read-only configuration, so results land in a
// positional slice and the output order always matches the input order
// regardless of worker count.
func (s *serviceImpl) Process(ctx context.Context, rows []review.Review) ([]review.Annotated, error) {
	if len(rows) == 0 {
		return nil, nil
	}

	type slot struct {
		annotated review.Annotated
		ok        bool
	}
	slots := make([]slot, len(rows))

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i, row := range rows {
		i, row := i, row
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}
			annotated, ok := s.Annotate(row)
			slots[i] = slot{annotated: annotated, ok: ok}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "row preprocessing aborted")
	}

	out := make([]review.Annotated, 0, len(rows))
	for _, sl := range slots {
		if sl.ok {
			out = append(out, sl.annotated)
		}
	}
	s.logger.Debug("preprocessing finished",
		logging.Int("input_rows", len(rows)),
		logging.Int("kept_rows", len(out)),
	)
	return out, nil
}
