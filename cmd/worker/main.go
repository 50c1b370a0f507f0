// Command worker consumes run requests from the broker and executes the
// pipeline for each one.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/medlens/reviewsignal/internal/application/evolution"
	"github.com/medlens/reviewsignal/internal/application/keywords"
	"github.com/medlens/reviewsignal/internal/application/markers"
	"github.com/medlens/reviewsignal/internal/application/preprocess"
	"github.com/medlens/reviewsignal/internal/application/run"
	"github.com/medlens/reviewsignal/internal/config"
	"github.com/medlens/reviewsignal/internal/infrastructure/database/postgres"
	"github.com/medlens/reviewsignal/internal/infrastructure/database/postgres/repositories"
	redisinfra "github.com/medlens/reviewsignal/internal/infrastructure/database/redis"
	"github.com/medlens/reviewsignal/internal/infrastructure/dataset"
	kafkainfra "github.com/medlens/reviewsignal/internal/infrastructure/messaging/kafka"
	"github.com/medlens/reviewsignal/internal/infrastructure/monitoring/logging"
	"github.com/medlens/reviewsignal/internal/infrastructure/monitoring/prometheus"
)

func main() {
	configPath := flag.String("config", "", "config file path")
	migrate := flag.Bool("migrate", false, "apply pending schema migrations on startup")
	flag.Parse()

	if err := runWorker(*configPath, *migrate); err != nil {
		fmt.Fprintln(os.Stderr, "worker:", err)
		os.Exit(1)
	}
}

func runWorker(configPath string, migrate bool) error {
	var (
		cfg *config.Config
		err error
	)
	if configPath != "" {
		cfg, err = config.Load(configPath)
	} else {
		cfg, err = config.LoadFromEnv()
	}
	if err != nil {
		return err
	}

	logger, err := logging.NewLogger(logging.Config{
		Level:            cfg.Log.Level,
		Format:           cfg.Log.Format,
		OutputPaths:      cfg.Log.OutputPaths,
		ErrorOutputPaths: cfg.Log.ErrorOutputPaths,
	})
	if err != nil {
		return err
	}
	logger = logger.Named("worker")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if migrate {
		if err := postgres.Migrate(cfg.Database, logger); err != nil {
			return err
		}
	}
	pool, err := postgres.NewPool(ctx, cfg.Database, logger)
	if err != nil {
		return err
	}
	defer pool.Close()

	collector, err := prometheus.NewCollector(prometheus.CollectorConfig{
		Namespace:            "reviewsignal",
		Subsystem:            "worker",
		EnableProcessMetrics: true,
		EnableGoMetrics:      true,
	}, logger)
	if err != nil {
		return err
	}
	metrics := prometheus.NewMetrics(collector, logger)

	producer, err := kafkainfra.NewProducer(cfg.Kafka, "worker", logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := producer.Close(); err != nil {
			logger.Warn("producer close failed", logging.Err(err))
		}
	}()

	deps := run.Deps{
		Reader: dataset.NewCSVReader(logger),
		Preprocess: preprocess.NewService(nil, preprocess.Config{
			Diseases:       cfg.Pipeline.Diseases,
			Antibodies:     cfg.Pipeline.Antibodies,
			Treatments:     cfg.Pipeline.Treatments,
			ExclusionTerms: cfg.Pipeline.ExclusionTerms,
			Workers:        cfg.Pipeline.Workers,
		}, logger),
		Keywords: keywords.NewService(nil, nil, keywords.Config{
			MaxWords:       cfg.Pipeline.KeywordMaxWords,
			ExclusionTerms: cfg.Pipeline.ExclusionTerms,
		}, logger),
		Markers:      markers.NewEngine(nil, nil, topicsFromConfig(cfg.Pipeline.Topics), logger),
		Evolution:    evolution.NewDetector(cfg.Pipeline.FuzzyThreshold, logger),
		Reviews:      repositories.NewReviewRepository(pool, logger),
		MarkerEvents: repositories.NewEventRepository(pool, logger),
		ChangeEvents: repositories.NewEventRepository(pool, logger),
		Runs:         repositories.NewRunRepository(pool, logger),
		Producer:     producer,
		Metrics:      metrics,
		Logger:       logger,
	}

	if cfg.Redis.Addr != "" {
		rdb, err := redisinfra.NewClient(ctx, cfg.Redis, logger)
		if err != nil {
			return err
		}
		defer rdb.Close()
		deps.Cache = redisinfra.NewCache(rdb, cfg.Redis.DefaultTTL, logger)
	}

	runService, err := run.NewService(deps)
	if err != nil {
		return err
	}

	consumer, err := kafkainfra.NewConsumer(cfg.Kafka, kafkainfra.TopicRunRequests, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := consumer.Close(); err != nil {
			logger.Warn("consumer close failed", logging.Err(err))
		}
	}()

	handler := func(ctx context.Context, envelope *kafkainfra.EventEnvelope) error {
		if envelope.Type != kafkainfra.EventTypeRunRequested {
			logger.Warn("unexpected event type", logging.String("type", envelope.Type))
			return nil
		}
		var payload kafkainfra.RunRequestPayload
		if err := envelope.DecodePayload(&payload); err != nil {
			logger.Warn("undecodable run request", logging.Err(err))
			return nil
		}
		metrics.MessagesConsumed.WithLabelValues(kafkainfra.TopicRunRequests).Inc()

		result, err := runService.Execute(ctx, payload.Source)
		if err != nil {
			// The run record already carries the failure; committing
			// avoids replaying a deterministic failure forever.
			logger.Error("pipeline run failed",
				logging.String("source", payload.Source),
				logging.Err(err),
			)
			return nil
		}
		logger.Info("pipeline run completed",
			logging.String("run_id", result.Run.ID.String()),
			logging.Int("rows_kept", result.RowsKept),
		)
		return nil
	}

	logger.Info("worker consuming", logging.String("topic", kafkainfra.TopicRunRequests))
	if err := consumer.Run(ctx, handler); err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}

func topicsFromConfig(topics []config.TopicConfig) []markers.Topic {
	out := make([]markers.Topic, 0, len(topics))
	for _, t := range topics {
		out = append(out, markers.Topic{Name: t.Name, Disease: t.Disease, Markers: t.Markers})
	}
	return out
}
