// Command apiserver exposes the review-signal query API: annotated reviews,
// marker events, treatment-change events, run records, and asynchronous run
// triggering via the broker.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/medlens/reviewsignal/internal/config"
	"github.com/medlens/reviewsignal/internal/infrastructure/database/postgres"
	"github.com/medlens/reviewsignal/internal/infrastructure/database/postgres/repositories"
	kafkainfra "github.com/medlens/reviewsignal/internal/infrastructure/messaging/kafka"
	"github.com/medlens/reviewsignal/internal/infrastructure/monitoring/logging"
	"github.com/medlens/reviewsignal/internal/infrastructure/monitoring/prometheus"
	httpiface "github.com/medlens/reviewsignal/internal/interfaces/http"
	"github.com/medlens/reviewsignal/internal/interfaces/http/handlers"
)

func main() {
	configPath := flag.String("config", "", "config file path")
	flag.Parse()

	if err := run(*configPath); err != nil {
		fmt.Fprintln(os.Stderr, "apiserver:", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
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
	logger = logger.Named("apiserver")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := postgres.NewPool(ctx, cfg.Database, logger)
	if err != nil {
		return err
	}
	defer pool.Close()

	collector, err := prometheus.NewCollector(prometheus.CollectorConfig{
		Namespace:            "reviewsignal",
		Subsystem:            "apiserver",
		EnableProcessMetrics: true,
		EnableGoMetrics:      true,
	}, logger)
	if err != nil {
		return err
	}

	reviews := repositories.NewReviewRepository(pool, logger)
	events := repositories.NewEventRepository(pool, logger)
	runs := repositories.NewRunRepository(pool, logger)

	var requester handlers.RunRequester
	if len(cfg.Kafka.Brokers) > 0 {
		producer, err := kafkainfra.NewProducer(cfg.Kafka, "apiserver", logger)
		if err != nil {
			return err
		}
		defer func() {
			if err := producer.Close(); err != nil {
				logger.Warn("producer close failed", logging.Err(err))
			}
		}()
		requester = runRequester{producer: producer}
	}

	checks := map[string]handlers.HealthCheck{
		"postgres": func(ctx context.Context) error { return pool.Ping(ctx) },
	}

	router := httpiface.NewRouter(httpiface.RouterConfig{
		ReviewHandler: handlers.NewReviewHandler(reviews, logger),
		EventHandler:  handlers.NewEventHandler(events, events, logger),
		RunHandler:    handlers.NewRunHandler(requester, runs, logger),
		HealthHandler: handlers.NewHealthHandler(checks, logger),
		Metrics:       collector,
		Logger:        logger,
		Mode:          cfg.Server.Mode,
	})

	server := httpiface.NewServer(cfg.Server, router, logger)

	errCh := make(chan error, 1)
	go func() { errCh <- server.Start() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	return server.Stop(context.Background())
}

// runRequester publishes run requests for the worker.
type runRequester struct {
	producer *kafkainfra.Producer
}

func (r runRequester) RequestRun(ctx context.Context, source string) error {
	payload := kafkainfra.RunRequestPayload{Source: source}
	return r.producer.Publish(ctx, kafkainfra.TopicRunRequests, kafkainfra.EventTypeRunRequested, payload)
}
