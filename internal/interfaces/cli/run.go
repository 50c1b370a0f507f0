package cli

import (
	"github.com/spf13/cobra"

	"github.com/medlens/reviewsignal/internal/application/evolution"
	"github.com/medlens/reviewsignal/internal/application/keywords"
	"github.com/medlens/reviewsignal/internal/application/markers"
	"github.com/medlens/reviewsignal/internal/application/preprocess"
	"github.com/medlens/reviewsignal/internal/application/run"
	"github.com/medlens/reviewsignal/internal/infrastructure/database/postgres"
	"github.com/medlens/reviewsignal/internal/infrastructure/database/postgres/repositories"
	redisinfra "github.com/medlens/reviewsignal/internal/infrastructure/database/redis"
	"github.com/medlens/reviewsignal/internal/infrastructure/dataset"
	kafkainfra "github.com/medlens/reviewsignal/internal/infrastructure/messaging/kafka"
	"github.com/medlens/reviewsignal/internal/infrastructure/monitoring/logging"
	"github.com/medlens/reviewsignal/pkg/errors"
)

// NewRunCmd executes the full pipeline over a CSV and persists the results.
func NewRunCmd() *cobra.Command {
	var (
		inputPath string
		migrate   bool
	)

	cmd := &cobra.Command{
		Use:   "run [csv]",
		Short: "Run the full pipeline over a review CSV and persist the results",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				inputPath = args[0]
			}
			cliCtx := GetCLIContext(cmd)
			cfg := cliCtx.Config
			logger := cliCtx.Logger

			if err := cfg.Pipeline.Validate(); err != nil {
				return err
			}
			source := inputPath
			if source == "" {
				source = cfg.Pipeline.InputPath
			}
			if source == "" {
				return errors.New(errors.CodeConfiguration,
					"no input: pass a CSV path or set pipeline.input_path")
			}

			ctx := cmd.Context()
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
				Markers: markers.NewEngine(nil, nil,
					topicsFromConfig(cfg.Pipeline.Topics), logger),
				Evolution:    evolution.NewDetector(cfg.Pipeline.FuzzyThreshold, logger),
				Reviews:      repositories.NewReviewRepository(pool, logger),
				MarkerEvents: repositories.NewEventRepository(pool, logger),
				ChangeEvents: repositories.NewEventRepository(pool, logger),
				Runs:         repositories.NewRunRepository(pool, logger),
				Logger:       logger,
			}

			// Cache, lock, and broker are optional for a local run.
			if cfg.Redis.Addr != "" {
				rdb, err := redisinfra.NewClient(ctx, cfg.Redis, logger)
				if err != nil {
					return err
				}
				defer rdb.Close()
				deps.Cache = redisinfra.NewCache(rdb, cfg.Redis.DefaultTTL, logger)
				deps.Lock = redisinfra.NewRunLock(rdb, source, 0)
			}
			if len(cfg.Kafka.Brokers) > 0 {
				producer, err := kafkainfra.NewProducer(cfg.Kafka, "cli", logger)
				if err != nil {
					return err
				}
				defer func() {
					if err := producer.Close(); err != nil {
						logger.Warn("producer close failed", logging.Err(err))
					}
				}()
				deps.Producer = producer
			}

			svc, err := run.NewService(deps)
			if err != nil {
				return err
			}
			result, err := svc.Execute(ctx, source)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), result)
		},
	}

	cmd.Flags().StringVarP(&inputPath, "input", "i", "", "review CSV path")
	cmd.Flags().BoolVar(&migrate, "migrate", false, "apply pending schema migrations first")
	return cmd
}

// NewMigrateCmd applies pending schema migrations.
func NewMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database schema migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cliCtx := GetCLIContext(cmd)
			return postgres.Migrate(cliCtx.Config.Database, cliCtx.Logger)
		},
	}
}
