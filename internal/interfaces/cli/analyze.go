package cli

import (
	"github.com/spf13/cobra"

	"github.com/medlens/reviewsignal/internal/application/evolution"
	"github.com/medlens/reviewsignal/internal/application/keywords"
	"github.com/medlens/reviewsignal/internal/application/markers"
	"github.com/medlens/reviewsignal/internal/application/preprocess"
	"github.com/medlens/reviewsignal/internal/config"
	"github.com/medlens/reviewsignal/internal/domain/review"
	"github.com/medlens/reviewsignal/internal/infrastructure/dataset"
	"github.com/medlens/reviewsignal/pkg/errors"
	"github.com/medlens/reviewsignal/pkg/types/common"
)

// loadCohort reads the CSV and runs preprocessing, the shared front half of
// every analysis command.
func loadCohort(cmd *cobra.Command, inputPath string) ([]review.Annotated, error) {
	cliCtx := GetCLIContext(cmd)
	cfg := cliCtx.Config

	path := inputPath
	if path == "" {
		path = cfg.Pipeline.InputPath
	}
	if path == "" {
		return nil, errors.New(errors.CodeConfiguration,
			"no input: pass a CSV path or set pipeline.input_path")
	}

	rows, err := dataset.NewCSVReader(cliCtx.Logger).Read(cmd.Context(), path)
	if err != nil {
		return nil, err
	}

	svc := preprocess.NewService(nil, preprocess.Config{
		Diseases:       cfg.Pipeline.Diseases,
		Antibodies:     cfg.Pipeline.Antibodies,
		Treatments:     cfg.Pipeline.Treatments,
		ExclusionTerms: cfg.Pipeline.ExclusionTerms,
		Workers:        cfg.Pipeline.Workers,
	}, cliCtx.Logger)
	return svc.Process(cmd.Context(), rows)
}

func topicsFromConfig(topics []config.TopicConfig) []markers.Topic {
	out := make([]markers.Topic, 0, len(topics))
	for _, t := range topics {
		out = append(out, markers.Topic{Name: t.Name, Disease: t.Disease, Markers: t.Markers})
	}
	return out
}

// NewMarkersCmd scans a CSV for disease-marker mentions and prints the
// events as JSON, without touching any backing store.
func NewMarkersCmd() *cobra.Command {
	var inputPath string

	cmd := &cobra.Command{
		Use:   "markers [csv]",
		Short: "Detect disease-marker mentions in a review CSV",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				inputPath = args[0]
			}
			cliCtx := GetCLIContext(cmd)
			if err := cliCtx.Config.Pipeline.Validate(); err != nil {
				return err
			}

			cohort, err := loadCohort(cmd, inputPath)
			if err != nil {
				return err
			}

			engine := markers.NewEngine(nil, nil,
				topicsFromConfig(cliCtx.Config.Pipeline.Topics), cliCtx.Logger)
			events, err := engine.Detect(cmd.Context(), common.NewRunID(), cohort)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), events)
		},
	}

	cmd.Flags().StringVarP(&inputPath, "input", "i", "", "review CSV path")
	return cmd
}

// NewEvolutionCmd runs the fuzzy treatment-change analysis and prints one
// result per treatment-bearing row.
func NewEvolutionCmd() *cobra.Command {
	var inputPath string

	cmd := &cobra.Command{
		Use:   "evolution [csv]",
		Short: "Detect treatment-change signals in a review CSV",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				inputPath = args[0]
			}
			cliCtx := GetCLIContext(cmd)
			if err := cliCtx.Config.Pipeline.Validate(); err != nil {
				return err
			}

			cohort, err := loadCohort(cmd, inputPath)
			if err != nil {
				return err
			}

			detector := evolution.NewDetector(cliCtx.Config.Pipeline.FuzzyThreshold, cliCtx.Logger)
			results, err := detector.Analyze(cmd.Context(), cohort)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), results)
		},
	}

	cmd.Flags().StringVarP(&inputPath, "input", "i", "", "review CSV path")
	return cmd
}

// NewKeywordsCmd extracts keyword phrases and prints the word-frequency
// table used for word clouds.
func NewKeywordsCmd() *cobra.Command {
	var (
		inputPath string
		top       int
	)

	cmd := &cobra.Command{
		Use:   "keywords [csv]",
		Short: "Extract keyword phrases and word frequencies from a review CSV",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				inputPath = args[0]
			}
			cliCtx := GetCLIContext(cmd)
			if err := cliCtx.Config.Pipeline.Validate(); err != nil {
				return err
			}

			cohort, err := loadCohort(cmd, inputPath)
			if err != nil {
				return err
			}

			svc := keywords.NewService(nil, nil, keywords.Config{
				MaxWords:       cliCtx.Config.Pipeline.KeywordMaxWords,
				ExclusionTerms: cliCtx.Config.Pipeline.ExclusionTerms,
			}, cliCtx.Logger)

			enriched, err := svc.Enrich(cmd.Context(), cohort)
			if err != nil {
				return err
			}
			counts := svc.WordCloud(enriched)
			if top > 0 && len(counts) > top {
				counts = counts[:top]
			}
			return printJSON(cmd.OutOrStdout(), counts)
		},
	}

	cmd.Flags().StringVarP(&inputPath, "input", "i", "", "review CSV path")
	cmd.Flags().IntVar(&top, "top", 0, "limit output to the N most frequent words")
	return cmd
}
