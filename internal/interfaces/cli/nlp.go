package cli

import (
	"net/http"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/medlens/reviewsignal/internal/application/keywords"
	"github.com/medlens/reviewsignal/internal/domain/review"
	"github.com/medlens/reviewsignal/internal/intelligence/serving"
	"github.com/medlens/reviewsignal/pkg/errors"
)

// servingFromConfig builds the model-serving client from the loaded config.
func servingFromConfig(cliCtx *CLIContext) (serving.Client, error) {
	cfg := cliCtx.Config.Serving
	if cfg.BaseURL == "" {
		return nil, errors.New(errors.CodeConfiguration,
			"no serving endpoint: set serving.base_url")
	}
	return serving.NewClient(cfg.BaseURL,
		serving.WithHTTPClient(&http.Client{Timeout: cfg.Timeout}),
		serving.WithBatchSize(cfg.BatchSize),
		serving.WithRetry(cfg.Retries, cfg.RetryWait),
		serving.WithLogger(cliCtx.Logger),
	)
}

// cohortKeywords extracts the distinct post-exclusion keyword phrases of a
// cohort, in first-seen order.
func cohortKeywords(cmd *cobra.Command, cohort []review.Annotated) ([]string, error) {
	cliCtx := GetCLIContext(cmd)
	svc := keywords.NewService(nil, nil, keywords.Config{
		MaxWords:       cliCtx.Config.Pipeline.KeywordMaxWords,
		ExclusionTerms: cliCtx.Config.Pipeline.ExclusionTerms,
	}, cliCtx.Logger)

	enriched, err := svc.Enrich(cmd.Context(), cohort)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	var distinct []string
	for _, row := range enriched {
		for _, kw := range row.Keywords {
			if !seen[kw] {
				seen[kw] = true
				distinct = append(distinct, kw)
			}
		}
	}
	return distinct, nil
}

// NewRankCmd extracts the cohort's keyword phrases and ranks them against a
// topic by semantic similarity, via the model-serving endpoint.
func NewRankCmd() *cobra.Command {
	var (
		inputPath string
		topic     string
	)

	cmd := &cobra.Command{
		Use:   "rank [csv]",
		Short: "Rank extracted keywords against a topic by semantic similarity",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				inputPath = args[0]
			}
			if topic == "" {
				return errors.New(errors.CodeInvalidParam, "--topic is required")
			}
			cliCtx := GetCLIContext(cmd)
			if err := cliCtx.Config.Pipeline.Validate(); err != nil {
				return err
			}
			client, err := servingFromConfig(cliCtx)
			if err != nil {
				return err
			}

			cohort, err := loadCohort(cmd, inputPath)
			if err != nil {
				return err
			}
			phrases, err := cohortKeywords(cmd, cohort)
			if err != nil {
				return err
			}

			ranked, err := client.RankKeywords(cmd.Context(), topic, phrases)
			if err != nil {
				return err
			}
			sort.SliceStable(ranked, func(i, j int) bool {
				return ranked[i].Similarity > ranked[j].Similarity
			})
			return printJSON(cmd.OutOrStdout(), ranked)
		},
	}

	cmd.Flags().StringVarP(&inputPath, "input", "i", "", "review CSV path")
	cmd.Flags().StringVarP(&topic, "topic", "t", "", "topic to rank keywords against")
	return cmd
}

// NewSentimentCmd scores each row's post-exclusion text with the sentiment
// model and prints one verdict per row.
func NewSentimentCmd() *cobra.Command {
	var inputPath string

	cmd := &cobra.Command{
		Use:   "sentiment [csv]",
		Short: "Score review sentiment via the model-serving endpoint",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				inputPath = args[0]
			}
			cliCtx := GetCLIContext(cmd)
			if err := cliCtx.Config.Pipeline.Validate(); err != nil {
				return err
			}
			client, err := servingFromConfig(cliCtx)
			if err != nil {
				return err
			}

			cohort, err := loadCohort(cmd, inputPath)
			if err != nil {
				return err
			}

			texts := make([]string, len(cohort))
			for i, row := range cohort {
				texts[i] = strings.Join(row.Tokens, " ")
			}
			scores, err := client.Sentiment(cmd.Context(), texts)
			if err != nil {
				return err
			}
			if len(scores) != len(cohort) {
				return errors.Newf(errors.CodeServiceBadPayload,
					"sentiment returned %d scores for %d rows", len(scores), len(cohort))
			}

			type rowSentiment struct {
				TextIndex string  `json:"text_index"`
				Label     string  `json:"label"`
				Score     float64 `json:"score"`
			}
			out := make([]rowSentiment, len(cohort))
			for i, row := range cohort {
				out[i] = rowSentiment{
					TextIndex: row.TextIndex.String(),
					Label:     scores[i].Label,
					Score:     scores[i].Score,
				}
			}
			return printJSON(cmd.OutOrStdout(), out)
		},
	}

	cmd.Flags().StringVarP(&inputPath, "input", "i", "", "review CSV path")
	return cmd
}
