// Package dataset loads review rows from CSV batch files.
package dataset

import (
	"context"
	"encoding/csv"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/medlens/reviewsignal/internal/domain/review"
	"github.com/medlens/reviewsignal/internal/infrastructure/monitoring/logging"
	"github.com/medlens/reviewsignal/pkg/errors"
	"github.com/medlens/reviewsignal/pkg/types/common"
)

// Reader loads a batch of review rows from a source path.
type Reader interface {
	Read(ctx context.Context, path string) ([]review.Review, error)
}

// columnAliases maps each logical column to the header names accepted for it.
// Exported datasets are not consistent about header naming.
var columnAliases = map[string][]string{
	"text_index": {"text_index", "textindex", "uniqueid", "id"},
	"medication": {"medication", "drug", "drugname"},
	"comment":    {"comment", "review", "text"},
	"rate":       {"rate", "rating"},
}

type csvReader struct {
	logger logging.Logger
}

// NewCSVReader builds a Reader over local CSV files.
func NewCSVReader(logger logging.Logger) Reader {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &csvReader{logger: logger}
}

func (r *csvReader) Read(ctx context.Context, path string) ([]review.Review, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, errors.CodeDatasetError, "open dataset %s", path)
	}
	defer f.Close()
	return r.parse(ctx, f, path)
}

func (r *csvReader) parse(ctx context.Context, src io.Reader, path string) ([]review.Review, error) {
	cr := csv.NewReader(src)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, errors.Wrapf(err, errors.CodeDatasetError, "read header of %s", path)
	}
	cols, err := mapColumns(header)
	if err != nil {
		return nil, err
	}

	var (
		rows    []review.Review
		line    = 1
		skipped int
	)
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			r.logger.Warn("skipping malformed row",
				logging.String("path", path),
				logging.Int("line", line),
				logging.Err(err),
			)
			skipped++
			continue
		}

		row, err := buildRow(record, cols)
		if err != nil {
			r.logger.Warn("skipping invalid row",
				logging.String("path", path),
				logging.Int("line", line),
				logging.Err(err),
			)
			skipped++
			continue
		}
		rows = append(rows, row)
	}

	r.logger.Info("dataset loaded",
		logging.String("path", path),
		logging.Int("rows", len(rows)),
		logging.Int("skipped", skipped),
	)
	return rows, nil
}

// mapColumns resolves logical columns to header indexes.  Matching is
// case-insensitive and ignores spaces and underscores.
func mapColumns(header []string) (map[string]int, error) {
	canon := func(s string) string {
		s = strings.ToLower(strings.TrimSpace(s))
		s = strings.ReplaceAll(s, "_", "")
		return strings.ReplaceAll(s, " ", "")
	}

	byName := make(map[string]int, len(header))
	for i, h := range header {
		byName[canon(h)] = i
	}

	cols := make(map[string]int, len(columnAliases))
	for logical, aliases := range columnAliases {
		found := false
		for _, alias := range aliases {
			if idx, ok := byName[canon(alias)]; ok {
				cols[logical] = idx
				found = true
				break
			}
		}
		if !found {
			return nil, errors.Newf(errors.CodeDatasetError, "dataset is missing a %q column", logical)
		}
	}
	return cols, nil
}

func buildRow(record []string, cols map[string]int) (review.Review, error) {
	field := func(name string) string {
		idx := cols[name]
		if idx >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[idx])
	}

	textIndex := field("text_index")
	if textIndex == "" {
		return review.Review{}, errors.New(errors.CodeMissingField, "row has no text_index")
	}
	rateRaw := field("rate")
	rate, err := strconv.Atoi(rateRaw)
	if err != nil {
		return review.Review{}, errors.Newf(errors.CodeValidation, "rate %q is not an integer", rateRaw)
	}
	if !common.Rating(rate).IsValid() {
		return review.Review{}, errors.Newf(errors.CodeValidation, "rate %d is outside the 1-10 scale", rate)
	}

	// An empty medication is kept: downstream annotation degrades the
	// descriptor fields to their empty values instead of losing the row.
	return review.Review{
		TextIndex:  common.TextIndex(textIndex),
		Medication: field("medication"),
		Comment:    field("comment"),
		Rate:       common.Rating(rate),
	}, nil
}
