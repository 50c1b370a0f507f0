package preprocess

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medlens/reviewsignal/internal/domain/review"
	"github.com/medlens/reviewsignal/internal/domain/text"
	"github.com/medlens/reviewsignal/pkg/types/common"
)

func testRows() []review.Review {
	return []review.Review{
		{
			TextIndex:  "r1",
			Medication: "Humira (adalimumab) for Crohn's Disease, Maintenance",
			Comment:    "Humira stopped the rectal bleeding but the cramps remained.",
			Rate:       7,
		},
		{
			TextIndex:  "r2",
			Medication: "Stelara for Ulcerative Colitis",
			Comment:    "Switched from Humira, no side effects so far.",
			Rate:       9,
		},
		{
			TextIndex:  "r3",
			Medication: "Metformin",
			Comment:    "Helps with blood sugar.",
			Rate:       8,
		},
	}
}

func TestService_Annotate(t *testing.T) {
	svc := NewService(nil, Config{ExclusionTerms: []string{"uc"}}, nil)

	annotated, ok := svc.Annotate(testRows()[0])
	require.True(t, ok)

	assert.Equal(t, "Humira", annotated.Treatment)
	assert.Equal(t, "Crohn's Disease", annotated.Disease)
	assert.Equal(t, "adalimumab", annotated.Antibody)
	assert.Equal(t, review.TreatmentTypeMaintenance, annotated.TreatmentType)

	// The row's own treatment never survives into its token stream.
	assert.NotContains(t, annotated.Tokens, "humira")
	assert.Contains(t, annotated.Tokens, "bleeding")
	assert.Contains(t, annotated.Tokens, "cramp")
}

func TestService_Annotate_FilteredOut(t *testing.T) {
	svc := NewService(nil, Config{Diseases: []string{"Crohn's Disease"}}, nil)

	_, ok := svc.Annotate(testRows()[1])
	assert.False(t, ok)
}

func TestService_Process_KeepsInputOrder(t *testing.T) {
	svc := NewService(nil, Config{Workers: 4}, nil)

	rows := make([]review.Review, 50)
	for i := range rows {
		rows[i] = review.Review{
			TextIndex:  common.TextIndex(fmt.Sprintf("row-%03d", i)),
			Medication: "Humira for Crohn's Disease",
			Comment:    fmt.Sprintf("comment number %d with bleeding", i),
			Rate:       5,
		}
	}

	got, err := svc.Process(context.Background(), rows)
	require.NoError(t, err)
	require.Len(t, got, len(rows))
	for i, a := range got {
		assert.Equal(t, rows[i].TextIndex, a.TextIndex)
	}
}

func TestService_Process_MatchesSequential(t *testing.T) {
	cfg := Config{
		Diseases:       []string{"Crohn's Disease"},
		ExclusionTerms: []string{"uc"},
	}
	parallel := NewService(nil, Config{
		Diseases:       cfg.Diseases,
		ExclusionTerms: cfg.ExclusionTerms,
		Workers:        8,
	}, nil)
	sequential := NewService(nil, Config{
		Diseases:       cfg.Diseases,
		ExclusionTerms: cfg.ExclusionTerms,
		Workers:        1,
	}, nil)

	rows := testRows()
	a, err := parallel.Process(context.Background(), rows)
	require.NoError(t, err)
	b, err := sequential.Process(context.Background(), rows)
	require.NoError(t, err)
	assert.Equal(t, b, a)
}

func TestService_Process_Empty(t *testing.T) {
	svc := NewService(nil, Config{}, nil)
	got, err := svc.Process(context.Background(), nil)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestService_Process_CanceledContext(t *testing.T) {
	svc := NewService(nil, Config{Workers: 2}, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.Process(ctx, testRows())
	assert.Error(t, err)
}

func TestService_CustomNormalizer(t *testing.T) {
	n := text.NewNormalizer([]string{"the"}, text.IdentityLemmatizer{})
	svc := NewService(n, Config{}, nil)

	annotated, ok := svc.Annotate(review.Review{
		TextIndex:  "r9",
		Medication: "Humira for Crohn's Disease",
		Comment:    "The Side-Effects were awful!!",
		Rate:       3,
	})
	require.True(t, ok)
	assert.Equal(t, []string{"side", "effects", "were", "awful"}, annotated.Tokens)
}
