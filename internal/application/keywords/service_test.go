package keywords

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medlens/reviewsignal/internal/domain/review"
	"github.com/medlens/reviewsignal/pkg/types/common"
)

func annotated(idx, treatment, disease, comment string) review.Annotated {
	return review.Annotated{
		Review:     review.Review{TextIndex: common.TextIndex(idx), Comment: comment},
		Descriptor: review.Descriptor{Treatment: treatment, Disease: disease},
	}
}

func TestService_Enrich(t *testing.T) {
	svc := NewService(nil, nil, Config{MaxWords: 2, ExclusionTerms: []string{"uc"}}, nil)

	rows, err := svc.Enrich(context.Background(), []review.Annotated{
		annotated("r1", "Humira", "Crohn's Disease",
			"Severe cramps and rectal bleeding. Humira helped."),
	})
	require.NoError(t, err)
	require.Len(t, rows, 1)

	keywords := rows[0].Keywords
	assert.Contains(t, keywords, "severe cramp")
	assert.Contains(t, keywords, "rectal bleeding")
	for _, kw := range keywords {
		assert.NotContains(t, kw, "humira")
	}
}

func TestService_Enrich_PhraseDroppedWhenAnyWordExcluded(t *testing.T) {
	svc := NewService(nil, nil, Config{MaxWords: 2}, nil)

	rows, err := svc.Enrich(context.Background(), []review.Annotated{
		annotated("r1", "Humira", "", "humira cramps, constant pain"),
	})
	require.NoError(t, err)

	// "humira cramps" carries the excluded treatment name, so the whole
	// phrase goes, not just the word.
	assert.Equal(t, []string{"constant pain"}, rows[0].Keywords)
}

func TestService_Enrich_EmptyComment(t *testing.T) {
	svc := NewService(nil, nil, Config{}, nil)
	rows, err := svc.Enrich(context.Background(), []review.Annotated{
		annotated("r1", "Humira", "", ""),
	})
	require.NoError(t, err)
	assert.Empty(t, rows[0].Keywords)
}

func TestService_WordCloud(t *testing.T) {
	svc := NewService(nil, nil, Config{}, nil)

	rows := []review.Annotated{
		{Keywords: []string{"rectal bleeding", "severe cramp"}},
		{Keywords: []string{"rectal bleeding"}},
	}
	cloud := svc.WordCloud(rows)

	require.NotEmpty(t, cloud)
	assert.Equal(t, WordCount{Word: "bleeding", Count: 2}, cloud[0])
	assert.Equal(t, WordCount{Word: "rectal", Count: 2}, cloud[1])
	assert.Contains(t, cloud, WordCount{Word: "cramp", Count: 1})
	assert.Contains(t, cloud, WordCount{Word: "severe", Count: 1})
}

func TestService_Enrich_CanceledContext(t *testing.T) {
	svc := NewService(nil, nil, Config{}, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := svc.Enrich(ctx, []review.Annotated{annotated("r1", "", "", "x")})
	assert.Error(t, err)
}
