package evolution

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medlens/reviewsignal/internal/domain/review"
	"github.com/medlens/reviewsignal/pkg/types/common"
)

func row(idx, treatment, comment string, rate common.Rating) review.Annotated {
	return review.Annotated{
		Review:     review.Review{TextIndex: common.TextIndex(idx), Comment: comment, Rate: rate},
		Descriptor: review.Descriptor{Treatment: treatment},
	}
}

func TestBuildVocabulary(t *testing.T) {
	rows := []review.Annotated{
		row("r1", "Humira", "", 5),
		row("r2", "Stelara", "", 5),
		row("r3", "Humira", "", 5),
		row("r4", "", "", 5),
	}
	assert.Equal(t, []string{"Humira", "Stelara"}, BuildVocabulary(rows))
	assert.Empty(t, BuildVocabulary(nil))
}

func TestScoreForRate(t *testing.T) {
	expected := map[common.Rating]int{
		1: -2, 2: -2,
		3: -1, 4: -1,
		5: 0,
		6: 1, 7: 1,
		8: 2, 9: 2, 10: 2,
	}
	for rate, want := range expected {
		assert.Equal(t, want, ScoreForRate(rate), "rate %d", rate)
	}
}

func TestDetector_OwnTreatmentOnly_NilScore(t *testing.T) {
	d := NewDetector(80, nil)

	// A typo of the patient's own treatment is still only the own
	// treatment: the delta stays empty and no score is assigned.
	results, err := d.Analyze(context.Background(), []review.Annotated{
		row("r1", "Humira", "humera worked wonders for me", 9),
	})
	require.NoError(t, err)
	require.Len(t, results, 1)

	assert.Equal(t, []string{"Humira"}, results[0].Mentions)
	assert.Empty(t, results[0].Delta)
	assert.Nil(t, results[0].Score)
}

func TestDetector_DeltaScoresByRate(t *testing.T) {
	d := NewDetector(80, nil)

	results, err := d.Analyze(context.Background(), []review.Annotated{
		row("r1", "Humira", "switched after remicade failed me", 2),
		row("r2", "Remicade", "still on it", 2),
	})
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, []string{"Remicade"}, results[0].Delta)
	require.NotNil(t, results[0].Score)
	assert.Equal(t, -2, *results[0].Score)

	assert.Nil(t, results[1].Score)
}

func TestDetector_DeltaIsMentionsMinusOwn(t *testing.T) {
	d := NewDetector(80, nil)

	rows := []review.Annotated{
		row("r1", "Humira", "tried humira then remicade then stelara", 6),
		row("r2", "Remicade", "x", 6),
		row("r3", "Stelara", "x", 6),
	}
	results, err := d.Analyze(context.Background(), rows)
	require.NoError(t, err)

	r1 := results[0]
	assert.Equal(t, []string{"Humira", "Remicade", "Stelara"}, r1.Mentions)
	assert.Equal(t, []string{"Remicade", "Stelara"}, r1.Delta)
	require.NotNil(t, r1.Score)
	assert.Equal(t, 1, *r1.Score)
}

func TestDetector_RowsWithoutTreatmentExcluded(t *testing.T) {
	d := NewDetector(80, nil)

	results, err := d.Analyze(context.Background(), []review.Annotated{
		row("r1", "", "mentions humira constantly", 9),
		row("r2", "Humira", "fine", 9),
	})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, common.TextIndex("r2"), results[0].TextIndex)
}

func TestDetector_Detect_ExplodesDelta(t *testing.T) {
	d := NewDetector(80, nil)
	runID := common.NewRunID()

	rows := []review.Annotated{
		row("r1", "Humira", "remicade and stelara both failed before this", 8),
		row("r2", "Remicade", "x", 8),
		row("r3", "Stelara", "x", 8),
	}
	events, err := d.Detect(context.Background(), runID, rows)
	require.NoError(t, err)
	require.Len(t, events, 2)

	assert.Equal(t, "Remicade", events[0].PreviousTreatment)
	assert.Equal(t, "Stelara", events[1].PreviousTreatment)
	for _, e := range events {
		assert.Equal(t, common.TextIndex("r1"), e.TextIndex)
		assert.Equal(t, 2, e.Score)
		assert.Equal(t, runID, e.RunID)
		assert.NotEmpty(t, e.ID)
	}
}

func TestDetector_EmptyCommentNoMentions(t *testing.T) {
	d := NewDetector(80, nil)
	results, err := d.Analyze(context.Background(), []review.Annotated{
		row("r1", "Humira", "", 5),
	})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Empty(t, results[0].Mentions)
	assert.Nil(t, results[0].Score)
}

func TestDetector_CanceledContext(t *testing.T) {
	d := NewDetector(80, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := d.Analyze(ctx, []review.Annotated{row("r1", "Humira", "x", 5)})
	assert.Error(t, err)
}
