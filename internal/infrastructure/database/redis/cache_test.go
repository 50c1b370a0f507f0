package redis

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medlens/reviewsignal/pkg/types/common"
)

func TestCache_Vocabulary(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	cache := NewCache(rdb, time.Hour, nil)
	ctx := context.Background()

	runID := common.RunID("11111111-2222-3333-4444-555555555555")
	vocab := []string{"Humira", "Remicade"}
	payload, err := json.Marshal(vocab)
	require.NoError(t, err)

	mock.ExpectSet(vocabularyKey+runID.String(), payload, time.Hour).SetVal("OK")
	require.NoError(t, cache.SetVocabulary(ctx, runID, vocab))

	mock.ExpectGet(vocabularyKey + runID.String()).SetVal(string(payload))
	got, ok, err := cache.GetVocabulary(ctx, runID)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, vocab, got)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCache_Vocabulary_Miss(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	cache := NewCache(rdb, time.Hour, nil)

	runID := common.RunID("missing")
	mock.ExpectGet(vocabularyKey + runID.String()).RedisNil()

	got, ok, err := cache.GetVocabulary(context.Background(), runID)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, got)
}

func TestCache_Run(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	cache := NewCache(rdb, time.Hour, nil)
	ctx := context.Background()

	run := &common.Run{
		ID:       common.NewRunID(),
		Source:   "testdata/reviews.csv",
		RowCount: 12,
		Status:   common.RunStatusFinished,
	}
	payload, err := json.Marshal(run)
	require.NoError(t, err)

	mock.ExpectSet(runKey+run.ID.String(), payload, time.Hour).SetVal("OK")
	require.NoError(t, cache.SetRun(ctx, run))

	mock.ExpectGet(runKey + run.ID.String()).SetVal(string(payload))
	got, ok, err := cache.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, run.ID, got.ID)
	assert.Equal(t, common.RunStatusFinished, got.Status)
}

func TestCache_Invalidate(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	cache := NewCache(rdb, time.Hour, nil)

	runID := common.RunID("abc")
	mock.ExpectDel(vocabularyKey+runID.String(), runKey+runID.String()).SetVal(2)
	assert.NoError(t, cache.Invalidate(context.Background(), runID))
	assert.NoError(t, mock.ExpectationsWereMet())
}
