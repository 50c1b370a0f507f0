package redis

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/medlens/reviewsignal/internal/infrastructure/monitoring/logging"
	"github.com/medlens/reviewsignal/pkg/errors"
	"github.com/medlens/reviewsignal/pkg/types/common"
)

const (
	keyPrefix     = "reviewsignal:"
	vocabularyKey = keyPrefix + "vocabulary:"
	runKey        = keyPrefix + "run:"
)

// Cache stores small per-run artifacts: the treatment vocabulary and run
// summaries.  Everything carries a TTL; the database stays authoritative.
type Cache struct {
	rdb    redis.Cmdable
	ttl    time.Duration
	logger logging.Logger
}

// NewCache wraps a connected client.  ttl <= 0 defaults to 24h.
func NewCache(rdb redis.Cmdable, ttl time.Duration, logger logging.Logger) *Cache {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Cache{rdb: rdb, ttl: ttl, logger: logger}
}

// SetVocabulary stores the run's treatment vocabulary.
func (c *Cache) SetVocabulary(ctx context.Context, runID common.RunID, vocab []string) error {
	payload, err := json.Marshal(vocab)
	if err != nil {
		return errors.Wrap(err, errors.CodeSerialization, "encode vocabulary")
	}
	if err := c.rdb.Set(ctx, vocabularyKey+runID.String(), payload, c.ttl).Err(); err != nil {
		return errors.Wrap(err, errors.CodeCacheError, "cache vocabulary")
	}
	return nil
}

// GetVocabulary returns the cached vocabulary, with ok=false on a miss.
func (c *Cache) GetVocabulary(ctx context.Context, runID common.RunID) ([]string, bool, error) {
	raw, err := c.rdb.Get(ctx, vocabularyKey+runID.String()).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, errors.Wrap(err, errors.CodeCacheError, "read cached vocabulary")
	}
	var vocab []string
	if err := json.Unmarshal(raw, &vocab); err != nil {
		return nil, false, errors.Wrap(err, errors.CodeSerialization, "decode cached vocabulary")
	}
	return vocab, true, nil
}

// SetRun stores a run summary for cheap status polling.
func (c *Cache) SetRun(ctx context.Context, run *common.Run) error {
	payload, err := json.Marshal(run)
	if err != nil {
		return errors.Wrap(err, errors.CodeSerialization, "encode run")
	}
	if err := c.rdb.Set(ctx, runKey+run.ID.String(), payload, c.ttl).Err(); err != nil {
		return errors.Wrap(err, errors.CodeCacheError, "cache run")
	}
	return nil
}

// GetRun returns the cached run summary, with ok=false on a miss.
func (c *Cache) GetRun(ctx context.Context, id common.RunID) (*common.Run, bool, error) {
	raw, err := c.rdb.Get(ctx, runKey+id.String()).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, errors.Wrap(err, errors.CodeCacheError, "read cached run")
	}
	var run common.Run
	if err := json.Unmarshal(raw, &run); err != nil {
		return nil, false, errors.Wrap(err, errors.CodeSerialization, "decode cached run")
	}
	return &run, true, nil
}

// Invalidate removes all cached artifacts of a run.
func (c *Cache) Invalidate(ctx context.Context, runID common.RunID) error {
	keys := []string{vocabularyKey + runID.String(), runKey + runID.String()}
	if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
		return errors.Wrap(err, errors.CodeCacheError, "invalidate run cache")
	}
	return nil
}
