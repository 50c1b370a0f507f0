package redis

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/medlens/reviewsignal/pkg/errors"
)

// ErrLockHeld is returned when another process is already running the
// pipeline for the same source.
var ErrLockHeld = errors.New(errors.CodeConflict, "pipeline run already in progress for this source")

const lockKeyPrefix = keyPrefix + "runlock:"

// unlockScript releases the lock only when the caller still owns it.
var unlockScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RunLock is a best-effort mutual exclusion guard keyed by input source.
type RunLock struct {
	rdb   redis.Cmdable
	key   string
	owner string
	ttl   time.Duration
}

// NewRunLock builds a lock for the given source.  ttl bounds how long a
// crashed run can block its successors.
func NewRunLock(rdb redis.Cmdable, source string, ttl time.Duration) *RunLock {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &RunLock{
		rdb:   rdb,
		key:   lockKeyPrefix + source,
		owner: uuid.NewString(),
		ttl:   ttl,
	}
}

// Acquire takes the lock or fails with ErrLockHeld.
func (l *RunLock) Acquire(ctx context.Context) error {
	ok, err := l.rdb.SetNX(ctx, l.key, l.owner, l.ttl).Result()
	if err != nil {
		return errors.Wrap(err, errors.CodeCacheError, "acquire run lock")
	}
	if !ok {
		return ErrLockHeld
	}
	return nil
}

// Release frees the lock if this instance still holds it.  Releasing a lock
// that expired or moved to another owner is not an error.
func (l *RunLock) Release(ctx context.Context) error {
	if err := unlockScript.Run(ctx, l.rdb, []string{l.key}, l.owner).Err(); err != nil && err != redis.Nil {
		return errors.Wrap(err, errors.CodeCacheError, "release run lock")
	}
	return nil
}
