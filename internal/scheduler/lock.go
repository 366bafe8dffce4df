package scheduler

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Locker provides per-campaign mutual exclusion so overlapping ticks never
// process the same campaign concurrently (the daily-quota read is not
// exactly-once under concurrency otherwise).
type Locker interface {
	// TryAcquire returns (release, true) on success, (nil, false) when the
	// campaign is already being processed elsewhere.
	TryAcquire(ctx context.Context, campaignID string) (func(), bool)
}

// releaseScript deletes the lock only when still held by this owner.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0`)

// RedisLocker implements Locker with SET NX PX, safe across processes. The
// TTL bounds how long a crashed worker can hold a campaign hostage.
type RedisLocker struct {
	rdb    *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewRedisLocker returns a configured RedisLocker.
func NewRedisLocker(rdb *redis.Client, ttl time.Duration, logger *zap.Logger) *RedisLocker {
	return &RedisLocker{rdb: rdb, ttl: ttl, logger: logger}
}

// TryAcquire takes the campaign's lock if free. Redis errors are treated as
// "not acquired": better to skip a cycle than double-process it.
func (l *RedisLocker) TryAcquire(ctx context.Context, campaignID string) (func(), bool) {
	key := "campaign:lock:" + campaignID
	token := uuid.NewString()

	ok, err := l.rdb.SetNX(ctx, key, token, l.ttl).Result()
	if err != nil {
		l.logger.Warn("acquiring campaign lock failed",
			zap.String("campaign_id", campaignID),
			zap.Error(err),
		)
		return nil, false
	}
	if !ok {
		return nil, false
	}

	release := func() {
		if err := releaseScript.Run(ctx, l.rdb, []string{key}, token).Err(); err != nil {
			l.logger.Warn("releasing campaign lock failed",
				zap.String("campaign_id", campaignID),
				zap.Error(err),
			)
		}
	}
	return release, true
}
