package quota

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// checkAndIncrScript refuses the increment once the counter is at the
// limit, and puts an expiry on fresh keys so old days clean themselves up.
var checkAndIncrScript = redis.NewScript(`
local current = tonumber(redis.call('GET', KEYS[1]) or '0')
local limit = tonumber(ARGV[1])
if current >= limit then
    return {0, current}
end
current = redis.call('INCR', KEYS[1])
if current == 1 then
    redis.call('EXPIRE', KEYS[1], tonumber(ARGV[2]))
end
return {1, current}
`)

// RedisLedger is the Redis-backed counter store, selected with
// QUOTA_BACKEND=redis. One Lua call per increment keeps it atomic.
type RedisLedger struct {
	Client *redis.Client
}

func NewRedisLedger(client *redis.Client) *RedisLedger {
	return &RedisLedger{Client: client}
}

func (l *RedisLedger) key(workspaceID int64, accountKey, action string, day time.Time) string {
	return fmt.Sprintf("quota:%d:%s:%s:%s", workspaceID, accountKey, action, DayKey(day))
}

func (l *RedisLedger) CheckAndIncrement(ctx context.Context, workspaceID int64, accountKey, action string, day time.Time, limit int) (*Result, error) {
	if limit <= 0 {
		current, err := l.GetUsage(ctx, workspaceID, accountKey, action, day)
		if err != nil {
			return nil, err
		}
		return &Result{Allowed: false, Current: current, Limit: limit}, nil
	}

	ttl := int((48 * time.Hour).Seconds())
	raw, err := checkAndIncrScript.Run(ctx, l.Client, []string{l.key(workspaceID, accountKey, action, day)}, limit, ttl).Slice()
	if err != nil {
		return nil, err
	}
	if len(raw) != 2 {
		return nil, fmt.Errorf("unexpected quota script reply: %v", raw)
	}
	allowed, _ := raw[0].(int64)
	current, _ := raw[1].(int64)
	return &Result{Allowed: allowed == 1, Current: int(current), Limit: limit}, nil
}

func (l *RedisLedger) GetUsage(ctx context.Context, workspaceID int64, accountKey, action string, day time.Time) (int, error) {
	val, err := l.Client.Get(ctx, l.key(workspaceID, accountKey, action, day)).Int()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return val, nil
}

var _ Ledger = (*RedisLedger)(nil)
