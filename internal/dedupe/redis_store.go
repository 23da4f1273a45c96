package dedupe

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"golang-market-alert/internal/entity"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	lockTTL   = 5 * time.Second
	lockWait  = 3 * time.Second
	lockRetry = 25 * time.Millisecond

	// unlockScript deletes the lock only while it still holds our token.
	unlockScript = `if redis.call("GET", KEYS[1]) == ARGV[1] then return redis.call("DEL", KEYS[1]) end return 0`
)

// RedisStore keeps records in a sorted set scored by send time.
type RedisStore struct {
	client redis.Cmdable
	key    string
	ttl    time.Duration
}

// NewRedisStore stores records under key; the key expires ttl after the last append.
func NewRedisStore(client redis.Cmdable, key string, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, key: key, ttl: ttl}
}

func (s *RedisStore) Load(ctx context.Context) ([]entity.SentRecord, error) {
	members, err := s.client.ZRange(ctx, s.key, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", s.key, err)
	}
	records := make([]entity.SentRecord, 0, len(members))
	for _, m := range members {
		var r entity.SentRecord
		if err := json.Unmarshal([]byte(m), &r); err != nil {
			return nil, fmt.Errorf("failed to decode sent record: %w", err)
		}
		records = append(records, r)
	}
	return records, nil
}

func (s *RedisStore) Append(ctx context.Context, rec entity.SentRecord, cutoff time.Time) error {
	member, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.ZAdd(ctx, s.key, redis.Z{Score: float64(rec.SentAt.UnixMilli()), Member: string(member)})
		pipe.ZRemRangeByScore(ctx, s.key, "-inf", "("+strconv.FormatInt(cutoff.UnixMilli(), 10))
		if s.ttl > 0 {
			pipe.Expire(ctx, s.key, s.ttl)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to append to %s: %w", s.key, err)
	}
	return nil
}

// Lock takes a short-lived lock shared by every process using the same key.
func (s *RedisStore) Lock(ctx context.Context) (func(), error) {
	lockKey := s.key + ":lock"
	token := uuid.NewString()
	deadline := time.NewTimer(lockWait)
	defer deadline.Stop()

	for {
		ok, err := s.client.SetNX(ctx, lockKey, token, lockTTL).Result()
		if err != nil {
			return nil, fmt.Errorf("failed to lock %s: %w", s.key, err)
		}
		if ok {
			return func() {
				_ = s.client.Eval(context.WithoutCancel(ctx), unlockScript, []string{lockKey}, token).Err()
			}, nil
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-deadline.C:
			return nil, fmt.Errorf("timed out waiting for %s", lockKey)
		case <-time.After(lockRetry):
		}
	}
}
