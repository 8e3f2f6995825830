package alarm

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/subguard/internal/logger"
)

// KeyAlarms is the sorted set of alarm name scored by due time (unix ms).
const KeyAlarms = "subguard:alarms"

// DefaultPollInterval is how often due alarms are collected.
const DefaultPollInterval = 5 * time.Second

// claimScript removes an alarm only if it is still due, so a re-arm that
// lands between the range read and the claim is not lost.
var claimScript = redis.NewScript(`
local score = redis.call('ZSCORE', KEYS[1], ARGV[1])
if score and tonumber(score) <= tonumber(ARGV[2]) then
  return redis.call('ZREM', KEYS[1], ARGV[1])
end
return 0
`)

// Redis stores timers in a sorted set so they survive restarts and are
// shared by every replica. A poller claims due members with ZREM; only the
// replica whose claim succeeds runs the handler.
type Redis struct {
	client   redis.UniversalClient
	logger   logger.Logger
	interval time.Duration
	now      func() time.Time

	stopOnce sync.Once
	stopCh   chan struct{}
	done     chan struct{}
}

// NewRedis creates a Redis-backed timer set. interval <= 0 uses
// DefaultPollInterval.
func NewRedis(client redis.UniversalClient, log logger.Logger, interval time.Duration) *Redis {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &Redis{
		client:   client,
		logger:   log.With(logger.String("component", "alarms")),
		interval: interval,
		now:      time.Now,
		stopCh:   make(chan struct{}),
	}
}

var _ Timers = (*Redis)(nil)

// Arm upserts name with its due time. ZADD replaces the score of an existing
// member, which is what makes re-arming a replace.
func (r *Redis) Arm(ctx context.Context, name string, at time.Time) error {
	err := r.client.ZAdd(ctx, KeyAlarms, redis.Z{Score: float64(at.UnixMilli()), Member: name}).Err()
	if err != nil {
		return fmt.Errorf("failed to arm alarm %s: %w", name, err)
	}
	return nil
}

// Cancel removes name.
func (r *Redis) Cancel(ctx context.Context, name string) error {
	if err := r.client.ZRem(ctx, KeyAlarms, name).Err(); err != nil {
		return fmt.Errorf("failed to cancel alarm %s: %w", name, err)
	}
	return nil
}

// Lookup reports the due time of name.
func (r *Redis) Lookup(ctx context.Context, name string) (time.Time, bool, error) {
	score, err := r.client.ZScore(ctx, KeyAlarms, name).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return time.Time{}, false, nil
		}
		return time.Time{}, false, fmt.Errorf("failed to look up alarm %s: %w", name, err)
	}
	return time.UnixMilli(int64(score)).UTC(), true, nil
}

// Start polls immediately, then on every interval, until Stop or ctx is done.
func (r *Redis) Start(ctx context.Context, h Handler) error {
	r.done = make(chan struct{})
	r.Poll(ctx, h)

	ticker := time.NewTicker(r.interval)
	go func() {
		defer close(r.done)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				r.Poll(ctx, h)
			case <-r.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
	return nil
}

// Stop ends polling and waits for an in-flight poll to return.
func (r *Redis) Stop() {
	r.stopOnce.Do(func() { close(r.stopCh) })
	if r.done != nil {
		<-r.done
	}
}

// Poll fires every alarm due now. It returns the names it claimed.
func (r *Redis) Poll(ctx context.Context, h Handler) []string {
	now := r.now().UnixMilli()
	due, err := r.client.ZRangeByScore(ctx, KeyAlarms, &redis.ZRangeBy{
		Min: "-inf",
		Max: strconv.FormatInt(now, 10),
	}).Result()
	if err != nil {
		r.logger.Error("failed to read due alarms", logger.Error(err))
		return nil
	}

	var fired []string
	for _, name := range due {
		removed, err := claimScript.Run(ctx, r.client, []string{KeyAlarms}, name, now).Int64()
		if err != nil {
			r.logger.Error("failed to claim alarm",
				logger.String("alarm", name),
				logger.Error(err))
			continue
		}
		if removed == 0 {
			// claimed elsewhere or re-armed into the future
			continue
		}
		fired = append(fired, name)
		h(ctx, name)
	}
	return fired
}
