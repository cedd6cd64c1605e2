package store

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// reviewedTTL bounds how long the Redis copy of a user's reviewed set lives.
// The store remains the source of truth; Redis only makes the hot-path
// lookup cheap.
const reviewedTTL = 30 * 24 * time.Hour

// WithReviewedCache fronts a Store's reviewed-job-id set with Redis sets.
// All other operations pass through. rdb may be nil (no-op wrapper).
func WithReviewedCache(s Store, rdb *redis.Client) Store {
	if rdb == nil {
		return s
	}
	return &reviewedCached{Store: s, rdb: rdb}
}

type reviewedCached struct {
	Store
	rdb *redis.Client
}

func reviewedKey(userID string) string {
	return "jm:reviewed:" + userID
}

func (c *reviewedCached) ReviewedJobIDs(ctx context.Context, userID string) (map[string]bool, error) {
	key := reviewedKey(userID)
	members, err := c.rdb.SMembers(ctx, key).Result()
	if err == nil && len(members) > 0 {
		out := make(map[string]bool, len(members))
		for _, m := range members {
			out[m] = true
		}
		return out, nil
	}
	if err != nil {
		slog.Debug("reviewed: redis read failed, falling back to store", slog.Any("error", err))
	}

	out, err := c.Store.ReviewedJobIDs(ctx, userID)
	if err != nil {
		return nil, err
	}

	if len(out) > 0 {
		ids := make([]interface{}, 0, len(out))
		for id := range out {
			ids = append(ids, id)
		}
		pipe := c.rdb.Pipeline()
		pipe.SAdd(ctx, key, ids...)
		pipe.Expire(ctx, key, reviewedTTL)
		if _, err := pipe.Exec(ctx); err != nil {
			slog.Debug("reviewed: redis backfill failed", slog.Any("error", err))
		}
	}
	return out, nil
}

func (c *reviewedCached) MarkReviewed(ctx context.Context, userID string, jobIDs []string) error {
	if err := c.Store.MarkReviewed(ctx, userID, jobIDs); err != nil {
		return fmt.Errorf("mark reviewed: %w", err)
	}
	if len(jobIDs) == 0 {
		return nil
	}
	key := reviewedKey(userID)
	ids := make([]interface{}, 0, len(jobIDs))
	for _, id := range jobIDs {
		if id != "" {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return nil
	}
	pipe := c.rdb.Pipeline()
	pipe.SAdd(ctx, key, ids...)
	pipe.Expire(ctx, key, reviewedTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		slog.Debug("reviewed: redis write failed", slog.Any("error", err))
	}
	return nil
}
