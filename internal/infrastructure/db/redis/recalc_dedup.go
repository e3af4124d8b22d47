package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/timeclerk/timesheet-engine/internal/api/metrics"
)

const dedupTTL = time.Hour

// RecalcDedup provides idempotency checks for rate recalculation requests.
// Key format: recalc:<user_id>:<reason>
type RecalcDedup struct {
	client *redis.Client
}

// NewRecalcDedup creates a RecalcDedup wrapping the given Redis client.
func NewRecalcDedup(client *redis.Client) *RecalcDedup {
	return &RecalcDedup{client: client}
}

// IsDuplicate reports whether this recalculation has already been requested
// within the dedup window.
func (d *RecalcDedup) IsDuplicate(ctx context.Context, userID, reason string) (bool, error) {
	n, err := d.client.Exists(ctx, d.key(userID, reason)).Result()
	if err != nil {
		return false, fmt.Errorf("dedup check: %w", err)
	}
	if n > 0 {
		metrics.RecalcDedupTotal.WithLabelValues("hit").Inc()
		return true, nil
	}
	metrics.RecalcDedupTotal.WithLabelValues("miss").Inc()
	return false, nil
}

// Mark records that this recalculation has been processed (expires after dedupTTL).
func (d *RecalcDedup) Mark(ctx context.Context, userID, reason string) error {
	return d.client.Set(ctx, d.key(userID, reason), "1", dedupTTL).Err()
}

func (d *RecalcDedup) key(userID, reason string) string {
	return fmt.Sprintf("recalc:%s:%s", userID, reason)
}
