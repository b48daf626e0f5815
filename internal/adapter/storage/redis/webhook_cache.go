package redis

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// WebhookCache is the fast-path dedupe check for gateway deliveries.
// A (event, reference) pair is cached only after its log was committed
// as processed, so a cache miss always falls through to the database.
type WebhookCache struct {
	client *goredis.Client
	prefix string
	ttl    time.Duration
}

// NewWebhookCache creates a Redis-backed processed-delivery cache.
func NewWebhookCache(client *goredis.Client) *WebhookCache {
	return &WebhookCache{
		client: client,
		prefix: "webhook:processed:",
		ttl:    72 * time.Hour,
	}
}

func (c *WebhookCache) key(event, reference string) string {
	return fmt.Sprintf("%s%s:%s", c.prefix, event, reference)
}

// IsProcessed reports whether this delivery was already settled.
// Returns false, nil when the key is absent.
func (c *WebhookCache) IsProcessed(ctx context.Context, event, reference string) (bool, error) {
	_, err := c.client.Get(ctx, c.key(event, reference)).Result()
	if err != nil {
		if err == goredis.Nil {
			return false, nil
		}
		return false, fmt.Errorf("redis webhook get: %w", err)
	}
	return true, nil
}

// MarkProcessed records a settled delivery. Called only after the
// database transaction that marked the log processed has committed.
func (c *WebhookCache) MarkProcessed(ctx context.Context, event, reference string) error {
	err := c.client.Set(ctx, c.key(event, reference), "1", c.ttl).Err()
	if err != nil {
		return fmt.Errorf("redis webhook set: %w", err)
	}
	return nil
}
