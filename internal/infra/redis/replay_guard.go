package redis

import (
	"context"
	"fmt"
	"time"
)

// ReplayGuard remembers recently processed gateway notifications so retries
// can be counted. It is observational only: reconciliation stays idempotent
// whether or not the marker survives.
type ReplayGuard struct {
	client *Client
	ttl    time.Duration
}

func NewReplayGuard(client *Client, ttl time.Duration) *ReplayGuard {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &ReplayGuard{client: client, ttl: ttl}
}

// Seen marks the notification and reports whether it had been seen before.
func (g *ReplayGuard) Seen(ctx context.Context, orderID, statusCode, paymentID string) (bool, error) {
	key := fmt.Sprintf("notify:seen:%s:%s:%s", orderID, statusCode, paymentID)
	created, err := g.client.SetNX(ctx, key, 1, g.ttl)
	if err != nil {
		return false, err
	}
	return !created, nil
}
