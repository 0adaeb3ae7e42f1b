package redis

import (
	"context"
	"fmt"
	"net"
	"time"
)

type RateLimiter struct {
	client *Client
}

func NewRateLimiter(client *Client) *RateLimiter {
	return &RateLimiter{client: client}
}

func (r *RateLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	count, err := r.client.Incr(ctx, key)
	if err != nil {
		return false, err
	}

	if count == 1 {
		err = r.client.Expire(ctx, key, window)
		if err != nil {
			return false, err
		}
	}

	if count > int64(limit) {
		return false, nil
	}

	return true, nil
}

// LoginKey buckets login attempts per email and caller host. RemoteAddr
// carries an ephemeral port on direct connections, which must not split the
// bucket per TCP connection.
func LoginKey(email, remoteAddr string) string {
	host, _, err := net.SplitHostPort(remoteAddr)
	if err != nil {
		// Already a bare host (e.g. rewritten from a forwarding header).
		host = remoteAddr
	}
	return fmt.Sprintf("rate_limit:login:%s:%s", email, host)
}
