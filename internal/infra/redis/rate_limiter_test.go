//go:build !integration

package redis

import "testing"

func TestLoginKey(t *testing.T) {
	t.Run("should share a bucket across ports of the same host", func(t *testing.T) {
		a := LoginKey("amara@example.org", "203.0.113.7:51001")
		b := LoginKey("amara@example.org", "203.0.113.7:62344")
		if a != b {
			t.Fatalf("per-connection buckets: %q vs %q", a, b)
		}
		if a != "rate_limit:login:amara@example.org:203.0.113.7" {
			t.Errorf("unexpected key %q", a)
		}
	})

	t.Run("should keep distinct hosts apart", func(t *testing.T) {
		a := LoginKey("amara@example.org", "203.0.113.7:51001")
		b := LoginKey("amara@example.org", "198.51.100.2:51001")
		if a == b {
			t.Error("different hosts collapsed into one bucket")
		}
	})

	t.Run("should keep distinct emails apart", func(t *testing.T) {
		a := LoginKey("amara@example.org", "203.0.113.7:51001")
		b := LoginKey("ben@example.org", "203.0.113.7:51001")
		if a == b {
			t.Error("different emails collapsed into one bucket")
		}
	})

	t.Run("should accept a bare host from a forwarding header", func(t *testing.T) {
		got := LoginKey("amara@example.org", "203.0.113.7")
		if got != "rate_limit:login:amara@example.org:203.0.113.7" {
			t.Errorf("unexpected key %q", got)
		}
	})

	t.Run("should strip the port from IPv6 addresses", func(t *testing.T) {
		a := LoginKey("amara@example.org", "[2001:db8::1]:51001")
		b := LoginKey("amara@example.org", "[2001:db8::1]:62344")
		if a != b {
			t.Fatalf("per-connection buckets: %q vs %q", a, b)
		}
	})
}
