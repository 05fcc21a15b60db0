package redis

import (
	"testing"
	"time"
)

func TestIdempotencyKey(t *testing.T) {
	if got := idempotencyKey("user-1:abc-123"); got != "idem:ticket:user-1:abc-123" {
		t.Errorf("got %q", got)
	}
}

func TestBoundTicket(t *testing.T) {
	if got := boundTicket(pending); got != "" {
		t.Errorf("pending claim should have no ticket, got %q", got)
	}
	if got := boundTicket("t-1"); got != "t-1" {
		t.Errorf("got %q, want t-1", got)
	}
}

func TestNewIdempotencyStore_DefaultTTL(t *testing.T) {
	s := NewIdempotencyStore(nil, 0)
	if s.ttl != defaultIdempotencyTTL {
		t.Errorf("ttl = %v, want %v", s.ttl, defaultIdempotencyTTL)
	}
	s = NewIdempotencyStore(nil, time.Minute)
	if s.ttl != time.Minute {
		t.Errorf("ttl = %v, want 1m", s.ttl)
	}
}
