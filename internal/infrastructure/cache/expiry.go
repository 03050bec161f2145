package cache

import (
	"fmt"
	"time"
)

// Expiry decides whether an entry written at storedAt is stale at now.
// It is chosen per store, so each key space can have its own policy.
type Expiry interface {
	Expired(storedAt, now time.Time) bool
	String() string
}

// NoExpiry keeps entries until they are replaced or deleted.
type NoExpiry struct{}

func (NoExpiry) Expired(time.Time, time.Time) bool { return false }

func (NoExpiry) String() string { return "none" }

// FixedTTL expires entries once more than TTL has passed since they were written.
// Entries without a write time are treated as expired.
type FixedTTL struct {
	TTL time.Duration
}

func (e FixedTTL) Expired(storedAt, now time.Time) bool {
	if storedAt.IsZero() {
		return true
	}
	return now.Sub(storedAt) > e.TTL
}

func (e FixedTTL) String() string {
	return fmt.Sprintf("ttl=%s", e.TTL)
}

// ExpiryFromTTL returns FixedTTL for a positive ttl and NoExpiry otherwise.
func ExpiryFromTTL(ttl time.Duration) Expiry {
	if ttl <= 0 {
		return NoExpiry{}
	}
	return FixedTTL{TTL: ttl}
}
