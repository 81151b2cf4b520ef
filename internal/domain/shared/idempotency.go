package shared

import (
	"context"
	"time"
)

// IdempotencyStore remembers client-supplied request tokens so a retried
// payment submission does not commit twice. The value stored alongside a
// token is the identifier of the result produced by the first commit,
// letting retries return the original outcome.
type IdempotencyStore interface {
	// Claim atomically records a token with a TTL.
	// Returns true if the token was newly claimed, false if it was already
	// present, together with the value stored by the original claim.
	Claim(ctx context.Context, token, value string, ttl time.Duration) (bool, string, error)

	// Lookup returns the stored value for a token, or "" if the token is
	// unknown or expired.
	Lookup(ctx context.Context, token string) (string, error)

	// Close closes the store and releases resources
	Close() error
}

// IdempotencyConfig holds configuration for request token handling
type IdempotencyConfig struct {
	// TTL is the time-to-live for claimed tokens. After this duration the
	// same token is accepted again as a new request.
	TTL time.Duration

	// Enabled determines whether token checking is enabled
	Enabled bool
}

// DefaultIdempotencyConfig returns the default idempotency configuration
func DefaultIdempotencyConfig() IdempotencyConfig {
	return IdempotencyConfig{
		TTL:     24 * time.Hour,
		Enabled: true,
	}
}
