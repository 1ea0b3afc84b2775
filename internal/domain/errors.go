package domain

import (
	"fmt"
	"time"
)

// ConfigError reports a required configuration key that is not set.
type ConfigError struct {
	Key string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config: %s is not set", e.Key)
}

// QuotaExceededError reports an exhausted upstream request quota.
type QuotaExceededError struct {
	ResetAt time.Time
}

func (e *QuotaExceededError) Error() string {
	return fmt.Sprintf("github: rate limit exhausted, resets at %s", e.ResetAt.UTC().Format(time.RFC3339))
}

// UpstreamError reports a non-success HTTP status while paging through
// an upstream collection.
type UpstreamError struct {
	StatusCode int
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("github: unexpected status %d", e.StatusCode)
}

// PersistenceError reports a rejected snapshot write.
type PersistenceError struct {
	StatusCode int
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("store: metadata write rejected with status %d", e.StatusCode)
}
