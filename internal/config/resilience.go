package config

import (
	"time"

	"rentdash/internal/retry"
)

// ResilienceConfig groups the retry presets for the session's refresh
// machinery: one per snapshot fetch path, plus the preset that guards a
// whole refresh cycle.
type ResilienceConfig struct {
	ProcessLoop  retry.Config
	AccountFetch retry.Config
	RentalFetch  retry.Config
}

var DefaultResilienceConfig = ResilienceConfig{
	ProcessLoop: retry.Config{
		MaxRetries: 3,
		BaseDelay:  5 * time.Second,
		MaxDelay:   60 * time.Second,
		Timeout:    2 * time.Minute,
	},
	AccountFetch: retry.Config{
		MaxRetries: 2,
		BaseDelay:  1 * time.Second,
		MaxDelay:   10 * time.Second,
		Timeout:    15 * time.Second,
	},
	RentalFetch: retry.Config{
		MaxRetries: 2,
		BaseDelay:  1 * time.Second,
		MaxDelay:   10 * time.Second,
		Timeout:    15 * time.Second,
	},
}

// InfiniteResilienceConfig keeps a refresh cycle retrying until it succeeds
// or the session shuts down. The per-fetch presets stay bounded so each
// cycle attempt fails fast and the outer loop owns the waiting.
var InfiniteResilienceConfig = ResilienceConfig{
	ProcessLoop: retry.Config{
		MaxRetries:    0,
		BaseDelay:     5 * time.Second,
		MaxDelay:      60 * time.Second,
		Timeout:       2 * time.Minute,
		InfiniteRetry: true,
	},
	AccountFetch: retry.Config{
		MaxRetries: 2,
		BaseDelay:  1 * time.Second,
		MaxDelay:   10 * time.Second,
		Timeout:    15 * time.Second,
	},
	RentalFetch: retry.Config{
		MaxRetries: 2,
		BaseDelay:  1 * time.Second,
		MaxDelay:   10 * time.Second,
		Timeout:    15 * time.Second,
	},
}
