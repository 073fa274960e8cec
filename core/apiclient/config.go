package apiclient

import "time"

// Config holds the transport and retry settings of one backend client.
type Config struct {
	// RateLimitMs is the minimum spacing between two requests in milliseconds.
	RateLimitMs int `mapstructure:"rate_limit_ms" default:"250" validate:"gte=100,lte=2000"`
	// MaxAttempts is the total number of attempts for one logical request.
	MaxAttempts int `mapstructure:"max_attempts" default:"3" validate:"gte=1,lte=10"`
	// BackoffMinSeconds is the lower bound of the wait between attempts.
	BackoffMinSeconds int `mapstructure:"backoff_min_seconds" default:"4" validate:"gte=0"`
	// BackoffMaxSeconds is the upper bound of the wait between attempts.
	BackoffMaxSeconds int `mapstructure:"backoff_max_seconds" default:"10" validate:"gtefield=BackoffMinSeconds"`
	// TimeoutSeconds bounds a single HTTP exchange.
	TimeoutSeconds int `mapstructure:"timeout_seconds" default:"30" validate:"gte=0"`
}

// DefaultConfig returns the settings used when nothing is configured.
func DefaultConfig() Config {
	return Config{
		RateLimitMs:       250,
		MaxAttempts:       3,
		BackoffMinSeconds: 4,
		BackoffMaxSeconds: 10,
		TimeoutSeconds:    30,
	}
}

func (c Config) spacing() time.Duration {
	return time.Duration(c.RateLimitMs) * time.Millisecond
}

func (c Config) timeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}

func (c Config) attempts() int {
	if c.MaxAttempts <= 0 {
		return 1
	}
	return c.MaxAttempts
}

// backoff returns the wait before the given retry (1-based). Base doubles from
// BackoffMin and is clamped to [BackoffMin, BackoffMax]. A positive hint
// (Retry-After) replaces the base but is clamped the same way.
func (c Config) backoff(retry int, hint time.Duration) time.Duration {
	lo := time.Duration(c.BackoffMinSeconds) * time.Second
	hi := time.Duration(c.BackoffMaxSeconds) * time.Second
	if hi < lo {
		hi = lo
	}

	d := hint
	if d <= 0 {
		d = lo << (retry - 1)
		if retry > 16 || d <= 0 {
			d = hi
		}
	}
	if d < lo {
		d = lo
	}
	if d > hi {
		d = hi
	}
	return d
}
