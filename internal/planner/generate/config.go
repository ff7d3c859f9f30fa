package generate

import "time"

const (
	DefaultMaxRetries  = 3
	DefaultTemperature = 0.7

	// The delay before retry n is n * DefaultBackoffUnit (linear backoff).
	DefaultBackoffUnit = 400 * time.Millisecond
)

// Config describes the provider endpoint and retry defaults.
type Config struct {
	BaseURL     string
	APIKey      string
	Model       string
	Temperature float64
	MaxRetries  int
	BackoffUnit time.Duration
	Timeout     time.Duration
}

func (c *Config) applyDefaults() {
	if c.Temperature == 0 {
		c.Temperature = DefaultTemperature
	}
	if c.MaxRetries == 0 {
		c.MaxRetries = DefaultMaxRetries
	}
	if c.BackoffUnit == 0 {
		c.BackoffUnit = DefaultBackoffUnit
	}
}
