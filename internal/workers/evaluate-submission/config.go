// internal/workers/evaluate-submission/config.go
package evaluatesubmission

import "time"

type Config struct {
	Timeout       time.Duration
	MaxJobsActive int
}

func LoadConfig() *Config {
	return &Config{
		Timeout:       120 * time.Second,
		MaxJobsActive: 5,
	}
}
