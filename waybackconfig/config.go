// Package waybackconfig provides an optional viper-backed loader for
// Session defaults, for callers that want to configure the Wayback client
// the same way the rest of their application is configured (environment
// variables, or a config file already loaded by viper) rather than setting
// session options in code.
package waybackconfig

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

// SessionDefaults mirrors the subset of the wayback.Session settings (set
// in code through wayback.SessionOption values) that makes sense to drive
// from configuration rather than code.
type SessionDefaults struct {
	UserAgent          string        `mapstructure:"user_agent"`
	Timeout            time.Duration `mapstructure:"timeout"`
	SearchRetries      int           `mapstructure:"search_retries"`
	MementoRetries     int           `mapstructure:"memento_retries"`
	BackoffBase        time.Duration `mapstructure:"backoff_base"`
	SearchRatePerSec   float64       `mapstructure:"search_rate_per_sec"`
	MementoRatePerSec  float64       `mapstructure:"memento_rate_per_sec"`
}

// Load reads SessionDefaults from environment variables prefixed WAYBACK_
// (e.g. WAYBACK_TIMEOUT, WAYBACK_SEARCH_RETRIES), falling back to the same
// defaults wayback.NewSession uses when a variable isn't set.
func Load() (SessionDefaults, error) {
	v := viper.New()
	v.SetEnvPrefix("WAYBACK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("user_agent", "")
	v.SetDefault("timeout", 60*time.Second)
	v.SetDefault("search_retries", 6)
	v.SetDefault("memento_retries", 3)
	v.SetDefault("backoff_base", 2*time.Second)
	v.SetDefault("search_rate_per_sec", 1.0)
	v.SetDefault("memento_rate_per_sec", 30.0)

	var defaults SessionDefaults
	if err := v.Unmarshal(&defaults); err != nil {
		return SessionDefaults{}, err
	}
	return defaults, nil
}
