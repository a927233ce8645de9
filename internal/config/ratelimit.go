package config

import "time"

// RateLimitConfig configures a Redis token bucket.  Scope namespaces the
// bucket keys so independent limiters (login, emergency reset) do not
// share tokens.
type RateLimitConfig struct {
	Enabled        bool
	Scope          string
	Capacity       int
	RefillTokens   int
	RefillInterval time.Duration
	TTL            time.Duration
	KeyStrategy    string
	Prefix         string
	Debug          bool
}

// LoadRateLimitConfig reads RATE_LIMIT_* variables.  A scope-specific
// capacity such as RATE_LIMIT_LOGIN_CAPACITY overrides the shared one.
func LoadRateLimitConfig(scope string) RateLimitConfig {
	rl := RateLimitConfig{
		Enabled:        envBool("RATE_LIMIT_ENABLED", true),
		Scope:          scope,
		Capacity:       envInt("RATE_LIMIT_CAPACITY", 10),
		RefillTokens:   envInt("RATE_LIMIT_REFILL_TOKENS", 1),
		RefillInterval: envDur("RATE_LIMIT_REFILL_INTERVAL", 6*time.Second),
		TTL:            envDur("RATE_LIMIT_TTL", 10*time.Minute),
		KeyStrategy:    envStr("RATE_LIMIT_KEY_STRATEGY", "ip_route"),
		Prefix:         envStr("RATE_LIMIT_PREFIX", "rl"),
		Debug:          envBool("RATE_LIMIT_DEBUG", false),
	}
	if scope != "" {
		if n := envInt("RATE_LIMIT_"+upper(scope)+"_CAPACITY", -1); n > 0 {
			rl.Capacity = n
		}
	}
	if rl.Capacity < 1 {
		rl.Capacity = 1
	}
	if rl.RefillTokens < 1 {
		rl.RefillTokens = 1
	}
	if rl.RefillInterval <= 0 {
		rl.RefillInterval = time.Second
	}
	// keep state around long enough to refill a full bucket
	if minTTL := time.Duration(rl.Capacity) * rl.RefillInterval; rl.TTL < minTTL {
		rl.TTL = minTTL
	}
	return rl
}
