package ratelimit

import (
	"time"
)

// EndpointConfig represents rate limiting configuration for a specific endpoint.
type EndpointConfig struct {
	Path   string        // Endpoint path pattern (supports prefix matching)
	Method string        // HTTP method (GET, POST, etc.)
	Limit  int           // Maximum requests per window
	Window time.Duration // Time window
	Burst  int           // Burst capacity (defaults to Limit if 0)
}

// key identifies the bucket shared by every request matching this config.
func (c *EndpointConfig) key() string {
	return c.Method + " " + c.Path
}

// Config holds rate limiting configuration.
type Config struct {
	Enabled         bool
	DefaultLimit    int
	DefaultWindow   time.Duration
	DefaultBurst    int
	CleanupInterval time.Duration
	IdleTimeout     time.Duration
	Whitelist       map[string]bool
	Blacklist       map[string]bool
	EndpointConfigs []EndpointConfig
}

// NewConfig builds a configuration where analysis uploads are limited to
// requestsPerMinute per client, batch uploads to a sixth of that, and read
// endpoints to ten times that.
func NewConfig(enabled bool, requestsPerMinute, burst int, whitelist, blacklist []string) *Config {
	if !enabled || requestsPerMinute <= 0 {
		return &Config{Enabled: false}
	}

	return &Config{
		Enabled:         true,
		DefaultLimit:    requestsPerMinute * 10,
		DefaultWindow:   time.Minute,
		DefaultBurst:    max(burst, requestsPerMinute),
		CleanupInterval: 5 * time.Minute,
		IdleTimeout:     time.Hour,
		Whitelist:       toSet(whitelist),
		Blacklist:       toSet(blacklist),
		EndpointConfigs: DefaultEndpointConfigs(requestsPerMinute, burst),
	}
}

// DefaultEndpointConfigs returns the endpoint-specific configurations.
func DefaultEndpointConfigs(requestsPerMinute, burst int) []EndpointConfig {
	return []EndpointConfig{
		// Batch uploads are the most expensive requests
		{Path: "/analyze/batch", Method: "POST", Limit: max(1, requestsPerMinute/6), Window: time.Minute, Burst: max(1, burst/4)},
		{Path: "/analyze", Method: "POST", Limit: requestsPerMinute, Window: time.Minute, Burst: burst},

		// Reads fall back to the default limit; health checks are unlimited (see MatchEndpoint)
	}
}

// toSet turns a list of IP addresses into a lookup map.
func toSet(ips []string) map[string]bool {
	result := make(map[string]bool, len(ips))
	for _, ip := range ips {
		if ip != "" {
			result[ip] = true
		}
	}
	return result
}
