package ratelimit

import (
	"net/http"
	"strings"
)

// HealthPath is never rate limited.
const HealthPath = "/health"

// MatchEndpoint matches a request path and method to an endpoint configuration.
// Returns the matching EndpointConfig or nil if no match is found.
// Path matching supports prefix matching (e.g., "/companies/" matches "/companies/{id}").
// HEAD requests match GET configurations.
func MatchEndpoint(path string, method string, configs []EndpointConfig) *EndpointConfig {
	if method == http.MethodHead {
		method = http.MethodGet
	}

	// Special case: health check endpoint is unlimited
	if path == HealthPath && method == http.MethodGet {
		return &EndpointConfig{Path: HealthPath, Method: method}
	}

	// Try exact match first
	for i := range configs {
		config := &configs[i]
		if config.Path == path && config.Method == method {
			return config
		}
	}

	// Try prefix match (for paths ending with "/"), longest prefix wins
	var best *EndpointConfig
	for i := range configs {
		config := &configs[i]
		if config.Method != method || !strings.HasSuffix(config.Path, "/") {
			continue
		}
		if strings.HasPrefix(path, config.Path) && (best == nil || len(config.Path) > len(best.Path)) {
			best = config
		}
	}
	return best
}
