package ratelimit

import (
	"net/http"
	"strings"
)

// unlimited is returned for endpoints that are never limited.
var unlimited = &EndpointConfig{}

// MatchEndpoint returns the configuration for method and path, or nil when
// the default limit applies. Exact paths win over prefix paths.
func MatchEndpoint(path, method string, configs []EndpointConfig) *EndpointConfig {
	if method == http.MethodGet && (path == "/health" || path == "/metrics") {
		return unlimited
	}

	for i := range configs {
		if configs[i].Method == method && configs[i].Path == path {
			return &configs[i]
		}
	}

	for i := range configs {
		c := &configs[i]
		if c.Method == method && strings.HasSuffix(c.Path, "/") && strings.HasPrefix(path, c.Path) {
			return c
		}
	}
	return nil
}
