// Package http builds the outbound HTTP client used for external API calls.
package http

import (
	"net"
	"net/http"
	"time"
)

// NewHTTPClient creates an HTTP client configured for external API calls.
//
// http.DefaultClient has no timeout, so a custom client is always used. The
// transport is set explicitly for connection stability and resource control:
// proxy settings come from the environment, dial and TLS handshakes are
// bounded below the overall request timeout, and idle connections are pooled
// for reuse against the same API host.
func NewHTTPClient(timeout time.Duration) *http.Client {
	t := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   5 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:        100,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 5 * time.Second,
	}
	return &http.Client{Timeout: timeout, Transport: t}
}
