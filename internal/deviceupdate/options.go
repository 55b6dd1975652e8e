package deviceupdate

import "net/http"

// Option configures a Client at creation time.
type Option func(*clientConfig)

type clientConfig struct {
	httpClient *http.Client
	userAgent  string
}

// WithHTTPClient replaces the default HTTP client, e.g. to set timeouts or
// point at a test server.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *clientConfig) { c.httpClient = hc }
}

// WithUserAgent overrides the User-Agent header sent with every request.
func WithUserAgent(ua string) Option {
	return func(c *clientConfig) { c.userAgent = ua }
}
