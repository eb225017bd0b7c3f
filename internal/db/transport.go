package db

import (
	"crypto/tls"
	"net/http"
)

// NewHTTPTransport returns a pooled transport for the engine clients.
// insecureTLS disables certificate verification and is meant for local clusters
// with self-signed certificates.
func NewHTTPTransport(insecureTLS bool) http.RoundTripper {
	base, ok := http.DefaultTransport.(*http.Transport)
	if !ok {
		base = &http.Transport{}
	}
	t := base.Clone()
	t.MaxIdleConnsPerHost = 16
	if insecureTLS {
		//nolint:gosec // opt-in for development clusters
		t.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	}
	return t
}

// CloseIdle releases pooled connections held by rt, if it supports that.
func CloseIdle(rt http.RoundTripper) {
	if c, ok := rt.(interface{ CloseIdleConnections() }); ok {
		c.CloseIdleConnections()
	}
}
