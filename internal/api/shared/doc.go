// Package shared holds the request decoding, response envelope and trace ID
// helpers used by the API handlers and middleware.
package shared
