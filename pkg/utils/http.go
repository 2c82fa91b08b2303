// Package utils provides common utility functions.
package utils

import "net/http"

// DefaultAccept is sent with every API request.
const DefaultAccept = "application/json;q=0.9,*/*;q=0.8"

// BuildHeaders creates request headers carrying the client's user agent.
func BuildHeaders(userAgent string) http.Header {
	headers := http.Header{}

	headers.Set("User-Agent", userAgent)
	headers.Set("Accept", DefaultAccept)

	return headers
}
