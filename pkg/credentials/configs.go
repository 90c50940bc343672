package credentials

import "time"

const (
	// RefreshBufferWindow is how long before the literal expiration a
	// snapshot counts as stale. Reaching the boundary exactly triggers a
	// refresh.
	RefreshBufferWindow = 30 * time.Minute

	// DefaultHTTPTimeout bounds the credential verification request.
	DefaultHTTPTimeout = 5 * time.Second

	// verifyPath is the credential verification endpoint, relative to the
	// configured API base URL.
	verifyPath = "/v1/verify/credentials"
)
