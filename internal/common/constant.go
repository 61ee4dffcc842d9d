// Package common contains shared constants and small helpers used across
// gophnotes components.
package common

// Header names used on outbound API requests.
const (
	AuthorizationHeaderName = "Authorization"
	RequestIDHeaderName     = "X-Request-ID"
	BearerPrefix            = "Bearer "
)

// AccessTokenCookieName is the key the session token is persisted under.
const AccessTokenCookieName = "access_token"
