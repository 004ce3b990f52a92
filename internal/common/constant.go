// Package common contains shared constants and sentinel errors used across
// notekeeper components.
package common

// AuthorizationHeaderName is the HTTP header carrying the bearer access token.
const AuthorizationHeaderName = "Authorization"

// BearerScheme is the authorization scheme expected in AuthorizationHeaderName.
const BearerScheme = "Bearer"

// RequestIDHeaderName is echoed on every response so log lines can be matched
// to client reports.
const RequestIDHeaderName = "X-Request-ID"
