// Package common contains shared constants and sentinel errors used across
// FitMacro components.
package common

// AccessTokenHeaderName is the gRPC metadata key used to carry the
// access token on outbound requests.
const AccessTokenHeaderName = "access_token"

// DateLayout is the wire format of calendar dates (YYYY-MM-DD).
const DateLayout = "2006-01-02"
