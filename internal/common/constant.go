// Package common contains shared constants and sentinel errors used across
// slotswap components.
package common

// AccessTokenHeaderName is the gRPC metadata key used to carry the
// access token on inbound requests.
const AccessTokenHeaderName = "access_token"

// ErrorDomain is reported as the domain of machine-readable error details.
const ErrorDomain = "slotswap"
