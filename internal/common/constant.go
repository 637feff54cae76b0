// Package common contains constants, sentinel errors and small helpers
// shared by the EmergQR client and the reference server.
package common

// AuthorizationHeader carries the bearer token on authenticated requests.
const AuthorizationHeader = "Authorization"

// BearerPrefix precedes the token in AuthorizationHeader.
const BearerPrefix = "Bearer "
