// Package api is the client side of the EmergQR REST API.
//
// # Overview
//
// Client is the transport-agnostic contract used by the session and the CLI:
// Login/Register/ChangePassword on /auth, Profile and UploadAvatar on
// /clients/me, QR and RegenerateQR on /qr/me, and Ping on /health.
// HTTPClient implements it over net/http and injects the bearer token set
// with SetToken.
//
// # Error Handling
//
// Transport outcomes are mapped onto sentinel errors that callers match with
// errors.Is: ErrUnavailable (network or gateway failure), ErrUnauthorized
// (401/403), ErrProtocol (a 2xx response missing required fields). Any other
// non-2xx status is returned as *Error carrying the server's detail message.
// Message reduces any of them to one user-facing string.
package api
