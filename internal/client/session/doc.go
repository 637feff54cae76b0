// Package session holds the authenticated state of the current user and the
// operations that move it between states.
//
// # States
//
//	Unauthenticated       initial state, and where every failure and sign-out lands
//	Authenticating        a sign-in, sign-up or restoration is in flight
//	Authenticated         full profile and token
//	AuthenticatedOffline  token plus the cached UUID, restored while the profile
//	                      was out of reach (Snapshot.OfflineIdentity)
//
// # Restoration
//
// CheckAuthStatus runs once at start. With a persisted token it fetches the
// profile; when that fails it asks the network Monitor exactly once whether
// the device is online. Offline, or when the server itself was unreachable,
// the cached UUID is enough to restore a partial identity and nothing is
// purged. Otherwise the failure is treated as a rejected token and the
// persisted token and UUID are deleted.
//
// # Observing
//
// Snapshot returns a copy of the current state. Subscribe delivers snapshots
// with at most one pending value per subscriber, so a slow reader only ever
// sees the latest one.
//
// Operations do not exclude each other. Each one re-returns its error to the
// caller after reducing it to Snapshot.Error.
package session
