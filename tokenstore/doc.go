// Package tokenstore persists the Transmission session id so that a new
// client can reuse the last id the daemon issued instead of paying a 409
// round-trip on its first call.
//
// Every store keeps a single string under Key. Load returns "" when
// nothing has been stored.
package tokenstore

// Key is the well-known name the session id is stored under.
const Key = "session_id"
