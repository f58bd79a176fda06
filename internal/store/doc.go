// Package store persists groups: the ordered member list of each group and
// its attribute profile.
//
// Two implementations share one contract:
//   - Store: SQLite-backed durable storage
//   - Memory: map-backed storage for tests and dry runs
//
// # Profiles
//
// A Profile is the attribute history of a group. Row 0 is the canonical
// row used for similarity. Later rows record alternate values seen for
// the same group. See Profile.Merge for the update rules.
//
// # Critical Patterns
//
// Full rewrite: SaveGroup replaces the whole member list on every call.
// Members are never patched in place.
//
// Deterministic enumeration: ListGroupIDs returns ids in ascending binary
// order. The engine breaks similarity ties by this order.
//
// Paired writes: SaveGroupWithProfile commits members and profile in one
// transaction, so a group never holds a member whose attributes are
// missing from its profile.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package store
