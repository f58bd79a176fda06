// Package engine implements the linkage matching engine.
//
// The engine takes a batch of records and files each one into a group that
// represents one real-world party, persisting member lists and attribute
// profiles through a Store.
//
// ARCHITECTURE:
//
// Single-Writer Batches:
// A batch runs to completion in the calling goroutine. Concurrent Run
// calls on one Engine are serialized, so profile read-modify-write cycles
// never interleave.
//
// Pass Pipeline:
// Pending records sit on a worklist. Each pass drains the worklist in
// input order and keeps only the records it did not claim:
//  1. founder: Customers opening a business start a new group
//  2. customer: identity re-encounter, then similarity, then new group
//  3. bill-payed: Counter-Parties paid via billPay join the business owner
//  4. business: Business rows join the group of their declared owner
//  5. counter-party: remaining Counter-Parties join their counterparty
//
// Records left after pass 5 are orphans. They are reported in the Result
// and never written.
//
// CRITICAL PATTERNS:
//
// Deterministic Enumeration:
// Groups are scanned in ascending id order. Similarity ties and anchor
// lookups resolve to the lowest id.
//
// Canonical Row Scoring:
// Similarity is measured against profile row 0 only.
//
// Paired Writes:
// A Customer assignment writes members and profile in one store call.
package engine
