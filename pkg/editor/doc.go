// Package editor implements the optimistic editing and reconciliation engine
// behind the hierarchical menu editor.
//
// An [Editor] exclusively owns a mutable [models.Menu] tree and keeps it
// responsive under continuous edits while persisting it to a remote
// [Authority] in the background. Edits never block on the network: every
// mutation updates the local tree immediately, and saves are driven by two
// independent channels, each with its own debounce timer, change fingerprint
// and in-flight bookkeeping:
//
//   - the basics channel persists the flat scalar fields of the menu
//     (title, price, toggles, the beverage policy) with a short quiet window;
//   - the structural channel persists the ordered section/dish tree with a
//     slightly longer window, since structural saves fan out into several
//     network calls.
//
// # Change detection
//
// A save is only issued when the canonical fingerprint of the persistable
// state differs from both the last successfully saved fingerprint and the
// fingerprint currently on the wire. Purely local UI state (expand/collapse
// flags, the search text) is excluded from the fingerprints, so toggling it
// never schedules a write and is never overwritten by a server response.
//
// # Reconciliation
//
// Sections and dishes created locally carry only a client id until their
// first successful structural save. The save sends the ordered section
// skeleton, zips the authority's same-order response with the sent snapshot
// by array position to recover client ids and attach server ids, then
// persists each section's dishes sequentially, since a section needs a confirmed
// server id before its dishes can be saved, which is why the per-section loop
// is deliberately not parallel. After full success the local tree is replaced
// by the tree rebuilt from the authoritative response and the structural
// fingerprint is recomputed from that rebuilt tree, absorbing any server-side
// normalization.
//
// Structural persistence is not atomic: when a later section fails, earlier
// sections stay committed on the server. The engine reports the error and
// leaves the saved fingerprint untouched, so the next edit or timer cycle
// retries from current state. No failure terminates the editing session.
//
// The Editor is safe for concurrent use; internally a single mutex serializes
// tree mutations and reconciliation merges, while network calls run outside
// the lock against send-time snapshots.
package editor
