// Package session implements multi-frame vote sessions for streaming clients.
//
// A client that sends one frame at a time cannot use the per-request voting
// in package pipeline. Instead it creates a session, posts frames as it
// recognizes them, and reads the session's consensus.
//
// The package has three layers:
//
//   - Store: a generic key-value store with per-entry expiry and an
//     injectable clock. It is safe for concurrent use.
//   - Confirmer: a sliding window over the most recent frames. Once the
//     window is full, the modal code is confirmed when its share of the
//     window reaches the threshold. The same code is not confirmed again
//     within the debounce interval.
//   - Manager: sessions keyed by random UUIDs, each owning a Confirmer,
//     stored in a Store with an absolute lifetime counted from creation.
//
// The voting itself is vote.Recognition; this package only keeps state.
package session
