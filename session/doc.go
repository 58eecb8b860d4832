// Package session drives one relay conversation: it owns the TaskState,
// tracks the active agent, runs activations and transfers, and serializes
// turns so that at most one reply is in flight.
//
// InMemoryStore keeps the live sessions of a process, keyed by id.
package session
