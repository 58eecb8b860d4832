// Package handoff implements the context merge run on every agent activation
// and the grounding item that restates the shared task state to the newly
// active agent.
//
// Merge copies a filtered, truncated window of the previous agent's record
// into the next agent's record. Instruction items stay private to their
// owner, tool items travel with the conversation, and identifiers already
// present in the destination are skipped so repeated round trips between the
// same agents never duplicate history.
package handoff
