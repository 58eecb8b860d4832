// Package agent contains the agent implementations of a relay session.
//
//  1. BaseAgent owns an agent's record and runs the activation lifecycle:
//     merge the previous agent's recent history, then append a grounding item
//     carrying the task state summary.
//  2. ModelAgent adds a reply-service backed turn loop with tool calling and
//     staged task state writes.
//  3. Greeting is the entry agent of the object finder deployment.
//
// Turns are all-or-nothing: a turn that fails leaves both the record and the
// task state as they were.
package agent
