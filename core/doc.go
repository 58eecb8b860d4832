// Package core provides the foundational domain types and interfaces of
// agentrelay, the handoff layer that lets a team of conversational agents
// share one live session. It defines:
//
//   - Items, Content and Parts (the entries of a conversation record)
//   - Record (an agent-owned, ordered, ID-unique conversation log)
//   - TaskState (the session-scoped record of task progress shared by all agents)
//   - Agent and Registry (the capability interface and the fixed name lookup)
//   - TurnContext / ToolContext (scoped execution state for one turn)
//   - The error taxonomy (configuration errors, turn failures)
//
// The package keeps orchestration (session), merge policy (handoff) and
// concrete agents (agent) out of scope, exposing small types those packages
// build on.
package core
