// Package artifact contains implementations of core.ArtifactStore used to hold
// camera frames and other binary attachments of a live session. TaskState only
// ever stores a reference (core.ArtifactRef) to an artifact, never the bytes.
//
// Artifacts are scoped by session identifier and are discarded when the
// session ends (see DeleteSession); nothing survives across sessions.
//
// Two backends are provided:
//   - InMemoryStore for single-process deployments, tests and examples
//   - RedisStore for deployments that run several transport replicas
package artifact
