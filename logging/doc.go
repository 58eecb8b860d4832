// Package logging provides the minimal logging interface used across
// agentrelay and adapters for slog and zap.
//
// The Logger interface defines leveled methods taking a message plus key/value
// pairs. This package includes:
//
//   - Logger interface for dependency injection
//   - SlogAdapter and RelayLogger built on Go's structured logging
//   - ZapAdapter for deployments that already run zap
//   - NoOpLogger for silent operation (testing, minimal setups)
//
// Usage:
//
//	logger := logging.NewSlogLogger(logging.LogLevelInfo, "json", false)
//	sess, err := session.New(state, func(o *session.Options) { o.Logger = logger })
//
// Messages are short dotted event names ("handoff.merge", "turn.commit") so
// they can be filtered without parsing free text.
package logging
