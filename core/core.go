package core

import "github.com/hupe1980/agentrelay/logging"

// logScope tags every entry of a turn or tool call with the identifiers the
// scope was opened with.
type logScope struct {
	logger logging.Logger
}

func newLogScope(l logging.Logger, args ...any) *logScope {
	return &logScope{logger: logging.With(l, args...)}
}

// Logger returns the scoped logger.
func (s *logScope) Logger() logging.Logger { return s.logger }

func (s *logScope) LogDebug(msg string, args ...any) { s.logger.Debug(msg, args...) }

func (s *logScope) LogInfo(msg string, args ...any) { s.logger.Info(msg, args...) }

func (s *logScope) LogWarn(msg string, args ...any) { s.logger.Warn(msg, args...) }

func (s *logScope) LogError(msg string, args ...any) { s.logger.Error(msg, args...) }
