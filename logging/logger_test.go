package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]LogLevel{"debug": LogLevelDebug, "INFO": LogLevelInfo, "": LogLevelInfo, "warning": LogLevelWarn, "error": LogLevelError}
	for in, want := range cases {
		got, err := ParseLevel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseLevel("loud")
	assert.Error(t, err)
}

func TestRelayLoggerKeyValues(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(&LoggerConfig{Level: LogLevelDebug, Format: "json", Output: &buf}).
		WithComponent("session").
		WithContext("session_id", "sess-1")

	l.Info("turn.commit", "agent", "Greeting", "items", 3)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "turn.commit", entry["msg"])
	assert.Equal(t, "session", entry["component"])
	assert.Equal(t, "sess-1", entry["session_id"])
	assert.Equal(t, "Greeting", entry["agent"])
	assert.EqualValues(t, 3, entry["items"])
}

func TestRelayLoggerLevelFilter(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(&LoggerConfig{Level: LogLevelWarn, Format: "text", Output: &buf})
	l.Info("handoff.activate")
	assert.Empty(t, buf.String())
	l.Warn("handoff.anomaly", "reason", "missing id")
	assert.Contains(t, buf.String(), "handoff.anomaly")
}

func TestRelayLoggerContextOrder(t *testing.T) {
	var buf bytes.Buffer
	base := NewLogger(&LoggerConfig{Level: LogLevelDebug, Format: "text", Output: &buf})
	l := With(With(base, "session", "sess-1", "turn", "t-1"), "function_call_id", "c1")
	for i := 0; i < 20; i++ {
		l.Info("tool.call")
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 20)
	for _, line := range lines {
		assert.Contains(t, line, "session=sess-1 turn=t-1 function_call_id=c1")
	}

	buf.Reset()
	base.WithContext("session", "a").WithContext("turn", "b").WithContext("session", "c").Info("x")
	assert.Contains(t, buf.String(), "session=c turn=b")
}

type recordingLogger struct {
	NoOpLogger
	args []any
}

func (r *recordingLogger) Info(_ string, args ...any) { r.args = args }

func TestWith(t *testing.T) {
	var buf bytes.Buffer
	l := With(NewLogger(&LoggerConfig{Level: LogLevelDebug, Format: "text", Output: &buf}), "remote", "10.0.0.1")
	l.Info("transport.session.open", "session", "sess-1")
	assert.Contains(t, buf.String(), "remote=10.0.0.1")
	assert.Contains(t, buf.String(), "session=sess-1")

	core, logs := observer.New(zap.DebugLevel)
	With(NewZapAdapter(zap.New(core)), "remote", "10.0.0.2").Info("transport.session.open")
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "10.0.0.2", logs.All()[0].ContextMap()["remote"])

	rec := &recordingLogger{}
	With(rec, "a", 1).Info("msg", "b", 2)
	assert.Equal(t, []any{"a", 1, "b", 2}, rec.args)

	assert.Equal(t, NoOpLogger{}, With(nil, "a", 1))
}

func TestZapAdapter(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	z := NewZapAdapter(zap.New(core)).With("component", "handoff")

	z.Warn("handoff.anomaly", "item_id", "", "owner", "Greeting")

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "handoff.anomaly", entry.Message)
	fields := entry.ContextMap()
	assert.Equal(t, "handoff", fields["component"])
	assert.Equal(t, "Greeting", fields["owner"])
}

func TestNoOpLogger(t *testing.T) {
	var l Logger = NoOpLogger{}
	l.Info("x", "k", "v")
}
