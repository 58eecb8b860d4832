package agentrelay

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/agentrelay/agent"
	"github.com/hupe1980/agentrelay/config"
	"github.com/hupe1980/agentrelay/core"
	"github.com/hupe1980/agentrelay/logging"
	"github.com/hupe1980/agentrelay/model"
	"github.com/hupe1980/agentrelay/perception"
	"github.com/hupe1980/agentrelay/transport"
)

func mockConfig() *config.Config {
	cfg := config.Default()
	cfg.Model.Provider = "mock"
	return cfg
}

func newTestRelay(t *testing.T, cfg *config.Config, llm model.Model) *Relay {
	t.Helper()
	r, err := New(context.Background(), func(o *Options) {
		o.Config = cfg
		o.Model = llm
		o.Logger = logging.NoOpLogger{}
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = r.Close(context.Background()) })
	return r
}

func TestNewSessionRunsDefaultTeam(t *testing.T) {
	llm := model.NewMockModel("mock", "mock")
	r := newTestRelay(t, mockConfig(), llm)

	sess, err := r.NewSession("keys", nil)
	require.NoError(t, err)
	assert.Equal(t, []string{agent.FinderName, agent.GreetingName}, sess.State().Agents().Names())

	llm.EnqueueText("Hello!")
	require.NoError(t, sess.Start(context.Background(), r.Config().Session.EntryAgent))
	assert.Equal(t, agent.GreetingName, sess.Current().Name())

	llm.EnqueueCalls(core.FunctionCall{ID: "c1", Name: "transfer_to_agent", Arguments: `{"agent_name":"Finder"}`})
	llm.EnqueueText("Let's search.")
	_, err = sess.HandleInput(context.Background(), "help me look")
	require.NoError(t, err)
	assert.Equal(t, agent.FinderName, sess.Current().Name())
	assert.Equal(t, agent.GreetingName, sess.State().PrevAgent)
}

func TestNewSessionFreshAgentsPerSession(t *testing.T) {
	r := newTestRelay(t, mockConfig(), nil)

	a, err := r.NewSession("keys", nil)
	require.NoError(t, err)
	b, err := r.NewSession("keys", nil)
	require.NoError(t, err)

	ga, err := a.State().Agents().Lookup(agent.GreetingName)
	require.NoError(t, err)
	gb, err := b.State().Agents().Lookup(agent.GreetingName)
	require.NoError(t, err)
	assert.NotSame(t, ga, gb)
}

func TestNewSessionErrors(t *testing.T) {
	r := newTestRelay(t, mockConfig(), nil)
	_, err := r.NewSession("", nil)
	assert.ErrorIs(t, err, core.ErrMissingObject)

	cfg := mockConfig()
	cfg.Session.EntryAgent = "Nobody"
	r = newTestRelay(t, cfg, nil)
	_, err = r.NewSession("keys", nil)
	assert.True(t, core.IsConfigError(err))
	assert.ErrorIs(t, err, core.ErrUnknownAgent)
}

func TestCustomTeam(t *testing.T) {
	r, err := New(context.Background(), func(o *Options) {
		o.Config = mockConfig()
		o.Logger = logging.NoOpLogger{}
		o.Team = func(llm model.Model, _ perception.Detector) []core.Agent {
			return []core.Agent{agent.NewGreeting(llm), agent.NewModelAgent("Helper", llm)}
		}
	})
	require.NoError(t, err)

	sess, err := r.NewSession("phone", nil)
	require.NoError(t, err)
	assert.Equal(t, []string{agent.GreetingName, "Helper"}, sess.State().Agents().Names())
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	cfg := mockConfig()
	cfg.Model.Provider = "carrier-pigeon"
	_, err := New(context.Background(), func(o *Options) { o.Config = cfg })
	require.Error(t, err)
	assert.True(t, core.IsConfigError(err))
}

func TestNewModel(t *testing.T) {
	m, err := NewModel(context.Background(), config.ModelConfig{Provider: "mock", Name: "scripted"})
	require.NoError(t, err)
	assert.Equal(t, "scripted", m.Info().Name)

	m, err = NewModel(context.Background(), config.ModelConfig{Provider: "openai", APIKey: "sk-test", Name: "gpt-4o"})
	require.NoError(t, err)
	assert.Equal(t, "openai", m.Info().Provider)

	m, err = NewModel(context.Background(), config.ModelConfig{Provider: "anthropic", APIKey: "test"})
	require.NoError(t, err)
	assert.Equal(t, "anthropic", m.Info().Provider)

	_, err = NewModel(context.Background(), config.ModelConfig{Provider: "nope"})
	assert.True(t, core.IsConfigError(err))
}

func TestNewLogger(t *testing.T) {
	l, err := NewLogger(config.LogConfig{Level: "debug", Format: "zap"})
	require.NoError(t, err)
	assert.IsType(t, &logging.ZapAdapter{}, l)

	l, err = NewLogger(config.LogConfig{Level: "warn", Format: "text"})
	require.NoError(t, err)
	assert.IsType(t, &logging.RelayLogger{}, l)

	_, err = NewLogger(config.LogConfig{Level: "loud"})
	assert.True(t, core.IsConfigError(err))
}

func TestRedisArtifacts(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := mockConfig()
	cfg.Artifacts.Backend = "redis"
	cfg.Artifacts.RedisAddr = mr.Addr()
	r := newTestRelay(t, cfg, nil)

	sess, err := r.NewSession("keys", nil)
	require.NoError(t, err)
	ref, err := sess.AttachImage(context.Background(), "frame-1", []byte("jpeg"))
	require.NoError(t, err)
	assert.Equal(t, "artifact://frame-1", ref)
	assert.True(t, mr.Exists("agentrelay:artifact:"+sess.ID()+":frame-1"))

	require.NoError(t, sess.Close(context.Background()))
	assert.False(t, mr.Exists("agentrelay:artifact:"+sess.ID()+":frame-1"))
}

func TestRedisUnavailable(t *testing.T) {
	cfg := mockConfig()
	cfg.Artifacts.Backend = "redis"
	cfg.Artifacts.RedisAddr = "127.0.0.1:1"
	_, err := New(context.Background(), func(o *Options) { o.Config = cfg; o.Logger = logging.NoOpLogger{} })
	require.Error(t, err)
}

func TestHandlerServesSessionsAndMetrics(t *testing.T) {
	llm := model.NewMockModel("mock", "mock")
	r := newTestRelay(t, mockConfig(), llm)
	server := httptest.NewServer(r.Handler())
	defer server.Close()

	ctx := context.Background()
	llm.EnqueueText("Hi there!")
	conn, _, err := websocket.Dial(ctx, "ws"+strings.TrimPrefix(server.URL, "http")+"/ws?object=keys", nil)
	require.NoError(t, err)
	defer func() { _ = conn.CloseNow() }()

	var out transport.Outbound
	require.NoError(t, wsjson.Read(ctx, conn, &out))
	assert.Equal(t, "Hi there!", out.Text)
	require.NoError(t, wsjson.Read(ctx, conn, &out))
	assert.Equal(t, transport.FrameReady, out.Type)
	assert.Equal(t, 1, r.Sessions().Len())

	resp, err := http.Get(server.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "agentrelay_sessions_active 1")
	assert.Contains(t, string(body), `agentrelay_agent_activations_total{agent="Greeting"} 1`)
}
