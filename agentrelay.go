// Package agentrelay wires a team of conversational agents into sessions that
// share one task state and hand the conversation to each other. Most
// applications:
//  1. Load a config.Config (config.NewLoader().Load())
//  2. Create a Relay with New, which builds the reply service, artifact store,
//     detector, logger and metrics from it
//  3. Serve Relay.Handler, or drive sessions directly with NewSession
//
// Every session gets a fresh Greeting and Finder agent, so records are never
// shared between users.
package agentrelay

import (
	"context"
	"errors"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/hupe1980/agentrelay/agent"
	"github.com/hupe1980/agentrelay/artifact"
	"github.com/hupe1980/agentrelay/config"
	"github.com/hupe1980/agentrelay/core"
	"github.com/hupe1980/agentrelay/logging"
	"github.com/hupe1980/agentrelay/metrics"
	"github.com/hupe1980/agentrelay/model"
	"github.com/hupe1980/agentrelay/perception"
	"github.com/hupe1980/agentrelay/session"
	"github.com/hupe1980/agentrelay/transport"
)

// TeamFunc builds the agents of one session. The first agent is not
// implicitly the entry agent; see config.SessionConfig.EntryAgent.
type TeamFunc func(llm model.Model, detector perception.Detector) []core.Agent

// Options overrides parts of what New builds from the configuration.
type Options struct {
	// Config defaults to config.Default().
	Config *config.Config
	Logger logging.Logger
	Model  model.Model
	// Artifacts replaces the configured artifact backend.
	Artifacts core.ArtifactStore
	Detector  perception.Detector
	// Registry receives the relay metrics and backs the metrics endpoint.
	Registry *prometheus.Registry
	Team     TeamFunc
}

// Relay owns the collaborators shared by all sessions.
type Relay struct {
	cfg       *config.Config
	logger    logging.Logger
	llm       model.Model
	artifacts core.ArtifactStore
	detector  perception.Detector
	registry  *prometheus.Registry
	metrics   *metrics.Collector
	team      TeamFunc
	sessions  *session.InMemoryStore
	closers   []func() error
}

// New creates a Relay.
func New(ctx context.Context, optFns ...func(o *Options)) (*Relay, error) {
	opts := Options{}
	for _, fn := range optFns {
		fn(&opts)
	}
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, &core.ConfigError{Op: "new relay", Err: err}
	}

	r := &Relay{
		cfg:       cfg,
		logger:    opts.Logger,
		llm:       opts.Model,
		artifacts: opts.Artifacts,
		detector:  opts.Detector,
		registry:  opts.Registry,
		team:      opts.Team,
		sessions:  session.NewInMemoryStore(),
	}

	var err error
	if r.logger == nil {
		if r.logger, err = NewLogger(cfg.Log); err != nil {
			return nil, err
		}
	}
	if r.llm == nil {
		if r.llm, err = NewModel(ctx, cfg.Model); err != nil {
			return nil, err
		}
	}
	if r.artifacts == nil {
		if err := r.openArtifacts(); err != nil {
			return nil, err
		}
	}
	if r.detector == nil && cfg.Perception.Endpoint != "" {
		r.detector, err = perception.NewHTTPDetector(cfg.Perception.Endpoint, func(o *perception.HTTPOptions) {
			o.Timeout = cfg.Perception.Timeout
			o.RateLimit = cfg.Perception.RateLimit
			o.Burst = cfg.Perception.Burst
			o.Logger = r.logger
		})
		if err != nil {
			return nil, err
		}
	}
	if cfg.Metrics.Enabled {
		if r.registry == nil {
			r.registry = prometheus.NewRegistry()
		}
		r.metrics = metrics.NewCollector(cfg.Metrics.Namespace, r.registry)
	}
	if r.team == nil {
		r.team = r.defaultTeam
	}

	r.logger.Info("relay.ready",
		"model", r.llm.Info().Name,
		"provider", r.llm.Info().Provider,
		"artifacts", cfg.Artifacts.Backend,
		"perception", r.detector != nil,
		"metrics", r.metrics != nil,
	)
	return r, nil
}

func (r *Relay) openArtifacts() error {
	ac := r.cfg.Artifacts
	switch ac.Backend {
	case "redis":
		store, err := artifact.NewRedisStore(func(o *artifact.RedisOptions) {
			o.Addr = ac.RedisAddr
			o.Password = ac.RedisPassword
			o.DB = ac.RedisDB
			o.TTL = ac.TTL
			o.MaxSize = ac.MaxSize
		})
		if err != nil {
			return err
		}
		r.artifacts = store
		r.closers = append(r.closers, store.Close)
	default:
		r.artifacts = artifact.NewInMemoryStore(func(o *artifact.InMemoryOptions) { o.MaxSize = ac.MaxSize })
	}
	return nil
}

func (r *Relay) defaultTeam(llm model.Model, detector perception.Detector) []core.Agent {
	sc := r.cfg.Session
	tune := func(o *agent.ModelAgentOptions) {
		o.MergeWindow = sc.MergeWindow
		o.MaxHistoryItems = sc.MaxHistoryItems
	}
	return []core.Agent{
		agent.NewGreeting(llm, tune),
		agent.NewFinder(llm, detector, tune),
	}
}

// Config returns the effective configuration.
func (r *Relay) Config() *config.Config { return r.cfg }

// Sessions returns the live sessions opened through Handler.
func (r *Relay) Sessions() *session.InMemoryStore { return r.sessions }

// NewSession builds a fresh team and task state for objectToFind and returns
// an unstarted session. The caller starts it with the entry agent and owns
// closing it.
func (r *Relay) NewSession(objectToFind string, sink session.Sink) (*session.Session, error) {
	registry, err := core.NewRegistry(r.team(r.llm, r.detector)...)
	if err != nil {
		return nil, err
	}
	if !registry.Has(r.cfg.Session.EntryAgent) {
		return nil, &core.ConfigError{Op: "new session", Name: r.cfg.Session.EntryAgent, Err: core.ErrUnknownAgent}
	}
	state, err := core.NewTaskState(objectToFind, registry)
	if err != nil {
		return nil, err
	}
	return session.New(state, func(o *session.Options) {
		o.Logger = r.logger
		o.Metrics = r.metrics
		o.Sink = sink
		o.Artifacts = r.artifacts
		o.MaxModelCalls = r.cfg.Session.MaxModelCalls
	})
}

// Handler serves the websocket endpoint and, when enabled, the metrics
// endpoint. Clients name the object in the "object" query parameter.
func (r *Relay) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle(r.cfg.Server.Path, transport.NewHandler(
		func(_ context.Context, req *http.Request, sink session.Sink) (*session.Session, error) {
			return r.NewSession(req.URL.Query().Get("object"), sink)
		},
		func(o *transport.Options) {
			o.EntryAgent = r.cfg.Session.EntryAgent
			o.OriginPatterns = r.cfg.Server.OriginPatterns
			o.ReadLimit = r.cfg.Server.ReadLimit
			o.TurnTimeout = r.cfg.Session.TurnTimeout
			o.Store = r.sessions
			o.Logger = r.logger
		},
	))
	if r.registry != nil {
		mux.Handle(r.cfg.Metrics.Path, promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{}))
	}
	return mux
}

// Close ends every live session and releases the artifact backend.
func (r *Relay) Close(ctx context.Context) error {
	errs := []error{r.sessions.CloseAll(ctx)}
	for _, c := range r.closers {
		errs = append(errs, c())
	}
	r.logger.Info("relay.closed")
	return errors.Join(errs...)
}
