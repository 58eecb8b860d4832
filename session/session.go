package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/hupe1980/agentrelay/core"
	"github.com/hupe1980/agentrelay/logging"
	"github.com/hupe1980/agentrelay/metrics"
)

var (
	// ErrNotStarted is returned for inputs received before Start.
	ErrNotStarted = errors.New("session not started")
	// ErrAlreadyStarted is returned when Start is called twice.
	ErrAlreadyStarted = errors.New("session already started")
	// ErrClosed is returned for calls after Close.
	ErrClosed = errors.New("session closed")
	// ErrEmptyInput is returned for blank user input.
	ErrEmptyInput = errors.New("empty input")
)

// Sink receives the items agents produce for the user, in order.
type Sink interface {
	Deliver(ctx context.Context, agent string, item core.Item) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(ctx context.Context, agent string, item core.Item) error

// Deliver implements Sink.
func (f SinkFunc) Deliver(ctx context.Context, agent string, item core.Item) error {
	return f(ctx, agent, item)
}

// Options configures a Session.
type Options struct {
	// ID defaults to a fresh UUID.
	ID      string
	Logger  logging.Logger
	Metrics *metrics.Collector
	// Sink receives assistant text items; nil discards them.
	Sink      Sink
	Artifacts core.ArtifactStore
	// MaxModelCalls bounds reply service calls per turn; zero is unlimited.
	MaxModelCalls int
}

// Session is one conversation between a user and a team of agents.
//
// All operations take the turn lock, so activation, transfer and reply
// generation never overlap. A reply that is cancelled does not roll back
// what was committed before it started.
type Session struct {
	id    string
	state *core.TaskState
	opts  Options

	mu      sync.Mutex
	current core.Agent
	closed  bool
}

// New creates a session around state. The state's registry must contain
// every agent the session may activate.
func New(state *core.TaskState, optFns ...func(o *Options)) (*Session, error) {
	if state == nil {
		return nil, &core.ConfigError{Op: "new session", Err: errors.New("task state is required")}
	}
	opts := Options{
		ID:            core.NewID(),
		Logger:        logging.NoOpLogger{},
		MaxModelCalls: 8,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}

	s := &Session{id: opts.ID, state: state, opts: opts}
	opts.Metrics.SessionOpened()
	opts.Logger.Info("session.open", "session", s.id, "object_to_find", state.ObjectToFind(), "agents", state.Agents().Names())
	return s, nil
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// State returns the shared task state. Callers must not mutate it while a
// turn is running.
func (s *Session) State() *core.TaskState { return s.state }

// Current returns the active agent, or nil before Start.
func (s *Session) Current() core.Agent {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Start activates the named entry agent. There is no previous agent, so no
// history is merged.
func (s *Session) Start(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}
	if s.current != nil {
		return ErrAlreadyStarted
	}
	next, err := s.state.Agents().Lookup(name)
	if err != nil {
		s.opts.Logger.Error("session.start.failed", "session", s.id, "agent", name, "error", err)
		return err
	}
	return s.activate(ctx, next)
}

// HandleInput runs one user turn on the active agent. A transfer requested
// during the turn is carried out before HandleInput returns.
func (s *Session) HandleInput(ctx context.Context, text string) (*core.TurnResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ready(); err != nil {
		return nil, err
	}
	if text == "" {
		return nil, ErrEmptyInput
	}

	agent := s.current
	input := core.NewUserItem(text)
	res, err := s.runTurn(ctx, agent, &input, core.ToolChoiceAuto)
	if res == nil {
		return nil, err
	}
	// A committed transfer is carried out even when delivery failed, so the
	// record and the active agent agree.
	if res.TransferTo != "" {
		if _, terr := s.transfer(ctx, res.TransferTo); terr != nil {
			err = errors.Join(err, terr)
		}
	}
	return res, err
}

// Transfer hands the session to the named agent outside of a model turn and
// returns the confirmation text. An unknown name is a configuration error and
// leaves the task state unchanged.
func (s *Session) Transfer(ctx context.Context, name string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ready(); err != nil {
		return "", err
	}
	return s.transfer(ctx, name)
}

// AttachImage stores an image of the current scene as a session artifact and
// records its reference as the task's object image.
func (s *Session) AttachImage(ctx context.Context, name string, data []byte) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return "", ErrClosed
	}
	if s.opts.Artifacts == nil {
		return "", core.ErrNoArtifactStore
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if name == "" {
		name = core.NewID()
	}
	if err := s.opts.Artifacts.Save(s.id, name, data); err != nil {
		return "", fmt.Errorf("attach image: %w", err)
	}

	ref := core.ArtifactRef(name)
	s.state.Apply(core.TaskStateDelta{ObjectImage: &ref})
	s.opts.Metrics.RecordArtifact()
	s.opts.Logger.Info("session.image.attached", "session", s.id, "artifact", name, "bytes", len(data))
	return ref, nil
}

// Close ends the session and discards its artifacts. The task state is not
// persisted.
func (s *Session) Close(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	s.opts.Metrics.SessionClosed()

	var err error
	if cleaner, ok := s.opts.Artifacts.(interface{ DeleteSession(string) error }); ok {
		err = cleaner.DeleteSession(s.id)
	}
	s.opts.Logger.Info("session.close", "session", s.id)
	return err
}

func (s *Session) ready() error {
	if s.closed {
		return ErrClosed
	}
	if s.current == nil {
		return ErrNotStarted
	}
	return nil
}

func (s *Session) newTurn(ctx context.Context) *core.TurnContext {
	return core.NewTurnContext(ctx, s.id, s.state, s.opts.Artifacts, s.opts.MaxModelCalls, s.opts.Logger)
}

// transfer records the active agent as previous, resolves the target and
// activates it. Lookup happens first so that an unknown name changes nothing.
func (s *Session) transfer(ctx context.Context, name string) (string, error) {
	next, err := s.state.Agents().Lookup(name)
	if err != nil {
		s.opts.Logger.Error("session.transfer.failed", "session", s.id, "to_agent", name, "error", err)
		return "", err
	}

	from := ""
	if s.current != nil {
		from = s.current.Name()
		s.state.PrevAgent = from
	}
	s.opts.Metrics.RecordTransfer(from, name)
	s.opts.Logger.Info("session.transfer", "session", s.id, "from_agent", from, "to_agent", name)

	return core.TransferConfirmation(name), s.activate(ctx, next)
}

// activate makes next current, runs its activation and the reply that
// follows it. The reply may not call tools.
func (s *Session) activate(ctx context.Context, next core.Agent) error {
	tc := s.newTurn(ctx)
	report, err := next.Activate(tc)
	if err != nil {
		s.opts.Logger.Error("session.activate.failed", "session", s.id, "agent", next.Name(), "error", err)
		return err
	}
	s.current = next
	s.opts.Metrics.RecordActivation(next.Name(), report.Merged, report.Anomalies)

	_, err = s.runTurn(ctx, next, nil, core.ToolChoiceNone)
	return err
}

func (s *Session) runTurn(ctx context.Context, agent core.Agent, input *core.Item, choice core.ToolChoice) (*core.TurnResult, error) {
	start := time.Now()
	res, err := agent.HandleTurn(s.newTurn(ctx), input, choice)
	if err != nil {
		status := metrics.StatusError
		if core.IsConfigError(err) {
			status = metrics.StatusConfig
		}
		s.opts.Metrics.RecordTurn(agent.Name(), status, time.Since(start))
		s.opts.Logger.Error("session.turn.failed", "session", s.id, "agent", agent.Name(), "error", err)
		return nil, err
	}
	s.opts.Metrics.RecordTurn(agent.Name(), metrics.StatusOK, time.Since(start))

	for _, it := range res.Items {
		for _, fr := range it.GetFunctionResponses() {
			s.opts.Metrics.RecordToolCall(agent.Name(), fr.Name, fr.Error != "")
		}
	}
	if err := s.deliver(ctx, agent.Name(), res.Items); err != nil {
		return res, err
	}
	return res, nil
}

// deliver forwards assistant text to the sink.
func (s *Session) deliver(ctx context.Context, agent string, items []core.Item) error {
	if s.opts.Sink == nil {
		return nil
	}
	for _, it := range items {
		if it.Role() != core.RoleAssistant || it.Text() == "" {
			continue
		}
		if err := s.opts.Sink.Deliver(ctx, agent, it); err != nil {
			return fmt.Errorf("deliver item %s: %w", it.ID, err)
		}
	}
	return nil
}
