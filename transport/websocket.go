package transport

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/agentrelay/core"
	"github.com/hupe1980/agentrelay/logging"
	"github.com/hupe1980/agentrelay/session"
)

// SessionFactory creates the session of a new connection. sink delivers
// agent output to the client and must be passed to session.Options.
type SessionFactory func(ctx context.Context, r *http.Request, sink session.Sink) (*session.Session, error)

// Options configures a Handler.
type Options struct {
	// EntryAgent is activated when the connection opens.
	EntryAgent     string
	OriginPatterns []string
	ReadLimit      int64
	// TurnTimeout bounds one input turn, including a transfer it triggers.
	TurnTimeout time.Duration
	// Store, when set, tracks the live sessions.
	Store  *session.InMemoryStore
	Logger logging.Logger
}

// Handler upgrades HTTP requests to WebSocket connections, one session each.
type Handler struct {
	newSession SessionFactory
	opts       Options
}

// NewHandler creates a Handler.
func NewHandler(factory SessionFactory, optFns ...func(o *Options)) *Handler {
	opts := Options{
		EntryAgent:  "Greeting",
		ReadLimit:   8 << 20,
		TurnTimeout: 60 * time.Second,
		Logger:      logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Handler{newSession: factory, opts: opts}
}

// conn serializes writes; the websocket connection allows one writer at a
// time.
type conn struct {
	ws *websocket.Conn
	mu sync.Mutex
}

func (c *conn) write(ctx context.Context, f Outbound) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return wsjson.Write(ctx, c.ws, f)
}

// Deliver implements session.Sink.
func (c *conn) Deliver(ctx context.Context, agent string, item core.Item) error {
	return c.write(ctx, Outbound{Type: FrameItem, Agent: agent, ItemID: item.ID, Text: item.Text()})
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ws, err := websocket.Accept(w, r, &websocket.AcceptOptions{OriginPatterns: h.opts.OriginPatterns})
	if err != nil {
		h.opts.Logger.Warn("transport.accept.failed", "remote", r.RemoteAddr, "error", err)
		return
	}
	ws.SetReadLimit(h.opts.ReadLimit)
	c := &conn{ws: ws}

	ctx := r.Context()
	if err := h.serve(ctx, r, c); err != nil && !isClosed(err) {
		h.opts.Logger.Warn("transport.connection.error", "remote", r.RemoteAddr, "error", err)
		_ = ws.Close(websocket.StatusInternalError, "internal error")
		return
	}
	_ = ws.Close(websocket.StatusNormalClosure, "")
}

func (h *Handler) serve(ctx context.Context, r *http.Request, c *conn) error {
	sess, err := h.newSession(ctx, r, c)
	if err != nil {
		_ = c.write(ctx, Outbound{Type: FrameError, Error: err.Error()})
		return fmt.Errorf("create session: %w", err)
	}
	if h.opts.Store != nil {
		h.opts.Store.Add(sess)
		defer func() { _ = h.opts.Store.Remove(context.WithoutCancel(ctx), sess.ID()) }()
	} else {
		defer func() { _ = sess.Close(context.WithoutCancel(ctx)) }()
	}

	logger := logging.With(h.opts.Logger, "session", sess.ID(), "remote", r.RemoteAddr)
	logger.Info("transport.session.open")
	defer logger.Info("transport.session.close")

	if err := sess.Start(ctx, h.opts.EntryAgent); err != nil {
		_ = c.write(ctx, Outbound{Type: FrameError, Error: err.Error()})
		return fmt.Errorf("start session: %w", err)
	}
	if err := c.write(ctx, Outbound{Type: FrameReady, Session: sess.ID(), Agent: sess.Current().Name()}); err != nil {
		return err
	}

	var (
		mu         sync.Mutex
		cancelTurn context.CancelFunc
	)
	frames := make(chan Inbound, 16)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer close(frames)
		for {
			var in Inbound
			if err := wsjson.Read(gctx, c.ws, &in); err != nil {
				return err
			}
			if in.Type == FrameCancel {
				mu.Lock()
				if cancelTurn != nil {
					cancelTurn()
				}
				mu.Unlock()
				continue
			}
			select {
			case frames <- in:
			case <-gctx.Done():
				return gctx.Err()
			}
		}
	})

	g.Go(func() error {
		for in := range frames {
			turnCtx, cancel := context.WithTimeout(gctx, h.opts.TurnTimeout)
			mu.Lock()
			cancelTurn = cancel
			mu.Unlock()

			out, err := h.handle(turnCtx, sess, in)

			mu.Lock()
			cancelTurn = nil
			mu.Unlock()
			cancel()

			if err != nil {
				logger.Warn("transport.frame.failed", "type", in.Type, "error", err)
				out = &Outbound{Type: FrameError, Error: err.Error()}
			}
			if out != nil {
				if err := c.write(gctx, *out); err != nil {
					return err
				}
			}
		}
		return nil
	})

	return g.Wait()
}

// handle runs one frame. Turn errors are reported to the client and keep the
// connection open.
func (h *Handler) handle(ctx context.Context, sess *session.Session, in Inbound) (*Outbound, error) {
	switch in.Type {
	case FrameInput:
		res, err := sess.HandleInput(ctx, in.Text)
		if err != nil {
			return nil, err
		}
		if res.TransferTo != "" {
			return &Outbound{Type: FrameTransferred, Agent: res.TransferTo, Text: core.TransferConfirmation(res.TransferTo)}, nil
		}
		return nil, nil
	case FrameImage:
		ref, err := sess.AttachImage(ctx, in.Name, in.Data)
		if err != nil {
			return nil, err
		}
		return &Outbound{Type: FrameImage, Ref: ref}, nil
	case FrameTransfer:
		text, err := sess.Transfer(ctx, in.Name)
		if err != nil {
			return nil, err
		}
		return &Outbound{Type: FrameTransferred, Agent: in.Name, Text: text}, nil
	default:
		return nil, fmt.Errorf("unknown frame type %q", in.Type)
	}
}

func isClosed(err error) bool {
	if errors.Is(err, context.Canceled) {
		return true
	}
	switch websocket.CloseStatus(err) {
	case websocket.StatusNormalClosure, websocket.StatusGoingAway:
		return true
	}
	return false
}
