// Package notify tells live-reload listeners that a build finished. The
// Socket.IO notifier connects once and reuses the connection for every
// later build of a watch session.
package notify

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/zishang520/engine.io-client-go/transports"
	"github.com/zishang520/engine.io/v2/types"
	"github.com/zishang520/socket.io-client-go/socket"

	"github.com/vk/pigeon/internal/config"
	"github.com/vk/pigeon/internal/ctxlog"
)

// DefaultConnectTimeout bounds the wait for the first connection.
const DefaultConnectTimeout = 10 * time.Second

// Event describes a finished build.
type Event struct {
	RunID    string        `json:"run_id"`
	Articles int           `json:"articles"`
	Duration time.Duration `json:"duration"`
	Time     time.Time     `json:"time"`
}

func (e Event) payload() map[string]any {
	return map[string]any{
		"run_id":      e.RunID,
		"articles":    e.Articles,
		"duration_ms": e.Duration.Milliseconds(),
		"time":        e.Time.UTC().Format(time.RFC3339),
	}
}

// Notifier delivers build events.
type Notifier interface {
	Notify(ctx context.Context, ev Event) error
	Close() error
}

// Nop discards every event.
type Nop struct{}

func (Nop) Notify(context.Context, Event) error { return nil }
func (Nop) Close() error                        { return nil }

// emitter is the part of a Socket.IO client the notifier uses.
type emitter interface {
	emit(event string, data any)
	disconnect()
}

type dialFunc func(ctx context.Context, cfg *config.Notify) (emitter, error)

// SocketIO emits one event per build on a Socket.IO namespace.
type SocketIO struct {
	cfg     config.Notify
	timeout time.Duration
	dial    dialFunc

	mu     sync.Mutex
	client emitter
}

// New validates cfg and returns a notifier. Nothing is dialled until the
// first event. A nil cfg yields Nop.
func New(cfg *config.Notify) (Notifier, error) {
	if cfg == nil {
		return Nop{}, nil
	}
	u, err := url.Parse(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid notify url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid notify url %q: scheme and host are required", cfg.URL)
	}
	c := *cfg
	if c.Event == "" {
		c.Event = config.DefaultNotifyEvent
	}
	if c.Namespace == "" {
		c.Namespace = "/"
	}
	return &SocketIO{cfg: c, timeout: DefaultConnectTimeout, dial: dialSocketIO}, nil
}

// Notify emits ev, connecting first if needed.
func (n *SocketIO) Notify(ctx context.Context, ev Event) error {
	logger := ctxlog.FromContext(ctx).With("notify_url", n.cfg.URL, "event", n.cfg.Event)

	n.mu.Lock()
	defer n.mu.Unlock()

	if n.client == nil {
		dialCtx, cancel := context.WithTimeout(ctx, n.timeout)
		client, err := n.dial(dialCtx, &n.cfg)
		cancel()
		if err != nil {
			return fmt.Errorf("notify: %w", err)
		}
		n.client = client
	}

	logger.Debug("Emitting build event.", "run_id", ev.RunID, "articles", ev.Articles)
	n.client.emit(n.cfg.Event, ev.payload())
	return nil
}

// Close disconnects the client, if any.
func (n *SocketIO) Close() error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.client != nil {
		n.client.disconnect()
		n.client = nil
	}
	return nil
}

type socketClient struct {
	io *socket.Socket
}

func (c *socketClient) emit(event string, data any) { c.io.Emit(event, data) }
func (c *socketClient) disconnect()                 { c.io.Disconnect() }

// dialSocketIO opens a websocket-only Socket.IO connection and waits for the
// connect or connect_error event.
func dialSocketIO(ctx context.Context, cfg *config.Notify) (emitter, error) {
	logger := ctxlog.FromContext(ctx).With("notify_url", cfg.URL, "namespace", cfg.Namespace)
	logger.Debug("Connecting to live-reload server...")

	parsedURL, err := url.Parse(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse URL: %w", err)
	}

	opts := socket.DefaultOptions()
	if parsedURL.Path != "" {
		opts.SetPath(parsedURL.Path)
	}
	if parsedURL.Scheme == "https" && parsedURL.Query().Get("insecure") == "true" {
		logger.Warn("Skipping TLS certificate verification")
		opts.SetTLSClientConfig(&tls.Config{InsecureSkipVerify: true})
	}
	opts.SetTransports(types.NewSet(transports.WebSocket))

	connectChan := make(chan error, 1)

	baseURL := fmt.Sprintf("%s://%s", parsedURL.Scheme, parsedURL.Host)
	manager := socket.NewManager(baseURL, opts)
	io := manager.Socket(cfg.Namespace, opts)

	io.Once(types.EventName("connect"), func(...any) {
		logger.Info("Connected to live-reload server.", "sid", io.Id())
		select {
		case connectChan <- nil:
		default:
		}
	})
	io.Once(types.EventName("connect_error"), func(errs ...any) {
		err := errors.New("connect_error")
		if len(errs) > 0 {
			if e, ok := errs[0].(error); ok {
				err = e
			}
		}
		select {
		case connectChan <- err:
		default:
		}
	})

	io.Connect()

	select {
	case err := <-connectChan:
		if err != nil {
			io.Disconnect()
			return nil, fmt.Errorf("socket.io connection failed: %w", err)
		}
		return &socketClient{io: io}, nil
	case <-ctx.Done():
		io.Disconnect()
		return nil, fmt.Errorf("waiting for socket.io connection: %w", ctx.Err())
	}
}
