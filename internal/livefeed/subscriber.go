package livefeed

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/gorilla/websocket"

	"kudos/internal/logging"
)

const maxFrameBytes = 4096

// Options configures a subscriber.
type Options struct {
	URL                  string
	PingInterval         time.Duration
	MaxReconnectInterval time.Duration
	HandshakeTimeout     time.Duration
	Logger               *slog.Logger
}

// Subscriber connects to one change feed endpoint.
type Subscriber struct {
	url              string
	pingInterval     time.Duration
	pongWait         time.Duration
	maxReconnect     time.Duration
	handshakeTimeout time.Duration
	logger           *slog.Logger
}

// NewSubscriber builds a subscriber. Zero durations get conservative
// defaults.
func NewSubscriber(opts Options) *Subscriber {
	ping := opts.PingInterval
	if ping <= 0 {
		ping = 30 * time.Second
	}
	maxReconnect := opts.MaxReconnectInterval
	if maxReconnect <= 0 {
		maxReconnect = 60 * time.Second
	}
	handshake := opts.HandshakeTimeout
	if handshake <= 0 {
		handshake = 10 * time.Second
	}
	return &Subscriber{
		url:              opts.URL,
		pingInterval:     ping,
		pongWait:         ping * 2,
		maxReconnect:     maxReconnect,
		handshakeTimeout: handshake,
		logger:           logging.NewComponentLogger(opts.Logger, "livefeed"),
	}
}

// Subscription is the caller's handle on an active feed. Unsubscribe tears
// down the connection and read loop; after it returns the event callback will
// not fire again.
type Subscription struct {
	cancel context.CancelFunc
	wg     sync.WaitGroup
	once   sync.Once

	mu    sync.Mutex
	alive bool
}

// Unsubscribe stops the feed. Safe to call more than once; only the first
// call does the teardown and later calls return after it completes.
func (s *Subscription) Unsubscribe() {
	s.once.Do(func() {
		s.mu.Lock()
		s.alive = false
		s.mu.Unlock()
		s.cancel()
	})
	s.wg.Wait()
}

func (s *Subscription) emit(onEvent func()) {
	s.mu.Lock()
	alive := s.alive
	s.mu.Unlock()
	if alive {
		onEvent()
	}
}

// Subscribe opens the feed and invokes onEvent for every received frame.
// Connection failures are absorbed: the loop keeps reconnecting with
// exponential backoff until Unsubscribe or ctx cancellation, so a store
// outage degrades service instead of failing it.
func (s *Subscriber) Subscribe(ctx context.Context, onEvent func()) (*Subscription, error) {
	if s.url == "" {
		return nil, errors.New("livefeed: url not configured")
	}
	if onEvent == nil {
		return nil, errors.New("livefeed: event callback required")
	}

	runCtx, cancel := context.WithCancel(ctx)
	sub := &Subscription{cancel: cancel, alive: true}
	sub.wg.Add(1)
	go func() {
		defer sub.wg.Done()
		s.run(runCtx, sub, onEvent)
	}()
	return sub, nil
}

func (s *Subscriber) run(ctx context.Context, sub *Subscription, onEvent func()) {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = time.Second
	policy.MaxInterval = s.maxReconnect
	policy.MaxElapsedTime = 0

	for {
		if ctx.Err() != nil {
			return
		}

		conn, err := s.dial(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			wait := policy.NextBackOff()
			logging.WarnWithContext(s.logger, "change feed unavailable; retrying", "livefeed_connect_failed",
				logging.Error(err),
				logging.Duration("retry_in", wait),
				logging.String(logging.FieldErrorHint, "check store.base_url and network reachability"),
				logging.String(logging.FieldImpact, "notifications arrive on periodic refresh only"),
			)
			select {
			case <-ctx.Done():
				return
			case <-time.After(wait):
			}
			continue
		}

		policy.Reset()
		s.logger.Info("change feed connected", logging.String(logging.FieldEventType, "livefeed_connected"))
		s.pump(ctx, conn, sub, onEvent)
		conn.Close()
		if ctx.Err() != nil {
			return
		}
		s.logger.Info("change feed disconnected", logging.String(logging.FieldEventType, "livefeed_disconnected"))
	}
}

func (s *Subscriber) dial(ctx context.Context) (*websocket.Conn, error) {
	dialer := websocket.Dialer{HandshakeTimeout: s.handshakeTimeout}
	conn, resp, err := dialer.DialContext(ctx, s.url, nil)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	return conn, err
}

// pump reads frames until the connection drops or ctx is cancelled. Frame
// payloads are discarded; a frame only means "something changed, reload".
func (s *Subscriber) pump(ctx context.Context, conn *websocket.Conn, sub *Subscription, onEvent func()) {
	done := make(chan struct{})
	defer close(done)

	// Unblock ReadMessage on cancellation and keep the connection alive
	// with pings while it lasts.
	go func() {
		ticker := time.NewTicker(s.pingInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				conn.Close()
				return
			case <-done:
				return
			case <-ticker.C:
				deadline := time.Now().Add(s.pingInterval / 2)
				if err := conn.WriteControl(websocket.PingMessage, nil, deadline); err != nil {
					conn.Close()
					return
				}
			}
		}
	}()

	conn.SetReadLimit(maxFrameBytes)
	_ = conn.SetReadDeadline(time.Now().Add(s.pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(s.pongWait))
	})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
		_ = conn.SetReadDeadline(time.Now().Add(s.pongWait))
		sub.emit(onEvent)
	}
}
