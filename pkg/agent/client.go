// Package agent implements the client side of the agent-server protocol:
// JSON request/response frames over a single WebSocket connection, with
// unsolicited notification frames and ping-based latency measurement.
package agent

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/tradeterm-lab/tradeterm/internal/logger"
	"github.com/tradeterm-lab/tradeterm/internal/types"
	"github.com/tradeterm-lab/tradeterm/pkg/errors"
)

const (
	methodGetOhlcv     = "get_ohlcv"
	methodNotification = "notification"
)

// Config configures the agent client connection.
type Config struct {
	// URL is the WebSocket endpoint of the agent server.
	URL string
	// HandshakeTimeout bounds the initial dial.
	HandshakeTimeout time.Duration
	// WriteTimeout bounds every outgoing frame.
	WriteTimeout time.Duration
	// PingInterval is how often a latency ping is sent. Zero disables pings.
	PingInterval time.Duration
	// OnNotification receives unsolicited server messages.
	OnNotification func(message string)
	// OnLatency receives measured ping round-trip times.
	OnLatency func(rtt time.Duration)
}

// DefaultConfig returns a connection config for the given endpoint.
func DefaultConfig(url string) Config {
	return Config{
		URL:              url,
		HandshakeTimeout: 10 * time.Second,
		WriteTimeout:     10 * time.Second,
		PingInterval:     15 * time.Second,
	}
}

type wireParams struct {
	Asset    string `json:"asset,omitempty"`
	Interval string `json:"interval,omitempty"`
	Message  string `json:"message,omitempty"`
}

type wireRequest struct {
	ID     string     `json:"id"`
	Method string     `json:"method"`
	Params wireParams `json:"params"`
}

type wireMessage struct {
	ID     string        `json:"id,omitempty"`
	Method string        `json:"method,omitempty"`
	Result []types.Ohlcv `json:"result,omitempty"`
	Error  string        `json:"error,omitempty"`
	Params wireParams    `json:"params"`
}

type rpcOutcome struct {
	series []types.Ohlcv
	err    error
}

// Client is a connected agent-server client. It is safe for concurrent use;
// requests are multiplexed over the one connection by id.
type Client struct {
	cfg Config
	log *logger.Logger

	conn    *websocket.Conn
	writeMu sync.Mutex

	pendingMu sync.Mutex
	pending   map[string]chan rpcOutcome

	done      chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
}

// Dial connects to the agent server and starts the read and ping loops.
func Dial(ctx context.Context, cfg Config, log *logger.Logger) (*Client, error) {
	if log == nil {
		log = logger.NewNopLogger()
	}

	dialer := websocket.Dialer{
		HandshakeTimeout: cfg.HandshakeTimeout,
	}

	conn, _, err := dialer.DialContext(ctx, cfg.URL, nil)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrCodeAgentUnavailable, err, "dial agent server %s", cfg.URL)
	}

	c := &Client{
		cfg:     cfg,
		log:     log,
		conn:    conn,
		pending: make(map[string]chan rpcOutcome),
		done:    make(chan struct{}),
	}

	conn.SetPongHandler(c.handlePong)

	c.wg.Add(1)
	go c.readLoop()

	if cfg.PingInterval > 0 {
		c.wg.Add(1)
		go c.pingLoop()
	}

	return c, nil
}

// GetOhlcv requests the full series for (asset, interval) from the agent
// server and waits for the matching response.
func (c *Client) GetOhlcv(ctx context.Context, asset string, interval types.Interval) ([]types.Ohlcv, error) {
	id := uuid.New().String()
	ch := make(chan rpcOutcome, 1)

	c.pendingMu.Lock()
	c.pending[id] = ch
	c.pendingMu.Unlock()

	defer func() {
		c.pendingMu.Lock()
		delete(c.pending, id)
		c.pendingMu.Unlock()
	}()

	req := wireRequest{
		ID:     id,
		Method: methodGetOhlcv,
		Params: wireParams{Asset: asset, Interval: string(interval)},
	}

	if err := c.writeJSON(req); err != nil {
		return nil, errors.Wrap(errors.ErrCodeAgentUnavailable, "send get_ohlcv", err)
	}

	select {
	case out := <-ch:
		return out.series, out.err
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-c.done:
		return nil, errors.New(errors.ErrCodeAgentUnavailable, "agent connection closed")
	}
}

// Close shuts the connection down and waits for the loops to exit.
func (c *Client) Close() error {
	c.shutdown(errors.New(errors.ErrCodeAgentUnavailable, "client closed"))
	c.wg.Wait()

	return nil
}

func (c *Client) shutdown(cause error) {
	c.closeOnce.Do(func() {
		close(c.done)

		c.writeMu.Lock()
		_ = c.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second))
		c.writeMu.Unlock()

		_ = c.conn.Close()
		c.failPending(cause)
	})
}

func (c *Client) readLoop() {
	defer c.wg.Done()

	for {
		var msg wireMessage
		if err := c.conn.ReadJSON(&msg); err != nil {
			select {
			case <-c.done:
			default:
				c.log.Warn("agent connection lost", zap.Error(err))
			}

			c.shutdown(errors.Wrap(errors.ErrCodeAgentUnavailable, "agent connection lost", err))

			return
		}

		switch {
		case msg.Method == methodNotification:
			if c.cfg.OnNotification != nil {
				c.cfg.OnNotification(msg.Params.Message)
			}
		case msg.ID != "":
			c.resolve(msg)
		default:
			c.log.Debug("dropping unroutable agent frame", zap.String("method", msg.Method))
		}
	}
}

func (c *Client) resolve(msg wireMessage) {
	c.pendingMu.Lock()
	ch, ok := c.pending[msg.ID]
	delete(c.pending, msg.ID)
	c.pendingMu.Unlock()

	if !ok {
		// Response for an abandoned request. Nothing is waiting.
		return
	}

	out := rpcOutcome{series: msg.Result}
	if msg.Error != "" {
		out = rpcOutcome{err: errors.Newf(errors.ErrCodeFetchFailed, "agent error: %s", msg.Error)}
	}

	ch <- out
}

func (c *Client) failPending(cause error) {
	c.pendingMu.Lock()
	defer c.pendingMu.Unlock()

	for id, ch := range c.pending {
		ch <- rpcOutcome{err: cause}
		delete(c.pending, id)
	}
}

func (c *Client) pingLoop() {
	defer c.wg.Done()

	ticker := time.NewTicker(c.cfg.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			return
		case <-ticker.C:
			payload := strconv.FormatInt(time.Now().UnixNano(), 10)

			c.writeMu.Lock()
			err := c.conn.WriteControl(websocket.PingMessage, []byte(payload), time.Now().Add(c.cfg.WriteTimeout))
			c.writeMu.Unlock()

			if err != nil {
				c.log.Debug("agent ping failed", zap.Error(err))

				return
			}
		}
	}
}

// handlePong turns the echoed ping timestamp into a round-trip measurement.
func (c *Client) handlePong(payload string) error {
	sent, err := strconv.ParseInt(payload, 10, 64)
	if err != nil {
		return nil
	}

	if c.cfg.OnLatency != nil {
		c.cfg.OnLatency(time.Since(time.Unix(0, sent)))
	}

	return nil
}

func (c *Client) writeJSON(v any) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	if c.cfg.WriteTimeout > 0 {
		_ = c.conn.SetWriteDeadline(time.Now().Add(c.cfg.WriteTimeout))
	}

	return c.conn.WriteJSON(v)
}
