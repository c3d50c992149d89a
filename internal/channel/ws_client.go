// Package channel carries control messages to the remote host over a websocket.
package channel

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/frudas24/webkvm/internal/control"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// ClientIDHeader carries the client id on the websocket handshake.
const ClientIDHeader = "X-Client-Id"

var (
	// ErrQueueFull is returned when the outbound queue cannot take another message.
	ErrQueueFull = errors.New("channel: send queue full")
	// ErrClosed is returned once the client has stopped.
	ErrClosed = errors.New("channel: closed")
)

// Options configures a WSClient.
type Options struct {
	URL            string
	ClientID       string
	QueueSize      int
	PingPeriod     time.Duration
	WriteWait      time.Duration
	PongWait       time.Duration
	ReconnectDelay time.Duration
	Dialer         *websocket.Dialer
	Log            *zap.Logger
}

func (o Options) withDefaults() Options {
	if o.ClientID == "" {
		o.ClientID = uuid.NewString()
	}
	if o.QueueSize <= 0 {
		o.QueueSize = 256
	}
	if o.PingPeriod <= 0 {
		o.PingPeriod = 30 * time.Second
	}
	if o.WriteWait <= 0 {
		o.WriteWait = 10 * time.Second
	}
	if o.PongWait <= 0 {
		o.PongWait = 60 * time.Second
	}
	if o.ReconnectDelay <= 0 {
		o.ReconnectDelay = 5 * time.Second
	}
	if o.Dialer == nil {
		o.Dialer = websocket.DefaultDialer
	}
	if o.Log == nil {
		o.Log = zap.NewNop()
	}
	return o
}

// WSClient is a reconnecting websocket sender. Messages are queued without
// blocking and written in order by the active connection.
type WSClient struct {
	opts Options
	log  *zap.Logger
	send chan control.Message
	done chan struct{}
	once sync.Once
	warn rate.Sometimes

	mu        sync.Mutex
	connected bool
}

// Ensure WSClient implements the interface.
var _ control.Sender = (*WSClient)(nil)

// NewWSClient creates a client for opts.URL. Call Run to connect.
func NewWSClient(opts Options) *WSClient {
	opts = opts.withDefaults()
	return &WSClient{
		opts: opts,
		log:  opts.Log.With(zap.String("url", opts.URL), zap.String("client_id", opts.ClientID)),
		send: make(chan control.Message, opts.QueueSize),
		done: make(chan struct{}),
		warn: rate.Sometimes{First: 1, Interval: 5 * time.Second},
	}
}

// ClientID returns the id announced on every handshake.
func (c *WSClient) ClientID() string {
	return c.opts.ClientID
}

// Send queues msg for delivery. It never blocks.
func (c *WSClient) Send(msg control.Message) error {
	select {
	case <-c.done:
		return ErrClosed
	default:
	}
	select {
	case c.send <- msg:
		return nil
	default:
		c.warn.Do(func() {
			c.log.Warn("send queue full, dropping messages", zap.Int("queue", c.opts.QueueSize))
		})
		return ErrQueueFull
	}
}

// Connected reports whether a connection is currently open.
func (c *WSClient) Connected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connected
}

// Run connects and keeps reconnecting until ctx is done.
func (c *WSClient) Run(ctx context.Context) error {
	defer c.once.Do(func() { close(c.done) })
	for {
		if err := c.connect(ctx); err != nil && ctx.Err() == nil {
			c.log.Warn("control channel down", zap.Error(err))
		}
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(c.opts.ReconnectDelay):
			c.log.Info("reconnecting control channel")
		}
	}
}

func (c *WSClient) connect(ctx context.Context) error {
	header := http.Header{}
	header.Set(ClientIDHeader, c.opts.ClientID)
	conn, _, err := c.opts.Dialer.DialContext(ctx, c.opts.URL, header)
	if err != nil {
		return err
	}
	defer conn.Close()

	c.setConnected(true)
	defer c.setConnected(false)
	c.log.Info("control channel connected")

	connCtx, cancel := context.WithCancel(ctx)
	writeErr := make(chan error, 1)
	go func() {
		writeErr <- c.writePump(connCtx, conn)
	}()

	readErr := c.readPump(conn)
	cancel()
	if err := <-writeErr; err != nil {
		return err
	}
	if ctx.Err() != nil {
		return nil
	}
	return readErr
}

func (c *WSClient) setConnected(v bool) {
	c.mu.Lock()
	c.connected = v
	c.mu.Unlock()
}

// readPump discards inbound messages and keeps the read deadline fresh.
func (c *WSClient) readPump(conn *websocket.Conn) error {
	conn.SetReadLimit(4096)
	_ = conn.SetReadDeadline(time.Now().Add(c.opts.PongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(c.opts.PongWait))
	})
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				return err
			}
			return nil
		}
		c.log.Debug("inbound message ignored", zap.Int("bytes", len(data)))
	}
}

// writePump writes queued messages and pings until ctx is done or a write fails.
// It closes the connection on exit so the read side unblocks.
func (c *WSClient) writePump(ctx context.Context, conn *websocket.Conn) error {
	ticker := time.NewTicker(c.opts.PingPeriod)
	defer ticker.Stop()
	defer conn.Close()

	for {
		select {
		case msg := <-c.send:
			data, err := json.Marshal(msg)
			if err != nil {
				c.log.Error("marshal control message", zap.Error(err))
				continue
			}
			_ = conn.SetWriteDeadline(time.Now().Add(c.opts.WriteWait))
			if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return err
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(c.opts.WriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return err
			}
		case <-ctx.Done():
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(c.opts.WriteWait))
			return nil
		}
	}
}
