package channel

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/frudas24/webkvm/internal/control"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// recordingServer accepts websocket connections and records decoded messages.
type recordingServer struct {
	*httptest.Server

	mu        sync.Mutex
	msgs      []control.Message
	clientIDs []string
	// dropFirst closes the first connection after one message.
	dropFirst bool
	conns     int
}

func newRecordingServer(t *testing.T, dropFirst bool) *recordingServer {
	t.Helper()
	rs := &recordingServer{dropFirst: dropFirst}
	upgrader := websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }}
	rs.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		rs.mu.Lock()
		rs.conns++
		first := rs.conns == 1
		rs.clientIDs = append(rs.clientIDs, r.Header.Get(ClientIDHeader))
		rs.mu.Unlock()
		for {
			var msg control.Message
			if err := conn.ReadJSON(&msg); err != nil {
				return
			}
			rs.mu.Lock()
			rs.msgs = append(rs.msgs, msg)
			rs.mu.Unlock()
			if first && rs.dropFirst {
				return
			}
		}
	}))
	t.Cleanup(rs.Close)
	return rs
}

func (rs *recordingServer) wsURL() string {
	return "ws" + strings.TrimPrefix(rs.URL, "http")
}

func (rs *recordingServer) messages() []control.Message {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	return append([]control.Message(nil), rs.msgs...)
}

func runClient(t *testing.T, c *WSClient) (cancel func()) {
	t.Helper()
	ctx, stop := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- c.Run(ctx) }()
	return func() {
		stop()
		require.NoError(t, <-done)
	}
}

// TestWSClient_DeliversInOrder verifies queued messages reach the server in order.
func TestWSClient_DeliversInOrder(t *testing.T) {
	rs := newRecordingServer(t, false)
	c := NewWSClient(Options{URL: rs.wsURL(), ClientID: "test-client"})

	require.NoError(t, c.Send(control.NewMessage(control.KindMoveFactor, 1)))
	stop := runClient(t, c)

	require.NoError(t, c.Send(control.NewMessage(control.KindKeyDown, "a")))
	require.NoError(t, c.Send(control.NewMessage(control.KindKeyUp, "a")))

	require.Eventually(t, func() bool { return len(rs.messages()) == 3 }, 2*time.Second, 5*time.Millisecond)
	require.True(t, c.Connected())
	stop()

	msgs := rs.messages()
	require.Equal(t, control.KindMoveFactor, msgs[0].Type)
	require.Equal(t, control.KindKeyDown, msgs[1].Type)
	require.Equal(t, control.DeviceKeyboard, msgs[1].Device)
	key, err := msgs[2].Key()
	require.NoError(t, err)
	require.Equal(t, "a", key)

	rs.mu.Lock()
	require.Equal(t, []string{"test-client"}, rs.clientIDs)
	rs.mu.Unlock()
	require.False(t, c.Connected())
}

// TestWSClient_Reconnects verifies the client dials again after the server drops it.
func TestWSClient_Reconnects(t *testing.T) {
	rs := newRecordingServer(t, true)
	c := NewWSClient(Options{URL: rs.wsURL(), ReconnectDelay: 10 * time.Millisecond})
	stop := runClient(t, c)
	defer stop()

	require.NoError(t, c.Send(control.NewMessage(control.KindWheel, 1)))
	require.Eventually(t, func() bool { return len(rs.messages()) == 1 }, 2*time.Second, 5*time.Millisecond)

	require.Eventually(t, func() bool {
		rs.mu.Lock()
		defer rs.mu.Unlock()
		return rs.conns >= 2
	}, 2*time.Second, 5*time.Millisecond)

	require.NoError(t, c.Send(control.NewMessage(control.KindWheel, 2)))
	require.Eventually(t, func() bool { return len(rs.messages()) == 2 }, 2*time.Second, 5*time.Millisecond)

	rs.mu.Lock()
	require.Len(t, rs.clientIDs, rs.conns)
	require.Equal(t, rs.clientIDs[0], rs.clientIDs[1], "client id is stable across reconnects")
	rs.mu.Unlock()
}

// TestWSClient_QueueFull verifies Send drops instead of blocking when the queue is full.
func TestWSClient_QueueFull(t *testing.T) {
	c := NewWSClient(Options{URL: "ws://127.0.0.1:1/websocket", QueueSize: 2})
	require.NoError(t, c.Send(control.NewReset(control.DeviceMouse)))
	require.NoError(t, c.Send(control.NewReset(control.DeviceKeyboard)))
	require.ErrorIs(t, c.Send(control.NewMessage(control.KindWheel, 1)), ErrQueueFull)
}

// TestWSClient_SendAfterStop verifies Send reports ErrClosed once Run returns.
func TestWSClient_SendAfterStop(t *testing.T) {
	c := NewWSClient(Options{URL: "ws://127.0.0.1:1/websocket", ReconnectDelay: time.Millisecond})
	stop := runClient(t, c)
	stop()
	require.ErrorIs(t, c.Send(control.NewMessage(control.KindWheel, 1)), ErrClosed)
	require.NotEmpty(t, c.ClientID())
}
