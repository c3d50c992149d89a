package app

import (
	"errors"
	"net/http"
	"time"

	"github.com/frudas24/webkvm/internal/channel"
	"github.com/frudas24/webkvm/internal/control"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	controlReadLimit = 64 << 10
	controlPongWait  = 60 * time.Second
)

var errBusy = errors.New("control connection already active")

// controlConn is the attached control client.
type controlConn struct {
	id       string
	clientID string
	conn     *websocket.Conn
}

// handleControl upgrades the connection and applies control messages until it closes.
func (a *App) handleControl(w http.ResponseWriter, r *http.Request) {
	if a.Connected() {
		http.Error(w, errBusy.Error(), http.StatusConflict)
		return
	}
	conn, err := a.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	cc := &controlConn{id: uuid.NewString(), clientID: r.Header.Get(channel.ClientIDHeader), conn: conn}
	if err := a.acceptConn(cc); err != nil {
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.ClosePolicyViolation, err.Error()),
			time.Now().Add(time.Second))
		_ = conn.Close()
		return
	}
	log := a.log.With(zap.String("conn_id", cc.id), zap.String("client_id", cc.clientID), zap.String("remote", r.RemoteAddr))
	log.Info("control client attached")
	defer func() {
		a.cleanupConn(cc)
		log.Info("control client detached")
	}()

	conn.SetReadLimit(controlReadLimit)
	_ = conn.SetReadDeadline(time.Now().Add(controlPongWait))
	conn.SetPingHandler(func(data string) error {
		_ = conn.SetReadDeadline(time.Now().Add(controlPongWait))
		return conn.WriteControl(websocket.PongMessage, []byte(data), time.Now().Add(time.Second))
	})

	for {
		var msg control.Message
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Warn("control read failed", zap.Error(err))
			}
			return
		}
		_ = conn.SetReadDeadline(time.Now().Add(controlPongWait))
		if err := a.state.Apply(msg); err != nil {
			log.Warn("control message rejected", zap.Stringer("msg", msg), zap.Error(err))
		}
	}
}

// acceptConn ensures only one active control connection exists.
func (a *App) acceptConn(cc *controlConn) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.active != nil {
		return errBusy
	}
	a.active = cc
	return nil
}

// cleanupConn clears the active connection and releases anything it held.
func (a *App) cleanupConn(cc *controlConn) {
	a.mu.Lock()
	if a.active == cc {
		a.active = nil
	}
	a.mu.Unlock()
	a.state.ReleaseAll()
	_ = cc.conn.Close()
}
