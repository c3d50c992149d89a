// Package app wires the control server: config bootstrap, the control websocket and host input state.
package app

import (
	"errors"
	"net/http"
	"sync"

	"github.com/frudas24/webkvm/internal/config"
	"github.com/frudas24/webkvm/internal/hostinput"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// App serves /api/config and /websocket for a single remote client.
type App struct {
	remote   config.Remote
	state    *hostinput.State
	log      *zap.Logger
	upgrader websocket.Upgrader

	mu     sync.Mutex
	active *controlConn
}

// New creates an application serving remote and applying input to state.
func New(remote config.Remote, state *hostinput.State, log *zap.Logger) (*App, error) {
	if state == nil {
		return nil, errors.New("input state is required")
	}
	if err := remote.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &App{
		remote: remote,
		state:  state,
		log:    log.Named("app"),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
	}, nil
}

// Remote returns the advertised configuration.
func (a *App) Remote() config.Remote {
	return a.remote
}

// State returns the host input state.
func (a *App) State() *hostinput.State {
	return a.state
}

// Connected reports whether a control client is attached.
func (a *App) Connected() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.active != nil
}
