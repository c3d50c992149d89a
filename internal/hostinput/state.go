package hostinput

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/frudas24/webkvm/internal/control"
	"go.uber.org/zap"
)

// ErrUnknownKind is returned for message types the host does not handle.
var ErrUnknownKind = errors.New("unknown message type")

// Snapshot is a read-only view of the host input state.
type Snapshot struct {
	Keys       []string
	Buttons    []int
	X, Y       int
	RelX, RelY int64
	Wheel      int64
	MoveFactor int
}

// State tracks what the remote client holds down and where it pointed last,
// forwarding each accepted message to an Injector.
type State struct {
	mu         sync.Mutex
	injector   Injector
	log        *zap.Logger
	keys       map[string]struct{}
	buttons    map[int]struct{}
	x, y       int
	relX, relY int64
	wheel      int64
	moveFactor int
}

// NewState returns an empty state forwarding to injector.
func NewState(injector Injector, log *zap.Logger) *State {
	if log == nil {
		log = zap.NewNop()
	}
	if injector == nil {
		injector = LogInjector{Log: log}
	}
	return &State{
		injector:   injector,
		log:        log,
		keys:       make(map[string]struct{}),
		buttons:    make(map[int]struct{}),
		moveFactor: 1,
	}
}

// Apply updates the state from msg and injects the matching action.
func (s *State) Apply(msg control.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch msg.Type {
	case control.KindKeyDown, control.KindKeyUp:
		key, err := msg.Key()
		if err != nil {
			return err
		}
		if msg.Type == control.KindKeyDown {
			s.keys[key] = struct{}{}
			return s.injector.KeyDown(key)
		}
		delete(s.keys, key)
		return s.injector.KeyUp(key)
	case control.KindMouseDown, control.KindMouseUp:
		button, err := msg.Int()
		if err != nil {
			return err
		}
		if msg.Type == control.KindMouseDown {
			s.buttons[button] = struct{}{}
			return s.injector.ButtonDown(button)
		}
		delete(s.buttons, button)
		return s.injector.ButtonUp(button)
	case control.KindReset:
		return s.resetLocked(msg.Device)
	case control.KindWheel:
		delta, err := msg.Int()
		if err != nil {
			return err
		}
		s.wheel += int64(delta)
		return s.injector.Wheel(delta)
	case control.KindMove:
		dx, dy, err := msg.Pair()
		if err != nil {
			return err
		}
		dx, dy = dx*s.moveFactor, dy*s.moveFactor
		s.relX += int64(dx)
		s.relY += int64(dy)
		return s.injector.MoveRel(dx, dy)
	case control.KindAbs:
		x, y, err := msg.Pair()
		if err != nil {
			return err
		}
		if x < 0 || x > control.AbsMax || y < 0 || y > control.AbsMax {
			return fmt.Errorf("abs position %d,%d out of range", x, y)
		}
		s.x, s.y = x, y
		return s.injector.MoveAbs(x, y)
	case control.KindMoveFactor:
		factor, err := msg.Int()
		if err != nil {
			return err
		}
		if factor <= 0 {
			return fmt.Errorf("move factor %d must be positive", factor)
		}
		s.moveFactor = factor
		return nil
	case control.KindSequence:
		text, err := msg.Text()
		if err != nil {
			return err
		}
		return s.injector.Type(text)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownKind, msg.Type)
	}
}

// ReleaseAll lets go of every held key and button, as when the client disconnects.
func (s *State) ReleaseAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.resetLocked(control.DeviceKeyboard); err != nil {
		s.log.Warn("release keys", zap.Error(err))
	}
	if err := s.resetLocked(control.DeviceMouse); err != nil {
		s.log.Warn("release buttons", zap.Error(err))
	}
}

// resetLocked releases held keys or buttons of device in a stable order.
func (s *State) resetLocked(device control.Device) error {
	var errs []error
	switch device {
	case control.DeviceKeyboard:
		for _, key := range sortedKeys(s.keys) {
			errs = append(errs, s.injector.KeyUp(key))
		}
		clear(s.keys)
	case control.DeviceMouse:
		for _, b := range sortedButtons(s.buttons) {
			errs = append(errs, s.injector.ButtonUp(b))
		}
		clear(s.buttons)
	default:
		return fmt.Errorf("reset: unknown device %q", device)
	}
	return errors.Join(errs...)
}

// Snapshot returns a copy of the state.
func (s *State) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		Keys:       sortedKeys(s.keys),
		Buttons:    sortedButtons(s.buttons),
		X:          s.x,
		Y:          s.y,
		RelX:       s.relX,
		RelY:       s.relY,
		Wheel:      s.wheel,
		MoveFactor: s.moveFactor,
	}
}

func sortedKeys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func sortedButtons(m map[int]struct{}) []int {
	out := make([]int, 0, len(m))
	for b := range m {
		out = append(out, b)
	}
	sort.Ints(out)
	return out
}
