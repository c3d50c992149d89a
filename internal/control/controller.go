package control

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/frudas24/webkvm/internal/session"
	"go.uber.org/zap"
)

const (
	// DefaultFlushPeriod is how often buffered motion is sent.
	DefaultFlushPeriod = 60 * time.Millisecond
	// DefaultToolbarDelay is how long the toolbar stays visible after capture starts.
	DefaultToolbarDelay = 2000 * time.Millisecond
)

// ErrStopped is returned by Submit once Run has returned.
var ErrStopped = errors.New("controller stopped")

// Options configures a Controller.
type Options struct {
	// Screen is the remote screen resolution used for absolute mapping.
	Screen Screen
	// Scaling selects how tall viewports are mapped.
	Scaling Scaling
	// FlushPeriod is the motion flush interval; DefaultFlushPeriod when zero.
	FlushPeriod time.Duration
	// ToolbarDelay is the toolbar auto-hide delay; DefaultToolbarDelay when zero.
	ToolbarDelay time.Duration
	// MoveFactor is announced once on start; 1 when zero.
	MoveFactor int
	// Scheduler runs delayed tasks; wall clock timers when nil.
	Scheduler Scheduler
	// Log receives state transitions; no-op when nil.
	Log *zap.Logger
}

func (o Options) withDefaults() Options {
	if o.FlushPeriod <= 0 {
		o.FlushPeriod = DefaultFlushPeriod
	}
	if o.ToolbarDelay <= 0 {
		o.ToolbarDelay = DefaultToolbarDelay
	}
	if o.MoveFactor == 0 {
		o.MoveFactor = 1
	}
	if o.Scheduler == nil {
		o.Scheduler = wallScheduler{}
	}
	if o.Log == nil {
		o.Log = zap.NewNop()
	}
	return o
}

type handler func(Event)

// Controller owns the capture session and forwards gated input to the remote host.
//
// Dispatch and Flush must be called from a single goroutine; Run provides one.
// Other goroutines hand events over with Submit.
type Controller struct {
	opts     Options
	log      *zap.Logger
	session  *session.Session
	surface  Surface
	out      *Dispatcher
	motion   *Motion
	handlers map[EventKind]handler

	pending     []Event
	dispatching bool
	started     bool

	toolbar    Timer
	toolbarGen uint64

	events   chan Event
	timers   chan func()
	done     chan struct{}
	stopOnce sync.Once
}

// New wires a controller to a surface and a sender.
func New(sess *session.Session, surface Surface, sender Sender, opts Options) *Controller {
	opts = opts.withDefaults()
	if sess == nil {
		sess = session.New()
	}
	c := &Controller{
		opts:    opts,
		log:     opts.Log,
		session: sess,
		surface: surface,
		out:     NewDispatcher(sender, opts.Log),
		motion:  NewMotion(),
		events:  make(chan Event, 64),
		timers:  make(chan func(), 8),
		done:    make(chan struct{}),
	}
	c.handlers = map[EventKind]handler{
		EventKeyDown:           c.onKeyDown,
		EventKeyUp:             c.onKeyUp,
		EventMouseDown:         c.onMouseDown,
		EventMouseUp:           c.onMouseUp,
		EventMouseMove:         c.onMouseMove,
		EventWheel:             c.onWheel,
		EventFocus:             func(Event) { c.onFocus() },
		EventBlur:              func(Event) { c.onBlur() },
		EventPointerLockChange: func(ev Event) { c.onLockChange(ev.Locked) },
		EventDialog:            c.onDialog,
		EventPaste:             c.onPaste,
	}
	if n, ok := surface.(Notifier); ok {
		n.SetNotifier(c.post)
	}
	return c
}

// Session returns the capture session.
func (c *Controller) Session() *session.Session {
	return c.session
}

// Start announces the move factor. It runs once; Run calls it.
func (c *Controller) Start() {
	if c.started {
		return
	}
	c.started = true
	c.out.MoveFactor(c.opts.MoveFactor)
}

// Run processes submitted events, flushes motion and fires timers until ctx is done.
func (c *Controller) Run(ctx context.Context) error {
	defer c.stop()
	c.Start()

	ticker := time.NewTicker(c.opts.FlushPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			c.Flush()
			return nil
		case ev := <-c.events:
			c.Dispatch(ev)
		case <-ticker.C:
			c.Flush()
		case fn := <-c.timers:
			fn()
			c.drain()
		}
	}
}

// Submit queues ev for the Run loop.
func (c *Controller) Submit(ctx context.Context, ev Event) error {
	select {
	case <-c.done:
		return ErrStopped
	default:
	}
	select {
	case c.events <- ev:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-c.done:
		return ErrStopped
	}
}

// Dispatch handles ev and any surface notifications it triggers, in order.
func (c *Controller) Dispatch(ev Event) {
	c.post(ev)
	c.drain()
}

// Flush sends buffered pointer motion.
func (c *Controller) Flush() {
	c.motion.Flush(c.out)
}

// FireTimers runs timer callbacks that have fired but not yet been handled.
// Run does this itself; callers driving Dispatch directly use it instead.
func (c *Controller) FireTimers() {
	for {
		select {
		case fn := <-c.timers:
			fn()
			c.drain()
		default:
			return
		}
	}
}

// Paste types text on the remote keyboard.
func (c *Controller) Paste(text string) {
	c.Dispatch(Event{Kind: EventPaste, Text: text})
}

// OpenDialog releases capture and marks name as the open dialog.
func (c *Controller) OpenDialog(name string) {
	c.Dispatch(Event{Kind: EventDialog, Dialog: name})
}

// CloseDialog clears the open dialog.
func (c *Controller) CloseDialog() {
	c.Dispatch(Event{Kind: EventDialog})
}

// Snapshot returns the session state.
func (c *Controller) Snapshot() session.Snapshot {
	return c.session.Snapshot()
}

func (c *Controller) post(ev Event) {
	c.pending = append(c.pending, ev)
}

func (c *Controller) drain() {
	if c.dispatching {
		return
	}
	c.dispatching = true
	defer func() { c.dispatching = false }()
	for len(c.pending) > 0 {
		ev := c.pending[0]
		c.pending = c.pending[1:]
		c.handle(ev)
	}
	c.pending = nil
}

func (c *Controller) handle(ev Event) {
	switch ev.Kind {
	case EventKeyDown:
		c.session.SetModifier(ev.Key, true)
	case EventKeyUp:
		c.session.SetModifier(ev.Key, false)
	}
	h, ok := c.handlers[ev.Kind]
	if !ok {
		c.log.Debug("unknown event", zap.String("kind", string(ev.Kind)))
		return
	}
	if !c.gate(ev) {
		return
	}
	c.mirror(ev)
	h(ev)
}

// gate decides whether ev reaches its handler in the current state.
func (c *Controller) gate(ev Event) bool {
	switch ev.Kind {
	case EventKeyDown:
		if c.session.Capturing() {
			return true
		}
		return ev.Key == "Enter" && c.session.Dialog() == ""
	case EventKeyUp, EventMouseUp, EventMouseMove, EventWheel:
		return c.session.Capturing()
	default:
		return true
	}
}

func (c *Controller) onKeyDown(ev Event) {
	if !c.session.Capturing() {
		c.requestFocus()
		return
	}
	if ev.Repeat {
		return
	}
	if ev.Key == "Escape" && ev.Shift {
		c.releaseCapture()
		return
	}
	c.out.KeyDown(ev.Key)
}

func (c *Controller) onKeyUp(ev Event) {
	c.out.KeyUp(ev.Key)
}

func (c *Controller) onMouseDown(ev Event) {
	if !c.session.Capturing() {
		c.requestFocus()
		return
	}
	if !c.session.Locked() && c.session.LockChord() {
		if ev.Button == ButtonPrimary {
			c.requestLock()
		}
		return
	}
	c.out.MouseDown(ev.Button)
}

func (c *Controller) onMouseUp(ev Event) {
	c.out.MouseUp(ev.Button)
}

func (c *Controller) onWheel(ev Event) {
	c.out.Wheel(ev.WheelDeltaY)
}

func (c *Controller) onMouseMove(ev Event) {
	if c.session.Locked() {
		c.motion.RecordRelative(ev.MovementX, ev.MovementY)
		return
	}
	pos, ok := MapAbsolute(ev.ClientX, ev.ClientY, c.surface.Viewport(), c.opts.Screen, c.opts.Scaling)
	if !ok {
		return
	}
	c.motion.RecordAbsolute(pos)
}

func (c *Controller) onPaste(ev Event) {
	if ev.Text == "" {
		return
	}
	c.out.Sequence(ev.Text)
}

func (c *Controller) onDialog(ev Event) {
	if ev.Dialog == "" {
		c.session.CloseDialog()
		return
	}
	c.releaseCapture()
	prev := c.session.OpenDialog(ev.Dialog)
	c.log.Debug("dialog opened", zap.String("dialog", ev.Dialog), zap.Stringer("from", prev))
}

func (c *Controller) onFocus() {
	if !c.session.Capture() {
		return
	}
	c.log.Info("capture started")
	c.out.KeyReset()
	c.scheduleToolbarHide()
}

func (c *Controller) onBlur() {
	c.cancelToolbarHide()
	wasLocked, changed := c.session.Release()
	if !changed {
		return
	}
	if wasLocked {
		c.surface.ExitPointerLock()
	}
	c.log.Info("capture released", zap.Bool("was_locked", wasLocked))
	c.out.KeyReset()
}

func (c *Controller) onLockChange(locked bool) {
	if !c.session.SetLocked(locked) {
		// The unlock notification from the surface sends the mouse reset.
		c.log.Debug("pointer lock refused while idle")
		c.surface.ExitPointerLock()
		return
	}
	c.log.Debug("pointer lock changed", zap.Bool("locked", locked))
	c.out.MouseReset()
}

// mirror keeps a self-tracking surface in step with focus and lock notifications
// that were submitted rather than raised by the surface.
func (c *Controller) mirror(ev Event) {
	switch ev.Kind {
	case EventFocus, EventBlur, EventPointerLockChange:
		if m, ok := c.surface.(Mirror); ok {
			m.Mirror(ev)
		}
	}
}

// requestFocus asks the surface for focus unless a dialog is open.
func (c *Controller) requestFocus() {
	if c.session.Dialog() != "" {
		return
	}
	c.surface.Focus()
}

// releaseCapture blurs the surface and returns to Idle without waiting for its notification.
func (c *Controller) releaseCapture() {
	c.surface.ExitPointerLock()
	c.surface.Blur()
	c.onBlur()
}

func (c *Controller) requestLock() {
	c.session.CloseDialog()
	if err := c.surface.RequestPointerLock(); err != nil {
		c.log.Debug("pointer lock request failed", zap.Error(err))
	}
}

func (c *Controller) scheduleToolbarHide() {
	c.cancelToolbarHide()
	gen := c.toolbarGen
	c.toolbar = c.opts.Scheduler.AfterFunc(c.opts.ToolbarDelay, func() {
		select {
		case c.timers <- func() { c.hideToolbar(gen) }:
		case <-c.done:
		}
	})
}

func (c *Controller) cancelToolbarHide() {
	if c.toolbar != nil {
		c.toolbar.Stop()
		c.toolbar = nil
	}
	c.toolbarGen++
}

func (c *Controller) hideToolbar(gen uint64) {
	if gen != c.toolbarGen {
		return
	}
	c.toolbar = nil
	if c.session.Capturing() {
		c.session.SetToolbarVisible(false)
	}
}

func (c *Controller) stop() {
	c.cancelToolbarHide()
	c.stopOnce.Do(func() { close(c.done) })
}
