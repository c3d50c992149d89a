package ffmpeg

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"runtime"
	"sync"
	"time"

	"github.com/frudas24/webkvm/internal/mjpeg"
	"go.uber.org/zap"
)

const defaultRestartBackoff = 2 * time.Second

// Options configures a Capture.
type Options struct {
	FFmpegPath     string
	Device         string
	Settings       mjpeg.Settings
	RestartBackoff time.Duration
	// GOOS selects the input format; runtime.GOOS when empty.
	GOOS string
}

// process is a running frame source.
type process struct {
	stdout io.ReadCloser
	stop   func()
}

type launchFunc func(path string, args []string) (*process, error)

// Capture reads raw frames from ffmpeg, encodes them and publishes them to a stream.
// A failed read restarts ffmpeg after a backoff until Stop is called.
type Capture struct {
	mu       sync.Mutex
	stream   *mjpeg.Stream
	log      *zap.Logger
	path     string
	device   string
	goos     string
	backoff  time.Duration
	settings mjpeg.Settings
	launch   launchFunc

	proc    *process
	gen     uint64
	running bool
	quit    chan struct{}
	wg      sync.WaitGroup
}

// NewCapture returns a capture publishing to stream. Call Start or Run to begin.
func NewCapture(stream *mjpeg.Stream, opts Options, log *zap.Logger) *Capture {
	if log == nil {
		log = zap.NewNop()
	}
	if opts.RestartBackoff <= 0 {
		opts.RestartBackoff = defaultRestartBackoff
	}
	if opts.GOOS == "" {
		opts.GOOS = runtime.GOOS
	}
	if opts.FFmpegPath == "" {
		opts.FFmpegPath = "ffmpeg"
	}
	return &Capture{
		stream:   stream,
		log:      log.Named("ffmpeg"),
		path:     opts.FFmpegPath,
		device:   opts.Device,
		goos:     opts.GOOS,
		backoff:  opts.RestartBackoff,
		settings: opts.Settings,
		launch:   execLaunch,
	}
}

// Settings returns the active capture settings.
func (c *Capture) Settings() mjpeg.Settings {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.settings
}

// Start launches ffmpeg. It is a no-op when already running.
func (c *Capture) Start() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.running {
		return nil
	}
	if err := validate(c.settings); err != nil {
		return err
	}
	if err := c.spawnLocked(); err != nil {
		return err
	}
	c.running = true
	c.quit = make(chan struct{})
	return nil
}

// Run starts the capture and stops it when ctx is done.
func (c *Capture) Run(ctx context.Context) error {
	if err := c.Start(); err != nil {
		return err
	}
	<-ctx.Done()
	c.Stop()
	return nil
}

// Stop terminates ffmpeg and waits for the reader to exit.
func (c *Capture) Stop() {
	c.mu.Lock()
	if !c.running {
		c.mu.Unlock()
		return
	}
	c.running = false
	close(c.quit)
	c.stopProcLocked()
	c.mu.Unlock()
	c.wg.Wait()
}

// Reconfigure applies s and restarts ffmpeg when running.
func (c *Capture) Reconfigure(_ context.Context, s mjpeg.Settings) (mjpeg.Settings, error) {
	if err := validate(s); err != nil {
		return mjpeg.Settings{}, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	prev := c.settings
	c.settings = s
	if !c.running {
		return s, nil
	}
	c.stopProcLocked()
	if err := c.spawnLocked(); err != nil {
		c.settings = prev
		if restartErr := c.spawnLocked(); restartErr != nil {
			c.log.Error("restore previous capture", zap.Error(restartErr))
		}
		return mjpeg.Settings{}, err
	}
	return s, nil
}

func validate(s mjpeg.Settings) error {
	if s.Width <= 0 || s.Height <= 0 {
		return fmt.Errorf("ffmpeg: invalid size %dx%d", s.Width, s.Height)
	}
	if s.FPS <= 0 {
		return errors.New("ffmpeg: fps must be > 0")
	}
	return nil
}

// spawnLocked launches ffmpeg and its reader while holding the lock.
func (c *Capture) spawnLocked() error {
	args, err := BuildArgs(c.settings, c.device, c.goos)
	if err != nil {
		return err
	}
	c.log.Info("starting capture", zap.String("path", c.path), zap.Strings("args", args))
	p, err := c.launch(c.path, args)
	if err != nil {
		return fmt.Errorf("ffmpeg: start: %w", err)
	}
	c.proc = p
	c.gen++
	c.stream.SetMinInterval(time.Second / time.Duration(c.settings.FPS))
	c.wg.Add(1)
	go c.loop(p, c.settings, c.gen)
	return nil
}

// stopProcLocked stops the running ffmpeg process while holding the lock.
func (c *Capture) stopProcLocked() {
	if c.proc != nil {
		c.proc.stop()
		c.proc = nil
	}
}

// loop reads raw frames and publishes them until the process ends.
func (c *Capture) loop(p *process, s mjpeg.Settings, gen uint64) {
	defer c.wg.Done()
	raw := make([]byte, s.Width*s.Height*3)
	for {
		if _, err := io.ReadFull(p.stdout, raw); err != nil {
			c.restart(gen, err)
			return
		}
		jpg, err := mjpeg.EncodeRGB(raw, s.Width, s.Height, s.Quality)
		if err != nil {
			c.log.Warn("encode frame", zap.Error(err))
			continue
		}
		c.stream.Publish(jpg)
	}
}

// restart relaunches ffmpeg after a read failure unless the process was
// replaced or the capture stopped in the meantime.
func (c *Capture) restart(gen uint64, cause error) {
	c.mu.Lock()
	if !c.running || gen != c.gen {
		c.mu.Unlock()
		return
	}
	quit := c.quit
	c.mu.Unlock()

	c.log.Warn("capture read failed", zap.Error(cause), zap.Duration("restart_in", c.backoff))
	for {
		select {
		case <-quit:
			return
		case <-time.After(c.backoff):
		}
		c.mu.Lock()
		if !c.running || gen != c.gen {
			c.mu.Unlock()
			return
		}
		c.stopProcLocked()
		err := c.spawnLocked()
		c.mu.Unlock()
		if err == nil {
			return
		}
		c.log.Error("capture restart failed", zap.Error(err))
	}
}

func execLaunch(path string, args []string) (*process, error) {
	cmd := exec.Command(path, append([]string{"-hide_banner", "-loglevel", "error"}, args...)...)
	configureCmd(cmd)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, err
	}
	if err := cmd.Start(); err != nil {
		return nil, err
	}
	return &process{
		stdout: stdout,
		stop: func() {
			_ = stdout.Close()
			_ = cmd.Process.Kill()
			_ = cmd.Wait()
		},
	}, nil
}
