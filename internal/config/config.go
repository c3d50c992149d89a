// Package config holds the remote configuration object and server settings for webkvm.
package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	defaultTitle       = "webkvm"
	defaultListenAddr  = "0.0.0.0:8080"
	defaultStreamAddr  = "0.0.0.0:10120"
	defaultResolution  = "1280x720"
	defaultFPS         = 30
	defaultQuality     = 80
	defaultFFmpegPath  = "ffmpeg"
	defaultDevice      = "-1"
	defaultMoveFactor  = 1
	defaultFlushPeriod = 60 * time.Millisecond
)

// ErrBadResolution is returned when a resolution string is not WIDTHxHEIGHT.
var ErrBadResolution = errors.New("resolution must be WIDTHxHEIGHT with positive sizes")

// Video describes the MJPEG stream advertised to clients.
type Video struct {
	StreamPort int    `json:"stream_port"`
	Res        string `json:"res"`
}

// Remote is the configuration object served on /api/config and consumed by the client.
type Remote struct {
	AppTitle   string `json:"app_title"`
	ListenPort int    `json:"listen_port"`
	Video      Video  `json:"video"`
}

// Resolution returns the parsed remote display resolution.
func (r Remote) Resolution() (int, int, error) {
	return ParseResolution(r.Video.Res)
}

// Validate checks that the remote config can drive a session.
func (r Remote) Validate() error {
	if r.ListenPort <= 0 || r.ListenPort > 65535 {
		return fmt.Errorf("listen_port %d out of range", r.ListenPort)
	}
	if r.Video.StreamPort <= 0 || r.Video.StreamPort > 65535 {
		return fmt.Errorf("video.stream_port %d out of range", r.Video.StreamPort)
	}
	if _, _, err := r.Resolution(); err != nil {
		return fmt.Errorf("video.res: %w", err)
	}
	return nil
}

// Server holds the settings of the serve command.
type Server struct {
	Title      string `help:"Title advertised to clients" default:"webkvm" env:"WEBKVM_TITLE"`
	ListenAddr string `help:"Control server address (/api/config, /websocket)" default:"0.0.0.0:8080" env:"WEBKVM_LISTEN_ADDR"`
	StreamAddr string `help:"MJPEG streamer address" default:"0.0.0.0:10120" env:"WEBKVM_STREAM_ADDR"`
	FFmpegPath string `help:"ffmpeg binary" default:"ffmpeg" env:"WEBKVM_FFMPEG_PATH"`
	Device     string `help:"Capture device (-1 for auto, index, path, or 'test')" default:"-1" env:"WEBKVM_DEVICE"`
	Res        string `help:"Capture resolution" default:"1280x720" env:"WEBKVM_RES"`
	FPS        int    `help:"Capture frame rate" default:"30" env:"WEBKVM_FPS"`
	Quality    int    `help:"JPEG quality (1-100)" default:"80" env:"WEBKVM_QUALITY"`
	Inject     string `help:"Input backend: log, or sendinput on Windows" default:"log" enum:"log,sendinput" env:"WEBKVM_INJECT"`
	Monitor    int    `help:"Display absolute moves cover (1-based, 0 for primary)" default:"0" env:"WEBKVM_MONITOR"`
}

// DefaultServer returns server settings with defaults applied.
func DefaultServer() Server {
	return Server{
		Title:      defaultTitle,
		ListenAddr: defaultListenAddr,
		StreamAddr: defaultStreamAddr,
		FFmpegPath: defaultFFmpegPath,
		Device:     defaultDevice,
		Res:        defaultResolution,
		FPS:        defaultFPS,
		Quality:    defaultQuality,
		Inject:     "log",
	}
}

// Validate checks the server settings.
func (s Server) Validate() error {
	if _, _, err := ParseResolution(s.Res); err != nil {
		return fmt.Errorf("res: %w", err)
	}
	if s.FPS <= 0 {
		return fmt.Errorf("fps must be > 0")
	}
	if s.Quality <= 0 || s.Quality > 100 {
		return fmt.Errorf("quality must be 1-100")
	}
	switch s.Inject {
	case "", "log", "sendinput":
	default:
		return fmt.Errorf("inject %q must be log or sendinput", s.Inject)
	}
	if s.Monitor < 0 {
		return fmt.Errorf("monitor must be >= 0")
	}
	if _, err := portOf(s.ListenAddr); err != nil {
		return fmt.Errorf("listen addr: %w", err)
	}
	if _, err := portOf(s.StreamAddr); err != nil {
		return fmt.Errorf("stream addr: %w", err)
	}
	return nil
}

// Remote builds the client-facing config object from the server settings.
func (s Server) Remote() (Remote, error) {
	listenPort, err := portOf(s.ListenAddr)
	if err != nil {
		return Remote{}, fmt.Errorf("listen addr: %w", err)
	}
	streamPort, err := portOf(s.StreamAddr)
	if err != nil {
		return Remote{}, fmt.Errorf("stream addr: %w", err)
	}
	title := s.Title
	if strings.TrimSpace(title) == "" {
		title = defaultTitle
	}
	return Remote{
		AppTitle:   title,
		ListenPort: listenPort,
		Video:      Video{StreamPort: streamPort, Res: s.Res},
	}, nil
}

// Client holds the settings of the client command.
type Client struct {
	Host        string        `help:"Remote host name or address" default:"localhost" env:"WEBKVM_HOST"`
	Port        int           `help:"Remote control server port" default:"8080" env:"WEBKVM_PORT"`
	Viewport    string        `help:"Local viewport size" default:"1920x1080" env:"WEBKVM_VIEWPORT"`
	FlushPeriod time.Duration `help:"Pointer flush period" default:"60ms" env:"WEBKVM_FLUSH_PERIOD"`
	MoveFactor  int           `help:"Relative motion factor sent at startup" default:"1" env:"WEBKVM_MOVE_FACTOR"`
	Scaling     string        `help:"Mapping for viewports taller than the remote screen (fit or native)" default:"fit" enum:"fit,native" env:"WEBKVM_SCALING"`
	SkipPing    bool          `help:"Do not probe the video stream before connecting" env:"WEBKVM_SKIP_PING"`
}

// DefaultClient returns client settings with defaults applied.
func DefaultClient() Client {
	return Client{
		Host:        "localhost",
		Port:        8080,
		Viewport:    "1920x1080",
		FlushPeriod: defaultFlushPeriod,
		MoveFactor:  defaultMoveFactor,
		Scaling:     "fit",
	}
}

// Validate checks the client settings.
func (c Client) Validate() error {
	if strings.TrimSpace(c.Host) == "" {
		return errors.New("host is required")
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("port %d out of range", c.Port)
	}
	if _, _, err := ParseResolution(c.Viewport); err != nil {
		return fmt.Errorf("viewport: %w", err)
	}
	if c.FlushPeriod <= 0 {
		return errors.New("flush period must be > 0")
	}
	switch c.Scaling {
	case "", "fit", "native":
	default:
		return fmt.Errorf("scaling %q must be fit or native", c.Scaling)
	}
	return nil
}

// BaseURL returns the HTTP base URL of the control server.
func (c Client) BaseURL() string {
	return "http://" + net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// ParseResolution parses "WIDTHxHEIGHT" into positive integer sizes.
func ParseResolution(value string) (int, int, error) {
	w, h, ok := strings.Cut(strings.ToLower(strings.TrimSpace(value)), "x")
	if !ok {
		return 0, 0, fmt.Errorf("%q: %w", value, ErrBadResolution)
	}
	width, err := strconv.Atoi(strings.TrimSpace(w))
	if err != nil || width <= 0 {
		return 0, 0, fmt.Errorf("%q: %w", value, ErrBadResolution)
	}
	height, err := strconv.Atoi(strings.TrimSpace(h))
	if err != nil || height <= 0 {
		return 0, 0, fmt.Errorf("%q: %w", value, ErrBadResolution)
	}
	return width, height, nil
}

// portOf extracts the numeric port of a host:port address.
func portOf(addr string) (int, error) {
	_, port, err := net.SplitHostPort(addr)
	if err != nil {
		return 0, err
	}
	value, err := strconv.Atoi(port)
	if err != nil {
		return 0, fmt.Errorf("port must be an integer: %w", err)
	}
	if value <= 0 || value > 65535 {
		return 0, fmt.Errorf("port %d out of range", value)
	}
	return value, nil
}

// LoadEnvFile loads KEY=VALUE pairs from a .env file without overriding the environment.
// A missing file is not an error.
func LoadEnvFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}

	for _, line := range strings.Split(string(data), "\n") {
		key, value, ok := parseEnvLine(line)
		if !ok {
			continue
		}
		if _, exists := os.LookupEnv(key); !exists {
			if err := os.Setenv(key, value); err != nil {
				return err
			}
		}
	}

	return nil
}

// parseEnvLine parses a single .env line into key/value.
func parseEnvLine(line string) (string, string, bool) {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return "", "", false
	}
	if strings.HasPrefix(line, "export ") {
		line = strings.TrimSpace(strings.TrimPrefix(line, "export "))
	}
	key, value, ok := strings.Cut(line, "=")
	if !ok {
		return "", "", false
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return "", "", false
	}
	value = strings.Trim(strings.TrimSpace(value), `"'`)
	return key, value, true
}
