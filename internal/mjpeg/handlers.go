package mjpeg

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/frudas24/webkvm/internal/config"
	"go.uber.org/zap"
)

// SnapshotTimeout bounds how long a snapshot request waits for a frame.
const SnapshotTimeout = 5 * time.Second

// Settings describes the capture parameters a streamer runs with.
type Settings struct {
	Width   int
	Height  int
	FPS     int
	Quality int
}

// String renders settings the way the /config endpoint reports them.
func (s Settings) String() string {
	return fmt.Sprintf("%dx%d@%dfps, quality=%d", s.Width, s.Height, s.FPS, s.Quality)
}

// Reconfigurer applies new capture settings at runtime.
type Reconfigurer interface {
	Reconfigure(ctx context.Context, s Settings) (Settings, error)
	Settings() Settings
}

// Server exposes a Stream over HTTP.
type Server struct {
	stream   *Stream
	capture  Reconfigurer
	log      *zap.Logger
	snapWait time.Duration
}

// NewServer builds the streamer HTTP surface. capture may be nil, in which case /config is rejected.
func NewServer(stream *Stream, capture Reconfigurer, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{stream: stream, capture: capture, log: log, snapWait: SnapshotTimeout}
}

// Routes returns the streamer handler.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/stream", s.stream.Handler)
	mux.HandleFunc("/snapshot", s.handleSnapshot)
	mux.HandleFunc("/config", s.handleConfig)
	return withCORS(mux)
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	switch r.URL.Query().Get("action") {
	case "stream":
		s.stream.Handler(w, r)
	case "snapshot":
		s.handleSnapshot(w, r)
	default:
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("Server online"))
	}
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), s.snapWait)
	defer cancel()
	jpg, err := s.stream.Next(ctx)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			http.Error(w, "no frame available", http.StatusServiceUnavailable)
		}
		return
	}
	w.Header().Set("Content-Type", "image/jpeg")
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	w.Header().Set("Content-Length", strconv.Itoa(len(jpg)))
	_, _ = w.Write(jpg)
}

func (s *Server) handleConfig(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	res, fps, quality := q.Get("res"), q.Get("fps"), q.Get("quality")
	if res == "" && fps == "" && quality == "" {
		http.Error(w, "No config provided, available: res, fps, quality", http.StatusBadRequest)
		return
	}
	if s.capture == nil {
		http.Error(w, "capture is not reconfigurable", http.StatusNotImplemented)
		return
	}

	next := s.capture.Settings()
	if res != "" {
		width, height, err := config.ParseResolution(res)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		next.Width, next.Height = width, height
	}
	if fps != "" {
		v, err := strconv.Atoi(fps)
		if err != nil || v <= 0 {
			http.Error(w, "fps must be a positive integer", http.StatusBadRequest)
			return
		}
		next.FPS = v
	}
	if quality != "" {
		v, err := strconv.Atoi(quality)
		if err != nil || v <= 0 || v > 100 {
			http.Error(w, "quality must be 1-100", http.StatusBadRequest)
			return
		}
		next.Quality = v
	}

	applied, err := s.capture.Reconfigure(r.Context(), next)
	if err != nil {
		s.log.Error("reconfigure capture", zap.Stringer("settings", next), zap.Error(err))
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	text := "New config: " + applied.String()
	s.log.Info("capture reconfigured", zap.Stringer("settings", applied))
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte(text))
}

func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if origin := r.Header.Get("Origin"); origin != "" {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Credentials", "true")
			w.Header().Set("Access-Control-Allow-Headers", "*")
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
