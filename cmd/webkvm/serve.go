package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/frudas24/webkvm/internal/app"
	"github.com/frudas24/webkvm/internal/config"
	"github.com/frudas24/webkvm/internal/ffmpeg"
	"github.com/frudas24/webkvm/internal/hostinput"
	"github.com/frudas24/webkvm/internal/mjpeg"
	"github.com/frudas24/webkvm/internal/wininput"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 5 * time.Second

// ServeCmd runs the host side of the KVM.
type ServeCmd struct {
	Settings config.Server `embed:""`
}

// Run starts the capture pipeline and both HTTP servers until interrupted.
func (s *ServeCmd) Run(log *zap.Logger) error {
	cfg := s.Settings
	if err := cfg.Validate(); err != nil {
		return err
	}
	remote, err := cfg.Remote()
	if err != nil {
		return err
	}
	w, h, err := config.ParseResolution(cfg.Res)
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logFFmpegStatus(log, cfg.FFmpegPath)

	stream := mjpeg.NewStream(time.Second / time.Duration(cfg.FPS))
	capture := ffmpeg.NewCapture(stream, ffmpeg.Options{
		FFmpegPath: cfg.FFmpegPath,
		Device:     cfg.Device,
		Settings:   mjpeg.Settings{Width: w, Height: h, FPS: cfg.FPS, Quality: cfg.Quality},
	}, log)

	inj, err := newInjector(cfg, log)
	if err != nil {
		return err
	}
	state := hostinput.NewState(inj, log)
	a, err := app.New(remote, state, log)
	if err != nil {
		return err
	}
	mux := http.NewServeMux()
	a.RegisterRoutes(mux)

	g, gctx := errgroup.WithContext(ctx)
	base := func(net.Listener) context.Context { return gctx }
	controlSrv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
		BaseContext:       base,
	}
	streamer := &http.Server{
		Addr:              cfg.StreamAddr,
		Handler:           mjpeg.NewServer(stream, capture, log).Routes(),
		ReadHeaderTimeout: 5 * time.Second,
		BaseContext:       base,
	}

	g.Go(func() error { return capture.Run(gctx) })
	g.Go(func() error { return serveHTTP(gctx, log.With(zap.String("server", "control")), controlSrv) })
	g.Go(func() error { return serveHTTP(gctx, log.With(zap.String("server", "stream")), streamer) })

	err = g.Wait()
	state.ReleaseAll()
	return err
}

// newInjector builds the configured input backend.
func newInjector(cfg config.Server, log *zap.Logger) (hostinput.Injector, error) {
	if cfg.Inject != "sendinput" {
		return hostinput.LogInjector{Log: log.Named("inject")}, nil
	}
	inj, err := wininput.NewInjector(cfg.Monitor)
	if err != nil {
		return nil, err
	}
	t := inj.Target()
	log.Info("injecting with SendInput",
		zap.Int("monitor", t.Index), zap.Int("width", t.W), zap.Int("height", t.H))
	return inj, nil
}

// serveHTTP runs srv until ctx is done, then shuts it down gracefully.
func serveHTTP(ctx context.Context, log *zap.Logger, srv *http.Server) error {
	logListenStatus(log, srv.Addr)
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Warn("shutdown", zap.Error(err))
		}
		<-errCh
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// logFFmpegStatus reports whether the ffmpeg binary is discoverable.
func logFFmpegStatus(log *zap.Logger, path string) {
	if filepath.IsAbs(path) {
		info, err := os.Stat(path)
		switch {
		case err != nil:
			log.Warn("ffmpeg check: missing", zap.Error(err))
		case info.IsDir():
			log.Warn("ffmpeg check: path is a directory", zap.String("path", path))
		default:
			log.Info("ffmpeg check: ok", zap.String("path", path))
		}
		return
	}
	found, err := exec.LookPath(path)
	switch {
	case err == nil:
		log.Info("ffmpeg check: ok", zap.String("path", found))
	case errors.Is(err, exec.ErrDot):
		log.Warn("ffmpeg check: found relative to current dir; use absolute path", zap.String("path", path))
	default:
		log.Warn("ffmpeg check: missing", zap.Error(err))
	}
}

// logListenStatus reports the listen address and a local URL helper.
func logListenStatus(log *zap.Logger, addr string) {
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		log.Info("listening", zap.String("addr", addr))
		return
	}
	if host == "" || host == "0.0.0.0" || host == "::" {
		host = "localhost"
	}
	log.Info("listening", zap.String("addr", addr), zap.String("url", "http://"+net.JoinHostPort(host, port)))
}
