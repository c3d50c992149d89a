package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/frudas24/webkvm/internal/channel"
	"github.com/frudas24/webkvm/internal/config"
	"github.com/frudas24/webkvm/internal/control"
	"github.com/frudas24/webkvm/internal/hostapi"
	"github.com/frudas24/webkvm/internal/script"
	"github.com/frudas24/webkvm/internal/session"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// ClientCmd connects to a remote host and forwards input to it.
type ClientCmd struct {
	Settings config.Client `embed:""`
	Script   string        `help:"YAML input script to replay; the client exits when it ends" type:"existingfile" env:"WEBKVM_SCRIPT"`
}

// Run fetches the remote config, opens the control channel and drives the controller.
func (c *ClientCmd) Run(log *zap.Logger) error {
	if err := c.Settings.Validate(); err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var sc *script.Script
	if c.Script != "" {
		s, err := script.Load(c.Script)
		if err != nil {
			return err
		}
		sc = s
	}

	api := hostapi.New()
	remote, err := api.FetchConfig(ctx, c.Settings.BaseURL())
	if err != nil {
		return fmt.Errorf("fetch remote config: %w", err)
	}
	log.Info("remote config",
		zap.String("title", remote.AppTitle),
		zap.String("res", remote.Video.Res),
		zap.String("stream", hostapi.StreamURL(c.Settings.Host, remote.Video.StreamPort)))

	if !c.Settings.SkipPing {
		if err := api.PingStream(ctx, c.Settings.Host, remote.Video.StreamPort); err != nil {
			log.Warn("video stream not reachable", zap.Error(err))
		}
	}

	sw, sh, err := remote.Resolution()
	if err != nil {
		return err
	}
	vw, vh, err := config.ParseResolution(c.Settings.Viewport)
	if err != nil {
		return err
	}
	vp := control.Viewport{W: vw, H: vh}
	if sc != nil {
		if override, ok := sc.ViewportSize(); ok {
			vp = override
		}
	}

	ws := channel.NewWSClient(channel.Options{
		URL: hostapi.ChannelURL(c.Settings.Host, remote),
		Log: log.Named("channel"),
	})
	surface := control.NewHeadlessSurface(vp)
	ctrl := control.New(session.New(), surface, ws, control.Options{
		Screen:      control.Screen{W: sw, H: sh},
		Scaling:     control.ParseScaling(c.Settings.Scaling),
		FlushPeriod: c.Settings.FlushPeriod,
		MoveFactor:  c.Settings.MoveFactor,
		Log:         log.Named("control"),
	})

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gctx := errgroup.WithContext(runCtx)
	g.Go(func() error { return ws.Run(gctx) })
	g.Go(func() error { return ctrl.Run(gctx) })
	if sc != nil {
		g.Go(func() error {
			if err := sc.Play(gctx, ctrl.Submit); err != nil {
				if errors.Is(err, context.Canceled) || errors.Is(err, control.ErrStopped) {
					return nil
				}
				return fmt.Errorf("script: %w", err)
			}
			log.Info("script finished", zap.Int("events", len(sc.Steps)))
			// Give the controller a few flushes and the channel time to drain.
			select {
			case <-gctx.Done():
			case <-time.After(4 * c.Settings.FlushPeriod):
			}
			cancel()
			return nil
		})
	}
	return g.Wait()
}
