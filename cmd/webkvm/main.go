// Command webkvm drives a remote KVM host: "serve" runs the host side
// (MJPEG streamer plus control channel), "client" connects to one and
// replays scripted input through the capture controller.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/alecthomas/kong"
	kongyaml "github.com/alecthomas/kong-yaml"
	"github.com/frudas24/webkvm/internal/config"
	"github.com/frudas24/webkvm/internal/logging"
	"go.uber.org/zap"
)

// Version is set at build time.
var Version = "dev"

// CLI is the root command line.
type CLI struct {
	Config  kong.ConfigFlag  `help:"YAML config file" type:"path" env:"WEBKVM_CONFIG"`
	EnvFile string           `help:"Environment file loaded before flags are parsed" default:".env" env:"WEBKVM_ENV_FILE"`
	Log     logging.Options  `embed:"" prefix:"log."`
	Version kong.VersionFlag `help:"Print version and exit"`

	Client ClientCmd `cmd:"" help:"Connect to a remote host and forward input"`
	Serve  ServeCmd  `cmd:"" help:"Run the host side: MJPEG streamer and control channel"`
}

func main() {
	if err := config.LoadEnvFile(findArg("--env-file", envOr("WEBKVM_ENV_FILE", ".env"))); err != nil {
		fmt.Fprintf(os.Stderr, "env file: %v\n", err)
		os.Exit(1)
	}

	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("webkvm"),
		kong.Description("Browser-style remote KVM client and host"),
		kong.UsageOnError(),
		kong.Vars{"version": Version},
		kong.Configuration(kongyaml.Loader, userConfigPaths()...),
	)

	logger, closer, err := logging.New(cli.Log)
	ctx.FatalIfErrorf(err)
	defer closer.Close()
	logger.Debug("starting", zap.String("version", Version), zap.String("command", ctx.Command()))

	ctx.Bind(logger)
	if err := ctx.Run(); err != nil {
		logger.Error("command failed", zap.Error(err))
		_ = closer.Close()
		os.Exit(1)
	}
}

// userConfigPaths lists config files loaded before --config.
func userConfigPaths() []string {
	paths := []string{"webkvm.yaml"}
	if dir, err := os.UserConfigDir(); err == nil {
		paths = append(paths, filepath.Join(dir, "webkvm", "config.yaml"))
	}
	return paths
}

// findArg returns the value of a long flag from os.Args, or def when absent.
func findArg(name, def string) string {
	args := os.Args[1:]
	for i, a := range args {
		if a == name && i+1 < len(args) {
			return args[i+1]
		}
		if v, ok := strings.CutPrefix(a, name+"="); ok {
			return v
		}
	}
	return def
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
