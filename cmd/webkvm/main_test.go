package main

import (
	"os"
	"testing"
	"time"

	"github.com/alecthomas/kong"
	"github.com/stretchr/testify/require"
)

func parse(t *testing.T, args ...string) (*CLI, *kong.Context) {
	t.Helper()
	var cli CLI
	parser, err := kong.New(&cli, kong.Name("webkvm"), kong.Vars{"version": "test"}, kong.Exit(func(int) { t.Fatal("unexpected exit") }))
	require.NoError(t, err)
	ctx, err := parser.Parse(args)
	require.NoError(t, err)
	return &cli, ctx
}

// TestCLI_ClientDefaults verifies client flags default to the documented values.
func TestCLI_ClientDefaults(t *testing.T) {
	cli, ctx := parse(t, "client")
	require.Equal(t, "client", ctx.Command())
	s := cli.Client.Settings
	require.Equal(t, "localhost", s.Host)
	require.Equal(t, 8080, s.Port)
	require.Equal(t, "1920x1080", s.Viewport)
	require.Equal(t, 60*time.Millisecond, s.FlushPeriod)
	require.Equal(t, "fit", s.Scaling)
	require.NoError(t, s.Validate())
	require.Equal(t, "info", cli.Log.Level)
}

// TestCLI_ClientFlagsAndEnv verifies flags and WEBKVM_* variables both reach the settings.
func TestCLI_ClientFlagsAndEnv(t *testing.T) {
	t.Setenv("WEBKVM_HOST", "kvm.lan")
	cli, _ := parse(t, "--log.level=debug", "client", "--port", "9000", "--scaling", "native", "--skip-ping")
	s := cli.Client.Settings
	require.Equal(t, "kvm.lan", s.Host)
	require.Equal(t, 9000, s.Port)
	require.Equal(t, "native", s.Scaling)
	require.True(t, s.SkipPing)
	require.Equal(t, "debug", cli.Log.Level)
}

// TestCLI_Serve verifies serve flags parse into valid server settings.
func TestCLI_Serve(t *testing.T) {
	cli, ctx := parse(t, "serve", "--res", "640x480", "--device", "test", "--stream-addr", "127.0.0.1:10121")
	require.Equal(t, "serve", ctx.Command())
	s := cli.Serve.Settings
	require.NoError(t, s.Validate())
	require.Equal(t, "log", s.Inject)
	r, err := s.Remote()
	require.NoError(t, err)
	require.Equal(t, 10121, r.Video.StreamPort)
	require.Equal(t, "640x480", r.Video.Res)
}

// TestFindArg verifies pre-parse flag lookup in both spellings.
func TestFindArg(t *testing.T) {
	orig := os.Args
	t.Cleanup(func() { os.Args = orig })

	os.Args = []string{"webkvm", "--env-file", "a.env", "serve"}
	require.Equal(t, "a.env", findArg("--env-file", ".env"))

	os.Args = []string{"webkvm", "--env-file=b.env"}
	require.Equal(t, "b.env", findArg("--env-file", ".env"))

	os.Args = []string{"webkvm", "serve", "--env-file"}
	require.Equal(t, ".env", findArg("--env-file", ".env"))
}
