package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// TestParseResolution_Valid verifies WIDTHxHEIGHT parsing.
func TestParseResolution_Valid(t *testing.T) {
	w, h, err := ParseResolution("1280x720")
	require.NoError(t, err)
	require.Equal(t, 1280, w)
	require.Equal(t, 720, h)

	w, h, err = ParseResolution(" 1920X1080 ")
	require.NoError(t, err)
	require.Equal(t, 1920, w)
	require.Equal(t, 1080, h)
}

// TestParseResolution_Invalid verifies malformed and zero sizes are rejected.
func TestParseResolution_Invalid(t *testing.T) {
	for _, in := range []string{"", "1280", "0x720", "1280x0", "axb", "-1x5"} {
		_, _, err := ParseResolution(in)
		require.Error(t, err, in)
		require.True(t, errors.Is(err, ErrBadResolution), in)
	}
}

// TestServerRemote verifies the client-facing config is built from listen addresses.
func TestServerRemote(t *testing.T) {
	s := DefaultServer()
	s.Title = "lab kvm"
	s.ListenAddr = "127.0.0.1:9000"
	s.StreamAddr = ":9001"
	s.Res = "1024x768"
	require.NoError(t, s.Validate())

	r, err := s.Remote()
	require.NoError(t, err)
	require.Equal(t, Remote{
		AppTitle:   "lab kvm",
		ListenPort: 9000,
		Video:      Video{StreamPort: 9001, Res: "1024x768"},
	}, r)
	require.NoError(t, r.Validate())
}

// TestServerValidate_Rejects verifies invalid server settings are reported.
func TestServerValidate_Rejects(t *testing.T) {
	s := DefaultServer()
	s.Quality = 500
	require.Error(t, s.Validate())

	s = DefaultServer()
	s.FPS = 0
	require.Error(t, s.Validate())

	s = DefaultServer()
	s.ListenAddr = "nohostport"
	require.Error(t, s.Validate())

	s = DefaultServer()
	s.Inject = "uinput"
	require.Error(t, s.Validate())

	s = DefaultServer()
	s.Monitor = -1
	require.Error(t, s.Validate())
}

// TestRemoteValidate_BadResolution verifies the remote config requires a resolution.
func TestRemoteValidate_BadResolution(t *testing.T) {
	r := Remote{ListenPort: 1, Video: Video{StreamPort: 2, Res: "wide"}}
	require.ErrorIs(t, r.Validate(), ErrBadResolution)
}

// TestClientDefaults verifies client defaults validate and build the base URL.
func TestClientDefaults(t *testing.T) {
	c := DefaultClient()
	require.NoError(t, c.Validate())
	require.Equal(t, 60*time.Millisecond, c.FlushPeriod)
	require.Equal(t, "http://localhost:8080", c.BaseURL())

	c.FlushPeriod = 0
	require.Error(t, c.Validate())

	c = DefaultClient()
	c.Scaling = "stretch"
	require.Error(t, c.Validate())
}

// TestLoadEnvFile verifies .env values are loaded without overriding the environment.
func TestLoadEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	data := "# comment\nexport WEBKVM_TEST_A=\"one\"\nWEBKVM_TEST_B=two\nbroken\n"
	require.NoError(t, os.WriteFile(path, []byte(data), 0o600))

	t.Setenv("WEBKVM_TEST_B", "kept")
	require.NoError(t, os.Unsetenv("WEBKVM_TEST_A"))
	t.Cleanup(func() { _ = os.Unsetenv("WEBKVM_TEST_A") })

	require.NoError(t, LoadEnvFile(path))
	require.Equal(t, "one", os.Getenv("WEBKVM_TEST_A"))
	require.Equal(t, "kept", os.Getenv("WEBKVM_TEST_B"))
}

// TestLoadEnvFile_Missing verifies a missing file is ignored.
func TestLoadEnvFile_Missing(t *testing.T) {
	require.NoError(t, LoadEnvFile(filepath.Join(t.TempDir(), "missing.env")))
}
