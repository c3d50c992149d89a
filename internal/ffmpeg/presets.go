// Package ffmpeg captures video frames through an ffmpeg child process.
package ffmpeg

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/frudas24/webkvm/internal/mjpeg"
)

// TestDevice selects the built-in ffmpeg test pattern instead of a capture device.
const TestDevice = "test"

// ErrDeviceName is returned when the platform needs a named capture device.
var ErrDeviceName = errors.New("ffmpeg: dshow capture needs a device name")

// BuildArgs returns the ffmpeg arguments capturing device as packed rgb24 on stdout.
// Device "-1" picks the first device, a number picks that index and anything else
// is passed through as a device path or name.
func BuildArgs(s mjpeg.Settings, device, goos string) ([]string, error) {
	input, err := buildInputArgs(s, device, goos)
	if err != nil {
		return nil, err
	}
	return append(input, buildOutputArgs(s)...), nil
}

// buildInputArgs builds the capture-side arguments.
func buildInputArgs(s mjpeg.Settings, device, goos string) ([]string, error) {
	size := fmt.Sprintf("%dx%d", s.Width, s.Height)
	rate := strconv.Itoa(s.FPS)
	device = strings.TrimSpace(device)
	index, numeric := deviceIndex(device)

	if device == TestDevice {
		return []string{
			"-re",
			"-f", "lavfi",
			"-i", fmt.Sprintf("testsrc=size=%s:rate=%s", size, rate),
		}, nil
	}

	switch goos {
	case "windows":
		if numeric {
			return nil, ErrDeviceName
		}
		return []string{
			"-f", "dshow",
			"-framerate", rate,
			"-video_size", size,
			"-i", "video=" + device,
		}, nil
	case "darwin":
		input := device
		if numeric {
			input = strconv.Itoa(index)
		}
		return []string{
			"-f", "avfoundation",
			"-framerate", rate,
			"-video_size", size,
			"-i", input + ":none",
		}, nil
	default:
		input := device
		if numeric {
			input = "/dev/video" + strconv.Itoa(index)
		}
		return []string{
			"-f", "v4l2",
			"-framerate", rate,
			"-video_size", size,
			"-i", input,
		}, nil
	}
}

// buildOutputArgs scales to the configured size so every frame has a fixed length.
func buildOutputArgs(s mjpeg.Settings) []string {
	return []string{
		"-an",
		"-vf", fmt.Sprintf("scale=%d:%d", s.Width, s.Height),
		"-pix_fmt", "rgb24",
		"-f", "rawvideo",
		"-",
	}
}

// deviceIndex maps "-1" and non-negative numbers to a device index.
func deviceIndex(device string) (int, bool) {
	if device == "" {
		return 0, true
	}
	v, err := strconv.Atoi(device)
	if err != nil {
		return 0, false
	}
	if v < 0 {
		return 0, true
	}
	return v, true
}
