//go:build !windows

// Package ffmpeg captures video frames through an ffmpeg child process.
package ffmpeg

import "os/exec"

// configureCmd is a no-op outside Windows.
func configureCmd(cmd *exec.Cmd) {
	_ = cmd
}
