// Package capture provides screen acquisition and the similarity gate
// that decides whether a new capture is different enough to analyze.
package capture

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"runtime"
	"time"

	"github.com/scrypster/focusd/pkg/types"
)

// Capturer acquires one screen sample. Implementations wrap whatever the
// host OS offers; failures are reported per call and the tracker treats
// them as a skipped tick, never as fatal.
type Capturer interface {
	Capture(ctx context.Context) (*types.CaptureSample, error)
}

// CommandCapturer shells out to an external screenshot tool that writes
// a PNG to stdout.
type CommandCapturer struct {
	command string
	args    []string
	timeout time.Duration
}

// NewCommandCapturer creates a capturer running the given command. An
// empty command selects a platform default.
func NewCommandCapturer(command string, args ...string) *CommandCapturer {
	if command == "" {
		command, args = defaultCaptureCommand()
	}
	return &CommandCapturer{
		command: command,
		args:    args,
		timeout: 15 * time.Second,
	}
}

// defaultCaptureCommand picks a screenshot tool for the current platform.
func defaultCaptureCommand() (string, []string) {
	switch runtime.GOOS {
	case "darwin":
		// screencapture cannot write PNG to stdout directly; /dev/stdout works.
		return "screencapture", []string{"-x", "-t", "png", "/dev/stdout"}
	default:
		// ImageMagick's import grabs the root window on X11.
		return "import", []string{"-window", "root", "-silent", "png:-"}
	}
}

// Capture runs the screenshot command and returns its stdout as a sample.
func (c *CommandCapturer) Capture(ctx context.Context) (*types.CaptureSample, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, c.command, c.args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if msg := bytes.TrimSpace(stderr.Bytes()); len(msg) > 0 {
			return nil, fmt.Errorf("capture command %q failed: %w: %s", c.command, err, msg)
		}
		return nil, fmt.Errorf("capture command %q failed: %w", c.command, err)
	}

	data := stdout.Bytes()
	if len(data) == 0 {
		return nil, fmt.Errorf("capture command %q produced no output", c.command)
	}

	return &types.CaptureSample{
		Data:       data,
		Format:     "png",
		CapturedAt: time.Now(),
	}, nil
}
