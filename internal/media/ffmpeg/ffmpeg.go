package ffmpeg

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/google/uuid"

	"downmix/internal/fileutil"
)

var commandContext = exec.CommandContext

// Client defines stereo downmix behaviour.
type Client interface {
	Downmix(ctx context.Context, inputPath, outputPath string) (string, error)
}

// Option configures the CLI client.
type Option func(*CLI)

// WithBinary overrides the default binary name.
func WithBinary(binary string) Option {
	return func(c *CLI) {
		if strings.TrimSpace(binary) != "" {
			c.binary = binary
		}
	}
}

// CLI wraps the ffmpeg command-line transcoder.
type CLI struct {
	binary string
}

// NewCLI constructs a CLI client using defaults.
func NewCLI(opts ...Option) *CLI {
	cli := &CLI{binary: "ffmpeg"}
	for _, opt := range opts {
		opt(cli)
	}
	return cli
}

// Downmix re-encodes the input's audio down to two channels while copying
// the video stream untouched. ffmpeg writes to a hidden scratch file next
// to outputPath which is renamed into place only after a clean exit, so an
// interrupted run never leaves a truncated file at the destination.
//
// The returned string carries any stderr diagnostics from a successful run.
func (c *CLI) Downmix(ctx context.Context, inputPath, outputPath string) (string, error) {
	if strings.TrimSpace(inputPath) == "" {
		return "", errors.New("input path required")
	}
	if strings.TrimSpace(outputPath) == "" {
		return "", errors.New("output path required")
	}

	scratch := fileutil.TempSibling(outputPath, "downmix-"+shortToken())

	args := []string{
		"-i", inputPath,
		"-hide_banner",
		"-loglevel", "error",
		"-y",
		"-c:v", "copy",
		"-ac", "2",
		scratch,
	}
	cmd := commandContext(ctx, c.binary, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	cmd.Stdin = nil

	if err := cmd.Run(); err != nil {
		_ = os.Remove(scratch)
		detail := strings.TrimSpace(stderr.String())
		if detail != "" {
			return "", fmt.Errorf("ffmpeg downmix %s: %w: %s", inputPath, err, detail)
		}
		return "", fmt.Errorf("ffmpeg downmix %s: %w", inputPath, err)
	}

	if err := os.Rename(scratch, outputPath); err != nil {
		_ = os.Remove(scratch)
		return "", fmt.Errorf("move downmixed file into place: %w", err)
	}

	return strings.TrimSpace(stderr.String()), nil
}

func shortToken() string {
	return uuid.NewString()[:8]
}

var _ Client = (*CLI)(nil)
