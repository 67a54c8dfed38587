package deps

import (
	"fmt"
	"os/exec"
	"strings"

	"downmix/internal/config"
)

// Requirement defines an external tool downmix relies on.
type Requirement struct {
	Name        string
	Command     string
	Description string
}

// Status reports the availability of a requirement.
type Status struct {
	Requirement
	Available bool
	Detail    string
}

// Default returns the tool set the core flow shells out to, honoring any
// binary overrides from the configuration.
func Default(cfg *config.Config) []Requirement {
	ffprobe := "ffprobe"
	ffmpeg := "ffmpeg"
	if cfg != nil {
		ffprobe = cfg.FFprobeBinary()
		ffmpeg = cfg.FFmpegBinary()
	}
	return []Requirement{
		{Name: "FFprobe", Command: ffprobe, Description: "Stream metadata inspection"},
		{Name: "FFmpeg", Command: ffmpeg, Description: "Stereo downmix transcoding"},
	}
}

// Check evaluates the provided requirements and reports availability.
func Check(requirements []Requirement) []Status {
	results := make([]Status, 0, len(requirements))
	for _, req := range requirements {
		req.Command = strings.TrimSpace(req.Command)
		status := Status{Requirement: req}
		if req.Command == "" {
			status.Detail = "command not configured"
			results = append(results, status)
			continue
		}
		resolved, err := exec.LookPath(req.Command)
		if err != nil {
			status.Detail = fmt.Sprintf("binary %q not found", req.Command)
			results = append(results, status)
			continue
		}
		status.Command = resolved
		status.Available = true
		results = append(results, status)
	}
	return results
}

// Verify returns an error naming the first unavailable requirement.
func Verify(requirements []Requirement) error {
	for _, status := range Check(requirements) {
		if !status.Available {
			return fmt.Errorf("%s unavailable: %s", strings.ToLower(status.Name), status.Detail)
		}
	}
	return nil
}
