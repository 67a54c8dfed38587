package ffprobe

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// StereoChannels is the channel count a stream may carry before it needs
// a downmix.
const StereoChannels = 2

// ErrMalformed tags metadata problems: unparseable JSON, a missing streams
// array, or a non-numeric channel value.
var ErrMalformed = errors.New("malformed ffprobe metadata")

var commandContext = exec.CommandContext

// Report represents the parsed output from an ffprobe inspection.
type Report struct {
	Streams []Stream `json:"streams"`

	// Warnings holds diagnostic text ffprobe wrote to stderr while still
	// exiting zero. Surfaced to the user, never treated as failure.
	Warnings string `json:"-"`

	raw []byte
}

// Stream describes a single stream in the media container. Channels is nil
// for streams that carry no channel count (video, subtitles).
type Stream struct {
	Index      int    `json:"index"`
	CodecName  string `json:"codec_name"`
	CodecType  string `json:"codec_type"`
	SampleRate string `json:"sample_rate"`
	Channels   *int   `json:"channels"`
	Width      int    `json:"width"`
	Height     int    `json:"height"`
}

// Inspect executes ffprobe against the provided path and decodes the JSON
// stream report. The process exit code is the authoritative failure signal;
// stderr from a successful run is preserved in Report.Warnings.
func Inspect(ctx context.Context, binary string, path string) (Report, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = "ffprobe"
	}
	path = strings.TrimSpace(path)
	if path == "" {
		return Report{}, errors.New("ffprobe inspect: empty path")
	}

	cmd := commandContext(ctx, binary, path, "-show_streams", "-loglevel", "error", "-print_format", "json")
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		detail := strings.TrimSpace(stderr.String())
		if detail != "" {
			return Report{}, fmt.Errorf("ffprobe %s: %w: %s", path, err, detail)
		}
		return Report{}, fmt.Errorf("ffprobe %s: %w", path, err)
	}

	report, err := parse(stdout.Bytes())
	if err != nil {
		return Report{}, fmt.Errorf("ffprobe %s: %w", path, err)
	}
	report.Warnings = strings.TrimSpace(stderr.String())
	return report, nil
}

func parse(payload []byte) (Report, error) {
	// Decode loosely first so a missing or mistyped streams field is
	// reported as a structure problem rather than a generic JSON error.
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(payload, &probe); err != nil {
		return Report{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	streamsRaw, ok := probe["streams"]
	if !ok {
		return Report{}, fmt.Errorf("%w: missing streams array", ErrMalformed)
	}
	if string(bytes.TrimSpace(streamsRaw)) == "null" {
		return Report{}, fmt.Errorf("%w: streams is not an array", ErrMalformed)
	}

	var report Report
	if err := json.Unmarshal(streamsRaw, &report.Streams); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && strings.Contains(typeErr.Field, "channels") {
			return Report{}, fmt.Errorf("%w: non-numeric channel count (%s)", ErrMalformed, typeErr.Value)
		}
		return Report{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	report.raw = append([]byte(nil), payload...)
	return report, nil
}

// RawJSON returns the raw ffprobe JSON payload.
func (r Report) RawJSON() []byte {
	return append([]byte(nil), r.raw...)
}

// AudioChannelCounts returns the channel count of every stream that carries
// one, in stream order. Streams without a channel field are skipped.
func (r Report) AudioChannelCounts() []int {
	counts := make([]int, 0, len(r.Streams))
	for _, stream := range r.Streams {
		if stream.Channels != nil {
			counts = append(counts, *stream.Channels)
		}
	}
	return counts
}

// NeedsDownmix reports whether any channel count exceeds stereo.
func NeedsDownmix(channels []int) bool {
	for _, count := range channels {
		if count > StereoChannels {
			return true
		}
	}
	return false
}
