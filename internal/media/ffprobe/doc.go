// Package ffprobe provides a typed wrapper around ffprobe JSON output.
//
// Primary entry point:
//   - Inspect: executes ffprobe and returns a parsed Report
//
// Helper methods on Report expose the audio channel counts the downmix
// decision is based on.
package ffprobe
