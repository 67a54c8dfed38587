// Package ffmpeg wraps the ffmpeg CLI for stereo downmixing.
package ffmpeg
