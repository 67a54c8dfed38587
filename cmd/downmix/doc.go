// Command downmix inspects a media file's audio streams with ffprobe and,
// when any stream carries more than two channels, produces a stereo copy
// with ffmpeg while leaving the video untouched.
//
// Usage:
//
//	downmix <input_path> <output_path> [-q] [-f]
//
// Supporting subcommands: probe, history, deps, config.
package main
