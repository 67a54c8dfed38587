// Package downmixer orchestrates the probe → decide → transcode flow.
//
// A run is strictly sequential: validate the request paths, inspect the
// input with ffprobe, and when any stream reports more than two audio
// channels invoke ffmpeg to write a stereo copy. There are no retries;
// every failure is terminal and tagged with one of the package's sentinel
// errors for classification at the command layer.
package downmixer
