// Package logging constructs the slog loggers used across downmix.
//
// Two formats are supported: a compact single-line console format and
// JSON. Loggers are built once in the command layer and passed down
// explicitly; nothing in this repository logs through a package-level
// default.
package logging
