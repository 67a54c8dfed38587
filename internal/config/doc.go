// Package config loads and validates the downmix TOML configuration.
//
// Configuration is resolved from an explicit --config path, then
// ~/.config/downmix/config.toml, then ./downmix.toml. A missing file is
// not an error; defaults apply. All path values support ~ expansion and
// are normalized to absolute paths during Load.
package config
