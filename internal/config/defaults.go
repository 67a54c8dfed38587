package config

const (
	defaultLogDir          = "~/.local/share/downmix/logs"
	defaultHistoryPath     = "~/.local/share/downmix/history.db"
	defaultHistoryKeepLast = 200
	defaultLogFormat       = "console"
	defaultLogLevel        = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			LogDir: defaultLogDir,
		},
		Tools: Tools{
			FFprobe: "ffprobe",
			FFmpeg:  "ffmpeg",
		},
		Workflow: Workflow{
			ToolTimeoutSeconds: 0,
		},
		History: History{
			Enabled:  true,
			Path:     defaultHistoryPath,
			KeepLast: defaultHistoryKeepLast,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
