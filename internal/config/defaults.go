package config

const (
	defaultScriptDir        = "~/.local/share/phrasesync/scripts"
	defaultLogDir           = "~/.local/share/phrasesync/logs"
	defaultStateDir         = "~/.local/share/phrasesync/state"
	defaultAPIBind          = "127.0.0.1:7491"
	defaultRepeatRate       = 0.75
	defaultSampleIntervalMS = 50
	defaultRepeatGuardMS    = 0
	defaultScriptName       = "example"
	defaultNtfyTimeout      = 10
	defaultLogFormat        = "console"
	defaultLogLevel         = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			ScriptDir: defaultScriptDir,
			LogDir:    defaultLogDir,
			StateDir:  defaultStateDir,
			APIBind:   defaultAPIBind,
		},
		Playback: Playback{
			RepeatRate:       defaultRepeatRate,
			SampleIntervalMS: defaultSampleIntervalMS,
			RepeatGuardMS:    defaultRepeatGuardMS,
			DefaultScript:    defaultScriptName,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNtfyTimeout,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
