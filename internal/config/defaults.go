package config

const (
	defaultConfigPath             = "~/.config/vibecut/config.toml"
	defaultWorkDir                = "~/.local/share/vibecut/work"
	defaultLogDir                 = "~/.local/share/vibecut/logs"
	defaultHistoryDB              = "~/.local/share/vibecut/history.db"
	defaultBind                   = "127.0.0.1:8765"
	defaultMaxUploadMiB           = 2048
	defaultMaxConcurrentRenders   = 2
	defaultReadTimeoutSeconds     = 300
	defaultWriteTimeoutSeconds    = 1800
	defaultShutdownTimeoutSeconds = 10
	defaultFFmpegBinary           = "ffmpeg"
	defaultFFprobeBinary          = "ffprobe"
	defaultDiagnosticTailBytes    = 4000
	defaultProbeConcurrency       = 4
	defaultProbeTimeoutSeconds    = 30
	defaultAudioSampleRate        = 48000
	defaultAudioChannelLayout     = "stereo"
	defaultPixelFormat            = "yuv420p"
	defaultFillerColor            = "black"
	defaultSpeedFloor             = 0.01
	defaultHistoryRetentionDays   = 30
	defaultStaleAfterHours        = 24
	defaultLogFormat              = "console"
	defaultLogLevel               = "info"
	defaultLogRetentionDays       = 14
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			WorkDir:   defaultWorkDir,
			LogDir:    defaultLogDir,
			HistoryDB: defaultHistoryDB,
		},
		Server: Server{
			Bind:                   defaultBind,
			CORSOrigins:            []string{"*"},
			MaxUploadMiB:           defaultMaxUploadMiB,
			MaxConcurrentRenders:   defaultMaxConcurrentRenders,
			ReadTimeoutSeconds:     defaultReadTimeoutSeconds,
			WriteTimeoutSeconds:    defaultWriteTimeoutSeconds,
			ShutdownTimeoutSeconds: defaultShutdownTimeoutSeconds,
		},
		Engine: Engine{
			FFmpegBinary:        defaultFFmpegBinary,
			FFprobeBinary:       defaultFFprobeBinary,
			DiagnosticTailBytes: defaultDiagnosticTailBytes,
			ProbeConcurrency:    defaultProbeConcurrency,
			ProbeTimeoutSeconds: defaultProbeTimeoutSeconds,
		},
		Compiler: Compiler{
			AudioSampleRate:    defaultAudioSampleRate,
			AudioChannelLayout: defaultAudioChannelLayout,
			PixelFormat:        defaultPixelFormat,
			FillerColor:        defaultFillerColor,
			SpeedFloor:         defaultSpeedFloor,
		},
		History: History{
			Enabled:       true,
			RetentionDays: defaultHistoryRetentionDays,
		},
		Workspace: Workspace{
			StaleAfterHours: defaultStaleAfterHours,
		},
		Logging: Logging{
			Format:        defaultLogFormat,
			Level:         defaultLogLevel,
			RetentionDays: defaultLogRetentionDays,
		},
	}
}
