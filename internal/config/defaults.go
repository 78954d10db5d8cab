package config

const (
	defaultDataDir              = "~/.local/share/samplerank"
	defaultLogDir               = "~/.local/share/samplerank/logs"
	defaultExportDir            = "~/Music/samplerank"
	defaultAdvancementThreshold = 0.5
	defaultPrefetchCount        = 3
	defaultMinExportScore       = 1
	defaultPrefetchBytes        = 256 << 10
	defaultPrefetchWorkers      = 4
	defaultRemotePrefix         = "samplerank/sessions"
	defaultLogFormat            = "console"
	defaultLogLevel             = "info"
	defaultLogRetentionDays     = 30
)

var defaultExtensions = []string{"wav", "mp3", "flac", "ogg", "aiff", "m4a"}

// Default returns a Config populated with defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir:   defaultDataDir,
			LogDir:    defaultLogDir,
			ExportDir: defaultExportDir,
		},
		Tournament: Tournament{
			AdvancementThreshold: defaultAdvancementThreshold,
			PrefetchCount:        defaultPrefetchCount,
			MinExportScore:       defaultMinExportScore,
		},
		Scan: Scan{
			Extensions: append([]string(nil), defaultExtensions...),
		},
		Prefetch: Prefetch{
			Enabled: true,
			Bytes:   defaultPrefetchBytes,
			Workers: defaultPrefetchWorkers,
		},
		Remote: Remote{
			Prefix: defaultRemotePrefix,
			Gzip:   true,
		},
		Logging: Logging{
			Format:        defaultLogFormat,
			Level:         defaultLogLevel,
			RetentionDays: defaultLogRetentionDays,
		},
	}
}
