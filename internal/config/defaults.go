package config

const (
	defaultStagingDir       = "~/.local/share/wfpack/staging"
	defaultOutputDir        = "."
	defaultLogDir           = "~/.local/share/wfpack/logs"
	defaultReadmeFile       = "README.md"
	defaultDescriptionFile  = "description.txt"
	defaultArchiveEngine    = "internal"
	defaultZipCommand       = "zip"
	defaultCompressionLevel = 6
	defaultHistoryPath      = "~/.local/share/wfpack/history.db"
	defaultLogFormat        = "console"
	defaultLogLevel         = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			StagingDir: defaultStagingDir,
			OutputDir:  defaultOutputDir,
			LogDir:     defaultLogDir,
		},
		Build: Build{
			ReadmeFile:      defaultReadmeFile,
			DescriptionFile: defaultDescriptionFile,
		},
		Archive: Archive{
			Engine:           defaultArchiveEngine,
			ZipCommand:       defaultZipCommand,
			CompressionLevel: defaultCompressionLevel,
		},
		History: History{
			Enabled: true,
			Path:    defaultHistoryPath,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
