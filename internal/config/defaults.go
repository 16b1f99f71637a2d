package config

const (
	defaultPresentationsDir = "presentations"
	defaultImagesDir        = "images"
	defaultAnnotationsPath  = "./annotations.csv"
	defaultLogDir           = "."
	defaultStateDir         = ".slideset"
	defaultLogFormat        = "console"
	defaultLogLevel         = "info"
	defaultLogRetentionDays = 30

	defaultLabelStrategy = LabelStrategyLast
	defaultLedgerKey     = LedgerKeyLabel
	defaultJPEGQuality   = 75

	defaultPollIntervalMS = 33
	defaultCommitPauseMS  = 100
	defaultDisplayWidth   = 1000
	defaultDisplayHeight  = 680
)

// Label strategies control how the slide label accumulator treats text runs.
const (
	LabelStrategyLast  = "last"
	LabelStrategyFirst = "first"
)

// Ledger key schemes control which identifier protects an artifact from cleanup.
const (
	LedgerKeyLabel  = "label"
	LedgerKeyDigits = "digits"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			PresentationsDir: defaultPresentationsDir,
			ImagesDir:        defaultImagesDir,
			AnnotationsPath:  defaultAnnotationsPath,
			LogDir:           defaultLogDir,
			StateDir:         defaultStateDir,
		},
		Extraction: Extraction{
			LabelStrategy: defaultLabelStrategy,
			LedgerKey:     defaultLedgerKey,
			JPEGQuality:   defaultJPEGQuality,
			Cleanup:       true,
		},
		Annotation: Annotation{
			PollIntervalMS: defaultPollIntervalMS,
			CommitPauseMS:  defaultCommitPauseMS,
			DisplayWidth:   defaultDisplayWidth,
			DisplayHeight:  defaultDisplayHeight,
		},
		Logging: Logging{
			Format:        defaultLogFormat,
			Level:         defaultLogLevel,
			RetentionDays: defaultLogRetentionDays,
		},
	}
}
