package config

const (
	defaultDataRoot          = "~/robot_data"
	defaultManifestPath      = "~/.local/share/neura/manifest/episodes.json"
	defaultOutputDir         = "~/.local/share/neura/output"
	defaultLogDir            = "~/.local/share/neura/logs"
	defaultWorkers           = 16
	defaultStabilityMinBytes = 50 * 1024 * 1024
	defaultStabilityPauseMS  = 150
	defaultFPSExpected       = 30.0
	defaultFrameTolerance    = 2
	defaultSplitSeed         = 42
	defaultTrainRatio        = 0.8
	defaultValRatio          = 0.1
	defaultTestRatio         = 0.1
	defaultLinkMethod        = "symlink"
	defaultLogFormat         = "console"
	defaultLogLevel          = "info"
)

// MaxWorkers caps the fingerprinting pool; requests above it are clamped.
const MaxWorkers = 64

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataRoot:     defaultDataRoot,
			ManifestPath: defaultManifestPath,
			OutputDir:    defaultOutputDir,
			LogDir:       defaultLogDir,
		},
		Discovery: Discovery{
			Workers:           defaultWorkers,
			StabilityMinBytes: defaultStabilityMinBytes,
			StabilityPauseMS:  defaultStabilityPauseMS,
		},
		Validation: Validation{
			FPSExpected:    defaultFPSExpected,
			FrameTolerance: defaultFrameTolerance,
		},
		Materialize: Materialize{
			Seed:       defaultSplitSeed,
			TrainRatio: defaultTrainRatio,
			ValRatio:   defaultValRatio,
			TestRatio:  defaultTestRatio,
			LinkMethod: defaultLinkMethod,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
