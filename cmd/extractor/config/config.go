// Package config assembles the runtime configuration for the extractor CLI
// from flags, environment variables and the optional config file.
package config

import (
	"github.com/spf13/viper"

	"bank-statement-extractor/internal/banks"
	"bank-statement-extractor/internal/detect"
	"bank-statement-extractor/internal/pipeline"
	"bank-statement-extractor/pkg/logger"
)

// CreateLoggerConfig builds the logger configuration. Verbose mode switches
// to debug-level text output; otherwise log-level and log-format from the
// config file or environment apply on top of the defaults.
func CreateLoggerConfig(verbose bool) *logger.Config {
	if verbose {
		return logger.DebugConfig()
	}

	config := logger.DefaultConfig()
	if level := viper.GetString("log-level"); level != "" {
		config.Level = logger.Level(level)
	}
	if format := viper.GetString("log-format"); format != "" {
		config.Format = logger.Format(format)
	}
	if file := viper.GetString("log-file"); file != "" {
		config.Output = logger.FileOutput
		config.File = file
	}
	return config
}

// CreateDetectConfig builds the bank detection configuration. The
// bank-overrides map in the config file pins filenames to banks, bypassing
// detection for statements that are known to confuse it.
func CreateDetectConfig() *detect.Config {
	config := detect.DefaultConfig()

	if overrides := viper.GetStringMapString("bank-overrides"); len(overrides) > 0 {
		config.Overrides = overrides
	}
	if viper.IsSet("fuzzy-threshold") {
		config.Threshold = viper.GetInt("fuzzy-threshold")
	}
	if viper.IsSet("detect-pages") {
		config.Pages = viper.GetInt("detect-pages")
	}

	return config
}

// CreateEngineConfig builds the parsing engine configuration
func CreateEngineConfig() *banks.Config {
	return banks.DefaultConfig()
}

// CreatePipelineConfig assembles the full pipeline configuration from the
// validated CLI flags.
func CreatePipelineConfig(bankOverride, output string, workers int) *pipeline.Config {
	return &pipeline.Config{
		Detect:       CreateDetectConfig(),
		Banks:        CreateEngineConfig(),
		BankOverride: bankOverride,
		Output:       output,
		Workers:      workers,
	}
}
