// Package config provides configuration management for the vendorperf CLI.
//
// The shared target type lives in pkg/core and is re-exported here via a
// type alias; defaults shared with the pipeline live in internal/config.
package config

import (
	sharedcfg "github.com/leapstack-labs/vendorperf/internal/config"
	"github.com/leapstack-labs/vendorperf/internal/logging"
	"github.com/leapstack-labs/vendorperf/pkg/core"
)

// TargetConfig is an alias for the shared target configuration.
// This allows CLI code to use config.TargetConfig without importing pkg/core.
type TargetConfig = core.TargetConfig

// LogConfig configures the log file sink.
type LogConfig struct {
	Dir   string `koanf:"dir" yaml:"dir"`
	File  string `koanf:"file" yaml:"file"`
	Level string `koanf:"level" yaml:"level"`
}

// Options converts the config into logging options.
func (l LogConfig) Options() logging.Options {
	return logging.Options{Dir: l.Dir, File: l.File, Level: l.Level}
}

// Config holds all CLI configuration options.
type Config struct {
	InputDir     string               `koanf:"input_dir" yaml:"input_dir"`
	StatePath    string               `koanf:"state_path" yaml:"state_path"`
	Environment  string               `koanf:"environment" yaml:"environment,omitempty"`
	Verbose      bool                 `koanf:"verbose" yaml:"verbose"`
	OutputFormat string               `koanf:"output" yaml:"output"`
	Log          LogConfig            `koanf:"log" yaml:"log"`
	Target       *TargetConfig        `koanf:"target" yaml:"target"`
	Environments map[string]EnvConfig `koanf:"environments" yaml:"environments,omitempty"`

	// ProjectRoot is the directory relative paths are resolved against.
	ProjectRoot string `koanf:"-" yaml:"-"`
}

// EnvConfig holds environment-specific configuration overrides.
type EnvConfig struct {
	InputDir string        `koanf:"input_dir" yaml:"input_dir,omitempty"`
	Target   *TargetConfig `koanf:"target" yaml:"target,omitempty"`
}

// Default configuration values - uses shared defaults from internal/config
const (
	DefaultInputDir  = sharedcfg.DefaultInputDir
	DefaultStateFile = sharedcfg.DefaultStateFile
	DefaultOutput    = sharedcfg.DefaultOutput
	DefaultLogDir    = sharedcfg.DefaultLogDir
	DefaultLogFile   = sharedcfg.DefaultLogFile
	DefaultLogLevel  = sharedcfg.DefaultLogLevel
	DefaultFileName  = "vendorperf.yaml"
)

// Default returns the configuration used when nothing else is set.
func Default() *Config {
	return &Config{
		InputDir:     DefaultInputDir,
		StatePath:    DefaultStateFile,
		OutputFormat: DefaultOutput,
		Log: LogConfig{
			Dir:   DefaultLogDir,
			File:  DefaultLogFile,
			Level: DefaultLogLevel,
		},
		Target: &TargetConfig{
			Type:     sharedcfg.DefaultTarget,
			Database: sharedcfg.DefaultDatabase,
		},
	}
}
