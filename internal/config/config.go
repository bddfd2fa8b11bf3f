// Package config provides configuration loading and validation for logmake.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Sentinel validation errors.
var (
	ErrNoInvocation = errors.New("capture invocation must not be empty")
	ErrNoLogPath    = errors.New("capture log path must not be empty")
	ErrNoOutput     = errors.New("translate output path must not be empty")
	ErrNoMake       = errors.New("build make program must not be empty")
)

// configName is the config file name without extension.
const configName = ".logmake"

// configType is the config file format.
const configType = "yaml"

// envPrefix is the environment variable prefix for logmake settings.
const envPrefix = "LOGMAKE"

// Default configuration values.
const (
	defaultInvocation = "xcodebuild build"
	defaultCleanArg   = "clean"
	defaultLogPath    = "build.log"
	defaultOutput     = "Makefile.generated"
	defaultMake       = "make"
	defaultTarget     = "main"
)

// Config holds all configuration for logmake.
type Config struct {
	Capture   CaptureConfig   `mapstructure:"capture"`
	Translate TranslateConfig `mapstructure:"translate"`
	Build     BuildConfig     `mapstructure:"build"`
}

// CaptureConfig describes how the external build tool is invoked and where
// its combined output is logged.
type CaptureConfig struct {
	Invocation string `mapstructure:"invocation"`
	CleanArg   string `mapstructure:"clean_arg"`
	LogPath    string `mapstructure:"log_path"`
}

// TranslateConfig describes where the generated rule set is written.
type TranslateConfig struct {
	Output string `mapstructure:"output"`
}

// BuildConfig describes how the generated rule set is executed.
type BuildConfig struct {
	MakeProgram string `mapstructure:"make_program"`
	Target      string `mapstructure:"target"`
}

// Load loads configuration from file, env vars, and defaults. If configPath
// is non-empty, it is used as the explicit config file path; otherwise
// .logmake.yaml is searched in the working directory. A missing config file
// is not an error; defaults are used.
func Load(configPath string) (*Config, error) {
	viperCfg := viper.New()

	setDefaults(viperCfg)

	if configPath != "" {
		viperCfg.SetConfigFile(configPath)
	} else {
		viperCfg.SetConfigName(configName)
		viperCfg.SetConfigType(configType)
		viperCfg.AddConfigPath(".")
	}

	viperCfg.SetEnvPrefix(envPrefix)
	viperCfg.AutomaticEnv()
	viperCfg.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	readErr := viperCfg.ReadInConfig()
	if readErr != nil {
		var notFoundErr viper.ConfigFileNotFoundError
		if !errors.As(readErr, &notFoundErr) {
			return nil, fmt.Errorf("failed to read config file: %w", readErr)
		}
	}

	var config Config

	unmarshalErr := viperCfg.Unmarshal(&config)
	if unmarshalErr != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", unmarshalErr)
	}

	validateErr := validate(&config)
	if validateErr != nil {
		return nil, fmt.Errorf("invalid configuration: %w", validateErr)
	}

	return &config, nil
}

// setDefaults sets default configuration values.
func setDefaults(viperCfg *viper.Viper) {
	viperCfg.SetDefault("capture.invocation", defaultInvocation)
	viperCfg.SetDefault("capture.clean_arg", defaultCleanArg)
	viperCfg.SetDefault("capture.log_path", defaultLogPath)

	viperCfg.SetDefault("translate.output", defaultOutput)

	viperCfg.SetDefault("build.make_program", defaultMake)
	viperCfg.SetDefault("build.target", defaultTarget)
}

// validate validates the configuration.
func validate(config *Config) error {
	if strings.TrimSpace(config.Capture.Invocation) == "" {
		return ErrNoInvocation
	}

	if config.Capture.LogPath == "" {
		return ErrNoLogPath
	}

	if config.Translate.Output == "" {
		return ErrNoOutput
	}

	if config.Build.MakeProgram == "" {
		return ErrNoMake
	}

	return nil
}
