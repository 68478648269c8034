package config

// Source indicates where a configuration value came from.
type Source string

// Configuration source constants.
const (
	// SourceDefault indicates the value is a built-in default.
	SourceDefault Source = "default"

	// SourceGlobal indicates the value came from global config
	// (~/.config/voxlog/config.yaml).
	SourceGlobal Source = "global"

	// SourceLocal indicates the value came from local config
	// (.voxlog.yaml in the working directory).
	SourceLocal Source = "local"

	// SourceEnv indicates the value came from an environment variable.
	SourceEnv Source = "env"
)
