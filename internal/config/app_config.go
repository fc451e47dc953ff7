package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/temirov/scout/internal/utils"
)

// LoadOptions controls how application configuration is discovered.
type LoadOptions struct {
	WorkingDirectory string
	ExplicitFilePath string
}

// ApplicationConfiguration holds scout defaults loaded from configuration files.
type ApplicationConfiguration struct {
	Model            string              `mapstructure:"model"`
	Provider         string              `mapstructure:"provider"`
	APIKeyEnv        string              `mapstructure:"api_key_env"`
	MaxTokens        *int                `mapstructure:"max_tokens"`
	Temperature      *float64            `mapstructure:"temperature"`
	MaxRetries       *int                `mapstructure:"max_retries"`
	MaxIterations    *int                `mapstructure:"max_iterations"`
	ParallelCommands *int                `mapstructure:"parallel_commands"`
	Format           string              `mapstructure:"format"`
	Review           ReviewConfiguration `mapstructure:"review"`
	Paths            PathConfiguration   `mapstructure:"paths"`
	Tokens           TokenConfiguration  `mapstructure:"tokens"`
}

// ReviewConfiguration lists the tokens used to classify review verdicts.
type ReviewConfiguration struct {
	Affirmative []string `mapstructure:"affirmative"`
	Negative    []string `mapstructure:"negative"`
}

// PathConfiguration configures exclusion rules for tree probes.
type PathConfiguration struct {
	Exclude      []string `mapstructure:"exclude"`
	UseGitignore *bool    `mapstructure:"use_gitignore"`
	IncludeGit   *bool    `mapstructure:"include_git"`
}

// TokenConfiguration controls prompt token estimation.
type TokenConfiguration struct {
	Enabled *bool  `mapstructure:"enabled"`
	Model   string `mapstructure:"model"`
}

const (
	// EnvironmentPrefix prefixes environment variables overriding scalar configuration keys, as in
	// SCOUT_MODEL or SCOUT_PATHS_USE_GITIGNORE.
	EnvironmentPrefix = "scout"

	errorWorkingDirectoryFormat  = "determine working directory: %w"
	errorResolvePathFormat       = "resolve configuration path %s: %w"
	errorStatFormat              = "stat configuration %s: %w"
	errorPathIsDirectoryFormat   = "configuration path %s is a directory"
	errorReadFormat              = "read configuration from %s: %w"
	errorDecodeFormat            = "decode configuration from %s: %w"
	errorBindEnvironmentFormat   = "bind environment for %s: %w"
	errorDecodeEnvironmentFormat = "decode configuration from environment: %w"
	environmentSourceName        = "environment"
)

// environmentKeys are the configuration keys that can be overridden from the environment. List
// keys are file-only.
var environmentKeys = []string{
	"model",
	"provider",
	"api_key_env",
	"max_tokens",
	"temperature",
	"max_retries",
	"max_iterations",
	"parallel_commands",
	"format",
	"paths.use_gitignore",
	"paths.include_git",
	"tokens.enabled",
	"tokens.model",
}

// LoadApplicationConfiguration layers the global file, the local or explicit file and SCOUT_*
// environment variables, later sources overriding earlier ones key by key.
func LoadApplicationConfiguration(options LoadOptions) (ApplicationConfiguration, error) {
	workingDirectory := options.WorkingDirectory
	if workingDirectory == "" {
		currentDirectory, err := os.Getwd()
		if err != nil {
			return ApplicationConfiguration{}, fmt.Errorf(errorWorkingDirectoryFormat, err)
		}
		workingDirectory = currentDirectory
	}

	var sources []string
	if homeDirectory, err := os.UserHomeDir(); err == nil && homeDirectory != "" {
		sources = append(sources, filepath.Join(homeDirectory, utils.GlobalConfigDirectoryName, utils.ConfigFileName))
	}
	localPath, resolveErr := resolveLocalConfigPath(workingDirectory, options.ExplicitFilePath)
	if resolveErr != nil {
		return ApplicationConfiguration{}, resolveErr
	}
	sources = append(sources, localPath)

	var merged ApplicationConfiguration
	for _, source := range sources {
		layer, loadErr := loadConfigurationFromPath(source)
		if loadErr != nil {
			return ApplicationConfiguration{}, loadErr
		}
		merged = merged.Merge(layer)
	}

	environmentLayer, environmentErr := loadConfigurationFromEnvironment()
	if environmentErr != nil {
		return ApplicationConfiguration{}, environmentErr
	}
	merged = merged.Merge(environmentLayer)
	merged.Paths.Exclude = utils.DeduplicatePatterns(merged.Paths.Exclude)
	return merged, nil
}

// resolveLocalConfigPath returns the explicit path resolved against workingDirectory, or the
// default local file.
func resolveLocalConfigPath(workingDirectory, explicitPath string) (string, error) {
	switch {
	case explicitPath == "":
		return filepath.Join(workingDirectory, utils.ConfigFileName), nil
	case filepath.IsAbs(explicitPath):
		return explicitPath, nil
	case workingDirectory != "":
		return filepath.Join(workingDirectory, explicitPath), nil
	}
	absolute, err := filepath.Abs(explicitPath)
	if err != nil {
		return "", fmt.Errorf(errorResolvePathFormat, explicitPath, err)
	}
	return absolute, nil
}

// loadConfigurationFromPath reads one YAML file. A missing file is an empty layer.
func loadConfigurationFromPath(path string) (ApplicationConfiguration, error) {
	info, statErr := os.Stat(path)
	if os.IsNotExist(statErr) {
		return ApplicationConfiguration{}, nil
	}
	if statErr != nil {
		return ApplicationConfiguration{}, fmt.Errorf(errorStatFormat, path, statErr)
	}
	if info.IsDir() {
		return ApplicationConfiguration{}, fmt.Errorf(errorPathIsDirectoryFormat, path)
	}

	reader := viper.New()
	reader.SetConfigFile(path)
	if readErr := reader.ReadInConfig(); readErr != nil {
		return ApplicationConfiguration{}, fmt.Errorf(errorReadFormat, path, readErr)
	}
	var layer ApplicationConfiguration
	if decodeErr := reader.Unmarshal(&layer); decodeErr != nil {
		return ApplicationConfiguration{}, fmt.Errorf(errorDecodeFormat, path, decodeErr)
	}
	return layer, nil
}

// loadConfigurationFromEnvironment decodes the SCOUT_* variables that are set. Unset variables
// leave their keys empty so they do not override file values.
func loadConfigurationFromEnvironment() (ApplicationConfiguration, error) {
	reader := viper.New()
	reader.SetEnvPrefix(EnvironmentPrefix)
	reader.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	for _, key := range environmentKeys {
		if bindErr := reader.BindEnv(key); bindErr != nil {
			return ApplicationConfiguration{}, fmt.Errorf(errorBindEnvironmentFormat, key, bindErr)
		}
	}
	var layer ApplicationConfiguration
	if decodeErr := reader.Unmarshal(&layer); decodeErr != nil {
		return ApplicationConfiguration{}, fmt.Errorf(errorDecodeEnvironmentFormat, decodeErr)
	}
	return layer, nil
}

// Merge overlays the values set in override onto the receiver. Empty strings, nil pointers and
// empty lists in override keep the receiver's value.
func (config ApplicationConfiguration) Merge(override ApplicationConfiguration) ApplicationConfiguration {
	return ApplicationConfiguration{
		Model:            overrideString(config.Model, override.Model),
		Provider:         overrideString(config.Provider, override.Provider),
		APIKeyEnv:        overrideString(config.APIKeyEnv, override.APIKeyEnv),
		MaxTokens:        overridePointer(config.MaxTokens, override.MaxTokens),
		Temperature:      overridePointer(config.Temperature, override.Temperature),
		MaxRetries:       overridePointer(config.MaxRetries, override.MaxRetries),
		MaxIterations:    overridePointer(config.MaxIterations, override.MaxIterations),
		ParallelCommands: overridePointer(config.ParallelCommands, override.ParallelCommands),
		Format:           overrideString(config.Format, override.Format),
		Review: ReviewConfiguration{
			Affirmative: overrideList(config.Review.Affirmative, override.Review.Affirmative),
			Negative:    overrideList(config.Review.Negative, override.Review.Negative),
		},
		Paths: PathConfiguration{
			Exclude:      overrideList(config.Paths.Exclude, override.Paths.Exclude),
			UseGitignore: overridePointer(config.Paths.UseGitignore, override.Paths.UseGitignore),
			IncludeGit:   overridePointer(config.Paths.IncludeGit, override.Paths.IncludeGit),
		},
		Tokens: TokenConfiguration{
			Enabled: overridePointer(config.Tokens.Enabled, override.Tokens.Enabled),
			Model:   overrideString(config.Tokens.Model, override.Tokens.Model),
		},
	}
}

func overrideString(base string, override string) string {
	if override != "" {
		return override
	}
	return base
}

// overridePointer returns a copy of override when set, else base. Copies keep merged
// configurations from aliasing their layers.
func overridePointer[T any](base *T, override *T) *T {
	if override == nil {
		return base
	}
	cloned := *override
	return &cloned
}

func overrideList(base []string, override []string) []string {
	if len(override) == 0 {
		return base
	}
	return append([]string(nil), override...)
}

// IntOrDefault returns the pointed value or fallback when value is nil.
func IntOrDefault(value *int, fallback int) int {
	if value == nil {
		return fallback
	}
	return *value
}

// BoolOrDefault returns the pointed value or fallback when value is nil.
func BoolOrDefault(value *bool, fallback bool) bool {
	if value == nil {
		return fallback
	}
	return *value
}
