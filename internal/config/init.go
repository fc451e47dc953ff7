package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/temirov/scout/internal/utils"
)

// InitTarget identifies where configuration should be initialized.
type InitTarget string

const (
	// InitTargetLocal writes configuration into the working directory.
	InitTargetLocal InitTarget = "local"
	// InitTargetGlobal writes configuration into the global configuration directory.
	InitTargetGlobal InitTarget = "global"

	defaultConfigurationTemplate = `provider: openai
model: gpt-4o
api_key_env: ""
max_tokens: 4096
temperature: 0.2
max_retries: 0
max_iterations: 3
parallel_commands: 1
format: raw
review:
  affirmative:
    - "yes"
  negative:
    - "not adequate"
    - "inadequate"
    - "does not address"
    - "doesn't address"
paths:
  exclude: []
  use_gitignore: true
  include_git: false
tokens:
  enabled: false
  model: gpt-4o
`
)

// ErrConfigurationExists is returned when initialization would overwrite a file without Force.
var ErrConfigurationExists = errors.New("configuration file already exists")

const (
	configurationDirectoryMode = 0o755
	configurationFileMode      = 0o600

	errorInitWorkingDirectoryFormat = "determine working directory for configuration: %w"
	errorInitHomeDirectoryFormat    = "resolve home directory for configuration: %w"
	errorInitTargetFormat           = "unsupported init target %q"
	errorInitCreateDirectoryFormat  = "create configuration directory %s: %w"
	errorInitExistsFormat           = "%w at %s"
	errorInitWriteFormat            = "write configuration to %s: %w"
)

// InitOptions controls how configuration initialization behaves.
type InitOptions struct {
	Target           InitTarget
	Force            bool
	WorkingDirectory string
}

// InitializeConfiguration writes the default configuration to the requested target and returns
// its path. Without Force an existing file is left untouched and ErrConfigurationExists returned.
func InitializeConfiguration(options InitOptions) (string, error) {
	destinationPath, resolveErr := initDestination(options)
	if resolveErr != nil {
		return "", resolveErr
	}
	if mkdirErr := os.MkdirAll(filepath.Dir(destinationPath), configurationDirectoryMode); mkdirErr != nil {
		return "", fmt.Errorf(errorInitCreateDirectoryFormat, filepath.Dir(destinationPath), mkdirErr)
	}

	flags := os.O_WRONLY | os.O_CREATE | os.O_EXCL
	if options.Force {
		flags = os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	}
	file, openErr := os.OpenFile(destinationPath, flags, configurationFileMode)
	if errors.Is(openErr, fs.ErrExist) {
		return "", fmt.Errorf(errorInitExistsFormat, ErrConfigurationExists, destinationPath)
	}
	if openErr != nil {
		return "", fmt.Errorf(errorInitWriteFormat, destinationPath, openErr)
	}
	_, writeErr := file.WriteString(defaultConfigurationTemplate)
	closeErr := file.Close()
	if writeErr = errors.Join(writeErr, closeErr); writeErr != nil {
		return "", fmt.Errorf(errorInitWriteFormat, destinationPath, writeErr)
	}
	return destinationPath, nil
}

func initDestination(options InitOptions) (string, error) {
	switch options.Target {
	case "", InitTargetLocal:
		workingDirectory := options.WorkingDirectory
		if workingDirectory == "" {
			current, err := os.Getwd()
			if err != nil {
				return "", fmt.Errorf(errorInitWorkingDirectoryFormat, err)
			}
			workingDirectory = current
		}
		return filepath.Join(workingDirectory, utils.ConfigFileName), nil
	case InitTargetGlobal:
		homeDirectory, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf(errorInitHomeDirectoryFormat, err)
		}
		return filepath.Join(homeDirectory, utils.GlobalConfigDirectoryName, utils.ConfigFileName), nil
	default:
		return "", fmt.Errorf(errorInitTargetFormat, options.Target)
	}
}
