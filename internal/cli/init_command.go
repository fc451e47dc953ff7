package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/temirov/scout/internal/config"
)

const (
	initUse              = "init"
	initShortDescription = "write a default configuration file"
	initLongDescription  = `Write the default configuration to config.yaml in the current directory, or to
~/.scout/config.yaml with --global. An existing file is kept unless --force is given.`
	initUsageExample = `  # Create a project configuration
  scout init

  # Replace the global configuration
  scout init --global --force`

	initWrittenFormat = "configuration written to %s\n"
)

func createInitCommand(app *application) *cobra.Command {
	var (
		global bool
		force  bool
	)

	initCommand := &cobra.Command{
		Use:     initUse,
		Short:   initShortDescription,
		Long:    initLongDescription,
		Example: initUsageExample,
		Args:    cobra.NoArgs,
		// init must work when existing configuration is invalid, so it skips loading it.
		PersistentPreRunE: func(command *cobra.Command, arguments []string) error {
			return nil
		},
		RunE: func(command *cobra.Command, arguments []string) error {
			workingDirectory, workingDirectoryError := app.dependencies.WorkingDirectory()
			if workingDirectoryError != nil {
				return workingDirectoryError
			}
			target := config.InitTargetLocal
			if global {
				target = config.InitTargetGlobal
			}
			destinationPath, initError := config.InitializeConfiguration(config.InitOptions{
				Target:           target,
				Force:            force,
				WorkingDirectory: workingDirectory,
			})
			if initError != nil {
				return initError
			}
			_, writeError := fmt.Fprintf(app.dependencies.Output, initWrittenFormat, destinationPath)
			return writeError
		},
	}

	registerToggleFlag(initCommand.Flags(), &global, globalFlagName, false, "write the global configuration under the home directory")
	registerToggleFlag(initCommand.Flags(), &force, forceFlagName, false, "overwrite an existing configuration file")
	return initCommand
}
