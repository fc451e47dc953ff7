package cli

import (
	"github.com/spf13/cobra"

	"github.com/temirov/scout/internal/commands"
	"github.com/temirov/scout/internal/output"
)

const (
	treeUse              = "tree [path]"
	treeAlias            = "t"
	treeShortDescription = "display a directory tree (" + treeAlias + ")"
	treeLongDescription  = `List directories and files below a path exactly as the agent sees them.
.gitignore files, the .git directory and -e patterns are applied. Use --depth to limit how many
levels are listed and --format to select raw, json, or pretty output.`
	treeUsageExample = `  # Render the current directory two levels deep
  scout tree --depth 2

  # Exclude generated files
  scout tree -e "*.pb.go" ./api`

	showUse              = "show <file>"
	showAlias            = "s"
	showShortDescription = "show file content (" + showAlias + ")"
	showLongDescription  = `Print the content of a text file exactly as the agent reads it.
Use --format to select raw, json, or pretty output.`
	showUsageExample = `  # Display a file
  scout show go.mod`
)

func createTreeCommand(app *application) *cobra.Command {
	var (
		format string
		depth  int
		paths  pathOptions
	)

	treeCommand := &cobra.Command{
		Use:     treeUse,
		Aliases: []string{treeAlias},
		Short:   treeShortDescription,
		Long:    treeLongDescription,
		Example: treeUsageExample,
		Args:    cobra.MaximumNArgs(1),
		RunE: func(command *cobra.Command, arguments []string) error {
			resolvedFormat, formatError := resolveFormat(command, format, app.configuration)
			if formatError != nil {
				return formatError
			}
			path := defaultPath
			if len(arguments) == 1 {
				path = arguments[0]
			}
			treeDepth := commands.UnlimitedDepth
			if depth >= 0 {
				treeDepth = commands.LimitedDepth(depth)
			}

			interpreter := commands.NewInterpreter(paths.interpreterOptions(command, app.configuration, app.logger))
			result, renderError := interpreter.RenderDirectory(path, treeDepth)
			if renderError != nil {
				return renderError
			}
			return output.RenderProbe(app.dependencies.Output, resolvedFormat, output.ProbeDocument{
				Command: result.Command,
				Path:    path,
				Output:  result.Output,
			})
		},
	}

	treeCommand.Flags().StringVar(&format, formatFlagName, output.FormatRaw, "output format: raw, json, or pretty")
	treeCommand.Flags().IntVar(&depth, depthFlagName, unlimitedDepth, "maximum number of levels to list; negative lists everything")
	paths.register(treeCommand)
	return treeCommand
}

func createShowCommand(app *application) *cobra.Command {
	var format string

	showCommand := &cobra.Command{
		Use:     showUse,
		Aliases: []string{showAlias},
		Short:   showShortDescription,
		Long:    showLongDescription,
		Example: showUsageExample,
		Args:    cobra.ExactArgs(1),
		RunE: func(command *cobra.Command, arguments []string) error {
			resolvedFormat, formatError := resolveFormat(command, format, app.configuration)
			if formatError != nil {
				return formatError
			}
			path := arguments[0]
			interpreter := commands.NewInterpreter(commands.InterpreterOptions{Logger: app.logger})
			result, showError := interpreter.Execute(commands.ShowFile{Path: path})
			if showError != nil {
				return showError
			}
			return output.RenderProbe(app.dependencies.Output, resolvedFormat, output.ProbeDocument{
				Command: result.Command,
				Path:    path,
				Output:  result.Output,
			})
		},
	}

	showCommand.Flags().StringVar(&format, formatFlagName, output.FormatRaw, "output format: raw, json, or pretty")
	return showCommand
}
