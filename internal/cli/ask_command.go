package cli

import (
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/scout/internal/agent"
	"github.com/temirov/scout/internal/commands"
	"github.com/temirov/scout/internal/config"
	"github.com/temirov/scout/internal/output"
	"github.com/temirov/scout/internal/tokenizer"
)

const (
	askUse              = "ask <question>"
	askAlias            = "a"
	askShortDescription = "answer a question about the repository (" + askAlias + ")"
	askLongDescription  = `Answer a natural-language question about the repository in the current directory.
The model plans tree and show_file probes, the answer is drafted from their output and then
reviewed. A rejected answer is re-planned up to --max-iterations times.
Use --format to select raw, json, or pretty output and --copy to place the answer on the clipboard.`
	askUsageExample = `  # Ask about the project layout
  scout ask "Where is the HTTP server configured?"

  # Emit a JSON document and copy the answer
  scout ask --format json --copy "Which packages have tests?"`

	warningTokenCounterMessage = "token counting disabled"
	warningCopyFailedMessage   = "copying answer failed"
)

// pathOptions are the probe filters shared by ask, tree and serve.
type pathOptions struct {
	exclusionPatterns []string
	disableGitignore  bool
	includeGit        bool
}

func (options *pathOptions) register(command *cobra.Command) {
	command.Flags().StringArrayVarP(&options.exclusionPatterns, exclusionFlagName, exclusionFlagName, nil, "exclude entries matching the pattern (repeatable)")
	registerToggleFlag(command.Flags(), &options.disableGitignore, noGitignoreFlagName, false, "do not apply .gitignore files")
	registerToggleFlag(command.Flags(), &options.includeGit, includeGitFlagName, false, "include the .git directory")
}

// interpreterOptions merges the configured path settings with the flags given on command.
func (options *pathOptions) interpreterOptions(command *cobra.Command, configuration config.ApplicationConfiguration, logger *zap.Logger) commands.InterpreterOptions {
	disableGitignore := !config.BoolOrDefault(configuration.Paths.UseGitignore, true)
	if command.Flags().Changed(noGitignoreFlagName) {
		disableGitignore = options.disableGitignore
	}
	includeGit := config.BoolOrDefault(configuration.Paths.IncludeGit, false)
	if command.Flags().Changed(includeGitFlagName) {
		includeGit = options.includeGit
	}
	exclusions := append(append([]string{}, configuration.Paths.Exclude...), options.exclusionPatterns...)
	return commands.InterpreterOptions{
		DisableGitignore:  disableGitignore,
		ExclusionPatterns: exclusions,
		IncludeGit:        includeGit,
		Parallelism:       config.IntOrDefault(configuration.ParallelCommands, 1),
		Logger:            logger,
	}
}

// resolveFormat prefers an explicit --format flag over the configured format.
func resolveFormat(command *cobra.Command, flagValue string, configuration config.ApplicationConfiguration) (string, error) {
	if command.Flags().Changed(formatFlagName) {
		return output.NormalizeFormat(flagValue)
	}
	return output.NormalizeFormat(configuration.Format)
}

func createAskCommand(app *application) *cobra.Command {
	var (
		format     string
		copyAnswer bool
		paths      pathOptions
	)

	askCommand := &cobra.Command{
		Use:     askUse,
		Aliases: []string{askAlias},
		Short:   askShortDescription,
		Long:    askLongDescription,
		Example: askUsageExample,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(command *cobra.Command, arguments []string) error {
			resolvedFormat, formatError := resolveFormat(command, format, app.configuration)
			if formatError != nil {
				return formatError
			}
			question := strings.TrimSpace(strings.Join(arguments, " "))

			interpreter := commands.NewInterpreter(paths.interpreterOptions(command, app.configuration, app.logger))
			controller, controllerError := app.newController(interpreter)
			if controllerError != nil {
				return controllerError
			}

			result, processError := controller.ProcessQuery(command.Context(), question)
			if processError != nil {
				return processError
			}

			renderError := output.RenderAnswer(app.dependencies.Output, resolvedFormat, output.AnswerDocument{
				SessionID:    result.SessionID,
				Question:     question,
				Answer:       result.Answer,
				Iterations:   result.Iterations,
				LimitReached: result.LimitReached,
			})
			if renderError != nil {
				return renderError
			}
			if copyAnswer {
				if copyError := app.dependencies.Copier.Copy(result.Answer); copyError != nil {
					app.logger.Warn(warningCopyFailedMessage, zap.Error(copyError))
				}
			}
			return nil
		},
	}

	askCommand.Flags().StringVar(&format, formatFlagName, output.FormatRaw, "output format: raw, json, or pretty")
	registerToggleFlag(askCommand.Flags(), &copyAnswer, copyFlagName, false, "copy the answer to the system clipboard")
	paths.register(askCommand)
	return askCommand
}

// newController builds the question loop over interpreter from the loaded configuration.
func (app *application) newController(interpreter *commands.Interpreter) (*agent.Controller, error) {
	completer, completerError := app.dependencies.NewCompleter(app.configuration, app.logger)
	if completerError != nil {
		return nil, completerError
	}
	return agent.NewController(completer, interpreter, agent.Options{
		ModelID:       app.configuration.Model,
		MaxIterations: config.IntOrDefault(app.configuration.MaxIterations, agent.DefaultMaxIterations),
		Review:        agent.NewReviewPolicy(app.configuration.Review.Affirmative, app.configuration.Review.Negative),
		TokenCounter:  app.tokenCounter(),
		Logger:        app.logger,
	}), nil
}

// tokenCounter returns the configured prompt token counter, or nil when counting is disabled or
// the encoding cannot be loaded.
func (app *application) tokenCounter() tokenizer.Counter {
	if !config.BoolOrDefault(app.configuration.Tokens.Enabled, false) {
		return nil
	}
	model := app.configuration.Tokens.Model
	if model == "" {
		model = app.configuration.Model
	}
	counter, encoding, counterError := tokenizer.NewCounter(tokenizer.Config{Model: model})
	if counterError != nil {
		app.logger.Warn(warningTokenCounterMessage, zap.String("model", model), zap.Error(counterError))
		return nil
	}
	app.logger.Debug("counting prompt tokens", zap.String("encoding", encoding))
	return counter
}
