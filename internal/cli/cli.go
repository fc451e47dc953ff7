// Package cli provides the command line interface.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/scout/internal/config"
	"github.com/temirov/scout/internal/llm"
	"github.com/temirov/scout/internal/services/clipboard"
	"github.com/temirov/scout/internal/utils"
)

const (
	configFlagName        = "config"
	verboseFlagName       = "verbose"
	modelFlagName         = "model"
	providerFlagName      = "provider"
	maxIterationsFlagName = "max-iterations"
	parallelFlagName      = "parallel"
	formatFlagName        = "format"
	copyFlagName          = "copy"
	exclusionFlagName     = "e"
	noGitignoreFlagName   = "no-gitignore"
	includeGitFlagName    = "git"
	depthFlagName         = "depth"
	globalFlagName        = "global"
	forceFlagName         = "force"

	defaultPath     = "."
	unlimitedDepth  = -1
	versionTemplate = "scout version: {{.Version}}\n"

	rootUse              = "scout"
	rootShortDescription = "answer questions about a code repository"
	rootLongDescription  = `scout answers natural-language questions about the repository in the current directory.
It asks a language model to plan which directory trees and files to inspect, runs those probes
locally, drafts an answer from what it found and has the model review the answer before printing it.
The tree and show commands run single probes without a model.`

	errorLoadConfigurationFormat = "load configuration: %w"
	errorInitializeLoggerFormat  = "initialize logger: %w"
)

// Dependencies holds the collaborators the command line interface builds its commands from.
type Dependencies struct {
	// NewCompleter builds the language model client used by ask.
	NewCompleter func(configuration config.ApplicationConfiguration, logger *zap.Logger) (llm.Completer, error)
	// NewLogger builds the diagnostic logger.
	NewLogger func(verbose bool) (*zap.Logger, error)
	Copier    clipboard.Copier
	Output    io.Writer
	// WorkingDirectory resolves the directory configuration is loaded from.
	WorkingDirectory func() (string, error)
}

// DefaultDependencies returns the production collaborators.
func DefaultDependencies() Dependencies {
	return Dependencies{
		NewCompleter:     newGollmCompleter,
		NewLogger:        utils.NewApplicationLogger,
		Copier:           clipboard.NewService(),
		Output:           os.Stdout,
		WorkingDirectory: os.Getwd,
	}
}

func (dependencies Dependencies) withDefaults() Dependencies {
	defaults := DefaultDependencies()
	if dependencies.NewCompleter == nil {
		dependencies.NewCompleter = defaults.NewCompleter
	}
	if dependencies.NewLogger == nil {
		dependencies.NewLogger = defaults.NewLogger
	}
	if dependencies.Copier == nil {
		dependencies.Copier = defaults.Copier
	}
	if dependencies.Output == nil {
		dependencies.Output = defaults.Output
	}
	if dependencies.WorkingDirectory == nil {
		dependencies.WorkingDirectory = defaults.WorkingDirectory
	}
	return dependencies
}

// application carries state shared between the root command and its subcommands.
type application struct {
	dependencies  Dependencies
	configuration config.ApplicationConfiguration
	logger        *zap.Logger

	configPath    string
	verbose       bool
	model         string
	provider      string
	maxIterations int
	parallel      int
}

// Execute runs the command line interface until it completes or the process is interrupted.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCommand := NewRootCommand(DefaultDependencies())
	rootCommand.SetArgs(joinToggleLiterals(rootCommand, os.Args[1:]))
	return rootCommand.ExecuteContext(ctx)
}

// NewRootCommand creates the root cobra command with all subcommands attached.
func NewRootCommand(dependencies Dependencies) *cobra.Command {
	app := &application{dependencies: dependencies.withDefaults()}

	rootCommand := &cobra.Command{
		Use:           rootUse,
		Short:         rootShortDescription,
		Long:          rootLongDescription,
		Version:       utils.GetApplicationVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(command *cobra.Command, arguments []string) error {
			return app.prepare(command)
		},
	}
	rootCommand.SetVersionTemplate(versionTemplate)
	rootCommand.SetOut(app.dependencies.Output)

	flags := rootCommand.PersistentFlags()
	flags.StringVar(&app.configPath, configFlagName, "", "path to a configuration file")
	registerToggleFlag(flags, &app.verbose, verboseFlagName, false, "log debug diagnostics to standard error")
	flags.StringVar(&app.model, modelFlagName, "", "language model identifier")
	flags.StringVar(&app.provider, providerFlagName, "", "language model provider")
	flags.IntVar(&app.maxIterations, maxIterationsFlagName, 0, "maximum plan/answer/review attempts per question")
	flags.IntVar(&app.parallel, parallelFlagName, 0, "number of probes executed concurrently")

	rootCommand.AddCommand(
		createAskCommand(app),
		createTreeCommand(app),
		createShowCommand(app),
		createServeCommand(app),
		createInitCommand(app),
	)
	return rootCommand
}

// prepare loads configuration, applies flag overrides and builds the logger.
func (app *application) prepare(command *cobra.Command) error {
	workingDirectory, workingDirectoryError := app.dependencies.WorkingDirectory()
	if workingDirectoryError != nil {
		return workingDirectoryError
	}
	configuration, loadError := config.LoadApplicationConfiguration(config.LoadOptions{
		WorkingDirectory: workingDirectory,
		ExplicitFilePath: app.configPath,
	})
	if loadError != nil {
		return fmt.Errorf(errorLoadConfigurationFormat, loadError)
	}

	flags := command.Flags()
	if flags.Changed(modelFlagName) {
		configuration.Model = app.model
	}
	if flags.Changed(providerFlagName) {
		configuration.Provider = app.provider
	}
	if flags.Changed(maxIterationsFlagName) {
		maxIterations := app.maxIterations
		configuration.MaxIterations = &maxIterations
	}
	if flags.Changed(parallelFlagName) {
		parallel := app.parallel
		configuration.ParallelCommands = &parallel
	}
	app.configuration = configuration

	logger, loggerError := app.dependencies.NewLogger(app.verbose)
	if loggerError != nil {
		return fmt.Errorf(errorInitializeLoggerFormat, loggerError)
	}
	app.logger = logger
	return nil
}

// newGollmCompleter builds a gollm client from configuration. The API key is read from the
// environment variable named by api_key_env when one is configured.
func newGollmCompleter(configuration config.ApplicationConfiguration, logger *zap.Logger) (llm.Completer, error) {
	apiKey := ""
	if configuration.APIKeyEnv != "" {
		apiKey = os.Getenv(configuration.APIKeyEnv)
	}
	client, clientError := llm.NewGollmClient(llm.ClientOptions{
		Provider:    configuration.Provider,
		Model:       configuration.Model,
		APIKey:      apiKey,
		MaxTokens:   config.IntOrDefault(configuration.MaxTokens, llm.DefaultMaxTokens),
		Temperature: configuration.Temperature,
		MaxRetries:  config.IntOrDefault(configuration.MaxRetries, 0),
		Logger:      logger,
	})
	if clientError != nil {
		return nil, clientError
	}
	return client, nil
}
