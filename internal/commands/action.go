package commands

import (
	"context"
	"errors"
	"os"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/temirov/scout/internal/config"
	"github.com/temirov/scout/internal/ignore"
	"github.com/temirov/scout/internal/utils"
)

const (
	// CommandTree is the plan keyword listing a directory.
	CommandTree = "tree"
	// CommandShowFile is the plan keyword displaying a file.
	CommandShowFile = "show_file"

	commandSeparator = " "

	debugCommandResultMessage = "command result"
	debugCommandStartMessage  = "running command"
)

// Action is a parsed plan command.
type Action interface {
	// Command renders the action back into plan text.
	Command() string
	isAction()
}

// ListDirectory renders the tree below Path.
type ListDirectory struct {
	Path string
}

// ShowFile displays the content of the file at Path.
type ShowFile struct {
	Path string
}

// Command renders the action as "tree {path}".
func (action ListDirectory) Command() string {
	return CommandTree + commandSeparator + action.Path
}

// Command renders the action as "show_file {path}".
func (action ShowFile) Command() string {
	return CommandShowFile + commandSeparator + action.Path
}

func (ListDirectory) isAction() {}
func (ShowFile) isAction()      {}

// ParseAction recognizes "tree {path}" and "show_file {path}". Any other text yields an
// ExecutionError of kind KindUnknownCommand.
func ParseAction(command string) (Action, error) {
	trimmedCommand := strings.TrimSpace(command)
	if path, matched := cutCommandPrefix(trimmedCommand, CommandTree); matched {
		return ListDirectory{Path: path}, nil
	}
	if path, matched := cutCommandPrefix(trimmedCommand, CommandShowFile); matched {
		return ShowFile{Path: path}, nil
	}
	return nil, newUnknownCommandError(command)
}

func cutCommandPrefix(command string, keyword string) (string, bool) {
	remainder, found := strings.CutPrefix(command, keyword+commandSeparator)
	if !found {
		return "", false
	}
	path := strings.TrimSpace(remainder)
	if path == "" {
		return "", false
	}
	return path, true
}

// IsCommand reports whether text starts with a known command keyword.
func IsCommand(text string) bool {
	_, parseError := ParseAction(text)
	return parseError == nil
}

// CommandResult pairs a plan command with the output it produced.
type CommandResult struct {
	Command string
	Output  string
}

// FileReader reads a file's text content. It returns ErrFileNotFound or ErrFileIsDirectory for
// the corresponding conditions.
type FileReader func(path string) (string, error)

// InterpreterOptions configures an Interpreter.
type InterpreterOptions struct {
	// ExplicitRules replaces .gitignore discovery when non-nil.
	ExplicitRules ignore.RuleSet
	// DisableGitignore skips .gitignore discovery.
	DisableGitignore bool
	// ExclusionPatterns are appended to the rules of every tree probe.
	ExclusionPatterns []string
	// IncludeGit shows the .git directory in tree probes.
	IncludeGit bool
	// Parallelism bounds concurrent command execution within one plan. Values below two run
	// commands sequentially.
	Parallelism int
	// ReadFile is the file-read collaborator. Defaults to ReadFileContent.
	ReadFile FileReader
	Logger   *zap.Logger
}

// Interpreter executes parsed plan commands against the filesystem.
type Interpreter struct {
	options InterpreterOptions
	logger  *zap.Logger
}

// NewInterpreter constructs an Interpreter.
func NewInterpreter(options InterpreterOptions) *Interpreter {
	logger := options.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	if options.ReadFile == nil {
		options.ReadFile = ReadFileContent
	}
	return &Interpreter{options: options, logger: logger}
}

// Execute runs a parsed action and returns its labeled output.
func (interpreter *Interpreter) Execute(action Action) (CommandResult, error) {
	switch typedAction := action.(type) {
	case ListDirectory:
		return interpreter.listDirectory(typedAction)
	case ShowFile:
		return interpreter.showFile(typedAction)
	default:
		return CommandResult{}, newUnknownCommandError(describeAction(action))
	}
}

// ExecuteCommand parses command and executes it. The result is labeled with command as given.
func (interpreter *Interpreter) ExecuteCommand(command string) (CommandResult, error) {
	action, parseError := ParseAction(command)
	if parseError != nil {
		return CommandResult{}, parseError
	}
	result, executeError := interpreter.Execute(action)
	if executeError != nil {
		var executionError *ExecutionError
		if errors.As(executeError, &executionError) {
			executionError.Command = command
		}
		return CommandResult{}, executeError
	}
	result.Command = command
	interpreter.logger.Debug(debugCommandResultMessage,
		zap.String("command", command),
		zap.String("preview", utils.TrimPreview(result.Output, utils.CommandPreviewLength)),
	)
	return result, nil
}

// ExecutePlan runs every command of plan and returns their results in plan order. The first
// failing command in plan order determines the returned error.
func (interpreter *Interpreter) ExecutePlan(ctx context.Context, plan []string) ([]CommandResult, error) {
	if interpreter.options.Parallelism < 2 || len(plan) < 2 {
		return interpreter.executeSequentially(ctx, plan)
	}
	return interpreter.executeConcurrently(ctx, plan)
}

func (interpreter *Interpreter) executeSequentially(ctx context.Context, plan []string) ([]CommandResult, error) {
	results := make([]CommandResult, 0, len(plan))
	for _, command := range plan {
		if contextError := ctx.Err(); contextError != nil {
			return nil, contextError
		}
		interpreter.logger.Debug(debugCommandStartMessage, zap.String("command", command))
		result, executeError := interpreter.ExecuteCommand(command)
		if executeError != nil {
			return nil, executeError
		}
		results = append(results, result)
	}
	return results, nil
}

func (interpreter *Interpreter) executeConcurrently(ctx context.Context, plan []string) ([]CommandResult, error) {
	results := make([]CommandResult, len(plan))
	failures := make([]error, len(plan))

	group, groupContext := errgroup.WithContext(ctx)
	group.SetLimit(interpreter.options.Parallelism)
	for commandIndex, command := range plan {
		group.Go(func() error {
			if contextError := groupContext.Err(); contextError != nil {
				failures[commandIndex] = contextError
				return nil
			}
			interpreter.logger.Debug(debugCommandStartMessage, zap.String("command", command))
			results[commandIndex], failures[commandIndex] = interpreter.ExecuteCommand(command)
			return nil
		})
	}
	if waitError := group.Wait(); waitError != nil {
		return nil, waitError
	}

	for _, failure := range failures {
		if failure != nil {
			return nil, failure
		}
	}
	return results, nil
}

func (interpreter *Interpreter) listDirectory(action ListDirectory) (CommandResult, error) {
	return interpreter.RenderDirectory(action.Path, UnlimitedDepth)
}

// RenderDirectory renders the tree below path with the interpreter's ignore rules, listing at
// most depth levels. Failures are reported as for a tree command.
func (interpreter *Interpreter) RenderDirectory(path string, depth Depth) (CommandResult, error) {
	command := ListDirectory{Path: path}.Command()
	if _, statError := os.Stat(path); statError != nil {
		if os.IsNotExist(statError) {
			return CommandResult{}, newPathNotFoundError(command, path)
		}
		return CommandResult{}, newIOError(command, path, statError)
	}

	rules, rulesError := interpreter.rulesFor(path)
	if rulesError != nil {
		return CommandResult{}, newIOError(command, path, rulesError)
	}

	renderer := TreeRenderer{Rules: rules, Logger: interpreter.logger}
	output, renderError := renderer.Render(path, "", depth)
	if renderError != nil {
		return CommandResult{}, newIOError(command, path, renderError)
	}
	return CommandResult{Command: command, Output: output}, nil
}

func (interpreter *Interpreter) showFile(action ShowFile) (CommandResult, error) {
	command := action.Command()
	content, readError := interpreter.options.ReadFile(action.Path)
	switch {
	case readError == nil:
		return CommandResult{Command: command, Output: content}, nil
	case errors.Is(readError, ErrFileNotFound):
		return CommandResult{}, newPathNotFoundError(command, action.Path)
	case errors.Is(readError, ErrFileIsDirectory):
		return CommandResult{}, newPathIsDirectoryError(command, action.Path)
	default:
		return CommandResult{}, newIOError(command, action.Path, readError)
	}
}

// rulesFor assembles the rules applied to a tree probe rooted at path.
func (interpreter *Interpreter) rulesFor(path string) (ignore.RuleSet, error) {
	var rules ignore.RuleSet
	switch {
	case interpreter.options.ExplicitRules != nil:
		rules = append(rules, interpreter.options.ExplicitRules...)
	case !interpreter.options.DisableGitignore:
		gitignoreRules, loadError := config.LoadGitignoreRules(path, interpreter.logger)
		if loadError != nil {
			return nil, loadError
		}
		rules = append(rules, gitignoreRules...)
	}

	var additionalPatterns []string
	if !interpreter.options.IncludeGit {
		additionalPatterns = append(additionalPatterns, utils.GitDirectoryName)
	}
	additionalPatterns = append(additionalPatterns, interpreter.options.ExclusionPatterns...)
	rules = append(rules, ignore.CompileAll(utils.DeduplicatePatterns(additionalPatterns), interpreter.logger)...)
	return rules, nil
}

func describeAction(action Action) string {
	if action == nil {
		return ""
	}
	return action.Command()
}
