package commands

import (
	"errors"
	"fmt"
)

// ExecutionErrorKind classifies plan execution failures.
type ExecutionErrorKind int

const (
	// KindPathNotFound reports a probe path that does not exist.
	KindPathNotFound ExecutionErrorKind = iota
	// KindPathIsDirectory reports a file probe that targeted a directory.
	KindPathIsDirectory
	// KindUnknownCommand reports plan text that is not a supported command.
	KindUnknownCommand
	// KindIO reports a filesystem failure while running a probe.
	KindIO
)

var (
	// ErrPathNotFound matches execution errors of kind KindPathNotFound.
	ErrPathNotFound = errors.New("path does not exist")
	// ErrPathIsDirectory matches execution errors of kind KindPathIsDirectory.
	ErrPathIsDirectory = errors.New("path is a directory")
	// ErrUnknownCommand matches execution errors of kind KindUnknownCommand.
	ErrUnknownCommand = errors.New("unknown command")
	// ErrIO matches execution errors of kind KindIO.
	ErrIO = errors.New("i/o failure")
)

// ExecutionError is returned when a plan command cannot be parsed or executed.
type ExecutionError struct {
	Kind    ExecutionErrorKind
	Command string
	Path    string
	Cause   error
}

func (executionError *ExecutionError) sentinel() error {
	switch executionError.Kind {
	case KindPathNotFound:
		return ErrPathNotFound
	case KindPathIsDirectory:
		return ErrPathIsDirectory
	case KindUnknownCommand:
		return ErrUnknownCommand
	default:
		return ErrIO
	}
}

// Error renders the failure with the offending path or command text.
func (executionError *ExecutionError) Error() string {
	switch executionError.Kind {
	case KindPathNotFound, KindPathIsDirectory:
		return fmt.Sprintf("%v: %s", executionError.sentinel(), executionError.Path)
	case KindUnknownCommand:
		return fmt.Sprintf("%v: %s", executionError.sentinel(), executionError.Command)
	default:
		if executionError.Path != "" {
			return fmt.Sprintf("%v for %s: %v", executionError.sentinel(), executionError.Path, executionError.Cause)
		}
		return fmt.Sprintf("%v: %v", executionError.sentinel(), executionError.Cause)
	}
}

// Unwrap exposes the underlying filesystem error, if any.
func (executionError *ExecutionError) Unwrap() error {
	return executionError.Cause
}

// Is matches the sentinel corresponding to the error kind.
func (executionError *ExecutionError) Is(target error) bool {
	return target == executionError.sentinel()
}

func newPathNotFoundError(command string, path string) *ExecutionError {
	return &ExecutionError{Kind: KindPathNotFound, Command: command, Path: path}
}

func newPathIsDirectoryError(command string, path string) *ExecutionError {
	return &ExecutionError{Kind: KindPathIsDirectory, Command: command, Path: path}
}

func newUnknownCommandError(command string) *ExecutionError {
	return &ExecutionError{Kind: KindUnknownCommand, Command: command}
}

func newIOError(command string, path string, cause error) *ExecutionError {
	return &ExecutionError{Kind: KindIO, Command: command, Path: path, Cause: cause}
}
