// Package config loads ignore rules and application configuration.
package config

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/temirov/scout/internal/ignore"
	"github.com/temirov/scout/internal/utils"
)

const (
	commentPrefix = "#"

	errorLoadGitignoreFormat = "loading %s from %s: %w"
	warningCloseFileFormat   = "failed to close ignore file"
	debugRepositoryRootEvent = "repository root resolved"
	debugNoRepositoryEvent   = "no repository root found; using empty ignore rules"
)

// LoadIgnoreFilePatterns reads an ignore file and returns its patterns in file order.
// Blank lines and lines starting with "#" are skipped and surrounding whitespace is trimmed.
// Lines of any length are accepted.
//
// #nosec G304
func LoadIgnoreFilePatterns(ignoreFilePath string) ([]string, error) {
	fileHandle, openFileError := os.Open(ignoreFilePath)
	if openFileError != nil {
		return nil, openFileError
	}
	defer func() {
		if closeError := fileHandle.Close(); closeError != nil {
			zap.L().Warn(warningCloseFileFormat, zap.String("path", ignoreFilePath), zap.Error(closeError))
		}
	}()

	var ignorePatterns []string
	reader := bufio.NewReader(fileHandle)
	for {
		line, readError := reader.ReadString('\n')
		if readError != nil && !errors.Is(readError, io.EOF) {
			return nil, readError
		}
		trimmedLine := strings.TrimSpace(line)
		if trimmedLine != "" && !strings.HasPrefix(trimmedLine, commentPrefix) {
			ignorePatterns = append(ignorePatterns, trimmedLine)
		}
		if readError != nil {
			break
		}
	}
	return ignorePatterns, nil
}

// LoadGitignoreRules discovers the repository root above startPath and compiles the rules of its
// .gitignore file. Only the root .gitignore is read. When no repository root exists, or the root
// carries no .gitignore, the returned rule set is empty.
func LoadGitignoreRules(startPath string, logger *zap.Logger) (ignore.RuleSet, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	repositoryRoot, rootFound := utils.FindRepositoryRoot(startPath)
	if !rootFound {
		logger.Debug(debugNoRepositoryEvent, zap.String("path", startPath))
		return ignore.RuleSet{}, nil
	}
	logger.Debug(debugRepositoryRootEvent, zap.String("root", repositoryRoot))

	gitIgnoreFilePath := filepath.Join(repositoryRoot, utils.GitIgnoreFileName)
	patterns, loadError := LoadIgnoreFilePatterns(gitIgnoreFilePath)
	if loadError != nil {
		if os.IsNotExist(loadError) {
			return ignore.RuleSet{}, nil
		}
		return nil, fmt.Errorf(errorLoadGitignoreFormat, utils.GitIgnoreFileName, repositoryRoot, loadError)
	}
	return ignore.CompileAll(patterns, logger), nil
}
