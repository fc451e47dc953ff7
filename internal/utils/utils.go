// Package utils contains general helper functions used across scout.
package utils

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

// Repository and configuration file names used across the project.
const (
	// GitIgnoreFileName is the name of the Git ignore file.
	GitIgnoreFileName = ".gitignore"
	// GitDirectoryName is the name of the Git repository directory.
	GitDirectoryName = ".git"
	// ConfigFileName is the name of the scout configuration file.
	ConfigFileName = "config.yaml"
	// GlobalConfigDirectoryName is the directory under the user's home holding global configuration.
	GlobalConfigDirectoryName = ".scout"
)

// DeduplicatePatterns removes duplicate patterns from a slice while preserving order.
// The first occurrence of each unique pattern is kept.
func DeduplicatePatterns(patterns []string) []string {
	encounteredPatterns := make(map[string]struct{})
	result := make([]string, 0, len(patterns))
	for _, pattern := range patterns {
		if _, exists := encounteredPatterns[pattern]; !exists {
			encounteredPatterns[pattern] = struct{}{}
			result = append(result, pattern)
		}
	}
	return result
}

// RelativePathOrSelf calculates the relative path from root to fullPath using forward slashes.
// Returns the cleaned fullPath if relative calculation fails.
// Returns "." if fullPath and root resolve to the same directory.
func RelativePathOrSelf(fullPath, root string) string {
	cleanPath := filepath.Clean(fullPath)
	cleanRoot := filepath.Clean(root)

	if cleanPath == cleanRoot {
		return "."
	}

	relativePath, relErr := filepath.Rel(cleanRoot, cleanPath)
	if relErr != nil {
		return cleanPath
	}
	return filepath.ToSlash(relativePath)
}

// FindRepositoryRoot walks upward from startDirectory and returns the first directory that
// contains a .git directory or a .gitignore file. The boolean is false when the filesystem
// root is reached without a match.
func FindRepositoryRoot(startDirectory string) (string, bool) {
	absoluteStartDirectory, errorAbsolute := filepath.Abs(startDirectory)
	if errorAbsolute != nil {
		return "", false
	}

	currentDirectory := absoluteStartDirectory
	for {
		if isRepositoryRoot(currentDirectory) {
			return currentDirectory, true
		}
		parentDirectory := filepath.Dir(currentDirectory)
		if parentDirectory == currentDirectory {
			return "", false
		}
		currentDirectory = parentDirectory
	}
}

func isRepositoryRoot(directory string) bool {
	gitInformation, gitStatError := os.Stat(filepath.Join(directory, GitDirectoryName))
	if gitStatError == nil && gitInformation.IsDir() {
		return true
	}
	ignoreInformation, ignoreStatError := os.Stat(filepath.Join(directory, GitIgnoreFileName))
	return ignoreStatError == nil && !ignoreInformation.IsDir()
}

// TrimPreview returns at most limit runes of text followed by an ellipsis when text was cut.
func TrimPreview(text string, limit int) string {
	runes := []rune(text)
	if limit < 0 || len(runes) <= limit {
		return text
	}
	return strings.TrimRight(string(runes[:limit]), "\n") + "..."
}

// IsBinary reports whether data holds a NUL byte or is not valid UTF-8. Empty data is text.
func IsBinary(data []byte) bool {
	return bytes.IndexByte(data, 0) >= 0 || !utf8.Valid(data)
}
