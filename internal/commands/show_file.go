package commands

import (
	"errors"
	"fmt"
	"os"

	"github.com/temirov/scout/internal/utils"
)

var (
	// ErrFileNotFound is returned by ReadFileContent when the path does not exist.
	ErrFileNotFound = errors.New("file not found")
	// ErrFileIsDirectory is returned by ReadFileContent when the path is a directory.
	ErrFileIsDirectory = errors.New("path is a directory, not a file")
	// ErrBinaryContent is returned by ReadFileContent when the file is not text.
	ErrBinaryContent = errors.New("file content is not text")
)

const errorReadFileFormat = "reading %s: %w"

// ReadFileContent returns the text content of the file at path. Missing paths yield
// ErrFileNotFound, directories yield ErrFileIsDirectory, and every other failure is
// returned wrapped.
//
// #nosec G304
func ReadFileContent(path string) (string, error) {
	fileInformation, statError := os.Stat(path)
	if statError != nil {
		if os.IsNotExist(statError) {
			return "", ErrFileNotFound
		}
		return "", fmt.Errorf(errorReadFileFormat, path, statError)
	}
	if fileInformation.IsDir() {
		return "", ErrFileIsDirectory
	}

	fileBytes, readError := os.ReadFile(path)
	if readError != nil {
		return "", fmt.Errorf(errorReadFileFormat, path, readError)
	}
	if utils.IsBinary(fileBytes) {
		return "", fmt.Errorf(errorReadFileFormat, path, ErrBinaryContent)
	}
	return string(fileBytes), nil
}
