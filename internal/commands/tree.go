// Package commands contains the filesystem probes the agent can run and the interpreter that
// turns plan text into probe executions.
package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/temirov/scout/internal/ignore"
	"github.com/temirov/scout/internal/utils"
)

const (
	branchConnector     = "├── "
	lastBranchConnector = "└── "
	branchIndent        = "│   "
	lastBranchIndent    = "    "

	// errorReadDirectoryFormat is used when the walk root cannot be read.
	errorReadDirectoryFormat = "reading directory %s: %w"
	// warningSkipSubdirMessage is logged when a nested directory cannot be read.
	warningSkipSubdirMessage = "skipping unreadable directory"
	// warningPartialListingMessage is logged when only part of a directory could be listed.
	warningPartialListingMessage = "directory listing incomplete"
)

// Depth bounds how many directory levels a tree render lists.
type Depth int

// UnlimitedDepth renders the whole tree. Descending from it stays unlimited.
const UnlimitedDepth Depth = -1

// LimitedDepth returns a Depth listing at most levels directory levels.
func LimitedDepth(levels int) Depth {
	if levels < 0 {
		return 0
	}
	return Depth(levels)
}

func (depth Depth) descend() Depth {
	if depth < 0 {
		return UnlimitedDepth
	}
	return depth - 1
}

func (depth Depth) exhausted() bool {
	return depth == 0
}

// TreeRenderer renders directory listings filtered by ignore rules.
type TreeRenderer struct {
	Rules  ignore.RuleSet
	Logger *zap.Logger
}

type treeFrame struct {
	directoryPath string
	prefix        string
	depth         Depth
	entries       []os.DirEntry
	nextIndex     int
}

// RenderTree renders path using rules and depth with a silent logger.
func RenderTree(path string, prefix string, rules ignore.RuleSet, depth Depth) (string, error) {
	return TreeRenderer{Rules: rules}.Render(path, prefix, depth)
}

// Render lists the entries below rootDirectoryPath as connector-prefixed lines sorted by name.
// A depth of zero renders nothing. Entries whose name or path relative to rootDirectoryPath
// matches a rule are omitted together with their subtrees. Failing to read rootDirectoryPath is
// an error; nested directories that cannot be read are rendered without children.
func (renderer TreeRenderer) Render(rootDirectoryPath string, prefix string, depth Depth) (string, error) {
	if depth.exhausted() {
		return "", nil
	}
	logger := renderer.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	rootEntries, rootError := renderer.listEntries(rootDirectoryPath, rootDirectoryPath, logger)
	if rootError != nil {
		return "", fmt.Errorf(errorReadDirectoryFormat, rootDirectoryPath, rootError)
	}

	var output strings.Builder
	stack := []*treeFrame{{
		directoryPath: rootDirectoryPath,
		prefix:        prefix,
		depth:         depth,
		entries:       rootEntries,
	}}

	for len(stack) > 0 {
		frame := stack[len(stack)-1]
		if frame.nextIndex >= len(frame.entries) {
			stack = stack[:len(stack)-1]
			continue
		}
		entry := frame.entries[frame.nextIndex]
		frame.nextIndex++
		isLastEntry := frame.nextIndex == len(frame.entries)

		connector := branchConnector
		childPrefix := frame.prefix + branchIndent
		if isLastEntry {
			connector = lastBranchConnector
			childPrefix = frame.prefix + lastBranchIndent
		}
		output.WriteString(frame.prefix + connector + entry.Name() + "\n")

		if !entry.IsDir() {
			continue
		}
		childDepth := frame.depth.descend()
		if childDepth.exhausted() {
			continue
		}
		childPath := filepath.Join(frame.directoryPath, entry.Name())
		childEntries, listError := renderer.listEntries(childPath, rootDirectoryPath, logger)
		if listError != nil {
			logger.Warn(warningSkipSubdirMessage, zap.String("path", childPath), zap.Error(listError))
			continue
		}
		stack = append(stack, &treeFrame{
			directoryPath: childPath,
			prefix:        childPrefix,
			depth:         childDepth,
			entries:       childEntries,
		})
	}

	return output.String(), nil
}

// listEntries reads directoryPath, drops ignored entries and sorts the rest by name.
func (renderer TreeRenderer) listEntries(directoryPath string, rootDirectoryPath string, logger *zap.Logger) ([]os.DirEntry, error) {
	directoryHandle, openError := os.Open(directoryPath)
	if openError != nil {
		return nil, openError
	}
	defer directoryHandle.Close()

	directoryEntries, readError := directoryHandle.ReadDir(-1)
	if readError != nil {
		if len(directoryEntries) == 0 {
			return nil, readError
		}
		logger.Warn(warningPartialListingMessage, zap.String("path", directoryPath), zap.Error(readError))
	}

	visibleEntries := make([]os.DirEntry, 0, len(directoryEntries))
	for _, directoryEntry := range directoryEntries {
		childPath := filepath.Join(directoryPath, directoryEntry.Name())
		relativeChildPath := utils.RelativePathOrSelf(childPath, rootDirectoryPath)
		if renderer.Rules.Matches(directoryEntry.Name(), relativeChildPath) {
			continue
		}
		visibleEntries = append(visibleEntries, directoryEntry)
	}
	sort.Slice(visibleEntries, func(leftIndex, rightIndex int) bool {
		return visibleEntries[leftIndex].Name() < visibleEntries[rightIndex].Name()
	})
	return visibleEntries, nil
}
