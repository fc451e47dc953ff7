package agent

import (
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/temirov/scout/internal/commands"
)

var (
	fencedBlockPattern  = regexp.MustCompile("(?s)```[A-Za-z0-9_-]*[ \t]*\n(.*?)```")
	orderedListPattern  = regexp.MustCompile(`^\d+[.)]\s+`)
	unorderedListMarker = []string{"- ", "* ", "+ "}
)

const commandQuoteCharacters = "`\"'"

// ExtractPlanCommands turns a planning response into plan commands.
//
// The commands of JSON or YAML lists of strings, optionally inside fenced code blocks, are used;
// every list found in the response contributes, in order. A mapping from command keyword to paths,
// such as {"tree": ["src"], "show_file": ["go.mod"]}, is expanded into tree commands followed by
// show_file commands. Otherwise every line that starts with a command keyword, after list markers
// and quoting are removed, becomes a command. When nothing is recognized the whole trimmed
// response is returned as the single command so that execution reports it as unknown. A blank
// response yields ErrEmptyPlan.
func ExtractPlanCommands(response string) ([]string, error) {
	trimmedResponse := strings.TrimSpace(response)
	if trimmedResponse == "" {
		return nil, ErrEmptyPlan
	}

	candidateGroups := [][]string{
		fencedBlocks(trimmedResponse),
		structuredFragments(trimmedResponse),
		{trimmedResponse},
	}
	for _, candidates := range candidateGroups {
		var planCommands []string
		for _, candidate := range candidates {
			planCommands = append(planCommands, decodeStructuredPlan(candidate)...)
		}
		if len(planCommands) > 0 {
			return planCommands, nil
		}
	}

	if planCommands := scanCommandLines(trimmedResponse); len(planCommands) > 0 {
		return planCommands, nil
	}
	return []string{trimmedResponse}, nil
}

func fencedBlocks(response string) []string {
	var blocks []string
	for _, match := range fencedBlockPattern.FindAllStringSubmatch(response, -1) {
		blocks = append(blocks, match[1])
	}
	return blocks
}

// structuredFragments returns the balanced top-level [...] and {...} fragments of response in
// order. Brackets inside double-quoted strings of a fragment do not count. An unterminated
// fragment is dropped.
func structuredFragments(response string) []string {
	var fragments []string
	depth, fragmentStart := 0, 0
	inString, escaped := false, false
	for index, character := range response {
		if inString {
			switch {
			case escaped:
				escaped = false
			case character == '\\':
				escaped = true
			case character == '"':
				inString = false
			}
			continue
		}
		switch character {
		case '"':
			inString = depth > 0
		case '[', '{':
			if depth == 0 {
				fragmentStart = index
			}
			depth++
		case ']', '}':
			if depth == 0 {
				continue
			}
			depth--
			if depth == 0 {
				fragments = append(fragments, response[fragmentStart:index+1])
			}
		}
	}
	return fragments
}

func decodeStructuredPlan(candidate string) []string {
	var listPlan []string
	if yaml.Unmarshal([]byte(candidate), &listPlan) == nil {
		return recognizedCommands(listPlan)
	}

	var mappedPlan map[string][]string
	if yaml.Unmarshal([]byte(candidate), &mappedPlan) != nil {
		return nil
	}
	var planCommands []string
	for _, keyword := range []string{commands.CommandTree, commands.CommandShowFile} {
		for _, path := range mappedPlan[keyword] {
			if trimmedPath := strings.TrimSpace(path); trimmedPath != "" {
				planCommands = append(planCommands, keyword+" "+trimmedPath)
			}
		}
	}
	return planCommands
}

// recognizedCommands keeps the values that parse as commands once cleaned.
func recognizedCommands(values []string) []string {
	var planCommands []string
	for _, value := range values {
		candidate := cleanCommandLine(value)
		if commands.IsCommand(candidate) {
			planCommands = append(planCommands, candidate)
		}
	}
	return planCommands
}

func scanCommandLines(response string) []string {
	return recognizedCommands(strings.Split(response, "\n"))
}

// cleanCommandLine strips list markers, trailing commas and quoting from line and its path.
func cleanCommandLine(line string) string {
	candidate := strings.TrimSpace(line)
	for _, marker := range unorderedListMarker {
		if strings.HasPrefix(candidate, marker) {
			candidate = strings.TrimSpace(strings.TrimPrefix(candidate, marker))
			break
		}
	}
	candidate = orderedListPattern.ReplaceAllString(candidate, "")
	candidate = strings.TrimSuffix(strings.TrimSpace(candidate), ",")
	candidate = strings.TrimSpace(strings.Trim(candidate, commandQuoteCharacters))
	keyword, path, found := strings.Cut(candidate, " ")
	if !found {
		return candidate
	}
	return keyword + " " + strings.TrimSpace(strings.Trim(strings.TrimSpace(path), commandQuoteCharacters))
}
