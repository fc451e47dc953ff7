// Package output renders answers and probe results for the terminal.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Supported output formats.
const (
	FormatRaw    = "raw"
	FormatJSON   = "json"
	FormatPretty = "pretty"
)

const (
	indentPrefix = ""
	indentSpacer = "  "

	answerHeading      = "Answer"
	limitReachedNotice = "review did not pass before the iteration limit"
	iterationsFormat   = "%d iteration(s)"

	errorInvalidFormat = "invalid format value '%s'"
	errorEncodeFormat  = "encode %s output: %w"
	errorWriteFormat   = "write output: %w"
)

var (
	headingStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	metaStyle    = lipgloss.NewStyle().Faint(true)
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
)

// AnswerDocument is the rendered outcome of a question.
type AnswerDocument struct {
	SessionID    string `json:"sessionId"`
	Question     string `json:"question"`
	Answer       string `json:"answer"`
	Iterations   int    `json:"iterations"`
	LimitReached bool   `json:"limitReached"`
}

// ProbeDocument is the rendered outcome of a single tree or show_file probe.
type ProbeDocument struct {
	Command string `json:"command"`
	Path    string `json:"path"`
	Output  string `json:"output"`
}

// NormalizeFormat lowercases format and reports whether it is supported. Empty selects raw.
func NormalizeFormat(format string) (string, error) {
	normalized := strings.ToLower(strings.TrimSpace(format))
	switch normalized {
	case "":
		return FormatRaw, nil
	case FormatRaw, FormatJSON, FormatPretty:
		return normalized, nil
	default:
		return "", fmt.Errorf(errorInvalidFormat, format)
	}
}

// RenderAnswer writes document to writer in the requested format.
func RenderAnswer(writer io.Writer, format string, document AnswerDocument) error {
	switch format {
	case FormatJSON:
		return writeJSON(writer, document)
	case FormatPretty:
		var builder strings.Builder
		builder.WriteString(headingStyle.Render(answerHeading) + "\n\n")
		builder.WriteString(strings.TrimRight(document.Answer, "\n") + "\n\n")
		builder.WriteString(metaStyle.Render(fmt.Sprintf(iterationsFormat, document.Iterations)) + "\n")
		if document.LimitReached {
			builder.WriteString(warningStyle.Render(limitReachedNotice) + "\n")
		}
		return writeString(writer, builder.String())
	case FormatRaw:
		return writeString(writer, strings.TrimRight(document.Answer, "\n")+"\n")
	default:
		return fmt.Errorf(errorInvalidFormat, format)
	}
}

// RenderProbe writes document to writer. Raw and pretty output print the probe output as is.
func RenderProbe(writer io.Writer, format string, document ProbeDocument) error {
	switch format {
	case FormatJSON:
		return writeJSON(writer, document)
	case FormatPretty:
		return writeString(writer, headingStyle.Render(document.Command)+"\n"+document.Output)
	case FormatRaw:
		return writeString(writer, document.Output)
	default:
		return fmt.Errorf(errorInvalidFormat, format)
	}
}

func writeJSON(writer io.Writer, value any) error {
	encoded, encodeError := json.MarshalIndent(value, indentPrefix, indentSpacer)
	if encodeError != nil {
		return fmt.Errorf(errorEncodeFormat, FormatJSON, encodeError)
	}
	return writeString(writer, string(encoded)+"\n")
}

func writeString(writer io.Writer, text string) error {
	if _, writeError := io.WriteString(writer, text); writeError != nil {
		return fmt.Errorf(errorWriteFormat, writeError)
	}
	return nil
}
