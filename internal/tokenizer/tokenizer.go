// Package tokenizer estimates token counts of prompts sent to language models.
package tokenizer

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/pkoukk/tiktoken-go"
)

// Counter estimates token counts for text content.
type Counter interface {
	Name() string
	CountString(input string) (int, error)
}

// Config captures tokenizer selection parameters.
type Config struct {
	Model string
}

const (
	defaultModel        = "gpt-4o"
	defaultEncodingName = "cl100k_base"

	errorFallbackTokenizerFormat = "initialize fallback tokenizer: %w"
)

// errNilEncoding is returned by a counter built without an encoding.
var errNilEncoding = errors.New("tiktoken encoding is not loaded")

// encodingCounter counts tokens with a tiktoken encoding, labeled by the model or encoding name
// it was resolved from.
type encodingCounter struct {
	encoding *tiktoken.Tiktoken
	label    string
}

func (counter encodingCounter) Name() string {
	return counter.label
}

func (counter encodingCounter) CountString(input string) (int, error) {
	if counter.encoding == nil {
		return 0, errNilEncoding
	}
	return len(counter.encoding.Encode(input, nil, nil)), nil
}

// NewCounter returns a Counter for the requested model along with the name of the encoding or
// model it resolved to. Models without a known tiktoken encoding use cl100k_base as an
// approximation.
func NewCounter(cfg Config) (Counter, string, error) {
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = defaultModel
	}
	lowerModel := strings.ToLower(model)

	if isOpenAIModel(lowerModel) {
		encoding, err := tiktoken.EncodingForModel(lowerModel)
		if err == nil && encoding != nil {
			return encodingCounter{encoding: encoding, label: lowerModel}, model, nil
		}
	}

	fallback, fallbackErr := tiktoken.GetEncoding(defaultEncodingName)
	if fallbackErr != nil {
		return nil, "", fmt.Errorf(errorFallbackTokenizerFormat, fallbackErr)
	}
	return encodingCounter{encoding: fallback, label: defaultEncodingName}, defaultEncodingName, nil
}

// openAIModelPrefixes identify model names tiktoken knows an encoding for.
var openAIModelPrefixes = []string{"gpt-", "o1", "o3", "o4", "chatgpt-", "text-embedding", "davinci", "babbage", "code-"}

func isOpenAIModel(model string) bool {
	return slices.ContainsFunc(openAIModelPrefixes, func(prefix string) bool {
		return strings.HasPrefix(model, prefix)
	})
}
