package tokenizer

import (
	"errors"

	"github.com/temirov/scout/internal/llm"
)

// ErrNilCounter is returned when counting without a counter.
var ErrNilCounter = errors.New("nil tokenizer counter")

// CountMessages estimates the prompt tokens of a conversation by summing the content of every
// message.
func CountMessages(counter Counter, messages []llm.Message) (int, error) {
	if counter == nil {
		return 0, ErrNilCounter
	}
	total := 0
	for _, message := range messages {
		tokens, err := counter.CountString(message.Content)
		if err != nil {
			return 0, err
		}
		total += tokens
	}
	return total, nil
}
