package tokenizer

import (
	"errors"
	"testing"

	"github.com/temirov/scout/internal/llm"
)

type testCounter struct{}

func (testCounter) Name() string { return "stub" }

func (testCounter) CountString(input string) (int, error) { return len([]rune(input)), nil }

type failingCounter struct{}

func (failingCounter) Name() string { return "failing" }

func (failingCounter) CountString(string) (int, error) { return 0, errors.New("boom") }

func TestEncodingCounterWithoutEncoding(t *testing.T) {
	counter := encodingCounter{label: "empty"}
	if _, err := counter.CountString("hello"); !errors.Is(err, errNilEncoding) {
		t.Fatalf("expected errNilEncoding, got %v", err)
	}
	if counter.Name() != "empty" {
		t.Fatalf("unexpected name %q", counter.Name())
	}
}

func TestCountMessages(t *testing.T) {
	messages := []llm.Message{llm.SystemMessage("abc"), llm.UserMessage("de")}
	total, err := CountMessages(testCounter{}, messages)
	if err != nil {
		t.Fatalf("CountMessages error: %v", err)
	}
	if total != 5 {
		t.Fatalf("expected 5 tokens, got %d", total)
	}

	if _, err := CountMessages(nil, messages); !errors.Is(err, ErrNilCounter) {
		t.Fatalf("expected ErrNilCounter, got %v", err)
	}
	if _, err := CountMessages(failingCounter{}, messages); err == nil {
		t.Fatalf("expected counter failure to propagate")
	}
}

func TestIsOpenAIModel(t *testing.T) {
	testCases := map[string]bool{
		"gpt-4o":            true,
		"gpt-3.5-turbo":     true,
		"text-embedding-3":  true,
		"claude-3-5-sonnet": false,
		"llama-3-70b":       false,
		"mistral-large":     false,
	}
	for model, expected := range testCases {
		if actual := isOpenAIModel(model); actual != expected {
			t.Errorf("isOpenAIModel(%q) = %v, want %v", model, actual, expected)
		}
	}
}

func TestNewCounterDefault(t *testing.T) {
	counter, model, err := NewCounter(Config{Model: "gpt-4o"})
	if err != nil {
		t.Skipf("tiktoken encoding unavailable: %v", err)
	}
	if counter == nil {
		t.Fatalf("expected non-nil counter")
	}
	if model != "gpt-4o" && model != defaultEncodingName {
		t.Fatalf("unexpected resolved model %q", model)
	}
	tokens, err := counter.CountString("hello world")
	if err != nil {
		t.Fatalf("CountString error: %v", err)
	}
	if tokens <= 0 {
		t.Fatalf("expected positive token count, got %d", tokens)
	}
}
