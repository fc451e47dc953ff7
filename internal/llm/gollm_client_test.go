package llm

import (
	"context"
	"testing"
)

func TestSplitMessages(t *testing.T) {
	testCases := []struct {
		name           string
		messages       []Message
		expectedSystem string
		expectedBody   string
	}{
		{
			name:           "system_and_user",
			messages:       []Message{SystemMessage("You plan."), UserMessage("List src.")},
			expectedSystem: "You plan.",
			expectedBody:   "List src.",
		},
		{
			name: "multiple_turns",
			messages: []Message{
				SystemMessage("first"),
				UserMessage("question"),
				{Role: RoleAssistant, Content: "previous answer"},
				SystemMessage("second"),
				UserMessage("follow up"),
			},
			expectedSystem: "first\nsecond",
			expectedBody:   "question\n\n[Assistant]: previous answer\n\nfollow up",
		},
		{
			name:         "blank_messages_dropped",
			messages:     []Message{SystemMessage("  "), UserMessage("\n"), UserMessage(" body ")},
			expectedBody: "body",
		},
		{
			name:         "unknown_role_is_body",
			messages:     []Message{{Role: "tool", Content: "output"}},
			expectedBody: "output",
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			system, body := splitMessages(testCase.messages)
			if system != testCase.expectedSystem {
				t.Errorf("system: expected %q, got %q", testCase.expectedSystem, system)
			}
			if body != testCase.expectedBody {
				t.Errorf("body: expected %q, got %q", testCase.expectedBody, body)
			}
		})
	}
}

func TestResponseFromText(t *testing.T) {
	if response := responseFromText("   \n"); len(response.Choices) != 0 {
		t.Fatalf("expected no choices for blank text, got %+v", response)
	}
	response := responseFromText("YES")
	choice, found := response.FirstChoice()
	if !found || choice.Content != "YES" {
		t.Fatalf("expected single YES choice, got %+v", response)
	}
}

func TestClientOptionsDefaults(t *testing.T) {
	resolved := ClientOptions{MaxRetries: -2}.withDefaults()
	if resolved.Provider != DefaultProvider || resolved.Model != DefaultModel {
		t.Fatalf("unexpected provider/model %q/%q", resolved.Provider, resolved.Model)
	}
	if resolved.MaxTokens != DefaultMaxTokens || resolved.MaxRetries != 0 {
		t.Fatalf("unexpected limits %+v", resolved)
	}
	if resolved.Logger == nil {
		t.Fatalf("expected a logger")
	}

	explicit := ClientOptions{Provider: "anthropic", Model: "claude", MaxTokens: 10}.withDefaults()
	if explicit.Provider != "anthropic" || explicit.Model != "claude" || explicit.MaxTokens != 10 {
		t.Fatalf("explicit values overridden: %+v", explicit)
	}
}

func TestFirstChoiceEmpty(t *testing.T) {
	if _, found := (Response{}).FirstChoice(); found {
		t.Fatalf("expected no first choice")
	}
}

func TestCompleterFunc(t *testing.T) {
	var received string
	completer := CompleterFunc(func(_ context.Context, messages []Message, modelID string) (Response, error) {
		received = modelID + ":" + messages[0].Content
		return Response{Choices: []Choice{{Content: "ok"}}}, nil
	})
	response, completeError := completer.Complete(context.Background(), []Message{UserMessage("hi")}, "model-x")
	if completeError != nil {
		t.Fatalf("Complete error: %v", completeError)
	}
	if received != "model-x:hi" || response.Choices[0].Content != "ok" {
		t.Fatalf("unexpected call %q -> %+v", received, response)
	}
}
