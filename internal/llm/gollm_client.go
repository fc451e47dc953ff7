package llm

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/teilomillet/gollm"
	"go.uber.org/zap"
)

const (
	// DefaultProvider is used when no provider is configured.
	DefaultProvider = "openai"
	// DefaultModel is used when no model is configured.
	DefaultModel = "gpt-4o"
	// DefaultMaxTokens bounds a completion when no limit is configured.
	DefaultMaxTokens = 4096
	// DefaultTemperature is used when no temperature is configured.
	DefaultTemperature = 0.2

	modelOptionKey         = "model"
	assistantContentPrefix = "[Assistant]: "

	errorCreateClientFormat = "create %s language model client: %w"
	errorGenerateFormat     = "%s completion with model %s: %w"
)

// ClientOptions configures a GollmClient. Zero values fall back to the package defaults.
type ClientOptions struct {
	Provider    string
	Model       string
	APIKey      string
	MaxTokens   int
	Temperature *float64
	MaxRetries  int
	Logger      *zap.Logger
}

// GollmClient implements Completer on top of a gollm.LLM.
type GollmClient struct {
	provider string
	model    string
	llm      gollm.LLM
	logger   *zap.Logger

	mutex sync.Mutex
}

// NewGollmClient constructs a client for the configured provider. An empty API key lets gollm
// read the provider's conventional environment variable.
func NewGollmClient(options ClientOptions) (*GollmClient, error) {
	resolved := options.withDefaults()

	temperature := DefaultTemperature
	if resolved.Temperature != nil {
		temperature = *resolved.Temperature
	}
	configOptions := []gollm.ConfigOption{
		gollm.SetProvider(resolved.Provider),
		gollm.SetModel(resolved.Model),
		gollm.SetMaxTokens(resolved.MaxTokens),
		gollm.SetTemperature(temperature),
		gollm.SetMaxRetries(resolved.MaxRetries),
		gollm.SetLogLevel(gollm.LogLevelWarn),
	}
	if resolved.APIKey != "" {
		configOptions = append(configOptions, gollm.SetAPIKey(resolved.APIKey))
	}

	languageModel, createError := gollm.NewLLM(configOptions...)
	if createError != nil {
		return nil, fmt.Errorf(errorCreateClientFormat, resolved.Provider, createError)
	}
	return &GollmClient{
		provider: resolved.Provider,
		model:    resolved.Model,
		llm:      languageModel,
		logger:   resolved.Logger,
	}, nil
}

func (options ClientOptions) withDefaults() ClientOptions {
	if options.Provider == "" {
		options.Provider = DefaultProvider
	}
	if options.Model == "" {
		options.Model = DefaultModel
	}
	if options.MaxTokens <= 0 {
		options.MaxTokens = DefaultMaxTokens
	}
	if options.MaxRetries < 0 {
		options.MaxRetries = 0
	}
	if options.Logger == nil {
		options.Logger = zap.NewNop()
	}
	return options
}

// Provider returns the configured provider name.
func (client *GollmClient) Provider() string {
	return client.provider
}

// Model returns the default model identifier.
func (client *GollmClient) Model() string {
	return client.model
}

// Complete sends messages to the model identified by modelID, or to the default model when
// modelID is empty. A blank generation yields a response without choices.
func (client *GollmClient) Complete(ctx context.Context, messages []Message, modelID string) (Response, error) {
	model := modelID
	if model == "" {
		model = client.model
	}
	prompt := buildPrompt(messages)

	client.mutex.Lock()
	defer client.mutex.Unlock()

	client.llm.SetOption(modelOptionKey, model)
	client.logger.Debug("requesting completion",
		zap.String("provider", client.provider),
		zap.String("model", model),
		zap.Int("messages", len(messages)),
	)
	generated, generateError := client.llm.Generate(ctx, prompt)
	if generateError != nil {
		return Response{}, fmt.Errorf(errorGenerateFormat, client.provider, model, generateError)
	}
	return responseFromText(generated), nil
}

// buildPrompt folds system messages into the gollm system prompt and the remaining turns into
// the prompt body.
func buildPrompt(messages []Message) *gollm.Prompt {
	systemPrompt, promptText := splitMessages(messages)
	var promptOptions []gollm.PromptOption
	if systemPrompt != "" {
		promptOptions = append(promptOptions, gollm.WithSystemPrompt(systemPrompt, gollm.CacheTypeEphemeral))
	}
	return gollm.NewPrompt(promptText, promptOptions...)
}

// splitMessages returns the joined system content and the joined conversation body.
func splitMessages(messages []Message) (string, string) {
	var systemParts []string
	var bodyParts []string
	for _, message := range messages {
		content := strings.TrimSpace(message.Content)
		if content == "" {
			continue
		}
		switch message.Role {
		case RoleSystem:
			systemParts = append(systemParts, content)
		case RoleAssistant:
			bodyParts = append(bodyParts, assistantContentPrefix+content)
		default:
			bodyParts = append(bodyParts, content)
		}
	}
	return strings.Join(systemParts, "\n"), strings.Join(bodyParts, "\n\n")
}

func responseFromText(text string) Response {
	if strings.TrimSpace(text) == "" {
		return Response{}
	}
	return Response{Choices: []Choice{{Content: text}}}
}
