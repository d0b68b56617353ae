package naming

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/raphaelgruber/umlfca/internal/config"
	"github.com/raphaelgruber/umlfca/internal/models"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/anthropic"
	"github.com/tmc/langchaingo/llms/openai"
)

var (
	ErrMissingCredentials  = errors.New("missing naming service credentials")
	ErrUnsupportedProvider = errors.New("unsupported naming provider")
	ErrEmptyName           = errors.New("naming service returned no usable name")
)

// LLMConfidence is assigned to names proposed by a model.
const LLMConfidence = 0.9

const (
	systemPrompt = "You are a software architecture expert specializing in object-oriented design."
	temperature  = 0.3
	maxTokens    = 50
)

// BuildPrompt asks for a single PascalCase parent class name.
func BuildPrompt(c *models.Candidate) string {
	return fmt.Sprintf(`You are a software architecture expert. Based on the following information about a group of related classes, suggest a concise and meaningful name for an abstract class that would represent their common concept.

Classes that will inherit from this abstract class:
%s

Common attributes and features:
%s

Provide ONLY the suggested abstract class name (in PascalCase), without any explanation or additional text. The name should be:
- Concise (1-3 words)
- Descriptive of the common concept
- Follow UML/OOP naming conventions
- Not include the word "Abstract" unless necessary

Suggested name:`, strings.Join(c.Extent, ", "), strings.Join(c.Intent, ", "))
}

// NewNamer creates the model-backed namer for the configured provider.
func NewNamer(cfg config.Config) (Namer, error) {
	switch cfg.LLMProvider {
	case config.ProviderOpenAI:
		if cfg.OpenAIAPIKey == "" {
			return nil, fmt.Errorf("%w: OPENAI_API_KEY not set", ErrMissingCredentials)
		}
		model, err := openai.New(
			openai.WithToken(cfg.OpenAIAPIKey),
			openai.WithModel(cfg.Model()),
		)
		if err != nil {
			return nil, fmt.Errorf("create openai model: %w", err)
		}
		return NewOpenAINamer(model), nil

	case config.ProviderAnthropic:
		if cfg.AnthropicAPIKey == "" {
			return nil, fmt.Errorf("%w: ANTHROPIC_API_KEY not set", ErrMissingCredentials)
		}
		model, err := anthropic.New(
			anthropic.WithToken(cfg.AnthropicAPIKey),
			anthropic.WithModel(cfg.Model()),
		)
		if err != nil {
			return nil, fmt.Errorf("create anthropic model: %w", err)
		}
		return NewAnthropicNamer(model), nil

	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedProvider, cfg.LLMProvider)
	}
}

// OpenAINamer sends a system and a user message.
type OpenAINamer struct {
	llm llms.Model
}

func NewOpenAINamer(model llms.Model) *OpenAINamer {
	return &OpenAINamer{llm: model}
}

func (n *OpenAINamer) Suggest(ctx context.Context, c *models.Candidate) (string, error) {
	return complete(ctx, n.llm, []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, systemPrompt),
		llms.TextParts(llms.ChatMessageTypeHuman, BuildPrompt(c)),
	})
}

func (n *OpenAINamer) Confidence() float64 { return LLMConfidence }

// AnthropicNamer sends the prompt as a single user message.
type AnthropicNamer struct {
	llm llms.Model
}

func NewAnthropicNamer(model llms.Model) *AnthropicNamer {
	return &AnthropicNamer{llm: model}
}

func (n *AnthropicNamer) Suggest(ctx context.Context, c *models.Candidate) (string, error) {
	return complete(ctx, n.llm, []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeHuman, BuildPrompt(c)),
	})
}

func (n *AnthropicNamer) Confidence() float64 { return LLMConfidence }

func complete(ctx context.Context, model llms.Model, messages []llms.MessageContent) (string, error) {
	resp, err := model.GenerateContent(ctx, messages,
		llms.WithTemperature(temperature),
		llms.WithMaxTokens(maxTokens),
	)
	if err != nil {
		return "", fmt.Errorf("generate name: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("generate name: no response choices")
	}

	name := ParseResponse(resp.Choices[0].Content)
	if name == "" {
		return "", fmt.Errorf("%w: %q", ErrEmptyName, resp.Choices[0].Content)
	}
	return name, nil
}
