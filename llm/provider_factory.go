package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/Conceptual-Machines/magda-reaper-mcp/config"
)

// ProviderFactory creates providers based on model name or explicit provider choice
type ProviderFactory struct {
	openaiAPIKey string
	geminiAPIKey string
}

// NewProviderFactory creates a new provider factory
func NewProviderFactory(openaiAPIKey, geminiAPIKey string) *ProviderFactory {
	return &ProviderFactory{
		openaiAPIKey: openaiAPIKey,
		geminiAPIKey: geminiAPIKey,
	}
}

// NewProviderFactoryFromConfig creates a factory with the configured API keys
func NewProviderFactoryFromConfig(cfg *config.Config) *ProviderFactory {
	return NewProviderFactory(cfg.OpenAIAPIKey, cfg.GeminiAPIKey)
}

// GetProvider returns the appropriate provider for the given model/provider name
func (f *ProviderFactory) GetProvider(ctx context.Context, model, providerName string) (Provider, error) {
	if providerName != "" {
		return f.getProviderByName(ctx, providerName)
	}
	return f.getProviderByModel(ctx, model)
}

func (f *ProviderFactory) getProviderByName(ctx context.Context, providerName string) (Provider, error) {
	switch strings.ToLower(providerName) {
	case providerNameOpenAI:
		return f.openAI()
	case providerNameGemini:
		return f.gemini(ctx)
	default:
		return nil, fmt.Errorf("unknown provider: %s (allowed: openai, gemini)", providerName)
	}
}

// getProviderByModel infers provider from model name, defaulting to whichever key is configured
func (f *ProviderFactory) getProviderByModel(ctx context.Context, model string) (Provider, error) {
	modelLower := strings.ToLower(model)

	switch {
	case strings.HasPrefix(modelLower, "gpt-"), strings.HasPrefix(modelLower, "o3"), strings.HasPrefix(modelLower, "o4"):
		return f.openAI()
	case strings.HasPrefix(modelLower, "gemini-"):
		return f.gemini(ctx)
	case f.openaiAPIKey != "":
		return f.openAI()
	case f.geminiAPIKey != "":
		return f.gemini(ctx)
	default:
		return nil, fmt.Errorf("no LLM API key configured for model %q", model)
	}
}

func (f *ProviderFactory) openAI() (Provider, error) {
	if f.openaiAPIKey == "" {
		return nil, fmt.Errorf("openai API key not configured")
	}
	return NewOpenAIProvider(f.openaiAPIKey), nil
}

func (f *ProviderFactory) gemini(ctx context.Context) (Provider, error) {
	if f.geminiAPIKey == "" {
		return nil, fmt.Errorf("gemini API key not configured")
	}
	return NewGeminiProvider(ctx, f.geminiAPIKey)
}
