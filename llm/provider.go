package llm

import (
	"context"
	"strings"
)

// Provider generates text from a language model
type Provider interface {
	Name() string
	Generate(ctx context.Context, request *GenerationRequest) (*GenerationResponse, error)
}

// OutputSchema asks the model for JSON matching a schema
type OutputSchema struct {
	Name        string
	Description string
	Schema      map[string]any
}

// GenerationRequest is a provider independent generation request.
// InputArray holds {"role": ..., "content": ...} messages.
type GenerationRequest struct {
	Model         string
	InputArray    []map[string]any
	ReasoningMode string
	SystemPrompt  string
	OutputSchema  *OutputSchema
}

// Usage is the token accounting reported by the provider
type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}

// GenerationResponse holds the model's cleaned text output
type GenerationResponse struct {
	RawOutput string
	Usage     Usage
}

// cleanJSONOutput strips the markdown code fences models sometimes wrap JSON in
func cleanJSONOutput(text string) string {
	cleaned := strings.TrimSpace(text)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	return strings.TrimSpace(cleaned)
}

// messageText returns the role and content of one input message, ok is false when either is missing
func messageText(item map[string]any) (role, content string, ok bool) {
	role, hasRole := item["role"].(string)
	content, hasContent := item["content"].(string)
	return role, content, hasRole && hasContent
}
