package llm

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/Conceptual-Machines/magda-reaper-mcp/metrics"
	"github.com/getsentry/sentry-go"
	"google.golang.org/genai"
)

const providerNameGemini = "gemini"

// GeminiProvider implements the Provider interface using the Gemini API
type GeminiProvider struct {
	client  *genai.Client
	metrics *metrics.SentryMetrics
}

// NewGeminiProvider creates a new Gemini provider
func NewGeminiProvider(ctx context.Context, apiKey string) (*GeminiProvider, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	return &GeminiProvider{
		client:  client,
		metrics: metrics.NewSentryMetrics(),
	}, nil
}

// Name returns the provider name
func (p *GeminiProvider) Name() string {
	return providerNameGemini
}

// Generate runs a single generation
func (p *GeminiProvider) Generate(ctx context.Context, request *GenerationRequest) (*GenerationResponse, error) {
	startTime := time.Now()
	log.Printf("🎵 GEMINI GENERATION REQUEST STARTED (Model: %s)", request.Model)

	span := sentry.StartSpan(ctx, "gemini.generate")
	span.SetTag("model", request.Model)
	span.SetTag("provider", providerNameGemini)
	defer span.Finish()

	contents, system := geminiContents(request)
	cfg := &genai.GenerateContentConfig{SystemInstruction: system}
	if request.OutputSchema != nil {
		cfg.ResponseMIMEType = "application/json"
	}

	resp, err := p.client.Models.GenerateContent(span.Context(), request.Model, contents, cfg)
	if err != nil {
		span.Status = sentry.SpanStatusInternalError
		p.metrics.RecordGenerationDuration(ctx, time.Since(startTime), false)
		return nil, fmt.Errorf("gemini request failed: %w", err)
	}

	textOutput := cleanJSONOutput(resp.Text())
	if textOutput == "" {
		span.Status = sentry.SpanStatusInternalError
		p.metrics.RecordGenerationDuration(ctx, time.Since(startTime), false)
		return nil, fmt.Errorf("gemini response did not include any output text")
	}

	var usage Usage
	if resp.UsageMetadata != nil {
		usage = Usage{
			InputTokens:  int(resp.UsageMetadata.PromptTokenCount),
			OutputTokens: int(resp.UsageMetadata.CandidatesTokenCount),
			TotalTokens:  int(resp.UsageMetadata.TotalTokenCount),
		}
	}
	log.Printf("✅ GEMINI GENERATION COMPLETED in %v: %s", time.Since(startTime), truncate(textOutput, maxPreviewChars))

	span.Status = sentry.SpanStatusOK
	p.metrics.RecordTokenUsage(ctx, providerNameGemini, request.Model, usage.InputTokens, usage.OutputTokens)
	p.metrics.RecordGenerationDuration(ctx, time.Since(startTime), true)

	return &GenerationResponse{RawOutput: textOutput, Usage: usage}, nil
}

// geminiContents splits a request into conversation turns and a system
// instruction. Developer and system messages are folded into the instruction
// after the request's own system prompt.
func geminiContents(request *GenerationRequest) ([]*genai.Content, *genai.Content) {
	var instructions []string
	if request.SystemPrompt != "" {
		instructions = append(instructions, request.SystemPrompt)
	}

	contents := make([]*genai.Content, 0, len(request.InputArray))
	for _, item := range request.InputArray {
		role, content, ok := messageText(item)
		if !ok {
			log.Printf("⚠️  Skipping invalid input item (missing role or content): %v", item)
			continue
		}
		switch role {
		case developerRole, systemRole:
			instructions = append(instructions, content)
		case assistantRole:
			contents = append(contents, genai.NewContentFromText(content, genai.RoleModel))
		default:
			contents = append(contents, genai.NewContentFromText(content, genai.RoleUser))
		}
	}

	if len(instructions) == 0 {
		return contents, nil
	}
	return contents, genai.NewContentFromText(strings.Join(instructions, "\n\n"), genai.RoleUser)
}
