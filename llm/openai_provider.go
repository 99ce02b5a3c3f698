package llm

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/Conceptual-Machines/magda-reaper-mcp/metrics"
	"github.com/getsentry/sentry-go"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/responses"
	"github.com/openai/openai-go/shared"
)

const (
	developerRole = "developer"
	systemRole    = "system"
	assistantRole = "assistant"

	reasoningNone   = "none"
	reasoningLow    = "low"
	reasoningMedium = "medium"
	reasoningHigh   = "high"

	providerNameOpenAI = "openai"

	maxPreviewChars = 200
)

// OpenAIProvider implements the Provider interface using OpenAI's Responses API
type OpenAIProvider struct {
	client  *openai.Client
	metrics *metrics.SentryMetrics
}

// NewOpenAIProvider creates a new OpenAI provider
func NewOpenAIProvider(apiKey string, opts ...option.RequestOption) *OpenAIProvider {
	client := openai.NewClient(append([]option.RequestOption{option.WithAPIKey(apiKey)}, opts...)...)
	return &OpenAIProvider{
		client:  &client,
		metrics: metrics.NewSentryMetrics(),
	}
}

// Name returns the provider name
func (p *OpenAIProvider) Name() string {
	return providerNameOpenAI
}

// Generate runs a single non-streaming generation
func (p *OpenAIProvider) Generate(ctx context.Context, request *GenerationRequest) (*GenerationResponse, error) {
	startTime := time.Now()
	log.Printf("🎵 OPENAI GENERATION REQUEST STARTED (Model: %s)", request.Model)

	span := sentry.StartSpan(ctx, "openai.generate")
	span.SetTag("model", request.Model)
	span.SetTag("provider", providerNameOpenAI)
	defer span.Finish()

	resp, err := p.client.Responses.New(span.Context(), p.buildRequestParams(request))
	if err != nil {
		span.Status = sentry.SpanStatusInternalError
		p.metrics.RecordGenerationDuration(ctx, time.Since(startTime), false)
		return nil, fmt.Errorf("openai request failed: %w", err)
	}

	textOutput := cleanJSONOutput(resp.OutputText())
	if textOutput == "" {
		span.Status = sentry.SpanStatusInternalError
		p.metrics.RecordGenerationDuration(ctx, time.Since(startTime), false)
		return nil, fmt.Errorf("openai response did not include any output text")
	}

	usage := Usage{
		InputTokens:  int(resp.Usage.InputTokens),
		OutputTokens: int(resp.Usage.OutputTokens),
		TotalTokens:  int(resp.Usage.TotalTokens),
	}
	log.Printf("📊 USAGE: input=%d, output=%d, total=%d", usage.InputTokens, usage.OutputTokens, usage.TotalTokens)
	log.Printf("✅ OPENAI GENERATION COMPLETED in %v: %s", time.Since(startTime), truncate(textOutput, maxPreviewChars))

	span.Status = sentry.SpanStatusOK
	p.metrics.RecordTokenUsage(ctx, providerNameOpenAI, request.Model, usage.InputTokens, usage.OutputTokens)
	p.metrics.RecordGenerationDuration(ctx, time.Since(startTime), true)

	return &GenerationResponse{RawOutput: textOutput, Usage: usage}, nil
}

func (p *OpenAIProvider) buildRequestParams(request *GenerationRequest) responses.ResponseNewParams {
	inputItems := responses.ResponseInputParam{}
	for _, item := range request.InputArray {
		role, content, ok := messageText(item)
		if !ok {
			log.Printf("⚠️  Skipping invalid input item (missing role or content): %v", item)
			continue
		}

		roleEnum := responses.EasyInputMessageRoleUser
		if role == developerRole {
			roleEnum = responses.EasyInputMessageRoleDeveloper
		}
		inputItems = append(inputItems, responses.ResponseInputItemParamOfMessage(content, roleEnum))
	}

	params := responses.ResponseNewParams{
		Model: request.Model,
		Input: responses.ResponseNewParamsInputUnion{
			OfInputItemList: inputItems,
		},
	}
	if request.SystemPrompt != "" {
		params.Instructions = openai.String(request.SystemPrompt)
	}

	switch request.ReasoningMode {
	case reasoningNone:
		params.Reasoning = shared.ReasoningParam{Effort: shared.ReasoningEffort(reasoningNone)}
	case reasoningLow:
		params.Reasoning = shared.ReasoningParam{Effort: responses.ReasoningEffortLow}
	case reasoningMedium:
		params.Reasoning = shared.ReasoningParam{Effort: responses.ReasoningEffortMedium}
	case reasoningHigh:
		params.Reasoning = shared.ReasoningParam{Effort: responses.ReasoningEffortHigh}
	}

	if request.OutputSchema != nil {
		params.Text = responses.ResponseTextConfigParam{
			Format: responses.ResponseFormatTextConfigParamOfJSONSchema(
				request.OutputSchema.Name,
				request.OutputSchema.Schema,
			),
		}
	}

	return params
}

// truncate truncates a string to maxLen characters
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
