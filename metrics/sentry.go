package metrics

import (
	"context"
	"fmt"
	"time"

	"github.com/getsentry/sentry-go"
)

// SentryMetrics handles custom metrics for Sentry
type SentryMetrics struct {
	enabled bool
}

// NewSentryMetrics creates a new Sentry metrics client
func NewSentryMetrics() *SentryMetrics {
	return &SentryMetrics{
		enabled: true, // No-op spans when the Sentry client is not initialised
	}
}

// RecordTokenUsage records LLM token usage for the intent fallback
func (m *SentryMetrics) RecordTokenUsage(ctx context.Context, provider, model string, inputTokens, outputTokens int) {
	if m == nil || !m.enabled {
		return
	}

	if transaction := sentry.TransactionFromContext(ctx); transaction != nil {
		transaction.SetTag("llm.provider", provider)
		transaction.SetTag("llm.model", model)
		transaction.SetData("llm.input_tokens", inputTokens)
		transaction.SetData("llm.output_tokens", outputTokens)
	}

	span := sentry.StartSpan(ctx, "llm.token_usage")
	defer span.Finish()

	span.SetTag("provider", provider)
	span.SetTag("model", model)
	span.SetData("input_tokens", inputTokens)
	span.SetData("output_tokens", outputTokens)
	span.SetData("total_tokens", inputTokens+outputTokens)

	span.Status = sentry.SpanStatusOK
	span.Description = fmt.Sprintf("Token Usage: %s/%s", provider, model)
}

// RecordBridgeCall records one round trip to the REAPER Lua bridge
func (m *SentryMetrics) RecordBridgeCall(ctx context.Context, function string, duration time.Duration, ok bool) {
	if m == nil || !m.enabled {
		return
	}

	span := sentry.StartSpan(ctx, "bridge.call")
	defer span.Finish()

	span.SetTag("function", function)
	span.SetTag("ok", fmt.Sprintf("%t", ok))
	span.SetData("duration_ms", duration.Milliseconds())

	if ok {
		span.Status = sentry.SpanStatusOK
	} else {
		span.Status = sentry.SpanStatusInternalError
	}
	span.Description = fmt.Sprintf("Bridge Call: %s", function)
}

// RecordToolCall records an MCP tool invocation
func (m *SentryMetrics) RecordToolCall(ctx context.Context, tool, category string, duration time.Duration, success bool) {
	if m == nil || !m.enabled {
		return
	}

	if transaction := sentry.TransactionFromContext(ctx); transaction != nil {
		transaction.SetTag("mcp.tool", tool)
		transaction.SetTag("mcp.category", category)
		transaction.SetData("mcp.duration_ms", duration.Milliseconds())
	}

	span := sentry.StartSpan(ctx, "mcp.tool_call")
	defer span.Finish()

	span.SetTag("tool", tool)
	span.SetTag("success", fmt.Sprintf("%t", success))
	span.SetData("duration_ms", duration.Milliseconds())

	if success {
		span.Status = sentry.SpanStatusOK
	} else {
		span.Status = sentry.SpanStatusInternalError
	}
	span.Description = fmt.Sprintf("Tool Call: %s", tool)
}

// RecordChartLookup records an online chord chart lookup
func (m *SentryMetrics) RecordChartLookup(ctx context.Context, source string, duration time.Duration, found bool, sections int) {
	if m == nil || !m.enabled {
		return
	}

	span := sentry.StartSpan(ctx, "lookup.chart")
	defer span.Finish()

	span.SetTag("source", source)
	span.SetTag("found", fmt.Sprintf("%t", found))
	span.SetData("duration_ms", duration.Milliseconds())
	span.SetData("sections", sections)

	if found {
		span.Status = sentry.SpanStatusOK
	} else {
		span.Status = sentry.SpanStatusNotFound
	}
	span.Description = fmt.Sprintf("Chart Lookup: %s", source)
}

// RecordGenerationDuration records how long an LLM generation request took
func (m *SentryMetrics) RecordGenerationDuration(ctx context.Context, duration time.Duration, success bool) {
	if m == nil || !m.enabled {
		return
	}

	span := sentry.StartSpan(ctx, "generation.request")
	defer span.Finish()

	span.SetTag("success", fmt.Sprintf("%t", success))
	span.SetData("duration_ms", duration.Milliseconds())
	span.SetData("success", success)

	if success {
		span.Status = sentry.SpanStatusOK
	} else {
		span.Status = sentry.SpanStatusInternalError
	}

	span.Description = fmt.Sprintf("Generation Request: %t", success)
}
