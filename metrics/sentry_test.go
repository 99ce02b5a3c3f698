package metrics

import (
	"context"
	"testing"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/stretchr/testify/assert"
)

func TestSentryMetrics_WithoutClient(t *testing.T) {
	m := NewSentryMetrics()
	ctx := context.Background()

	assert.NotPanics(t, func() {
		m.RecordBridgeCall(ctx, "GetSessionTypes", 12*time.Millisecond, true)
		m.RecordToolCall(ctx, "list_backing_genres", "Backing Tracks", time.Millisecond, true)
		m.RecordChartLookup(ctx, "ultimate-guitar", time.Second, false, 0)
		m.RecordTokenUsage(ctx, "openai", "gpt-5-mini", 100, 20)
		m.RecordGenerationDuration(ctx, time.Second, false)
	})
}

func TestSentryMetrics_Nil(t *testing.T) {
	var m *SentryMetrics
	assert.NotPanics(t, func() {
		m.RecordBridgeCall(context.Background(), "Ping", time.Millisecond, false)
	})
}

func TestSentryMetrics_TagsTransaction(t *testing.T) {
	tx := sentry.StartTransaction(context.Background(), "mcp.tool.test")
	defer tx.Finish()

	NewSentryMetrics().RecordToolCall(tx.Context(), "scale_lock", "MIDI Production", time.Millisecond, true)

	assert.Equal(t, "scale_lock", tx.Tags["mcp.tool"])
	assert.Equal(t, "MIDI Production", tx.Tags["mcp.category"])
}
