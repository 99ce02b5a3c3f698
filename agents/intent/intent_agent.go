package intent

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"slices"
	"strings"
	"time"

	"github.com/Conceptual-Machines/magda-reaper-mcp/llm"
	"github.com/getsentry/sentry-go"
)

// Agent resolves natural language requests into structured tool arguments.
// Deterministic rules run first; the optional LLM provider is only asked
// when the rules find nothing.
type Agent struct {
	provider llm.Provider
	model    string
}

// NewAgent creates an intent agent. provider may be nil, in which case only
// the built-in rules are used.
func NewAgent(provider llm.Provider, model string) *Agent {
	a := &Agent{provider: provider, model: model}

	log.Printf("🧭 INTENT AGENT INITIALIZED:")
	if provider != nil {
		log.Printf("   Provider: %s (model: %s)", provider.Name(), model)
	} else {
		log.Printf("   Provider: none (rules only)")
	}

	return a
}

// HasLLM reports whether an LLM fallback is configured
func (a *Agent) HasLLM() bool {
	return a != nil && a.provider != nil
}

// ResolveBacking extracts the song and artist from a backing track request
func (a *Agent) ResolveBacking(ctx context.Context, description string) (BackingRequest, bool) {
	if req, ok := ParseBackingRequest(description); ok {
		return req, true
	}
	if !a.HasLLM() {
		return BackingRequest{}, false
	}

	prompt := fmt.Sprintf(`Extract the song title and artist from this backing track request.
If the request does not name both a song and an artist, return empty strings.

Request: %q`, description)

	var result BackingRequest
	if err := a.generateJSON(ctx, "BackingRequest", prompt, backingSchema(), &result); err != nil {
		log.Printf("⚠️ LLM backing request resolution failed: %v", err)
		return BackingRequest{}, false
	}

	result.Song = strings.TrimSpace(result.Song)
	result.Artist = strings.TrimSpace(result.Artist)
	if result.Song == "" || result.Artist == "" {
		return BackingRequest{}, false
	}

	log.Printf("🧭 LLM RESOLVED BACKING REQUEST: %q by %s", result.Song, result.Artist)
	return result, true
}

// ResolveSession maps a description to one of the available session types
func (a *Agent) ResolveSession(ctx context.Context, description string, available []string) (string, bool) {
	if sessionType, ok := ResolveSessionType(description); ok {
		return sessionType, true
	}
	if !a.HasLLM() || len(available) == 0 {
		return "", false
	}

	prompt := fmt.Sprintf(`Pick the REAPER session template that best fits this request.
Available templates: %s.
If none fits, return an empty session_type.

Request: %q`, strings.Join(available, ", "), description)

	var result struct {
		SessionType string `json:"session_type"`
	}
	if err := a.generateJSON(ctx, "SessionChoice", prompt, sessionSchema(available), &result); err != nil {
		log.Printf("⚠️ LLM session resolution failed: %v", err)
		return "", false
	}

	sessionType := strings.ToLower(strings.TrimSpace(result.SessionType))
	if !slices.Contains(available, sessionType) {
		return "", false
	}

	log.Printf("🧭 LLM RESOLVED SESSION TYPE: %s", sessionType)
	return sessionType, true
}

func (a *Agent) generateJSON(ctx context.Context, name, prompt string, schema map[string]any, out any) error {
	startTime := time.Now()

	span := sentry.StartSpan(ctx, "intent.resolve")
	span.SetTag("schema", name)
	defer span.Finish()

	request := &llm.GenerationRequest{
		Model:         a.model,
		InputArray:    []map[string]any{{"role": "user", "content": prompt}},
		ReasoningMode: "low",
		SystemPrompt:  "You turn requests to a REAPER assistant into structured arguments. Return only valid JSON.",
		OutputSchema: &llm.OutputSchema{
			Name:   name,
			Schema: schema,
		},
	}

	resp, err := a.provider.Generate(span.Context(), request)
	if err != nil {
		span.Status = sentry.SpanStatusInternalError
		return fmt.Errorf("LLM generation failed: %w", err)
	}
	if err := json.Unmarshal([]byte(resp.RawOutput), out); err != nil {
		span.Status = sentry.SpanStatusInternalError
		return fmt.Errorf("failed to parse LLM output: %w", err)
	}

	log.Printf("🧭 INTENT RESOLVED in %v", time.Since(startTime))
	span.Status = sentry.SpanStatusOK
	return nil
}

func backingSchema() map[string]any {
	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"song":   map[string]any{"type": "string"},
			"artist": map[string]any{"type": "string"},
		},
		"required": []string{"song", "artist"},
	}
}

func sessionSchema(available []string) map[string]any {
	enum := append(slices.Clone(available), "")
	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"session_type": map[string]any{"type": "string", "enum": enum},
		},
		"required": []string{"session_type"},
	}
}
