// Package tools defines the MCP tool catalogue. Every tool turns its
// arguments into REAPER bridge calls and formats the replies as text.
package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/Conceptual-Machines/magda-reaper-mcp/agents/intent"
	"github.com/Conceptual-Machines/magda-reaper-mcp/bridge"
	"github.com/Conceptual-Machines/magda-reaper-mcp/metrics"
	"github.com/Conceptual-Machines/magda-reaper-mcp/models"
	"github.com/getsentry/sentry-go"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// Tool categories
const (
	CategoryBacking     = "Backing Tracks"
	CategorySession     = "Session Templates"
	CategoryArrangement = "Arrangement"
	CategoryMIDI        = "MIDI Production"
	CategoryNeuralDSP   = "Neural DSP"
	CategoryRender      = "Render & Export"
)

const unknownError = "Unknown error"

// SongLooker finds and parses a chord chart for a song
type SongLooker interface {
	LookupSong(ctx context.Context, song, artist string, bpm int, genre string) (*models.SongChart, error)
}

// Tool pairs an MCP tool definition with its handler
type Tool struct {
	Definition mcp.Tool
	Handler    server.ToolHandlerFunc
	Category   string
}

// Toolbox holds the dependencies shared by every tool handler
type Toolbox struct {
	bridge    bridge.Caller
	songs     SongLooker
	intent    *intent.Agent
	metrics   *metrics.SentryMetrics
	exportDir string
	sessions  *SessionConfig
}

// Option customizes a Toolbox
type Option func(*Toolbox)

// WithIntentAgent sets the agent used by the natural language tools
func WithIntentAgent(agent *intent.Agent) Option {
	return func(t *Toolbox) { t.intent = agent }
}

// WithExportDir sets the default directory for MIDI exports
func WithExportDir(dir string) Option {
	return func(t *Toolbox) { t.exportDir = dir }
}

// NewToolbox creates the tool catalogue on top of a bridge and a song lookup
func NewToolbox(caller bridge.Caller, songs SongLooker, opts ...Option) (*Toolbox, error) {
	sessions, err := LoadSessionConfig()
	if err != nil {
		return nil, err
	}

	t := &Toolbox{
		bridge:    caller,
		songs:     songs,
		metrics:   metrics.NewSentryMetrics(),
		exportDir: ".",
		sessions:  sessions,
	}
	for _, opt := range opts {
		opt(t)
	}
	if t.intent == nil {
		t.intent = intent.NewAgent(nil, "")
	}
	return t, nil
}

// Tools returns every tool in registration order
func (t *Toolbox) Tools() []Tool {
	var all []Tool
	all = append(all, t.backingTools()...)
	all = append(all, t.sessionTools()...)
	all = append(all, t.arrangementTools()...)
	all = append(all, t.midiTools()...)
	all = append(all, t.neuralDSPTools()...)
	all = append(all, t.renderTools()...)
	return all
}

// Register adds every tool to the MCP server and returns how many were added
func (t *Toolbox) Register(s *server.MCPServer) int {
	tools := t.Tools()
	counts := map[string]int{}
	for _, tool := range tools {
		s.AddTool(tool.Definition, t.instrument(tool.Category, tool.Definition.Name, tool.Handler))
		counts[tool.Category]++
	}

	log.Printf("🧰 REGISTERED %d MCP TOOLS:", len(tools))
	for _, category := range []string{CategoryBacking, CategorySession, CategoryArrangement, CategoryMIDI, CategoryNeuralDSP, CategoryRender} {
		log.Printf("   %s: %d", category, counts[category])
	}
	return len(tools)
}

// instrument wraps a handler in a Sentry transaction and records the call
func (t *Toolbox) instrument(category, name string, handler server.ToolHandlerFunc) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		startTime := time.Now()

		transaction := sentry.StartTransaction(ctx, "mcp.tool."+name)
		transaction.SetTag("mcp.tool", name)
		transaction.SetTag("mcp.category", category)
		defer transaction.Finish()

		ctx = transaction.Context()
		result, err := handler(ctx, request)

		success := err == nil && (result == nil || !result.IsError)
		if success {
			transaction.Status = sentry.SpanStatusOK
		} else {
			transaction.Status = sentry.SpanStatusInternalError
		}
		if err != nil {
			if hub := sentry.GetHubFromContext(ctx); hub != nil {
				hub.CaptureException(err)
			} else {
				sentry.CaptureException(err)
			}
			log.Printf("❌ TOOL %s FAILED after %v: %v", name, time.Since(startTime), err)
		} else {
			log.Printf("🔧 TOOL %s completed in %v (success: %t)", name, time.Since(startTime), success)
		}

		t.metrics.RecordToolCall(ctx, name, category, time.Since(startTime), success)
		return result, err
	}
}

// call invokes a Lua function. Transport failures are folded into a failed
// response so handlers only deal with one shape.
func (t *Toolbox) call(ctx context.Context, fn string, args ...any) *bridge.Response {
	resp, err := t.bridge.CallLua(ctx, fn, args...)
	if err != nil {
		log.Printf("⚠️  Bridge call %s failed: %v", fn, err)
		return &bridge.Response{OK: false, Error: err.Error()}
	}
	if resp == nil {
		return &bridge.Response{OK: false, Error: "empty bridge response"}
	}
	return resp
}

// failure formats a failed bridge response as a tool error
func failure(prefix string, resp *bridge.Response) *mcp.CallToolResult {
	return mcp.NewToolResultError(fmt.Sprintf("%s: %s", prefix, resp.ErrorOr(unknownError)))
}

func okInt(resp *bridge.Response, def int) int {
	if !resp.OK {
		return def
	}
	return resp.Int(def)
}

func okFloat(resp *bridge.Response, def float64) float64 {
	if !resp.OK {
		return def
	}
	return resp.Float(def)
}

// handle returns the raw return value, such as a track or take pointer
// string, for passing back to later calls. Missing values are nil.
func handle(resp *bridge.Response) any {
	if !resp.OK {
		return nil
	}
	var v any
	if err := resp.Decode(&v); err != nil {
		return nil
	}
	switch h := v.(type) {
	case bool:
		if !h {
			return nil
		}
	case string:
		if h == "" {
			return nil
		}
	}
	return v
}

// prettyJSON renders a bridge return value for display
func prettyJSON(raw json.RawMessage) string {
	if len(raw) == 0 {
		return "{}"
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return string(raw)
	}
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return string(raw)
	}
	return string(out)
}

// optionalNumber returns a numeric argument only when the caller supplied it
func optionalNumber(request mcp.CallToolRequest, key string) (float64, bool) {
	v, ok := request.GetArguments()[key]
	if !ok || v == nil {
		return 0, false
	}
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}
