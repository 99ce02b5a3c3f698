package bridge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/Conceptual-Machines/magda-reaper-mcp/config"
	"github.com/Conceptual-Machines/magda-reaper-mcp/metrics"
	"github.com/getsentry/sentry-go"
	"github.com/google/uuid"
)

// ErrTimeout is returned when the Lua side does not answer in time
var ErrTimeout = errors.New("bridge: timed out waiting for REAPER response")

// Caller invokes a named function inside REAPER.
// Implementations must be safe for concurrent use.
type Caller interface {
	CallLua(ctx context.Context, fn string, args ...any) (*Response, error)
}

// Request is the JSON document written for the Lua bridge script
type Request struct {
	ID   string `json:"id"`
	Func string `json:"func"`
	Args []any  `json:"args"`
}

// Response is the JSON document the Lua bridge writes back
type Response struct {
	OK    bool            `json:"ok"`
	Ret   json.RawMessage `json:"ret,omitempty"`
	Error string          `json:"error,omitempty"`
}

// Decode unmarshals the return value into v. A missing or null return value
// leaves v untouched.
func (r *Response) Decode(v any) error {
	if len(r.Ret) == 0 || string(r.Ret) == "null" {
		return nil
	}
	if err := json.Unmarshal(r.Ret, v); err != nil {
		return fmt.Errorf("failed to decode bridge return value: %w", err)
	}
	return nil
}

// Map decodes an object return value, returning an empty map for anything else
func (r *Response) Map() map[string]any {
	out := map[string]any{}
	if err := r.Decode(&out); err != nil || out == nil {
		return map[string]any{}
	}
	return out
}

// Int decodes a numeric return value, falling back to def
func (r *Response) Int(def int) int {
	var f float64
	if len(r.Ret) == 0 || r.Decode(&f) != nil {
		return def
	}
	return int(f)
}

// Float decodes a numeric return value, falling back to def
func (r *Response) Float(def float64) float64 {
	var f float64
	if len(r.Ret) == 0 || r.Decode(&f) != nil {
		return def
	}
	return f
}

// String decodes a string return value, falling back to def
func (r *Response) String(def string) string {
	var s string
	if len(r.Ret) == 0 || r.Decode(&s) != nil {
		return def
	}
	return s
}

// ErrorOr returns the error text reported by REAPER, or def when none was given
func (r *Response) ErrorOr(def string) string {
	if r.Error == "" {
		return def
	}
	return r.Error
}

// FileBridge talks to the REAPER Lua bridge through JSON files in a shared directory
type FileBridge struct {
	dir     string
	timeout time.Duration
	poll    time.Duration
	metrics *metrics.SentryMetrics
}

// NewFileBridge creates a bridge client for the configured directory
func NewFileBridge(cfg *config.Config) (*FileBridge, error) {
	if err := os.MkdirAll(cfg.BridgeDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create bridge directory %s: %w", cfg.BridgeDir, err)
	}

	b := &FileBridge{
		dir:     cfg.BridgeDir,
		timeout: cfg.BridgeTimeout,
		poll:    cfg.BridgePoll,
		metrics: metrics.NewSentryMetrics(),
	}

	log.Printf("🌉 REAPER BRIDGE INITIALIZED:")
	log.Printf("   Directory: %s", b.dir)
	log.Printf("   Timeout: %v, Poll: %v", b.timeout, b.poll)

	return b, nil
}

// Dir returns the shared bridge directory
func (b *FileBridge) Dir() string {
	return b.dir
}

// CallLua writes a request for fn and blocks until REAPER answers, the
// bridge timeout elapses or ctx is cancelled.
func (b *FileBridge) CallLua(ctx context.Context, fn string, args ...any) (*Response, error) {
	if args == nil {
		args = []any{}
	}

	span := sentry.StartSpan(ctx, "bridge.call_lua")
	span.Description = fn
	defer span.Finish()
	ctx = span.Context()

	startTime := time.Now()
	req := Request{ID: uuid.NewString(), Func: fn, Args: args}

	requestPath := filepath.Join(b.dir, fmt.Sprintf("request_%s.json", req.ID))
	responsePath := filepath.Join(b.dir, fmt.Sprintf("response_%s.json", req.ID))

	if err := b.writeRequest(requestPath, req); err != nil {
		span.Status = sentry.SpanStatusInternalError
		b.metrics.RecordBridgeCall(ctx, fn, time.Since(startTime), false)
		return nil, err
	}
	defer os.Remove(requestPath)

	resp, err := b.waitForResponse(ctx, responsePath)
	duration := time.Since(startTime)
	if err != nil {
		log.Printf("❌ BRIDGE CALL FAILED: %s after %v: %v", fn, duration, err)
		span.Status = sentry.SpanStatusDeadlineExceeded
		b.metrics.RecordBridgeCall(ctx, fn, duration, false)
		return nil, fmt.Errorf("bridge call %s: %w", fn, err)
	}

	log.Printf("🌉 BRIDGE CALL: %s ok=%t (%v)", fn, resp.OK, duration)
	span.Status = sentry.SpanStatusOK
	b.metrics.RecordBridgeCall(ctx, fn, duration, resp.OK)
	return resp, nil
}

// writeRequest writes to a temp file first so the Lua side never reads a partial request
func (b *FileBridge) writeRequest(path string, req Request) error {
	data, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("failed to encode bridge request %s: %w", req.Func, err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write bridge request: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to publish bridge request: %w", err)
	}
	return nil
}

func (b *FileBridge) waitForResponse(ctx context.Context, path string) (*Response, error) {
	ctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()

	ticker := time.NewTicker(b.poll)
	defer ticker.Stop()

	for {
		resp, err := readResponse(path)
		if err == nil {
			_ = os.Remove(path)
			return resp, nil
		}
		if !errors.Is(err, os.ErrNotExist) && !errors.Is(err, errPartial) {
			_ = os.Remove(path)
			return nil, err
		}

		select {
		case <-ctx.Done():
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				return nil, ErrTimeout
			}
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}

var errPartial = errors.New("partial response")

func readResponse(path string) (*Response, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, errPartial
	}

	var resp Response
	if err := json.Unmarshal(data, &resp); err != nil {
		// The Lua side may still be writing; retry on the next tick
		var syntaxErr *json.SyntaxError
		if errors.As(err, &syntaxErr) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, errPartial
		}
		return nil, fmt.Errorf("failed to decode bridge response: %w", err)
	}
	return &resp, nil
}
