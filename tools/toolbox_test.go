package tools

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/Conceptual-Machines/magda-reaper-mcp/bridge"
	"github.com/Conceptual-Machines/magda-reaper-mcp/models"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedCall struct {
	fn   string
	args []any
}

// fakeBridge answers CallLua from a per-function script and records every call.
// Functions without a script succeed with a null return value.
type fakeBridge struct {
	mu        sync.Mutex
	calls     []recordedCall
	responses map[string]*bridge.Response
	errs      map[string]error
}

func newFakeBridge() *fakeBridge {
	return &fakeBridge{
		responses: map[string]*bridge.Response{},
		errs:      map[string]error{},
	}
}

func (f *fakeBridge) CallLua(ctx context.Context, fn string, args ...any) (*bridge.Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, recordedCall{fn: fn, args: args})
	if err, ok := f.errs[fn]; ok {
		return nil, err
	}
	if resp, ok := f.responses[fn]; ok {
		return resp, nil
	}
	return &bridge.Response{OK: true}, nil
}

// returns scripts a successful reply carrying ret
func (f *fakeBridge) returns(fn string, ret any) {
	raw, _ := json.Marshal(ret)
	f.responses[fn] = &bridge.Response{OK: true, Ret: raw}
}

// fails scripts an error reply from REAPER
func (f *fakeBridge) fails(fn, msg string) {
	f.responses[fn] = &bridge.Response{OK: false, Error: msg}
}

func (f *fakeBridge) callsTo(fn string) []recordedCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []recordedCall
	for _, c := range f.calls {
		if c.fn == fn {
			out = append(out, c)
		}
	}
	return out
}

func (f *fakeBridge) functions() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.calls))
	for _, c := range f.calls {
		out = append(out, c.fn)
	}
	return out
}

type fakeSongs struct {
	chart   *models.SongChart
	err     error
	lookups []string
}

func (f *fakeSongs) LookupSong(ctx context.Context, song, artist string, bpm int, genre string) (*models.SongChart, error) {
	f.lookups = append(f.lookups, song+"|"+artist+"|"+genre)
	if f.err != nil {
		return nil, f.err
	}
	c := *f.chart
	return &c, nil
}

func testChart() *models.SongChart {
	return &models.SongChart{
		Title:   "Wonderwall",
		Artist:  "Oasis",
		Key:     "F#m",
		BPM:     87,
		TimeSig: "4/4",
		Sections: []models.Section{
			{Name: "verse", Chords: []string{"Em7", "G", "Dsus4", "A7sus4"}, Bars: 4},
		},
	}
}

func newTestToolbox(t *testing.T, b *fakeBridge, songs SongLooker) *Toolbox {
	t.Helper()
	if songs == nil {
		songs = &fakeSongs{chart: testChart()}
	}
	tb, err := NewToolbox(b, songs, WithExportDir(t.TempDir()))
	require.NoError(t, err)
	return tb
}

func callTool(args map[string]any) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	require.NotNil(t, result)
	require.NotEmpty(t, result.Content)
	text, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok, "expected text content, got %T", result.Content[0])
	return text.Text
}

func TestToolbox_ToolNamesAreUnique(t *testing.T) {
	tb := newTestToolbox(t, newFakeBridge(), nil)

	seen := map[string]bool{}
	perCategory := map[string]int{}
	for _, tool := range tb.Tools() {
		assert.False(t, seen[tool.Definition.Name], "duplicate tool %s", tool.Definition.Name)
		seen[tool.Definition.Name] = true
		assert.NotEmpty(t, tool.Definition.Description, tool.Definition.Name)
		assert.NotNil(t, tool.Handler, tool.Definition.Name)
		perCategory[tool.Category]++
	}

	assert.Equal(t, map[string]int{
		CategoryBacking:     7,
		CategorySession:     9,
		CategoryArrangement: 2,
		CategoryMIDI:        3,
		CategoryNeuralDSP:   8,
		CategoryRender:      4,
	}, perCategory)
}

func TestToolbox_Register(t *testing.T) {
	tb := newTestToolbox(t, newFakeBridge(), nil)
	s := server.NewMCPServer("test", "0.0.1", server.WithToolCapabilities(true))

	assert.Equal(t, 33, tb.Register(s))
}

func TestInstrument_PassesResultThrough(t *testing.T) {
	tb := newTestToolbox(t, newFakeBridge(), nil)

	ok := tb.instrument(CategoryRender, "ok", func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return mcp.NewToolResultText("done"), nil
	})
	result, err := ok(context.Background(), callTool(nil))
	require.NoError(t, err)
	assert.Equal(t, "done", resultText(t, result))

	boom := errors.New("boom")
	failing := tb.instrument(CategoryRender, "failing", func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return nil, boom
	})
	_, err = failing(context.Background(), callTool(nil))
	assert.ErrorIs(t, err, boom)
}

func TestCall_FoldsTransportErrors(t *testing.T) {
	b := newFakeBridge()
	b.errs["Master_GetTempo"] = bridge.ErrTimeout
	tb := newTestToolbox(t, b, nil)

	resp := tb.call(context.Background(), "Master_GetTempo")
	require.NotNil(t, resp)
	assert.False(t, resp.OK)
	assert.Contains(t, resp.Error, "timed out")
	assert.Equal(t, 120.0, okFloat(resp, 120))
}

func TestHandle(t *testing.T) {
	tests := []struct {
		name     string
		resp     *bridge.Response
		expected any
	}{
		{"pointer string", &bridge.Response{OK: true, Ret: json.RawMessage(`"0x7f00"`)}, "0x7f00"},
		{"empty string", &bridge.Response{OK: true, Ret: json.RawMessage(`""`)}, nil},
		{"false", &bridge.Response{OK: true, Ret: json.RawMessage(`false`)}, nil},
		{"null", &bridge.Response{OK: true, Ret: json.RawMessage(`null`)}, nil},
		{"failed", &bridge.Response{OK: false, Ret: json.RawMessage(`"0x7f00"`)}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, handle(tt.resp))
		})
	}
}

func TestOptionalNumber(t *testing.T) {
	req := callTool(map[string]any{"tempo": 96.0, "empty": nil, "word": "fast"})

	v, ok := optionalNumber(req, "tempo")
	assert.True(t, ok)
	assert.Equal(t, 96.0, v)

	_, ok = optionalNumber(req, "missing")
	assert.False(t, ok)
	_, ok = optionalNumber(req, "empty")
	assert.False(t, ok)
	_, ok = optionalNumber(req, "word")
	assert.False(t, ok)
}
