package bridge

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Conceptual-Machines/magda-reaper-mcp/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestBridge(t *testing.T, timeout time.Duration) *FileBridge {
	t.Helper()
	b, err := NewFileBridge(&config.Config{
		BridgeDir:     t.TempDir(),
		BridgeTimeout: timeout,
		BridgePoll:    5 * time.Millisecond,
	})
	require.NoError(t, err)
	return b
}

// fakeREAPER plays the Lua side: it answers each request file with handler's reply
func fakeREAPER(ctx context.Context, t *testing.T, dir string, handler func(Request) Response) {
	t.Helper()
	go func() {
		seen := map[string]bool{}
		for {
			select {
			case <-ctx.Done():
				return
			case <-time.After(2 * time.Millisecond):
			}

			entries, err := os.ReadDir(dir)
			if err != nil {
				return
			}
			for _, e := range entries {
				name := e.Name()
				if !strings.HasPrefix(name, "request_") || !strings.HasSuffix(name, ".json") || seen[name] {
					continue
				}
				seen[name] = true

				data, err := os.ReadFile(filepath.Join(dir, name))
				if err != nil {
					continue
				}
				var req Request
				if err := json.Unmarshal(data, &req); err != nil {
					t.Errorf("malformed request %s: %v", name, err)
					continue
				}

				out, _ := json.Marshal(handler(req))
				_ = os.WriteFile(filepath.Join(dir, "response_"+req.ID+".json"), out, 0o644)
			}
		}
	}()
}

func TestCallLua_RoundTrip(t *testing.T) {
	b := newTestBridge(t, 2*time.Second)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var got Request
	var mu sync.Mutex
	fakeREAPER(ctx, t, b.Dir(), func(req Request) Response {
		mu.Lock()
		got = req
		mu.Unlock()
		return Response{OK: true, Ret: json.RawMessage(`{"tracks":["drums","bass"]}`)}
	})

	resp, err := b.CallLua(context.Background(), "GenerateBackingTrack", map[string]any{"title": "Song"}, []string{"drums", "bass"})
	require.NoError(t, err)
	assert.True(t, resp.OK)

	var ret struct {
		Tracks []string `json:"tracks"`
	}
	require.NoError(t, resp.Decode(&ret))
	assert.Equal(t, []string{"drums", "bass"}, ret.Tracks)

	mu.Lock()
	assert.Equal(t, "GenerateBackingTrack", got.Func)
	assert.Len(t, got.Args, 2)
	assert.NotEmpty(t, got.ID)
	mu.Unlock()

	// Both files are cleaned up after the call
	entries, err := os.ReadDir(b.Dir())
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestCallLua_NoArgsSendsEmptyArray(t *testing.T) {
	b := newTestBridge(t, 2*time.Second)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	fakeREAPER(ctx, t, b.Dir(), func(req Request) Response {
		assert.NotNil(t, req.Args)
		assert.Empty(t, req.Args)
		return Response{OK: true, Ret: json.RawMessage(`42`)}
	})

	resp, err := b.CallLua(context.Background(), "CountTracks")
	require.NoError(t, err)
	assert.Equal(t, 42, resp.Int(0))
}

func TestCallLua_ErrorResponse(t *testing.T) {
	b := newTestBridge(t, 2*time.Second)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	fakeREAPER(ctx, t, b.Dir(), func(req Request) Response {
		return Response{OK: false, Error: "Track not found"}
	})

	resp, err := b.CallLua(context.Background(), "GetTrack", 99)
	require.NoError(t, err)
	assert.False(t, resp.OK)
	assert.Equal(t, "Track not found", resp.ErrorOr("Unknown error"))
}

func TestCallLua_Timeout(t *testing.T) {
	b := newTestBridge(t, 30*time.Millisecond)

	_, err := b.CallLua(context.Background(), "Nobody")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrTimeout))

	entries, err := os.ReadDir(b.Dir())
	require.NoError(t, err)
	assert.Empty(t, entries, "request file is removed after a timeout")
}

func TestCallLua_ContextCancelled(t *testing.T) {
	b := newTestBridge(t, 5*time.Second)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := b.CallLua(ctx, "Nobody")
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestCallLua_Concurrent(t *testing.T) {
	b := newTestBridge(t, 2*time.Second)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	fakeREAPER(ctx, t, b.Dir(), func(req Request) Response {
		ret, _ := json.Marshal(req.Args[0])
		return Response{OK: true, Ret: ret}
	})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			resp, err := b.CallLua(context.Background(), "Echo", n)
			if assert.NoError(t, err) {
				assert.Equal(t, n, resp.Int(-1))
			}
		}(i)
	}
	wg.Wait()
}

func TestResponse_Helpers(t *testing.T) {
	tests := []struct {
		name  string
		ret   string
		check func(t *testing.T, r *Response)
	}{
		{
			name: "float",
			ret:  `123.5`,
			check: func(t *testing.T, r *Response) {
				assert.Equal(t, 123.5, r.Float(0))
				assert.Equal(t, 123, r.Int(0))
				assert.Equal(t, "x", r.String("x"))
			},
		},
		{
			name: "string",
			ret:  `"Guitar"`,
			check: func(t *testing.T, r *Response) {
				assert.Equal(t, "Guitar", r.String(""))
				assert.Equal(t, 7, r.Int(7))
			},
		},
		{
			name: "object",
			ret:  `{"name":"Lead"}`,
			check: func(t *testing.T, r *Response) {
				assert.Equal(t, "Lead", r.Map()["name"])
			},
		},
		{
			name: "missing",
			ret:  ``,
			check: func(t *testing.T, r *Response) {
				assert.Equal(t, 3, r.Int(3))
				assert.Equal(t, 1.5, r.Float(1.5))
				assert.Empty(t, r.Map())
			},
		},
		{
			name: "null",
			ret:  `null`,
			check: func(t *testing.T, r *Response) {
				assert.Empty(t, r.Map())
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &Response{OK: true}
			if tt.ret != "" {
				r.Ret = json.RawMessage(tt.ret)
			}
			tt.check(t, r)
		})
	}
}
