package tools

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNeuralDSPFind(t *testing.T) {
	b := newFakeBridge()
	b.returns("NeuralDSP_FindPlugins", []map[string]any{
		{"track_idx": 0, "track_name": "DI", "fx_idx": 1, "fx_name": "Archetype: Plini", "enabled": true},
		{"track_idx": 2, "track_name": "Bass", "fx_idx": 0, "fx_name": "Darkglass Ultra", "enabled": false},
	})
	tb := newTestToolbox(t, b, nil)

	result, err := tb.handleDSPFind(context.Background(), callTool(nil))
	require.NoError(t, err)
	assert.Equal(t, "Found 2 Neural DSP plugin(s):\n\n"+
		"  Track 0 (DI) → FX 1: Archetype: Plini [ON]\n"+
		"  Track 2 (Bass) → FX 0: Darkglass Ultra [BYPASSED]", resultText(t, result))
}

func TestNeuralDSPFind_EmptyAndFailure(t *testing.T) {
	b := newFakeBridge()
	b.returns("NeuralDSP_FindPlugins", []any{})
	tb := newTestToolbox(t, b, nil)

	result, err := tb.handleDSPFind(context.Background(), callTool(nil))
	require.NoError(t, err)
	assert.Equal(t, "No Neural DSP plugins found in the current session.", resultText(t, result))

	b.fails("NeuralDSP_FindPlugins", "bridge script not loaded")
	result, err = tb.handleDSPFind(context.Background(), callTool(nil))
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Equal(t, "Failed to scan for plugins: bridge script not loaded", resultText(t, result))
}

func TestNeuralDSPParams(t *testing.T) {
	b := newFakeBridge()
	b.returns("NeuralDSP_GetParams", map[string]any{
		"fx_name":     "Archetype: Nolly",
		"param_count": 2,
		"params": []map[string]any{
			{"idx": 0, "name": "Gain", "value": 0.5, "min": 0, "max": 1},
			{"idx": 12, "name": "Bass", "value": 0.33333, "min": 0, "max": 1},
		},
	})
	tb := newTestToolbox(t, b, nil)

	result, err := tb.handleDSPParams(context.Background(), callTool(map[string]any{"track": 0.0, "fx": 1.0}))
	require.NoError(t, err)
	assert.Equal(t, "Archetype: Nolly — 2 parameters:\n\n"+
		"  [  0] Gain: 0.5000 (range 0.00–1.00)\n"+
		"  [ 12] Bass: 0.3333 (range 0.00–1.00)", resultText(t, result))
	assert.Equal(t, []any{0, 1}, b.callsTo("NeuralDSP_GetParams")[0].args)
}

func TestNeuralDSPGetAndSet(t *testing.T) {
	b := newFakeBridge()
	b.returns("NeuralDSP_GetParamByName", map[string]any{
		"idx": 3, "name": "Amp Gain", "value": 0.25, "min": 0, "max": 1, "match_score": 90,
	})
	b.returns("NeuralDSP_SetParamByName", map[string]any{
		"idx": 3, "name": "Amp Gain", "old_value": 0.25, "new_value": 0.7, "match_score": 90,
	})
	tb := newTestToolbox(t, b, nil)
	ctx := context.Background()

	result, err := tb.handleDSPGet(ctx, callTool(map[string]any{"track": 0.0, "fx": 0.0, "param": "gain"}))
	require.NoError(t, err)
	assert.Equal(t, "Amp Gain (#3): 0.2500 (range 0.00–1.00, match: 90%)", resultText(t, result))

	result, err = tb.handleDSPSet(ctx, callTool(map[string]any{"track": 0.0, "fx": 0.0, "param": "gain", "value": 0.7}))
	require.NoError(t, err)
	assert.Equal(t, "Amp Gain (#3): 0.2500 → 0.7000 (match: 90%)", resultText(t, result))
	assert.Equal(t, []any{0, 0, "gain", 0.7}, b.callsTo("NeuralDSP_SetParamByName")[0].args)
}

func TestNeuralDSPPreset(t *testing.T) {
	b := newFakeBridge()
	b.returns("NeuralDSP_GetPreset", map[string]any{"fx_name": "Archetype: Gojira", "preset_name": "Default"})
	b.returns("NeuralDSP_SetPreset", map[string]any{"preset_name": "Lead"})
	tb := newTestToolbox(t, b, nil)
	ctx := context.Background()

	result, err := tb.handleDSPPreset(ctx, callTool(map[string]any{"track": 0.0, "fx": 0.0}))
	require.NoError(t, err)
	assert.Equal(t, "Archetype: Gojira — Current preset: Default", resultText(t, result))

	result, err = tb.handleDSPPreset(ctx, callTool(map[string]any{"track": 0.0, "fx": 0.0, "preset": "Lead"}))
	require.NoError(t, err)
	assert.Equal(t, "Switched to preset: Lead", resultText(t, result))
}

func TestNeuralDSPSnapshot(t *testing.T) {
	b := newFakeBridge()
	b.returns("NeuralDSP_Snapshot", map[string]any{
		"fx_name": "Archetype: Plini", "preset_name": "Clean", "param_count": 2,
		"snapshot": map[string]any{"0": 0.5},
	})
	b.returns("NeuralDSP_RestoreSnapshot", map[string]any{"params_restored": 2})
	tb := newTestToolbox(t, b, nil)
	ctx := context.Background()

	result, err := tb.handleDSPSnapshot(ctx, callTool(map[string]any{"track": 0.0, "fx": 0.0}))
	require.NoError(t, err)
	assert.Equal(t, "Snapshot saved for Archetype: Plini (preset: Clean, 2 params).\n\n"+
		"Snapshot data (use with action='restore'):\n{\"0\":0.5}", resultText(t, result))

	result, err = tb.handleDSPSnapshot(ctx, callTool(map[string]any{"track": 0.0, "fx": 0.0, "action": "restore"}))
	require.NoError(t, err)
	assert.Equal(t, "snapshot_json is required for restore action.", resultText(t, result))

	result, err = tb.handleDSPSnapshot(ctx, callTool(map[string]any{"track": 0.0, "fx": 0.0, "action": "restore", "snapshot_json": "{oops"}))
	require.NoError(t, err)
	assert.Contains(t, resultText(t, result), "Invalid snapshot JSON")
	assert.Empty(t, b.callsTo("NeuralDSP_RestoreSnapshot"))

	result, err = tb.handleDSPSnapshot(ctx, callTool(map[string]any{"track": 0.0, "fx": 0.0, "action": "restore", "snapshot_json": `{"0": 0.5}`}))
	require.NoError(t, err)
	assert.Equal(t, "Restored 2 parameters.", resultText(t, result))
	assert.Equal(t, []any{0, 0, map[string]any{"0": 0.5}}, b.callsTo("NeuralDSP_RestoreSnapshot")[0].args)

	result, err = tb.handleDSPSnapshot(ctx, callTool(map[string]any{"track": 0.0, "fx": 0.0, "action": "compare"}))
	require.NoError(t, err)
	assert.Equal(t, "Unknown action: 'compare'. Use 'save' or 'restore'.", resultText(t, result))
}

func TestNeuralDSPChain(t *testing.T) {
	b := newFakeBridge()
	b.returns("NeuralDSP_GetSignalChain", map[string]any{
		"fx_name": "Archetype: Cory Wong", "fx_enabled": true,
		"blocks": []map[string]any{
			{"idx": 4, "name": "Compressor", "enabled": true},
			{"idx": 9, "name": "Delay", "enabled": false},
		},
	})
	tb := newTestToolbox(t, b, nil)

	result, err := tb.handleDSPChain(context.Background(), callTool(map[string]any{"track": 0.0, "fx": 0.0}))
	require.NoError(t, err)
	assert.Equal(t, "Archetype: Cory Wong [ON]\n\nSignal chain blocks:\n"+
		"  [ON ] Compressor (#4)\n"+
		"  [OFF] Delay (#9)", resultText(t, result))

	b.returns("NeuralDSP_GetSignalChain", map[string]any{"fx_name": "Parallax", "fx_enabled": false})
	result, err = tb.handleDSPChain(context.Background(), callTool(map[string]any{"track": 0.0, "fx": 0.0}))
	require.NoError(t, err)
	assert.Contains(t, resultText(t, result), "Parallax [BYPASSED]\n\nNo bypass/enable parameters detected.")
}

func TestNeuralDSPToggle(t *testing.T) {
	b := newFakeBridge()
	b.returns("NeuralDSP_ToggleBlock", map[string]any{"name": "Reverb", "was_enabled": true, "now_enabled": false})
	tb := newTestToolbox(t, b, nil)

	result, err := tb.handleDSPToggle(context.Background(), callTool(map[string]any{"track": 1.0, "fx": 0.0, "block": "reverb"}))
	require.NoError(t, err)
	assert.Equal(t, "Reverb: ON → OFF", resultText(t, result))

	b.fails("NeuralDSP_ToggleBlock", "No block matching 'flanger'")
	result, err = tb.handleDSPToggle(context.Background(), callTool(map[string]any{"track": 1.0, "fx": 0.0, "block": "flanger"}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Equal(t, "No block matching 'flanger'", resultText(t, result))
}

func TestNeuralDSP_RequiresTrackAndFX(t *testing.T) {
	tb := newTestToolbox(t, newFakeBridge(), nil)

	result, err := tb.handleDSPParams(context.Background(), callTool(map[string]any{"track": 0.0}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
}
