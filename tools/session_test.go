package tools

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadSessionConfig(t *testing.T) {
	cfg, err := LoadSessionConfig()
	require.NoError(t, err)

	assert.Equal(t, []string{"guitar", "production", "songwriting", "jam", "podcast", "mixing", "tone", "live", "transcription"},
		cfg.SessionTypeKeys())

	guitar, ok := cfg.SessionType("guitar")
	require.True(t, ok)
	assert.Equal(t, "Guitar Recording", guitar.Name)
	require.NotNil(t, guitar.Grid)
	assert.Equal(t, 0.25, *guitar.Grid)
	assert.True(t, guitar.UseFolders)

	podcast, ok := cfg.SessionType("podcast")
	require.True(t, ok)
	assert.Nil(t, podcast.Grid)

	_, ok = cfg.SessionType("karaoke")
	assert.False(t, ok)

	assert.Equal(t, -14, cfg.Loudness["spotify"])
}

func TestParseSessionConfig_Errors(t *testing.T) {
	_, err := ParseSessionConfig([]byte("session_types: [\n"))
	assert.Error(t, err)

	_, err = ParseSessionConfig([]byte("loudness:\n  spotify: -14\n"))
	assert.ErrorContains(t, err, "no session types")
}

func TestSessionConfig_Section(t *testing.T) {
	cfg, err := LoadSessionConfig()
	require.NoError(t, err)

	text, ok := cfg.Section("loudness")
	require.True(t, ok)
	assert.Contains(t, text, "spotify: -14")

	text, ok = cfg.Section("all")
	require.True(t, ok)
	assert.Contains(t, text, "session_types:")

	_, ok = cfg.Section("routing")
	assert.False(t, ok)
}

func TestCreateSession(t *testing.T) {
	b := newFakeBridge()
	tb := newTestToolbox(t, b, nil)

	result, err := tb.handleCreateSession(context.Background(), callTool(map[string]any{
		"session_type": "guitar", "session_name": "Riffs", "bpm": 140.0, "key": "Em",
	}))
	require.NoError(t, err)
	assert.Equal(t, "Session 'Riffs' created with template 'guitar' at 140 BPM", resultText(t, result))
	assert.Equal(t, []any{"guitar", "Riffs", 140, "4/4", "Em", 48000}, b.callsTo("CreateSession")[0].args)

	b.fails("CreateSession", "Unknown session type")
	result, err = tb.handleCreateSession(context.Background(), callTool(map[string]any{
		"session_type": "karaoke", "session_name": "x",
	}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Equal(t, "Failed to create session: Unknown session type", resultText(t, result))
}

func TestListSessionTypes_FallsBackToEmbeddedConfig(t *testing.T) {
	b := newFakeBridge()
	b.fails("GetSessionConfig", "bridge offline")
	tb := newTestToolbox(t, b, nil)

	result, err := tb.handleListSessionTypes(context.Background(), callTool(nil))
	require.NoError(t, err)
	text := resultText(t, result)
	assert.Contains(t, text, "Available session types:\n  guitar: Guitar Recording — DI + QC + Neural DSP")
	assert.Contains(t, text, "  podcast: Podcast / Voiceover — ")

	b.returns("GetSessionConfig", map[string]any{"guitar": "Guitar Recording"})
	result, err = tb.handleListSessionTypes(context.Background(), callTool(nil))
	require.NoError(t, err)
	assert.Equal(t, "{\n  \"guitar\": \"Guitar Recording\"\n}", resultText(t, result))
}

func TestGetSessionConfig_UnknownSection(t *testing.T) {
	b := newFakeBridge()
	b.fails("GetSessionConfig", "bridge offline")
	tb := newTestToolbox(t, b, nil)

	result, err := tb.handleGetSessionConfig(context.Background(), callTool(map[string]any{"section": "routing"}))
	require.NoError(t, err)
	assert.Equal(t, "Unknown section: routing", resultText(t, result))
}

func TestSmartAddFX(t *testing.T) {
	b := newFakeBridge()
	b.returns("SmartAddFX", map[string]any{"plugin": "ReaComp"})
	tb := newTestToolbox(t, b, nil)

	result, err := tb.handleSmartAddFX(context.Background(), callTool(map[string]any{
		"track_index": 2.0, "preferred": "FabFilter Pro-C 2", "fallback": "ReaComp", "bypassed": true,
	}))
	require.NoError(t, err)
	assert.Equal(t, "Added 'ReaComp' to track 2 (bypassed)", resultText(t, result))
	assert.Equal(t, []any{2, "FabFilter Pro-C 2", "ReaComp", true}, b.callsTo("SmartAddFX")[0].args)
}

func TestRunSessionAction(t *testing.T) {
	b := newFakeBridge()
	tb := newTestToolbox(t, b, nil)

	result, err := tb.handleRunSessionAction(context.Background(), callTool(map[string]any{"action_name": "tap_tempo"}))
	require.NoError(t, err)
	assert.Equal(t, "Action 'tap_tempo' executed: Tap tempo (call twice within 3 seconds)", resultText(t, result))

	result, err = tb.handleRunSessionAction(context.Background(), callTool(map[string]any{"action_name": "self_destruct"}))
	require.NoError(t, err)
	text := resultText(t, result)
	assert.Contains(t, text, "Unknown action: 'self_destruct'\n\nAvailable actions:\n")
	assert.Contains(t, text, "  quick_tune: Toggle ReaTune bypass on all DI tracks")
	assert.Len(t, b.callsTo("RunSessionAction"), 1)
}

func TestSetupSession(t *testing.T) {
	b := newFakeBridge()
	tb := newTestToolbox(t, b, nil)

	result, err := tb.handleSetupSession(context.Background(), callTool(map[string]any{
		"description": "recording a podcast interview", "session_name": "Episode 12", "bpm": 100.0,
	}))
	require.NoError(t, err)
	assert.Equal(t, "Session 'Episode 12' created (Podcast / Voiceover) at 100 BPM", resultText(t, result))
	assert.Equal(t, []any{"podcast", "Episode 12", 100, "4/4", "", 48000}, b.callsTo("CreateSession")[0].args)

	result, err = tb.handleSetupSession(context.Background(), callTool(map[string]any{"description": "bake a cake"}))
	require.NoError(t, err)
	assert.Contains(t, resultText(t, result), "Could not determine session type from: 'bake a cake'")
	assert.Len(t, b.callsTo("CreateSession"), 1)
}

func TestSetupSession_DefaultName(t *testing.T) {
	b := newFakeBridge()
	tb := newTestToolbox(t, b, nil)

	_, err := tb.handleSetupSession(context.Background(), callTool(map[string]any{"description": "jam"}))
	require.NoError(t, err)

	name, ok := b.callsTo("CreateSession")[0].args[1].(string)
	require.True(t, ok)
	assert.Regexp(t, `^Jam / Loop \d{4}-\d{2}-\d{2} \d{4}$`, name)
}
