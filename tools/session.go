package tools

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
)

const (
	defaultSampleRate = 48000
	defaultTimeSig    = "4/4"
)

// sessionActions are the action scripts shipped with the session templates
var sessionActions = map[string]string{
	"quick_tune":            "Toggle ReaTune bypass on all DI tracks",
	"reference_ab":          "A/B toggle between mix and reference track",
	"reamp":                 "Create a reamp track from selected DI with Neural DSP",
	"arm_all_di":            "Toggle arm state on all DI tracks",
	"tap_tempo":             "Tap tempo (call twice within 3 seconds)",
	"idea_marker":           "Drop auto-numbered IDEA marker at cursor",
	"bounce_selection":      "Bounce time selection to new track",
	"chapter_marker":        "Drop numbered chapter marker at cursor",
	"tone_snapshot":         "Drop marker with current FX settings",
	"cycle_tone":            "Cycle through tone tracks (A/B/C/D)",
	"playback_rate":         "Cycle playback rate (50/70/80/90/100%)",
	"setlist_marker":        "Drop SONG marker at cursor",
	"arm_next_track":        "Disarm current track, arm next",
	"noise_capture":         "Toggle noise capture mode on vocal tracks",
	"song_structure_marker": "Drop color-coded song structure marker",
	"chord_marker":          "Drop chord marker at cursor",
	"chord_region":          "Create chord region over time selection",
	"session_backup":        "Save timestamped backup of current project",
	"auto_trim_silence":     "Split and trim silence from selected items",
	"toggle_meters":         "Toggle master track metering visibility",
	"add_guitar_od":         "Add a new guitar overdub track",
	"add_vocal":             "Add a new vocal track with FX chain",
	"new_take_folder":       "Switch to next take for comp workflow",
	"cleanup_session":       "Remove empty takes and heal splits",
	"practice_mode":         "Set up practice loop with slowed playback",
	"tone_browser":          "Cycle Neural DSP plugins on selected track",
}

func (t *Toolbox) sessionTools() []Tool {
	types := strings.Join(t.sessions.SessionTypeKeys(), ", ")
	return []Tool{
		{
			Definition: mcp.NewTool("create_session",
				mcp.WithDescription("Create a new REAPER session from a template type"),
				mcp.WithString("session_type", mcp.Required(), mcp.Description("One of: "+types)),
				mcp.WithString("session_name", mcp.Required(), mcp.Description("Name for the session/project")),
				mcp.WithNumber("bpm", mcp.Description("Tempo in BPM"), mcp.DefaultNumber(120)),
				mcp.WithString("time_signature", mcp.Description(`Time signature as "n/d"`), mcp.DefaultString(defaultTimeSig)),
				mcp.WithString("key", mcp.Description(`Musical key (e.g. "Am", "C", "F#m"), optional`)),
				mcp.WithNumber("sample_rate", mcp.Description("Sample rate in Hz"), mcp.DefaultNumber(defaultSampleRate)),
			),
			Handler:  t.handleCreateSession,
			Category: CategorySession,
		},
		{
			Definition: mcp.NewTool("list_session_types",
				mcp.WithDescription("List all available session template types"),
			),
			Handler:  t.handleListSessionTypes,
			Category: CategorySession,
		},
		{
			Definition: mcp.NewTool("get_session_config",
				mcp.WithDescription("Get session template configuration values"),
				mcp.WithString("section",
					mcp.Description("Config section to retrieve"),
					mcp.Enum("all", "session_types", "tascam", "midi", "plugins", "colors", "loudness"),
					mcp.DefaultString("all"),
				),
			),
			Handler:  t.handleGetSessionConfig,
			Category: CategorySession,
		},
		{
			Definition: mcp.NewTool("smart_add_fx",
				mcp.WithDescription("Add an FX plugin with automatic preferred/fallback resolution"),
				mcp.WithNumber("track_index", mcp.Required(), mcp.Description("0-based track index")),
				mcp.WithString("preferred", mcp.Required(), mcp.Description(`Preferred plugin name (e.g. "FabFilter Pro-Q 4")`)),
				mcp.WithString("fallback", mcp.Description(`Fallback plugin name (e.g. "ReaEQ")`)),
				mcp.WithBoolean("bypassed", mcp.Description("Add the plugin in bypassed state"), mcp.DefaultBool(false)),
			),
			Handler:  t.handleSmartAddFX,
			Category: CategorySession,
		},
		{
			Definition: mcp.NewTool("scan_plugins",
				mcp.WithDescription("Scan for installed plugins and report availability"),
			),
			Handler:  t.handleScanPlugins,
			Category: CategorySession,
		},
		{
			Definition: mcp.NewTool("run_session_action",
				mcp.WithDescription("Run a session template action script by name"),
				mcp.WithString("action_name", mcp.Required(), mcp.Description(`Action to run (e.g. "quick_tune", "reference_ab")`)),
			),
			Handler:  t.handleRunSessionAction,
			Category: CategorySession,
		},
		{
			Definition: mcp.NewTool("list_session_actions",
				mcp.WithDescription("List all available session template action scripts"),
			),
			Handler:  t.handleListSessionActions,
			Category: CategorySession,
		},
		{
			Definition: mcp.NewTool("setup_session",
				mcp.WithDescription(`Set up a REAPER session from a natural language description such as "set up for guitar recording"`),
				mcp.WithString("description", mcp.Required(), mcp.Description("What you want to do")),
				mcp.WithString("session_name", mcp.Description("Optional session name (generated when empty)")),
				mcp.WithNumber("bpm", mcp.Description("Tempo in BPM"), mcp.DefaultNumber(120)),
			),
			Handler:  t.handleSetupSession,
			Category: CategorySession,
		},
		{
			Definition: mcp.NewTool("what_sessions_are_available",
				mcp.WithDescription("List all available session types with descriptions"),
			),
			Handler:  t.handleWhatSessionsAreAvailable,
			Category: CategorySession,
		},
	}
}

func (t *Toolbox) handleCreateSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionType, err := request.RequireString("session_type")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	sessionName, err := request.RequireString("session_name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	bpm := request.GetInt("bpm", 120)

	resp := t.call(ctx, "CreateSession",
		sessionType, sessionName, bpm,
		request.GetString("time_signature", defaultTimeSig),
		request.GetString("key", ""),
		request.GetInt("sample_rate", defaultSampleRate),
	)
	if !resp.OK {
		return failure("Failed to create session", resp), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Session '%s' created with template '%s' at %d BPM", sessionName, sessionType, bpm)), nil
}

func (t *Toolbox) handleListSessionTypes(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	resp := t.call(ctx, "GetSessionConfig", "session_types")
	if resp.OK {
		return mcp.NewToolResultText(prettyJSON(resp.Ret)), nil
	}

	lines := []string{"Available session types:"}
	for _, st := range t.sessions.SessionTypes {
		lines = append(lines, fmt.Sprintf("  %s: %s — %s", st.Key, st.Name, st.Description))
	}
	return mcp.NewToolResultText(strings.Join(lines, "\n")), nil
}

func (t *Toolbox) handleGetSessionConfig(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	section := request.GetString("section", "all")

	resp := t.call(ctx, "GetSessionConfig", section)
	if resp.OK {
		return mcp.NewToolResultText(prettyJSON(resp.Ret)), nil
	}

	text, ok := t.sessions.Section(section)
	if !ok {
		return mcp.NewToolResultText(fmt.Sprintf("Unknown section: %s", section)), nil
	}
	return mcp.NewToolResultText(text), nil
}

func (t *Toolbox) handleSmartAddFX(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	trackIndex, err := request.RequireInt("track_index")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	preferred, err := request.RequireString("preferred")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	bypassed := request.GetBool("bypassed", false)

	resp := t.call(ctx, "SmartAddFX", trackIndex, preferred, request.GetString("fallback", ""), bypassed)
	if !resp.OK {
		return failure("Failed to add FX", resp), nil
	}

	var ret struct {
		Plugin string `json:"plugin"`
	}
	_ = resp.Decode(&ret)
	plugin := ret.Plugin
	if plugin == "" {
		plugin = preferred
	}

	text := fmt.Sprintf("Added '%s' to track %d", plugin, trackIndex)
	if bypassed {
		text += " (bypassed)"
	}
	return mcp.NewToolResultText(text), nil
}

func (t *Toolbox) handleScanPlugins(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	resp := t.call(ctx, "ScanPlugins")
	if !resp.OK {
		return failure("Failed to scan plugins", resp), nil
	}
	return mcp.NewToolResultText(prettyJSON(resp.Ret)), nil
}

func (t *Toolbox) handleRunSessionAction(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	actionName, err := request.RequireString("action_name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	description, ok := sessionActions[actionName]
	if !ok {
		lines := []string{fmt.Sprintf("Unknown action: '%s'", actionName), "", "Available actions:"}
		lines = append(lines, actionLines()...)
		return mcp.NewToolResultText(strings.Join(lines, "\n")), nil
	}

	resp := t.call(ctx, "RunSessionAction", actionName)
	if !resp.OK {
		return failure("Action failed", resp), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Action '%s' executed: %s", actionName, description)), nil
}

func (t *Toolbox) handleListSessionActions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	lines := append([]string{"Available session actions:", ""}, actionLines()...)
	return mcp.NewToolResultText(strings.Join(lines, "\n")), nil
}

func actionLines() []string {
	names := make([]string, 0, len(sessionActions))
	for name := range sessionActions {
		names = append(names, name)
	}
	sort.Strings(names)

	lines := make([]string, 0, len(names))
	for _, name := range names {
		lines = append(lines, fmt.Sprintf("  %s: %s", name, sessionActions[name]))
	}
	return lines
}

func (t *Toolbox) handleSetupSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	description, err := request.RequireString("description")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	bpm := request.GetInt("bpm", 120)

	sessionType, ok := t.intent.ResolveSession(ctx, description, t.sessions.SessionTypeKeys())
	if !ok {
		lines := []string{fmt.Sprintf("Could not determine session type from: '%s'", description), "", "Available types:"}
		for _, st := range t.sessions.SessionTypes {
			lines = append(lines, fmt.Sprintf("  %s: %s — %s", st.Key, st.Name, st.Description))
		}
		return mcp.NewToolResultText(strings.Join(lines, "\n")), nil
	}

	typeName := sessionType
	if st, found := t.sessions.SessionType(sessionType); found {
		typeName = st.Name
	}

	sessionName := request.GetString("session_name", "")
	if sessionName == "" {
		sessionName = fmt.Sprintf("%s %s", typeName, time.Now().Format("2006-01-02 1504"))
	}

	resp := t.call(ctx, "CreateSession", sessionType, sessionName, bpm, defaultTimeSig, "", defaultSampleRate)
	if !resp.OK {
		return mcp.NewToolResultText(fmt.Sprintf("Failed: %s", resp.ErrorOr(unknownError))), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Session '%s' created (%s) at %d BPM", sessionName, typeName, bpm)), nil
}

func (t *Toolbox) handleWhatSessionsAreAvailable(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	lines := []string{"Available session templates:", ""}
	for _, st := range t.sessions.SessionTypes {
		lines = append(lines,
			fmt.Sprintf("  %s: %s", st.Key, st.Name),
			fmt.Sprintf("    %s", st.Description),
			"",
		)
	}
	return mcp.NewToolResultText(strings.Join(lines, "\n")), nil
}
