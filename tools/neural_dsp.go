package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
)

type dspPlugin struct {
	TrackIdx  int    `json:"track_idx"`
	TrackName string `json:"track_name"`
	FXIdx     int    `json:"fx_idx"`
	FXName    string `json:"fx_name"`
	Enabled   bool   `json:"enabled"`
}

type dspParam struct {
	Idx        int     `json:"idx"`
	Name       string  `json:"name"`
	Value      float64 `json:"value"`
	Min        float64 `json:"min"`
	Max        float64 `json:"max"`
	MatchScore int     `json:"match_score"`
	OldValue   float64 `json:"old_value"`
	NewValue   float64 `json:"new_value"`
}

type dspBlock struct {
	Idx     int    `json:"idx"`
	Name    string `json:"name"`
	Enabled bool   `json:"enabled"`
}

// dspReply covers every NeuralDSP_* return shape; unused fields stay zero
type dspReply struct {
	FXName         string          `json:"fx_name"`
	FXEnabled      bool            `json:"fx_enabled"`
	PresetName     string          `json:"preset_name"`
	ParamCount     int             `json:"param_count"`
	Params         []dspParam      `json:"params"`
	Blocks         []dspBlock      `json:"blocks"`
	Snapshot       json.RawMessage `json:"snapshot"`
	ParamsRestored int             `json:"params_restored"`
	Name           string          `json:"name"`
	WasEnabled     bool            `json:"was_enabled"`
	NowEnabled     bool            `json:"now_enabled"`
}

func onOff(enabled bool, off string) string {
	if enabled {
		return "ON"
	}
	return off
}

func trackFXTool(name, description string, extra ...mcp.ToolOption) mcp.Tool {
	opts := []mcp.ToolOption{
		mcp.WithDescription(description),
		mcp.WithNumber("track", mcp.Required(), mcp.Description("Track index (0-based)")),
		mcp.WithNumber("fx", mcp.Required(), mcp.Description("FX index on the track (0-based)")),
	}
	return mcp.NewTool(name, append(opts, extra...)...)
}

func trackFX(request mcp.CallToolRequest) (int, int, error) {
	track, err := request.RequireInt("track")
	if err != nil {
		return 0, 0, err
	}
	fx, err := request.RequireInt("fx")
	if err != nil {
		return 0, 0, err
	}
	return track, fx, nil
}

// dspCall runs a NeuralDSP bridge function and decodes its reply
func (t *Toolbox) dspCall(ctx context.Context, fn string, args ...any) (*dspReply, *mcp.CallToolResult) {
	resp := t.call(ctx, fn, args...)
	if !resp.OK {
		return nil, mcp.NewToolResultError(resp.ErrorOr(unknownError))
	}
	var reply dspReply
	if err := resp.Decode(&reply); err != nil {
		return nil, mcp.NewToolResultError(err.Error())
	}
	return &reply, nil
}

func (t *Toolbox) neuralDSPTools() []Tool {
	return []Tool{
		{
			Definition: mcp.NewTool("neural_dsp_find",
				mcp.WithDescription("Find all Neural DSP plugins loaded in the current REAPER session. "+
					"Scans all tracks for Neural DSP plugins (Archetype, Darkglass, Parallax, Soldano, etc.) "+
					"and returns their locations and status."),
			),
			Handler:  t.handleDSPFind,
			Category: CategoryNeuralDSP,
		},
		{
			Definition: trackFXTool("neural_dsp_params", "List all parameters for a Neural DSP plugin instance."),
			Handler:    t.handleDSPParams,
			Category:   CategoryNeuralDSP,
		},
		{
			Definition: trackFXTool("neural_dsp_get", "Get a Neural DSP plugin parameter value by name (fuzzy match).",
				mcp.WithString("param", mcp.Required(), mcp.Description(`Parameter name to search for (e.g. "gain", "bass", "treble")`)),
			),
			Handler:  t.handleDSPGet,
			Category: CategoryNeuralDSP,
		},
		{
			Definition: trackFXTool("neural_dsp_set", "Set a Neural DSP plugin parameter by name (fuzzy match).",
				mcp.WithString("param", mcp.Required(), mcp.Description(`Parameter name to search for (e.g. "gain", "bass", "treble")`)),
				mcp.WithNumber("value", mcp.Required(), mcp.Description("New value (0.0-1.0 normalized range)")),
			),
			Handler:  t.handleDSPSet,
			Category: CategoryNeuralDSP,
		},
		{
			Definition: trackFXTool("neural_dsp_preset", "Get or switch Neural DSP plugin presets.",
				mcp.WithString("preset", mcp.Description("Preset name to switch to (leave empty to get the current preset)")),
			),
			Handler:  t.handleDSPPreset,
			Category: CategoryNeuralDSP,
		},
		{
			Definition: trackFXTool("neural_dsp_snapshot", "Save or restore a full parameter snapshot for A/B comparison.",
				mcp.WithString("action", mcp.Description(`"save" to capture the current state, "restore" to apply a saved snapshot`), mcp.DefaultString("save")),
				mcp.WithString("snapshot_json", mcp.Description("JSON snapshot data (required for restore)")),
			),
			Handler:  t.handleDSPSnapshot,
			Category: CategoryNeuralDSP,
		},
		{
			Definition: trackFXTool("neural_dsp_chain", "Show the signal chain state of a Neural DSP plugin. "+
				"Lists which blocks (stomp, amp, cab, effects) are enabled or bypassed."),
			Handler:  t.handleDSPChain,
			Category: CategoryNeuralDSP,
		},
		{
			Definition: trackFXTool("neural_dsp_toggle", "Toggle a signal chain block on/off in a Neural DSP plugin. "+
				`Use "plugin" or "fx" to toggle the overall plugin bypass.`,
				mcp.WithString("block", mcp.Required(), mcp.Description(`Block name to toggle (e.g. "gate", "delay", "reverb"), or "plugin"/"fx" for overall bypass`)),
			),
			Handler:  t.handleDSPToggle,
			Category: CategoryNeuralDSP,
		},
	}
}

func (t *Toolbox) handleDSPFind(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	resp := t.call(ctx, "NeuralDSP_FindPlugins")
	if !resp.OK {
		return failure("Failed to scan for plugins", resp), nil
	}

	var plugins []dspPlugin
	if err := resp.Decode(&plugins); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(plugins) == 0 {
		return mcp.NewToolResultText("No Neural DSP plugins found in the current session."), nil
	}

	lines := []string{fmt.Sprintf("Found %d Neural DSP plugin(s):\n", len(plugins))}
	for _, p := range plugins {
		lines = append(lines, fmt.Sprintf("  Track %d (%s) → FX %d: %s [%s]",
			p.TrackIdx, p.TrackName, p.FXIdx, p.FXName, onOff(p.Enabled, "BYPASSED")))
	}
	return mcp.NewToolResultText(strings.Join(lines, "\n")), nil
}

func (t *Toolbox) handleDSPParams(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	track, fx, err := trackFX(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	reply, fail := t.dspCall(ctx, "NeuralDSP_GetParams", track, fx)
	if fail != nil {
		return fail, nil
	}

	lines := []string{fmt.Sprintf("%s — %d parameters:\n", reply.FXName, reply.ParamCount)}
	for _, p := range reply.Params {
		lines = append(lines, fmt.Sprintf("  [%3d] %s: %.4f (range %.2f–%.2f)", p.Idx, p.Name, p.Value, p.Min, p.Max))
	}
	return mcp.NewToolResultText(strings.Join(lines, "\n")), nil
}

func (t *Toolbox) handleDSPGet(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	track, fx, err := trackFX(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	param, err := request.RequireString("param")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	resp := t.call(ctx, "NeuralDSP_GetParamByName", track, fx, param)
	if !resp.OK {
		return mcp.NewToolResultError(resp.ErrorOr(unknownError)), nil
	}
	var p dspParam
	if err := resp.Decode(&p); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("%s (#%d): %.4f (range %.2f–%.2f, match: %d%%)",
		p.Name, p.Idx, p.Value, p.Min, p.Max, p.MatchScore)), nil
}

func (t *Toolbox) handleDSPSet(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	track, fx, err := trackFX(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	param, err := request.RequireString("param")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	value, err := request.RequireFloat("value")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	resp := t.call(ctx, "NeuralDSP_SetParamByName", track, fx, param, value)
	if !resp.OK {
		return mcp.NewToolResultError(resp.ErrorOr(unknownError)), nil
	}
	var p dspParam
	if err := resp.Decode(&p); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("%s (#%d): %.4f → %.4f (match: %d%%)",
		p.Name, p.Idx, p.OldValue, p.NewValue, p.MatchScore)), nil
}

func (t *Toolbox) handleDSPPreset(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	track, fx, err := trackFX(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if preset := request.GetString("preset", ""); preset != "" {
		reply, fail := t.dspCall(ctx, "NeuralDSP_SetPreset", track, fx, preset)
		if fail != nil {
			return fail, nil
		}
		return mcp.NewToolResultText("Switched to preset: " + reply.PresetName), nil
	}

	reply, fail := t.dspCall(ctx, "NeuralDSP_GetPreset", track, fx)
	if fail != nil {
		return fail, nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("%s — Current preset: %s", reply.FXName, reply.PresetName)), nil
}

func (t *Toolbox) handleDSPSnapshot(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	track, fx, err := trackFX(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	switch action := request.GetString("action", "save"); action {
	case "save":
		reply, fail := t.dspCall(ctx, "NeuralDSP_Snapshot", track, fx)
		if fail != nil {
			return fail, nil
		}
		snapshot := string(reply.Snapshot)
		if snapshot == "" {
			snapshot = "null"
		}
		return mcp.NewToolResultText(fmt.Sprintf(
			"Snapshot saved for %s (preset: %s, %d params).\n\nSnapshot data (use with action='restore'):\n%s",
			reply.FXName, reply.PresetName, reply.ParamCount, snapshot)), nil

	case "restore":
		raw := request.GetString("snapshot_json", "")
		if raw == "" {
			return mcp.NewToolResultText("snapshot_json is required for restore action."), nil
		}
		var snapshot any
		if err := json.Unmarshal([]byte(raw), &snapshot); err != nil {
			return mcp.NewToolResultText(fmt.Sprintf("Invalid snapshot JSON: %v", err)), nil
		}
		reply, fail := t.dspCall(ctx, "NeuralDSP_RestoreSnapshot", track, fx, snapshot)
		if fail != nil {
			return fail, nil
		}
		return mcp.NewToolResultText(fmt.Sprintf("Restored %d parameters.", reply.ParamsRestored)), nil

	default:
		return mcp.NewToolResultText(fmt.Sprintf("Unknown action: '%s'. Use 'save' or 'restore'.", action)), nil
	}
}

func (t *Toolbox) handleDSPChain(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	track, fx, err := trackFX(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	reply, fail := t.dspCall(ctx, "NeuralDSP_GetSignalChain", track, fx)
	if fail != nil {
		return fail, nil
	}

	lines := []string{fmt.Sprintf("%s [%s]\n", reply.FXName, onOff(reply.FXEnabled, "BYPASSED"))}
	if len(reply.Blocks) == 0 {
		lines = append(lines, "No bypass/enable parameters detected. Use neural_dsp_params to see all parameters.")
	} else {
		lines = append(lines, "Signal chain blocks:")
		for _, b := range reply.Blocks {
			lines = append(lines, fmt.Sprintf("  [%-3s] %s (#%d)", onOff(b.Enabled, "OFF"), b.Name, b.Idx))
		}
	}
	return mcp.NewToolResultText(strings.Join(lines, "\n")), nil
}

func (t *Toolbox) handleDSPToggle(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	track, fx, err := trackFX(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	block, err := request.RequireString("block")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	reply, fail := t.dspCall(ctx, "NeuralDSP_ToggleBlock", track, fx, block)
	if fail != nil {
		return fail, nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("%s: %s → %s",
		reply.Name, onOff(reply.WasEnabled, "OFF"), onOff(reply.NowEnabled, "OFF"))), nil
}
