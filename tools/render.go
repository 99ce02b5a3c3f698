package tools

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
)

// REAPER action IDs
const (
	actionRenderProject   = 41824
	actionRenderSelection = 41825
	actionSelectAllTracks = 40296
)

// Render bounds for RENDER_BOUNDSFLAG
const (
	boundsEntireProject = 0.0
	boundsTimeSelection = 2.0
)

var renderFormats = []string{"wav", "mp3", "flac"}

var socialDurations = []int{15, 30, 60, 90}

func toPath(path string) string {
	if path == "" {
		return ""
	}
	return " to " + path
}

func (t *Toolbox) setProjectInfo(ctx context.Context, key string, value float64) {
	t.call(ctx, "GetSetProjectInfo", 0, key, value, true)
}

func (t *Toolbox) setRenderPath(ctx context.Context, path string) {
	if path != "" {
		t.call(ctx, "GetSetProjectInfo_String", 0, "RENDER_FILE", path, true)
	}
}

func (t *Toolbox) renderTools() []Tool {
	return []Tool{
		{
			Definition: mcp.NewTool("render_mix",
				mcp.WithDescription("Render the full mix to a file. Supports wav, mp3, flac. "+
					"Use for final mixdown or creating master files."),
				mcp.WithString("format", mcp.Description("Output format"), mcp.Enum(renderFormats...), mcp.DefaultString("wav")),
				mcp.WithString("path", mcp.Description("Output directory path (uses the project directory if omitted)")),
				mcp.WithNumber("sample_rate", mcp.Description("Sample rate in Hz"), mcp.DefaultNumber(48000)),
				mcp.WithNumber("bit_depth", mcp.Description("Bit depth: 16, 24, or 32"), mcp.DefaultNumber(24)),
			),
			Handler:  t.handleRenderMix,
			Category: CategoryRender,
		},
		{
			Definition: mcp.NewTool("render_stems",
				mcp.WithDescription("Render individual stems per track/bus as separate files. "+
					"Use for collaboration, remixing, or delivering stems to clients."),
				mcp.WithString("path", mcp.Description("Output directory for stem files")),
				mcp.WithString("format", mcp.Description("Output format"), mcp.DefaultString("wav")),
			),
			Handler:  t.handleRenderStems,
			Category: CategoryRender,
		},
		{
			Definition: mcp.NewTool("render_selection",
				mcp.WithDescription("Render a specific time range (start to end in seconds) to file. "+
					"Use for exporting sections, loops, or specific parts."),
				mcp.WithNumber("start", mcp.Required(), mcp.Description("Start time in seconds")),
				mcp.WithNumber("end", mcp.Required(), mcp.Description("End time in seconds")),
				mcp.WithString("path", mcp.Description("Output path")),
				mcp.WithString("format", mcp.Description("Output format: wav, mp3, or flac"), mcp.DefaultString("wav")),
			),
			Handler:  t.handleRenderSelection,
			Category: CategoryRender,
		},
		{
			Definition: mcp.NewTool("social_clip",
				mcp.WithDescription("Export a short clip (30s/60s) optimized for social media. "+
					"Creates MP3 at 44.1kHz with fade-out. "+
					"Use for Instagram, TikTok, or YouTube Shorts previews."),
				mcp.WithNumber("duration", mcp.Description("Clip duration in seconds (15, 30, 60 or 90)"), mcp.DefaultNumber(30)),
				mcp.WithString("path", mcp.Description("Output path for the clip")),
				mcp.WithString("format", mcp.Description("Output format"), mcp.DefaultString("mp3")),
				mcp.WithNumber("start_time", mcp.Description("Start position in seconds (default: project start)")),
				mcp.WithBoolean("normalize", mcp.Description("Normalize the output"), mcp.DefaultBool(true)),
				mcp.WithNumber("fade_out", mcp.Description("Fade-out duration in seconds"), mcp.DefaultNumber(1.0)),
			),
			Handler:  t.handleSocialClip,
			Category: CategoryRender,
		},
	}
}

func (t *Toolbox) handleRenderMix(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	format := request.GetString("format", "wav")
	path := request.GetString("path", "")
	sampleRate := request.GetInt("sample_rate", 48000)
	bitDepth := request.GetInt("bit_depth", 24)

	fmtLower := strings.ToLower(format)
	if !slices.Contains(renderFormats, fmtLower) {
		return mcp.NewToolResultText(fmt.Sprintf("Unsupported format '%s'. Use wav, mp3, or flac.", format)), nil
	}

	t.setRenderPath(ctx, path)
	t.setProjectInfo(ctx, "RENDER_BOUNDSFLAG", boundsEntireProject)
	t.setProjectInfo(ctx, "RENDER_SRATE", float64(sampleRate))

	resp := t.call(ctx, "Main_OnCommand", actionRenderProject, 0)
	if !resp.OK {
		return failure("Failed to render mix", resp), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Rendered full mix as %s (%dHz, %d-bit)%s",
		strings.ToUpper(fmtLower), sampleRate, bitDepth, toPath(path))), nil
}

func (t *Toolbox) handleRenderStems(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path := request.GetString("path", "")
	format := request.GetString("format", "wav")

	t.setRenderPath(ctx, path)
	t.setProjectInfo(ctx, "RENDER_BOUNDSFLAG", boundsEntireProject)
	t.call(ctx, "Main_OnCommand", actionSelectAllTracks, 0)

	resp := t.call(ctx, "Main_OnCommand", actionRenderProject, 0)
	if !resp.OK {
		return failure("Failed to render stems", resp), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Rendered stems as %s%s", strings.ToUpper(format), toPath(path))), nil
}

func (t *Toolbox) handleRenderSelection(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	start, err := request.RequireFloat("start")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	end, err := request.RequireFloat("end")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	path := request.GetString("path", "")
	format := request.GetString("format", "wav")

	if end <= start {
		return mcp.NewToolResultText("Error: end time must be greater than start time"), nil
	}

	t.call(ctx, "GetSet_LoopTimeRange", true, false, start, end, false)
	t.setProjectInfo(ctx, "RENDER_BOUNDSFLAG", boundsTimeSelection)
	t.setRenderPath(ctx, path)

	resp := t.call(ctx, "Main_OnCommand", actionRenderSelection, 0)
	if !resp.OK {
		return failure("Failed to render selection", resp), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Rendered selection (%.1fs - %.1fs, %.1fs) as %s%s",
		start, end, end-start, strings.ToUpper(format), toPath(path))), nil
}

func (t *Toolbox) handleSocialClip(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	duration := request.GetInt("duration", 30)
	path := request.GetString("path", "")
	format := request.GetString("format", "mp3")
	fadeOut := request.GetFloat("fade_out", 1.0)

	if !slices.Contains(socialDurations, duration) {
		return mcp.NewToolResultText(fmt.Sprintf("Warning: non-standard duration %ds. Common values: 15, 30, 60, 90.", duration)), nil
	}

	clipStart, _ := optionalNumber(request, "start_time")
	clipEnd := clipStart + float64(duration)

	t.call(ctx, "GetSet_LoopTimeRange", true, false, clipStart, clipEnd, false)
	t.setProjectInfo(ctx, "RENDER_BOUNDSFLAG", boundsTimeSelection)
	if fadeOut > 0 {
		t.setProjectInfo(ctx, "RENDER_TAILMS", fadeOut*1000)
	}
	t.setRenderPath(ctx, path)
	t.setProjectInfo(ctx, "RENDER_SRATE", 44100.0)

	resp := t.call(ctx, "Main_OnCommand", actionRenderSelection, 0)
	if !resp.OK {
		return failure("Failed to export social clip", resp), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Exported %ds social media clip (%.1fs - %.1fs) as %s, 44.1kHz, fade-out=%ss%s",
		duration, clipStart, clipEnd, strings.ToUpper(format),
		decimal(fadeOut), toPath(path))), nil
}

// decimal prints the shortest form of f that keeps a fractional part
func decimal(f float64) string {
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}
