package tools

import (
	"context"
	"fmt"
	"path/filepath"
	"regexp"
	"slices"
	"sort"
	"strings"

	"github.com/Conceptual-Machines/magda-reaper-mcp/agents/arranger"
	"github.com/Conceptual-Machines/magda-reaper-mcp/chart"
	"github.com/Conceptual-Machines/magda-reaper-mcp/midifile"
	"github.com/Conceptual-Machines/magda-reaper-mcp/models"
	"github.com/mark3labs/mcp-go/mcp"
)

const (
	styleGenre         = "genre"
	defaultInstruments = "drums,bass"
)

// backingGenres are the styles the REAPER backing generator knows
var backingGenres = map[string]string{
	"blues":   "12-bar shuffle, swing feel, pentatonic bass lines",
	"country": "Two-beat feel, walking bass, train beat drums",
	"funk":    "Syncopated 16th-note grooves, slap bass, tight hi-hats",
	"jazz":    "Swing ride, walking bass, comping chords, brushes option",
	"latin":   "Bossa nova / samba patterns, syncopated percussion",
	"metal":   "Double kick, palm-muted power chords, aggressive bass",
	"pop":     "Four-on-the-floor kick, simple bass, bright keys",
	"r&b":     "Neo-soul grooves, ghost notes, smooth bass lines",
	"reggae":  "One-drop drums, offbeat skank, dub bass",
	"rock":    "Straight 8th-note feel, driving bass, power chords",
}

var fileNameUnsafe = regexp.MustCompile(`[^A-Za-z0-9]+`)

func availableGenres() []string {
	genres := make([]string, 0, len(backingGenres))
	for g := range backingGenres {
		genres = append(genres, g)
	}
	sort.Strings(genres)
	return genres
}

// lookupGenre picks the genre used for tempo estimation: an explicit
// override wins, otherwise a concrete style name
func lookupGenre(style, genreOverride string) string {
	if genreOverride != "" {
		return genreOverride
	}
	if style != styleGenre {
		return style
	}
	return ""
}

func invalidInstruments(invalid []string) *mcp.CallToolResult {
	return mcp.NewToolResultText(fmt.Sprintf("Invalid instruments: %s. Valid options: %s",
		strings.Join(invalid, ", "), strings.Join(arranger.ValidInstruments, ", ")))
}

func (t *Toolbox) backingTools() []Tool {
	instrumentsArg := mcp.WithString("instruments",
		mcp.Description("Comma-separated instruments (drums, bass, keys, guitar)"),
		mcp.DefaultString(defaultInstruments),
	)
	styleArg := mcp.WithString("style",
		mcp.Description(`Style approach: "genre" (match the song) or a specific genre name`),
		mcp.DefaultString(styleGenre),
	)

	return []Tool{
		{
			Definition: mcp.NewTool("generate_backing_track",
				mcp.WithDescription("Generate MIDI backing tracks from a song's chord chart"),
				mcp.WithString("song", mcp.Required(), mcp.Description("Song title to look up")),
				mcp.WithString("artist", mcp.Required(), mcp.Description("Artist name")),
				instrumentsArg,
				styleArg,
				mcp.WithString("genre_override", mcp.Description("Force a specific genre instead of auto-detecting")),
				mcp.WithNumber("bpm_override", mcp.Description("Force a specific BPM instead of the chart's BPM"), mcp.DefaultNumber(0)),
			),
			Handler:  t.handleGenerateBackingTrack,
			Category: CategoryBacking,
		},
		{
			Definition: mcp.NewTool("regenerate_part",
				mcp.WithDescription("Regenerate a single instrument part with a different style/genre"),
				mcp.WithString("instrument", mcp.Required(), mcp.Description("Instrument to regenerate"), mcp.Enum(arranger.ValidInstruments...)),
				styleArg,
				mcp.WithString("genre_override", mcp.Description("Force a specific genre")),
			),
			Handler:  t.handleRegeneratePart,
			Category: CategoryBacking,
		},
		{
			Definition: mcp.NewTool("list_backing_genres",
				mcp.WithDescription("List all available backing track genres with descriptions"),
			),
			Handler:  t.handleListBackingGenres,
			Category: CategoryBacking,
		},
		{
			Definition: mcp.NewTool("get_song_chart",
				mcp.WithDescription("Fetch and parse a chord chart without generating tracks"),
				mcp.WithString("song", mcp.Required(), mcp.Description("Song title to look up")),
				mcp.WithString("artist", mcp.Required(), mcp.Description("Artist name")),
			),
			Handler:  t.handleGetSongChart,
			Category: CategoryBacking,
		},
		{
			Definition: mcp.NewTool("manual_chart",
				mcp.WithDescription("Generate backing tracks from manually pasted chord text. Use [Section] headers, space separated chords and '.' to repeat the previous chord."),
				mcp.WithString("chord_text", mcp.Required(), mcp.Description("Chord chart text with [Section] headers")),
				mcp.WithString("title", mcp.Description("Song title"), mcp.DefaultString("Untitled")),
				mcp.WithString("artist", mcp.Description("Artist name"), mcp.DefaultString("Unknown")),
				mcp.WithNumber("bpm", mcp.Description("Tempo in BPM"), mcp.DefaultNumber(120)),
				mcp.WithString("key", mcp.Description("Musical key (auto-detected if empty)")),
				instrumentsArg,
				styleArg,
			),
			Handler:  t.handleManualChart,
			Category: CategoryBacking,
		},
		{
			Definition: mcp.NewTool("make_backing_track",
				mcp.WithDescription(`Generate a backing track from a natural language description such as "backing track for Wonderwall by Oasis"`),
				mcp.WithString("description", mcp.Required(), mcp.Description("Natural language request naming a song and artist")),
				instrumentsArg,
				styleArg,
			),
			Handler:  t.handleMakeBackingTrack,
			Category: CategoryBacking,
		},
		{
			Definition: mcp.NewTool("export_backing_midi",
				mcp.WithDescription("Render a backing arrangement to a local .mid file without touching REAPER. Uses chord_text when given, otherwise looks the song up online."),
				mcp.WithString("chord_text", mcp.Description("Chord chart text with [Section] headers")),
				mcp.WithString("song", mcp.Description("Song title (used as the chart title)")),
				mcp.WithString("artist", mcp.Description("Artist name")),
				mcp.WithNumber("bpm", mcp.Description("Tempo in BPM (0 = chart or genre default)"), mcp.DefaultNumber(0)),
				mcp.WithString("key", mcp.Description("Musical key (auto-detected if empty)")),
				mcp.WithString("instruments",
					mcp.Description("Comma-separated instruments (drums, bass, keys, guitar)"),
					mcp.DefaultString(strings.Join(arranger.ValidInstruments, ",")),
				),
				mcp.WithString("genre", mcp.Description("Drum groove genre"), mcp.DefaultString("rock")),
				mcp.WithString("output_path", mcp.Description("Destination .mid path (defaults to the export directory)")),
			),
			Handler:  t.handleExportBackingMIDI,
			Category: CategoryBacking,
		},
	}
}

func (t *Toolbox) handleGenerateBackingTrack(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	song, err := request.RequireString("song")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	artist, err := request.RequireString("artist")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return t.generateBackingTrack(ctx, song, artist,
		request.GetString("instruments", defaultInstruments),
		request.GetString("style", styleGenre),
		request.GetString("genre_override", ""),
		request.GetInt("bpm_override", 0),
	)
}

func (t *Toolbox) generateBackingTrack(ctx context.Context, song, artist, instruments, style, genreOverride string, bpmOverride int) (*mcp.CallToolResult, error) {
	instList, invalid := arranger.ParseInstruments(instruments)
	if len(invalid) > 0 {
		return invalidInstruments(invalid), nil
	}

	c, err := t.songs.LookupSong(ctx, song, artist, bpmOverride, lookupGenre(style, genreOverride))
	if err != nil {
		return mcp.NewToolResultText(fmt.Sprintf(
			"Could not find chord chart for '%s' by %s. Try manual_chart() to paste chords directly.", song, artist)), nil
	}
	if bpmOverride > 0 {
		c.BPM = bpmOverride
	}
	if genreOverride != "" {
		c.Genre = genreOverride
	}

	resp := t.call(ctx, "GenerateBackingTrack", c, instList, style, genreOverride)
	if !resp.OK {
		return failure("Failed to generate backing track", resp), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Backing track generated for '%s' by %s (%s, %d BPM). Tracks: %s",
		song, artist, c.Key, c.BPM, strings.Join(createdTracks(resp.Map(), instList), ", "))), nil
}

// createdTracks reads the track list REAPER reports, defaulting to the request
func createdTracks(ret map[string]any, requested []string) []string {
	raw, ok := ret["tracks"].([]any)
	if !ok {
		return requested
	}
	tracks := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok {
			tracks = append(tracks, s)
		}
	}
	return tracks
}

func (t *Toolbox) handleRegeneratePart(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	instrument, err := request.RequireString("instrument")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	instrument = strings.ToLower(strings.TrimSpace(instrument))
	style := request.GetString("style", styleGenre)
	genreOverride := request.GetString("genre_override", "")

	if !slices.Contains(arranger.ValidInstruments, instrument) {
		return mcp.NewToolResultText(fmt.Sprintf("Invalid instrument: '%s'. Valid options: %s",
			instrument, strings.Join(arranger.ValidInstruments, ", "))), nil
	}
	if genreOverride != "" {
		if _, ok := backingGenres[strings.ToLower(genreOverride)]; !ok {
			return mcp.NewToolResultText(fmt.Sprintf("Unknown genre: '%s'. Available: %s",
				genreOverride, strings.Join(availableGenres(), ", "))), nil
		}
	}

	resp := t.call(ctx, "RegeneratePart", instrument, style, genreOverride)
	if !resp.OK {
		errText := resp.ErrorOr(unknownError)
		lower := strings.ToLower(errText)
		if strings.Contains(lower, "no chart") || strings.Contains(lower, "no backing") {
			return mcp.NewToolResultText("No backing track found in current project. " +
				"Generate a backing track first with generate_backing_track()."), nil
		}
		return mcp.NewToolResultError(fmt.Sprintf("Failed to regenerate %s: %s", instrument, errText)), nil
	}

	newGenre, _ := resp.Map()["genre"].(string)
	if newGenre == "" {
		newGenre = genreOverride
	}
	if newGenre == "" {
		newGenre = style
	}
	return mcp.NewToolResultText(fmt.Sprintf("Regenerated %s part with %s style. Track updated in REAPER.", instrument, newGenre)), nil
}

func (t *Toolbox) handleListBackingGenres(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	lines := []string{"Available backing track genres:", ""}
	for _, genre := range availableGenres() {
		lines = append(lines, fmt.Sprintf("  %s: %s", genre, backingGenres[genre]))
	}
	return mcp.NewToolResultText(strings.Join(lines, "\n")), nil
}

func (t *Toolbox) handleGetSongChart(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	song, err := request.RequireString("song")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	artist, err := request.RequireString("artist")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	c, err := t.songs.LookupSong(ctx, song, artist, 0, "")
	if err != nil {
		return mcp.NewToolResultText(fmt.Sprintf("Could not find chord chart for '%s' by %s.", song, artist)), nil
	}
	return mcp.NewToolResultText(chart.Format(c)), nil
}

func (t *Toolbox) handleManualChart(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	chordText, err := request.RequireString("chord_text")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	title := request.GetString("title", "Untitled")
	style := request.GetString("style", styleGenre)

	instList, invalid := arranger.ParseInstruments(request.GetString("instruments", defaultInstruments))
	if len(invalid) > 0 {
		return invalidInstruments(invalid), nil
	}

	c := chart.ParseChordChart(chordText, chart.Options{
		Title:  title,
		Artist: request.GetString("artist", "Unknown"),
		BPM:    request.GetInt("bpm", 120),
		Key:    request.GetString("key", ""),
	})
	if len(c.Sections) == 0 {
		return mcp.NewToolResultText("No sections found in chord text. Use [SectionName] headers and chord symbols."), nil
	}

	resp := t.call(ctx, "GenerateBackingTrack", c, instList, style, "")
	if !resp.OK {
		return failure("Failed to generate backing track", resp), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Backing track generated from manual chart '%s' (%s, %d BPM). Tracks: %s",
		title, c.Key, c.BPM, strings.Join(createdTracks(resp.Map(), instList), ", "))), nil
}

func (t *Toolbox) handleMakeBackingTrack(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	description, err := request.RequireString("description")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	parsed, ok := t.intent.ResolveBacking(ctx, description)
	if !ok {
		return mcp.NewToolResultText(fmt.Sprintf("Could not parse backing track request: '%s'. Try formats like:\n"+
			"  - 'backing track for Wonderwall by Oasis'\n"+
			"  - 'Hotel California by Eagles'\n"+
			"  - 'jam track for Superstition by Stevie Wonder'", description)), nil
	}

	return t.generateBackingTrack(ctx, parsed.Song, parsed.Artist,
		request.GetString("instruments", defaultInstruments),
		request.GetString("style", styleGenre),
		"", 0,
	)
}

func (t *Toolbox) handleExportBackingMIDI(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	chordText := request.GetString("chord_text", "")
	song := request.GetString("song", "")
	artist := request.GetString("artist", "")
	bpm := request.GetInt("bpm", 0)
	genre := request.GetString("genre", "rock")

	instList, invalid := arranger.ParseInstruments(request.GetString("instruments", strings.Join(arranger.ValidInstruments, ",")))
	if len(invalid) > 0 {
		return invalidInstruments(invalid), nil
	}
	if len(instList) == 0 {
		return mcp.NewToolResultText("No instruments requested."), nil
	}

	var c *models.SongChart
	switch {
	case strings.TrimSpace(chordText) != "":
		title := song
		if title == "" {
			title = "Untitled"
		}
		c = chart.ParseChordChart(chordText, chart.Options{
			Title:  title,
			Artist: artist,
			BPM:    bpm,
			Key:    request.GetString("key", ""),
		})
		if len(c.Sections) == 0 {
			return mcp.NewToolResultText("No sections found in chord text. Use [SectionName] headers and chord symbols."), nil
		}
	case song != "" && artist != "":
		var err error
		c, err = t.songs.LookupSong(ctx, song, artist, bpm, genre)
		if err != nil {
			return mcp.NewToolResultText(fmt.Sprintf("Could not find chord chart for '%s' by %s.", song, artist)), nil
		}
	default:
		return mcp.NewToolResultText("Provide either chord_text or both song and artist."), nil
	}

	parts, err := arranger.ChartToParts(c, instList, genre)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to arrange chart: %v", err)), nil
	}

	path := request.GetString("output_path", "")
	if path == "" {
		path = filepath.Join(t.exportDir, exportFileName(c))
	}
	if err := midifile.WriteFile(path, c, parts); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to export MIDI: %v", err)), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Exported %s (%s, %d BPM, %d bars) to %s. Parts: %s",
		c.Title, c.Key, c.BPM, c.TotalBars(), path, strings.Join(instList, ", "))), nil
}

func exportFileName(c *models.SongChart) string {
	name := strings.Trim(fileNameUnsafe.ReplaceAllString(strings.ToLower(c.Title+" "+c.Artist), "_"), "_")
	if name == "" {
		name = "backing"
	}
	return name + ".mid"
}
