package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/Conceptual-Machines/magda-reaper-mcp/bridge"
	"github.com/mark3labs/mcp-go/mcp"
)

type templateSection struct {
	name string
	bars int
}

type arrangementTemplate struct {
	key      string
	name     string
	sections []templateSection
}

// arrangementTemplates are 4/4 song forms, in listing order
var arrangementTemplates = []arrangementTemplate{
	{"pop", "Pop", []templateSection{
		{"Intro", 4}, {"Verse 1", 8}, {"Pre-Chorus", 4}, {"Chorus", 8}, {"Verse 2", 8},
		{"Pre-Chorus", 4}, {"Chorus", 8}, {"Bridge", 8}, {"Chorus", 8}, {"Outro", 4},
	}},
	{"rock", "Rock", []templateSection{
		{"Intro", 4}, {"Verse 1", 8}, {"Chorus", 8}, {"Verse 2", 8}, {"Chorus", 8},
		{"Solo", 8}, {"Chorus", 8}, {"Outro", 8},
	}},
	{"blues", "Blues (12-Bar)", []templateSection{
		{"Intro", 4}, {"Verse 1", 12}, {"Verse 2", 12}, {"Solo", 12}, {"Verse 3", 12},
		{"Outro/Turnaround", 4},
	}},
	{"jazz", "Jazz (AABA)", []templateSection{
		{"Intro", 4}, {"A Section", 8}, {"A Section (repeat)", 8}, {"B Section (Bridge)", 8},
		{"A Section (final)", 8}, {"Solo over A", 8}, {"Solo over A", 8}, {"Solo over B", 8},
		{"Solo over A", 8}, {"Head Out A", 8}, {"Head Out A", 8}, {"Head Out B", 8},
		{"Head Out A", 8}, {"Outro/Tag", 4},
	}},
	{"country", "Country", []templateSection{
		{"Intro", 4}, {"Verse 1", 8}, {"Verse 2", 8}, {"Chorus", 8}, {"Verse 3", 8},
		{"Chorus", 8}, {"Bridge", 8}, {"Chorus", 8}, {"Outro", 4},
	}},
	{"metal", "Metal", []templateSection{
		{"Intro/Riff", 8}, {"Verse 1", 8}, {"Pre-Chorus", 4}, {"Chorus", 8}, {"Verse 2", 8},
		{"Pre-Chorus", 4}, {"Chorus", 8}, {"Breakdown", 8}, {"Solo", 8}, {"Chorus", 8},
		{"Outro", 8},
	}},
	{"funk", "Funk", []templateSection{
		{"Intro/Groove", 4}, {"Verse 1", 8}, {"Chorus", 8}, {"Verse 2", 8}, {"Chorus", 8},
		{"Bridge/Breakdown", 8}, {"Chorus", 8}, {"Outro/Jam", 8},
	}},
	{"edm", "EDM", []templateSection{
		{"Intro", 8}, {"Build-Up", 8}, {"Drop", 16}, {"Break", 8}, {"Build-Up 2", 8},
		{"Drop 2", 16}, {"Outro", 8},
	}},
	{"hiphop", "Hip-Hop", []templateSection{
		{"Intro", 4}, {"Verse 1", 16}, {"Hook", 8}, {"Verse 2", 16}, {"Hook", 8},
		{"Bridge", 8}, {"Verse 3", 16}, {"Hook", 8}, {"Outro", 4},
	}},
	{"r&b", "R&B", []templateSection{
		{"Intro", 4}, {"Verse 1", 8}, {"Pre-Chorus", 4}, {"Chorus", 8}, {"Verse 2", 8},
		{"Pre-Chorus", 4}, {"Chorus", 8}, {"Bridge", 8}, {"Chorus", 8}, {"Outro", 4},
	}},
	{"reggae", "Reggae", []templateSection{
		{"Intro", 4}, {"Verse 1", 8}, {"Chorus", 8}, {"Verse 2", 8}, {"Chorus", 8},
		{"Bridge", 8}, {"Chorus", 8}, {"Outro/Dub", 8},
	}},
	{"latin", "Latin", []templateSection{
		{"Intro", 4}, {"Verse 1", 8}, {"Chorus", 8}, {"Verse 2", 8}, {"Chorus", 8},
		{"Instrumental", 8}, {"Chorus", 8}, {"Montuno/Outro", 16},
	}},
	{"singer-songwriter", "Singer-Songwriter", []templateSection{
		{"Intro", 4}, {"Verse 1", 8}, {"Verse 2", 8}, {"Chorus", 8}, {"Verse 3", 8},
		{"Chorus", 8}, {"Bridge", 8}, {"Chorus", 8}, {"Outro", 4},
	}},
	{"podcast", "Podcast", []templateSection{
		{"Intro Music", 4}, {"Welcome/Topic Intro", 8}, {"Segment 1", 32}, {"Transition", 2},
		{"Segment 2", 32}, {"Transition", 2}, {"Segment 3", 32}, {"Wrap-Up", 8},
		{"Outro Music", 4},
	}},
}

type sectionColor struct {
	keyword string
	color   int
}

// sectionColors use REAPER's native 0x01BBGGRR format. The first keyword
// contained in a section name wins.
var sectionColors = []sectionColor{
	{"intro", 0x0100FF80},
	{"verse", 0x01FF8000},
	{"pre-chorus", 0x0100CCFF},
	{"chorus", 0x010000FF},
	{"bridge", 0x01FF00FF},
	{"solo", 0x0100FFFF},
	{"outro", 0x01808080},
	{"drop", 0x010000FF},
	{"build", 0x010080FF},
	{"break", 0x01FFCC00},
	{"breakdown", 0x01FF00FF},
	{"hook", 0x010000FF},
	{"instrumental", 0x0100FFFF},
	{"jam", 0x0100FFFF},
	{"segment", 0x01FF8000},
	{"transition", 0x01808080},
	{"welcome", 0x0100FF80},
	{"wrap", 0x01808080},
}

const (
	maxListedMarkers  = 10
	maxAnalyzedTracks = 20
	regionGapSeconds  = 0.5
	longSectionBars   = 16
)

func findTemplate(genre string) (arrangementTemplate, bool) {
	key := strings.ToLower(genre)
	for _, tmpl := range arrangementTemplates {
		if tmpl.key == key {
			return tmpl, true
		}
	}
	return arrangementTemplate{}, false
}

func templateKeys() []string {
	keys := make([]string, 0, len(arrangementTemplates))
	for _, tmpl := range arrangementTemplates {
		keys = append(keys, tmpl.key)
	}
	return keys
}

func sectionColorFor(name string) int {
	lower := strings.ToLower(name)
	for _, sc := range sectionColors {
		if strings.Contains(lower, sc.keyword) {
			return sc.color
		}
	}
	return 0
}

func (t *Toolbox) arrangementTools() []Tool {
	return []Tool{
		{
			Definition: mcp.NewTool("arrangement_template",
				mcp.WithDescription("Apply a genre arrangement template. Creates colored regions for "+
					"song sections (intro/verse/chorus/bridge/outro) with appropriate bar counts. "+
					"Supports "+strings.Join(templateKeys(), ", ")+"."),
				mcp.WithString("genre", mcp.Required(), mcp.Description("Musical genre for the arrangement template"), mcp.Enum(templateKeys()...)),
				mcp.WithNumber("tempo", mcp.Description("Tempo in BPM (uses the current project tempo if omitted)")),
				mcp.WithBoolean("clear_existing", mcp.Description("Clear existing markers/regions first"), mcp.DefaultBool(false)),
			),
			Handler:  t.handleArrangementTemplate,
			Category: CategoryArrangement,
		},
		{
			Definition: mcp.NewTool("analyze_form",
				mcp.WithDescription("Analyze the current project structure and suggest improvements. "+
					"Examines regions, track layout, content density, pacing, and tempo."),
			),
			Handler:  t.handleAnalyzeForm,
			Category: CategoryArrangement,
		},
	}
}

func (t *Toolbox) handleArrangementTemplate(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	genre, err := request.RequireString("genre")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	tmpl, ok := findTemplate(genre)
	if !ok {
		return mcp.NewToolResultText(fmt.Sprintf("Unknown genre '%s'. Available: %s", genre, strings.Join(templateKeys(), ", "))), nil
	}

	tempo, hasTempo := optionalNumber(request, "tempo")
	if hasTempo && tempo > 0 {
		// edit the first tempo marker when one exists, otherwise create it
		markerIndex := -1
		if okInt(t.call(ctx, "CountTempoTimeSigMarkers", 0), 0) > 0 {
			markerIndex = 0
		}
		t.call(ctx, "SetTempoTimeSigMarker", 0, markerIndex, 0.0, -1, -1, tempo, 4, 4, false)
	} else {
		tempo = okFloat(t.call(ctx, "Master_GetTempo"), 120)
		if tempo <= 0 {
			tempo = 120
		}
	}

	if request.GetBool("clear_existing", false) {
		resp := t.call(ctx, "CountProjectMarkers", 0)
		if resp.OK {
			_, _, total := markerCounts(resp)
			for i := total - 1; i >= 0; i-- {
				t.call(ctx, "DeleteProjectMarkerByIndex", 0, i)
			}
		}
	}

	barDuration := 60.0 / tempo * 4
	position := 0.0
	created := 0
	totalBars := 0
	summary := make([]string, 0, len(tmpl.sections))

	for _, section := range tmpl.sections {
		end := position + float64(section.bars)*barDuration

		resp := t.call(ctx, "AddProjectMarker2", 0, true, position, end, section.name, -1, sectionColorFor(section.name))
		if !resp.OK {
			resp = t.call(ctx, "AddProjectMarker", 0, true, position, end, section.name, -1)
		}
		if resp.OK {
			created++
		}

		totalBars += section.bars
		summary = append(summary, fmt.Sprintf("%s (%d bars)", section.name, section.bars))
		position = end
	}

	minutes := int(position / 60)
	seconds := position - float64(minutes*60)
	return mcp.NewToolResultText(fmt.Sprintf(
		"Applied %s arrangement template: %d sections, %d bars total, ~%d:%04.1f at %.0f BPM\nStructure: %s",
		tmpl.name, created, totalBars, minutes, seconds, tempo, strings.Join(summary, " | "))), nil
}

// markerCounts reads CountProjectMarkers, which returns either
// [markers, regions] or a single total
func markerCounts(resp *bridge.Response) (markers, regions, total int) {
	var v any
	if err := resp.Decode(&v); err != nil {
		return 0, 0, 0
	}
	switch n := v.(type) {
	case []any:
		if len(n) >= 2 {
			m, _ := n[0].(float64)
			r, _ := n[1].(float64)
			return int(m), int(r), int(m) + int(r)
		}
	case float64:
		return 0, 0, int(n)
	}
	return 0, 0, 0
}

type region struct {
	name       string
	start, end float64
}

type marker struct {
	name string
	pos  float64
}

func (t *Toolbox) handleAnalyzeForm(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var analysis, suggestions []string

	trackCount := okInt(t.call(ctx, "CountTracks", 0), 0)
	itemCount := okInt(t.call(ctx, "CountMediaItems", 0), 0)
	projectLength := okFloat(t.call(ctx, "GetProjectLength", 0), 0)
	tempo := okFloat(t.call(ctx, "Master_GetTempo"), 120)
	if tempo <= 0 {
		tempo = 120
	}

	minutes := int(projectLength / 60)
	seconds := projectLength - float64(minutes*60)
	barDuration := 60.0 / tempo * 4
	analysis = append(analysis, fmt.Sprintf("Project Overview: %d tracks, %d items, %d:%04.1f (%.0f bars at %.0f BPM)",
		trackCount, itemCount, minutes, seconds, projectLength/barDuration, tempo))

	// sections
	var regions []region
	var markers []marker
	if resp := t.call(ctx, "CountProjectMarkers", 0); resp.OK {
		_, _, total := markerCounts(resp)
		for i := 0; i < total; i++ {
			enum := t.call(ctx, "EnumProjectMarkers", i)
			if !enum.OK {
				continue
			}
			var fields []any
			if err := enum.Decode(&fields); err != nil || len(fields) < 5 {
				continue
			}
			isRegion, _ := fields[1].(bool)
			pos, _ := fields[2].(float64)
			end, _ := fields[3].(float64)
			name := fmt.Sprint(fields[4])
			if isRegion {
				regions = append(regions, region{name: name, start: pos, end: end})
			} else {
				markers = append(markers, marker{name: name, pos: pos})
			}
		}
	}

	if len(regions) > 0 {
		analysis = append(analysis, fmt.Sprintf("\nSong Sections (%d regions):", len(regions)))
		for _, r := range regions {
			analysis = append(analysis, fmt.Sprintf("  %s: %.1fs - %.1fs (%.0f bars)", r.name, r.start, r.end, (r.end-r.start)/barDuration))
		}
		for i := 1; i < len(regions); i++ {
			if gap := regions[i].start - regions[i-1].end; gap > regionGapSeconds {
				suggestions = append(suggestions, fmt.Sprintf(
					"Gap of %.1fs between '%s' and '%s' - consider adding a transition section",
					gap, regions[i-1].name, regions[i].name))
			}
		}
		for _, r := range regions {
			if bars := (r.end - r.start) / barDuration; bars > longSectionBars {
				suggestions = append(suggestions, fmt.Sprintf(
					"'%s' is %.0f bars - consider splitting into sub-sections for variety", r.name, bars))
			}
		}
	} else {
		analysis = append(analysis, "\nNo song sections defined (no regions)")
		suggestions = append(suggestions, "Add arrangement regions to mark song sections. "+
			"Use arrangement_template() to auto-generate from a genre template.")
	}

	if len(markers) > 0 {
		analysis = append(analysis, fmt.Sprintf("\nMarkers (%d):", len(markers)))
		for i, m := range markers {
			if i >= maxListedMarkers {
				break
			}
			analysis = append(analysis, fmt.Sprintf("  '%s' at %.1fs", m.name, m.pos))
		}
	}

	// track layout
	analysis = append(analysis, fmt.Sprintf("\nTrack Layout (%d tracks):", trackCount))
	emptyTracks := 0
	for i := 0; i < min(trackCount, maxAnalyzedTracks); i++ {
		track := handle(t.call(ctx, "GetTrack", 0, i))
		if track == nil {
			continue
		}

		name := fmt.Sprintf("Track %d", i+1)
		if resp := t.call(ctx, "GetTrackName", i); resp.OK {
			name = resp.String(name)
		}
		trackItems := okInt(t.call(ctx, "CountTrackMediaItems", track), 0)
		muted := okFloat(t.call(ctx, "GetMediaTrackInfo_Value", track, "B_MUTE"), 0) != 0
		fxCount := okInt(t.call(ctx, "TrackFX_GetCount", track), 0)

		status := ""
		if muted {
			status = " [MUTED]"
		}
		if trackItems == 0 {
			emptyTracks++
			status += " [EMPTY]"
		}
		analysis = append(analysis, fmt.Sprintf("  %d: '%s' - %d items, %d FX%s", i, name, trackItems, fxCount, status))
	}
	if emptyTracks > 0 {
		suggestions = append(suggestions, fmt.Sprintf("%d empty tracks found - consider removing unused tracks", emptyTracks))
	}

	// density
	if projectLength > 0 && itemCount > 0 {
		perMinute := float64(itemCount) / (projectLength / 60)
		analysis = append(analysis, fmt.Sprintf("\nContent Density: %.1f items/minute", perMinute))
		if perMinute < 2 {
			suggestions = append(suggestions, "Low content density - the project may be sparse. "+
				"Consider adding more instruments or fills.")
		}
	} else if projectLength == 0 {
		suggestions = append(suggestions, "Project appears empty - add content to analyze form.")
	}

	// duration
	switch {
	case projectLength > 0 && projectLength < 60:
		suggestions = append(suggestions, fmt.Sprintf(
			"Project is only %.0fs - typical songs are 3-5 minutes. Consider extending with more sections.", projectLength))
	case projectLength > 420:
		suggestions = append(suggestions, fmt.Sprintf(
			"Project is %d:%04.1f - consider tightening the arrangement unless this is intentional (jam, prog, etc.).", minutes, seconds))
	}

	// tempo map
	if tempoChanges := okInt(t.call(ctx, "CountTempoTimeSigMarkers", 0), 0); tempoChanges > 1 {
		analysis = append(analysis, fmt.Sprintf("\nTempo Changes: %d markers", tempoChanges))
	} else {
		analysis = append(analysis, fmt.Sprintf("\nTempo: constant %.0f BPM", tempo))
	}

	var out strings.Builder
	out.WriteString(strings.Join(analysis, "\n"))
	if len(suggestions) > 0 {
		out.WriteString("\n\nSuggestions:")
		for i, s := range suggestions {
			fmt.Fprintf(&out, "\n  %d. %s", i+1, s)
		}
	} else {
		out.WriteString("\n\nNo issues found - arrangement looks well-structured.")
	}
	return mcp.NewToolResultText(out.String()), nil
}
