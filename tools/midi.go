package tools

import (
	"context"
	"fmt"
	"math/rand"
	"strconv"
	"strings"
	"time"

	"github.com/Conceptual-Machines/magda-reaper-mcp/agents/drummer"
	"github.com/mark3labs/mcp-go/mcp"
)

const (
	ppqPerBeat       = 960
	drumHitTicks     = 100
	itemLengthBuffer = 0.1
)

type keyName struct {
	name     string
	semitone int
}

// keyNames is already in semitone order, sharps before flats
var keyNames = []keyName{
	{"C", 0}, {"C#", 1}, {"Db", 1},
	{"D", 2}, {"D#", 3}, {"Eb", 3},
	{"E", 4}, {"Fb", 4},
	{"F", 5}, {"F#", 6}, {"Gb", 6},
	{"G", 7}, {"G#", 8}, {"Ab", 8},
	{"A", 9}, {"A#", 10}, {"Bb", 10},
	{"B", 11}, {"Cb", 11},
}

func findKey(name string) (int, bool) {
	for _, k := range keyNames {
		if k.name == name {
			return k.semitone, true
		}
	}
	return 0, false
}

var sharpNames = []string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

type scaleDef struct {
	name      string
	intervals []int
}

var scales = []scaleDef{
	{"major", []int{0, 2, 4, 5, 7, 9, 11}},
	{"minor", []int{0, 2, 3, 5, 7, 8, 10}},
	{"harmonic_minor", []int{0, 2, 3, 5, 7, 8, 11}},
	{"melodic_minor", []int{0, 2, 3, 5, 7, 9, 11}},
	{"dorian", []int{0, 2, 3, 5, 7, 9, 10}},
	{"phrygian", []int{0, 1, 3, 5, 7, 8, 10}},
	{"lydian", []int{0, 2, 4, 6, 7, 9, 11}},
	{"mixolydian", []int{0, 2, 4, 5, 7, 9, 10}},
	{"pentatonic", []int{0, 2, 4, 7, 9}},
	{"blues", []int{0, 3, 5, 6, 7, 10}},
	{"aeolian", []int{0, 2, 3, 5, 7, 8, 10}},
	{"locrian", []int{0, 1, 3, 5, 6, 8, 10}},
}

func findScale(name string) (scaleDef, bool) {
	for _, s := range scales {
		if s.name == name {
			return s, true
		}
	}
	return scaleDef{}, false
}

// ScaleMask sets bit n for every pitch class n in the scale
func ScaleMask(root int, intervals []int) int {
	mask := 0
	for _, interval := range intervals {
		mask |= 1 << ((root + interval) % 12)
	}
	return mask
}

// noteSpec is one entry of the insert_midi notes array
type noteSpec struct {
	Pitch    int
	Start    float64
	Duration float64
	Velocity int
	Channel  int
}

func parseNoteSpecs(raw any) []noteSpec {
	items, ok := raw.([]any)
	if !ok {
		return nil
	}
	notes := make([]noteSpec, 0, len(items))
	for _, item := range items {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		notes = append(notes, noteSpec{
			Pitch:    int(numberOr(m["pitch"], 60)),
			Start:    numberOr(m["start"], 0),
			Duration: numberOr(m["duration"], 1),
			Velocity: int(numberOr(m["velocity"], 80)),
			Channel:  int(numberOr(m["channel"], 0)),
		})
	}
	return notes
}

func numberOr(v any, def float64) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	case string:
		if f, err := strconv.ParseFloat(n, 64); err == nil {
			return f
		}
	}
	return def
}

func clampInt(v, lo, hi int) int {
	return max(lo, min(hi, v))
}

func (t *Toolbox) midiTools() []Tool {
	return []Tool{
		{
			Definition: mcp.NewTool("insert_midi",
				mcp.WithDescription("Insert multiple MIDI notes programmatically. Provide a list of notes "+
					"with pitch, start (beats), duration (beats), velocity, and channel. "+
					"Creates a new MIDI item or adds to an existing one."),
				mcp.WithNumber("track_index", mcp.Required(), mcp.Description("Track index to insert into")),
				mcp.WithArray("notes", mcp.Required(),
					mcp.Description("Notes: {pitch 0-127, start beats, duration beats, velocity 1-127 (default 80), channel 0-15 (default 0)}"),
					mcp.Items(map[string]any{
						"type": "object",
						"properties": map[string]any{
							"pitch":    map[string]any{"type": "integer"},
							"start":    map[string]any{"type": "number"},
							"duration": map[string]any{"type": "number"},
							"velocity": map[string]any{"type": "integer"},
							"channel":  map[string]any{"type": "integer"},
						},
						"required": []string{"pitch", "start", "duration"},
					}),
				),
				mcp.WithBoolean("create_item", mcp.Description("Create a new MIDI item"), mcp.DefaultBool(true)),
				mcp.WithNumber("item_length", mcp.Description("MIDI item length in seconds (calculated from the notes if omitted)")),
			),
			Handler:  t.handleInsertMIDI,
			Category: CategoryMIDI,
		},
		{
			Definition: mcp.NewTool("scale_lock",
				mcp.WithDescription("Set scale lock to constrain MIDI to a specific key and scale. "+
					"Supports major, minor, modes, pentatonic, blues."),
				mcp.WithString("key", mcp.Required(), mcp.Description("Root note: C, C#, D, D#, E, F, F#, G, G#, A, A#, B (flats accepted)")),
				mcp.WithString("scale", mcp.Required(), mcp.Description("Scale type (major, minor, harmonic_minor, melodic_minor, dorian, phrygian, lydian, mixolydian, pentatonic, blues, aeolian, locrian)")),
			),
			Handler:  t.handleScaleLock,
			Category: CategoryMIDI,
		},
		{
			Definition: mcp.NewTool("generate_drums",
				mcp.WithDescription("Generate genre-specific drum patterns as MIDI. Supports "+
					strings.Join(drummer.Genres(), ", ")+". Specify tempo and number of bars."),
				mcp.WithString("genre", mcp.Required(), mcp.Description("Musical genre for the drum pattern")),
				mcp.WithNumber("tempo", mcp.Required(), mcp.Description("Tempo in BPM")),
				mcp.WithNumber("bars", mcp.Description("Number of bars to generate"), mcp.DefaultNumber(4)),
				mcp.WithNumber("item_index", mcp.Description("Existing MIDI item index to insert into")),
				mcp.WithNumber("take_index", mcp.Description("Take index within the item"), mcp.DefaultNumber(0)),
				mcp.WithNumber("track_index", mcp.Description("Track index for a new MIDI item (used when item_index is omitted)")),
			),
			Handler:  t.handleGenerateDrums,
			Category: CategoryMIDI,
		},
	}
}

func (t *Toolbox) handleInsertMIDI(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	trackIndex, err := request.RequireInt("track_index")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	notes := parseNoteSpecs(request.GetArguments()["notes"])
	if len(notes) == 0 {
		return mcp.NewToolResultText("No notes provided"), nil
	}

	itemLength, hasLength := optionalNumber(request, "item_length")
	if !hasLength {
		maxEnd := 0.0
		for _, n := range notes {
			maxEnd = max(maxEnd, n.Start+n.Duration)
		}
		tempo := okFloat(t.call(ctx, "Master_GetTempo"), 120)
		if tempo <= 0 {
			tempo = 120
		}
		itemLength = maxEnd*60.0/tempo + itemLengthBuffer
	}

	itemIndex, takeIndex := 0, 0
	if request.GetBool("create_item", true) {
		track := handle(t.call(ctx, "GetTrack", 0, trackIndex))
		if track == nil {
			return mcp.NewToolResultError(fmt.Sprintf("Track %d not found", trackIndex)), nil
		}
		if resp := t.call(ctx, "CreateNewMIDIItemInProj", track, 0.0, itemLength, false); !resp.OK {
			return mcp.NewToolResultError("Failed to create MIDI item"), nil
		}
		if resp := t.call(ctx, "CountMediaItems", 0); resp.OK {
			itemIndex = resp.Int(1) - 1
		}
	}

	inserted := 0
	for _, n := range notes {
		resp := t.call(ctx, "InsertMIDINoteToItemTake",
			itemIndex, takeIndex,
			clampInt(n.Pitch, 0, 127),
			clampInt(n.Velocity, 1, 127),
			n.Start, n.Duration,
			clampInt(n.Channel, 0, 15),
			false, false, 0, 0,
		)
		if resp.OK {
			inserted++
		}
	}
	t.call(ctx, "SortMIDIInItemTake", itemIndex, takeIndex)

	return mcp.NewToolResultText(fmt.Sprintf("Inserted %d/%d MIDI notes on track %d", inserted, len(notes), trackIndex)), nil
}

func (t *Toolbox) handleScaleLock(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	key, err := request.RequireString("key")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	scaleName, err := request.RequireString("scale")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	root, ok := findKey(key)
	if !ok {
		keys := make([]string, 0, len(keyNames))
		for _, k := range keyNames {
			keys = append(keys, k.name)
		}
		return mcp.NewToolResultText(fmt.Sprintf("Unknown key '%s'. Valid keys: %s", key, strings.Join(keys, ", "))), nil
	}

	lower := strings.ToLower(scaleName)
	scale, ok := findScale(lower)
	if !ok {
		names := make([]string, 0, len(scales))
		for _, s := range scales {
			names = append(names, s.name)
		}
		return mcp.NewToolResultText(fmt.Sprintf("Unknown scale '%s'. Valid scales: %s", scaleName, strings.Join(names, ", "))), nil
	}

	mask := ScaleMask(root, scale.intervals)
	for _, kv := range [][2]string{
		{"root", strconv.Itoa(root)},
		{"scale", lower},
		{"mask", strconv.Itoa(mask)},
		{"enabled", "1"},
	} {
		t.call(ctx, "SetProjExtState", 0, "MCP_ScaleLock", kv[0], kv[1])
	}
	t.call(ctx, "SetProjExtState", 0, "MIDI_SCALE", "root", strconv.Itoa(root))

	notes := make([]string, 0, len(scale.intervals))
	for _, interval := range scale.intervals {
		notes = append(notes, sharpNames[(root+interval)%12])
	}
	return mcp.NewToolResultText(fmt.Sprintf("Scale lock set: %s %s (notes: %s)", key, scaleName, strings.Join(notes, ", "))), nil
}

func (t *Toolbox) handleGenerateDrums(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	genre, err := request.RequireString("genre")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	tempo, err := request.RequireFloat("tempo")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	bars := request.GetInt("bars", 4)
	takeIndex := request.GetInt("take_index", 0)

	pattern, ok := drummer.GetPattern(genre)
	if !ok {
		return mcp.NewToolResultText(fmt.Sprintf("Unknown genre '%s'. Available: %s", genre, strings.Join(drummer.Genres(), ", "))), nil
	}
	if tempo <= 0 {
		return mcp.NewToolResultText("Tempo must be positive"), nil
	}
	if bars <= 0 {
		return mcp.NewToolResultText(fmt.Sprintf("Bars must be positive, got %d", bars)), nil
	}

	itemIndexF, hasItem := optionalNumber(request, "item_index")
	itemIndex := int(itemIndexF)
	if !hasItem {
		trackIndexF, hasTrack := optionalNumber(request, "track_index")
		if !hasTrack {
			return mcp.NewToolResultText("Provide either item_index (existing MIDI item) or track_index (to create new item)"), nil
		}
		trackIndex := int(trackIndexF)

		itemLength := float64(bars*4)*60.0/tempo + itemLengthBuffer
		track := handle(t.call(ctx, "GetTrack", 0, trackIndex))
		if track == nil {
			return mcp.NewToolResultError(fmt.Sprintf("Track %d not found", trackIndex)), nil
		}
		if resp := t.call(ctx, "CreateNewMIDIItemInProj", track, 0.0, itemLength, false); !resp.OK {
			return mcp.NewToolResultError("Failed to create MIDI item"), nil
		}
		itemIndex = 0
		if resp := t.call(ctx, "CountMediaItems", 0); resp.OK {
			itemIndex = resp.Int(1) - 1
		}
	}

	item := handle(t.call(ctx, "GetMediaItem", 0, itemIndex))
	if item == nil {
		return mcp.NewToolResultError(fmt.Sprintf("Media item %d not found", itemIndex)), nil
	}
	take := handle(t.call(ctx, "GetMediaItemTake", item, takeIndex))
	if take == nil {
		return mcp.NewToolResultError(fmt.Sprintf("Take %d not found in item %d", takeIndex, itemIndex)), nil
	}

	notes, err := drummer.PatternNotes(genre, bars, 4, rand.New(rand.NewSource(time.Now().UnixNano())))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to generate drum pattern: %v", err)), nil
	}

	added := 0
	for _, n := range notes {
		ppq := int(n.StartBeats * ppqPerBeat)
		resp := t.call(ctx, "MIDI_InsertNote", take, false, false, ppq, ppq+drumHitTicks, n.Channel, n.MidiNoteNumber, n.Velocity, true)
		if resp.OK {
			added++
		}
	}
	t.call(ctx, "MIDI_Sort", take)

	return mcp.NewToolResultText(fmt.Sprintf("Generated %s drum pattern: %d notes over %d bars at %s BPM",
		pattern.Name, added, bars, strconv.FormatFloat(tempo, 'f', -1, 64))), nil
}
