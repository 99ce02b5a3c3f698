package arranger

import (
	"testing"

	"github.com/Conceptual-Machines/magda-reaper-mcp/agents/drummer"
	"github.com/Conceptual-Machines/magda-reaper-mcp/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testChart() *models.SongChart {
	return &models.SongChart{
		Title:   "Test",
		Artist:  "Band",
		Key:     "G",
		BPM:     100,
		TimeSig: "4/4",
		Sections: []models.Section{
			{Name: "Verse", Chords: []string{"G", "D/F#"}, Bars: 2},
			{Name: "Chorus", Chords: []string{"Em7", "Cadd9"}, Bars: 2},
		},
	}
}

func TestParseInstruments(t *testing.T) {
	valid, invalid := ParseInstruments(" Drums, bass ,kazoo,,KEYS")
	assert.Equal(t, []string{"drums", "bass", "keys"}, valid)
	assert.Equal(t, []string{"kazoo"}, invalid)

	valid, invalid = ParseInstruments("")
	assert.Empty(t, valid)
	assert.Empty(t, invalid)
}

func TestChartToParts_Bass(t *testing.T) {
	parts, err := ChartToParts(testChart(), []string{InstrumentBass}, "rock")
	require.NoError(t, err)
	require.Len(t, parts, 1)

	bass := parts[InstrumentBass]
	require.Len(t, bass, 8)

	// G2, then the slash bass F#2, then E2, then C2
	expected := []int{43, 43, 42, 42, 40, 40, 36, 36}
	for i, n := range bass {
		assert.Equal(t, expected[i], n.MidiNoteNumber, "note %d", i)
		assert.InDelta(t, float64(i)*2, n.StartBeats, 1e-9)
		assert.InDelta(t, 2.0, n.DurationBeats, 1e-9)
	}
}

func TestChartToParts_KeysHoldSimplifiedVoicing(t *testing.T) {
	parts, err := ChartToParts(testChart(), []string{InstrumentKeys}, "")
	require.NoError(t, err)

	keys := parts[InstrumentKeys]
	// bar 2 is D/F#: slash bass dropped, plain D triad
	var bar2 []int
	for _, n := range keys {
		if n.StartBeats == 4 {
			bar2 = append(bar2, n.MidiNoteNumber)
			assert.Equal(t, 4.0, n.DurationBeats)
		}
	}
	assert.Equal(t, []int{62, 66, 69}, bar2)
}

func TestChartToParts_GuitarStrumsEveryBeat(t *testing.T) {
	c := testChart()
	c.TimeSig = "3/4"
	parts, err := ChartToParts(c, []string{InstrumentGuitar}, "")
	require.NoError(t, err)

	downbeats := map[float64]int{}
	for _, n := range parts[InstrumentGuitar] {
		if n.StartBeats == float64(int(n.StartBeats)) {
			downbeats[n.StartBeats]++
		}
	}
	// 4 bars of 3 beats
	assert.Len(t, downbeats, 12)
}

func TestChartToParts_CompoundMeter(t *testing.T) {
	c := testChart()
	c.TimeSig = "6/8"
	parts, err := ChartToParts(c, []string{InstrumentBass, InstrumentKeys}, "")
	require.NoError(t, err)

	// a 6/8 bar is three quarter notes, so chords change every 3 beats
	bass := parts[InstrumentBass]
	require.Len(t, bass, 8)
	for i, n := range bass {
		assert.InDelta(t, float64(i)*1.5, n.StartBeats, 1e-9)
		assert.InDelta(t, 1.5, n.DurationBeats, 1e-9)
	}

	for _, n := range parts[InstrumentKeys] {
		assert.InDelta(t, 3.0, n.DurationBeats, 1e-9)
		assert.Contains(t, []float64{0, 3, 6, 9}, n.StartBeats)
	}
}

func TestChartToParts_FractionalBarClipsLastStrum(t *testing.T) {
	c := testChart()
	c.TimeSig = "7/8"
	parts, err := ChartToParts(c, []string{InstrumentGuitar}, "")
	require.NoError(t, err)

	for _, n := range parts[InstrumentGuitar] {
		bar := int(n.StartBeats / 3.5)
		barEnd := float64(bar+1) * 3.5
		assert.LessOrEqual(t, n.EndBeats(), barEnd+1e-9, "strum at %.2f spills past its bar", n.StartBeats)
	}
}

func TestChartToParts_InvalidMeterFallsBackToCommonTime(t *testing.T) {
	for _, timeSig := range []string{"300/4", "7/3", "0/0"} {
		t.Run(timeSig, func(t *testing.T) {
			c := testChart()
			c.TimeSig = timeSig
			parts, err := ChartToParts(c, []string{InstrumentBass, InstrumentGuitar}, "")
			require.NoError(t, err)

			bass := parts[InstrumentBass]
			require.Len(t, bass, 8)
			assert.InDelta(t, 14.0, bass[7].StartBeats, 1e-9)
			for _, n := range parts[InstrumentGuitar] {
				assert.Less(t, n.StartBeats, 16.0)
			}
		})
	}
}

func TestChartToParts_DrumsFallBackToRock(t *testing.T) {
	parts, err := ChartToParts(testChart(), []string{InstrumentDrums}, "polka")
	require.NoError(t, err)

	drums := parts[InstrumentDrums]
	require.NotEmpty(t, drums)
	last := drums[len(drums)-1]
	assert.Less(t, last.StartBeats, 16.0)
	for _, n := range drums {
		assert.Equal(t, drummer.DrumChannel, n.Channel)
	}
}

func TestChartToParts_Errors(t *testing.T) {
	_, err := ChartToParts(nil, []string{InstrumentBass}, "")
	assert.Error(t, err)

	_, err = ChartToParts(&models.SongChart{Title: "Empty"}, []string{InstrumentBass}, "")
	assert.Error(t, err)

	_, err = ChartToParts(testChart(), []string{"kazoo"}, "")
	assert.Error(t, err)
}
