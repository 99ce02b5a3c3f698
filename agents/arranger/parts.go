package arranger

import (
	"fmt"
	"log"
	"math"
	"math/rand"
	"slices"
	"strings"

	"github.com/Conceptual-Machines/magda-reaper-mcp/agents/drummer"
	"github.com/Conceptual-Machines/magda-reaper-mcp/chart"
	"github.com/Conceptual-Machines/magda-reaper-mcp/models"
)

// Instruments that can be rendered into a backing part
const (
	InstrumentDrums  = "drums"
	InstrumentBass   = "bass"
	InstrumentKeys   = "keys"
	InstrumentGuitar = "guitar"
)

// ValidInstruments is the canonical instrument order
var ValidInstruments = []string{InstrumentDrums, InstrumentBass, InstrumentKeys, InstrumentGuitar}

const (
	defaultDrumGenre = "rock"

	bassOctave   = 2
	keysOctave   = 4
	guitarOctave = 3

	bassVelocity   = 100
	keysVelocity   = 80
	guitarVelocity = 90

	// strumSpread staggers guitar strings slightly
	strumSpread = 0.01
	strumLength = 0.9
)

// ParseInstruments splits a comma separated instrument list, lower-cased.
// Unknown names are returned separately so callers can report them.
func ParseInstruments(list string) (valid, invalid []string) {
	for _, raw := range strings.Split(list, ",") {
		name := strings.ToLower(strings.TrimSpace(raw))
		if name == "" {
			continue
		}
		if slices.Contains(ValidInstruments, name) {
			valid = append(valid, name)
		} else {
			invalid = append(invalid, name)
		}
	}
	return valid, invalid
}

// ChartToParts renders a chart into per-instrument note events. Every chord
// occupies one bar; the bar length in quarter notes comes from the time
// signature, so a 6/8 bar is three beats long.
func ChartToParts(c *models.SongChart, instruments []string, genre string) (map[string][]models.NoteEvent, error) {
	if c == nil {
		return nil, fmt.Errorf("chart is nil")
	}
	chords := c.AllChords()
	if len(chords) == 0 {
		return nil, fmt.Errorf("chart %q has no chords", c.Title)
	}

	barLength := chart.BarLength(c.TimeSig)
	parts := make(map[string][]models.NoteEvent, len(instruments))

	for _, instrument := range instruments {
		var (
			notes []models.NoteEvent
			err   error
		)
		switch instrument {
		case InstrumentDrums:
			notes, err = drumPart(len(chords), barLength, genre)
		case InstrumentBass:
			notes, err = bassPart(chords, barLength)
		case InstrumentKeys:
			notes, err = keysPart(chords, barLength)
		case InstrumentGuitar:
			notes, err = guitarPart(chords, barLength)
		default:
			return nil, fmt.Errorf("unknown instrument: %s", instrument)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to render %s part: %w", instrument, err)
		}
		parts[instrument] = notes
	}

	log.Printf("🎼 ARRANGED %d bars of %q for %s", len(chords), c.Title, strings.Join(instruments, ", "))
	return parts, nil
}

func drumPart(bars int, barLength float64, genre string) ([]models.NoteEvent, error) {
	if _, ok := drummer.GetPattern(genre); !ok {
		genre = defaultDrumGenre
	}
	return drummer.PatternNotes(genre, bars, barLength, rand.New(rand.NewSource(int64(bars))))
}

// bassPart plays the bass note on the downbeat and halfway through each bar
func bassPart(chords []string, barLength float64) ([]models.NoteEvent, error) {
	half := barLength / 2
	notes := make([]models.NoteEvent, 0, len(chords)*2)
	for bar, symbol := range chords {
		key, err := RootNote(symbol, bassOctave)
		if err != nil {
			return nil, err
		}
		start := float64(bar) * barLength
		for _, offset := range []float64{0, half} {
			notes = append(notes, models.NoteEvent{
				MidiNoteNumber: key,
				Velocity:       bassVelocity,
				StartBeats:     start + offset,
				DurationBeats:  half,
			})
		}
	}
	return notes, nil
}

// keysPart holds the simplified voicing for the whole bar
func keysPart(chords []string, barLength float64) ([]models.NoteEvent, error) {
	notes := make([]models.NoteEvent, 0, len(chords)*3)
	for bar, symbol := range chords {
		voicing, err := ChordToMIDI(chart.SimplifyChord(symbol), keysOctave)
		if err != nil {
			return nil, err
		}
		for _, key := range voicing {
			notes = append(notes, models.NoteEvent{
				MidiNoteNumber: key,
				Velocity:       keysVelocity,
				StartBeats:     float64(bar) * barLength,
				DurationBeats:  barLength,
			})
		}
	}
	return notes, nil
}

// guitarPart strums the simplified voicing on every quarter note of the bar
func guitarPart(chords []string, barLength float64) ([]models.NoteEvent, error) {
	strums := int(math.Ceil(barLength))
	notes := make([]models.NoteEvent, 0, len(chords)*strums*3)
	for bar, symbol := range chords {
		voicing, err := ChordToMIDI(chart.SimplifyChord(symbol), guitarOctave)
		if err != nil {
			return nil, err
		}
		for beat := 0; beat < strums; beat++ {
			start := float64(bar)*barLength + float64(beat)
			length := math.Min(strumLength, barLength-float64(beat))
			for i, key := range voicing {
				offset := float64(i) * strumSpread
				notes = append(notes, models.NoteEvent{
					MidiNoteNumber: key,
					Velocity:       guitarVelocity,
					StartBeats:     start + offset,
					DurationBeats:  length - offset,
				})
			}
		}
	}
	return notes, nil
}
