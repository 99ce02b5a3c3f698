package drummer

import (
	"fmt"
	"math/rand"
	"sort"
	"strings"

	"github.com/Conceptual-Machines/magda-reaper-mcp/models"
)

// DrumChannel is General MIDI channel 10, zero based
const DrumChannel = 9

const (
	// hitTicks is the fixed drum hit length at 960 PPQ
	hitTicks        = 100
	ppq             = 960
	humanizeRange   = 5
	defaultVelocity = 80
)

// GMDrums maps drum names to General MIDI percussion keys
var GMDrums = map[string]int{
	"kick":       36,
	"snare":      38,
	"hihat":      42,
	"open_hihat": 46,
	"crash":      49,
	"ride":       51,
	"tom1":       48,
	"tom2":       45,
	"tom3":       43,
}

// Pattern is a one bar groove: drum name -> beat offsets within the bar
type Pattern struct {
	Name       string
	Hits       map[string][]float64
	Velocities map[string]int
	FillsEvery int
}

func sixteenths() []float64 {
	out := make([]float64, 16)
	for i := range out {
		out[i] = float64(i) * 0.25
	}
	return out
}

var eighths = []float64{0, 0.5, 1, 1.5, 2, 2.5, 3, 3.5}

var swingRide = []float64{0, 0.67, 1, 1.67, 2, 2.67, 3, 3.67}

// genreOrder is the listing order used in messages
var genreOrder = []string{"rock", "pop", "funk", "jazz", "blues", "metal", "latin", "r&b", "country", "reggae", "hiphop", "edm"}

var patterns = map[string]Pattern{
	"rock": {
		Name:       "Rock",
		Hits:       map[string][]float64{"kick": {0, 2}, "snare": {1, 3}, "hihat": eighths},
		Velocities: map[string]int{"kick": 110, "snare": 100, "hihat": 80},
		FillsEvery: 4,
	},
	"pop": {
		Name:       "Pop",
		Hits:       map[string][]float64{"kick": {0, 1.5, 2}, "snare": {1, 3}, "hihat": eighths},
		Velocities: map[string]int{"kick": 100, "snare": 95, "hihat": 70},
		FillsEvery: 8,
	},
	"funk": {
		Name:       "Funk",
		Hits:       map[string][]float64{"kick": {0, 0.75, 2, 2.25}, "snare": {1, 3}, "hihat": sixteenths(), "open_hihat": {1.75, 3.75}},
		Velocities: map[string]int{"kick": 110, "snare": 105, "hihat": 75, "open_hihat": 90},
		FillsEvery: 4,
	},
	"jazz": {
		Name: "Jazz",
		// foot hi-hat on 2 and 4, snare left to ghost notes
		Hits:       map[string][]float64{"ride": swingRide, "kick": {0, 2.5}, "hihat": {1, 3}, "snare": {}},
		Velocities: map[string]int{"ride": 85, "kick": 70, "hihat": 60, "snare": 55},
		FillsEvery: 4,
	},
	"blues": {
		Name:       "Blues",
		Hits:       map[string][]float64{"kick": {0, 2}, "snare": {1, 3}, "ride": swingRide},
		Velocities: map[string]int{"kick": 100, "snare": 95, "ride": 80},
		FillsEvery: 4,
	},
	"metal": {
		Name:       "Metal",
		Hits:       map[string][]float64{"kick": sixteenths(), "snare": {1, 3}, "hihat": eighths, "crash": {0}},
		Velocities: map[string]int{"kick": 120, "snare": 120, "hihat": 90, "crash": 110},
		FillsEvery: 4,
	},
	"latin": {
		Name:       "Latin",
		Hits:       map[string][]float64{"kick": {0, 1.5, 3}, "snare": {1, 2.5}, "hihat": sixteenths(), "tom1": {0.75, 2.75}, "tom2": {1.25, 3.25}},
		Velocities: map[string]int{"kick": 100, "snare": 90, "hihat": 70, "tom1": 85, "tom2": 80},
		FillsEvery: 4,
	},
	"r&b": {
		Name:       "R&B",
		Hits:       map[string][]float64{"kick": {0, 1.75, 2.5}, "snare": {1, 3}, "hihat": sixteenths()},
		Velocities: map[string]int{"kick": 95, "snare": 90, "hihat": 65},
		FillsEvery: 8,
	},
	"country": {
		Name:       "Country",
		Hits:       map[string][]float64{"kick": {0, 2}, "snare": {1, 3}, "hihat": eighths},
		Velocities: map[string]int{"kick": 100, "snare": 90, "hihat": 75},
		FillsEvery: 8,
	},
	"reggae": {
		Name:       "Reggae",
		Hits:       map[string][]float64{"kick": {0.75, 2.75}, "snare": {1.5, 3.5}, "hihat": eighths, "open_hihat": {0.5, 2.5}},
		Velocities: map[string]int{"kick": 95, "snare": 85, "hihat": 70, "open_hihat": 80},
		FillsEvery: 4,
	},
	"hiphop": {
		Name:       "Hip-Hop",
		Hits:       map[string][]float64{"kick": {0, 0.75, 2, 2.75}, "snare": {1, 3}, "hihat": sixteenths(), "open_hihat": {1.5, 3.5}},
		Velocities: map[string]int{"kick": 110, "snare": 105, "hihat": 70, "open_hihat": 85},
		FillsEvery: 8,
	},
	"edm": {
		Name:       "EDM",
		Hits:       map[string][]float64{"kick": {0, 1, 2, 3}, "snare": {1, 3}, "hihat": sixteenths(), "open_hihat": {0.5, 1.5, 2.5, 3.5}},
		Velocities: map[string]int{"kick": 120, "snare": 100, "hihat": 75, "open_hihat": 85},
		FillsEvery: 8,
	},
}

// Genres returns the supported genres in listing order
func Genres() []string {
	return append([]string(nil), genreOrder...)
}

// GetPattern looks up a genre pattern (case-insensitive)
func GetPattern(genre string) (Pattern, bool) {
	p, ok := patterns[strings.ToLower(strings.TrimSpace(genre))]
	return p, ok
}

// PatternNotes renders bars of a genre groove as note events on the drum channel.
// barLength is the bar length in quarter notes; hits at or past it are skipped.
// When rng is non-nil each velocity is humanized by up to ±5.
func PatternNotes(genre string, bars int, barLength float64, rng *rand.Rand) ([]models.NoteEvent, error) {
	pattern, ok := GetPattern(genre)
	if !ok {
		return nil, fmt.Errorf("unknown genre %q, available: %s", genre, strings.Join(genreOrder, ", "))
	}
	if bars <= 0 {
		return nil, fmt.Errorf("bars must be positive, got %d", bars)
	}
	if barLength <= 0 {
		barLength = 4
	}

	// Stable drum order keeps output deterministic for a given rng
	drums := make([]string, 0, len(pattern.Hits))
	for drum := range pattern.Hits {
		if _, known := GMDrums[drum]; known {
			drums = append(drums, drum)
		}
	}
	sort.Strings(drums)

	duration := float64(hitTicks) / ppq
	notes := make([]models.NoteEvent, 0)
	for bar := 0; bar < bars; bar++ {
		barOffset := float64(bar) * barLength
		for _, drum := range drums {
			velocity, ok := pattern.Velocities[drum]
			if !ok {
				velocity = defaultVelocity
			}
			for _, pos := range pattern.Hits[drum] {
				if pos >= barLength {
					continue
				}
				notes = append(notes, models.NoteEvent{
					MidiNoteNumber: GMDrums[drum],
					Velocity:       humanize(velocity, rng),
					StartBeats:     barOffset + pos,
					DurationBeats:  duration,
					Channel:        DrumChannel,
				})
			}
		}
	}

	sort.SliceStable(notes, func(i, j int) bool {
		return notes[i].StartBeats < notes[j].StartBeats
	})
	return notes, nil
}

func humanize(velocity int, rng *rand.Rand) int {
	if rng != nil {
		velocity += rng.Intn(2*humanizeRange+1) - humanizeRange
	}
	return clamp(velocity, 1, 127)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
