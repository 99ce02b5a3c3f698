package arranger

import (
	"fmt"
	"strings"

	"github.com/Conceptual-Machines/magda-reaper-mcp/chart"
)

var noteSemitones = map[string]int{
	"C":  0, "B#": 0,
	"C#": 1, "Db": 1,
	"D":  2,
	"D#": 3, "Eb": 3,
	"E":  4, "Fb": 4,
	"F":  5, "E#": 5,
	"F#": 6, "Gb": 6,
	"G":  7,
	"G#": 8, "Ab": 8,
	"A":  9,
	"A#": 10, "Bb": 10,
	"B":  11, "Cb": 11,
}

// qualityIntervals lists semitones above the root for each quality suffix
var qualityIntervals = map[string][]int{
	"":      {0, 4, 7},
	"m":     {0, 3, 7},
	"min":   {0, 3, 7},
	"maj":   {0, 4, 7},
	"5":     {0, 7},
	"6":     {0, 4, 7, 9},
	"m6":    {0, 3, 7, 9},
	"7":     {0, 4, 7, 10},
	"m7":    {0, 3, 7, 10},
	"min7":  {0, 3, 7, 10},
	"maj7":  {0, 4, 7, 11},
	"M7":    {0, 4, 7, 11},
	"9":     {0, 4, 7, 10, 14},
	"m9":    {0, 3, 7, 10, 14},
	"maj9":  {0, 4, 7, 11, 14},
	"add9":  {0, 4, 7, 14},
	"11":    {0, 4, 7, 10, 14, 17},
	"13":    {0, 4, 7, 10, 14, 21},
	"sus":   {0, 5, 7},
	"sus2":  {0, 2, 7},
	"sus4":  {0, 5, 7},
	"7sus4": {0, 5, 7, 10},
	"dim":   {0, 3, 6},
	"dim7":  {0, 3, 6, 9},
	"m7b5":  {0, 3, 6, 10},
	"aug":   {0, 4, 8},
	"+":     {0, 4, 8},
	"aug7":  {0, 4, 8, 10},
	"m11":   {0, 3, 7, 10, 14, 17},
	"m13":   {0, 3, 7, 10, 14, 21},
	"add11": {0, 4, 7, 17},
	"7b5":   {0, 4, 6, 10},
	"7#5":   {0, 4, 8, 10},
	"7b9":   {0, 4, 7, 10, 13},
	"7#9":   {0, 4, 7, 10, 15},
}

// NoteNumber returns the MIDI key of a note name in the given octave (C4 = 60)
func NoteNumber(note string, octave int) (int, error) {
	semitone, ok := noteSemitones[strings.TrimSpace(note)]
	if !ok {
		return 0, fmt.Errorf("invalid note name: %q", note)
	}
	midi := (octave+1)*12 + semitone
	if midi < 0 || midi > 127 {
		return 0, fmt.Errorf("note %s%d is outside the MIDI range", note, octave)
	}
	return midi, nil
}

// ChordToMIDI voices a chord symbol such as C, Em, Am7, Cmaj7 or Em/G.
// Unknown quality suffixes fall back to the triad implied by a leading "m".
// A slash bass is prepended one octave below the root.
func ChordToMIDI(chordSymbol string, octave int) ([]int, error) {
	symbol := strings.TrimSpace(chordSymbol)
	if symbol == "" {
		return nil, fmt.Errorf("empty chord symbol")
	}

	head := symbol
	bass, hasBass := chart.ExtractBassNote(symbol)
	if hasBass {
		head = symbol[:strings.Index(symbol, "/")]
	}

	root, quality, ok := chart.SplitRoot(head)
	if !ok {
		return nil, fmt.Errorf("invalid chord root: %q", chordSymbol)
	}
	rootMIDI, err := NoteNumber(root, octave)
	if err != nil {
		return nil, err
	}

	intervals, ok := qualityIntervals[quality]
	if !ok {
		intervals = qualityIntervals[""]
		if strings.HasPrefix(quality, "m") && !strings.HasPrefix(quality, "maj") {
			intervals = qualityIntervals["m"]
		}
	}

	notes := make([]int, 0, len(intervals)+1)
	if hasBass {
		if bassMIDI, err := NoteNumber(bass, octave-1); err == nil {
			notes = append(notes, bassMIDI)
		}
	}
	for _, interval := range intervals {
		if n := rootMIDI + interval; n <= 127 {
			notes = append(notes, n)
		}
	}

	if len(notes) == 0 {
		return nil, fmt.Errorf("no valid MIDI notes generated for chord: %s", chordSymbol)
	}
	return notes, nil
}

// RootNote returns the MIDI key of the chord's bass: the slash bass when
// present, otherwise the root
func RootNote(chordSymbol string, octave int) (int, error) {
	if bass, ok := chart.ExtractBassNote(chordSymbol); ok {
		if n, err := NoteNumber(bass, octave); err == nil {
			return n, nil
		}
	}
	root, _, ok := chart.SplitRoot(strings.TrimSpace(chordSymbol))
	if !ok {
		return 0, fmt.Errorf("invalid chord root: %q", chordSymbol)
	}
	return NoteNumber(root, octave)
}
