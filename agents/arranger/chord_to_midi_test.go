package arranger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChordToMIDI(t *testing.T) {
	tests := []struct {
		name          string
		chordSymbol   string
		octave        int
		expectedNotes []int
		expectError   bool
	}{
		{"C major", "C", 4, []int{60, 64, 67}, false},
		{"E minor", "Em", 4, []int{64, 67, 71}, false},
		{"A minor", "Am", 4, []int{69, 72, 76}, false},
		{"F sharp", "F#", 3, []int{54, 58, 61}, false},
		{"B flat", "Bb", 3, []int{58, 62, 65}, false},
		{"A minor 7th", "Am7", 4, []int{69, 72, 76, 79}, false},
		{"C major 7th", "Cmaj7", 4, []int{60, 64, 67, 71}, false},
		{"dominant 7th", "G7", 3, []int{55, 59, 62, 65}, false},
		{"sus4", "Dsus4", 4, []int{62, 67, 69}, false},
		{"power chord", "E5", 2, []int{40, 47}, false},
		{"unknown minor suffix", "Cm(maj7)", 4, []int{60, 63, 67}, false},
		{"unknown suffix", "Cxyz", 4, []int{60, 64, 67}, false},
		{"octave 3", "C", 3, []int{48, 52, 55}, false},
		{"empty", "", 4, nil, true},
		{"bad root", "H7", 4, nil, true},
		{"out of range", "C", 11, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			notes, err := ChordToMIDI(tt.chordSymbol, tt.octave)
			if tt.expectError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expectedNotes, notes)
		})
	}
}

func TestChordToMIDI_Inversion(t *testing.T) {
	notes, err := ChordToMIDI("Em/G", 4)
	require.NoError(t, err)

	// G3 prepended below the E minor triad
	assert.Equal(t, []int{55, 64, 67, 71}, notes)
}

func TestChordToMIDI_BadBassIgnored(t *testing.T) {
	notes, err := ChordToMIDI("C/X", 4)
	require.NoError(t, err)
	assert.Equal(t, []int{60, 64, 67}, notes)
}

func TestRootNote(t *testing.T) {
	tests := []struct {
		chord    string
		expected int
	}{
		{"C", 36},
		{"Am7", 45},
		{"D/F#", 42},
		{"Bb", 46},
	}
	for _, tt := range tests {
		t.Run(tt.chord, func(t *testing.T) {
			got, err := RootNote(tt.chord, 2)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}

	_, err := RootNote("nope", 2)
	assert.Error(t, err)
}

func TestNoteNumber(t *testing.T) {
	n, err := NoteNumber("C", 4)
	require.NoError(t, err)
	assert.Equal(t, 60, n)

	n, err = NoteNumber("Cb", 4)
	require.NoError(t, err)
	assert.Equal(t, 71, n)

	_, err = NoteNumber("Q", 4)
	assert.Error(t, err)
}
