package chart

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsChordToken(t *testing.T) {
	tests := []struct {
		token    string
		expected bool
	}{
		{"C", true},
		{"Am", true},
		{"F#m", true},
		{"Bb", true},
		{"Cmaj7", true},
		{"Dm7b5", true},
		{"G13", true},
		{"Asus4", true},
		{"C7#9", true},
		{"Cadd9", true},
		{"Fmaj7#11", true},
		{"Ebdim7", true},
		{"C/E", true},
		{"Am7/G", true},
		{"F#m/C#", true},
		{".", false},
		{"", false},
		{"H", false},
		{"c", false},
		{"x2", false},
		{"N.C.", false},
		{"Verse", false},
		{"C/", false},
		{"C/x", false},
		{"Cm7)", false},
	}

	for _, tt := range tests {
		t.Run(tt.token, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsChordToken(tt.token))
		})
	}
}

func TestIsRepeatMarker(t *testing.T) {
	assert.True(t, IsRepeatMarker("."))
	assert.False(t, IsRepeatMarker(".."))
	assert.False(t, IsRepeatMarker("C"))
}

func TestSimplifyChord(t *testing.T) {
	tests := []struct {
		name     string
		chord    string
		expected string
	}{
		{"major triad", "C", "C"},
		{"minor triad", "Am", "Am"},
		{"major seventh", "Cmaj7", "Cmaj7"},
		{"minor seventh", "Dm7", "Dm7"},
		{"half diminished", "Bm7b5", "Bm7b5"},
		{"suspended", "Dsus4", "Dsus4"},
		{"sharp root", "F#m7", "F#m7"},
		{"unknown extension falls back to root", "Gadd9#11b13", "G"},
		{"unknown quality with flat root", "Ebmaj13", "Eb"},
		{"slash bass dropped", "C/E", "C"},
		{"slash bass dropped from extended chord", "Am7/G", "Am7"},
		{"slash bass dropped before fallback", "G13b9/B", "G"},
		{"no recognizable root", "xyz", "xyz"},
		{"quality spanning a newline", "C\nx", "C"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, SimplifyChord(tt.chord))
		})
	}
}

func TestSimplifyChord_Idempotent(t *testing.T) {
	for _, chord := range []string{"C", "Am7/G", "Gadd9#11b13", "F#m7b5", "Bb13", "xyz", "D/F#"} {
		once := SimplifyChord(chord)
		assert.Equal(t, once, SimplifyChord(once), chord)
	}
}

func TestExtractBassNote(t *testing.T) {
	bass, ok := ExtractBassNote("C/E")
	assert.True(t, ok)
	assert.Equal(t, "E", bass)

	bass, ok = ExtractBassNote("D/F#")
	assert.True(t, ok)
	assert.Equal(t, "F#", bass)

	_, ok = ExtractBassNote("Am")
	assert.False(t, ok)
}

func TestSplitRoot(t *testing.T) {
	root, quality, ok := SplitRoot("Bbm7")
	assert.True(t, ok)
	assert.Equal(t, "Bb", root)
	assert.Equal(t, "m7", quality)

	_, _, ok = SplitRoot("N.C.")
	assert.False(t, ok)
}
