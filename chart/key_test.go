package chart

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetectKey(t *testing.T) {
	tests := []struct {
		name     string
		chords   []string
		expected string
	}{
		{"empty defaults to C", nil, "C"},
		{"I V vi IV", []string{"C", "G", "Am", "F"}, "C"},
		{"minor with major dominant", []string{"Am", "G", "F", "E"}, "Am"},
		{"G major", []string{"G", "D", "Em", "C", "D"}, "G"},
		{"extensions reduce to root", []string{"Em7", "G", "Dsus4", "A7sus4"}, "D"},
		{"slash chords reduce to root", []string{"D/F#", "G/B", "A7"}, "D"},
		{"nothing recognizable defaults to C", []string{"xyz", "N.C."}, "C"},
		{"flat keys", []string{"Eb", "Ab", "Bb", "Cm", "Fm"}, "Eb"},
		{"sharp minor", []string{"C#m", "G#", "F#m", "E"}, "C#m"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, DetectKey(tt.chords))
		})
	}
}

func TestDetectKey_TieBreaksByTableOrder(t *testing.T) {
	// C, G and Am contain both chords; C is listed first
	assert.Equal(t, "C", DetectKey([]string{"C", "G"}))
	// D and G both contain Em and D; G is listed before D
	assert.Equal(t, "G", DetectKey([]string{"Em", "D"}))
}

func TestDetectKey_Deterministic(t *testing.T) {
	chords := []string{"Am", "F", "C", "G", "Dm", "E7"}
	first := DetectKey(chords)
	for i := 0; i < 20; i++ {
		assert.Equal(t, first, DetectKey(chords))
	}
}

func TestDiatonicChords_CoversAllKeys(t *testing.T) {
	seen := map[string]bool{}
	for _, k := range diatonicChords {
		assert.False(t, seen[k.name], "duplicate key %s", k.name)
		seen[k.name] = true
		assert.Contains(t, k.chords, k.name, "key %s must contain its tonic", k.name)
	}
	assert.Len(t, diatonicChords, 24)
	assert.Equal(t, "C", diatonicChords[0].name)
}
