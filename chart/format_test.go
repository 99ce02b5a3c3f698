package chart

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEstimateTempo(t *testing.T) {
	tests := []struct {
		genre    string
		expected int
	}{
		{"rock", 120},
		{"ballad", 72},
		{"funk", 100},
		{"punk", 170},
		{"r&b", 95},
		{"ROCK", 120},
		{"Jazz", 140},
		{"unknown", 120},
		{"", 120},
	}

	for _, tt := range tests {
		t.Run(tt.genre, func(t *testing.T) {
			assert.Equal(t, tt.expected, EstimateTempo(tt.genre))
		})
	}
}

func TestFormat(t *testing.T) {
	chart := ParseChordChart("[Verse]\nAm . G .\n[Chorus]\nC G\n", Options{Title: "Song", Artist: "Band", BPM: 95, Key: "Am"})

	expected := "Chart: Song by Band\n" +
		"Key: Am  BPM: 95  Time: 4/4\n" +
		"\n" +
		"[verse] (4 bars)\n" +
		"  Am | Am | G | G\n" +
		"\n" +
		"[chorus] (2 bars)\n" +
		"  C | G\n"
	assert.Equal(t, expected, Format(chart))
}

func TestFormat_NoSections(t *testing.T) {
	chart := ParseChordChart("", Options{Title: "T", Artist: "A"})
	assert.Equal(t, "Chart: T by A\nKey: C  BPM: 120  Time: 4/4\n", Format(chart))
}

func TestMeterParts(t *testing.T) {
	tests := []struct {
		timeSig string
		num     int
		den     int
	}{
		{"4/4", 4, 4},
		{"3/4", 3, 4},
		{"6/8", 6, 8},
		{"12/8", 12, 8},
		{"", 4, 4},
		{"waltz", 4, 4},
		{"0/4", 4, 4},
		{"7/8", 7, 8},
		{"2/2", 2, 2},
		{"300/4", 4, 4},
		{"7/3", 4, 4},
		{"5/128", 4, 4},
		{"4/0", 4, 4},
		{"-3/4", 4, 4},
	}

	for _, tt := range tests {
		t.Run(tt.timeSig, func(t *testing.T) {
			num, den := MeterParts(tt.timeSig)
			assert.Equal(t, tt.num, num)
			assert.Equal(t, tt.den, den)
			assert.Equal(t, tt.num, BeatsPerBar(tt.timeSig))
		})
	}
}

func TestBarLength(t *testing.T) {
	tests := []struct {
		timeSig string
		length  float64
	}{
		{"4/4", 4},
		{"3/4", 3},
		{"6/8", 3},
		{"7/8", 3.5},
		{"12/8", 6},
		{"2/2", 4},
		{"300/4", 4},
		{"7/3", 4},
		{"", 4},
	}

	for _, tt := range tests {
		t.Run(tt.timeSig, func(t *testing.T) {
			assert.InDelta(t, tt.length, BarLength(tt.timeSig), 1e-9)
		})
	}
}
