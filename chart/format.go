package chart

import (
	"fmt"
	"strings"

	"github.com/Conceptual-Machines/magda-reaper-mcp/models"
)

// Format renders a chart as a readable preview:
//
//	Chart: Wonderwall by Oasis
//	Key: Em  BPM: 87  Time: 4/4
//
//	[verse] (4 bars)
//	  Em7 | G | Dsus4 | A7sus4
func Format(c *models.SongChart) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Chart: %s by %s\n", c.Title, c.Artist)
	fmt.Fprintf(&b, "Key: %s  BPM: %d  Time: %s\n", c.Key, c.BPM, c.TimeSig)
	b.WriteString("\n")

	for _, s := range c.Sections {
		fmt.Fprintf(&b, "[%s] (%d bars)\n", s.Name, s.Bars)
		b.WriteString("  " + strings.Join(s.Chords, " | ") + "\n")
		b.WriteString("\n")
	}
	return strings.TrimSuffix(b.String(), "\n")
}

// MaxMeterNumerator is the largest numerator a MIDI time signature can carry
const MaxMeterNumerator = 255

// BeatsPerBar returns the numerator of a "N/D" time signature, 4 when it cannot be read
func BeatsPerBar(timeSig string) int {
	num, _ := MeterParts(timeSig)
	return num
}

// MeterParts splits a "N/D" time signature into numerator and denominator.
// The numerator must be 1..255 and the denominator a power of two up to 64;
// anything else falls back to 4/4.
func MeterParts(timeSig string) (num, den int) {
	n, d, ok := strings.Cut(strings.TrimSpace(timeSig), "/")
	if !ok {
		return 4, 4
	}
	if _, err := fmt.Sscanf(strings.TrimSpace(n), "%d", &num); err != nil {
		return 4, 4
	}
	if _, err := fmt.Sscanf(strings.TrimSpace(d), "%d", &den); err != nil {
		return 4, 4
	}
	if num < 1 || num > MaxMeterNumerator || den < 1 || den > 64 || den&(den-1) != 0 {
		return 4, 4
	}
	return num, den
}

// BarLength returns the length of one bar in quarter notes, e.g. 3 for 6/8
func BarLength(timeSig string) float64 {
	num, den := MeterParts(timeSig)
	return float64(num) * 4 / float64(den)
}
