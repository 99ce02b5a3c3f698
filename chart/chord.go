package chart

import (
	"regexp"
	"strings"
)

const repeatMarker = "."

var (
	// chordPattern: root, basic quality, extension, alterations (b5, #9), add, slash bass
	chordPattern = regexp.MustCompile(
		`^[A-G][b#]?` +
			`(?:m|min|maj|dim|aug|sus)?` +
			`(?:\d+)?` +
			`(?:[b#]\d+)*` +
			`(?:add\d+)?` +
			`(?:/[A-G][b#]?)?$`)

	rootPattern = regexp.MustCompile(`(?s)^([A-G][b#]?)(.*)$`)
)

// knownQualities are the chord qualities the backing generator can voice.
// Anything else is reduced to the root triad by SimplifyChord.
var knownQualities = map[string]bool{
	"": true, "m": true, "min": true, "maj": true, "dim": true, "aug": true, "sus2": true, "sus4": true,
	"7": true, "m7": true, "maj7": true, "min7": true, "dim7": true, "aug7": true,
	"9": true, "m9": true, "maj9": true, "11": true, "m11": true, "13": true, "m13": true,
	"6": true, "m6": true, "add9": true, "add11": true,
	"7b5": true, "7#5": true, "m7b5": true, "7b9": true, "7#9": true,
	"sus": true, "7sus4": true,
}

// IsRepeatMarker reports whether token is the "repeat previous chord" marker
func IsRepeatMarker(token string) bool {
	return token == repeatMarker
}

// IsChordToken reports whether token is a chord symbol such as "Am", "Cmaj7", "Dm7b5" or "G/B"
func IsChordToken(token string) bool {
	if token == "" || IsRepeatMarker(token) {
		return false
	}
	return chordPattern.MatchString(token)
}

// IsKnownQuality reports whether quality (the part after the root) can be voiced as-is
func IsKnownQuality(quality string) bool {
	return knownQualities[quality]
}

// SimplifyChord reduces a chord to the nearest voicing the generator knows.
// The slash bass is always dropped; unknown qualities collapse to the bare root.
// Tokens without a recognizable root are returned unchanged.
func SimplifyChord(chord string) string {
	if i := strings.Index(chord, "/"); i >= 0 {
		chord = chord[:i]
	}

	m := rootPattern.FindStringSubmatch(chord)
	if m == nil {
		return chord
	}
	root, quality := m[1], m[2]

	if IsKnownQuality(quality) {
		return chord
	}
	return root
}

// ExtractBassNote returns the bass note of a slash chord ("C/E" -> "E").
// ok is false when the chord has no slash.
func ExtractBassNote(chord string) (bass string, ok bool) {
	parts := strings.Split(chord, "/")
	if len(parts) < 2 {
		return "", false
	}
	return parts[1], true
}

// SplitRoot splits a chord into its root note and the remaining quality text
func SplitRoot(chord string) (root, quality string, ok bool) {
	m := rootPattern.FindStringSubmatch(chord)
	if m == nil {
		return "", "", false
	}
	return m[1], m[2], true
}
