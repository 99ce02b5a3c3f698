package chart

import "regexp"

const defaultKey = "C"

var keyRootPattern = regexp.MustCompile(`^([A-G][b#]?m?)`)

type keyProfile struct {
	name   string
	chords []string
}

// diatonicChords lists the chords expected in each key. Order matters: when two
// keys score the same, the one listed first wins. Minor keys include the
// harmonic-minor dominant.
var diatonicChords = []keyProfile{
	{"C", []string{"C", "Dm", "Em", "F", "G", "Am"}},
	{"G", []string{"G", "Am", "Bm", "C", "D", "Em"}},
	{"D", []string{"D", "Em", "F#m", "G", "A", "Bm"}},
	{"A", []string{"A", "Bm", "C#m", "D", "E", "F#m"}},
	{"E", []string{"E", "F#m", "G#m", "A", "B", "C#m"}},
	{"F", []string{"F", "Gm", "Am", "Bb", "C", "Dm"}},
	{"Bb", []string{"Bb", "Cm", "Dm", "Eb", "F", "Gm"}},
	{"Am", []string{"Am", "Bdim", "C", "Dm", "Em", "F", "G", "E"}},
	{"Em", []string{"Em", "F#dim", "G", "Am", "Bm", "C", "D", "B"}},
	{"Dm", []string{"Dm", "Edim", "F", "Gm", "Am", "Bb", "C", "A"}},

	{"Eb", []string{"Eb", "Fm", "Gm", "Ab", "Bb", "Cm"}},
	{"Ab", []string{"Ab", "Bbm", "Cm", "Db", "Eb", "Fm"}},
	{"Db", []string{"Db", "Ebm", "Fm", "Gb", "Ab", "Bbm"}},
	{"B", []string{"B", "C#m", "D#m", "E", "F#", "G#m"}},
	{"F#", []string{"F#", "G#m", "A#m", "B", "C#", "D#m"}},
	{"Bm", []string{"Bm", "C#dim", "D", "Em", "F#m", "G", "A", "F#"}},
	{"F#m", []string{"F#m", "G#dim", "A", "Bm", "C#m", "D", "E", "C#"}},
	{"C#m", []string{"C#m", "D#dim", "E", "F#m", "G#m", "A", "B", "G#"}},
	{"Gm", []string{"Gm", "Adim", "Bb", "Cm", "Dm", "Eb", "F", "D"}},
	{"Cm", []string{"Cm", "Ddim", "Eb", "Fm", "Gm", "Ab", "Bb", "G"}},
	{"Fm", []string{"Fm", "Gdim", "Ab", "Bbm", "Cm", "Db", "Eb", "C"}},
	{"G#m", []string{"G#m", "A#dim", "B", "C#m", "D#m", "E", "F#", "D#"}},
	{"Bbm", []string{"Bbm", "Cdim", "Db", "Ebm", "Fm", "Gb", "Ab", "F"}},
	{"Ebm", []string{"Ebm", "Fdim", "Gb", "Abm", "Bbm", "Cb", "Db", "Bb"}},
}

// DetectKey guesses the key of a chord progression by counting how many of its
// chords belong to each key's diatonic set. Chords are reduced to root plus an
// optional "m" before matching, so "Am7" counts as "Am" and "G/B" as "G".
// Returns "C" when nothing matches.
func DetectKey(chords []string) string {
	if len(chords) == 0 {
		return defaultKey
	}

	roots := make([]string, 0, len(chords))
	for _, c := range chords {
		if m := keyRootPattern.FindStringSubmatch(c); m != nil {
			roots = append(roots, m[1])
		}
	}

	bestKey, bestScore := defaultKey, 0
	for _, key := range diatonicChords {
		score := 0
		for _, r := range roots {
			for _, kc := range key.chords {
				if r == kc {
					score++
					break
				}
			}
		}
		if score > bestScore {
			bestKey, bestScore = key.name, score
		}
	}
	return bestKey
}
