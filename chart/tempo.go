package chart

import "strings"

// genreTempos holds a typical tempo per genre
var genreTempos = map[string]int{
	"rock":    120,
	"pop":     115,
	"blues":   90,
	"jazz":    140,
	"funk":    100,
	"country": 110,
	"ballad":  72,
	"reggae":  80,
	"latin":   105,
	"metal":   140,
	"punk":    170,
	"r&b":     95,
}

// EstimateTempo returns a typical BPM for genre (case-insensitive), or 120 for unknown genres
func EstimateTempo(genre string) int {
	if bpm, ok := genreTempos[strings.ToLower(genre)]; ok {
		return bpm
	}
	return defaultBPM
}
