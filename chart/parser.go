package chart

import (
	"regexp"
	"strings"

	"github.com/Conceptual-Machines/magda-reaper-mcp/models"
)

const (
	defaultBPM     = 120
	defaultTimeSig = "4/4"
)

var (
	sectionHeaderPattern = regexp.MustCompile(`^\[([^\]]+)\]`)
	trailingNumber       = regexp.MustCompile(`\s*\d+$`)
)

// Options carries the chart metadata known before parsing.
// Zero values mean "not provided": BPM <= 0 becomes 120, an empty TimeSig
// becomes "4/4" and an empty Key is detected from the chords.
type Options struct {
	Title   string
	Artist  string
	BPM     int
	Key     string
	TimeSig string
}

// sectionBuilder accumulates chords for the section currently open
type sectionBuilder struct {
	name      string
	chords    []string
	prevChord string
}

func (b *sectionBuilder) consume(line string) {
	for _, token := range strings.Fields(line) {
		switch {
		case IsRepeatMarker(token):
			if b.prevChord != "" {
				b.chords = append(b.chords, b.prevChord)
			}
		case IsChordToken(token):
			b.chords = append(b.chords, token)
			b.prevChord = token
		}
	}
}

func (b *sectionBuilder) section() (models.Section, bool) {
	if b.name == "" || len(b.chords) == 0 {
		return models.Section{}, false
	}
	return models.Section{
		Name:   b.name,
		Chords: b.chords,
		Bars:   len(b.chords),
	}, true
}

// ParseChordChart parses chord chart text into a SongChart.
//
// The text is line oriented: "[Section]" headers open a section, following
// lines contribute whitespace separated chord tokens, and "." repeats the
// previous chord of the section. Lines before the first header, unknown
// tokens and sections without chords are dropped. It never fails; the worst
// case is a chart with no sections.
func ParseChordChart(rawText string, opts Options) *models.SongChart {
	sections := make([]models.Section, 0)
	var current *sectionBuilder

	flush := func() {
		if current == nil {
			return
		}
		if s, ok := current.section(); ok {
			sections = append(sections, s)
		}
	}

	for _, line := range strings.Split(rawText, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if m := sectionHeaderPattern.FindStringSubmatch(line); m != nil {
			flush()
			current = &sectionBuilder{name: NormalizeSectionName(m[1])}
			continue
		}

		if current != nil {
			current.consume(line)
		}
	}
	flush()

	chart := &models.SongChart{
		Title:    opts.Title,
		Artist:   opts.Artist,
		Key:      opts.Key,
		BPM:      opts.BPM,
		TimeSig:  opts.TimeSig,
		Sections: sections,
	}
	if chart.Key == "" {
		chart.Key = DetectKey(chart.AllChords())
	}
	if chart.BPM <= 0 {
		chart.BPM = defaultBPM
	}
	if chart.TimeSig == "" {
		chart.TimeSig = defaultTimeSig
	}
	return chart
}

// NormalizeSectionName turns a header label into a section id:
// "VERSE 1" -> "verse", "Pre-Chorus" -> "pre-chorus", "Guitar Solo" -> "guitar-solo".
func NormalizeSectionName(raw string) string {
	name := strings.ToLower(strings.TrimSpace(raw))
	name = trailingNumber.ReplaceAllString(name, "")
	return strings.ReplaceAll(name, " ", "-")
}
