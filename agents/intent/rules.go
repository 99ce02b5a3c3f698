package intent

import (
	"regexp"
	"strings"
)

// BackingRequest is a song/artist pair pulled out of a natural language request
type BackingRequest struct {
	Song   string `json:"song"`
	Artist string `json:"artist"`
}

var backingPatterns = []*regexp.Regexp{
	// "backing track for Song by Artist", "jam track Song by Artist"
	regexp.MustCompile(`(?i)(?:backing|jam)\s+track\s+(?:for\s+)?["']?(.+?)["']?\s+by\s+["']?(.+?)["']?$`),
	// "Song by Artist"
	regexp.MustCompile(`(?i)^["']?(.+?)["']?\s+by\s+["']?(.+?)["']?$`),
}

// ParseBackingRequest extracts song and artist from requests such as
// "backing track for Wonderwall by Oasis" or `"Bohemian Rhapsody" by "Queen"`.
func ParseBackingRequest(description string) (BackingRequest, bool) {
	desc := strings.TrimSpace(description)
	for _, pattern := range backingPatterns {
		m := pattern.FindStringSubmatch(desc)
		if m == nil {
			continue
		}
		req := BackingRequest{
			Song:   strings.Trim(strings.TrimSpace(m[1]), `'"`),
			Artist: strings.Trim(strings.TrimSpace(m[2]), `'"`),
		}
		if req.Song == "" || req.Artist == "" {
			continue
		}
		return req, true
	}
	return BackingRequest{}, false
}

type sessionAlias struct {
	phrase      string
	sessionType string
}

// sessionAliases is checked in order, so earlier phrases win substring matches
var sessionAliases = []sessionAlias{
	{"guitar", "guitar"},
	{"guitar recording", "guitar"},
	{"record guitar", "guitar"},
	{"guitar session", "guitar"},

	{"production", "production"},
	{"full production", "production"},
	{"full session", "production"},
	{"produce", "production"},
	{"write music", "production"},

	{"songwriting", "songwriting"},
	{"sketch", "songwriting"},
	{"idea", "songwriting"},
	{"quick idea", "songwriting"},
	{"write a song", "songwriting"},

	{"jam", "jam"},
	{"loop", "jam"},
	{"jam session", "jam"},
	{"jam loop", "jam"},
	{"looping", "jam"},

	{"podcast", "podcast"},
	{"voiceover", "podcast"},
	{"voice over", "podcast"},
	{"interview", "podcast"},
	{"recording podcast", "podcast"},

	{"mixing", "mixing"},
	{"mix", "mixing"},
	{"mix stems", "mixing"},
	{"stem mixing", "mixing"},
	{"import stems", "mixing"},

	{"tone", "tone"},
	{"tone design", "tone"},
	{"amp comparison", "tone"},
	{"compare amps", "tone"},
	{"dial in tone", "tone"},

	{"live", "live"},
	{"live performance", "live"},
	{"gig", "live"},
	{"concert", "live"},
	{"perform", "live"},

	{"transcription", "transcription"},
	{"learn", "transcription"},
	{"learning", "transcription"},
	{"practice", "transcription"},
	{"transcribe", "transcription"},
	{"learn a song", "transcription"},
}

// ResolveSessionType maps a description such as "set up for guitar recording"
// to a session template key. Exact phrase matches win over substring matches.
func ResolveSessionType(description string) (string, bool) {
	desc := strings.ToLower(strings.TrimSpace(description))
	if desc == "" {
		return "", false
	}

	for _, a := range sessionAliases {
		if desc == a.phrase {
			return a.sessionType, true
		}
	}
	for _, a := range sessionAliases {
		if strings.Contains(desc, a.phrase) {
			return a.sessionType, true
		}
	}
	return "", false
}
