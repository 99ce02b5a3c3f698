package models

// Section is one labelled block of a song form (verse, chorus, ...).
// Bars always equals len(Chords): one chord slot is one bar.
type Section struct {
	Name   string   `json:"name"`
	Chords []string `json:"chords"`
	Bars   int      `json:"bars"`
}

// SongChart is the normalized chord chart sent to the REAPER backing track generator
type SongChart struct {
	Title    string    `json:"title"`
	Artist   string    `json:"artist"`
	Key      string    `json:"key"`
	BPM      int       `json:"bpm"`
	TimeSig  string    `json:"time_sig"`
	Sections []Section `json:"sections"`
	Genre    string    `json:"genre,omitempty"`
}

// AllChords flattens every section's chords in order of appearance
func (c *SongChart) AllChords() []string {
	var all []string
	for _, s := range c.Sections {
		all = append(all, s.Chords...)
	}
	return all
}

// TotalBars returns the sum of all section bar counts
func (c *SongChart) TotalBars() int {
	total := 0
	for _, s := range c.Sections {
		total += s.Bars
	}
	return total
}
