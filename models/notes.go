package models

// NoteEvent represents a single musical note with timing and pitch information
type NoteEvent struct {
	MidiNoteNumber int     `json:"midiNoteNumber"`
	Velocity       int     `json:"velocity"`
	StartBeats     float64 `json:"startBeats"`
	DurationBeats  float64 `json:"durationBeats"`
	Channel        int     `json:"channel,omitempty"`
}

// EndBeats returns the beat position where the note is released
func (n NoteEvent) EndBeats() float64 {
	return n.StartBeats + n.DurationBeats
}
