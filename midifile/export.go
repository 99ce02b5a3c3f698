// Package midifile writes arranged backing parts as Standard MIDI Files.
package midifile

import (
	"fmt"
	"io"
	"log"
	"math"
	"os"
	"slices"
	"sort"

	"github.com/Conceptual-Machines/magda-reaper-mcp/agents/arranger"
	"github.com/Conceptual-Machines/magda-reaper-mcp/agents/drummer"
	"github.com/Conceptual-Machines/magda-reaper-mcp/chart"
	"github.com/Conceptual-Machines/magda-reaper-mcp/models"
	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"
)

// TicksPerQuarter is the file resolution, matching REAPER's default PPQ
const TicksPerQuarter = 960

type timedMessage struct {
	tick uint32
	off  bool
	msg  midi.Message
}

// WriteParts writes a format 1 SMF: a conductor track with tempo and meter
// followed by one named track per part. Drums always go to channel 10.
func WriteParts(w io.Writer, c *models.SongChart, parts map[string][]models.NoteEvent) error {
	if c == nil {
		return fmt.Errorf("chart is nil")
	}
	if len(parts) == 0 {
		return fmt.Errorf("no parts to export")
	}

	s := smf.NewSMF1()
	s.TimeFormat = smf.MetricTicks(TicksPerQuarter)

	// MeterParts only yields numerators up to 255 and power of two denominators
	num, den := chart.MeterParts(c.TimeSig)
	bpm := c.BPM
	if bpm <= 0 {
		bpm = 120
	}

	var conductor smf.Track
	conductor.Add(0, smf.MetaTrackSequenceName(trackTitle(c)))
	conductor.Add(0, smf.MetaTempo(float64(bpm)))
	conductor.Add(0, smf.MetaMeter(uint8(num), uint8(den)))
	conductor.Close(0)
	if err := s.Add(conductor); err != nil {
		return fmt.Errorf("failed to add conductor track: %w", err)
	}

	for _, name := range partOrder(parts) {
		track := buildTrack(name, parts[name])
		if err := s.Add(track); err != nil {
			return fmt.Errorf("failed to add %s track: %w", name, err)
		}
	}

	if _, err := s.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write MIDI file: %w", err)
	}
	return nil
}

// WriteFile renders parts to a .mid file on disk
func WriteFile(path string, c *models.SongChart, parts map[string][]models.NoteEvent) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	if err := WriteParts(f, c, parts); err != nil {
		f.Close()
		os.Remove(path)
		return err
	}
	log.Printf("💾 MIDI EXPORTED: %s (%d parts)", path, len(parts))
	return f.Close()
}

func buildTrack(name string, notes []models.NoteEvent) smf.Track {
	events := make([]timedMessage, 0, len(notes)*2)
	for _, n := range notes {
		channel := uint8(clamp(n.Channel, 0, 15))
		if name == arranger.InstrumentDrums {
			channel = drummer.DrumChannel
		}
		key := uint8(clamp(n.MidiNoteNumber, 0, 127))
		start := beatsToTicks(n.StartBeats)
		end := beatsToTicks(n.EndBeats())
		if end <= start {
			end = start + 1
		}
		events = append(events,
			timedMessage{tick: start, msg: midi.NoteOn(channel, key, uint8(clamp(n.Velocity, 1, 127)))},
			timedMessage{tick: end, off: true, msg: midi.NoteOff(channel, key)},
		)
	}

	// note-offs sort first so repeated keys on the same tick retrigger
	sort.SliceStable(events, func(i, j int) bool {
		if events[i].tick != events[j].tick {
			return events[i].tick < events[j].tick
		}
		return events[i].off && !events[j].off
	})

	var track smf.Track
	track.Add(0, smf.MetaTrackSequenceName(name))
	var last uint32
	for _, ev := range events {
		track.Add(ev.tick-last, ev.msg)
		last = ev.tick
	}
	track.Close(0)
	return track
}

// partOrder lists known instruments first, then anything else alphabetically
func partOrder(parts map[string][]models.NoteEvent) []string {
	names := make([]string, 0, len(parts))
	for _, instrument := range arranger.ValidInstruments {
		if _, ok := parts[instrument]; ok {
			names = append(names, instrument)
		}
	}
	var rest []string
	for name := range parts {
		if !slices.Contains(arranger.ValidInstruments, name) {
			rest = append(rest, name)
		}
	}
	sort.Strings(rest)
	return append(names, rest...)
}

func trackTitle(c *models.SongChart) string {
	if c.Artist == "" {
		return c.Title
	}
	return c.Title + " - " + c.Artist
}

func beatsToTicks(beats float64) uint32 {
	if beats <= 0 {
		return 0
	}
	return uint32(math.Round(beats * TicksPerQuarter))
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
