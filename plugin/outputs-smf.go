package plugin

import (
	"fmt"
	"io"
	"log/slog"
	"math"
	"time"

	St "github.com/W-Mai/simple-compose/types"
	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"
)

// SMFResolution is the ticks-per-quarter of exported files.
const SMFResolution = 960

// SMFOutput renders a scheduled event list as a Standard MIDI File:
// a conductor track with meter and tempo, then one track per score track.
type SMFOutput struct {
	Tempo       float64 // quarter notes per minute
	Beats       uint8
	Denominator uint8 // 4 for quarter-note beats, 8 for eighths...
}

func NewSMFOutput(bpm float64, beats, denominator uint8) *SMFOutput {
	return &SMFOutput{Tempo: bpm, Beats: beats, Denominator: denominator}
}

// Ticks converts a playback offset to absolute ticks at the output tempo.
func (so *SMFOutput) Ticks(at time.Duration) uint32 {
	q := at.Seconds() * so.Tempo / 60
	return uint32(math.Round(q * SMFResolution))
}

// Build lays the events out; they must already be in playback order.
func (so *SMFOutput) Build(events []St.TimedEvent) (*smf.SMF, error) {
	if so.Tempo <= 0 {
		return nil, fmt.Errorf("smf export: tempo must be positive, got %v", so.Tempo)
	}

	sm := smf.New()
	sm.TimeFormat = smf.MetricTicks(SMFResolution)

	var conductor smf.Track
	conductor.Add(0, smf.MetaMeter(so.Beats, so.Denominator))
	conductor.Add(0, smf.MetaTempo(so.Tempo))
	conductor.Close(0)
	if err := sm.Add(conductor); err != nil {
		return nil, fmt.Errorf("error adding tempo track: %w", err)
	}

	tracks := 0
	for _, ev := range events {
		tracks = max(tracks, ev.Track+1)
	}

	for t := range tracks {
		var track smf.Track
		track.Add(0, smf.MetaTrackSequenceName(fmt.Sprintf("track %d", t)))

		var last uint32
		for _, ev := range events {
			if ev.Track != t {
				continue
			}
			abs := so.Ticks(ev.At)
			if abs < last {
				return nil, fmt.Errorf("smf export: track %d goes back in time at %s", t, ev.At)
			}
			for _, key := range ev.Pitches {
				if ev.On {
					track.Add(abs-last, midi.NoteOn(ev.Channel, key, ev.Velocity))
				} else {
					track.Add(abs-last, midi.NoteOffVelocity(ev.Channel, key, ev.Velocity))
				}
				last = abs
			}
		}
		track.Close(0)
		if err := sm.Add(track); err != nil {
			return nil, fmt.Errorf("error adding track %d: %w", t, err)
		}
	}

	slog.Debug("SMF built",
		slog.Int("tracks", tracks),
		slog.Int("events", len(events)),
		slog.Float64("tempo", so.Tempo))
	return sm, nil
}

func (so *SMFOutput) WriteTo(w io.Writer, events []St.TimedEvent) (int64, error) {
	sm, err := so.Build(events)
	if err != nil {
		return 0, err
	}
	return sm.WriteTo(w)
}

func (so *SMFOutput) WriteFile(path string, events []St.TimedEvent) error {
	sm, err := so.Build(events)
	if err != nil {
		return err
	}
	if err := sm.WriteFile(path); err != nil {
		slog.Error("Could not write MIDI file", slog.String("path", path), slog.Any("error", err))
		return fmt.Errorf("error writing MIDI file: %w", err)
	}
	slog.Info("MIDI file saved", slog.String("path", path))
	return nil
}

func (so *SMFOutput) Type() string { return "SMF" }
