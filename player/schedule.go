package player

import (
	"fmt"
	"log/slog"
	"math"
	"math/big"
	"slices"
	"time"

	Ss "github.com/W-Mai/simple-compose/score"
	Sm "github.com/W-Mai/simple-compose/theory"
	St "github.com/W-Mai/simple-compose/types"
)

// MaxChannels bounds how many tracks get scheduled, one MIDI channel each.
const MaxChannels = 16

var nanosPerSecond = big.NewRat(int64(time.Second), 1)

// toDuration rounds exact seconds to the nearest nanosecond.
func toDuration(sec *big.Rat) time.Duration {
	ns, _ := new(big.Rat).Mul(sec, nanosPerSecond).Float64()
	return time.Duration(math.Round(ns))
}

// Schedule flattens a score into note events ordered for dispatch.
// Track i plays on channel i; tracks past the sixteenth are not scheduled.
// A chord sounds for its whole measure, notes run end to end from the measure start,
// and rests emit nothing. Events at the same instant go note-offs first,
// then by ascending track, then in the order they were produced.
func Schedule(s *Ss.Score) ([]St.TimedEvent, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}

	tempo := new(big.Rat)
	if tempo.SetFloat64(s.Tempo()) == nil {
		return nil, fmt.Errorf("%w: %v bpm", Ss.ErrInvalidTempo, s.Tempo())
	}
	ts := s.TimeSignature()

	// seconds per beat and per measure; note lengths count quarters, one beat each
	beat := new(big.Rat).Quo(big.NewRat(60, 1), tempo)
	measure := new(big.Rat).Mul(beat, big.NewRat(int64(ts.Beats), 1))

	tracks := s.TrackCount()
	if tracks > MaxChannels {
		slog.Warn("Score has more tracks than MIDI channels, extra tracks are dropped",
			slog.Int("tracks", tracks),
			slog.Int("channels", MaxChannels))
		tracks = MaxChannels
	}

	var events []St.TimedEvent
	for t := range tracks {
		track := s.Track(t)
		for m := range track.Len() {
			start := new(big.Rat).Mul(measure, big.NewRat(int64(m), 1))
			evs, err := scheduleMeasure(track.Measure(m), t, m, start, measure, beat)
			if err != nil {
				return nil, fmt.Errorf("track %d measure %d: %w", t, m, err)
			}
			events = append(events, evs...)
		}
	}

	slices.SortStableFunc(events, compareEvents)

	slog.Debug("Score scheduled",
		slog.Int("tracks", tracks),
		slog.Int("events", len(events)))
	return events, nil
}

func compareEvents(a, b St.TimedEvent) int {
	if a.At != b.At {
		if a.At < b.At {
			return -1
		}
		return 1
	}
	if a.On != b.On {
		if !a.On {
			return -1
		}
		return 1
	}
	return a.Track - b.Track
}

func scheduleMeasure(ms Ss.Measure, track, idx int, start, length, beat *big.Rat) ([]St.TimedEvent, error) {
	ch := uint8(track)

	switch ms.Kind() {
	case Ss.KindChord:
		c, _ := ms.Chord()
		keys, err := c.MidiNumbers()
		if err != nil {
			return nil, err
		}
		end := new(big.Rat).Add(start, length)
		return []St.TimedEvent{
			{At: toDuration(start), Track: track, Channel: ch, Measure: idx, On: true, Pitches: keys, Velocity: Sm.DefaultVelocity},
			{At: toDuration(end), Track: track, Channel: ch, Measure: idx, On: false, Pitches: slices.Clone(keys), Velocity: Sm.DefaultVelocity},
		}, nil

	case Ss.KindNotes:
		var events []St.TimedEvent
		offset := new(big.Rat)
		for i, n := range ms.Notes() {
			q, err := n.Duration.Quarters()
			if err != nil {
				return nil, fmt.Errorf("note %d: %w", i, err)
			}
			on := new(big.Rat).Add(start, new(big.Rat).Mul(offset, beat))
			offset.Add(offset, q)
			if n.IsRest() {
				continue
			}

			key, err := n.Pitch.MidiNumber()
			if err != nil {
				return nil, fmt.Errorf("note %d: %w", i, err)
			}
			off := new(big.Rat).Add(start, new(big.Rat).Mul(offset, beat))
			events = append(events,
				St.TimedEvent{At: toDuration(on), Track: track, Channel: ch, Measure: idx, On: true, Pitches: []uint8{key}, Velocity: n.Velocity},
				St.TimedEvent{At: toDuration(off), Track: track, Channel: ch, Measure: idx, On: false, Pitches: []uint8{key}, Velocity: n.Velocity},
			)
		}
		return events, nil
	}
	return nil, nil
}
