package score

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"slices"

	Sm "github.com/W-Mai/simple-compose/theory"
)

var (
	ErrInvalidTempo         = errors.New("invalid tempo")
	ErrInvalidTimeSignature = errors.New("invalid time signature")
	ErrRowWidth             = errors.New("measure row does not match track count")
)

const (
	DefaultTempo = 120.0
	DefaultBeats = 4
)

// TimeSignature counts Beats of Unit per measure.
type TimeSignature struct {
	Beats uint8
	Unit  Sm.DurationBase
}

func (ts TimeSignature) String() string {
	return fmt.Sprintf("%d/%s", ts.Beats, ts.Unit)
}

// Denominator is the unit as written under the beat count, 4 for quarters.
// Units longer than a whole note have none.
func (ts TimeSignature) Denominator() (uint8, error) {
	if ts.Unit < Sm.Whole || !ts.Unit.Valid() {
		return 0, fmt.Errorf("%w: no denominator for %s", ErrInvalidTimeSignature, ts.Unit)
	}
	return 1 << (ts.Unit - Sm.Whole), nil
}

// Track is an append-only sequence of measures.
type Track struct {
	measures []Measure
}

func (t Track) Len() int { return len(t.measures) }

// Measure returns the i-th measure; past the end of the track it is a rest.
func (t Track) Measure(i int) Measure {
	if i < 0 || i >= len(t.measures) {
		return NewRest()
	}
	return t.measures[i]
}

// Measures returns a copy of the track's measures.
func (t Track) Measures() []Measure { return slices.Clone(t.measures) }

// Score holds a fixed number of parallel tracks, a tempo in beats per minute,
// and a time signature. A beat lasts 60/tempo seconds: a measure spans Beats of them
// and a quarter note of duration spans one. Measures are only ever added one full
// row at a time.
type Score struct {
	tracks  []Track
	tempo   float64
	timeSig TimeSignature
}

// New creates a score with trackCount empty tracks at 120 bpm in 4/4.
func New(trackCount int) *Score {
	return &Score{
		tracks:  make([]Track, max(trackCount, 0)),
		tempo:   DefaultTempo,
		timeSig: TimeSignature{Beats: DefaultBeats, Unit: Sm.Quarter},
	}
}

func (s *Score) WithTempo(bpm float64) *Score {
	s.tempo = bpm
	return s
}

func (s *Score) WithTimeSignature(beats uint8, unit Sm.DurationBase) *Score {
	s.timeSig = TimeSignature{Beats: beats, Unit: unit}
	return s
}

func (s *Score) Tempo() float64 { return s.tempo }

func (s *Score) TimeSignature() TimeSignature { return s.timeSig }

func (s *Score) TrackCount() int { return len(s.tracks) }

// Track returns the i-th track; out of range yields an empty track.
func (s *Score) Track(i int) Track {
	if i < 0 || i >= len(s.tracks) {
		return Track{}
	}
	return s.tracks[i]
}

// MeasureCount is the length of the longest track.
func (s *Score) MeasureCount() int {
	n := 0
	for _, t := range s.tracks {
		n = max(n, t.Len())
	}
	return n
}

// NewMeasures hands fill a row of rests, one per track, and appends the row once fill returns.
func (s *Score) NewMeasures(fill func(row []Measure)) {
	row := make([]Measure, len(s.tracks))
	if fill != nil {
		fill(row)
	}
	for i := range s.tracks {
		s.tracks[i].measures = append(s.tracks[i].measures, row[i])
	}
}

// PushMeasures appends a prepared row; it must have one measure per track.
func (s *Score) PushMeasures(row []Measure) error {
	if len(row) != len(s.tracks) {
		slog.Error("Measure row rejected",
			slog.Int("row", len(row)),
			slog.Int("tracks", len(s.tracks)))
		return fmt.Errorf("%w: %d measures for %d tracks", ErrRowWidth, len(row), len(s.tracks))
	}
	for i := range s.tracks {
		s.tracks[i].measures = append(s.tracks[i].measures, row[i])
	}
	return nil
}

// Validate checks the tempo and time signature.
func (s *Score) Validate() error {
	if s.tempo <= 0 || math.IsNaN(s.tempo) || math.IsInf(s.tempo, 0) {
		return fmt.Errorf("%w: %v bpm", ErrInvalidTempo, s.tempo)
	}
	if s.timeSig.Beats == 0 || !s.timeSig.Unit.Valid() {
		return fmt.Errorf("%w: %s", ErrInvalidTimeSignature, s.timeSig)
	}
	return nil
}
