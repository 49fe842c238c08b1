package theory

import (
	"fmt"
	"slices"
	"strings"
)

type ScaleType uint8

const (
	MajorScale ScaleType = iota
	NaturalMinor
	HarmonicMinor
	MelodicMinor
	Dorian
	Phrygian
	Lydian
	Mixolydian
	Locrian
	PentatonicMajor
	PentatonicMinor
	Blues
	WholeTone
	Octatonic
	Chromatic
	BebopDominant
	Hijaz
	Hirajoshi
	InSen
	CustomScale
)

var scaleNames = [...]string{
	"major", "natural-minor", "harmonic-minor", "melodic-minor",
	"dorian", "phrygian", "lydian", "mixolydian", "locrian",
	"pentatonic-major", "pentatonic-minor", "blues", "whole-tone",
	"octatonic", "chromatic", "bebop-dominant", "hijaz", "hirajoshi",
	"in-sen", "custom",
}

func (st ScaleType) String() string {
	if int(st) >= len(scaleNames) {
		return fmt.Sprintf("ScaleType(%d)", uint8(st))
	}
	return scaleNames[st]
}

// ParseScaleType accepts the names printed by String.
func ParseScaleType(s string) (ScaleType, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, n := range scaleNames {
		if n == s {
			return ScaleType(i), nil
		}
	}
	return 0, fmt.Errorf("%w: scale type %q", ErrInvalidScale, s)
}

// Semitone steps between consecutive scale tones, each pattern spanning one octave.
var scaleSteps = map[ScaleType][]int{
	MajorScale:      {2, 2, 1, 2, 2, 2, 1},
	NaturalMinor:    {2, 1, 2, 2, 1, 2, 2},
	HarmonicMinor:   {2, 1, 2, 2, 1, 3, 1},
	MelodicMinor:    {2, 1, 2, 2, 2, 2, 1}, // ascending form
	Dorian:          {2, 1, 2, 2, 2, 1, 2},
	Phrygian:        {1, 2, 2, 2, 1, 2, 2},
	Lydian:          {2, 2, 2, 1, 2, 2, 1},
	Mixolydian:      {2, 2, 1, 2, 2, 1, 2},
	Locrian:         {1, 2, 2, 1, 2, 2, 2},
	PentatonicMajor: {2, 2, 3, 2, 3},
	PentatonicMinor: {3, 2, 2, 3, 2},
	Blues:           {3, 2, 1, 1, 3, 2},
	WholeTone:       {2, 2, 2, 2, 2, 2},
	Octatonic:       {2, 1, 2, 1, 2, 1, 2, 1}, // whole-half
	Chromatic:       {1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1},
	BebopDominant:   {2, 2, 1, 2, 2, 1, 1, 1},
	Hijaz:           {1, 3, 1, 2, 1, 2, 2},
	Hirajoshi:       {2, 1, 4, 1, 4},
	InSen:           {1, 4, 2, 3, 2},
}

// scaleOctaveSpan is how many octaves NewScale caches.
const scaleOctaveSpan = 2

// Scale is a root plus a step pattern, with its pitches generated once.
type Scale struct {
	Root  Tuning
	Type  ScaleType
	steps []int
	notes []Tuning
}

// NewScale resolves the step pattern for a named scale type.
func NewScale(root Tuning, st ScaleType) (Scale, error) {
	steps, ok := scaleSteps[st]
	if !ok {
		return Scale{}, fmt.Errorf("%w: %s has no fixed pattern", ErrInvalidScale, st)
	}
	return newScale(root, st, steps)
}

// NewCustomScale uses caller-supplied steps, which must be positive and total one octave.
func NewCustomScale(root Tuning, steps []int) (Scale, error) {
	if len(steps) == 0 {
		return Scale{}, fmt.Errorf("%w: empty step pattern", ErrInvalidScale)
	}
	sum := 0
	for _, s := range steps {
		if s <= 0 {
			return Scale{}, fmt.Errorf("%w: step %d", ErrInvalidScale, s)
		}
		sum += s
	}
	if sum != 12 {
		return Scale{}, fmt.Errorf("%w: steps span %d semitones", ErrInvalidScale, sum)
	}
	return newScale(root, CustomScale, steps)
}

func newScale(root Tuning, st ScaleType, steps []int) (Scale, error) {
	if root.Class == Silent {
		return Scale{}, fmt.Errorf("%w: scale on a silent root", ErrInvalidPitch)
	}
	sc := Scale{Root: root, Type: st, steps: slices.Clone(steps)}
	sc.notes = sc.GenerateNotes(scaleOctaveSpan)
	return sc, nil
}

// Steps returns a copy of the step pattern.
func (s Scale) Steps() []int { return slices.Clone(s.steps) }

// Len is the number of tones per octave.
func (s Scale) Len() int { return len(s.steps) }

// Offsets are the semitone distances of each tone from the root within one octave.
func (s Scale) Offsets() []int {
	out := make([]int, len(s.steps))
	acc := 0
	for i, step := range s.steps {
		out[i] = acc
		acc += step
	}
	return out
}

// Intervals are the tones' distances from the root as labelled intervals.
func (s Scale) Intervals() []Interval {
	offsets := s.Offsets()
	out := make([]Interval, 0, len(offsets))
	for _, o := range offsets {
		iv, err := IntervalFromSemitones(o)
		if err != nil {
			continue
		}
		out = append(out, iv)
	}
	return out
}

// GenerateNotes walks the pattern once and repeats it up through the given number of octaves.
func (s Scale) GenerateNotes(octaves int) []Tuning {
	offsets := s.Offsets()
	out := make([]Tuning, 0, len(offsets)*max(octaves, 0))
	for o := range max(octaves, 0) {
		for _, off := range offsets {
			out = append(out, s.Root.Transpose(off+12*o))
		}
	}
	return out
}

// Notes returns the cached pitches.
func (s Scale) Notes() []Tuning { return slices.Clone(s.notes) }

// Contains reports pitch-class membership regardless of octave.
func (s Scale) Contains(pc PitchClass) bool {
	if pc == Silent {
		return false
	}
	for _, off := range s.Offsets() {
		if s.Root.Class.Modulation(off) == pc {
			return true
		}
	}
	return false
}

// Degree returns the n-th tone (1-based), wrapping at the pattern length.
func (s Scale) Degree(n int) (Tuning, error) {
	if n < 1 {
		return Tuning{}, fmt.Errorf("%w: degree %d", ErrTheoryViolation, n)
	}
	if len(s.steps) == 0 {
		return Tuning{}, fmt.Errorf("%w: empty scale", ErrInvalidScale)
	}
	idx := (n - 1) % len(s.steps)
	return s.notes[idx], nil
}

func (s Scale) String() string {
	return fmt.Sprintf("%s %s", s.Root, s.Type)
}
