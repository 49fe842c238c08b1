package score

import (
	"fmt"

	Sm "github.com/W-Mai/simple-compose/theory"
)

// DemoProgression is the I-V-vi-IV loop the demo score is built on.
var DemoProgression = []int{1, 5, 6, 4}

// Demo builds a two track score in C major: the progression's triads on
// track 0 and a random melody on track 1, one bar per chord. The same seed
// always gives the same score.
func Demo(seed uint64) (*Score, error) {
	gen := Sm.NewMeasureGenerator(seed)
	gen.Candidates = []Sm.DurationBase{Sm.Half, Sm.Quarter, Sm.Eighth}

	scale, err := Sm.NewScale(Sm.NewTuning(Sm.C, 4), Sm.MajorScale)
	if err != nil {
		return nil, err
	}

	s := New(2)
	beats := int(s.TimeSignature().Beats)
	for _, degree := range DemoProgression {
		chord, err := Sm.C.CommonChord(degree)
		if err != nil {
			return nil, fmt.Errorf("demo chord on degree %d: %w", degree, err)
		}

		durations, err := gen.Generate(beats)
		if err != nil {
			return nil, fmt.Errorf("demo rhythm: %w", err)
		}
		melody := make([]Sm.Note, len(durations))
		for i, d := range durations {
			tone, err := scale.Degree(gen.Rand.IntN(scale.Len()) + 1)
			if err != nil {
				return nil, err
			}
			melody[i] = Sm.NewNote(tone, d)
		}

		if err := s.PushMeasures([]Measure{NewChord(chord), NewNotes(melody...)}); err != nil {
			return nil, err
		}
	}
	return s, nil
}
