package theory

import (
	"fmt"
	"math/big"
	"math/rand/v2"
)

// MeasureGenerator draws random rhythms that fill a measure exactly.
type MeasureGenerator struct {
	Candidates []DurationBase
	Rand       *rand.Rand
}

// NewMeasureGenerator draws halves and quarters from a seeded source.
func NewMeasureGenerator(seed uint64) *MeasureGenerator {
	return &MeasureGenerator{
		Candidates: []DurationBase{Half, Quarter},
		Rand:       rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
	}
}

// Generate returns durations summing to exactly beat quarter notes.
// Drawing stops at the first candidate that would overshoot;
// the remainder is then filled with the longest values that fit.
func (g *MeasureGenerator) Generate(beat int) ([]Duration, error) {
	if beat <= 0 {
		return nil, fmt.Errorf("%w: measure of %d beats", ErrInvalidDuration, beat)
	}
	if len(g.Candidates) == 0 {
		return nil, fmt.Errorf("%w: no candidate durations", ErrInvalidDuration)
	}

	remaining := new(big.Rat).SetInt64(int64(beat))
	var out []Duration

	for remaining.Sign() > 0 {
		c := g.Candidates[g.Rand.IntN(len(g.Candidates))]
		q := c.Quarters()
		if q.Cmp(remaining) > 0 {
			break
		}
		out = append(out, NewDuration(c))
		remaining.Sub(remaining, q)
	}

	for remaining.Sign() > 0 {
		d := durationFromRat(remaining)
		q, err := d.Quarters()
		if err != nil {
			return nil, err
		}
		if q.Cmp(remaining) > 0 {
			return nil, fmt.Errorf("%w: cannot fill %s quarters", ErrInvalidDuration, remaining.RatString())
		}
		out = append(out, d)
		remaining.Sub(remaining, q)
	}

	return out, nil
}
