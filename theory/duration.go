package theory

import (
	"fmt"
	"math"
	"math/big"
	"strings"
)

// DurationBase is a power-of-two note value, from Maxima down to SixtyFourth.
type DurationBase uint8

const (
	Maxima DurationBase = iota
	Longa
	Breve
	Whole
	Half
	Quarter
	Eighth
	Sixteenth
	ThirtySecond
	SixtyFourth
)

var durationNames = [...]string{
	"maxima", "longa", "breve", "whole", "half", "quarter",
	"eighth", "sixteenth", "thirty-second", "sixty-fourth",
}

// Valid reports whether b is one of the ten ladder steps.
func (b DurationBase) Valid() bool { return b <= SixtyFourth }

// Quarters is the exact length of the base in quarter notes: 32 for Maxima, 1/16 for SixtyFourth.
func (b DurationBase) Quarters() *big.Rat {
	// Maxima is 2^5 quarters, each step halves it
	exp := 5 - int(b)
	if exp >= 0 {
		return new(big.Rat).SetInt64(1 << exp)
	}
	return big.NewRat(1, 1<<(-exp))
}

func (b DurationBase) String() string {
	if !b.Valid() {
		return fmt.Sprintf("DurationBase(%d)", uint8(b))
	}
	return durationNames[b]
}

// ParseDurationBase accepts the names printed by String, case-insensitively.
func ParseDurationBase(s string) (DurationBase, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, n := range durationNames {
		if n == s {
			return DurationBase(i), nil
		}
	}
	switch s {
	case "32nd", "thirtysecond":
		return ThirtySecond, nil
	case "64th", "sixtyfourth":
		return SixtyFourth, nil
	}
	return 0, fmt.Errorf("%w: unknown base %q", ErrInvalidDuration, s)
}

// Tuplet squeezes Actual notes into the time of Base notes of BaseDuration.
type Tuplet struct {
	Actual       uint8
	Base         uint8
	BaseDuration DurationBase
}

// NewTuplet accepts the common ratios 3:2, 5:4 and 6:4, and any ratio
// that compresses (actual > base).
func NewTuplet(actual, base uint8, dur DurationBase) (Tuplet, error) {
	if actual == 0 || base == 0 {
		return Tuplet{}, fmt.Errorf("%w: %d:%d", ErrInvalidTupletRatio, actual, base)
	}
	if !dur.Valid() {
		return Tuplet{}, fmt.Errorf("%w: %s", ErrInvalidDuration, dur)
	}

	switch {
	case actual == 3 && base == 2,
		actual == 5 && base == 4,
		actual == 6 && base == 4,
		actual > base:
		return Tuplet{Actual: actual, Base: base, BaseDuration: dur}, nil
	}
	return Tuplet{}, fmt.Errorf("%w: %d:%d", ErrUnsupportedTuplet, actual, base)
}

// Ratio is base/actual, the factor applied to each note inside the tuplet.
func (t Tuplet) Ratio() *big.Rat {
	return big.NewRat(int64(t.Base), int64(t.Actual))
}

func (t Tuplet) String() string {
	return fmt.Sprintf("%d:%d", t.Actual, t.Base)
}

const maxDots = 3

// Duration is a rhythmic value: base, up to three dots, optional tuplet.
type Duration struct {
	Base   DurationBase
	Dots   uint8
	Tuplet *Tuplet
}

func NewDuration(base DurationBase) Duration {
	return Duration{Base: base}
}

// Dotted returns a copy with n dots; more than three are clamped to three.
func (d Duration) Dotted(n uint8) Duration {
	if n > maxDots {
		n = maxDots
	}
	d.Dots = n
	return d
}

// WithTuplet returns a copy inside the given tuplet.
// The tuplet's reference base must match the duration's own base.
func (d Duration) WithTuplet(t Tuplet) (Duration, error) {
	if t.BaseDuration != d.Base {
		return d, fmt.Errorf("%w: %s tuplet on a %s", ErrTupletDurationMismatch, t.BaseDuration, d.Base)
	}
	d.Tuplet = &t
	return d, nil
}

// Validate checks a Duration that may have been assembled by hand.
func (d Duration) Validate() error {
	if !d.Base.Valid() {
		return fmt.Errorf("%w: %s", ErrInvalidDuration, d.Base)
	}
	if d.Dots > maxDots {
		return fmt.Errorf("%w: %d dots", ErrInvalidDuration, d.Dots)
	}
	if d.Tuplet != nil {
		if d.Tuplet.Actual == 0 || d.Tuplet.Base == 0 {
			return fmt.Errorf("%w: %s", ErrInvalidTupletRatio, d.Tuplet)
		}
		if d.Tuplet.BaseDuration != d.Base {
			return fmt.Errorf("%w: %s tuplet on a %s", ErrTupletDurationMismatch, d.Tuplet.BaseDuration, d.Base)
		}
	}
	return nil
}

// Quarters is the exact length in quarter notes:
// base · (2 − 2⁻ᵈᵒᵗˢ) · tuplet ratio.
func (d Duration) Quarters() (*big.Rat, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}

	q := d.Base.Quarters()
	if d.Dots > 0 {
		// 1 + 1/2 + ... + 1/2^dots
		dots := big.NewRat(int64(1<<(d.Dots+1))-1, int64(1)<<d.Dots)
		q.Mul(q, dots)
	}
	if d.Tuplet != nil {
		q.Mul(q, d.Tuplet.Ratio())
	}
	return q, nil
}

// InQuarters is Quarters as a float.
func (d Duration) InQuarters() (float64, error) {
	q, err := d.Quarters()
	if err != nil {
		return 0, err
	}
	f, _ := q.Float64()
	return f, nil
}

// InSeconds is the wall-clock length at the given tempo in quarter notes per minute.
func (d Duration) InSeconds(bpm float64) (float64, error) {
	if bpm <= 0 {
		return 0, fmt.Errorf("%w: tempo %v", ErrInvalidDuration, bpm)
	}
	q, err := d.InQuarters()
	if err != nil {
		return 0, err
	}
	return 60 / bpm * q, nil
}

// DurationFromQuarters finds the largest base not above value and adds the dots that still fit.
// The result is an approximation: values that are not a base plus halvings
// come back shorter than asked, and anything below a sixty-fourth becomes one.
func DurationFromQuarters(value float64) Duration {
	if math.IsInf(value, 1) {
		return Duration{Base: Maxima, Dots: maxDots}
	}
	v := new(big.Rat)
	if value > 0 {
		v.SetFloat64(value)
	}
	return durationFromRat(v)
}

func durationFromRat(v *big.Rat) Duration {
	d := Duration{Base: SixtyFourth}
	for b := Maxima; b <= SixtyFourth; b++ {
		if b.Quarters().Cmp(v) <= 0 {
			d.Base = b
			break
		}
	}

	base := d.Base.Quarters()
	remaining := new(big.Rat).Sub(v, base)
	dot := new(big.Rat).Set(base)
	for d.Dots < maxDots && remaining.Sign() > 0 {
		dot.Quo(dot, big.NewRat(2, 1))
		if dot.Cmp(remaining) > 0 {
			break
		}
		remaining.Sub(remaining, dot)
		d.Dots++
	}
	return d
}

func (d Duration) String() string {
	var sb strings.Builder
	sb.WriteString(d.Base.String())
	sb.WriteString(strings.Repeat(".", int(d.Dots)))
	if d.Tuplet != nil {
		sb.WriteString("(" + d.Tuplet.String() + ")")
	}
	return sb.String()
}
