package theory

import (
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"
)

type IntervalQuality uint8

const (
	Perfect IntervalQuality = iota
	Maj
	Min
	Aug
	Dim
)

func (q IntervalQuality) String() string {
	switch q {
	case Perfect:
		return "P"
	case Maj:
		return "M"
	case Min:
		return "m"
	case Aug:
		return "Aug"
	case Dim:
		return "Dim"
	}
	return "?"
}

type Consonance uint8

const (
	Consonant Consonance = iota
	ImperfectConsonant
	Dissonant
)

func (c Consonance) String() string {
	switch c {
	case Consonant:
		return "consonant"
	case ImperfectConsonant:
		return "imperfect"
	}
	return "dissonant"
}

// Interval is a labelled signed distance between two pitches.
// Semitones carry the direction; Descending mirrors their sign.
type Interval struct {
	Quality    IntervalQuality
	Degree     uint8
	Semitones  int8
	descending bool
}

// Base semitones for a simple degree, indexed by degree mod 7.
var degreeSemitones = [7]int{11, 0, 2, 4, 5, 7, 9}

// Quality and degree for each semitone residue of an ascending interval.
var residueIntervals = [12]struct {
	quality IntervalQuality
	degree  uint8
}{
	{Perfect, 1},
	{Min, 2},
	{Maj, 2},
	{Min, 3},
	{Maj, 3},
	{Perfect, 4},
	{Aug, 4},
	{Perfect, 5},
	{Min, 6},
	{Maj, 6},
	{Min, 7},
	{Maj, 7},
}

// Degrees each quality may label. Augmented and diminished take any degree
// except that nothing sits below a unison.
var (
	perfectDegrees   = []uint8{1, 4, 5, 8}
	imperfectDegrees = []uint8{2, 3, 6, 7, 9, 10}
)

func validDegree(degree uint8) error {
	if degree < 1 || degree > 13 {
		return fmt.Errorf("%w: %d", ErrInvalidIntervalDegree, degree)
	}
	return nil
}

func calculateSemitones(quality IntervalQuality, degree uint8) (int, error) {
	if err := validDegree(degree); err != nil {
		return 0, err
	}

	base := degreeSemitones[degree%7] + 12*int((degree-1)/7)

	switch quality {
	case Perfect:
		if !slices.Contains(perfectDegrees, degree) {
			return 0, fmt.Errorf("%w: perfect %d", ErrInvalidIntervalQuality, degree)
		}
		return base, nil
	case Maj:
		if !slices.Contains(imperfectDegrees, degree) {
			return 0, fmt.Errorf("%w: major %d", ErrInvalidIntervalQuality, degree)
		}
		return base, nil
	case Min:
		if !slices.Contains(imperfectDegrees, degree) {
			return 0, fmt.Errorf("%w: minor %d", ErrInvalidIntervalQuality, degree)
		}
		return base - 1, nil
	case Aug:
		return base + 1, nil
	case Dim:
		if degree == 1 {
			return 0, fmt.Errorf("%w: diminished unison", ErrInvalidIntervalQuality)
		}
		return base - 1, nil
	}
	return 0, fmt.Errorf("%w: unknown quality %d", ErrInvalidIntervalQuality, quality)
}

// NewInterval builds an ascending interval from its quality and degree.
func NewInterval(quality IntervalQuality, degree uint8) (Interval, error) {
	s, err := calculateSemitones(quality, degree)
	if err != nil {
		return Interval{}, err
	}
	return Interval{Quality: quality, Degree: degree, Semitones: int8(s)}, nil
}

// mustInterval is for the fixed tables below, whose entries are known to be legal.
func mustInterval(quality IntervalQuality, degree uint8) Interval {
	iv, err := NewInterval(quality, degree)
	if err != nil {
		panic(err)
	}
	return iv
}

// IntervalFromSemitones classifies a signed semitone count.
// Six semitones read as an augmented fourth going up and a diminished fifth going down.
// Compound spans whose plain label is not in the table take the first augmented
// or diminished spelling that is; spans with no legal spelling are an error.
func IntervalFromSemitones(semitones int) (Interval, error) {
	if semitones < math.MinInt8+1 || semitones > math.MaxInt8 {
		return Interval{}, fmt.Errorf("%w: %d semitones", ErrInvalidIntervalDegree, semitones)
	}
	descending := semitones < 0
	abs := semitones
	if descending {
		abs = -abs
	}

	r := residueIntervals[abs%12]
	quality, degree := r.quality, int(r.degree)
	if abs%12 == 6 && descending {
		quality, degree = Dim, 5
	}
	degree += 7 * (abs / 12)

	iv := Interval{Semitones: int8(semitones), descending: descending}
	if degree <= 13 {
		if s, err := calculateSemitones(quality, uint8(degree)); err == nil && s == abs {
			iv.Quality, iv.Degree = quality, uint8(degree)
			return iv, nil
		}
	}

	for d := uint8(1); d <= 13; d++ {
		for _, q := range []IntervalQuality{Aug, Dim} {
			if s, err := calculateSemitones(q, d); err == nil && s == abs {
				iv.Quality, iv.Degree = q, d
				return iv, nil
			}
		}
	}

	if degree > 13 {
		return Interval{}, fmt.Errorf("%w: %d semitones spans degree %d", ErrInvalidIntervalDegree, semitones, degree)
	}
	return Interval{}, fmt.Errorf("%w: no spelling for %d semitones", ErrInvalidIntervalQuality, semitones)
}

// IntervalBetween measures the distance from start up (or down) to end.
func IntervalBetween(start, end PitchClass) (Interval, error) {
	if start == Silent || end == Silent {
		return Interval{}, fmt.Errorf("%w: interval to a silent pitch class", ErrInvalidPitch)
	}
	return IntervalFromSemitones(int(end) - int(start))
}

// IsDescending reports whether the interval points downward.
func (iv Interval) IsDescending() bool { return iv.descending }

// Descending returns the same interval pointing downward.
func (iv Interval) Descending() Interval {
	if iv.descending {
		return iv
	}
	iv.descending = true
	iv.Semitones = -iv.Semitones
	return iv
}

// Abs returns the unsigned semitone size.
func (iv Interval) Abs() int {
	if iv.Semitones < 0 {
		return -int(iv.Semitones)
	}
	return int(iv.Semitones)
}

// Invert complements a simple interval within the octave: degree 9 minus the
// simple degree, qualities swapped, 12 minus the semitones.
// Compound intervals are reduced first; unison and octave swap with each other.
func (iv Interval) Invert() Interval {
	simple := (iv.Degree-1)%7 + 1

	var degree uint8
	switch {
	case iv.Degree == 1:
		degree = 8
	case simple == 1:
		degree = 1
	default:
		degree = 9 - simple
	}

	quality := iv.Quality
	switch quality {
	case Maj:
		quality = Min
	case Min:
		quality = Maj
	case Aug:
		quality = Dim
	case Dim:
		quality = Aug
	}

	s := (12 - iv.Abs()%12) % 12
	if iv.Degree == 1 {
		s = 12
	}
	out := Interval{Quality: quality, Degree: degree, Semitones: int8(s)}
	if iv.descending {
		return out.Descending()
	}
	return out
}

// Consonance classifies the interval into perfect, imperfect or dissonant.
func (iv Interval) Consonance() Consonance {
	switch iv.Quality {
	case Perfect:
		return Consonant
	case Maj, Min:
		switch iv.Degree % 7 {
		case 3, 6:
			return ImperfectConsonant
		}
	}
	return Dissonant
}

// Name is the short label, e.g. "P5", "m3", "Aug4".
func (iv Interval) Name() string {
	return iv.Quality.String() + strconv.Itoa(int(iv.Degree))
}

func (iv Interval) String() string {
	if iv.descending {
		return "-" + iv.Name()
	}
	return iv.Name()
}

// ParseInterval reads a short label as produced by Name.
// A leading '-' yields a descending interval.
func ParseInterval(name string) (Interval, error) {
	s := strings.TrimSpace(name)
	descending := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")

	var quality IntervalQuality
	switch {
	case strings.HasPrefix(s, "Aug"):
		quality, s = Aug, s[3:]
	case strings.HasPrefix(s, "Dim"):
		quality, s = Dim, s[3:]
	case strings.HasPrefix(s, "P"):
		quality, s = Perfect, s[1:]
	case strings.HasPrefix(s, "M"):
		quality, s = Maj, s[1:]
	case strings.HasPrefix(s, "m"):
		quality, s = Min, s[1:]
	default:
		return Interval{}, fmt.Errorf("%w: %q", ErrIntervalParse, name)
	}

	degree, err := strconv.ParseUint(s, 10, 8)
	if err != nil {
		return Interval{}, fmt.Errorf("%w: %q", ErrIntervalParse, name)
	}

	iv, err := NewInterval(quality, uint8(degree))
	if err != nil {
		return Interval{}, fmt.Errorf("%w: %q: %w", ErrIntervalParse, name, err)
	}
	if descending {
		iv = iv.Descending()
	}
	return iv, nil
}
