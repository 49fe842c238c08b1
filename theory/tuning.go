package theory

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Tuning is an absolute pitch: a pitch class placed in an octave.
// Octave 4 holds middle C (MIDI 60).
type Tuning struct {
	Class  PitchClass
	Octave int
	freq   *float64
}

func NewTuning(class PitchClass, octave int) Tuning {
	return Tuning{Class: class, Octave: octave}
}

// WithFreq returns a copy whose Frequency reports f instead of the equal-tempered value.
func (t Tuning) WithFreq(f float64) Tuning {
	t.freq = &f
	return t
}

// WithOctave returns a copy moved to the given octave.
func (t Tuning) WithOctave(octave int) Tuning {
	t.Octave = octave
	return t
}

// position is the unbounded semitone index, equal to the MIDI number when in range.
func (t Tuning) position() int {
	return (t.Octave+1)*12 + int(t.Class) - 1
}

// AddInterval moves the pitch by the interval's signed semitones, carrying octaves.
// Silent stays silent.
func (t Tuning) AddInterval(iv Interval) Tuning {
	return t.Transpose(int(iv.Semitones))
}

// Transpose is AddInterval for a raw semitone count.
func (t Tuning) Transpose(semitones int) Tuning {
	if t.Class == Silent {
		return t
	}
	n := int(t.Class) - 1 + semitones
	return Tuning{
		Class:  PitchClass(mod(n, 12) + 1),
		Octave: t.Octave + floorDiv(n, 12),
	}
}

// MidiNumber maps the pitch onto 0..127. Silent maps to 0.
func (t Tuning) MidiNumber() (uint8, error) {
	if t.Class == Silent {
		return 0, nil
	}
	if !t.Class.Valid() {
		return 0, fmt.Errorf("%w: pitch class %d", ErrInvalidPitch, uint8(t.Class))
	}
	n := t.position()
	if n < 0 || n > 127 {
		return 0, fmt.Errorf("%w: %s maps to midi %d", ErrInvalidPitch, t, n)
	}
	return uint8(n), nil
}

// Frequency in Hz, equal temperament at A4 = 440 unless overridden.
func (t Tuning) Frequency() float64 {
	if t.freq != nil {
		return *t.freq
	}
	if t.Class == Silent {
		return 0
	}
	return 440 * math.Pow(2, float64(t.position()-69)/12)
}

// Scale builds a scale of the given type rooted on this pitch.
func (t Tuning) Scale(st ScaleType) (Scale, error) {
	return NewScale(t, st)
}

// Equal compares pitch and octave, ignoring any frequency override.
func (t Tuning) Equal(o Tuning) bool {
	return t.Class == o.Class && t.Octave == o.Octave
}

func (t Tuning) String() string {
	if t.Class == Silent {
		return "R"
	}
	return t.Class.String() + strconv.Itoa(t.Octave)
}

// Name is the sharp spelling that ParseTuning accepts, e.g. "C#4".
func (t Tuning) Name() string {
	if t.Class == Silent {
		return "R"
	}
	return t.Class.Sharp() + strconv.Itoa(t.Octave)
}

// ParseTuning reads scientific pitch notation such as "C4", "F#3" or "Bb-1".
func ParseTuning(s string) (Tuning, error) {
	s = strings.TrimSpace(s)
	if s == "R" || s == "r" || s == "-" {
		return Tuning{}, nil
	}

	i := len(s)
	for i > 0 && (s[i-1] >= '0' && s[i-1] <= '9') {
		i--
	}
	if i > 1 && s[i-1] == '-' {
		i--
	}
	if i == len(s) || i == 0 {
		return Tuning{}, fmt.Errorf("%w: %q needs a letter and an octave", ErrInvalidPitch, s)
	}

	class, err := ParsePitchClass(s[:i])
	if err != nil {
		return Tuning{}, err
	}
	octave, err := strconv.Atoi(s[i:])
	if err != nil {
		return Tuning{}, fmt.Errorf("%w: octave in %q: %w", ErrInvalidPitch, s, err)
	}
	return NewTuning(class, octave), nil
}
