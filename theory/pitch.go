package theory

import (
	"fmt"
	"strings"
)

// PitchClass is one of the twelve chromatic pitch identities.
// Silent (0) is the rest sentinel and survives every transposition.
type PitchClass uint8

const (
	Silent PitchClass = iota
	C
	CSharp
	D
	DSharp
	E
	F
	FSharp
	G
	GSharp
	A
	ASharp
	B
)

var pitchNames = [...]string{
	" ", "C", "C#/Db", "D", "D#/Eb", "E", "F", "F#/Gb", "G", "G#/Ab", "A", "A#/Bb", "B",
}

var sharpNames = [...]string{
	"R", "C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B",
}

// Semitone offsets of the major scale, used for diatonic stepping.
var basicDegrees = [7]int{0, 2, 4, 5, 7, 9, 11}

// mod returns the Euclidean remainder, always in [0, m).
func mod(a, m int) int {
	r := a % m
	if r < 0 {
		r += m
	}
	return r
}

// floorDiv divides rounding toward negative infinity.
func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

// IsSilent reports whether pc is the rest sentinel.
func (pc PitchClass) IsSilent() bool { return pc == Silent }

// Valid reports whether pc is inside the 0..12 encoding.
func (pc PitchClass) Valid() bool { return pc <= B }

// Modulation transposes pc by deg semitones, wrapping modulo 12.
func (pc PitchClass) Modulation(deg int) PitchClass {
	if pc == Silent {
		return Silent
	}
	return PitchClass(mod(int(pc)-1+deg, 12) + 1)
}

// NextBasicDegree steps pc along the major scale by nth diatonic degrees.
func (pc PitchClass) NextBasicDegree(nth int) PitchClass {
	return pc.Modulation(basicDegrees[mod(nth, 7)])
}

// CommonChord returns the diatonic triad built on the given degree (1..7)
// of the major key rooted at pc, voiced at octave 3.
func (pc PitchClass) CommonChord(degree int) (Chord, error) {
	if pc == Silent {
		return Chord{}, fmt.Errorf("%w: no key for silent pitch class", ErrTheoryViolation)
	}

	var quality ChordQuality
	switch degree {
	case 1, 4, 5:
		quality = Major
	case 2, 3, 6:
		quality = Minor
	case 7:
		quality = Diminished
	default:
		return Chord{}, fmt.Errorf("%w: scale degree %d outside 1..7", ErrTheoryViolation, degree)
	}

	root := NewTuning(pc.NextBasicDegree(degree-1), 3)
	return Triad(root, quality)
}

func (pc PitchClass) String() string {
	if !pc.Valid() {
		return fmt.Sprintf("PitchClass(%d)", uint8(pc))
	}
	return pitchNames[pc]
}

// Sharp is the single-spelling name that ParsePitchClass reads back.
func (pc PitchClass) Sharp() string {
	if !pc.Valid() {
		return "?"
	}
	return sharpNames[pc]
}

var letterClasses = map[byte]PitchClass{
	'C': C, 'D': D, 'E': E, 'F': F, 'G': G, 'A': A, 'B': B,
}

// ParsePitchClass reads a letter name with any number of '#' or 'b'
// accidentals, e.g. "C", "F#", "Bb". "R" and "-" read as Silent.
func ParsePitchClass(s string) (PitchClass, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Silent, fmt.Errorf("%w: empty pitch name", ErrInvalidPitch)
	}
	if s == "R" || s == "r" || s == "-" {
		return Silent, nil
	}

	pc, ok := letterClasses[strings.ToUpper(s[:1])[0]]
	if !ok {
		return Silent, fmt.Errorf("%w: unknown pitch letter in %q", ErrInvalidPitch, s)
	}

	shift := 0
	for _, r := range s[1:] {
		switch r {
		case '#':
			shift++
		case 'b':
			shift--
		default:
			return Silent, fmt.Errorf("%w: unknown accidental %q in %q", ErrInvalidPitch, r, s)
		}
	}
	return pc.Modulation(shift), nil
}
