package theory

import (
	"fmt"
	"slices"
	"strings"
)

type ChordQuality uint8

const (
	Major ChordQuality = iota
	Minor
	Diminished
	Augmented
	Major7
	Dominant7
	Minor7
	MinorMajor7
	HalfDiminished
	FullyDiminished
)

var qualityNames = [...]string{
	"major", "minor", "diminished", "augmented", "major7", "dominant7",
	"minor7", "minor-major7", "half-diminished", "fully-diminished",
}

func (q ChordQuality) String() string {
	if int(q) >= len(qualityNames) {
		return fmt.Sprintf("ChordQuality(%d)", uint8(q))
	}
	return qualityNames[q]
}

// ParseChordQuality accepts the names printed by String.
func ParseChordQuality(s string) (ChordQuality, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, n := range qualityNames {
		if n == s {
			return ChordQuality(i), nil
		}
	}
	return 0, fmt.Errorf("%w: quality %q", ErrUnsupportedChord, s)
}

// BaseQuality reduces a seventh quality to the triad it is built on.
func (q ChordQuality) BaseQuality() ChordQuality {
	switch q {
	case Major7, Dominant7:
		return Major
	case Minor7, MinorMajor7:
		return Minor
	case HalfDiminished, FullyDiminished:
		return Diminished
	}
	return q
}

// IsSeventh reports whether q names a four-note seventh chord.
func (q ChordQuality) IsSeventh() bool {
	return q >= Major7 && q <= FullyDiminished
}

type ChordType uint8

const (
	TriadChord ChordType = iota
	SeventhChord
	ExtendedChord
	SuspendedChord
	PowerChord
	AlteredChord
	CustomChordType
)

func (ct ChordType) String() string {
	switch ct {
	case TriadChord:
		return "triad"
	case SeventhChord:
		return "seventh"
	case ExtendedChord:
		return "extended"
	case SuspendedChord:
		return "suspended"
	case PowerChord:
		return "power"
	case AlteredChord:
		return "altered"
	}
	return "custom"
}

type Voicing uint8

const (
	Close Voicing = iota
	Open
	Drop2
	Drop3
	Cluster
)

var voicingNames = [...]string{"close", "open", "drop2", "drop3", "cluster"}

func (v Voicing) String() string {
	if int(v) >= len(voicingNames) {
		return fmt.Sprintf("Voicing(%d)", uint8(v))
	}
	return voicingNames[v]
}

// ParseVoicing accepts the names printed by String.
func ParseVoicing(s string) (Voicing, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, n := range voicingNames {
		if n == s {
			return Voicing(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnsupportedVoicing, s)
}

func (v Voicing) supported() error {
	switch v {
	case Close, Open:
		return nil
	}
	return fmt.Errorf("%w: %s", ErrUnsupportedVoicing, v)
}

type Inversion uint8

const (
	RootPosition Inversion = iota
	FirstInversion
	SecondInversion
	ThirdInversion
)

// Intervals above the root for each triad quality.
var triadIntervals = map[ChordQuality][2]Interval{
	Major:      {mustInterval(Maj, 3), mustInterval(Perfect, 5)},
	Minor:      {mustInterval(Min, 3), mustInterval(Perfect, 5)},
	Diminished: {mustInterval(Min, 3), mustInterval(Dim, 5)},
	Augmented:  {mustInterval(Maj, 3), mustInterval(Aug, 5)},
}

var seventhIntervals = map[ChordQuality]Interval{
	Major7:          mustInterval(Maj, 7),
	MinorMajor7:     mustInterval(Maj, 7),
	Dominant7:       mustInterval(Min, 7),
	Minor7:          mustInterval(Min, 7),
	HalfDiminished:  mustInterval(Min, 7),
	FullyDiminished: mustInterval(Maj, 6), // sounds the diminished seventh
}

// Chord is a root with an ordered stack of intervals measured from it.
// Extensions sound above the stack; voicing and inversion only move octaves.
type Chord struct {
	Root       Tuning
	Quality    ChordQuality
	Type       ChordType
	Extent     uint8 // 9/11/13 for extended chords, 2/4 for suspended ones
	Intervals  []Interval
	Extensions []Interval
	Inversion  Inversion
	Voicing    Voicing
}

// Triad builds root, third and fifth. Seventh qualities fall back to their base triad.
func Triad(root Tuning, quality ChordQuality) (Chord, error) {
	ivs, ok := triadIntervals[quality.BaseQuality()]
	if !ok {
		return Chord{}, fmt.Errorf("%w: triad quality %s", ErrUnsupportedChord, quality)
	}
	return Chord{
		Root:      root,
		Quality:   quality.BaseQuality(),
		Type:      TriadChord,
		Intervals: []Interval{ivs[0], ivs[1]},
	}, nil
}

// Seventh stacks the matching seventh on the base triad of quality.
// Triad qualities pick their usual seventh: major7, minor7, half-diminished,
// and a major seventh over the augmented triad.
func Seventh(root Tuning, quality ChordQuality) (Chord, error) {
	switch quality {
	case Major:
		quality = Major7
	case Minor:
		quality = Minor7
	case Diminished:
		quality = HalfDiminished
	}

	c, err := Triad(root, quality)
	if err != nil {
		return Chord{}, err
	}
	c.Quality = quality
	c.Type = SeventhChord
	if quality == Augmented {
		c.Intervals = append(c.Intervals, mustInterval(Maj, 7))
		return c, nil
	}
	c.Intervals = append(c.Intervals, seventhIntervals[quality])
	return c, nil
}

// Extended adds the ninth, eleventh and thirteenth up to extent onto a seventh chord.
// The eleventh and thirteenth are spelled as a fourth and a sixth; Components
// lifts every extension above the tones beneath it.
func Extended(root Tuning, quality ChordQuality, extent uint8) (Chord, error) {
	var ext []Interval
	switch extent {
	case 13:
		ext = []Interval{mustInterval(Maj, 9), mustInterval(Perfect, 4), mustInterval(Maj, 6)}
	case 11:
		ext = []Interval{mustInterval(Maj, 9), mustInterval(Perfect, 4)}
	case 9:
		ext = []Interval{mustInterval(Maj, 9)}
	default:
		return Chord{}, fmt.Errorf("%w: extension to %d", ErrUnsupportedChord, extent)
	}

	c, err := Seventh(root, quality)
	if err != nil {
		return Chord{}, err
	}
	c.Type = ExtendedChord
	c.Extent = extent
	c.Extensions = ext
	return c, nil
}

// Suspended replaces the third with a second (sus2) or fourth (sus4).
func Suspended(root Tuning, extent uint8) (Chord, error) {
	var sus Interval
	switch extent {
	case 2:
		sus = mustInterval(Maj, 2)
	case 4:
		sus = mustInterval(Perfect, 4)
	default:
		return Chord{}, fmt.Errorf("%w: sus%d", ErrUnsupportedChord, extent)
	}
	return Chord{
		Root:      root,
		Quality:   Major,
		Type:      SuspendedChord,
		Extent:    extent,
		Intervals: []Interval{sus, mustInterval(Perfect, 5)},
	}, nil
}

// Power is root and fifth.
func Power(root Tuning) Chord {
	return Chord{
		Root:      root,
		Quality:   Major,
		Type:      PowerChord,
		Intervals: []Interval{mustInterval(Perfect, 5)},
	}
}

// Altered is a dominant seventh carrying the given altered tensions.
func Altered(root Tuning, alterations ...Interval) Chord {
	// dominant7 is always in the tables
	c, _ := Seventh(root, Dominant7)
	c.Type = AlteredChord
	c.Extensions = slices.Clone(alterations)
	return c
}

// CustomChord stacks arbitrary intervals on the root.
func CustomChord(root Tuning, intervals ...Interval) Chord {
	return Chord{
		Root:      root,
		Quality:   Major,
		Type:      CustomChordType,
		Intervals: slices.Clone(intervals),
	}
}

// Size is the number of tones the chord sounds.
func (c Chord) Size() int {
	return 1 + len(c.Intervals) + len(c.Extensions)
}

// Invert returns a copy in the given inversion.
func (c Chord) Invert(inv Inversion) (Chord, error) {
	if int(inv) >= c.Size() {
		return c, fmt.Errorf("%w: inversion %d of a %d-note chord", ErrTheoryViolation, inv, c.Size())
	}
	c = c.clone()
	c.Inversion = inv
	return c, nil
}

// Revoice returns a copy using voicing v. Only close and open voicings are built.
func (c Chord) Revoice(v Voicing) (Chord, error) {
	if err := v.supported(); err != nil {
		return c, err
	}
	c = c.clone()
	c.Voicing = v
	return c, nil
}

// WithExtensions returns a copy with extra tones appended above the stack.
func (c Chord) WithExtensions(ivs ...Interval) Chord {
	c = c.clone()
	c.Extensions = append(c.Extensions, ivs...)
	return c
}

func (c Chord) clone() Chord {
	c.Intervals = slices.Clone(c.Intervals)
	c.Extensions = slices.Clone(c.Extensions)
	return c
}

// Components lists the sounding pitches from the bass up, after inversion and voicing.
func (c Chord) Components() ([]Tuning, error) {
	if err := c.Voicing.supported(); err != nil {
		return nil, err
	}
	if c.Root.Class == Silent {
		return nil, fmt.Errorf("%w: chord on a silent root", ErrInvalidPitch)
	}

	tones := make([]Tuning, 0, c.Size())
	tones = append(tones, c.Root)
	for _, iv := range c.Intervals {
		tones = append(tones, c.Root.AddInterval(iv))
	}
	for _, iv := range c.Extensions {
		top := slices.MaxFunc(tones, func(a, b Tuning) int { return a.position() - b.position() })
		tone := c.Root.AddInterval(iv)
		for tone.position() <= top.position() {
			tone.Octave++
		}
		tones = append(tones, tone)
	}

	if int(c.Inversion) >= len(tones) {
		return nil, fmt.Errorf("%w: inversion %d of a %d-note chord", ErrTheoryViolation, c.Inversion, len(tones))
	}
	for range int(c.Inversion) {
		bass := tones[0]
		bass.Octave++
		tones = append(tones[1:], bass)
	}

	switch c.Voicing {
	case Close:
		ceiling := c.Root.Octave + 1
		for i := 1; i < len(tones); i++ {
			for tones[i].Octave > ceiling {
				tones[i].Octave--
			}
		}
	case Open:
		// bands of two tones, one octave per band above the bass
		octave := tones[0].Octave
		for i := 1; i < len(tones); i++ {
			if i%2 == 0 {
				octave++
			}
			tones[i].Octave = octave
		}
	}

	return tones, nil
}

// MidiNumbers maps Components onto MIDI note numbers.
func (c Chord) MidiNumbers() ([]uint8, error) {
	tones, err := c.Components()
	if err != nil {
		return nil, err
	}
	out := make([]uint8, len(tones))
	for i, t := range tones {
		n, err := t.MidiNumber()
		if err != nil {
			return nil, fmt.Errorf("chord %s tone %d: %w", c, i, err)
		}
		out[i] = n
	}
	return out, nil
}

func (c Chord) String() string {
	switch c.Type {
	case ExtendedChord:
		return fmt.Sprintf("%s %s(%d)", c.Root, c.Quality, c.Extent)
	case SuspendedChord:
		return fmt.Sprintf("%s sus%d", c.Root, c.Extent)
	case PowerChord:
		return fmt.Sprintf("%s power", c.Root)
	case TriadChord, SeventhChord:
		return fmt.Sprintf("%s %s", c.Root, c.Quality)
	}
	return fmt.Sprintf("%s %s", c.Root, c.Type)
}
