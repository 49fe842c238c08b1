package score

import (
	"slices"

	Sm "github.com/W-Mai/simple-compose/theory"
)

// MeasureKind tags what a measure holds.
type MeasureKind int

const (
	KindRest MeasureKind = iota
	KindChord
	KindNotes
)

func (k MeasureKind) String() string {
	switch k {
	case KindChord:
		return "chord"
	case KindNotes:
		return "notes"
	}
	return "rest"
}

// Measure is one bar of one track: silence, a chord held for the whole bar,
// or notes laid end to end. Note lengths are not checked against the bar.
type Measure struct {
	kind  MeasureKind
	chord Sm.Chord
	notes []Sm.Note
}

func NewRest() Measure { return Measure{} }

func NewChord(c Sm.Chord) Measure {
	return Measure{kind: KindChord, chord: c}
}

func NewNotes(notes ...Sm.Note) Measure {
	return Measure{kind: KindNotes, notes: slices.Clone(notes)}
}

func (m Measure) Kind() MeasureKind { return m.kind }

// Chord returns the chord and whether the measure holds one.
func (m Measure) Chord() (Sm.Chord, bool) {
	return m.chord, m.kind == KindChord
}

// Notes returns a copy of the note sequence, nil unless the measure holds notes.
func (m Measure) Notes() []Sm.Note {
	if m.kind != KindNotes {
		return nil
	}
	return slices.Clone(m.notes)
}

// SetRest, SetChord and SetNotes fill a measure in place, for use inside NewMeasures.
func (m *Measure) SetRest() { *m = Measure{} }

func (m *Measure) SetChord(c Sm.Chord) { *m = NewChord(c) }

func (m *Measure) SetNotes(notes ...Sm.Note) { *m = NewNotes(notes...) }
