package score

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	Sm "github.com/W-Mai/simple-compose/theory"
)

// ScoreFile is the JSON form of a score: settings plus rows of measures,
// one entry per track in every row.
type ScoreFile struct {
	Tracks        int               `json:"tracks"`
	Tempo         float64           `json:"tempo,omitempty"`
	TimeSignature *TimeSigSpec      `json:"time_signature,omitempty"`
	Rows          [][]MeasureSpec   `json:"rows"`
	Meta          map[string]string `json:"meta,omitempty"`
}

type TimeSigSpec struct {
	Beats uint8  `json:"beats"`
	Unit  string `json:"unit"`
}

// MeasureSpec sets exactly one of Rest, Chord or Notes; an empty spec is a rest.
type MeasureSpec struct {
	Rest  bool       `json:"rest,omitempty"`
	Chord *ChordSpec `json:"chord,omitempty"`
	Notes []NoteSpec `json:"notes,omitempty"`
}

// ChordSpec names a chord by root and quality. Kind defaults to triad,
// or seventh for seventh qualities. Custom and altered chords list their intervals.
type ChordSpec struct {
	Root      string   `json:"root"`
	Quality   string   `json:"quality,omitempty"`
	Kind      string   `json:"kind,omitempty"`
	Extent    uint8    `json:"extent,omitempty"`
	Intervals []string `json:"intervals,omitempty"`
	Voicing   string   `json:"voicing,omitempty"`
	Inversion uint8    `json:"inversion,omitempty"`
}

type NoteSpec struct {
	Pitch    string `json:"pitch"`
	Duration string `json:"duration"`
	Dots     uint8  `json:"dots,omitempty"`
	Tuplet   string `json:"tuplet,omitempty"`
	Velocity uint8  `json:"velocity,omitempty"`
}

// LoadScoreFileName pulls a score file off local disk
// Validation is performed on the file before decoding
func LoadScoreFileName(filename string) (*ScoreFile, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	// validation
	err = validateLoad(file)
	if err != nil {
		slog.Error("Validation failed", slog.Any("Error", err))
		return nil, err
	}

	return LoadScoreConfig(file)
}

func validateLoad(file *os.File) error {
	// validate file
	info, err := file.Stat()
	if err != nil {
		slog.Error("could not stat file")
		return err
	}

	// validate size
	if info.Size() == 0 {
		slog.Error("file is empty")
		return errors.New("file is empty")
	}

	return nil
}

// LoadScoreConfig decodes a score file from any reader.
func LoadScoreConfig(r io.Reader) (*ScoreFile, error) {
	var sf ScoreFile
	decoder := json.NewDecoder(r)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&sf); err != nil {
		slog.Error("could not decode score", slog.Any("error", err))
		return nil, fmt.Errorf("decode score: %w", err)
	}
	return &sf, nil
}

// Build turns the file into a Score, failing on the first invalid measure.
func (sf *ScoreFile) Build() (*Score, error) {
	if sf.Tracks <= 0 {
		return nil, fmt.Errorf("score file needs at least one track, got %d", sf.Tracks)
	}

	s := New(sf.Tracks)
	if sf.Tempo != 0 {
		s.WithTempo(sf.Tempo)
	}
	if sf.TimeSignature != nil {
		unit, err := Sm.ParseDurationBase(sf.TimeSignature.Unit)
		if err != nil {
			return nil, fmt.Errorf("time signature: %w", err)
		}
		s.WithTimeSignature(sf.TimeSignature.Beats, unit)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}

	for r, specs := range sf.Rows {
		row := make([]Measure, len(specs))
		for i, spec := range specs {
			m, err := spec.Measure()
			if err != nil {
				return nil, fmt.Errorf("row %d track %d: %w", r, i, err)
			}
			row[i] = m
		}
		if err := s.PushMeasures(row); err != nil {
			return nil, fmt.Errorf("row %d: %w", r, err)
		}
	}

	slog.Debug("Score built",
		slog.Int("tracks", s.TrackCount()),
		slog.Int("measures", s.MeasureCount()),
		slog.Float64("tempo", s.Tempo()))
	return s, nil
}

func (ms MeasureSpec) Measure() (Measure, error) {
	set := 0
	if ms.Rest {
		set++
	}
	if ms.Chord != nil {
		set++
	}
	if len(ms.Notes) > 0 {
		set++
	}
	if set > 1 {
		return Measure{}, errors.New("measure sets more than one of rest, chord, notes")
	}

	switch {
	case ms.Chord != nil:
		c, err := ms.Chord.Chord()
		if err != nil {
			return Measure{}, err
		}
		return NewChord(c), nil
	case len(ms.Notes) > 0:
		notes := make([]Sm.Note, len(ms.Notes))
		for i, ns := range ms.Notes {
			n, err := ns.Note()
			if err != nil {
				return Measure{}, fmt.Errorf("note %d: %w", i, err)
			}
			notes[i] = n
		}
		return NewNotes(notes...), nil
	}
	return NewRest(), nil
}

func (cs ChordSpec) Chord() (Sm.Chord, error) {
	root, err := Sm.ParseTuning(cs.Root)
	if err != nil {
		return Sm.Chord{}, err
	}

	quality := Sm.Major
	if cs.Quality != "" {
		if quality, err = Sm.ParseChordQuality(cs.Quality); err != nil {
			return Sm.Chord{}, err
		}
	}

	intervals := make([]Sm.Interval, len(cs.Intervals))
	for i, name := range cs.Intervals {
		if intervals[i], err = Sm.ParseInterval(name); err != nil {
			return Sm.Chord{}, err
		}
	}

	kind := cs.Kind
	if kind == "" {
		kind = "triad"
		if quality.IsSeventh() {
			kind = "seventh"
		}
	}

	var c Sm.Chord
	switch kind {
	case "triad":
		c, err = Sm.Triad(root, quality)
	case "seventh":
		c, err = Sm.Seventh(root, quality)
	case "extended":
		c, err = Sm.Extended(root, quality, cs.Extent)
	case "suspended":
		c, err = Sm.Suspended(root, cs.Extent)
	case "power":
		c = Sm.Power(root)
	case "altered":
		c = Sm.Altered(root, intervals...)
	case "custom":
		c = Sm.CustomChord(root, intervals...)
	default:
		return Sm.Chord{}, fmt.Errorf("%w: kind %q", Sm.ErrUnsupportedChord, kind)
	}
	if err != nil {
		return Sm.Chord{}, err
	}

	if cs.Voicing != "" {
		v, err := Sm.ParseVoicing(cs.Voicing)
		if err != nil {
			return Sm.Chord{}, err
		}
		if c, err = c.Revoice(v); err != nil {
			return Sm.Chord{}, err
		}
	}
	if cs.Inversion > 0 {
		if c, err = c.Invert(Sm.Inversion(cs.Inversion)); err != nil {
			return Sm.Chord{}, err
		}
	}
	return c, nil
}

func (ns NoteSpec) Note() (Sm.Note, error) {
	pitch, err := Sm.ParseTuning(ns.Pitch)
	if err != nil {
		return Sm.Note{}, err
	}

	name := ns.Duration
	if name == "" {
		name = "quarter"
	}
	base, err := Sm.ParseDurationBase(name)
	if err != nil {
		return Sm.Note{}, err
	}
	d := Sm.NewDuration(base).Dotted(ns.Dots)

	if ns.Tuplet != "" {
		tup, err := parseTuplet(ns.Tuplet, base)
		if err != nil {
			return Sm.Note{}, err
		}
		if d, err = d.WithTuplet(tup); err != nil {
			return Sm.Note{}, err
		}
	}

	n := Sm.NewNote(pitch, d)
	if ns.Velocity > 0 {
		n = n.WithVelocity(ns.Velocity)
	}
	return n, nil
}

// parseTuplet reads "actual:base", e.g. "3:2".
func parseTuplet(s string, base Sm.DurationBase) (Sm.Tuplet, error) {
	a, b, ok := strings.Cut(s, ":")
	if !ok {
		return Sm.Tuplet{}, fmt.Errorf("%w: %q", Sm.ErrInvalidTupletRatio, s)
	}
	actual, err := strconv.ParseUint(strings.TrimSpace(a), 10, 8)
	if err != nil {
		return Sm.Tuplet{}, fmt.Errorf("%w: %q", Sm.ErrInvalidTupletRatio, s)
	}
	count, err := strconv.ParseUint(strings.TrimSpace(b), 10, 8)
	if err != nil {
		return Sm.Tuplet{}, fmt.Errorf("%w: %q", Sm.ErrInvalidTupletRatio, s)
	}
	return Sm.NewTuplet(uint8(actual), uint8(count), base)
}

// ToFile is the inverse of Build, used to print generated scores.
func ToFile(s *Score) ScoreFile {
	ts := s.TimeSignature()
	sf := ScoreFile{
		Tracks:        s.TrackCount(),
		Tempo:         s.Tempo(),
		TimeSignature: &TimeSigSpec{Beats: ts.Beats, Unit: ts.Unit.String()},
	}

	for m := range s.MeasureCount() {
		row := make([]MeasureSpec, s.TrackCount())
		for t := range row {
			row[t] = specOf(s.Track(t).Measure(m))
		}
		sf.Rows = append(sf.Rows, row)
	}
	return sf
}

func specOf(m Measure) MeasureSpec {
	switch m.Kind() {
	case KindChord:
		c, _ := m.Chord()
		cs := &ChordSpec{
			Root:      c.Root.Name(),
			Quality:   c.Quality.String(),
			Kind:      c.Type.String(),
			Extent:    c.Extent,
			Voicing:   c.Voicing.String(),
			Inversion: uint8(c.Inversion),
		}
		switch c.Type {
		case Sm.AlteredChord:
			for _, iv := range c.Extensions {
				cs.Intervals = append(cs.Intervals, iv.String())
			}
		case Sm.CustomChordType:
			for _, iv := range c.Intervals {
				cs.Intervals = append(cs.Intervals, iv.String())
			}
		}
		return MeasureSpec{Chord: cs}
	case KindNotes:
		var notes []NoteSpec
		for _, n := range m.Notes() {
			ns := NoteSpec{
				Pitch:    n.Pitch.Name(),
				Duration: n.Duration.Base.String(),
				Dots:     n.Duration.Dots,
				Velocity: n.Velocity,
			}
			if n.Duration.Tuplet != nil {
				ns.Tuplet = n.Duration.Tuplet.String()
			}
			notes = append(notes, ns)
		}
		return MeasureSpec{Notes: notes}
	}
	return MeasureSpec{Rest: true}
}
