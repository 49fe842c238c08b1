package score_test

import (
	"errors"
	"strings"
	"testing"

	Ss "github.com/W-Mai/simple-compose/score"
	Sm "github.com/W-Mai/simple-compose/theory"
)

func TestNew(t *testing.T) {
	s := Ss.New(3)

	t.Run("Defaults to 120 bpm in four quarters", func(t *testing.T) {
		if s.Tempo() != 120 {
			t.Errorf("got tempo %v", s.Tempo())
		}
		ts := s.TimeSignature()
		assertInt(t, int(ts.Beats), 4)
		if ts.Unit != Sm.Quarter {
			t.Errorf("got unit %s", ts.Unit)
		}
		assertError(t, s.Validate(), nil)
	})

	t.Run("Holds a fixed number of empty tracks", func(t *testing.T) {
		assertInt(t, s.TrackCount(), 3)
		assertInt(t, s.MeasureCount(), 0)
	})

	t.Run("Fluent settings chain", func(t *testing.T) {
		s := Ss.New(1).WithTempo(90).WithTimeSignature(6, Sm.Eighth)
		if s.Tempo() != 90 {
			t.Errorf("got tempo %v", s.Tempo())
		}
		assertString(t, s.TimeSignature().String(), "6/eighth")
	})
}

func TestTimeSignature_Denominator(t *testing.T) {
	tests := []struct {
		unit Sm.DurationBase
		want int
	}{
		{Sm.Whole, 1},
		{Sm.Half, 2},
		{Sm.Quarter, 4},
		{Sm.Eighth, 8},
		{Sm.SixtyFourth, 64},
	}
	for _, tt := range tests {
		t.Run(tt.unit.String(), func(t *testing.T) {
			got, err := Ss.TimeSignature{Beats: 3, Unit: tt.unit}.Denominator()
			assertError(t, err, nil)
			assertInt(t, int(got), tt.want)
		})
	}

	t.Run("Breves have no denominator", func(t *testing.T) {
		_, err := Ss.TimeSignature{Beats: 2, Unit: Sm.Breve}.Denominator()
		assertError(t, err, Ss.ErrInvalidTimeSignature)
	})
}

func TestScore_Validate(t *testing.T) {
	t.Run("Rejects non-positive tempo", func(t *testing.T) {
		for _, bpm := range []float64{0, -60} {
			err := Ss.New(1).WithTempo(bpm).Validate()
			assertError(t, err, Ss.ErrInvalidTempo)
		}
	})

	t.Run("Rejects empty measures", func(t *testing.T) {
		err := Ss.New(1).WithTimeSignature(0, Sm.Quarter).Validate()
		assertError(t, err, Ss.ErrInvalidTimeSignature)
	})
}

func TestScore_NewMeasures(t *testing.T) {
	c, err := Sm.Triad(Sm.NewTuning(Sm.C, 4), Sm.Major)
	assertError(t, err, nil)
	melody := []Sm.Note{
		Sm.NewNote(Sm.NewTuning(Sm.E, 4), Sm.NewDuration(Sm.Half)),
		Sm.NewNote(Sm.NewTuning(Sm.D, 4), Sm.NewDuration(Sm.Half)),
	}

	s := Ss.New(3)
	s.NewMeasures(func(row []Ss.Measure) {
		row[0].SetChord(c)
		row[1].SetNotes(melody...)
	})
	s.NewMeasures(nil)

	t.Run("Appends a whole row at once", func(t *testing.T) {
		for i := range s.TrackCount() {
			assertInt(t, s.Track(i).Len(), 2)
		}
	})

	t.Run("Untouched cells are rests", func(t *testing.T) {
		if k := s.Track(2).Measure(0).Kind(); k != Ss.KindRest {
			t.Errorf("got %s", k)
		}
		if k := s.Track(0).Measure(1).Kind(); k != Ss.KindRest {
			t.Errorf("got %s", k)
		}
	})

	t.Run("Keeps the measure content", func(t *testing.T) {
		got, ok := s.Track(0).Measure(0).Chord()
		if !ok {
			t.Fatal("expected a chord")
		}
		assertString(t, got.String(), c.String())

		notes := s.Track(1).Measure(0).Notes()
		assertInt(t, len(notes), 2)
	})

	t.Run("Reading past the end gives rests", func(t *testing.T) {
		if k := s.Track(0).Measure(99).Kind(); k != Ss.KindRest {
			t.Errorf("got %s", k)
		}
		assertInt(t, s.Track(9).Len(), 0)
	})

	t.Run("Returned notes are copies", func(t *testing.T) {
		notes := s.Track(1).Measure(0).Notes()
		notes[0] = Sm.Rest(Sm.NewDuration(Sm.Whole))
		again := s.Track(1).Measure(0).Notes()
		if again[0].IsRest() {
			t.Error("measure was mutated through a returned slice")
		}
	})
}

func TestScore_PushMeasures(t *testing.T) {
	t.Run("Accepts a full row", func(t *testing.T) {
		s := Ss.New(2)
		err := s.PushMeasures([]Ss.Measure{Ss.NewRest(), Ss.NewRest()})
		assertError(t, err, nil)
		assertInt(t, s.MeasureCount(), 1)
	})

	t.Run("Refuses a ragged row without touching the tracks", func(t *testing.T) {
		s := Ss.New(2)
		err := s.PushMeasures([]Ss.Measure{Ss.NewRest()})
		assertError(t, err, Ss.ErrRowWidth)
		assertInt(t, s.MeasureCount(), 0)
	})
}

func assertError(t testing.TB, got, want error) {
	t.Helper()
	if !errors.Is(got, want) {
		t.Errorf("got error %q want %q", got, want)
	}
}

func assertGotError(t testing.TB, got error) {
	t.Helper()
	if got == nil {
		t.Errorf("Expected an error but got %q", got)
	}
}

func assertInt(t testing.TB, got, want int) {
	t.Helper()
	if got != want {
		t.Errorf("did not get correct value, got %d, want %d", got, want)
	}
}

func assertString(t testing.TB, got, want string) {
	t.Helper()
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func assertStringContains(t testing.TB, full, want string) {
	t.Helper()
	if !strings.Contains(full, want) {
		t.Errorf("Did not find %q, expected string contains %q", want, full)
	}
}
