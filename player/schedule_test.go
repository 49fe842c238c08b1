package player_test

import (
	"slices"
	"testing"
	"time"

	Sy "github.com/W-Mai/simple-compose/player"
	Ss "github.com/W-Mai/simple-compose/score"
	Sm "github.com/W-Mai/simple-compose/theory"
	St "github.com/W-Mai/simple-compose/types"
)

func TestSchedule_EndToEnd(t *testing.T) {
	c, err := Sm.Triad(Sm.NewTuning(Sm.C, 4), Sm.Major)
	assertError(t, err, nil)
	s := Ss.New(2)
	s.NewMeasures(func(row []Ss.Measure) {
		row[0].SetChord(c)
	})

	events, err := Sy.Schedule(s)
	assertError(t, err, nil)

	t.Run("A chord in a 4/4 bar at 120 bpm sounds for two seconds", func(t *testing.T) {
		assertInt(t, len(events), 2)
		assertEvent(t, events[0], 0, true, 0, 60, 64, 67)
		assertEvent(t, events[1], 2*time.Second, false, 0, 60, 64, 67)
	})

	t.Run("The rest track emits nothing", func(t *testing.T) {
		for _, ev := range events {
			assertInt(t, ev.Track, 0)
		}
	})

	t.Run("Chords use the default velocity on and off", func(t *testing.T) {
		assertInt(t, int(events[0].Velocity), int(Sm.DefaultVelocity))
		assertInt(t, int(events[1].Velocity), int(Sm.DefaultVelocity))
	})
}

func TestSchedule_Notes(t *testing.T) {
	melody := []Sm.Note{
		Sm.NewNote(Sm.NewTuning(Sm.E, 4), Sm.NewDuration(Sm.Quarter).Dotted(1)),
		Sm.NewNote(Sm.NewTuning(Sm.D, 4), Sm.NewDuration(Sm.Eighth)).WithVelocity(80),
		Sm.NewNote(Sm.NewTuning(Sm.C, 4), Sm.NewDuration(Sm.Half)),
	}
	s := Ss.New(1)
	s.NewMeasures(func(row []Ss.Measure) { row[0].SetNotes(melody...) })
	s.NewMeasures(func(row []Ss.Measure) { row[0].SetNotes(melody[2]) })

	events, err := Sy.Schedule(s)
	assertError(t, err, nil)

	t.Run("Notes run end to end from the bar start", func(t *testing.T) {
		assertInt(t, len(events), 8)
		assertEvent(t, events[0], 0, true, 0, 64)
		assertEvent(t, events[1], 750*time.Millisecond, false, 0, 64)
		assertEvent(t, events[2], 750*time.Millisecond, true, 0, 62)
		assertEvent(t, events[3], time.Second, false, 0, 62)
		assertEvent(t, events[4], time.Second, true, 0, 60)
		assertEvent(t, events[5], 2*time.Second, false, 0, 60)
	})

	t.Run("The next bar starts a measure later", func(t *testing.T) {
		assertEvent(t, events[6], 2*time.Second, true, 0, 60)
		assertEvent(t, events[7], 3*time.Second, false, 0, 60)
		assertInt(t, events[6].Measure, 1)
	})

	t.Run("Notes keep their velocity", func(t *testing.T) {
		assertInt(t, int(events[2].Velocity), 80)
		assertInt(t, int(events[3].Velocity), 80)
	})
}

func TestSchedule_Rests(t *testing.T) {
	s := Ss.New(1)
	s.NewMeasures(func(row []Ss.Measure) {
		row[0].SetNotes(
			Sm.Rest(Sm.NewDuration(Sm.Quarter)),
			Sm.NewNote(Sm.NewTuning(Sm.G, 4), Sm.NewDuration(Sm.Quarter)),
		)
	})

	events, err := Sy.Schedule(s)
	assertError(t, err, nil)

	t.Run("Silent notes take time but send nothing", func(t *testing.T) {
		assertInt(t, len(events), 2)
		assertEvent(t, events[0], 500*time.Millisecond, true, 0, 67)
		assertEvent(t, events[1], time.Second, false, 0, 67)
	})
}

func TestSchedule_Tuplets(t *testing.T) {
	tup, err := Sm.NewTuplet(3, 2, Sm.Eighth)
	assertError(t, err, nil)
	d, err := Sm.NewDuration(Sm.Eighth).WithTuplet(tup)
	assertError(t, err, nil)

	s := Ss.New(1).WithTempo(60)
	s.NewMeasures(func(row []Ss.Measure) {
		row[0].SetNotes(
			Sm.NewNote(Sm.NewTuning(Sm.C, 4), d),
			Sm.NewNote(Sm.NewTuning(Sm.D, 4), d),
			Sm.NewNote(Sm.NewTuning(Sm.E, 4), d),
		)
	})

	events, err := Sy.Schedule(s)
	assertError(t, err, nil)

	t.Run("Three triplet eighths fill one beat exactly", func(t *testing.T) {
		assertInt(t, len(events), 6)
		assertDuration(t, events[1].At, 333333333*time.Nanosecond)
		assertDuration(t, events[3].At, 666666667*time.Nanosecond)
		assertDuration(t, events[5].At, time.Second)
	})
}

func TestSchedule_Ordering(t *testing.T) {
	quarter := Sm.NewDuration(Sm.Quarter)
	s := Ss.New(3)
	s.NewMeasures(func(row []Ss.Measure) {
		row[2].SetNotes(Sm.NewNote(Sm.NewTuning(Sm.A, 4), quarter), Sm.NewNote(Sm.NewTuning(Sm.B, 4), quarter))
		row[0].SetNotes(Sm.NewNote(Sm.NewTuning(Sm.C, 4), quarter), Sm.NewNote(Sm.NewTuning(Sm.D, 4), quarter))
		row[1].SetChord(Sm.Power(Sm.NewTuning(Sm.E, 3)))
	})

	events, err := Sy.Schedule(s)
	assertError(t, err, nil)

	t.Run("Events never go back in time", func(t *testing.T) {
		for i := 1; i < len(events); i++ {
			if events[i].At < events[i-1].At {
				t.Fatalf("event %d at %s precedes event %d at %s", i, events[i].At, i-1, events[i-1].At)
			}
		}
	})

	t.Run("Simultaneous starts go by ascending track", func(t *testing.T) {
		tracks := []int{events[0].Track, events[1].Track, events[2].Track}
		if !slices.Equal(tracks, []int{0, 1, 2}) {
			t.Errorf("got tracks %v", tracks)
		}
	})

	t.Run("Note-offs go before note-ons at the same instant", func(t *testing.T) {
		var at []St.TimedEvent
		for _, ev := range events {
			if ev.At == 500*time.Millisecond {
				at = append(at, ev)
			}
		}
		assertInt(t, len(at), 4)
		if at[0].On || at[1].On || !at[2].On || !at[3].On {
			t.Errorf("got edges %v %v %v %v", at[0].On, at[1].On, at[2].On, at[3].On)
		}
		if at[0].Track != 0 || at[1].Track != 2 {
			t.Errorf("offs out of track order: %d %d", at[0].Track, at[1].Track)
		}
	})

	t.Run("Track i plays on channel i", func(t *testing.T) {
		for _, ev := range events {
			assertInt(t, int(ev.Channel), ev.Track)
		}
	})
}

func TestSchedule_TimeSignature(t *testing.T) {
	s := Ss.New(1).WithTimeSignature(6, Sm.Eighth)
	s.NewMeasures(nil)
	s.NewMeasures(func(row []Ss.Measure) {
		row[0].SetNotes(Sm.NewNote(Sm.NewTuning(Sm.C, 4), Sm.NewDuration(Sm.Quarter)))
	})

	events, err := Sy.Schedule(s)
	assertError(t, err, nil)

	t.Run("A measure lasts its beat count", func(t *testing.T) {
		// six beats at 120 bpm is three seconds
		assertEvent(t, events[0], 3*time.Second, true, 0, 60)
	})

	t.Run("A quarter note lasts one beat whatever the unit", func(t *testing.T) {
		assertEvent(t, events[1], 3500*time.Millisecond, false, 0, 60)
	})
}

func TestSchedule_Errors(t *testing.T) {
	t.Run("Drops tracks past sixteen", func(t *testing.T) {
		s := Ss.New(18)
		s.NewMeasures(func(row []Ss.Measure) {
			for i := range row {
				row[i].SetChord(Sm.Power(Sm.NewTuning(Sm.C, 3)))
			}
		})
		events, err := Sy.Schedule(s)
		assertError(t, err, nil)
		assertInt(t, len(events), 2*Sy.MaxChannels)
	})

	t.Run("Rejects pitches outside MIDI", func(t *testing.T) {
		s := Ss.New(1)
		s.NewMeasures(func(row []Ss.Measure) {
			row[0].SetNotes(Sm.NewNote(Sm.NewTuning(Sm.C, 10), Sm.NewDuration(Sm.Quarter)))
		})
		_, err := Sy.Schedule(s)
		assertError(t, err, Sm.ErrInvalidPitch)
	})

	t.Run("Rejects a bad tempo", func(t *testing.T) {
		_, err := Sy.Schedule(Ss.New(1).WithTempo(0))
		assertError(t, err, Ss.ErrInvalidTempo)
	})

	t.Run("An empty score schedules nothing", func(t *testing.T) {
		events, err := Sy.Schedule(Ss.New(2))
		assertError(t, err, nil)
		assertInt(t, len(events), 0)
	})
}

func assertEvent(t testing.TB, ev St.TimedEvent, at time.Duration, on bool, ch uint8, keys ...uint8) {
	t.Helper()
	if ev.At != at || ev.On != on || ev.Channel != ch || !slices.Equal(ev.Pitches, keys) {
		t.Errorf("got event {at %s on %v ch %d keys %v}, want {at %s on %v ch %d keys %v}",
			ev.At, ev.On, ev.Channel, ev.Pitches, at, on, ch, keys)
	}
}

func assertDuration(t testing.TB, got, want time.Duration) {
	t.Helper()
	if got != want {
		t.Errorf("got %s, want %s", got, want)
	}
}
