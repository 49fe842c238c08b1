package plugin_test

import (
	"errors"
	"testing"
	"time"

	Sp "github.com/W-Mai/simple-compose/plugin"
	"github.com/google/uuid"
	"gitlab.com/gomidi/midi/v2"
)

func TestRecordingOutput(t *testing.T) {
	rec, closedb := makeTestBadgerOutput(t)
	defer closedb()

	mem := Sp.NewMemoryOutput()
	ro := Sp.NewRecordingOutput(mem, rec)

	clock := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	ro.Now = func() time.Time {
		clock = clock.Add(time.Millisecond)
		return clock
	}

	t.Run("Reports both sides in its type", func(t *testing.T) {
		assertStringContains(t, ro.Type(), "Memory")
		assertStringContains(t, ro.Type(), "BadgerDB")
	})

	t.Run("Forwards ports and open to the output", func(t *testing.T) {
		ports, err := ro.Ports()
		assertError(t, err, nil)
		assertInt(t, len(ports), 1)
		assertError(t, ro.Open(0, "tee"), nil)
		if !mem.IsOpen() {
			t.Error("output was not opened")
		}
	})

	t.Run("Records every accepted note", func(t *testing.T) {
		session := uuid.New()
		ro.SetSession(session)

		assertError(t, ro.NoteOn(2, 67, 90), nil)
		assertError(t, ro.NoteOff(2, 67, 0), nil)
		assertError(t, ro.Flush(), nil)

		got, err := rec.QuerySession(session)
		assertError(t, err, nil)
		assertInt(t, len(got), 2)
		if len(got) == 2 {
			if !got[0].On || got[1].On || got[0].Pitch != 67 || got[0].Channel != 2 {
				t.Errorf("unexpected records %+v %+v", got[0], got[1])
			}
		}
		assertInt(t, len(mem.Notes()), 2)
	})

	t.Run("Skips the record when the send fails", func(t *testing.T) {
		session := uuid.New()
		ro.SetSession(session)
		boom := errors.New("port gone")
		mem.FailOn = func(msg midi.Message) error { return boom }
		defer func() { mem.FailOn = nil }()

		assertError(t, ro.NoteOn(0, 60, 100), boom)
		rec.Flush()

		got, err := rec.QuerySession(session)
		assertError(t, err, nil)
		assertInt(t, len(got), 0)
	})

	t.Run("Close leaves the recorder usable", func(t *testing.T) {
		assertError(t, ro.Close(), nil)
		if mem.IsOpen() {
			t.Error("output still open")
		}
		_, err := rec.QueryRange(clock.Add(-time.Hour), clock.Add(time.Hour))
		assertError(t, err, nil)
	})
}
