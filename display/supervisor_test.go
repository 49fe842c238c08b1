package display_test

import (
	"context"
	"errors"
	"testing"
	"time"

	Md "github.com/W-Mai/simple-compose/display"
	Sy "github.com/W-Mai/simple-compose/player"
	Sp "github.com/W-Mai/simple-compose/plugin"
	Ss "github.com/W-Mai/simple-compose/score"
	Sm "github.com/W-Mai/simple-compose/theory"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"gitlab.com/gomidi/midi/v2"
)

func TestPlaybackSupervisor(t *testing.T) {
	t.Run("Creates new struct", func(t *testing.T) {
		view := Md.NewView(nil)
		p, _ := makeInstantPlayer()
		ps := view.NewPlaybackSupervisor(p)

		if ps.View != view || view.Supervisor != ps {
			t.Errorf("supervisor and view are not linked")
		}
	})

	t.Run("Plays a score to the end", func(t *testing.T) {
		view := Md.NewView(nil)
		p, mem := makeInstantPlayer()
		ps := view.NewPlaybackSupervisor(p)

		ps.Start(context.Background(), twoTrackScore())
		rep, err := ps.Wait()

		assertError(t, err, nil)
		assertInt(t, rep.Sent, 2)
		assertInt(t, len(mem.Notes()), 6)

		data := view.GetLiveData()
		assertString(t, data.State, "closed")
		assertInt(t, data.Events, 2)
		assertString(t, data.Session, rep.Session.String())
		assertStringContains(t, data.Lateness, "2 events")
		assertFloat(t, testutil.ToFloat64(view.Stats.Playbacks.WithLabelValues("ok")), 1)
		assertFloat(t, testutil.ToFloat64(view.Stats.Dispatched.WithLabelValues("on")), 1)
	})

	t.Run("Stop cancels a running playback", func(t *testing.T) {
		view := Md.NewView(nil)
		p, mem := makeInstantPlayer()
		p.Clock = Sy.RealClock{}
		ps := view.NewPlaybackSupervisor(p)

		ps.Start(context.Background(), twoTrackScore())
		time.Sleep(20 * time.Millisecond)
		ps.Stop()

		rep, err := ps.Wait()
		assertError(t, err, context.Canceled)
		if rep.Sent > 1 {
			t.Errorf("sent %d events, the note-off is two seconds out", rep.Sent)
		}
		if mem.IsOpen() {
			t.Error("output left open after stop")
		}
		assertFloat(t, testutil.ToFloat64(view.Stats.Playbacks.WithLabelValues("cancelled")), 1)
	})

	t.Run("Restart plays again on the same player", func(t *testing.T) {
		view := Md.NewView(nil)
		p, mem := makeInstantPlayer()
		ps := view.NewPlaybackSupervisor(p)

		ps.Start(context.Background(), twoTrackScore())
		_, err := ps.Wait()
		assertError(t, err, nil)

		ps.Restart(context.Background(), twoTrackScore())
		_, err = ps.Wait()

		assertError(t, err, nil)
		assertInt(t, len(mem.Notes()), 12)
		assertFloat(t, testutil.ToFloat64(view.Stats.Playbacks.WithLabelValues("ok")), 2)
	})

	t.Run("Send failures finish as partial", func(t *testing.T) {
		view := Md.NewView(nil)
		p, mem := makeInstantPlayer()
		mem.FailOn = func(msg midi.Message) error {
			var ch, key, vel uint8
			if msg.GetNoteOn(&ch, &key, &vel) && key == 64 {
				return errors.New("stuck key")
			}
			return nil
		}
		ps := view.NewPlaybackSupervisor(p)

		ps.Start(context.Background(), twoTrackScore())
		_, err := ps.Wait()

		assertError(t, err, Sy.ErrDispatch)
		assertInt(t, view.GetLiveData().Failures, 1)
		assertFloat(t, testutil.ToFloat64(view.Stats.Playbacks.WithLabelValues("partial")), 1)
	})
}

func makeInstantPlayer() (*Sy.Player, *Sp.MemoryOutput) {
	mem := Sp.NewMemoryOutput()
	p := Sy.NewPlayer(mem)
	p.Clock = Sy.NewInstantClock(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	return p, mem
}

// twoTrackScore holds one C major bar on track 0 and silence on track 1.
func twoTrackScore() *Ss.Score {
	s := Ss.New(2)
	s.NewMeasures(func(row []Ss.Measure) {
		c, _ := Sm.Triad(Sm.NewTuning(Sm.C, 4), Sm.Major)
		row[0].SetChord(c)
	})
	return s
}
