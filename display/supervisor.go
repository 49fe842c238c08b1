package display

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	Sy "github.com/W-Mai/simple-compose/player"
	Ss "github.com/W-Mai/simple-compose/score"
)

// PlaybackSupervisor runs one Player.Play at a time in its own goroutine.
type PlaybackSupervisor struct {
	View   *View
	Player *Sy.Player
	WG     sync.WaitGroup
	MU     sync.Mutex
	Report Sy.Report
	Err    error

	cancel context.CancelFunc
}

// NewPlaybackSupervisor ties the player to the view.
// The view and its stats observe every playback the supervisor starts.
func (v *View) NewPlaybackSupervisor(p *Sy.Player) *PlaybackSupervisor {
	ps := &PlaybackSupervisor{
		View:   v,
		Player: p,
	}
	p.Observe(v, v.Stats)

	v.MU.Lock()
	v.Supervisor = ps
	v.MU.Unlock()
	return ps
}

// Start the playback, stopping any that is still running
func (ps *PlaybackSupervisor) Start(ctx context.Context, s *Ss.Score) {
	ps.Stop()

	ctx, cancel := context.WithCancel(ctx)
	ps.MU.Lock()
	ps.cancel = cancel
	ps.Report, ps.Err = Sy.Report{}, nil
	ps.MU.Unlock()

	ps.WG.Add(1)
	go func() {
		defer ps.WG.Done()
		defer cancel()

		rep, err := ps.Player.Play(ctx, s)
		ps.View.finish(rep, err)
		ps.View.Stats.RecPlayback(playbackResult(err))

		ps.MU.Lock()
		ps.Report, ps.Err = rep, err
		ps.MU.Unlock()
	}()
}

func playbackResult(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, context.Canceled):
		return "cancelled"
	case errors.Is(err, Sy.ErrDispatch):
		return "partial"
	default:
		return "failed"
	}
}

// Cancel asks the running playback to stop without waiting for it.
func (ps *PlaybackSupervisor) Cancel() {
	ps.MU.Lock()
	cancel := ps.cancel
	ps.MU.Unlock()
	if cancel != nil {
		slog.Debug("Cancelling playback")
		cancel()
	}
}

// Wait blocks until the playback ends and hands back its outcome.
func (ps *PlaybackSupervisor) Wait() (Sy.Report, error) {
	ps.WG.Wait()
	ps.MU.Lock()
	defer ps.MU.Unlock()
	return ps.Report, ps.Err
}

// Stop the playback and wait for the player to close
func (ps *PlaybackSupervisor) Stop() {
	ps.Cancel()
	ps.WG.Wait()
}

// Restart plays s from the top
func (ps *PlaybackSupervisor) Restart(ctx context.Context, s *Ss.Score) {
	ps.Stop()
	ps.Start(ctx, s)
}
