package player

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	So "github.com/W-Mai/simple-compose/obvy"
	Sp "github.com/W-Mai/simple-compose/plugin"
	Ss "github.com/W-Mai/simple-compose/score"
	Sm "github.com/W-Mai/simple-compose/theory"
	St "github.com/W-Mai/simple-compose/types"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var (
	ErrPortOutOfRange = errors.New("port index out of range")
	ErrNoPortSelected = errors.New("no port selected")
	ErrNotInitialized = errors.New("output not initialized")
	ErrNoTracks       = errors.New("no tracks in score")
	ErrNoPorts        = errors.New("no MIDI output ports available")
	ErrDispatch       = errors.New("event dispatch failed")
)

// DefaultLabel names the client on ports that show one.
const DefaultLabel = "simple-compose"

// Observer is told about every dispatched event and every state change.
// Calls happen on the dispatch goroutine, after the send.
type Observer interface {
	EventDispatched(ev St.TimedEvent, lateness time.Duration, err error)
	StateChanged(state St.PlayerState)
}

// sessionSetter is implemented by outputs that tag what they record.
type sessionSetter interface {
	SetSession(id uuid.UUID)
}

// Report sums up one playback.
type Report struct {
	Session  uuid.UUID
	Events   int           // scheduled events
	Sent     int           // events sent without error
	Failures []St.DispatchFailure
	Lateness So.LatenessSummary
	Elapsed  time.Duration // clock time from first to last event
}

// Player owns one output for the length of a playback.
//
// State runs Uninitialized → PortSelected → Connected → Scheduled → Draining → Closed.
// Close from any state lands on Closed, and a closed player can start over
// with SelectPort or Play.
type Player struct {
	MU          sync.Mutex
	Out         Sp.OutputAdapter
	Clock       Clock
	Label       string
	DefaultPort int
	Observers   []Observer

	state    St.PlayerState
	port     int
	sounding [MaxChannels][128]bool
}

func NewPlayer(out Sp.OutputAdapter) *Player {
	return &Player{
		Out:   out,
		Clock: RealClock{},
		Label: DefaultLabel,
	}
}

// Observe adds observers; call before Play.
func (p *Player) Observe(obs ...Observer) {
	p.MU.Lock()
	defer p.MU.Unlock()
	p.Observers = append(p.Observers, obs...)
}

func (p *Player) State() St.PlayerState {
	p.MU.Lock()
	defer p.MU.Unlock()
	return p.state
}

// setState must not be called with MU held.
func (p *Player) setState(s St.PlayerState) {
	p.MU.Lock()
	p.state = s
	obs := p.Observers
	p.MU.Unlock()

	slog.Debug("Player state", slog.String("state", s.String()))
	for _, o := range obs {
		o.StateChanged(s)
	}
}

func (p *Player) ListPorts() ([]string, error) {
	if p.Out == nil {
		return nil, ErrNotInitialized
	}
	return p.Out.Ports()
}

// SelectPort chooses the output port to connect to.
func (p *Player) SelectPort(i int) error {
	ports, err := p.ListPorts()
	if err != nil {
		return err
	}
	if i < 0 || i >= len(ports) {
		slog.Error("Port selection failed", slog.Int("port", i), slog.Int("available", len(ports)))
		return fmt.Errorf("%w: %d of %d", ErrPortOutOfRange, i, len(ports))
	}

	p.MU.Lock()
	p.port = i
	p.MU.Unlock()

	slog.Info("Port selected", slog.Int("port", i), slog.String("name", ports[i]))
	p.setState(St.PortSelected)
	return nil
}

// Connect opens the selected port and hands back one Channel per MIDI channel.
func (p *Player) Connect(label string) ([]Channel, error) {
	if p.Out == nil {
		return nil, ErrNotInitialized
	}

	p.MU.Lock()
	state, port := p.state, p.port
	p.MU.Unlock()
	if state != St.PortSelected {
		return nil, ErrNoPortSelected
	}

	if label == "" {
		label = p.Label
	}
	if err := p.Out.Open(port, label); err != nil {
		return nil, fmt.Errorf("connect port %d: %w", port, err)
	}
	p.setState(St.Connected)

	channels := make([]Channel, MaxChannels)
	for i := range channels {
		channels[i] = Channel{id: uint8(i), player: p}
	}
	return channels, nil
}

// connected reports whether sends may reach the output.
func (p *Player) connected() bool {
	switch p.state {
	case St.Connected, St.Scheduled, St.Draining:
		return true
	}
	return false
}

func (p *Player) noteOn(ch, key, vel uint8) error {
	p.MU.Lock()
	defer p.MU.Unlock()
	if !p.connected() {
		return ErrNotInitialized
	}
	if err := p.Out.NoteOn(ch, key, vel); err != nil {
		return err
	}
	p.sounding[ch&0x0f][key&0x7f] = true
	return nil
}

// noteOff releases at vel, or at the default velocity when vel is 0.
func (p *Player) noteOff(ch, key, vel uint8) error {
	if vel == 0 {
		vel = Sm.DefaultVelocity
	}
	p.MU.Lock()
	defer p.MU.Unlock()
	if !p.connected() {
		return ErrNotInitialized
	}
	if err := p.Out.NoteOff(ch, key, vel); err != nil {
		return err
	}
	p.sounding[ch&0x0f][key&0x7f] = false
	return nil
}

// stopChannel releases every key the channel still holds.
func (p *Player) stopChannel(ch uint8) error {
	p.MU.Lock()
	defer p.MU.Unlock()
	if !p.connected() {
		return ErrNotInitialized
	}
	var errs []error
	for key := range p.sounding[ch&0x0f] {
		if !p.sounding[ch&0x0f][key] {
			continue
		}
		if err := p.Out.NoteOff(ch, uint8(key), Sm.DefaultVelocity); err != nil {
			errs = append(errs, err)
			continue
		}
		p.sounding[ch&0x0f][key] = false
	}
	return errors.Join(errs...)
}

// Close silences everything and releases the output. Safe to call twice.
func (p *Player) Close() error {
	p.MU.Lock()
	state := p.state
	p.MU.Unlock()
	if state == St.Closed || state == St.Uninitialized || state == St.PortSelected {
		if state != St.Closed {
			p.setState(St.Closed)
		}
		return nil
	}

	flushErr := p.Out.Flush()
	closeErr := p.Out.Close()

	p.MU.Lock()
	p.sounding = [MaxChannels][128]bool{}
	p.MU.Unlock()
	p.setState(St.Closed)

	if flushErr != nil {
		slog.Error("All notes off failed on close", slog.Any("error", flushErr))
	}
	if closeErr != nil {
		slog.Error("Output close failed", slog.Any("error", closeErr))
	}
	return errors.Join(flushErr, closeErr)
}

// Play schedules the score and sends it in real time.
// Without a prior SelectPort the DefaultPort is used.
// The output is closed when Play returns, whatever happens.
// Per-event send failures do not stop playback; they are listed in the
// report and returned together under ErrDispatch.
func (p *Player) Play(ctx context.Context, s *Ss.Score) (rep Report, err error) {
	ctx, span := otel.Tracer(So.TracerName).Start(ctx, "Player.Play")
	defer span.End()

	defer func() {
		if r := recover(); r != nil {
			slog.Error("Playback panic", slog.Any("panic", r))
			err = fmt.Errorf("playback aborted: %v", r)
		}
		if cerr := p.Close(); cerr != nil && err == nil {
			err = cerr
		}
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
	}()

	if s == nil || s.TrackCount() == 0 {
		return rep, ErrNoTracks
	}

	if p.State() != St.PortSelected && p.State() != St.Connected {
		ports, err := p.ListPorts()
		if err != nil {
			return rep, err
		}
		if len(ports) == 0 {
			return rep, ErrNoPorts
		}
		if err := p.SelectPort(p.DefaultPort); err != nil {
			return rep, err
		}
	}
	if p.State() == St.PortSelected {
		if _, err := p.Connect(p.Label); err != nil {
			return rep, err
		}
	}

	events, err := Schedule(s)
	if err != nil {
		return rep, fmt.Errorf("schedule: %w", err)
	}
	p.setState(St.Scheduled)

	rep.Session = uuid.New()
	rep.Events = len(events)
	if ss, ok := p.Out.(sessionSetter); ok {
		ss.SetSession(rep.Session)
	}
	span.SetAttributes(
		attribute.String("session", rep.Session.String()),
		attribute.Int("tracks", s.TrackCount()),
		attribute.Int("events", len(events)),
		attribute.Float64("tempo", s.Tempo()),
	)
	slog.Info("Playback starting",
		slog.String("session", rep.Session.String()),
		slog.String("output", p.Out.Type()),
		slog.Int("events", len(events)))

	err = p.dispatch(ctx, events, &rep)
	p.setState(St.Draining)

	if err != nil {
		slog.Warn("Playback stopped", slog.Any("error", err), slog.Int("sent", rep.Sent))
		return rep, err
	}
	if len(rep.Failures) > 0 {
		errs := make([]error, len(rep.Failures))
		for i, f := range rep.Failures {
			errs[i] = f.Err
		}
		return rep, fmt.Errorf("%w: %d of %d events: %w", ErrDispatch, len(rep.Failures), rep.Events, errors.Join(errs...))
	}

	slog.Info("Playback finished",
		slog.String("session", rep.Session.String()),
		slog.Int("sent", rep.Sent),
		slog.Duration("elapsed", rep.Elapsed))
	return rep, nil
}

// dispatch waits for each event's moment and sends it.
// Only cancellation ends it early.
func (p *Player) dispatch(ctx context.Context, events []St.TimedEvent, rep *Report) error {
	p.MU.Lock()
	obs := p.Observers
	p.MU.Unlock()

	start := p.Clock.Now()
	lateness := make([]time.Duration, 0, len(events))
	defer func() {
		rep.Elapsed = p.Clock.Now().Sub(start)
		rep.Lateness = So.SummarizeLateness(lateness)
	}()

	for _, ev := range events {
		due := start.Add(ev.At)
		if err := p.Clock.Wait(ctx, due.Sub(p.Clock.Now())); err != nil {
			return err
		}
		late := p.Clock.Now().Sub(due)
		lateness = append(lateness, late)

		err := p.send(ev)
		if err != nil {
			slog.Error("Event dispatch failed",
				slog.Int("track", ev.Track),
				slog.Int("measure", ev.Measure),
				slog.Duration("at", ev.At),
				slog.Any("error", err))
			rep.Failures = append(rep.Failures, St.DispatchFailure{Event: ev, Err: err})
		} else {
			rep.Sent++
		}
		for _, o := range obs {
			o.EventDispatched(ev, late, err)
		}
	}
	return nil
}

// send delivers every pitch of the event, trying all of them even when one fails.
func (p *Player) send(ev St.TimedEvent) error {
	var errs []error
	for _, key := range ev.Pitches {
		var err error
		if ev.On {
			err = p.noteOn(ev.Channel, key, ev.Velocity)
		} else {
			err = p.noteOff(ev.Channel, key, ev.Velocity)
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("key %d: %w", key, err))
		}
	}
	return errors.Join(errs...)
}
