package player

import (
	"fmt"

	Sm "github.com/W-Mai/simple-compose/theory"
)

// Channel sends on one MIDI channel of a connected Player.
type Channel struct {
	id     uint8
	player *Player
}

func (c Channel) ID() uint8 { return c.id }

func (c Channel) NoteOn(key, velocity uint8) error {
	if c.player == nil {
		return ErrNotInitialized
	}
	return c.player.noteOn(c.id, key, velocity)
}

func (c Channel) NoteOff(key uint8) error {
	if c.player == nil {
		return ErrNotInitialized
	}
	return c.player.noteOff(c.id, key, Sm.DefaultVelocity)
}

// Strike sounds a note right away, at its own velocity. Rests do nothing.
// The caller decides when to release it.
func (c Channel) Strike(n Sm.Note) error {
	if n.IsRest() {
		return nil
	}
	key, err := n.Pitch.MidiNumber()
	if err != nil {
		return fmt.Errorf("channel %d: %w", c.id, err)
	}
	return c.NoteOn(key, n.Velocity)
}

// StopAll releases every key still held on this channel.
func (c Channel) StopAll() error {
	if c.player == nil {
		return ErrNotInitialized
	}
	return c.player.stopChannel(c.id)
}
