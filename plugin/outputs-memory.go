package plugin

import (
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"gitlab.com/gomidi/midi/v2"
)

// MemoryOutput keeps every message it is sent, for dry runs and tests.
// FailOn, when set, is consulted before each send and its error returned.
type MemoryOutput struct {
	MU        sync.Mutex
	PortNames []string
	FailOn    func(msg midi.Message) error
	Label     string
	sent      []midi.Message
	open      bool
	closes    int
}

// NewMemoryOutput offers the given ports, or a single "memory" port when none are named.
func NewMemoryOutput(ports ...string) *MemoryOutput {
	if len(ports) == 0 {
		ports = []string{"memory"}
	}
	return &MemoryOutput{PortNames: ports}
}

func (mo *MemoryOutput) Ports() ([]string, error) {
	mo.MU.Lock()
	defer mo.MU.Unlock()
	return slices.Clone(mo.PortNames), nil
}

func (mo *MemoryOutput) Open(port int, label string) error {
	mo.MU.Lock()
	defer mo.MU.Unlock()

	if port < 0 || port >= len(mo.PortNames) {
		return fmt.Errorf("memory output has no port %d", port)
	}
	mo.open = true
	mo.Label = label
	slog.Debug("Memory output open", slog.String("port", mo.PortNames[port]), slog.String("label", label))
	return nil
}

func (mo *MemoryOutput) write(msg midi.Message) error {
	mo.MU.Lock()
	defer mo.MU.Unlock()

	if !mo.open {
		return ErrPortClosed
	}
	if mo.FailOn != nil {
		if err := mo.FailOn(msg); err != nil {
			return err
		}
	}
	mo.sent = append(mo.sent, msg)
	return nil
}

func (mo *MemoryOutput) NoteOn(channel, key, velocity uint8) error {
	return mo.write(midi.NoteOn(channel, key, velocity))
}

func (mo *MemoryOutput) NoteOff(channel, key, velocity uint8) error {
	return mo.write(midi.NoteOffVelocity(channel, key, velocity))
}

func (mo *MemoryOutput) Flush() error {
	for ch := range uint8(16) {
		if err := mo.write(midi.ControlChange(ch, midi.AllNotesOff, midi.Off)); err != nil {
			return err
		}
	}
	return nil
}

func (mo *MemoryOutput) Close() error {
	mo.MU.Lock()
	defer mo.MU.Unlock()
	mo.open = false
	mo.closes++
	return nil
}

func (mo *MemoryOutput) Type() string { return "Memory" }

// Sent returns a copy of everything written so far, in order.
func (mo *MemoryOutput) Sent() []midi.Message {
	mo.MU.Lock()
	defer mo.MU.Unlock()
	return slices.Clone(mo.sent)
}

// Notes returns only the note-on and note-off messages.
func (mo *MemoryOutput) Notes() []midi.Message {
	var notes []midi.Message
	var ch, key, vel uint8
	for _, msg := range mo.Sent() {
		if msg.GetNoteOn(&ch, &key, &vel) || msg.GetNoteOff(&ch, &key, &vel) {
			notes = append(notes, msg)
		}
	}
	return notes
}

// IsOpen reports whether a port is bound.
func (mo *MemoryOutput) IsOpen() bool {
	mo.MU.Lock()
	defer mo.MU.Unlock()
	return mo.open
}

// Closes counts calls to Close.
func (mo *MemoryOutput) Closes() int {
	mo.MU.Lock()
	defer mo.MU.Unlock()
	return mo.closes
}
