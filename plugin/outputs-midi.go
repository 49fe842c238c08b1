//go:build !nomidi

package plugin

import (
	"fmt"
	"log/slog"
	"sync"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv"
)

// MIDIOutput sends to a hardware or virtual port through rtmidi.
type MIDIOutput struct {
	MU    sync.Mutex
	Port  drivers.Out
	Send  func(msg midi.Message) error
	Label string
}

func NewMIDIOutput() *MIDIOutput {
	return &MIDIOutput{}
}

func (mo *MIDIOutput) Ports() ([]string, error) {
	outs := midi.GetOutPorts()
	names := make([]string, len(outs))
	for i, out := range outs {
		names[i] = out.String()
	}
	return names, nil
}

func (mo *MIDIOutput) Open(port int, label string) error {
	mo.MU.Lock()
	defer mo.MU.Unlock()

	out, err := midi.OutPort(port)
	if err != nil {
		slog.Error("Error opening MIDI port", slog.Int("port", port))
		return fmt.Errorf("error opening MIDI port %d: %w", port, err)
	}

	send, err := midi.SendTo(out)
	if err != nil {
		slog.Error("Error sending to MIDI port", slog.Int("port", port))
		return fmt.Errorf("error sending to MIDI port %d: %w", port, err)
	}

	mo.Port = out
	mo.Send = send
	mo.Label = label
	slog.Info("MIDI port open",
		slog.Int("port", port),
		slog.String("name", out.String()),
		slog.String("label", label))
	return nil
}

func (mo *MIDIOutput) send(msg midi.Message) error {
	mo.MU.Lock()
	defer mo.MU.Unlock()

	if mo.Send == nil {
		return ErrPortClosed
	}
	return mo.Send(msg)
}

func (mo *MIDIOutput) NoteOn(channel, key, velocity uint8) error {
	return mo.send(midi.NoteOn(channel, key, velocity))
}

func (mo *MIDIOutput) NoteOff(channel, key, velocity uint8) error {
	return mo.send(midi.NoteOffVelocity(channel, key, velocity))
}

func (mo *MIDIOutput) Flush() error {
	for ch := range uint8(16) {
		if err := mo.send(midi.ControlChange(ch, midi.AllNotesOff, midi.Off)); err != nil {
			return err
		}
	}
	return nil
}

func (mo *MIDIOutput) Close() error {
	mo.MU.Lock()
	defer mo.MU.Unlock()

	if mo.Port == nil {
		return nil
	}
	err := mo.Port.Close()
	midi.CloseDriver()
	mo.Port = nil
	mo.Send = nil
	if err != nil {
		slog.Error("MIDI port close failed", slog.Any("error", err))
		return fmt.Errorf("close MIDI port: %w", err)
	}
	return nil
}

func (mo *MIDIOutput) Type() string { return "MIDI" }
