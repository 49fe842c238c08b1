//go:build nomidi

package plugin

import "errors"

var errMIDIDisabled = errors.New("MIDI support not compiled in this build")

type MIDIOutput struct{}

func NewMIDIOutput() *MIDIOutput { return &MIDIOutput{} }

func (m *MIDIOutput) Ports() ([]string, error)         { return nil, nil }
func (m *MIDIOutput) Open(port int, label string) error { return errMIDIDisabled }

func (m *MIDIOutput) NoteOn(channel, key, velocity uint8) error {
	return errMIDIDisabled
}

func (m *MIDIOutput) NoteOff(channel, key, velocity uint8) error {
	return errMIDIDisabled
}

func (m *MIDIOutput) Flush() error { return nil }
func (m *MIDIOutput) Close() error { return nil }
func (m *MIDIOutput) Type() string { return "midi-disabled" }
