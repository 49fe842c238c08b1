//go:build !nomidi

package display

import (
	Sp "github.com/W-Mai/simple-compose/plugin"
)

const midiEnabled = true

// portName reports the open MIDI port, looking through a recording wrapper.
func portName(out Sp.OutputAdapter) string {
	if ro, ok := out.(*Sp.RecordingOutput); ok {
		out = ro.Out
	}
	midiOut, ok := out.(*Sp.MIDIOutput)
	if !ok {
		return ""
	}
	midiOut.MU.Lock()
	defer midiOut.MU.Unlock()
	if midiOut.Port == nil {
		return ""
	}
	return midiOut.Port.String()
}
