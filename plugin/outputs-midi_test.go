//go:build !nomidi

package plugin_test

import (
	"testing"

	Sp "github.com/W-Mai/simple-compose/plugin"
)

func TestMIDIOutput(t *testing.T) {
	adapter := Sp.NewMIDIOutput()
	defer adapter.Close()

	t.Run("Refuses sends before a port is open", func(t *testing.T) {
		assertError(t, adapter.NoteOn(0, 60, 100), Sp.ErrPortClosed)
		assertError(t, adapter.NoteOff(0, 60, 0), Sp.ErrPortClosed)
		assertError(t, adapter.Flush(), Sp.ErrPortClosed)
	})

	t.Run("Closing an unopened output is a no-op", func(t *testing.T) {
		assertError(t, adapter.Close(), nil)
	})

	t.Run("Returns Type", func(t *testing.T) {
		assertStringContains(t, adapter.Type(), "MIDI")
	})
}
