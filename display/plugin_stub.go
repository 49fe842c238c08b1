//go:build nomidi

package display

import (
	Sp "github.com/W-Mai/simple-compose/plugin"
)

const midiEnabled = false

func portName(out Sp.OutputAdapter) string { return "" }
