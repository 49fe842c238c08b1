package plugin

/*

	The Adapter sits between /player/ and the outside world.
	Contains core interfaces for Plugin

*/

import (
	"errors"
	"time"

	St "github.com/W-Mai/simple-compose/types"
)

// ErrPortClosed is returned by sends on an adapter that has no open port.
var ErrPortClosed = errors.New("output port is not open")

// OutputAdapter is the transport sink the player owns for a playback.
// Ports lists what can be opened, Open binds one of them,
// and every note edge goes out as a single call.
// Flush silences everything that is sounding (all notes off).
type OutputAdapter interface {
	Ports() ([]string, error)                   // Names of available output ports
	Open(port int, label string) error          // Bind to a port, label names the client
	NoteOn(channel, key, velocity uint8) error  // Send a note-on, 0x90|channel
	NoteOff(channel, key, velocity uint8) error // Send a note-off, 0x80|channel
	Flush() error                               // All notes off on every channel
	Close() error                               // Release the port, safe to call twice
	Type() string                               // ID for output
}

// Recorder can be used to define a place for dispatched notes to go,
// note-by-note or in batches if supported by the storage type.
type Recorder interface {
	WriteNote(rec *St.NoteRecord) error                        // Write singleton note data
	WriteBatch(recs []*St.NoteRecord) error                    // Write batches of notes
	QueryRange(start, end time.Time) ([]*St.NoteRecord, error) // Time range query tool
	Flush() error                                              // Flush any buffered data
	Close() error                                              // Close the recorder and release resources
	Type() string                                              // ID for recorder
}
