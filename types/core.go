package types

/*

	These are the "immutable" core types of simple-compose,
	provided for cross-package use (player, plugins, display) and testing.

	Constructors are housed in their own packages.
	Music theory values live in /theory/, these types only
	carry what leaves the scheduler: timed MIDI events and their records.

*/

import (
	"time"

	"github.com/google/uuid"
)

// TimedEvent is one scheduled MIDI action.
// A chord produces a single event carrying every tone,
// a note sequence produces one event per note edge.
type TimedEvent struct {
	At       time.Duration // offset from the start of playback
	Track    int           // score track index
	Channel  uint8         // MIDI channel, 0-15
	Measure  int           // measure index within the track
	On       bool          // note-on when true, note-off otherwise
	Pitches  []uint8       // MIDI note numbers
	Velocity uint8
}

// PlayerState follows playback from setup to teardown:
// Uninitialized → PortSelected → Connected → Scheduled → Draining → Closed
type PlayerState int

const (
	Uninitialized PlayerState = iota
	PortSelected
	Connected
	Scheduled
	Draining
	Closed
)

var playerStateNames = [...]string{
	"uninitialized", "port-selected", "connected", "scheduled", "draining", "closed",
}

func (s PlayerState) String() string {
	if s < 0 || int(s) >= len(playerStateNames) {
		return "unknown"
	}
	return playerStateNames[s]
}

// DispatchFailure records an event whose send failed during playback.
type DispatchFailure struct {
	Event TimedEvent
	Err   error
}

// NoteRecord is what recording outputs persist for every message sent.
type NoteRecord struct {
	Session   uuid.UUID // playback session
	Timestamp time.Time // wall clock at send
	Channel   uint8
	Pitch     uint8
	Velocity  uint8
	On        bool
}
