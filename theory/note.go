package theory

import "fmt"

// DefaultVelocity is the MIDI velocity used when none is given.
const DefaultVelocity uint8 = 0x64

// Note is a single pitched event with its own rhythmic value.
type Note struct {
	Pitch    Tuning
	Duration Duration
	Velocity uint8
}

func NewNote(pitch Tuning, duration Duration) Note {
	return Note{Pitch: pitch, Duration: duration, Velocity: DefaultVelocity}
}

// Rest is a silent note of the given length.
func Rest(duration Duration) Note {
	return NewNote(Tuning{}, duration)
}

func (n Note) WithDuration(d Duration) Note {
	n.Duration = d
	return n
}

// WithVelocity clamps v into the seven-bit MIDI range.
func (n Note) WithVelocity(v uint8) Note {
	if v > 127 {
		v = 127
	}
	n.Velocity = v
	return n
}

func (n Note) IsRest() bool { return n.Pitch.Class == Silent }

func (n Note) String() string {
	return fmt.Sprintf("%s %s", n.Pitch, n.Duration)
}
