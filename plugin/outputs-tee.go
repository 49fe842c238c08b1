package plugin

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	St "github.com/W-Mai/simple-compose/types"
	"github.com/google/uuid"
)

// RecordingOutput forwards every note to Out and, once Out accepted it,
// writes a NoteRecord for the current session to Rec.
// Recorder failures are logged, they never fail the send.
type RecordingOutput struct {
	Out     OutputAdapter
	Rec     Recorder
	Session uuid.UUID
	Now     func() time.Time
}

func NewRecordingOutput(out OutputAdapter, rec Recorder) *RecordingOutput {
	return &RecordingOutput{
		Out:     out,
		Rec:     rec,
		Session: uuid.New(),
		Now:     time.Now,
	}
}

// SetSession tags subsequent records with a new playback session.
func (ro *RecordingOutput) SetSession(id uuid.UUID) { ro.Session = id }

func (ro *RecordingOutput) Ports() ([]string, error) { return ro.Out.Ports() }

func (ro *RecordingOutput) Open(port int, label string) error {
	return ro.Out.Open(port, label)
}

func (ro *RecordingOutput) record(channel, key, velocity uint8, on bool) {
	rec := &St.NoteRecord{
		Session:   ro.Session,
		Timestamp: ro.Now(),
		Channel:   channel,
		Pitch:     key,
		Velocity:  velocity,
		On:        on,
	}
	if err := ro.Rec.WriteNote(rec); err != nil {
		slog.Warn("Note record failed",
			slog.String("recorder", ro.Rec.Type()),
			slog.Any("error", err))
	}
}

func (ro *RecordingOutput) NoteOn(channel, key, velocity uint8) error {
	if err := ro.Out.NoteOn(channel, key, velocity); err != nil {
		return err
	}
	ro.record(channel, key, velocity, true)
	return nil
}

func (ro *RecordingOutput) NoteOff(channel, key, velocity uint8) error {
	if err := ro.Out.NoteOff(channel, key, velocity); err != nil {
		return err
	}
	ro.record(channel, key, velocity, false)
	return nil
}

func (ro *RecordingOutput) Flush() error {
	return errors.Join(ro.Out.Flush(), ro.Rec.Flush())
}

// Close closes the output only; the recorder outlives a single playback
// and is closed by whoever opened it.
func (ro *RecordingOutput) Close() error {
	if err := ro.Rec.Flush(); err != nil {
		slog.Warn("Recorder flush on close failed", slog.Any("error", err))
	}
	return ro.Out.Close()
}

func (ro *RecordingOutput) Type() string {
	return fmt.Sprintf("%s+%s", ro.Out.Type(), ro.Rec.Type())
}
