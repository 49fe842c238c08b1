package display

import (
	"errors"
	"fmt"
	"log/slog"

	Sy "github.com/W-Mai/simple-compose/player"
	Sp "github.com/W-Mai/simple-compose/plugin"
)

// MemoryBadger as COMPOSE_BADGER_PATH keeps the recording in memory.
const MemoryBadger = ":memory:"

// OutputConfig selects and tunes the playback output.
type OutputConfig struct {
	Output      string // registry name, "midi" or "memory"
	Port        int    // output port index
	Label       string // client label on ports that show one
	BadgerPath  string // record dispatched notes here when set
	BadgerBatch int    // records per badger write batch
}

// OutputConfigFromEnv reads COMPOSE_OUTPUT, COMPOSE_MIDI_PORT,
// COMPOSE_MIDI_LABEL, COMPOSE_BADGER_PATH and COMPOSE_BADGER_BATCH.
func OutputConfigFromEnv() OutputConfig {
	cfg := OutputConfig{
		Output:      Sy.FillEnvVar("COMPOSE_OUTPUT"),
		Port:        Sy.FillEnvVarInt("COMPOSE_MIDI_PORT", 0),
		Label:       Sy.FillEnvVar("COMPOSE_MIDI_LABEL"),
		BadgerPath:  Sy.FillEnvVar("COMPOSE_BADGER_PATH"),
		BadgerBatch: Sy.FillEnvVarInt("COMPOSE_BADGER_BATCH", 64),
	}
	if cfg.Output == "ENOENT" {
		cfg.Output = "midi"
	}
	if cfg.Label == "ENOENT" {
		cfg.Label = Sy.DefaultLabel
	}
	if cfg.BadgerPath == "ENOENT" {
		cfg.BadgerPath = ""
	}
	return cfg
}

// InitOutput builds a Player on the configured output.
// With a badger path the output is wrapped so every sent note is recorded,
// and the returned closer releases the database once playback is over.
func InitOutput(cfg OutputConfig) (*Sy.Player, func() error, error) {
	if cfg.Output == "midi" && !midiEnabled {
		slog.Warn("MIDI support not compiled in this build")
	}

	out, err := Sp.OutputLookup(cfg.Output)
	if err != nil {
		slog.Error("Failed to create adapter", slog.String("output", cfg.Output), slog.Any("error", err))
		return nil, nil, err
	}

	closer := func() error { return nil }
	if cfg.BadgerPath != "" {
		var rec *Sp.BadgerOutput
		if cfg.BadgerPath == MemoryBadger {
			rec, err = Sp.NewBadgerMemory(cfg.BadgerBatch)
		} else {
			rec, err = Sp.NewBadgerOutput(cfg.BadgerPath, cfg.BadgerBatch)
		}
		if err != nil {
			return nil, nil, fmt.Errorf("open recorder: %w", err)
		}
		out = Sp.NewRecordingOutput(out, rec)
		closer = rec.Close
		slog.Info("Recording enabled", slog.String("path", cfg.BadgerPath), slog.Int("batch", cfg.BadgerBatch))
	}

	p := Sy.NewPlayer(out)
	p.DefaultPort = cfg.Port
	if cfg.Label != "" {
		p.Label = cfg.Label
	}

	slog.Info("Output configured",
		slog.String("output", out.Type()),
		slog.Int("port", cfg.Port),
		slog.String("label", p.Label))
	return p, closer, nil
}

// Recorder digs the badger recorder back out of a player built by InitOutput.
func Recorder(p *Sy.Player) (*Sp.BadgerOutput, error) {
	if p == nil {
		return nil, Sy.ErrNotInitialized
	}
	ro, ok := p.Out.(*Sp.RecordingOutput)
	if !ok {
		return nil, errors.New("output is not recording")
	}
	rec, ok := ro.Rec.(*Sp.BadgerOutput)
	if !ok {
		return nil, fmt.Errorf("recorder is %s, not badger", ro.Rec.Type())
	}
	return rec, nil
}
