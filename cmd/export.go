package cmd

import (
	"fmt"
	"log/slog"

	Sy "github.com/W-Mai/simple-compose/player"
	Sp "github.com/W-Mai/simple-compose/plugin"
	Ss "github.com/W-Mai/simple-compose/score"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(exportCmd)
}

var exportCmd = &cobra.Command{
	Use:   "export <score.json|URL> <out.mid>",
	Short: "Exports a score as a MIDI file",
	Long:  `Schedules a score and writes it as a Standard MIDI File, one track per score track.`,
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := Ss.Load(args[0])
		if err != nil {
			return err
		}
		return exportScore(s, args[1])
	},
}

func exportScore(s *Ss.Score, path string) error {
	events, err := Sy.Schedule(s)
	if err != nil {
		return fmt.Errorf("schedule: %w", err)
	}
	ts := s.TimeSignature()
	den, err := ts.Denominator()
	if err != nil {
		return err
	}

	out := Sp.NewSMFOutput(s.Tempo(), ts.Beats, den)
	slog.Debug("Exporting", slog.String("path", path), slog.Int("events", len(events)), slog.String("meter", ts.String()))
	return out.WriteFile(path, events)
}
