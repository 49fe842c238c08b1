package cmd

import (
	"io"
	"log/slog"
	"strings"

	So "github.com/W-Mai/simple-compose/obvy"
	Sy "github.com/W-Mai/simple-compose/player"
	"github.com/spf13/cobra"
)

var (
	logLevel     string
	otelMode     string
	shutdownOTel = func() {}
)

var rootCmd = &cobra.Command{
	Use:   "compose",
	Short: "Music theory engine and MIDI score player",
	Long: `compose builds scores from chords, scales and rhythms,
plays them on MIDI outputs in real time and exports them as MIDI files.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		setupLogging(cmd.ErrOrStderr(), logLevel)

		shutdown, err := So.InitOTel(otelMode)
		shutdownOTel = shutdown
		if err != nil {
			// tracing is optional, playback is not
			slog.Warn("Tracing disabled", slog.String("mode", otelMode), slog.Any("error", err))
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", envOr("COMPOSE_LOG_LEVEL", "info"),
		"log level: debug, info, warn or error (COMPOSE_LOG_LEVEL)")
	rootCmd.PersistentFlags().StringVar(&otelMode, "otel", envOr("COMPOSE_OTEL", "none"),
		"trace exporter: honeycomb, otlp or none (COMPOSE_OTEL)")
}

func Execute() {
	defer func() { shutdownOTel() }()
	cobra.CheckErr(rootCmd.Execute())
}

// envOr is FillEnvVar with a default in place of ENOENT.
func envOr(ev, def string) string {
	if v := Sy.FillEnvVar(ev); v != "ENOENT" {
		return v
	}
	return def
}

// parseLevel falls back to info on anything slog does not know.
func parseLevel(s string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return slog.LevelInfo
	}
	return level
}

func setupLogging(w io.Writer, level string) {
	handler := slog.NewTextHandler(w, &slog.HandlerOptions{Level: parseLevel(level)})
	slog.SetDefault(slog.New(handler))
}
