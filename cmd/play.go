package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"time"

	Md "github.com/W-Mai/simple-compose/display"
	Sy "github.com/W-Mai/simple-compose/player"
	Ss "github.com/W-Mai/simple-compose/score"
	"github.com/spf13/cobra"
)

var (
	playOutput  string
	playPort    int
	playRecord  string
	playMonitor bool
	playServe   string
	playInstant bool
	playTempo   float64
	demoSeed    uint64
)

func init() {
	f := playCmd.Flags()
	f.StringVar(&playOutput, "output", "", "output: midi or memory (COMPOSE_OUTPUT)")
	f.IntVar(&playPort, "port", 0, "output port index (COMPOSE_MIDI_PORT)")
	f.StringVar(&playRecord, "record", "", "badger directory to record sent notes in, or :memory: (COMPOSE_BADGER_PATH)")
	f.BoolVar(&playMonitor, "monitor", false, "draw the playback monitor in the terminal")
	f.StringVar(&playServe, "serve", "", "serve metrics, status and websocket on this address while playing (COMPOSE_SERVE_ADDR)")
	f.BoolVar(&playInstant, "instant", false, "dry run on a virtual clock, without waiting")
	f.Float64Var(&playTempo, "tempo", 0, "override the score tempo (COMPOSE_TEMPO)")
	f.Uint64Var(&demoSeed, "seed", 1, "seed of the demo score played without a file")
	rootCmd.AddCommand(playCmd)
}

var playCmd = &cobra.Command{
	Use:   "play [score.json|URL]",
	Short: "Plays a score",
	Long: `Plays a JSON score file or URL in real time on the configured output.
Without an argument the generated demo score is played.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := loadScore(args, demoSeed)
		if err != nil {
			return err
		}
		tempo := playTempo
		if !cmd.Flags().Changed("tempo") {
			tempo = Sy.FillEnvVarFloat("COMPOSE_TEMPO", 0)
		}
		if tempo > 0 {
			s.WithTempo(tempo)
		}

		p, closer, err := Md.InitOutput(playConfig(cmd))
		if err != nil {
			return err
		}
		defer func() {
			if err := closer(); err != nil {
				slog.Error("Recorder close failed", slog.Any("error", err))
			}
		}()
		if playInstant {
			p.Clock = Sy.NewInstantClock(time.Now())
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		addr := playServe
		if addr == "" {
			addr = envOr("COMPOSE_SERVE_ADDR", "")
		}

		var rep Sy.Report
		switch {
		case playMonitor:
			screen, err := Md.GetTTY()
			if err != nil {
				return err
			}
			rep, err = Md.StartMonitor(ctx, screen, p, s, addr)
			printReport(cmd.OutOrStdout(), rep)
			return err
		case addr != "":
			rep, err = Md.StartWebNoTUI(ctx, p, s, addr)
		default:
			rep, err = p.Play(ctx, s)
		}
		printReport(cmd.OutOrStdout(), rep)
		return err
	},
}

// playConfig layers flags the user set over the environment.
func playConfig(cmd *cobra.Command) Md.OutputConfig {
	cfg := Md.OutputConfigFromEnv()
	if cmd.Flags().Changed("output") {
		cfg.Output = playOutput
	}
	if cmd.Flags().Changed("port") {
		cfg.Port = playPort
	}
	if cmd.Flags().Changed("record") {
		cfg.BadgerPath = playRecord
	}
	return cfg
}

// loadScore reads the score named in args, or generates the demo.
func loadScore(args []string, seed uint64) (*Ss.Score, error) {
	if len(args) == 0 {
		slog.Info("No score given, playing the demo", slog.Uint64("seed", seed))
		return Ss.Demo(seed)
	}
	return Ss.Load(args[0])
}

func printReport(w io.Writer, rep Sy.Report) {
	if rep.Events == 0 {
		return
	}
	fmt.Fprintf(w, "session %s: sent %d of %d events in %s\n",
		rep.Session, rep.Sent, rep.Events, rep.Elapsed.Round(time.Millisecond))
	fmt.Fprintf(w, "lateness: %s\n", rep.Lateness)
	for _, f := range rep.Failures {
		fmt.Fprintf(w, "failed: track %d measure %d at %s: %v\n",
			f.Event.Track, f.Event.Measure, f.Event.At, f.Err)
	}
}
