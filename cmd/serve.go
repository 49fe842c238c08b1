package cmd

import (
	"context"
	"os"
	"os/signal"
	"time"

	Md "github.com/W-Mai/simple-compose/display"
	"github.com/spf13/cobra"
)

var serveAddr string

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", envOr("COMPOSE_SERVE_ADDR", ":8090"), "listen address (COMPOSE_SERVE_ADDR)")
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serves metrics, status and the websocket",
	Long:  `Serves /metrics, /api/version, /api/status and /ws with no playback attached.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		view := Md.NewView(nil)
		srv := view.NewServer(serveAddr)

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()
		go func() {
			<-ctx.Done()
			shutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			view.Shutdown(shutdown)
		}()

		return view.ListenAndServe(srv)
	},
}
