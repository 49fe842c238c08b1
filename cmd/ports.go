package cmd

import (
	"fmt"

	Md "github.com/W-Mai/simple-compose/display"
	"github.com/spf13/cobra"
)

var portsOutput string

func init() {
	portsCmd.Flags().StringVar(&portsOutput, "output", "", "output to list ports of (default COMPOSE_OUTPUT or midi)")
	rootCmd.AddCommand(portsCmd)
}

var portsCmd = &cobra.Command{
	Use:   "ports",
	Short: "Lists output ports",
	Long:  `Lists the ports of the configured output, numbered for --port and COMPOSE_MIDI_PORT.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := Md.OutputConfigFromEnv()
		cfg.BadgerPath = ""
		if portsOutput != "" {
			cfg.Output = portsOutput
		}

		p, closer, err := Md.InitOutput(cfg)
		if err != nil {
			return err
		}
		defer closer()

		ports, err := p.ListPorts()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if len(ports) == 0 {
			fmt.Fprintln(out, "no output ports available")
			return nil
		}
		for i, name := range ports {
			fmt.Fprintf(out, "%d: %s\n", i, name)
		}
		return nil
	},
}
