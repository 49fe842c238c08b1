package cmd

import (
	"encoding/json"

	Ss "github.com/W-Mai/simple-compose/score"
	"github.com/spf13/cobra"
)

func init() {
	demoCmd.Flags().Uint64Var(&demoSeed, "seed", 1, "seed of the melody and rhythm")
	rootCmd.AddCommand(demoCmd)
}

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Prints the demo score",
	Long:  `Prints the generated demo score as JSON, ready for play or export.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := Ss.Demo(demoSeed)
		if err != nil {
			return err
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(Ss.ToFile(s))
	},
}
