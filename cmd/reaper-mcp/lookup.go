package main

import (
	"fmt"

	"github.com/Conceptual-Machines/magda-reaper-mcp/chart"
	"github.com/Conceptual-Machines/magda-reaper-mcp/config"
	"github.com/Conceptual-Machines/magda-reaper-mcp/lookup"
	"github.com/spf13/cobra"
)

var (
	lookupBPM   int
	lookupGenre string
)

func init() {
	lookupCmd.Flags().IntVar(&lookupBPM, "bpm", 0, "tempo override in BPM")
	lookupCmd.Flags().StringVar(&lookupGenre, "genre", "", "genre used to estimate the tempo")
	rootCmd.AddCommand(lookupCmd)
}

var lookupCmd = &cobra.Command{
	Use:   "lookup <song> <artist>",
	Short: "Look a song's chord chart up online and print it",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		c, err := lookup.NewClient(cfg).LookupSong(cmd.Context(), args[0], args[1], lookupBPM, lookupGenre)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), chart.Format(c))
		return nil
	},
}
