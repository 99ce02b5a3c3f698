package main

import (
	"fmt"
	"strings"

	"github.com/Conceptual-Machines/magda-reaper-mcp/agents/arranger"
	"github.com/Conceptual-Machines/magda-reaper-mcp/midifile"
	"github.com/spf13/cobra"
)

var (
	exportOpts        chartFlags
	exportOut         string
	exportInstruments string
	exportGenre       string
)

func init() {
	exportOpts.register(exportCmd)
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "backing.mid", "output .mid path")
	exportCmd.Flags().StringVar(&exportInstruments, "instruments", strings.Join(arranger.ValidInstruments, ","), "comma-separated instruments")
	exportCmd.Flags().StringVar(&exportGenre, "genre", "rock", "drum groove genre")
	rootCmd.AddCommand(exportCmd)
}

var exportCmd = &cobra.Command{
	Use:   "export <file>",
	Short: "Arrange a chord chart file and write it as a Standard MIDI File",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		instruments, invalid := arranger.ParseInstruments(exportInstruments)
		if len(invalid) > 0 {
			return fmt.Errorf("invalid instruments: %s (valid: %s)",
				strings.Join(invalid, ", "), strings.Join(arranger.ValidInstruments, ", "))
		}

		c, err := exportOpts.parse(args[0])
		if err != nil {
			return err
		}
		parts, err := arranger.ChartToParts(c, instruments, exportGenre)
		if err != nil {
			return err
		}
		if err := midifile.WriteFile(exportOut, c, parts); err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s: %d bars at %d BPM (%s)\n",
			exportOut, c.TotalBars(), c.BPM, strings.Join(instruments, ", "))
		return nil
	},
}
