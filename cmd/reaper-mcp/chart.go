package main

import (
	"fmt"
	"os"

	"github.com/Conceptual-Machines/magda-reaper-mcp/chart"
	"github.com/Conceptual-Machines/magda-reaper-mcp/models"
	"github.com/spf13/cobra"
)

// chartFlags are shared by the commands that read a chord chart file
type chartFlags struct {
	title   string
	artist  string
	bpm     int
	key     string
	timeSig string
}

func (f *chartFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.title, "title", "Untitled", "song title")
	cmd.Flags().StringVar(&f.artist, "artist", "Unknown", "artist name")
	cmd.Flags().IntVar(&f.bpm, "bpm", 0, "tempo in BPM (0 = 120)")
	cmd.Flags().StringVar(&f.key, "key", "", "musical key (detected from the chords when empty)")
	cmd.Flags().StringVar(&f.timeSig, "time-sig", "4/4", "time signature")
}

func (f *chartFlags) parse(path string) (*models.SongChart, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read chord chart: %w", err)
	}
	c := chart.ParseChordChart(string(data), chart.Options{
		Title:   f.title,
		Artist:  f.artist,
		BPM:     f.bpm,
		Key:     f.key,
		TimeSig: f.timeSig,
	})
	if len(c.Sections) == 0 {
		return nil, fmt.Errorf("no sections found in %s: use [SectionName] headers and chord symbols", path)
	}
	return c, nil
}

var chartOpts chartFlags

func init() {
	chartOpts.register(chartCmd)
	rootCmd.AddCommand(chartCmd)
}

var chartCmd = &cobra.Command{
	Use:   "chart <file>",
	Short: "Parse a chord chart file and print the result",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := chartOpts.parse(args[0])
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), chart.Format(c))
		return nil
	},
}
