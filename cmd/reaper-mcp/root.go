package main

import (
	"github.com/spf13/cobra"
)

const (
	serverName    = "reaper-mcp"
	serverVersion = "0.4.0"
)

var rootCmd = &cobra.Command{
	Use:   serverName,
	Short: "MCP server for REAPER production workflows",
	Long: `reaper-mcp exposes REAPER to MCP clients: backing tracks from chord charts,
session templates, arrangement, MIDI production, Neural DSP control and rendering.
It talks to REAPER through the file based Lua bridge script.`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() {
	cobra.CheckErr(rootCmd.Execute())
}
