package cmd

import (
	"github.com/spf13/cobra"
)

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "matdash",
	Short: "Gateway and web UI for the materials business dashboard",
	Long: `MatDash serves the internal business dashboard: an AI chat widget
backed by the automation engine, a browser for the document share, and
live backend status. It sits in front of the chat, file and automation
services and owns all presentation logic.`,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", ".matdash.yml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
