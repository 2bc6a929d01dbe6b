package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:           "levelup",
	Short:         "Gamified habit tracker with an AI coach",
	Long:          "levelup tracks daily habits and objectives, awards XP and levels, and asks a language model for daily objectives and encouragement.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func main() {
	rootCmd.AddCommand(
		newServeCmd(),
		newSSHCmd(),
		newDashCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
