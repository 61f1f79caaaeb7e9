package main

import (
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var rootCmd = &cobra.Command{
	Use:           "coral",
	Short:         "Coral compiled-module tools",
	Long:          `Coral is a toolchain for verifying and inspecting compiled VM modules`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func main() {
	rootCmd.AddCommand(verifyCmd)
	rootCmd.AddCommand(dumpCmd)
	rootCmd.AddCommand(inspectCmd)

	rootCmd.PersistentFlags().Bool("verbose", false, "enable debug logging")
	rootCmd.PersistentFlags().Bool("no-cache", false, "skip the verification result cache")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// isTerminal reports whether f is attached to a terminal.
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
