package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "revuchat",
	Short: "Terminal client for the Revu AI product review assistant",
	Long: `revuchat talks to a Revu AI backend and streams assistant answers about
a product's reviews token by token. Conversations are stored locally and can
be exported as HTML transcripts.`,
	SilenceUsage: true,
}

func main() {
	rootCmd.AddCommand(chatCmd, listCmd, exportCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
