package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "arbor",
	Short: "Arbor drives branching conversations with language models",
	Long: `Arbor keeps every exchange with a language model in a conversation tree:
prompts and responses are nodes, alternative continuations are siblings, and
the cursor marks where the next exchange attaches. Runs can be saved as
snapshots and explored interactively afterwards.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Path to config file (JSON or YAML)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging to stderr")
}
