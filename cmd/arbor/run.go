package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"

	"github.com/arborworks/arbor/observability"
	"github.com/arborworks/arbor/orchestrate"
	"github.com/arborworks/arbor/persist"
	"github.com/arborworks/arbor/provider"
	"github.com/arborworks/arbor/provider/openai"
	"github.com/arborworks/arbor/session"
)

// runCmd executes a prompt chain against the configured provider.
var runCmd = &cobra.Command{
	Use:   "run [prompts...]",
	Short: "Run a chain of prompts and print the final response",
	Long: `Run advances the conversation once per prompt, in order. Prompts come
from the arguments or, with --prompts-file, one per line from a file. The
cursor ends on the last response; with a snapshot store configured the whole
tree is saved under the session ID.`,
	Run: func(cmd *cobra.Command, args []string) {
		configFile, _ := cmd.Flags().GetString("config")
		verbose, _ := cmd.Flags().GetBool("verbose")
		promptsFile, _ := cmd.Flags().GetString("prompts-file")

		cfg := DefaultConfig()
		if configFile != "" {
			loaded, err := LoadConfig(configFile)
			if err != nil {
				log.Fatalf("Failed to load config: %v", err)
			}
			cfg = *loaded
		}

		configureLogging(verbose)
		if verbose && cfg.Observer == "noop" {
			cfg.Observer = "slog"
		}

		prompts := args
		if promptsFile != "" {
			loaded, err := readPrompts(promptsFile)
			if err != nil {
				log.Fatalf("Failed to read prompts file: %v", err)
			}
			prompts = append(prompts, loaded...)
		}
		if len(prompts) == 0 {
			fmt.Fprintln(os.Stderr, "Usage: arbor run [flags] <prompt> [prompt...]")
			os.Exit(1)
		}

		prov, err := buildProvider(cfg)
		if err != nil {
			log.Fatalf("Failed to create provider: %v", err)
		}

		observer, err := observability.GetObserver(cfg.Observer)
		if err != nil {
			log.Fatalf("Failed to resolve observer: %v", err)
		}

		opts := []session.Option{session.WithObserver(observer)}
		if cfg.SystemPrompt != "" {
			opts = append(opts, session.WithSystemPrompt(cfg.SystemPrompt))
		}
		s := session.New(prov, opts...)

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		steps, err := orchestrate.Chain(ctx, s, prompts)
		if err != nil {
			log.Fatalf("Chain failed after %d steps: %v", len(steps), err)
		}

		fmt.Println(steps[len(steps)-1].Text)

		if cfg.Snapshot.Store != "" {
			if err := saveSnapshot(ctx, cfg, s); err != nil {
				log.Fatalf("Failed to save snapshot: %v", err)
			}
			fmt.Fprintf(os.Stderr, "snapshot saved: %s\n", s.ID())
		}
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().String("prompts-file", "", "File with one prompt per line")
}

func buildProvider(cfg Config) (provider.Provider, error) {
	reg := provider.NewRegistry()
	if err := reg.Register("openai", func() (provider.Provider, error) {
		return openai.New(cfg.OpenAI)
	}); err != nil {
		return nil, err
	}
	return reg.Get(cfg.Provider)
}

func saveSnapshot(ctx context.Context, cfg Config, s *session.Session) error {
	if cfg.Snapshot.Store == "file" {
		dir := cfg.Snapshot.Dir
		if dir == "" {
			dir = "snapshots"
		}
		persist.RegisterStore("file", persist.NewFileStore(dir))
	}

	store, err := persist.GetStore(cfg.Snapshot.Store)
	if err != nil {
		return err
	}
	return store.Save(ctx, persist.Capture(s))
}

func configureLogging(verbose bool) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})))
}

func readPrompts(filename string) ([]string, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}

	var prompts []string
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			prompts = append(prompts, line)
		}
	}
	return prompts, nil
}
