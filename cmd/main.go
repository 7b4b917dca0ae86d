package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	cfgPkg "github.com/xhad/docchat/pkg/config"
)

type flags struct {
	configPath string
	dirs       []string
	baseURL    string
	model      string
	indexType  string
	topK       int
	logLevel   string
	noProgress bool
}

var opts flags

var rootCmd = &cobra.Command{
	Use:   "docchat",
	Short: "Chat with your documents",
	Long: `docchat ingests directories of text, PDF and HTML files into a vector index
and answers questions about them with a local Ollama model.

Directories are given with --dir path:type, or entered interactively.
Type $$$ to end the conversation.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSession(cmd.Context(), cmd, true)
	},
}

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Ingest directories into the index without chatting",
	Long: `Extracts, chunks and embeds every matching file in the given directories
and prints a summary. Useful with a persistent index (chromem, pgvector, qdrant).`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(opts.dirs) == 0 {
			return fmt.Errorf("at least one --dir path:type is required")
		}
		return runSession(cmd.Context(), cmd, false)
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&opts.configPath, "config", "", "path to config file")
	pf.StringArrayVarP(&opts.dirs, "dir", "d", nil, "directory to ingest as path:type (txt, pdf, html), repeatable")
	pf.StringVar(&opts.baseURL, "ollama-url", "", "Ollama server URL")
	pf.StringVar(&opts.model, "model", "", "chat model to use")
	pf.StringVar(&opts.indexType, "index", "", "vector index: memory, chromem, pgvector or qdrant")
	pf.IntVarP(&opts.topK, "top-k", "k", 0, "chunks retrieved per question")
	pf.StringVar(&opts.logLevel, "log-level", "", "log level: trace, debug, info, warn, error, off")
	pf.BoolVar(&opts.noProgress, "no-progress", false, "disable progress bars")

	rootCmd.AddCommand(ingestCmd)
}

func main() {
	// .env is optional
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		color.Red("Error: %v", err)
		os.Exit(1)
	}
}

// loadConfig reads the config file and lets command line flags override it.
func loadConfig(cmd *cobra.Command) (*cfgPkg.Config, error) {
	cfg, err := cfgPkg.LoadConfig(opts.configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if cmd.Flags().Changed("ollama-url") {
		cfg.LLM.BaseURL = opts.baseURL
	}
	if cmd.Flags().Changed("model") {
		cfg.LLM.Model = opts.model
	}
	if cmd.Flags().Changed("index") {
		cfg.Index.Type = opts.indexType
	}
	if cmd.Flags().Changed("top-k") {
		cfg.Retrieval.TopK = opts.topK
	}
	if cmd.Flags().Changed("log-level") {
		cfg.Log.Level = opts.logLevel
	}
	if opts.noProgress {
		noProgress := false
		cfg.UI.Progress = &noProgress
	}

	if errs := cfg.Validate(); len(errs) > 0 {
		for _, e := range errs {
			color.Red("  %s", e.Error())
		}
		return nil, fmt.Errorf("invalid configuration: %d problem(s)", len(errs))
	}
	return cfg, nil
}
