package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/hashicorp/go-hclog"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"github.com/xhad/docchat/internal/models"
	"github.com/xhad/docchat/internal/types"
	"github.com/xhad/docchat/pkg/chat"
	cfgPkg "github.com/xhad/docchat/pkg/config"
	"github.com/xhad/docchat/pkg/extractor"
	"github.com/xhad/docchat/pkg/indexer"
	"github.com/xhad/docchat/pkg/ingest"
	"github.com/xhad/docchat/pkg/llm"
	"github.com/xhad/docchat/pkg/logger"
	"github.com/xhad/docchat/pkg/processor"
	"github.com/xhad/docchat/pkg/retriever"
	"github.com/xhad/docchat/pkg/store"
	"golang.org/x/term"
)

// maxInputLine bounds a single pasted question or path.
const maxInputLine = 1 << 20

func newInputScanner(r io.Reader) *bufio.Scanner {
	in := bufio.NewScanner(r)
	in.Buffer(make([]byte, 0, 64*1024), maxInputLine)
	return in
}

func runSession(ctx context.Context, cmd *cobra.Command, withChat bool) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	interactive := term.IsTerminal(int(os.Stdin.Fd()))
	if !cfgPkg.Enabled(cfg.UI.Color) || !term.IsTerminal(int(os.Stdout.Fd())) {
		color.NoColor = true
	}
	log := logger.New("docchat", logger.Options{Level: cfg.Log.Level, JSON: cfg.Log.JSON})

	in := newInputScanner(os.Stdin)
	out := cmd.OutOrStdout()

	regs, err := parseDirFlags(opts.dirs)
	if err != nil {
		return err
	}
	if len(regs) == 0 {
		regs = promptDirectories(in, out)
		if len(regs) == 0 {
			return fmt.Errorf("no directories registered")
		}
	}

	embedder, err := llm.NewEmbedderWithConfig(llm.EmbedderConfig{
		Model:     cfg.LLM.EmbeddingModel,
		BaseURL:   cfg.LLM.BaseURL,
		RateLimit: cfg.LLM.EmbedRateLimit,
		Timeout:   cfg.LLM.Timeout,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize embedder: %w", err)
	}

	index, err := store.New(ctx, store.Config{
		Type:       cfg.Index.Type,
		Dimension:  cfg.Index.Dimension,
		Collection: cfg.Index.Collection,
		PgVector: store.VectorStoreConfig{
			ConnString: cfg.Index.PgVector.URL,
			TableName:  cfg.Index.PgVector.TableName,
		},
		Chromem: store.ChromemConfig{
			PersistPath: cfg.Index.Chromem.PersistPath,
			Compress:    cfg.Index.Chromem.Compress,
		},
		Qdrant: store.QdrantConfig{
			Host:   cfg.Index.Qdrant.Host,
			Port:   cfg.Index.Qdrant.Port,
			APIKey: cfg.Index.Qdrant.APIKey,
			UseTLS: cfg.Index.Qdrant.UseTLS,
		},
	})
	if err != nil {
		return fmt.Errorf("failed to initialize vector index: %w", err)
	}
	defer index.Close()

	summary, err := runIngestion(ctx, cfg, regs, embedder, index, log, out,
		interactive && cfgPkg.Enabled(cfg.UI.Progress))
	if err != nil {
		return err
	}
	printSummary(out, summary)
	if ctx.Err() != nil || !withChat {
		return nil
	}

	chatEngine, err := llm.NewWithConfig(llm.ChatConfig{
		Model:       cfg.LLM.Model,
		MaxTokens:   cfg.LLM.MaxTokens,
		BaseURL:     cfg.LLM.BaseURL,
		Temperature: *cfg.LLM.Temperature,
		Timeout:     cfg.LLM.Timeout,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize chat engine: %w", err)
	}

	orchestrator := chat.New(
		retriever.New(embedder, index, cfg.Retrieval.TopK, log),
		chatEngine,
		chat.Config{
			SystemPrompt: cfg.Chat.SystemPrompt,
			Sentinel:     cfg.Chat.Sentinel,
			History: chat.HistoryConfig{
				MaxTurns:  cfg.Chat.HistoryMaxTurns,
				MaxTokens: cfg.Chat.HistoryMaxTokens,
				Counter:   llm.NewTokenCounter(),
			},
		},
		log,
	)

	return chatLoop(ctx, orchestrator, in, out, cfg.Chat.Sentinel, interactive)
}

func runIngestion(ctx context.Context, cfg *cfgPkg.Config, regs []models.DirectoryRegistration,
	embedder types.EmbeddingProvider, index types.VectorIndex, log hclog.Logger, out io.Writer, progress bool) (ingest.Summary, error) {

	proc, err := processor.NewWithConfig(processor.ProcessorConfig{
		ChunkSize:    cfg.Processor.ChunkSize,
		ChunkOverlap: cfg.Processor.ChunkOverlap,
	})
	if err != nil {
		return ingest.Summary{}, fmt.Errorf("failed to initialize processor: %w", err)
	}

	var bar *progressbar.ProgressBar
	if progress {
		bar = getProgressBar(countFiles(regs), "Indexing documents...", out)
	}

	ingestor := ingest.New(extractor.New(nil), &proc, indexer.New(embedder, index, log), ingest.Config{
		Dedup: cfgPkg.Enabled(cfg.Ingest.Dedup),
		OnFile: func(path string, err error) {
			if bar != nil {
				bar.Add(1)
			}
		},
	}, log)

	color.New(color.FgBlue).Fprintf(out, "\nIngesting %d director%s\n", len(regs), plural(len(regs), "y", "ies"))
	summary := ingestor.Ingest(ctx, regs)
	if bar != nil {
		bar.Finish()
		fmt.Fprintln(out)
	}
	return summary, nil
}

func countFiles(regs []models.DirectoryRegistration) int {
	total := 0
	for _, reg := range regs {
		files, err := ingest.ListFiles(reg)
		if err == nil {
			total += len(files)
		}
	}
	return total
}

func getProgressBar(total int, description string, out io.Writer) *progressbar.ProgressBar {
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(out),
		progressbar.OptionSetDescription(color.BlueString(description)),
		progressbar.OptionSetItsString("files"),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "=",
			SaucerHead:    ">",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetPredictTime(true),
		progressbar.OptionSetRenderBlankState(true),
	)
}

func getSpinner(description string, out io.Writer) *progressbar.ProgressBar {
	return progressbar.NewOptions(-1,
		progressbar.OptionSetWriter(out),
		progressbar.OptionSetDescription(color.CyanString(description)),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionSetWidth(20),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionClearOnFinish(),
	)
}

func printSummary(out io.Writer, s ingest.Summary) {
	green := color.New(color.FgGreen)
	green.Fprintf(out, "Processed %d file%s into %d chunks", s.FilesProcessed, plural(s.FilesProcessed, "", "s"), s.ChunksIndexed)
	if s.FilesSkipped > 0 {
		green.Fprintf(out, ", skipped %d already ingested", s.FilesSkipped)
	}
	fmt.Fprintln(out)

	if len(s.Failures) > 0 {
		red := color.New(color.FgRed)
		red.Fprintf(out, "%d failure%s:\n", len(s.Failures), plural(len(s.Failures), "", "s"))
		for _, f := range s.Failures {
			red.Fprintf(out, "  %s: %v\n", f.Path, f.Err)
		}
	}
}

// parseDirFlags turns "path:type" values into registrations. The type is
// taken after the last colon so paths may contain colons.
func parseDirFlags(values []string) ([]models.DirectoryRegistration, error) {
	regs := make([]models.DirectoryRegistration, 0, len(values))
	for _, v := range values {
		i := strings.LastIndex(v, ":")
		if i <= 0 || i == len(v)-1 {
			return nil, fmt.Errorf("invalid --dir %q, expected path:type", v)
		}
		docType, err := models.ParseDocType(v[i+1:])
		if err != nil {
			return nil, fmt.Errorf("invalid --dir %q: %w", v, err)
		}
		regs = append(regs, models.DirectoryRegistration{Path: v[:i], DocType: docType})
	}
	return regs, nil
}

// promptDirectories asks for directories until the user declines to add
// another or input ends.
func promptDirectories(in *bufio.Scanner, out io.Writer) []models.DirectoryRegistration {
	var regs []models.DirectoryRegistration
	prompt := color.New(color.FgGreen)
	warn := color.New(color.FgYellow)

	typeNames := make([]string, len(models.DocTypes))
	for i, t := range models.DocTypes {
		typeNames[i] = t.String()
	}

	for {
		prompt.Fprint(out, "Directory path: ")
		if !in.Scan() {
			return regs
		}
		path := strings.TrimSpace(in.Text())
		if info, err := os.Stat(path); err != nil || !info.IsDir() {
			warn.Fprintf(out, "%q is not a directory\n", path)
			continue
		}

		var docType models.DocType
		for {
			prompt.Fprintf(out, "Document type (%s): ", strings.Join(typeNames, "/"))
			if !in.Scan() {
				return regs
			}
			t, err := models.ParseDocType(in.Text())
			if err == nil {
				docType = t
				break
			}
			warn.Fprintln(out, err)
		}
		regs = append(regs, models.DirectoryRegistration{Path: path, DocType: docType})

		prompt.Fprint(out, "Add another directory? [y/N]: ")
		if !in.Scan() {
			return regs
		}
		answer := strings.ToLower(strings.TrimSpace(in.Text()))
		if answer != "y" && answer != "yes" {
			return regs
		}
	}
}

func chatLoop(ctx context.Context, o *chat.Orchestrator, in *bufio.Scanner, out io.Writer, sentinel string, interactive bool) error {
	userPrompt := color.New(color.FgGreen)
	assistantPrompt := color.New(color.FgCyan)

	color.New(color.FgCyan).Fprintf(out, "\nChat with your documents (type %s to quit)\n", sentinel)

	for {
		userPrompt.Fprint(out, "\nYou: ")
		if !in.Scan() {
			fmt.Fprintln(out)
			return in.Err()
		}
		input := in.Text()
		if strings.TrimSpace(input) == "" {
			continue
		}

		var spinner *progressbar.ProgressBar
		if interactive {
			spinner = getSpinner("Thinking...", out)
		}
		reply, err := o.Submit(ctx, input)
		if spinner != nil {
			spinner.Finish()
		}

		switch {
		case errors.Is(err, chat.ErrTerminated) || reply.Terminated:
			color.New(color.FgCyan).Fprintln(out, "Goodbye!")
			return nil
		case err != nil:
			if ctx.Err() != nil {
				return nil
			}
			color.New(color.FgRed).Fprintf(out, "Error: %v\n", err)
			continue
		}

		assistantPrompt.Fprintf(out, "Assistant: %s\n", reply.Content)
		if len(reply.Sources) > 0 {
			fmt.Fprint(out, formatSources(reply.Sources))
		}
	}
}

func formatSources(chunks []models.Chunk) string {
	var b strings.Builder
	b.WriteString(color.New(color.Faint).Sprint("Sources:\n"))
	seen := make(map[string]bool)
	n := 0
	for _, c := range chunks {
		key := fmt.Sprintf("%s#%d", c.SourcePath, c.Ordinal)
		if seen[key] {
			continue
		}
		seen[key] = true
		n++
		b.WriteString(color.New(color.Faint).Sprintf("  %d. %s (chunk %d)\n", n, c.SourcePath, c.Ordinal))
	}
	return b.String()
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
