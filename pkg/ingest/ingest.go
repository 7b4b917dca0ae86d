// Package ingest walks registered directories and feeds each matching
// file through extraction, chunking and indexing.
package ingest

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/go-hclog"
	"github.com/xhad/docchat/internal/models"
	"github.com/xhad/docchat/pkg/logger"
)

type Extractor interface {
	Extract(ctx context.Context, path string, docType models.DocType) (string, error)
}

type Splitter interface {
	Split(text string) []string
}

type ChunkIndexer interface {
	Index(ctx context.Context, filePath string, chunks []string) (int, error)
}

type FileFailure struct {
	Path string
	Err  error
}

func (f FileFailure) Error() string {
	return fmt.Sprintf("%s: %v", f.Path, f.Err)
}

type Summary struct {
	FilesProcessed int
	FilesSkipped   int
	Failures       []FileFailure
	ChunksIndexed  int
}

type Config struct {
	Dedup bool
	// OnFile is called once per file after it was handled; err is nil on success or skip.
	OnFile func(path string, err error)
}

type Ingestor struct {
	extractor Extractor
	splitter  Splitter
	indexer   ChunkIndexer
	config    Config
	logger    hclog.Logger
	seen      map[string]struct{}
}

func New(extractor Extractor, splitter Splitter, indexer ChunkIndexer, config Config, log hclog.Logger) *Ingestor {
	return &Ingestor{
		extractor: extractor,
		splitter:  splitter,
		indexer:   indexer,
		config:    config,
		logger:    logger.OrNull(log).Named("ingest"),
		seen:      make(map[string]struct{}),
	}
}

// ListFiles returns the regular files directly inside reg.Path whose
// name carries the extension of reg.DocType, sorted by name.
func ListFiles(reg models.DirectoryRegistration) ([]string, error) {
	entries, err := os.ReadDir(reg.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", reg.Path, err)
	}

	ext := reg.DocType.Extension()
	var files []string
	for _, entry := range entries {
		if !isRegularFile(reg.Path, entry) {
			continue
		}
		if !strings.HasSuffix(strings.ToLower(entry.Name()), ext) {
			continue
		}
		files = append(files, filepath.Join(reg.Path, entry.Name()))
	}
	return files, nil
}

// Ingest processes every registration. A failing file or directory is
// recorded in the summary and does not stop the others. Cancelling ctx
// stops ingestion before the next file.
func (in *Ingestor) Ingest(ctx context.Context, registrations []models.DirectoryRegistration) Summary {
	var summary Summary

	for _, reg := range registrations {
		files, err := ListFiles(reg)
		if err != nil {
			in.logger.Warn("skipping directory", "path", reg.Path, "error", err)
			summary.Failures = append(summary.Failures, FileFailure{Path: reg.Path, Err: err})
			continue
		}

		in.logger.Info("ingesting directory", "path", reg.Path, "type", reg.DocType, "files", len(files))
		for _, path := range files {
			if ctx.Err() != nil {
				in.logger.Info("ingestion cancelled", "path", path)
				return summary
			}

			skipped, chunks, err := in.ingestFile(ctx, path, reg.DocType)
			switch {
			case err != nil:
				in.logger.Warn("failed to ingest file", "path", path, "error", err)
				summary.Failures = append(summary.Failures, FileFailure{Path: path, Err: err})
			case skipped:
				in.logger.Debug("skipping already ingested file", "path", path)
				summary.FilesSkipped++
			default:
				summary.FilesProcessed++
			}
			summary.ChunksIndexed += chunks

			if in.config.OnFile != nil {
				in.config.OnFile(path, err)
			}
		}
	}

	return summary
}

func (in *Ingestor) ingestFile(ctx context.Context, path string, docType models.DocType) (bool, int, error) {
	text, err := in.extractor.Extract(ctx, path, docType)
	if err != nil {
		return false, 0, err
	}

	var key string
	if in.config.Dedup {
		key = dedupKey(path, text)
		if _, ok := in.seen[key]; ok {
			return true, 0, nil
		}
	}

	chunks := in.splitter.Split(text)
	n, err := in.indexer.Index(ctx, path, chunks)
	if err != nil {
		return false, n, err
	}

	if in.config.Dedup {
		in.seen[key] = struct{}{}
	}
	in.logger.Debug("ingested file", "path", path, "chunks", n)
	return false, n, nil
}

// isRegularFile follows symlinks so linked documents are ingested too.
func isRegularFile(dir string, entry fs.DirEntry) bool {
	if entry.Type()&fs.ModeSymlink == 0 {
		return entry.Type().IsRegular()
	}
	info, err := os.Stat(filepath.Join(dir, entry.Name()))
	return err == nil && info.Mode().IsRegular()
}

func dedupKey(path, text string) string {
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	sum := sha256.Sum256([]byte(text))
	return path + "\x00" + hex.EncodeToString(sum[:])
}
