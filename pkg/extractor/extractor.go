package extractor

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/xhad/docchat/internal/models"
	"github.com/xhad/docchat/internal/types"
)

// Extractor turns a file of a declared type into raw text.
type Extractor struct {
	pages types.DocumentTextExtractor
}

// New returns an Extractor that delegates PDF parsing to pages.
// A nil pages uses PDFPages.
func New(pages types.DocumentTextExtractor) *Extractor {
	if pages == nil {
		pages = PDFPages{}
	}
	return &Extractor{pages: pages}
}

func (e *Extractor) Extract(ctx context.Context, path string, docType models.DocType) (string, error) {
	switch docType {
	case models.DocTypeTXT:
		return e.extractText(path)
	case models.DocTypePDF:
		return e.extractPDF(ctx, path)
	case models.DocTypeHTML:
		return e.extractHTML(path)
	}
	return "", fmt.Errorf("unsupported document type %v for %s", docType, path)
}

func (e *Extractor) extractText(path string) (string, error) {
	data, err := readFile(path)
	if err != nil {
		return "", err
	}
	if !utf8.Valid(data) {
		return "", fmt.Errorf("%w: %s is not valid UTF-8", types.ErrDecode, path)
	}
	return string(data), nil
}

// extractPDF concatenates page texts in order; page breaks are not chunk boundaries.
func (e *Extractor) extractPDF(ctx context.Context, path string) (string, error) {
	if _, err := os.Stat(path); err != nil {
		return "", statError(path, err)
	}

	pages, err := e.pages.ExtractPages(ctx, path)
	if err != nil {
		if errors.Is(err, types.ErrExtraction) {
			return "", err
		}
		return "", fmt.Errorf("%w: %s: %w", types.ErrExtraction, path, err)
	}

	return strings.Join(pages, ""), nil
}

func readFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, statError(path, err)
	}
	return data, nil
}

func statError(path string, err error) error {
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %s", types.ErrNotFound, path)
	}
	return fmt.Errorf("failed to read %s: %w", path, err)
}
