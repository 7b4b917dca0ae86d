package extractor

import (
	"context"
	"fmt"

	"github.com/ledongthuc/pdf"
	"github.com/xhad/docchat/internal/types"
)

// PDFPages reads page text with github.com/ledongthuc/pdf.
type PDFPages struct{}

func (PDFPages) ExtractPages(ctx context.Context, path string) (pages []string, err error) {
	// The pdf package panics on some malformed cross-reference tables.
	defer func() {
		if r := recover(); r != nil {
			pages = nil
			err = fmt.Errorf("%w: %s: %v", types.ErrExtraction, path, r)
		}
	}()

	file, reader, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to parse PDF %s: %w", types.ErrExtraction, path, err)
	}
	defer file.Close()

	total := reader.NumPage()
	pages = make([]string, 0, total)

	for pageNum := 1; pageNum <= total; pageNum++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		page := reader.Page(pageNum)
		if page.V.IsNull() {
			pages = append(pages, "")
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			return nil, fmt.Errorf("%w: %s page %d: %w", types.ErrExtraction, path, pageNum, err)
		}
		pages = append(pages, text)
	}

	return pages, nil
}
