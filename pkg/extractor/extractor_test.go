package extractor_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xhad/docchat/internal/models"
	"github.com/xhad/docchat/internal/types"
	"github.com/xhad/docchat/pkg/extractor"
)

type fakePages struct {
	pages []string
	err   error
	calls int
}

func (f *fakePages) ExtractPages(ctx context.Context, path string) ([]string, error) {
	f.calls++
	return f.pages, f.err
}

func writeFile(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, data, 0644))
	return path
}

func TestExtract_Text(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "notes.txt", []byte("plain text, ünïcode included\n"))

	text, err := extractor.New(nil).Extract(context.Background(), path, models.DocTypeTXT)
	require.NoError(t, err)
	assert.Equal(t, "plain text, ünïcode included\n", text)
}

func TestExtract_TextErrors(t *testing.T) {
	dir := t.TempDir()
	bad := writeFile(t, dir, "bad.txt", []byte{'o', 'k', 0xff, 0xfe, 0xfd})

	tests := []struct {
		name string
		path string
		want error
	}{
		{"missing file", filepath.Join(dir, "missing.txt"), types.ErrNotFound},
		{"invalid utf-8", bad, types.ErrDecode},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := extractor.New(nil).Extract(context.Background(), tt.path, models.DocTypeTXT)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestExtract_PDFConcatenatesPages(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "doc.pdf", []byte("%PDF-1.4"))
	pages := &fakePages{pages: []string{"first page ", "", "third"}}

	text, err := extractor.New(pages).Extract(context.Background(), path, models.DocTypePDF)
	require.NoError(t, err)
	assert.Equal(t, "first page third", text)
	assert.Equal(t, 1, pages.calls)
}

func TestExtract_PDFErrors(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "doc.pdf", []byte("%PDF-1.4"))

	t.Run("missing file skips the page extractor", func(t *testing.T) {
		pages := &fakePages{}
		_, err := extractor.New(pages).Extract(context.Background(), filepath.Join(dir, "nope.pdf"), models.DocTypePDF)
		assert.ErrorIs(t, err, types.ErrNotFound)
		assert.Zero(t, pages.calls)
	})

	t.Run("page extractor failure", func(t *testing.T) {
		pages := &fakePages{err: errors.New("broken xref")}
		_, err := extractor.New(pages).Extract(context.Background(), path, models.DocTypePDF)
		assert.ErrorIs(t, err, types.ErrExtraction)
		assert.Contains(t, err.Error(), "broken xref")
	})
}

func TestPDFPages_NotAPDF(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "fake.pdf", []byte("this is not a pdf document"))

	_, err := extractor.PDFPages{}.ExtractPages(context.Background(), path)
	assert.ErrorIs(t, err, types.ErrExtraction)
}

func TestExtract_HTML(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name string
		html string
		want string
	}{
		{
			name: "main content wins",
			html: `<html><head><title>T</title></head><body>
				<nav>Menu</nav>
				<main><h1>Test Content</h1>
				<p>This is a   test paragraph.</p></main>
				<script>var x = 1;</script></body></html>`,
			want: "Test Content This is a test paragraph.",
		},
		{
			name: "falls back to body",
			html: `<html><body><div>Only body
				text</div></body></html>`,
			want: "Only body text",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, dir, "page.html", []byte(tt.html))
			text, err := extractor.New(nil).Extract(context.Background(), path, models.DocTypeHTML)
			require.NoError(t, err)
			assert.Equal(t, tt.want, text)
		})
	}
}
