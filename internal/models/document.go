package models

import (
	"fmt"
	"strings"
)

// DocType is the declared format of every file in a registered directory.
type DocType int

const (
	DocTypeTXT DocType = iota
	DocTypePDF
	DocTypeHTML
)

// DocTypes lists every supported document type in menu order.
var DocTypes = []DocType{DocTypePDF, DocTypeTXT, DocTypeHTML}

func (t DocType) String() string {
	switch t {
	case DocTypeTXT:
		return "txt"
	case DocTypePDF:
		return "pdf"
	case DocTypeHTML:
		return "html"
	}
	return fmt.Sprintf("DocType(%d)", int(t))
}

// Extension returns the file name suffix matched for this type.
func (t DocType) Extension() string {
	switch t {
	case DocTypeTXT:
		return ".txt"
	case DocTypePDF:
		return ".pdf"
	case DocTypeHTML:
		return ".html"
	}
	return ""
}

// ParseDocType accepts "txt", "PDF", ".html" and similar.
func ParseDocType(s string) (DocType, error) {
	switch strings.TrimPrefix(strings.ToLower(strings.TrimSpace(s)), ".") {
	case "txt", "text":
		return DocTypeTXT, nil
	case "pdf":
		return DocTypePDF, nil
	case "html", "htm":
		return DocTypeHTML, nil
	}
	return 0, fmt.Errorf("unsupported document type %q", s)
}

// DirectoryRegistration names a directory whose files of one type should be ingested.
type DirectoryRegistration struct {
	Path    string
	DocType DocType
}

// Chunk is a bounded slice of a document's extracted text.
type Chunk struct {
	ID         string
	Text       string
	SourcePath string
	Ordinal    int
}

// IndexRecord is the unit stored in and returned by a vector index.
// Embedding may be nil on records returned by backends that do not echo vectors.
type IndexRecord struct {
	Chunk     Chunk
	Embedding []float32
}
