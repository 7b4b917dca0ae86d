package processor

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Boundaries tried in order: paragraph, line, sentence, word.
var defaultSeparators = []string{"\n\n", "\n", ". ", "! ", "? ", " "}

type ProcessorConfig struct {
	ChunkSize    int // in characters (runes)
	ChunkOverlap int
	Separators   []string
}

type Processor struct {
	config ProcessorConfig
}

func NewWithConfig(config ProcessorConfig) (Processor, error) {
	if config.ChunkSize == 0 {
		config.ChunkSize = 2000
	}
	if len(config.Separators) == 0 {
		config.Separators = defaultSeparators
	}
	if config.ChunkSize < 1 {
		return Processor{}, fmt.Errorf("chunk size must be positive, got %d", config.ChunkSize)
	}
	if config.ChunkOverlap < 0 || config.ChunkOverlap >= config.ChunkSize {
		return Processor{}, fmt.Errorf("chunk overlap (%d) must be non-negative and less than chunk size (%d)",
			config.ChunkOverlap, config.ChunkSize)
	}

	return Processor{
		config: config,
	}, nil
}

func (p *Processor) Config() ProcessorConfig {
	return p.config
}

// Split cuts text into ordered chunks of at most ChunkSize runes. Each chunk
// after the first starts with the last ChunkOverlap runes of its predecessor,
// so every chunk is a contiguous slice of text and Join restores the input.
func (p *Processor) Split(text string) []string {
	segments := p.splitIntoSegments(text)
	if p.config.ChunkOverlap == 0 || len(segments) < 2 {
		return segments
	}

	chunks := make([]string, len(segments))
	chunks[0] = segments[0]
	for i := 1; i < len(segments); i++ {
		chunks[i] = lastRunes(chunks[i-1], p.config.ChunkOverlap) + segments[i]
	}
	return chunks
}

// Join strips the overlap prefixes Split added and concatenates the rest.
func Join(chunks []string, overlap int) string {
	var b strings.Builder
	for i, chunk := range chunks {
		if i > 0 && overlap > 0 {
			n := min(overlap, utf8.RuneCountInString(chunks[i-1]))
			chunk = dropRunes(chunk, n)
		}
		b.WriteString(chunk)
	}
	return b.String()
}

// splitIntoSegments partitions text without overlap. The window leaves room
// for the overlap prefix so that prefixed chunks still fit ChunkSize.
func (p *Processor) splitIntoSegments(text string) []string {
	if text == "" {
		return nil
	}

	window := p.config.ChunkSize - p.config.ChunkOverlap
	var segments []string

	for text != "" {
		if utf8.RuneCountInString(text) <= window {
			segments = append(segments, text)
			break
		}
		cut := p.findBoundary(text, window)
		segments = append(segments, text[:cut])
		text = text[cut:]
	}

	return segments
}

// findBoundary returns the byte offset at which to end the next segment:
// just after the latest occurrence of the highest-priority separator inside
// the first window runes of text, or a hard cut at the window end.
func (p *Processor) findBoundary(text string, window int) int {
	limit := runeOffset(text, window)
	head := text[:limit]

	for _, sep := range p.config.Separators {
		if idx := strings.LastIndex(head, sep); idx >= 0 {
			return idx + len(sep)
		}
	}
	return limit
}

// runeOffset is the byte offset of the n-th rune in s.
func runeOffset(s string, n int) int {
	for i := range s {
		if n == 0 {
			return i
		}
		n--
	}
	return len(s)
}

func lastRunes(s string, n int) string {
	count := utf8.RuneCountInString(s)
	if n >= count {
		return s
	}
	return s[runeOffset(s, count-n):]
}

func dropRunes(s string, n int) string {
	return s[runeOffset(s, n):]
}
