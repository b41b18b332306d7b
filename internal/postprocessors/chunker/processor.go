// Package chunker provides a heading-aware markdown chunker.
//
// Text is split on ATX headings (# to ######) outside fenced code blocks.
// Each chunk carries the nearest preceding heading and its level; text
// before the first heading belongs to a level-0 "untitled" heading.
package chunker

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/custodia-labs/nova/internal/core/domain"
	"github.com/custodia-labs/nova/internal/core/ports/driven"
)

// Ensure Processor implements the interface.
var _ driven.Chunker = (*Processor)(nil)

// UntitledHeading is the synthetic heading of text with no heading above it.
const UntitledHeading = "untitled"

// maxHeadingLevel is the deepest ATX heading.
const maxHeadingLevel = 6

var blankLines = regexp.MustCompile(`\n[ \t]*\n`)

// Processor splits document content along headings.
type Processor struct {
	maxChunkSize int
}

// Option configures the chunker processor.
type Option func(*Processor)

// WithMaxChunkSize splits sections longer than size characters on
// paragraph boundaries. Zero keeps every section whole.
func WithMaxChunkSize(size int) Option {
	return func(p *Processor) {
		if size >= 0 {
			p.maxChunkSize = size
		}
	}
}

// New creates a new chunker processor with the given options.
func New(opts ...Option) *Processor {
	p := &Processor{}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return "chunker"
}

// MaxChunkSize returns the configured split threshold.
func (p *Processor) MaxChunkSize() int {
	return p.maxChunkSize
}

// Chunk splits text into heading-scoped chunks in document order.
// Sections whose body is empty produce no chunk.
func (p *Processor) Chunk(text, source string) []domain.Chunk {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	if strings.TrimSpace(text) == "" {
		return nil
	}

	var (
		chunks  []domain.Chunk
		body    []string
		heading = UntitledHeading
		level   = 0
		fence   string
	)

	emit := func() {
		content := strings.TrimSpace(strings.Join(body, "\n"))
		body = body[:0]
		if content == "" {
			return
		}
		for _, piece := range p.split(content) {
			chunks = append(chunks, domain.Chunk{
				Text:         piece,
				Source:       source,
				HeadingText:  heading,
				HeadingLevel: level,
				Sequence:     len(chunks),
			})
		}
	}

	for _, line := range strings.Split(text, "\n") {
		if marker := fenceMarker(line); marker != "" {
			switch {
			case fence == "":
				fence = marker
			case strings.HasPrefix(marker, fence):
				fence = ""
			}
			body = append(body, line)
			continue
		}
		if fence == "" {
			if title, lvl, ok := parseHeading(line); ok {
				emit()
				heading, level = title, lvl
				continue
			}
		}
		body = append(body, line)
	}
	emit()

	return chunks
}

// split breaks an oversized section into pieces of at most maxChunkSize
// characters, preferring paragraph boundaries.
func (p *Processor) split(content string) []string {
	if p.maxChunkSize <= 0 || utf8.RuneCountInString(content) <= p.maxChunkSize {
		return []string{content}
	}

	var (
		pieces []string
		cur    string
	)
	flush := func() {
		if cur != "" {
			pieces = append(pieces, cur)
			cur = ""
		}
	}

	for _, para := range blankLines.Split(content, -1) {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}
		n := utf8.RuneCountInString(para)
		switch {
		case n > p.maxChunkSize:
			flush()
			pieces = append(pieces, hardSplit(para, p.maxChunkSize)...)
		case cur == "":
			cur = para
		case utf8.RuneCountInString(cur)+2+n <= p.maxChunkSize:
			cur += "\n\n" + para
		default:
			flush()
			cur = para
		}
	}
	flush()

	return pieces
}

// hardSplit cuts s into runs of at most size runes.
func hardSplit(s string, size int) []string {
	runes := []rune(s)
	var out []string
	for start := 0; start < len(runes); start += size {
		end := start + size
		if end > len(runes) {
			end = len(runes)
		}
		if piece := strings.TrimSpace(string(runes[start:end])); piece != "" {
			out = append(out, piece)
		}
	}
	return out
}

// parseHeading recognises an ATX heading line.
func parseHeading(line string) (string, int, bool) {
	trimmed := strings.TrimLeft(line, " ")
	if len(line)-len(trimmed) > 3 {
		return "", 0, false
	}

	level := 0
	for level < len(trimmed) && trimmed[level] == '#' {
		level++
	}
	if level == 0 || level > maxHeadingLevel {
		return "", 0, false
	}

	rest := trimmed[level:]
	if rest != "" && rest[0] != ' ' && rest[0] != '\t' {
		return "", 0, false // "#tag", not a heading
	}

	title := strings.TrimSpace(rest)
	if strings.HasSuffix(title, "#") {
		closed := strings.TrimRight(title, "#")
		if closed == "" || strings.HasSuffix(closed, " ") {
			title = strings.TrimSpace(closed)
		}
	}
	if title == "" {
		return "", 0, false
	}
	return title, level, true
}

// fenceMarker returns the fence run opening or closing a code block.
func fenceMarker(line string) string {
	trimmed := strings.TrimLeft(line, " ")
	for _, ch := range []string{"`", "~"} {
		n := 0
		for n < len(trimmed) && trimmed[n] == ch[0] {
			n++
		}
		if n >= 3 {
			return trimmed[:n]
		}
	}
	return ""
}
