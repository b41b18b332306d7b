// Package markdown provides the handler for markdown notes. It keeps the
// heading structure for the chunker and extracts the note title, tags and
// attachments.
package markdown

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/custodia-labs/nova/internal/core/domain"
	"github.com/custodia-labs/nova/internal/core/ports/driven"
)

// Ensure Handler implements the interface.
var _ driven.Handler = (*Handler)(nil)

// UntitledNote is the title of a note without a level-one heading.
const UntitledNote = "Untitled Note"

var extensions = map[string]bool{
	".md":       true,
	".markdown": true,
	".mdown":    true,
}

var (
	imageLink  = regexp.MustCompile(`!\[([^\]]*)\]\(([^)\s]+)(?:\s+"[^"]*")?\)`)
	inlineLink = regexp.MustCompile(`\[([^\]]+)\]\([^)]+\)`)
	multiBlank = regexp.MustCompile(`\n{3,}`)
)

// Handler handles markdown documents.
type Handler struct{}

// New creates a new markdown handler.
func New() *Handler {
	return &Handler{}
}

// Name returns "markdown".
func (h *Handler) Name() string {
	return "markdown"
}

// Priority returns the selection priority.
func (h *Handler) Priority() int {
	return 50
}

// Detect accepts markdown extensions.
func (h *Handler) Detect(path string) bool {
	return extensions[strings.ToLower(filepath.Ext(path))]
}

// Process reads a note. Headings are kept; image embeds are dropped from
// the text and recorded as attachments when the file exists; links are
// reduced to their text.
func (h *Handler) Process(_ context.Context, path string) (*domain.Document, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	raw := strings.ReplaceAll(string(data), "\r\n", "\n")

	return &domain.Document{
		URI:         path,
		Title:       ExtractTitle(raw),
		Content:     simplify(raw),
		Format:      h.Name(),
		Tags:        ExtractTags(raw),
		Attachments: ExtractAttachments(raw, filepath.Dir(path)),
		ModTime:     info.ModTime(),
		Metadata:    map[string]string{},
	}, nil
}

// ExtractTitle returns the text of the first "# " line, or UntitledNote.
func ExtractTitle(content string) string {
	for _, line := range strings.Split(content, "\n") {
		if strings.HasPrefix(line, "# ") {
			if title := strings.TrimSpace(line[2:]); title != "" {
				return title
			}
		}
	}
	return UntitledNote
}

// ExtractTags returns the distinct #word tokens of content, without the
// hash, sorted. Heading markers are not tags.
func ExtractTags(content string) []string {
	seen := make(map[string]bool)
	for _, line := range strings.Split(content, "\n") {
		if !strings.Contains(line, "#") {
			continue
		}
		for _, word := range strings.Fields(line) {
			if len(word) < 2 || word[0] != '#' || word[1] == '#' {
				continue
			}
			seen[word[1:]] = true
		}
	}

	tags := make([]string, 0, len(seen))
	for tag := range seen {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}

// ExtractAttachments returns the image embeds of content that resolve to
// existing files, relative to dir, in order of appearance.
func ExtractAttachments(content, dir string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, m := range imageLink.FindAllStringSubmatch(content, -1) {
		target := m[2]
		if strings.Contains(target, "://") {
			continue
		}
		if !filepath.IsAbs(target) {
			target = filepath.Join(dir, target)
		}
		if seen[target] {
			continue
		}
		if _, err := os.Stat(target); err != nil {
			continue
		}
		seen[target] = true
		out = append(out, target)
	}
	return out
}

func simplify(content string) string {
	content = imageLink.ReplaceAllString(content, "")
	content = inlineLink.ReplaceAllString(content, "$1")
	content = multiBlank.ReplaceAllString(content, "\n\n")
	return strings.TrimSpace(content)
}
