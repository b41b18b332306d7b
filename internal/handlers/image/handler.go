// Package image provides the handler for image files. An image becomes a
// markdown document holding its description, any text OCR finds in it
// and a table of technical details.
package image

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/custodia-labs/nova/internal/core/domain"
	"github.com/custodia-labs/nova/internal/core/ports/driven"
	"github.com/custodia-labs/nova/internal/logger"
)

// Ensure Handler implements the interface.
var _ driven.Handler = (*Handler)(nil)

// Notes rendered when an image has no description.
const (
	NoteUnavailable = "*Image description not available - Vision API access required.*"
	NoteFailed      = "*Image description generation failed. Please check the logs for details.*"
)

var extensions = map[string]bool{
	".png": true, ".jpg": true, ".jpeg": true, ".gif": true, ".webp": true,
	".bmp": true, ".tif": true, ".tiff": true, ".heic": true, ".heif": true,
}

// Describer produces image descriptions.
type Describer interface {
	Describe(ctx context.Context, path string) (domain.ImageDescription, error)
	Available() bool
}

// TextExtractor finds text in image files.
type TextExtractor interface {
	ProcessFile(ctx context.Context, path string) (domain.OCRResult, error)
}

// Handler handles image files.
type Handler struct {
	describer Describer
	ocr       TextExtractor
}

// New creates an image handler. ocr may be nil.
func New(describer Describer, ocr TextExtractor) *Handler {
	return &Handler{describer: describer, ocr: ocr}
}

// Name returns "image".
func (h *Handler) Name() string {
	return "image"
}

// Priority returns the selection priority.
func (h *Handler) Priority() int {
	return 60
}

// Detect accepts common image extensions.
func (h *Handler) Detect(path string) bool {
	return extensions[strings.ToLower(filepath.Ext(path))]
}

// Process describes the image and renders it as markdown. A failed
// description or OCR pass leaves its section out rather than failing.
func (h *Handler) Process(ctx context.Context, path string) (*domain.Document, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}

	desc, err := h.describer.Describe(ctx, path)
	descFailed := false
	if err != nil {
		if !errors.Is(err, domain.ErrProvider) {
			return nil, err
		}
		descFailed = true
	}

	var ocr domain.OCRResult
	if h.ocr != nil {
		ocr, err = h.ocr.ProcessFile(ctx, path)
		if err != nil {
			if !errors.Is(err, domain.ErrProvider) {
				return nil, err
			}
			logger.Warn("OCR failed for %s: %v", filepath.Base(path), err)
		}
	}

	var note string
	switch {
	case desc.Description != "":
	case descFailed:
		note = NoteFailed
	case !h.describer.Available():
		note = NoteUnavailable
	}

	name := filepath.Base(path)
	return &domain.Document{
		URI:     path,
		Title:   "Image: " + name,
		Content: Render(name, desc, ocr.Text, note),
		Format:  h.Name(),
		ModTime: info.ModTime(),
		Metadata: map[string]string{
			"width":        strconv.Itoa(desc.Width),
			"height":       strconv.Itoa(desc.Height),
			"image_format": desc.Format,
		},
	}, nil
}

// Render formats an image description as markdown.
func Render(name string, desc domain.ImageDescription, text, note string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Image: %s\n\n", name)

	if desc.Description != "" {
		fmt.Fprintf(&b, "## Description\n\n%s\n\n", desc.Description)
	}
	if text = strings.TrimSpace(text); text != "" {
		fmt.Fprintf(&b, "## Extracted Text\n\n%s\n\n", text)
	}

	b.WriteString("## Technical Details\n\n")
	b.WriteString("| Property | Value |\n")
	b.WriteString("|----------|-------|\n")
	fmt.Fprintf(&b, "| Format | %s |\n", desc.Format)
	if desc.Width > 0 && desc.Height > 0 {
		fmt.Fprintf(&b, "| Dimensions | %dx%d pixels |\n", desc.Width, desc.Height)
	}
	fmt.Fprintf(&b, "| File Size | %.1f KB |\n", float64(desc.Size)/1024)
	fmt.Fprintf(&b, "| Processing Time | %.2f seconds |\n", desc.ProcessingTime.Seconds())

	if note != "" {
		fmt.Fprintf(&b, "\n## Note\n\n%s\n", note)
	}
	return b.String()
}
