package markdown

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeNote(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestHandler_Basics(t *testing.T) {
	h := New()
	assert.Equal(t, "markdown", h.Name())
	assert.Equal(t, 50, h.Priority())
}

func TestDetect(t *testing.T) {
	h := New()
	assert.True(t, h.Detect("/notes/a.md"))
	assert.True(t, h.Detect("/notes/a.MARKDOWN"))
	assert.False(t, h.Detect("/notes/a.txt"))
	assert.False(t, h.Detect("/notes/md"))
}

func TestProcess_Note(t *testing.T) {
	dir := t.TempDir()
	writeNote(t, dir, "diagram.png", "png")
	path := writeNote(t, dir, "python.md", "# Programming\n\n"+
		"Python is a great programming language #python #programming\n\n"+
		"![diagram](diagram.png)\n![missing](gone.png)\n\n"+
		"See [the docs](https://docs.python.org).\n")

	doc, err := New().Process(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, path, doc.URI)
	assert.Equal(t, "Programming", doc.Title)
	assert.Equal(t, "markdown", doc.Format)
	assert.Equal(t, []string{"programming", "python"}, doc.Tags)
	assert.Equal(t, []string{filepath.Join(dir, "diagram.png")}, doc.Attachments)
	assert.Contains(t, doc.Content, "# Programming")
	assert.Contains(t, doc.Content, "See the docs.")
	assert.NotContains(t, doc.Content, "![")
	assert.False(t, doc.ModTime.IsZero())
}

func TestProcess_MissingFile(t *testing.T) {
	_, err := New().Process(context.Background(), filepath.Join(t.TempDir(), "nope.md"))
	assert.Error(t, err)
}

func TestExtractTitle(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"first h1", "intro\n# Title\n# Second", "Title"},
		{"trims spaces", "#   Spaced   \n", "Spaced"},
		{"h2 only", "## Sub\ntext", UntitledNote},
		{"no heading", "plain text", UntitledNote},
		{"hash without space", "#tag line", UntitledNote},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractTitle(tt.content))
		})
	}
}

func TestExtractTags(t *testing.T) {
	content := "# Heading\n## Sub heading\nNotes on #ml and #ai\n#ml again, #tech"
	assert.Equal(t, []string{"ai", "ml", "tech"}, ExtractTags(content))
	assert.Empty(t, ExtractTags("no tags here"))
}

func TestExtractAttachments(t *testing.T) {
	dir := t.TempDir()
	writeNote(t, dir, "a.png", "x")

	content := "![a](a.png) ![a again](a.png) ![remote](https://example.com/b.png) ![gone](b.png)"
	assert.Equal(t, []string{filepath.Join(dir, "a.png")}, ExtractAttachments(content, dir))
}
