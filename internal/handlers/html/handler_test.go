package html

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/nova/internal/core/ports/driven"
)

func TestHandler_Basics(t *testing.T) {
	h := New()
	assert.Equal(t, "html", h.Name())
	assert.Equal(t, 50, h.Priority())
	assert.True(t, h.Detect("page.html"))
	assert.True(t, h.Detect("PAGE.HTM"))
	assert.False(t, h.Detect("page.md"))
}

func TestProcess(t *testing.T) {
	path := filepath.Join(t.TempDir(), "release-notes.html")
	content := "<html><head><title>Release &amp; Notes</title></head><body>" +
		"<h1>Overview</h1><p>Hello World</p><h2>Details <em>here</em></h2><p>More</p></body></html>"
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	doc, err := New().Process(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, "Release & Notes", doc.Title)
	assert.Equal(t, "html", doc.Format)
	assert.Equal(t, "# Overview\nHello World\n## Details here\nMore", doc.Content)
}

func TestProcess_MissingFile(t *testing.T) {
	_, err := New().Process(context.Background(), filepath.Join(t.TempDir(), "missing.html"))
	assert.Error(t, err)
}

func TestExtractHTMLTitle(t *testing.T) {
	assert.Equal(t, "Page", extractHTMLTitle("<title> Page </title>", "/x.html"))
	assert.Equal(t, "my page", extractHTMLTitle("<p>no title</p>", "/docs/my_page.html"))
	assert.Equal(t, "release notes", extractHTMLTitle("<title></title>", "/release-notes.htm"))
}

func TestStripHTML(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "simple paragraph",
			input:    "<p>Hello World</p>",
			expected: "Hello World",
		},
		{
			name:     "nested tags",
			input:    "<div><p><strong>Bold</strong> text</p></div>",
			expected: "Bold text",
		},
		{
			name:     "script removed",
			input:    "<p>Before</p><script>alert('evil');</script><p>After</p>",
			expected: "Before\nAfter",
		},
		{
			name:     "style removed",
			input:    "<style>.foo { color: red; }</style><p>Content</p>",
			expected: "Content",
		},
		{
			name:     "head removed",
			input:    "<head><meta charset='utf-8'><title>Title</title></head><body>Content</body>",
			expected: "Content",
		},
		{
			name:     "br to newline",
			input:    "Line 1<br>Line 2<br/>Line 3",
			expected: "Line 1\nLine 2\nLine 3",
		},
		{
			name:     "HTML entities decoded",
			input:    "<p>&lt;tag&gt; &amp; &quot;quotes&quot;</p>",
			expected: "<tag> & \"quotes\"",
		},
		{
			name:     "comments removed",
			input:    "<p>Before</p><!-- comment --><p>After</p>",
			expected: "Before\nAfter",
		},
		{
			name:     "list items",
			input:    "<ul><li>Item 1</li><li>Item 2</li></ul>",
			expected: "Item 1\nItem 2",
		},
		{
			name:     "headings become markdown",
			input:    "<h1>Title</h1><h3 class=\"x\">Deep</h3><p>Content</p>",
			expected: "# Title\n### Deep\nContent",
		},
		{
			name:     "empty heading dropped",
			input:    "<h2> </h2><p>Content</p>",
			expected: "Content",
		},
		{
			name:     "links - text preserved",
			input:    `<a href="https://example.com">Click here</a>`,
			expected: "Click here",
		},
		{
			name:     "images removed",
			input:    `<p>See <img src="image.png" alt="Image"> here</p>`,
			expected: "See here",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, stripHTML(tc.input))
		})
	}
}

func TestInterfaceCompliance(t *testing.T) {
	var _ driven.Handler = New()
}
