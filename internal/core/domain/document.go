package domain

import "time"

// Document represents a source file after its format handler has run.
// Content is markdown-flavoured text; headings drive chunking.
type Document struct {
	// URI is the original location (absolute file path).
	URI string

	// Title is the human-readable title.
	Title string

	// Content is the full normalised text before chunking.
	Content string

	// Format names the handler that produced the document.
	Format string

	// Tags are note tags such as "#python", stored without the hash.
	Tags []string

	// Attachments are paths of files embedded in the document.
	Attachments []string

	// ModTime is the modification time of the source file.
	ModTime time.Time

	// Metadata contains handler-specific key-value pairs.
	Metadata map[string]string
}

// Chunk represents a searchable unit within a document.
// It is immutable once produced by the chunker.
type Chunk struct {
	// Text is the section body.
	Text string

	// Source identifies the document the chunk came from.
	Source string

	// HeadingText is the nearest preceding heading.
	HeadingText string

	// HeadingLevel is the heading depth; 0 for the synthetic untitled heading.
	HeadingLevel int

	// Sequence is the ordinal position within the document.
	Sequence int
}

// IndexedRecord is what the vector index stores for one id.
// Re-adding an id replaces the record.
type IndexedRecord struct {
	ID       string
	Vector   []float32
	Metadata map[string]string
}

// Well-known record metadata keys.
const (
	MetaSource       = "source"
	MetaHeading      = "heading_text"
	MetaHeadingLevel = "heading_level"
	MetaContent      = "content"
	MetaTags         = "tags"
	MetaAttachments  = "attachments"
	MetaFormat       = "format"
	MetaTitle        = "title"
)
