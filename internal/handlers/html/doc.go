// Package html provides the handler for HTML documents. It extracts
// readable text, stripping tags, scripts and styles and decoding
// entities, and rewrites heading elements as markdown headings.
package html
