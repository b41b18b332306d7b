// Package cache provides a generic bounded result cache for expensive
// computations such as OCR output and image descriptions.
//
// Entries are addressed by a fingerprint of the input (identity,
// modification time and processing parameters). The cache holds at most
// MaxEntries live entries in a fixed-capacity ring; when full, the oldest
// insertion is evicted in O(1). Entries older than the TTL are treated as
// absent on lookup, and payloads that fail the validity check are never
// stored and are deleted if found. Nothing is persisted across restarts.
package cache
