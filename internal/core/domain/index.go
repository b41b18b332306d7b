package domain

import "sort"

// File outcomes recorded by an index run.
const (
	FileSuccessful = "successful"
	FileFailed     = "failed"
	FileSkipped    = "skipped"
)

// ExtensionStats counts index outcomes for one file extension.
type ExtensionStats struct {
	Total      int      `json:"total"`
	Successful int      `json:"successful"`
	Failed     int      `json:"failed"`
	Skipped    int      `json:"skipped"`
	Handlers   []string `json:"handlers,omitempty"`
}

// IndexReport summarises one index run.
type IndexReport struct {
	Total      int                        `json:"total"`
	Successful int                        `json:"successful"`
	Failed     int                        `json:"failed"`
	Skipped    int                        `json:"skipped"`
	Chunks     int                        `json:"chunks"`
	Extensions map[string]*ExtensionStats `json:"extensions"`

	// SkippedFiles lists files no handler accepted.
	SkippedFiles []string `json:"skipped_files,omitempty"`

	// Errors maps failed files to their reason.
	Errors map[string]string `json:"errors,omitempty"`

	// Flush is the outcome of the final flush.
	Flush FlushResult `json:"-"`
}

// NewIndexReport creates an empty report.
func NewIndexReport() *IndexReport {
	return &IndexReport{
		Extensions: make(map[string]*ExtensionStats),
		Errors:     make(map[string]string),
	}
}

// Record counts one file outcome. handler may be empty for skipped files.
func (r *IndexReport) Record(ext, outcome, handler string) {
	if ext == "" {
		ext = "(none)"
	}
	stats, ok := r.Extensions[ext]
	if !ok {
		stats = &ExtensionStats{}
		r.Extensions[ext] = stats
	}

	r.Total++
	stats.Total++
	switch outcome {
	case FileSuccessful:
		r.Successful++
		stats.Successful++
	case FileFailed:
		r.Failed++
		stats.Failed++
	case FileSkipped:
		r.Skipped++
		stats.Skipped++
	}

	if handler == "" {
		return
	}
	for _, h := range stats.Handlers {
		if h == handler {
			return
		}
	}
	stats.Handlers = append(stats.Handlers, handler)
	sort.Strings(stats.Handlers)
}

// ExtensionNames returns the recorded extensions in sorted order.
func (r *IndexReport) ExtensionNames() []string {
	names := make([]string, 0, len(r.Extensions))
	for ext := range r.Extensions {
		names = append(names, ext)
	}
	sort.Strings(names)
	return names
}
