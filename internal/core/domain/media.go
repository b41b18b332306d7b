package domain

import "time"

// Region is a block of text located by the OCR engine.
type Region struct {
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
	X          int     `json:"x"`
	Y          int     `json:"y"`
	Width      int     `json:"width"`
	Height     int     `json:"height"`
}

// OCRResult is the text extracted from an image.
type OCRResult struct {
	// Text is the full extracted text.
	Text string `json:"text"`

	// Confidence is the mean confidence in [0, 1].
	Confidence float64 `json:"confidence"`

	// Regions lists the recognised text blocks.
	Regions []Region `json:"regions,omitempty"`

	// Language is the OCR language the engine ran with.
	Language string `json:"language,omitempty"`

	// ProcessingTime is how long the engine took.
	ProcessingTime time.Duration `json:"processing_time"`
}

// Empty reports whether the OCR pass produced no text.
func (r OCRResult) Empty() bool {
	return len(r.Regions) == 0 && r.Text == ""
}

// ImageDescription is the outcome of describing one image.
type ImageDescription struct {
	Path           string        `json:"path"`
	Description    string        `json:"description"`
	Width          int           `json:"width"`
	Height         int           `json:"height"`
	Format         string        `json:"format"`
	Size           int64         `json:"size"`
	CreatedAt      time.Time     `json:"created_at"`
	ProcessingTime time.Duration `json:"processing_time"`
}
