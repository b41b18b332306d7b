package driven

import (
	"context"

	"github.com/custodia-labs/nova/internal/core/domain"
)

// OCREngine extracts text from image bytes.
// Implementations return domain.ErrOCRUnavailable when the engine is absent.
type OCREngine interface {
	Process(ctx context.Context, image []byte) (domain.OCRResult, error)
}

// VisionService describes an image in natural language.
// An empty description with a nil error means the model had nothing to say.
type VisionService interface {
	Describe(ctx context.Context, imagePath string) (string, error)
}
