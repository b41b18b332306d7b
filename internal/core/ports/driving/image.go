package driving

import (
	"context"

	"github.com/custodia-labs/nova/internal/core/domain"
)

// ImageService describes image files, reusing cached descriptions.
type ImageService interface {
	// Describe returns the description and technical details of an image.
	// Without a vision service the description is empty and err is nil.
	Describe(ctx context.Context, path string) (domain.ImageDescription, error)

	// Available reports whether a vision service is configured.
	Available() bool
}
