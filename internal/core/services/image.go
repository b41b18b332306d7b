package services

import (
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // register GIF decoding
	_ "image/jpeg" // register JPEG decoding
	_ "image/png"  // register PNG decoding
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/custodia-labs/nova/internal/cache"
	"github.com/custodia-labs/nova/internal/core/domain"
	"github.com/custodia-labs/nova/internal/core/ports/driven"
	"github.com/custodia-labs/nova/internal/core/ports/driving"
	"github.com/custodia-labs/nova/internal/logger"
)

// Ensure ImageDescriber implements the interface.
var _ driving.ImageService = (*ImageDescriber)(nil)

// ValidImageDescription rejects descriptions without text so they are
// never cached and are evicted if found.
func ValidImageDescription(d domain.ImageDescription) bool {
	return strings.TrimSpace(d.Description) != ""
}

// ImageDescriber describes images through a vision service, caching
// descriptions by file fingerprint and model.
type ImageDescriber struct {
	vision driven.VisionService
	cache  *cache.Cache[domain.ImageDescription]
	model  string
	now    func() time.Time
}

// NewImageDescriber creates a describer. vision may be nil, in which
// case images get technical details only.
func NewImageDescriber(vision driven.VisionService, descriptions *cache.Cache[domain.ImageDescription], model string) *ImageDescriber {
	return &ImageDescriber{vision: vision, cache: descriptions, model: model, now: time.Now}
}

// Available reports whether a vision service is configured.
func (d *ImageDescriber) Available() bool {
	return d.vision != nil
}

// Describe returns the description and technical details of the image at
// path. When the vision call fails the technical details are still
// returned, together with an error wrapping domain.ErrProvider.
func (d *ImageDescriber) Describe(ctx context.Context, path string) (domain.ImageDescription, error) {
	start := d.now()

	info, err := os.Stat(path)
	if err != nil {
		return domain.ImageDescription{}, fmt.Errorf("stat %s: %w", path, err)
	}

	var key string
	if d.vision != nil && d.cache != nil {
		key, err = cache.FingerprintFile(path, "vision", d.model)
		if err != nil {
			return domain.ImageDescription{}, err
		}
		if cached, ok := d.cache.Get(key); ok {
			logger.Debug("Image cache hit for %s", filepath.Base(path))
			return cached, nil
		}
	}

	desc := domain.ImageDescription{
		Path:      path,
		Size:      info.Size(),
		Format:    strings.ToUpper(strings.TrimPrefix(filepath.Ext(path), ".")),
		CreatedAt: d.now(),
	}
	if w, h, format, ok := imageConfig(path); ok {
		desc.Width, desc.Height, desc.Format = w, h, format
	}

	if d.vision == nil {
		desc.ProcessingTime = d.now().Sub(start)
		return desc, nil
	}

	text, err := d.vision.Describe(ctx, path)
	desc.ProcessingTime = d.now().Sub(start)
	if err != nil {
		if errors.Is(err, domain.ErrVisionUnavailable) {
			return desc, nil
		}
		if !errors.Is(err, domain.ErrProvider) {
			err = fmt.Errorf("%w: %w", domain.ErrProvider, err)
		}
		logger.Warn("Describing %s failed: %v", filepath.Base(path), err)
		return desc, fmt.Errorf("describe %s: %w", path, err)
	}

	desc.Description = strings.TrimSpace(text)
	if key != "" {
		d.cache.Put(key, desc)
	}
	return desc, nil
}

// imageConfig decodes the image header for dimensions and format.
func imageConfig(path string) (width, height int, format string, ok bool) {
	f, err := os.Open(path)
	if err != nil {
		return 0, 0, "", false
	}
	defer f.Close()

	cfg, name, err := image.DecodeConfig(f)
	if err != nil {
		return 0, 0, "", false
	}
	return cfg.Width, cfg.Height, strings.ToUpper(name), true
}
