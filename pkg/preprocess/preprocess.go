// Package preprocess bounds image dimensions before an image is sent to a backend.
package preprocess

import (
	"context"
	"image"
	"image/color"
	"os"

	"github.com/disintegration/imaging"
	"github.com/pkg/errors"

	// decoders beyond the ones imaging registers
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/nodewee/ocr-skill/pkg/config"
	"github.com/nodewee/ocr-skill/pkg/interfaces"
	"github.com/nodewee/ocr-skill/pkg/logger"
	"github.com/nodewee/ocr-skill/pkg/types"
	"github.com/nodewee/ocr-skill/pkg/utils"
)

// ImagePreprocessor downsizes images whose longest side exceeds a cap
type ImagePreprocessor struct {
	maxDimension int
	quality      int
	logger       *logger.Logger
}

var _ interfaces.Preprocessor = (*ImagePreprocessor)(nil)

// NewImagePreprocessor creates a preprocessor using the size and quality settings of cfg
func NewImagePreprocessor(cfg *config.Config, log *logger.Logger) *ImagePreprocessor {
	return &ImagePreprocessor{
		maxDimension: cfg.MaxImageDimension,
		quality:      cfg.JPEGQuality,
		logger:       log,
	}
}

// Prepare returns payload unchanged when it fits the cap. Otherwise it writes a
// scaled JPEG copy into a temp file owned by tm and returns that instead.
func (p *ImagePreprocessor) Prepare(ctx context.Context, payload types.ImagePayload, tm interfaces.TempFileManager) (types.ImagePayload, error) {
	if err := ctx.Err(); err != nil {
		return payload, err
	}

	width, height, err := Dimensions(payload.Path)
	if err != nil {
		return payload, err
	}

	if !NeedsResize(width, height, p.maxDimension) {
		p.logger.Debug("Image %dx%d within %dpx, sending as is", width, height, p.maxDimension)
		return payload, nil
	}

	img, err := imaging.Open(payload.Path)
	if err != nil {
		return payload, utils.NewInputError("cannot decode image", errors.Wrap(err, payload.Path))
	}

	newW, newH := ScaledSize(width, height, p.maxDimension)
	resized := imaging.Resize(img, newW, newH, imaging.Lanczos)
	flat := flatten(resized)

	dst, err := tm.CreateTempFile("resized", ".jpg")
	if err != nil {
		return payload, utils.WrapError(err, utils.ErrorTypeInternal, "cannot create temp file for resized image")
	}

	if err := imaging.Save(flat, dst, imaging.JPEGQuality(p.quality)); err != nil {
		return payload, utils.WrapError(errors.Wrap(err, dst), utils.ErrorTypeInternal, "cannot write resized image")
	}

	p.logger.Progress("📐", "Resized %dx%d -> %dx%d", width, height, newW, newH)
	return types.ImagePayload{Path: dst, Page: payload.Page}, nil
}

// Dimensions reads the image size from the header without decoding pixels
func Dimensions(path string) (int, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, 0, utils.NewInputError("cannot open image", err)
	}
	defer f.Close()

	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return 0, 0, utils.NewInputError("cannot decode image", errors.Wrap(err, path))
	}
	return cfg.Width, cfg.Height, nil
}

// NeedsResize reports whether either side exceeds maxDimension
func NeedsResize(width, height, maxDimension int) bool {
	return width > maxDimension || height > maxDimension
}

// ScaledSize scales width and height by one factor so the longest side equals maxDimension
func ScaledSize(width, height, maxDimension int) (int, int) {
	if !NeedsResize(width, height, maxDimension) {
		return width, height
	}
	if width >= height {
		return maxDimension, scaleSide(height, maxDimension, width)
	}
	return scaleSide(width, maxDimension, height), maxDimension
}

func scaleSide(side, target, longest int) int {
	v := (side*target*2 + longest) / (2 * longest)
	if v < 1 {
		return 1
	}
	return v
}

// flatten composites img onto white so transparent areas do not turn black in JPEG
func flatten(img image.Image) *image.NRGBA {
	b := img.Bounds()
	bg := imaging.New(b.Dx(), b.Dy(), color.White)
	return imaging.Overlay(bg, img, image.Pt(0, 0), 1.0)
}
