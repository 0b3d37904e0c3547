package processor

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"io"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
	"github.com/nfnt/resize"

	// WebP decoding for image.DecodeConfig / imaging.Decode
	_ "golang.org/x/image/webp"
)

// Resizer derives new rasters from decoded images.
type Resizer interface {
	// Resample scales img to exactly size using method.
	Resample(img image.Image, size Size, method Method) image.Image
	// Thumbnail returns a copy of img that fits inside box, never upscaled.
	Thumbnail(img image.Image, box Size) (image.Image, error)
}

// NativeProcessor implements Resizer with nfnt/resize for resampling and
// imaging for thumbnails.
type NativeProcessor struct{}

// NewNativeProcessor returns the default Resizer.
func NewNativeProcessor() *NativeProcessor {
	return &NativeProcessor{}
}

func (m Method) interpolation() resize.InterpolationFunction {
	switch m {
	case Bicubic:
		return resize.Bicubic
	case Bilinear:
		return resize.Bilinear
	case Nearest:
		return resize.NearestNeighbor
	default:
		return resize.Lanczos3
	}
}

// Resample scales img to size. The result never shares pixels with img,
// including when size already matches.
func (p *NativeProcessor) Resample(img image.Image, size Size, method Method) image.Image {
	if SizeOf(img) == size {
		return imaging.Clone(img)
	}
	return resize.Resize(uint(size.Width), uint(size.Height), img, method.interpolation())
}

// Thumbnail scales a copy of img down to fit box. Images that already fit
// are copied at their own size.
func (p *NativeProcessor) Thumbnail(img image.Image, box Size) (image.Image, error) {
	b := img.Bounds()
	fit, err := FitWithin(Size{Width: b.Dx(), Height: b.Dy()}, box)
	if err != nil {
		return nil, err
	}
	if fit.Width == b.Dx() && fit.Height == b.Dy() {
		return imaging.Clone(img), nil
	}
	return imaging.Resize(img, fit.Width, fit.Height, imaging.Lanczos), nil
}

// Clone returns an independent copy of img.
func Clone(img image.Image) image.Image {
	return imaging.Clone(img)
}

// SizeOf returns the pixel dimensions of img.
func SizeOf(img image.Image) Size {
	b := img.Bounds()
	return Size{Width: b.Dx(), Height: b.Dy()}
}

// Decode decodes an encoded image, applying EXIF orientation. The returned
// format is the registered decoder name ("jpeg", "png", "webp", ...).
func Decode(data []byte) (image.Image, string, error) {
	_, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("unsupported or corrupt image: %w", err)
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, "", fmt.Errorf("decode %s: %w", format, err)
	}
	return img, format, nil
}

// Encode writes img in format using opts.
func Encode(w io.Writer, img image.Image, format Format, opts EncoderOptions) error {
	switch format {
	case PNG:
		level := png.DefaultCompression
		if opts.Optimize {
			level = png.BestCompression
		}
		return imaging.Encode(w, img, imaging.PNG, imaging.PNGCompressionLevel(level))
	case WEBP:
		quality := opts.Quality
		if !opts.HasQuality() {
			quality = DefaultCompression.Quality
		}
		return webp.Encode(w, img, &webp.Options{Quality: float32(quality)})
	default:
		encodeOpts := []imaging.EncodeOption{}
		if opts.HasQuality() {
			encodeOpts = append(encodeOpts, imaging.JPEGQuality(opts.Quality))
		}
		return imaging.Encode(w, img, imaging.JPEG, encodeOpts...)
	}
}

var _ Resizer = (*NativeProcessor)(nil)
