package processor

import (
	"path/filepath"
	"strings"
)

// EncoderOptions is the concrete parameter set handed to an encoder.
// Quality is zero for formats that take no quality setting.
type EncoderOptions struct {
	Quality  int
	Optimize bool
}

// HasQuality reports whether a quality value is passed to the encoder.
func (o EncoderOptions) HasQuality() bool {
	return o.Quality > 0
}

// Params returns the options as a key/value set for logs and reports.
// The quality key is absent when HasQuality is false.
func (o EncoderOptions) Params() map[string]any {
	params := map[string]any{"optimize": o.Optimize}
	if o.HasQuality() {
		params["quality"] = o.Quality
	}
	return params
}

// Extension returns the canonical file extension, including the dot.
// Unknown formats map to ".jpg".
func (f Format) Extension() string {
	switch f {
	case PNG:
		return ".png"
	case WEBP:
		return ".webp"
	default:
		return ".jpg"
	}
}

// ResolveCompression maps a compression intent to a file extension and
// encoder options. PNG is lossless and never receives a quality. Unknown
// formats use the JPEG mapping. Quality is passed through unchecked.
func ResolveCompression(intent CompressionIntent) (string, EncoderOptions) {
	switch intent.Format {
	case PNG:
		return PNG.Extension(), EncoderOptions{Optimize: true}
	case WEBP:
		return WEBP.Extension(), EncoderOptions{Quality: intent.Quality, Optimize: true}
	default:
		return JPEG.Extension(), EncoderOptions{Quality: intent.Quality, Optimize: true}
	}
}

// FormatForPath guesses the output format from a path's extension.
func FormatForPath(path string) (Format, bool) {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	if ext == "" {
		return JPEG, false
	}
	return ParseFormat(ext)
}
