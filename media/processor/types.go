package processor

import (
	"fmt"

	"github.com/leeforge/resizer/utils"
)

// Size is an image resolution in pixels.
type Size struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

func (s Size) String() string {
	return fmt.Sprintf("%dx%d", s.Width, s.Height)
}

// Positive reports whether both dimensions are at least 1.
func (s Size) Positive() bool {
	return s.Width > 0 && s.Height > 0
}

// Method is the resampling filter used when changing resolution.
type Method int

const (
	Lanczos Method = iota
	Bicubic
	Bilinear
	Nearest
)

var methodNames = map[Method]string{
	Lanczos:  "LANCZOS",
	Bicubic:  "BICUBIC",
	Bilinear: "BILINEAR",
	Nearest:  "NEAREST",
}

func (m Method) String() string {
	if name, ok := methodNames[m]; ok {
		return name
	}
	return "LANCZOS"
}

// DisplayName returns the human readable name, e.g. "Lanczos".
func (m Method) DisplayName() string {
	return utils.DisplayName(m.String())
}

// ParseMethod looks a method up by name, ignoring case.
func ParseMethod(s string) (Method, bool) {
	name := utils.Upper(s)
	for m, n := range methodNames {
		if n == name {
			return m, true
		}
	}
	return Lanczos, false
}

// MethodOrDefault parses s and falls back to Lanczos for unknown names.
func MethodOrDefault(s string) Method {
	m, _ := ParseMethod(s)
	return m
}

// Methods lists the supported methods in menu order.
func Methods() []Method {
	return []Method{Lanczos, Bicubic, Bilinear, Nearest}
}

// Format is an output encoding.
type Format int

const (
	JPEG Format = iota
	PNG
	WEBP
)

func (f Format) String() string {
	switch f {
	case PNG:
		return "PNG"
	case WEBP:
		return "WEBP"
	default:
		return "JPEG"
	}
}

// ParseFormat looks a format up by name, ignoring case. "JPG" is accepted.
func ParseFormat(s string) (Format, bool) {
	switch utils.Upper(s) {
	case "JPEG", "JPG":
		return JPEG, true
	case "PNG":
		return PNG, true
	case "WEBP":
		return WEBP, true
	default:
		return JPEG, false
	}
}

// Formats lists the supported output formats.
func Formats() []Format {
	return []Format{JPEG, PNG, WEBP}
}

// ResizeIntent is one resize request from the front end.
type ResizeIntent struct {
	Width         int    `validate:"gt=0"`
	Height        int    `validate:"gt=0"`
	MaintainRatio bool
	Method        Method
}

// Target returns the requested box.
func (i ResizeIntent) Target() Size {
	return Size{Width: i.Width, Height: i.Height}
}

// CompressionIntent is the chosen output format and quality.
// Quality only matters for JPEG and WEBP.
type CompressionIntent struct {
	Format  Format
	Quality int `validate:"min=1,max=100"`
}

// Standard intents
var (
	DefaultResize      = ResizeIntent{Width: 800, Height: 600, MaintainRatio: true, Method: Lanczos}
	DefaultCompression = CompressionIntent{Format: JPEG, Quality: 85}
)
