package processor

import (
	"math"

	"github.com/leeforge/resizer/errors"
)

// truncEpsilon absorbs float rounding so that products which are exact in
// real arithmetic (e.g. 49 * (1/49)) are not truncated one pixel short.
const truncEpsilon = 1e-9

// ComputeSize resolves the final resolution for a resize request.
//
// Without ratio lock the target is returned as is. With ratio lock the
// original is scaled to fit inside the target box:
//
//	scale = min(tw/ow, th/oh)
//	size  = (floor(ow*scale), floor(oh*scale))
//
// so neither requested dimension is exceeded. Dimensions never drop below 1.
func ComputeSize(original, target Size, maintainRatio bool) (Size, error) {
	if !maintainRatio {
		if err := checkTarget(target); err != nil {
			return Size{}, err
		}
		return target, nil
	}

	if !original.Positive() {
		return Size{}, errors.NewInvalidImage(original.Width, original.Height)
	}
	if err := checkTarget(target); err != nil {
		return Size{}, err
	}

	scale := math.Min(
		float64(target.Width)/float64(original.Width),
		float64(target.Height)/float64(original.Height),
	)
	return Size{
		Width:  scaleDim(original.Width, scale),
		Height: scaleDim(original.Height, scale),
	}, nil
}

// FollowWidth recomputes the height for a new width under ratio lock:
// height = floor(oh * (newWidth/ow)). This is the single-field edit path and
// deliberately ignores any height the user typed; it equals ComputeSize with
// an unbounded target height.
func FollowWidth(original Size, newWidth int) (Size, error) {
	if !original.Positive() {
		return Size{}, errors.NewInvalidImage(original.Width, original.Height)
	}
	if newWidth <= 0 {
		return Size{}, errors.NewInvalidSize("width", newWidth)
	}

	scale := float64(newWidth) / float64(original.Width)
	return Size{
		Width:  newWidth,
		Height: scaleDim(original.Height, scale),
	}, nil
}

// FitWithin returns the size original should be shown at inside box. Images
// that already fit keep their size; larger ones are scaled down.
func FitWithin(original, box Size) (Size, error) {
	if !original.Positive() {
		return Size{}, errors.NewInvalidImage(original.Width, original.Height)
	}
	if err := checkTarget(box); err != nil {
		return Size{}, err
	}
	if original.Width <= box.Width && original.Height <= box.Height {
		return original, nil
	}
	return ComputeSize(original, box, true)
}

func scaleDim(v int, scale float64) int {
	d := int(math.Floor(float64(v)*scale + truncEpsilon))
	if d < 1 {
		return 1
	}
	return d
}

func checkTarget(target Size) error {
	if target.Width <= 0 {
		return errors.NewInvalidSize("width", target.Width)
	}
	if target.Height <= 0 {
		return errors.NewInvalidSize("height", target.Height)
	}
	return nil
}
