package processor

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/leeforge/resizer/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeSize(t *testing.T) {
	tests := []struct {
		name     string
		original Size
		target   Size
		ratio    bool
		want     Size
	}{
		{"square into tall box", Size{100, 100}, Size{200, 300}, true, Size{200, 200}},
		{"square ratio off", Size{100, 100}, Size{200, 300}, false, Size{200, 300}},
		{"landscape shrink", Size{1920, 1080}, Size{800, 600}, true, Size{800, 450}},
		{"portrait shrink", Size{1080, 1920}, Size{800, 600}, true, Size{337, 600}},
		{"upscale", Size{40, 30}, Size{400, 400}, true, Size{400, 300}},
		{"truncation", Size{3, 7}, Size{10, 10}, true, Size{4, 10}},
		{"exact reciprocal", Size{49, 98}, Size{1, 1000}, true, Size{1, 2}},
		{"extreme ratio clamps to one", Size{1000, 1}, Size{10, 10}, true, Size{10, 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ComputeSize(tt.original, tt.target, tt.ratio)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestComputeSizeErrors(t *testing.T) {
	_, err := ComputeSize(Size{0, 100}, Size{10, 10}, true)
	assert.ErrorIs(t, err, errors.ErrInvalidImage)

	_, err = ComputeSize(Size{100, 100}, Size{0, 10}, true)
	assert.ErrorIs(t, err, errors.ErrInvalidSize)

	_, err = ComputeSize(Size{100, 100}, Size{10, -1}, false)
	assert.ErrorIs(t, err, errors.ErrInvalidSize)

	// Degenerate originals do not matter without ratio lock.
	got, err := ComputeSize(Size{0, 0}, Size{10, 20}, false)
	require.NoError(t, err)
	assert.Equal(t, Size{10, 20}, got)
}

func TestComputeSizeFitsBoxAndKeepsRatio(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))

	for i := 0; i < 5000; i++ {
		original := Size{rng.IntN(4000) + 1, rng.IntN(4000) + 1}
		target := Size{rng.IntN(4000) + 1, rng.IntN(4000) + 1}

		got, err := ComputeSize(original, target, true)
		require.NoError(t, err)

		require.LessOrEqual(t, got.Width, target.Width, "original=%v target=%v", original, target)
		require.LessOrEqual(t, got.Height, target.Height, "original=%v target=%v", original, target)
		require.GreaterOrEqual(t, got.Width, 1)
		require.GreaterOrEqual(t, got.Height, 1)

		scale := math.Min(float64(target.Width)/float64(original.Width), float64(target.Height)/float64(original.Height))
		if float64(original.Width)*scale < 1 || float64(original.Height)*scale < 1 {
			// clamped to 1px, ratio cannot be kept
			continue
		}

		// Truncating each side by less than a pixel bounds the ratio error
		// by (1+r)/h.
		r := float64(original.Width) / float64(original.Height)
		tolerance := (1 + r) / float64(got.Height)
		diff := math.Abs(float64(got.Width)/float64(got.Height) - r)
		require.LessOrEqual(t, diff, tolerance, "original=%v target=%v got=%v", original, target, got)
	}
}

func TestComputeSizeRoundedRatio(t *testing.T) {
	cases := [][2]Size{
		{{1920, 1080}, {1280, 1280}},
		{{1080, 1920}, {600, 1000}},
		{{4000, 3000}, {800, 800}},
		{{640, 480}, {2000, 1000}},
	}
	for _, c := range cases {
		got, err := ComputeSize(c[0], c[1], true)
		require.NoError(t, err)
		want := math.Round(float64(c[0].Width)/float64(c[0].Height)*100) / 100
		have := math.Round(float64(got.Width)/float64(got.Height)*100) / 100
		assert.Equal(t, want, have, "%v -> %v", c[0], got)
	}
}

func TestComputeSizeRatioOffReturnsTarget(t *testing.T) {
	rng := rand.New(rand.NewPCG(3, 4))

	for i := 0; i < 1000; i++ {
		original := Size{rng.IntN(5000) + 1, rng.IntN(5000) + 1}
		target := Size{rng.IntN(5000) + 1, rng.IntN(5000) + 1}

		got, err := ComputeSize(original, target, false)
		require.NoError(t, err)
		require.Equal(t, target, got)
	}
}

func TestFollowWidth(t *testing.T) {
	got, err := FollowWidth(Size{1920, 1080}, 800)
	require.NoError(t, err)
	assert.Equal(t, Size{800, 450}, got)

	// Ignores any typed height: 100x100 at width 200 follows to 200x200.
	got, err = FollowWidth(Size{100, 100}, 200)
	require.NoError(t, err)
	assert.Equal(t, Size{200, 200}, got)

	_, err = FollowWidth(Size{100, 100}, 0)
	assert.ErrorIs(t, err, errors.ErrInvalidSize)

	_, err = FollowWidth(Size{100, 0}, 10)
	assert.ErrorIs(t, err, errors.ErrInvalidImage)
}

func TestFollowWidthMatchesUnboundedHeight(t *testing.T) {
	rng := rand.New(rand.NewPCG(5, 6))

	for i := 0; i < 5000; i++ {
		original := Size{rng.IntN(4000) + 1, rng.IntN(4000) + 1}
		width := rng.IntN(4000) + 1

		followed, err := FollowWidth(original, width)
		require.NoError(t, err)

		boxed, err := ComputeSize(original, Size{width, math.MaxInt32}, true)
		require.NoError(t, err)

		require.Equal(t, boxed, followed, "original=%v width=%d", original, width)
	}
}

func TestFitWithin(t *testing.T) {
	got, err := FitWithin(Size{200, 100}, Size{400, 300})
	require.NoError(t, err)
	assert.Equal(t, Size{200, 100}, got, "never upscaled")

	got, err = FitWithin(Size{800, 800}, Size{400, 300})
	require.NoError(t, err)
	assert.Equal(t, Size{300, 300}, got)

	_, err = FitWithin(Size{800, 800}, Size{0, 300})
	assert.ErrorIs(t, err, errors.ErrInvalidSize)
}
