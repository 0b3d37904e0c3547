package processor

import (
	"testing"

	"github.com/leeforge/resizer/errors"
	"github.com/stretchr/testify/assert"
)

func TestParseMethod(t *testing.T) {
	tests := []struct {
		in   string
		want Method
		ok   bool
	}{
		{"LANCZOS", Lanczos, true},
		{"bicubic", Bicubic, true},
		{" Bilinear ", Bilinear, true},
		{"nearest", Nearest, true},
		{"hermite", Lanczos, false},
	}

	for _, tt := range tests {
		got, ok := ParseMethod(tt.in)
		assert.Equal(t, tt.want, got, tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
	}

	assert.Equal(t, Lanczos, MethodOrDefault("unknown"))
	assert.Equal(t, "Bicubic", Bicubic.DisplayName())
	assert.Equal(t, "LANCZOS", Method(99).String())
}

func TestParseFormat(t *testing.T) {
	for _, in := range []string{"jpeg", "JPG", "Jpeg"} {
		f, ok := ParseFormat(in)
		assert.True(t, ok, in)
		assert.Equal(t, JPEG, f, in)
	}
	f, ok := ParseFormat("webp")
	assert.True(t, ok)
	assert.Equal(t, WEBP, f)

	_, ok = ParseFormat("gif")
	assert.False(t, ok)
	assert.Equal(t, "JPEG", Format(7).String())
}

func TestIntentValidation(t *testing.T) {
	assert.NoError(t, DefaultResize.Validate())
	assert.NoError(t, DefaultCompression.Validate())

	err := ResizeIntent{Width: 0, Height: 10}.Validate()
	assert.ErrorIs(t, err, errors.ErrInvalidSize)

	err = ResizeIntent{Width: 10, Height: -3}.Validate()
	assert.ErrorIs(t, err, errors.ErrInvalidSize)

	err = CompressionIntent{Format: JPEG, Quality: 101}.Validate()
	assert.ErrorIs(t, err, errors.ErrValidation)

	err = CompressionIntent{Format: PNG, Quality: 0}.Validate()
	assert.ErrorIs(t, err, errors.ErrValidation)
}
