package config

import (
	stderrors "errors"
	"fmt"
	"strings"

	"github.com/creasty/defaults"
	validatorV10 "github.com/go-playground/validator/v10"
	"github.com/leeforge/resizer/errors"
	"github.com/leeforge/resizer/logging"
	"github.com/leeforge/resizer/media/processor"
	"github.com/leeforge/resizer/utils"
)

// Box is a width x height bound in pixels.
type Box struct {
	Width  int `mapstructure:"width" json:"width" yaml:"width" validate:"gt=0"`
	Height int `mapstructure:"height" json:"height" yaml:"height" validate:"gt=0"`
}

func (b Box) Size() processor.Size {
	return processor.Size{Width: b.Width, Height: b.Height}
}

type ResizeSettings struct {
	Width         int    `mapstructure:"width" json:"width" yaml:"width" default:"800" validate:"gt=0"`
	Height        int    `mapstructure:"height" json:"height" yaml:"height" default:"600" validate:"gt=0"`
	MaintainRatio bool   `mapstructure:"maintain-ratio" json:"maintainRatio" yaml:"maintain-ratio" default:"true"`
	Method        string `mapstructure:"method" json:"method" yaml:"method" default:"LANCZOS" validate:"oneof=LANCZOS BICUBIC BILINEAR NEAREST"`
}

type CompressionSettings struct {
	Format  string `mapstructure:"format" json:"format" yaml:"format" default:"JPEG" validate:"oneof=JPEG JPG PNG WEBP"`
	Quality int    `mapstructure:"quality" json:"quality" yaml:"quality" default:"85" validate:"min=1,max=100"`
}

// AppSettings holds the startup settings. It is read once and not mutated
// afterwards.
type AppSettings struct {
	Window       Box                 `mapstructure:"window" json:"window" yaml:"window"`
	Preview      Box                 `mapstructure:"preview" json:"preview" yaml:"preview"`
	Resize       ResizeSettings      `mapstructure:"resize" json:"resize" yaml:"resize"`
	Compression  CompressionSettings `mapstructure:"compression" json:"compression" yaml:"compression"`
	OutputSuffix string              `mapstructure:"output-suffix" json:"outputSuffix" yaml:"output-suffix" default:"_resized"`
	Logging      logging.Config      `mapstructure:"logging" json:"logging" yaml:"logging"`
}

// SetDefaults fills the boxes, which share a type but not a default.
func (s *AppSettings) SetDefaults() {
	if s.Window == (Box{}) {
		s.Window = Box{Width: 800, Height: 600}
	}
	if s.Preview == (Box{}) {
		s.Preview = Box{Width: 400, Height: 300}
	}
}

// settingsEnvKeys can be set from the environment without any config file,
// e.g. RESIZER_COMPRESSION_QUALITY=70.
var settingsEnvKeys = []string{
	"window.width", "window.height",
	"preview.width", "preview.height",
	"resize.width", "resize.height", "resize.maintain-ratio", "resize.method",
	"compression.format", "compression.quality",
	"output-suffix",
	"logging.level", "logging.format", "logging.director", "logging.log-to-file",
}

// LoadSettings reads AppSettings through the config cascade. Missing config
// files are fine when opts.Optional is set.
func LoadSettings(opts ConfigOptions) (*AppSettings, error) {
	opts.EnvKeys = append(append([]string{}, opts.EnvKeys...), settingsEnvKeys...)

	cfg, err := NewConfig(opts)
	if err != nil {
		return nil, errors.WrapWithType(err, errors.ErrorTypeValidation, "failed to load configuration")
	}

	settings := &AppSettings{}
	if err := cfg.BindWithDefaults(settings); err != nil {
		return nil, errors.WrapWithType(err, errors.ErrorTypeValidation, "failed to bind configuration")
	}

	settings.normalize()
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	return settings, nil
}

// DefaultSettings returns the settings used when nothing is configured.
func DefaultSettings() *AppSettings {
	settings := &AppSettings{}
	// Tags are static; Set only fails on malformed tags.
	if err := defaults.Set(settings); err != nil {
		panic(err)
	}
	settings.normalize()
	return settings
}

func (s *AppSettings) normalize() {
	s.Resize.Method = utils.Upper(s.Resize.Method)
	s.Compression.Format = utils.Upper(s.Compression.Format)
}

var settingsValidator = validatorV10.New()

var _ Validator = (*AppSettings)(nil)

// Validate checks ranges and enumerations.
func (s *AppSettings) Validate() error {
	err := settingsValidator.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validatorV10.ValidationErrors
	if !stderrors.As(err, &fieldErrs) {
		return errors.WrapWithType(err, errors.ErrorTypeValidation, "invalid settings")
	}

	msgs := make([]string, 0, len(fieldErrs))
	appErr := errors.NewValidation("")
	for _, fe := range fieldErrs {
		field := strings.TrimPrefix(fe.Namespace(), "AppSettings.")
		msg := fmt.Sprintf("%s %s", field, getValidationMessage(fe))
		msgs = append(msgs, msg)
		appErr.WithDetail(field, fe.Value())
	}
	return appErr.WithMessage("invalid settings: " + strings.Join(msgs, "; "))
}

func getValidationMessage(fe validatorV10.FieldError) string {
	switch fe.Tag() {
	case "gt":
		return fmt.Sprintf("must be greater than %s", fe.Param())
	case "min":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of [%s]", fe.Param())
	default:
		return fmt.Sprintf("failed validation on '%s'", fe.Tag())
	}
}

// ResizeIntent is the initial resize request shown by the front end.
func (s *AppSettings) ResizeIntent() processor.ResizeIntent {
	return processor.ResizeIntent{
		Width:         s.Resize.Width,
		Height:        s.Resize.Height,
		MaintainRatio: s.Resize.MaintainRatio,
		Method:        processor.MethodOrDefault(s.Resize.Method),
	}
}

// CompressionIntent is the initial output format and quality.
func (s *AppSettings) CompressionIntent() processor.CompressionIntent {
	format, _ := processor.ParseFormat(s.Compression.Format)
	return processor.CompressionIntent{Format: format, Quality: s.Compression.Quality}
}
