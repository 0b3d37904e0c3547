package processor

import (
	stderrors "errors"

	validatorV10 "github.com/go-playground/validator/v10"
	"github.com/leeforge/resizer/errors"
)

var validator = validatorV10.New()

// Validate checks that both target dimensions are positive.
func (i ResizeIntent) Validate() error {
	return validateIntent(i, errors.ErrorTypeInvalidSize)
}

// Validate checks that quality lies in [1,100]. ResolveCompression does not
// call this; it is meant for the input boundary.
func (i CompressionIntent) Validate() error {
	return validateIntent(i, errors.ErrorTypeValidation)
}

func validateIntent(v any, errType errors.ErrorType) error {
	err := validator.Struct(v)
	if err == nil {
		return nil
	}

	var fieldErrs validatorV10.ValidationErrors
	if !stderrors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return errors.WrapWithType(err, errType, "validation failed")
	}

	fe := fieldErrs[0]
	if errType == errors.ErrorTypeInvalidSize {
		return errors.NewInvalidSize(fe.Field(), fe.Value())
	}
	return errors.New(errType, fe.Field()+" failed "+fe.Tag()+"="+fe.Param()).
		WithDetail("field", fe.Field()).
		WithDetail("value", fe.Value())
}
