package scoring

import "fmt"

type ValidationErrorCode string

const (
	ValidationErrorBadWeights   ValidationErrorCode = "bad_weights"
	ValidationErrorBadWeightMap ValidationErrorCode = "bad_weight_map"
	ValidationErrorNonFinite    ValidationErrorCode = "non_finite_input"
)

// ValidationError is fatal to the current analysis run only; the caller may
// retry with corrected input. Out-of-range weights are rejected, never
// clamped; clamping would silently distort the coverage metric.
type ValidationError struct {
	Code    ValidationErrorCode
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e == nil {
		return "validation error"
	}
	if e.Field != "" {
		return fmt.Sprintf("validation error (code=%s field=%s): %s", e.Code, e.Field, e.Message)
	}
	return fmt.Sprintf("validation error (code=%s): %s", e.Code, e.Message)
}

func validationErr(code ValidationErrorCode, field, msg string) error {
	return &ValidationError{Code: code, Field: field, Message: msg}
}
