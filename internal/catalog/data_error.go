package catalog

import "fmt"

type DataErrorCode string

const (
	DataErrorOpenFailed      DataErrorCode = "open_failed"
	DataErrorParseFailed     DataErrorCode = "parse_failed"
	DataErrorMissingColumn   DataErrorCode = "missing_column"
	DataErrorBadRow          DataErrorCode = "bad_row"
	DataErrorMissingCategory DataErrorCode = "missing_category"
	DataErrorEmptyCatalog    DataErrorCode = "empty_catalog"
)

// DataError is fatal: a malformed catalog source is never retried.
type DataError struct {
	Code      DataErrorCode
	Operation string
	Message   string
	Cause     error
}

func (e *DataError) Error() string {
	if e == nil {
		return "catalog data error"
	}
	if e.Message != "" {
		return fmt.Sprintf("catalog data error (op=%s code=%s): %s", e.Operation, e.Code, e.Message)
	}
	if e.Cause != nil {
		return fmt.Sprintf("catalog data error (op=%s code=%s): %v", e.Operation, e.Code, e.Cause)
	}
	return fmt.Sprintf("catalog data error (op=%s code=%s)", e.Operation, e.Code)
}

func (e *DataError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

func dataErr(op string, code DataErrorCode, msg string, cause error) error {
	return &DataError{
		Code:      code,
		Operation: op,
		Message:   msg,
		Cause:     cause,
	}
}
