package dto

// ErrorCode classifies a field validation failure.
type ErrorCode string

const (
	ErrorCodeRequired           ErrorCode = "REQUIRED"
	ErrorCodeInvalidFormat      ErrorCode = "INVALID_FORMAT"
	ErrorCodeOutOfRange         ErrorCode = "OUT_OF_RANGE"
	ErrorCodeInsufficientShares ErrorCode = "INSUFFICIENT_SHARES"
	ErrorCodeDuplicateTicker    ErrorCode = "DUPLICATE_TICKER"
)

// FieldError is a single violated rule.
type FieldError struct {
	Field   string    `json:"field"`
	Message string    `json:"message"`
	Code    ErrorCode `json:"code"`
}

// ValidationResult collects every violated rule for one input.
type ValidationResult struct {
	IsValid bool         `json:"is_valid"`
	Errors  []FieldError `json:"errors"`
}

// NewValidationResult builds a result whose IsValid flag matches the error list.
func NewValidationResult(errors []FieldError) ValidationResult {
	if errors == nil {
		errors = []FieldError{}
	}
	return ValidationResult{
		IsValid: len(errors) == 0,
		Errors:  errors,
	}
}

// ErrorFor returns the first error reported for field, if any.
func (r ValidationResult) ErrorFor(field string) (FieldError, bool) {
	for _, e := range r.Errors {
		if e.Field == field {
			return e, true
		}
	}
	return FieldError{}, false
}
