package validator

import "fmt"

// Result is the outcome of a validation. Expected failures such as an
// expired or untrusted token are reported as an invalid Result, never as an
// error.
//
// The zero value is invalid.
type Result struct {
	valid            bool
	errorDescription string
}

// Valid returns a successful Result.
func Valid() Result {
	return Result{valid: true}
}

// Invalid returns a failed Result. The description is formatted with
// fmt.Sprintf.
func Invalid(format string, args ...any) Result {
	return Result{errorDescription: fmt.Sprintf(format, args...)}
}

// IsValid reports whether the validation succeeded.
func (r Result) IsValid() bool {
	return r.valid
}

// IsErroneous reports whether the validation failed.
func (r Result) IsErroneous() bool {
	return !r.valid
}

// ErrorDescription describes why the validation failed. It is empty for a
// valid Result.
func (r Result) ErrorDescription() string {
	return r.errorDescription
}

func (r Result) String() string {
	if r.valid {
		return "valid"
	}

	return "invalid: " + r.errorDescription
}
