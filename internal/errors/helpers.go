package errors

import (
	"errors"
)

// As is a wrapper around errors.As that works with our Error type
func As(err error, target **Error) bool {
	return errors.As(err, target)
}

// GetCode returns the code of err, CodeInternal for foreign errors and CodeOK for nil
func GetCode(err error) Code {
	if err == nil {
		return CodeOK
	}

	var customErr *Error
	if As(err, &customErr) {
		return customErr.Code
	}
	return CodeInternal
}

// GetMeta returns the metadata attached to err, if any
func GetMeta(err error) map[string]interface{} {
	var customErr *Error
	if As(err, &customErr) {
		return customErr.Meta
	}
	return nil
}

// GetMessage returns the user facing message of err
func GetMessage(err error) string {
	if err == nil {
		return ""
	}

	var customErr *Error
	if As(err, &customErr) {
		return customErr.Message
	}
	return err.Error()
}

// IsNotFound checks if the error is a not found error
func IsNotFound(err error) bool {
	return GetCode(err) == CodeNotFound
}

// IsInvalidArgument checks if the error is an invalid argument error
func IsInvalidArgument(err error) bool {
	return GetCode(err) == CodeInvalidArgument
}

// IsResourceExhausted checks if the error is a resource exhausted error
func IsResourceExhausted(err error) bool {
	return GetCode(err) == CodeResourceExhausted
}

// IsFailedPrecondition checks if the error is a failed precondition error
func IsFailedPrecondition(err error) bool {
	return GetCode(err) == CodeFailedPrecondition
}
