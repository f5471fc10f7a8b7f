// Package errs defines the coded error taxonomy shared by the bot's workflows.
// Each error carries a user-facing message and an optional wrapped cause.
package errs

import (
	"errors"
	"fmt"
)

// Standard error codes for the application.
const (
	CodeUnknown          = "UNKNOWN"
	CodeValidation       = "VALIDATION"
	CodeTargetResolution = "TARGET_RESOLUTION"
	CodeBackend          = "BACKEND"
	CodePlatform         = "PLATFORM"
	CodeMedia            = "MEDIA"
	CodeDatabase         = "DATABASE"
	CodeConfig           = "CONFIG"
)

// ApplicationError is the interface that all coded errors implement.
type ApplicationError interface {
	error
	Code() string
	Message() string
	Unwrap() error
}

// Error is the concrete coded error.
type Error struct {
	code    string
	message string
	err     error
}

func (e *Error) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%s: %v", e.message, e.err)
	}
	return e.message
}

func (e *Error) Code() string {
	return e.code
}

// Message returns the message without the wrapped cause.
func (e *Error) Message() string {
	return e.message
}

func (e *Error) Unwrap() error {
	return e.err
}

// Is matches any *Error with the same code, so errors.Is(err, errs.Validation)
// style checks work across wrapping.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.message == "" && t.err == nil && t.code == e.code
}

// Sentinels for errors.Is checks.
var (
	Validation       = &Error{code: CodeValidation}
	TargetResolution = &Error{code: CodeTargetResolution}
	Backend          = &Error{code: CodeBackend}
	Platform         = &Error{code: CodePlatform}
	Media            = &Error{code: CodeMedia}
	Database         = &Error{code: CodeDatabase}
	Config           = &Error{code: CodeConfig}
)

// Code returns the code of the first ApplicationError in err's chain,
// or CodeUnknown if there is none.
func Code(err error) string {
	var appErr ApplicationError
	if errors.As(err, &appErr) {
		return appErr.Code()
	}
	return CodeUnknown
}

// Message returns the user-facing message of the first ApplicationError in
// err's chain, or an empty string.
func Message(err error) string {
	var appErr ApplicationError
	if errors.As(err, &appErr) {
		return appErr.Message()
	}
	return ""
}

func newError(code, message string, cause error) error {
	return &Error{code: code, message: message, err: cause}
}

// NewValidationError reports malformed user input such as a bad command argument.
func NewValidationError(message string, cause error) error {
	return newError(CodeValidation, message, cause)
}

// NewTargetResolutionError reports a named user that could not be resolved or is not eligible.
func NewTargetResolutionError(message string, cause error) error {
	return newError(CodeTargetResolution, message, cause)
}

// NewBackendError reports a failed or empty generative backend response.
func NewBackendError(message string, cause error) error {
	return newError(CodeBackend, message, cause)
}

// NewPlatformError reports a failed messaging platform call.
func NewPlatformError(message string, cause error) error {
	return newError(CodePlatform, message, cause)
}

// NewMediaError reports a media download failure or an unsupported media type.
func NewMediaError(message string, cause error) error {
	return newError(CodeMedia, message, cause)
}

func NewDatabaseError(message string, cause error) error {
	return newError(CodeDatabase, message, cause)
}

func NewConfigError(message string, cause error) error {
	return newError(CodeConfig, message, cause)
}
