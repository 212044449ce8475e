package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents a unique error code
type ErrorCode int

// AppError represents an application error
type AppError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Err     error     `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Common error codes
const (
	ErrNotFound ErrorCode = iota + 1000
	ErrBadRequest
	ErrUnauthorized
	ErrForbidden
	ErrInternal
)

// Pipeline error codes. Recording and transcription failures are
// recoverable from the operator's point of view; extraction,
// authentication and persistence failures abort the save path.
const (
	ErrDeviceUnavailable ErrorCode = iota + 2000
	ErrNotRecording
	ErrTranscriptionFailed
	ErrExtractionFailed
	ErrUnauthenticated
	ErrPersistenceFailed
)

// Error constructors
func NewNotFound(resource string, err error) *AppError {
	return &AppError{
		Code:    ErrNotFound,
		Message: fmt.Sprintf("%s not found", resource),
		Err:     err,
	}
}

func NewBadRequest(message string, err error) *AppError {
	return &AppError{
		Code:    ErrBadRequest,
		Message: message,
		Err:     err,
	}
}

func NewInternal(err error) *AppError {
	return &AppError{
		Code:    ErrInternal,
		Message: "internal server error",
		Err:     err,
	}
}

// Common errors
func NotFound(resource string, err error) *AppError {
	return NewNotFound(resource, err)
}

func BadRequest(message string, err error) *AppError {
	return NewBadRequest(message, err)
}

func Internal(err error) *AppError {
	return NewInternal(err)
}

func Unauthorized(err error) *AppError {
	return &AppError{
		Code:    ErrUnauthorized,
		Message: "unauthorized",
		Err:     err,
	}
}

// Pipeline errors

func DeviceUnavailable(err error) *AppError {
	return &AppError{
		Code:    ErrDeviceUnavailable,
		Message: "audio input device unavailable",
		Err:     err,
	}
}

func NotRecording() *AppError {
	return &AppError{
		Code:    ErrNotRecording,
		Message: "no recording in progress",
	}
}

func TranscriptionFailed(err error) *AppError {
	return &AppError{
		Code:    ErrTranscriptionFailed,
		Message: "failed to transcribe audio",
		Err:     err,
	}
}

func ExtractionFailed(err error) *AppError {
	return &AppError{
		Code:    ErrExtractionFailed,
		Message: "failed to extract structured data from transcript",
		Err:     err,
	}
}

func Unauthenticated() *AppError {
	return &AppError{
		Code:    ErrUnauthenticated,
		Message: "operator not authenticated",
	}
}

func PersistenceFailed(message string, err error) *AppError {
	return &AppError{
		Code:    ErrPersistenceFailed,
		Message: message,
		Err:     err,
	}
}

// CodeOf returns the AppError code carried by err, or ErrInternal
// for errors that did not originate in this application.
func CodeOf(err error) ErrorCode {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ErrInternal
}
