package errors

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/emicklei/go-restful/v3"
)

// Error represents a common error type. The message is serialized as
// "error", the field clients of the relay read.
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"error"`
}

// Error implements the error interface
func (e *Error) Error() string {
	return e.Message
}

// New creates a new error with the given code and message
func New(code int, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
	}
}

// Newf creates a new error with the given code and formatted message
func Newf(code int, format string, args ...interface{}) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Common error codes
const (
	CodeInternalError      = http.StatusInternalServerError
	CodeBadRequest         = http.StatusBadRequest
	CodeNotFound           = http.StatusNotFound
	CodeConflict           = http.StatusConflict
	CodeTooManyRequests    = http.StatusTooManyRequests
	CodeServiceUnavailable = http.StatusServiceUnavailable
)

// Common error messages
var (
	ErrInternalError = New(CodeInternalError, "Internal server error")
	ErrBadRequest    = New(CodeBadRequest, "Bad request")
	ErrNotFound      = New(CodeNotFound, "Resource not found")
	ErrConflict      = New(CodeConflict, "Resource conflict")
)

// StatusOf returns the HTTP status carried by err, or 500 when err is not an *Error.
func StatusOf(err error) int {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeInternalError
}

// WriteError writes err as a JSON error body. Errors that are not an *Error
// are reported as 500 with their message.
func WriteError(resp *restful.Response, err error) {
	var e *Error
	if !errors.As(err, &e) {
		e = New(CodeInternalError, err.Error())
	}
	_ = resp.WriteHeaderAndJson(e.Code, e, restful.MIME_JSON)
}
