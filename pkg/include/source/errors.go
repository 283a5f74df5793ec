package source

import (
	"errors"
	"fmt"
	"strings"
)

// NotFoundError reports a missing page, version, file, ticket or comment.
type NotFoundError struct {
	Message     string
	Suggestions []string
}

func (e *NotFoundError) Error() string {
	if len(e.Suggestions) == 0 {
		return e.Message
	}
	return fmt.Sprintf("%s (did you mean %s?)", e.Message, strings.Join(e.Suggestions, ", "))
}

// NotFound creates a NotFoundError.
func NotFound(format string, args ...interface{}) *NotFoundError {
	return &NotFoundError{Message: fmt.Sprintf(format, args...)}
}

// UnsupportedError reports an unknown realm or ticket field.
type UnsupportedError struct {
	Message string
}

func (e *UnsupportedError) Error() string {
	return e.Message
}

// Unsupported creates an UnsupportedError.
func Unsupported(format string, args ...interface{}) *UnsupportedError {
	return &UnsupportedError{Message: fmt.Sprintf(format, args...)}
}

// MalformedError reports a reference that cannot be interpreted.
type MalformedError struct {
	Message string
}

func (e *MalformedError) Error() string {
	return e.Message
}

// Malformed creates a MalformedError.
func Malformed(format string, args ...interface{}) *MalformedError {
	return &MalformedError{Message: fmt.Sprintf(format, args...)}
}

// PermissionError reports a missing capability.
type PermissionError struct {
	Capability string
}

func (e *PermissionError) Error() string {
	return fmt.Sprintf("%s privileges are required to perform this operation", e.Capability)
}

// FetchError wraps a transport failure while retrieving a document.
type FetchError struct {
	Resource string
	Err      error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("Error while retrieving file: %q: %v", e.Resource, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// IsNotFound reports whether err is a NotFoundError.
func IsNotFound(err error) bool {
	var target *NotFoundError
	return errors.As(err, &target)
}

// IsUnsupported reports whether err is an UnsupportedError.
func IsUnsupported(err error) bool {
	var target *UnsupportedError
	return errors.As(err, &target)
}

// IsMalformed reports whether err is a MalformedError.
func IsMalformed(err error) bool {
	var target *MalformedError
	return errors.As(err, &target)
}

// IsPermissionDenied reports whether err is a PermissionError, returning the
// missing capability.
func IsPermissionDenied(err error) (string, bool) {
	var target *PermissionError
	if errors.As(err, &target) {
		return target.Capability, true
	}
	return "", false
}
