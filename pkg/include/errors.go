package include

import (
	"errors"
	"fmt"
	"strings"

	"github.com/benjaminschreck/go-include/pkg/include/source"
)

// RequestError reports a directive or call that cannot be served as given,
// such as an empty document id or a missing source parameter.
type RequestError struct {
	Message string
}

func (e *RequestError) Error() string {
	return e.Message
}

// NewRequestError creates a new request error
func NewRequestError(format string, args ...interface{}) error {
	return &RequestError{Message: fmt.Sprintf(format, args...)}
}

// RecursionError reports a source that is already being expanded, or a
// nesting deeper than the configured ceiling.
type RecursionError struct {
	// ID is the canonical id found twice on the stack. Empty for depth errors.
	ID    string
	Depth int
	Limit int
}

func (e *RecursionError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("Maximum include depth of %d exceeded", e.Limit)
	}
	return fmt.Sprintf("Recursion in %q detected", e.ID)
}

// ValidationIssue represents a single validation problem
type ValidationIssue struct {
	Capability string
	Message    string
}

// ValidationError represents multiple validation issues
type ValidationError struct {
	Issues []ValidationIssue
}

func (e *ValidationError) Error() string {
	if len(e.Issues) == 0 {
		return "validation error"
	}

	if len(e.Issues) == 1 {
		return e.Issues[0].Message
	}

	parts := []string{fmt.Sprintf("%d validation issues:", len(e.Issues))}
	for _, issue := range e.Issues {
		parts = append(parts, "  "+issue.Message)
	}
	return strings.Join(parts, "\n")
}

// MultiError collects multiple errors
type MultiError struct {
	errors []error
}

// NewMultiError creates a new multi-error collector
func NewMultiError() *MultiError {
	return &MultiError{
		errors: make([]error, 0),
	}
}

// Add adds an error to the collection (ignores nil errors)
func (m *MultiError) Add(err error) {
	if err != nil {
		m.errors = append(m.errors, err)
	}
}

// Len returns the number of errors
func (m *MultiError) Len() int {
	return len(m.errors)
}

// Err returns the multi-error or nil if empty
func (m *MultiError) Err() error {
	if len(m.errors) == 0 {
		return nil
	}
	if len(m.errors) == 1 {
		return m.errors[0]
	}
	return m
}

func (m *MultiError) Error() string {
	if len(m.errors) == 0 {
		return "no errors"
	}

	if len(m.errors) == 1 {
		return m.errors[0].Error()
	}

	parts := []string{fmt.Sprintf("%d errors occurred:", len(m.errors))}
	for i, err := range m.errors {
		parts = append(parts, fmt.Sprintf("  [%d] %v", i+1, err))
	}
	return strings.Join(parts, "\n")
}

func (m *MultiError) Unwrap() []error {
	return m.errors
}

// IsMalformed reports whether err is a malformed request, either at the
// call level or inside a source reference.
func IsMalformed(err error) bool {
	var re *RequestError
	return errors.As(err, &re) || source.IsMalformed(err)
}

// IsPermissionDenied reports whether err is a missing capability and returns
// the capability name.
func IsPermissionDenied(err error) (string, bool) {
	return source.IsPermissionDenied(err)
}

func IsNotFound(err error) bool {
	return source.IsNotFound(err)
}

func IsUnsupported(err error) bool {
	return source.IsUnsupported(err)
}

func IsRecursion(err error) bool {
	var re *RecursionError
	return errors.As(err, &re)
}
