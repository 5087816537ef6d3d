// Package errors defines the typed error taxonomy used across
// CodeCortX-MCP's indexing and query paths, plus the mapping from those
// types onto the MCP error codes returned to clients.
package errors

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/kensave/CodeCortX-MCP/internal/types"
)

// ErrorType classifies an error for logging and for mapping onto an MCP
// error code.
type ErrorType string

const (
	ErrorTypeIndexing     ErrorType = "indexing"
	ErrorTypeParse        ErrorType = "parse"
	ErrorTypeQuery        ErrorType = "query"
	ErrorTypeFileNotFound ErrorType = "file_not_found"
	ErrorTypeFileTooLarge ErrorType = "file_too_large"
	ErrorTypePermission   ErrorType = "permission"
	ErrorTypeConfig       ErrorType = "config"
	ErrorTypeInvalidParam ErrorType = "invalid_params"
	ErrorTypeInternal     ErrorType = "internal"
)

// Code is one of the MCP-facing error codes a tool handler can return.
type Code string

const (
	CodeInvalidParams  Code = "INVALID_PARAMS"
	CodeMethodNotFound Code = "METHOD_NOT_FOUND"
	CodeInternalError  Code = "INTERNAL_ERROR"
	CodeParseError     Code = "PARSE_ERROR"
	CodeFileNotFound   Code = "FILE_NOT_FOUND"
)

// CodeFor maps an ErrorType onto the MCP error code reported to clients.
func CodeFor(t ErrorType) Code {
	switch t {
	case ErrorTypeInvalidParam, ErrorTypeConfig:
		return CodeInvalidParams
	case ErrorTypeParse:
		return CodeParseError
	case ErrorTypeFileNotFound:
		return CodeFileNotFound
	default:
		return CodeInternalError
	}
}

// IndexingError represents a failure while indexing a single file.
type IndexingError struct {
	Type        ErrorType
	FileID      types.FileID
	FilePath    string
	Operation   string
	Underlying  error
	Timestamp   time.Time
	Recoverable bool
}

func NewIndexingError(op string, err error) *IndexingError {
	return &IndexingError{
		Type:       ErrorTypeIndexing,
		Operation:  op,
		Underlying: err,
		Timestamp:  time.Now(),
	}
}

func (e *IndexingError) WithFile(fileID types.FileID, path string) *IndexingError {
	e.FileID = fileID
	e.FilePath = path
	return e
}

func (e *IndexingError) WithRecoverable(recoverable bool) *IndexingError {
	e.Recoverable = recoverable
	return e
}

func (e *IndexingError) Error() string {
	if e.FilePath != "" {
		return fmt.Sprintf("%s %s failed for %s: %v", e.Type, e.Operation, e.FilePath, e.Underlying)
	}
	return fmt.Sprintf("%s %s failed: %v", e.Type, e.Operation, e.Underlying)
}

func (e *IndexingError) Unwrap() error { return e.Underlying }

func (e *IndexingError) IsRecoverable() bool { return e.Recoverable }

// ParseError represents a syntactic extraction failure for one file.
type ParseError struct {
	Type       ErrorType
	FileID     types.FileID
	FilePath   string
	Line       int
	Column     int
	Token      string
	Underlying error
	Timestamp  time.Time
}

func NewParseError(fileID types.FileID, path string, line, column int, token string, err error) *ParseError {
	return &ParseError{
		Type:       ErrorTypeParse,
		FileID:     fileID,
		FilePath:   path,
		Line:       line,
		Column:     column,
		Token:      token,
		Underlying: err,
		Timestamp:  time.Now(),
	}
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error at %s:%d:%d (near token %q): %v",
		e.FilePath, e.Line, e.Column, e.Token, e.Underlying)
}

func (e *ParseError) Unwrap() error { return e.Underlying }

// QueryError represents a failure while answering an MCP query: an
// unresolvable symbol name, an unsupported language filter, a malformed
// query argument.
type QueryError struct {
	Type       ErrorType
	Query      string
	Underlying error
	Timestamp  time.Time
}

func NewQueryError(query string, err error) *QueryError {
	return &QueryError{
		Type:       ErrorTypeQuery,
		Query:      query,
		Underlying: err,
		Timestamp:  time.Now(),
	}
}

// NewNotIndexedError builds a QueryError for a path the store has no entry
// for; it maps onto CodeFileNotFound.
func NewNotIndexedError(path string, err error) *QueryError {
	return &QueryError{
		Type:       ErrorTypeFileNotFound,
		Query:      path,
		Underlying: err,
		Timestamp:  time.Now(),
	}
}

// NewInvalidParamsError builds a QueryError that maps onto CodeInvalidParams.
func NewInvalidParamsError(query string, err error) *QueryError {
	return &QueryError{
		Type:       ErrorTypeInvalidParam,
		Query:      query,
		Underlying: err,
		Timestamp:  time.Now(),
	}
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("query failed for %q: %v", e.Query, e.Underlying)
}

func (e *QueryError) Unwrap() error { return e.Underlying }

func (e *QueryError) Code() Code { return CodeFor(e.Type) }

// FileError represents a failure accessing a file on disk.
type FileError struct {
	Type       ErrorType
	Path       string
	Operation  string
	Underlying error
	Timestamp  time.Time
}

func NewFileError(op, path string, err error) *FileError {
	errorType := ErrorTypeFileNotFound
	if isPermissionError(err) {
		errorType = ErrorTypePermission
	}
	return &FileError{
		Type:       errorType,
		Path:       path,
		Operation:  op,
		Underlying: err,
		Timestamp:  time.Now(),
	}
}

// isPermissionError recognizes both a real wrapped os.ErrPermission (the
// common case, e.g. "open /path: permission denied") and a bare
// "permission denied"/"access denied" message, which some callers
// construct directly without going through the os package.
func isPermissionError(err error) bool {
	if errors.Is(err, os.ErrPermission) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "permission denied") || strings.Contains(msg, "access denied")
}

func (e *FileError) Error() string {
	return fmt.Sprintf("file %s failed for %s: %v", e.Operation, e.Path, e.Underlying)
}

func (e *FileError) Unwrap() error { return e.Underlying }

func (e *FileError) Code() Code { return CodeFor(e.Type) }

// ConfigError represents a problem in project or user configuration.
type ConfigError struct {
	Field      string
	Value      string
	Underlying error
	Timestamp  time.Time
}

func NewConfigError(field, value string, err error) *ConfigError {
	return &ConfigError{Field: field, Value: value, Underlying: err, Timestamp: time.Now()}
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config error for field %s (value %s): %v", e.Field, e.Value, e.Underlying)
}

func (e *ConfigError) Unwrap() error { return e.Underlying }

func (e *ConfigError) Code() Code { return CodeInvalidParams }

// MultiError aggregates independent failures, e.g. several files that
// failed to index during a single directory walk.
type MultiError struct {
	Errors []error
}

func NewMultiError(errs []error) *MultiError {
	filtered := make([]error, 0, len(errs))
	for _, err := range errs {
		if err != nil {
			filtered = append(filtered, err)
		}
	}
	return &MultiError{Errors: filtered}
}

func (e *MultiError) Error() string {
	if len(e.Errors) == 0 {
		return "no errors"
	}
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	return fmt.Sprintf("%d errors: %v", len(e.Errors), e.Errors)
}

func (e *MultiError) Unwrap() []error { return e.Errors }
