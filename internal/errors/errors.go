package errors

import (
	"errors"
	"fmt"
	"io/fs"
	"time"
)

// Error types for vbsym
type ErrorType string

const (
	ErrorTypeTree ErrorType = "tree"

	// File errors
	ErrorTypeFileNotFound ErrorType = "file_not_found"
	ErrorTypeFileTooLarge ErrorType = "file_too_large"
	ErrorTypePermission   ErrorType = "permission"
	ErrorTypeFile         ErrorType = "file"

	ErrorTypeConfig ErrorType = "config"
	ErrorTypeRename ErrorType = "rename"
)

// Reasons a rename is rejected
var (
	ErrNoSymbol          = errors.New("no symbol at position")
	ErrInvalidIdentifier = errors.New("not a valid identifier")
	ErrReservedWord      = errors.New("reserved word")
)

// TreeError reports a syntax tree dump that cannot be decoded or violates
// the node range invariants.
type TreeError struct {
	Type       ErrorType
	Source     string // file the tree was read from, if any
	NodePath   string // JSON path of the offending node, e.g. $.children[2]
	Underlying error
	Timestamp  time.Time
}

// NewTreeError creates a new tree error for the node at nodePath
func NewTreeError(nodePath string, err error) *TreeError {
	return &TreeError{
		Type:       ErrorTypeTree,
		NodePath:   nodePath,
		Underlying: err,
		Timestamp:  time.Now(),
	}
}

// WithSource records the file the tree came from
func (e *TreeError) WithSource(path string) *TreeError {
	e.Source = path
	return e
}

// Error implements the error interface
func (e *TreeError) Error() string {
	at := e.NodePath
	if at == "" {
		at = "$"
	}
	if e.Source != "" {
		return fmt.Sprintf("invalid syntax tree %s at %s: %v", e.Source, at, e.Underlying)
	}
	return fmt.Sprintf("invalid syntax tree at %s: %v", at, e.Underlying)
}

// Unwrap returns the underlying error
func (e *TreeError) Unwrap() error {
	return e.Underlying
}

// FileError represents a file-related error
type FileError struct {
	Type       ErrorType
	Path       string
	Operation  string
	Underlying error
	Timestamp  time.Time
}

// NewFileError creates a new file error
func NewFileError(op, path string, err error) *FileError {
	errorType := ErrorTypeFile
	switch {
	case errors.Is(err, fs.ErrNotExist):
		errorType = ErrorTypeFileNotFound
	case errors.Is(err, fs.ErrPermission):
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

// NewFileTooLargeError reports a file skipped for exceeding the size limit
func NewFileTooLargeError(path string, size, limit int64) *FileError {
	return &FileError{
		Type:       ErrorTypeFileTooLarge,
		Path:       path,
		Operation:  "read",
		Underlying: fmt.Errorf("size %d exceeds limit %d", size, limit),
		Timestamp:  time.Now(),
	}
}

// Error implements the error interface
func (e *FileError) Error() string {
	return fmt.Sprintf("file %s failed for %s: %v", e.Operation, e.Path, e.Underlying)
}

// Unwrap returns the underlying error
func (e *FileError) Unwrap() error {
	return e.Underlying
}

// ConfigError represents a configuration error
type ConfigError struct {
	Field      string
	Value      string
	Underlying error
	Timestamp  time.Time
}

// NewConfigError creates a new config error
func NewConfigError(field, value string, err error) *ConfigError {
	return &ConfigError{
		Field:      field,
		Value:      value,
		Underlying: err,
		Timestamp:  time.Now(),
	}
}

// Error implements the error interface
func (e *ConfigError) Error() string {
	return fmt.Sprintf("config error for field %s (value %s): %v", e.Field, e.Value, e.Underlying)
}

// Unwrap returns the underlying error
func (e *ConfigError) Unwrap() error {
	return e.Underlying
}

// RenameError is returned when a rename request is rejected
type RenameError struct {
	Type       ErrorType
	NewName    string
	Line       uint32
	Column     uint32
	Underlying error
	Timestamp  time.Time
}

// NewRenameError creates a new rename error for the request at line:column
func NewRenameError(newName string, line, column uint32, err error) *RenameError {
	return &RenameError{
		Type:       ErrorTypeRename,
		NewName:    newName,
		Line:       line,
		Column:     column,
		Underlying: err,
		Timestamp:  time.Now(),
	}
}

// Error implements the error interface
func (e *RenameError) Error() string {
	return fmt.Sprintf("cannot rename to %q at %d:%d: %v", e.NewName, e.Line, e.Column, e.Underlying)
}

// Unwrap returns the underlying error
func (e *RenameError) Unwrap() error {
	return e.Underlying
}

// MultiError represents multiple errors
type MultiError struct {
	Errors []error
}

// NewMultiError creates a new multi-error
func NewMultiError(errs []error) *MultiError {
	filtered := make([]error, 0, len(errs))
	for _, err := range errs {
		if err != nil {
			filtered = append(filtered, err)
		}
	}
	return &MultiError{Errors: filtered}
}

// Error implements the error interface
func (e *MultiError) Error() string {
	if len(e.Errors) == 0 {
		return "no errors"
	}
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	return fmt.Sprintf("%d errors: %v", len(e.Errors), e.Errors)
}

// Unwrap returns all errors
func (e *MultiError) Unwrap() []error {
	return e.Errors
}

// ErrorOrNil returns nil when no errors were collected
func (e *MultiError) ErrorOrNil() error {
	if e == nil || len(e.Errors) == 0 {
		return nil
	}
	return e
}
